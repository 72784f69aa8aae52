package feeplan

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/feebook/feebook/internal"
	feeplanmodel "github.com/feebook/feebook/internal/core/datamodel/feeplan"
	usermodel "github.com/feebook/feebook/internal/core/datamodel/user"
	"github.com/feebook/feebook/internal/transport"
	"github.com/go-chi/chi"
)

// OfflinePaidAPI is the reconciliation entry point for the offline-paid
// toggle; the mutation lives there because it shares the plan's paid-signal
// rules with settlement.
type OfflinePaidAPI interface {
	SetOfflinePaid(ctx context.Context, providerID, feePlanID int64, paid bool) (*feeplanmodel.FeePlan, error)
}

type Handler struct {
	*transport.BaseHandler
	Service    *Service
	Reconciler OfflinePaidAPI
}

func NewHandler(svc *Service, reconciler OfflinePaidAPI, logger *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger),
		Service:     svc,
		Reconciler:  reconciler,
	}
}

// CreateFeePlan handles POST /api/v1/fee-plans
func (h *Handler) CreateFeePlan(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok || user.ProviderID == nil {
		h.HandleError(w, internal.NewForbiddenError("only providers can create fee plans", internal.ErrCodeUnauthorizedOwner))
		return
	}

	var dto CreateFeePlanDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.HandleError(w, internal.NewValidationError("invalid request body", internal.ErrCodeValidationFailed))
		return
	}

	plan, err := h.Service.CreateFeePlan(*user.ProviderID, dto)
	if err != nil {
		h.HandleError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, ToView(plan, time.Now()))
}

// GetFeePlan handles GET /api/v1/fee-plans/{id}
func (h *Handler) GetFeePlan(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing authentication")
		return
	}

	id, err := parseID(r)
	if err != nil {
		h.HandleError(w, err)
		return
	}

	var plan *feeplanmodel.FeePlan
	if user.Role == usermodel.RoleProvider && user.ProviderID != nil {
		plan, err = h.Service.GetFeePlanForProvider(id, *user.ProviderID)
	} else {
		plan, err = h.Service.GetFeePlan(id)
	}
	if err != nil {
		h.HandleError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ToView(plan, time.Now()))
}

// ListFeePlans handles GET /api/v1/fee-plans. Providers list their own plans;
// consumers list plans for one of their members via member_id.
func (h *Handler) ListFeePlans(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing authentication")
		return
	}

	limit, offset := parsePagination(r)

	var (
		plans []*feeplanmodel.FeePlan
		err   error
	)
	switch {
	case user.Role == usermodel.RoleProvider && user.ProviderID != nil:
		plans, err = h.Service.ListByProvider(*user.ProviderID, limit, offset)
	default:
		memberID, perr := strconv.ParseInt(r.URL.Query().Get("member_id"), 10, 64)
		if perr != nil {
			h.HandleError(w, internal.NewValidationError("member_id is required", internal.ErrCodeValidationFailed))
			return
		}
		plans, err = h.Service.ListByMember(memberID, limit, offset)
	}
	if err != nil {
		h.HandleError(w, err)
		return
	}

	now := time.Now()
	views := make([]*FeePlanView, 0, len(plans))
	for _, plan := range plans {
		views = append(views, ToView(plan, now))
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"fee_plans": views})
}

// SetOfflinePaid handles PATCH /api/v1/fee-plans/{id}/offline-paid
func (h *Handler) SetOfflinePaid(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok || user.ProviderID == nil {
		h.HandleError(w, internal.NewForbiddenError("only providers can mark offline payments", internal.ErrCodeUnauthorizedOwner))
		return
	}

	id, err := parseID(r)
	if err != nil {
		h.HandleError(w, err)
		return
	}

	var dto OfflinePaidDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.HandleError(w, internal.NewValidationError("invalid request body", internal.ErrCodeValidationFailed))
		return
	}

	plan, err := h.Reconciler.SetOfflinePaid(r.Context(), *user.ProviderID, id, dto.Paid)
	if err != nil {
		h.HandleError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ToView(plan, time.Now()))
}

// ClaimPaid handles PATCH /api/v1/fee-plans/{id}/claim-paid
func (h *Handler) ClaimPaid(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.HandleError(w, err)
		return
	}

	var dto OfflinePaidDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.HandleError(w, internal.NewValidationError("invalid request body", internal.ErrCodeValidationFailed))
		return
	}

	if err := h.Service.ClaimPaid(id, dto.Paid); err != nil {
		h.HandleError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"fee_plan_id": id,
		"claims_paid": dto.Paid,
	})
}

func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, internal.NewValidationError("invalid id", internal.ErrCodeValidationFailed)
	}
	return id, nil
}

func parsePagination(r *http.Request) (limit, offset int) {
	limit = 20
	offset = 0
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}
