package moderator

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/feebook/feebook/internal"
	usermodel "github.com/feebook/feebook/internal/core/datamodel/user"
	"github.com/feebook/feebook/internal/transaction"
	"github.com/feebook/feebook/internal/transport"
	"github.com/go-chi/chi"
)

type Handler struct {
	*transport.BaseHandler
	Service *Service
}

func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger),
		Service:     svc,
	}
}

// RaiseQuery handles POST /api/v1/queries. Any authenticated user can raise
// a support query.
func (h *Handler) RaiseQuery(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing authentication")
		return
	}

	var dto CreateQueryDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.HandleError(w, internal.NewValidationError("invalid request body", internal.ErrCodeValidationFailed))
		return
	}
	dto.RaisedByID = user.UserID

	q, err := h.Service.RaiseQuery(dto)
	if err != nil {
		h.HandleError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, ToView(q))
}

// ListQueries handles GET /api/v1/queries. Moderators see all queries by
// status; everyone else sees only their own.
func (h *Handler) ListQueries(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing authentication")
		return
	}

	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	if offset < 0 {
		offset = 0
	}

	if user.Role == usermodel.RoleModerator {
		qs, err := h.Service.ListQueries(q.Get("status"), limit, offset)
		if err != nil {
			h.HandleError(w, err)
			return
		}
		h.WriteJSON(w, http.StatusOK, map[string]interface{}{"queries": ToViews(qs)})
		return
	}

	qs, err := h.Service.ListQueriesForUser(user.UserID, limit, offset)
	if err != nil {
		h.HandleError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"queries": ToViews(qs)})
}

// GetQuery handles GET /api/v1/queries/{id}
func (h *Handler) GetQuery(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing authentication")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.HandleError(w, internal.NewValidationError("invalid id", internal.ErrCodeValidationFailed))
		return
	}

	q, err := h.Service.GetQuery(id)
	if err != nil {
		h.HandleError(w, err)
		return
	}

	if user.Role != usermodel.RoleModerator && q.RaisedByID != user.UserID {
		h.HandleError(w, internal.ErrQueryNotFound)
		return
	}

	h.WriteJSON(w, http.StatusOK, ToView(q))
}

// ResolveQuery handles PATCH /api/v1/queries/{id}/resolve. Moderator only.
func (h *Handler) ResolveQuery(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.HandleError(w, internal.NewValidationError("invalid id", internal.ErrCodeValidationFailed))
		return
	}

	var dto ResolveQueryDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.HandleError(w, internal.NewValidationError("invalid request body", internal.ErrCodeValidationFailed))
		return
	}

	q, err := h.Service.ResolveQuery(id, dto)
	if err != nil {
		h.HandleError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ToView(q))
}

// PaymentLogs handles GET /api/v1/queries/payment-logs/{orderID}. Moderator
// only; read-only view of the attempt ledger for dispute resolution.
func (h *Handler) PaymentLogs(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil {
		h.HandleError(w, internal.NewValidationError("invalid order id", internal.ErrCodeValidationFailed))
		return
	}

	txs, err := h.Service.PaymentLogs(orderID)
	if err != nil {
		h.HandleError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"payment_logs": transaction.ToViews(txs)})
}
