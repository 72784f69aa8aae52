package dashboard

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/feebook/feebook/internal"
	"github.com/feebook/feebook/internal/transport"
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

// ProviderDashboard handles GET /api/v1/dashboard/provider
func (h *Handler) ProviderDashboard(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok || user.ProviderID == nil {
		h.HandleError(w, internal.NewForbiddenError("provider account required", internal.ErrCodeUnauthorizedOwner))
		return
	}

	d, err := h.Service.ProviderDashboard(*user.ProviderID)
	if err != nil {
		h.HandleError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, d)
}

// ConsumerDashboard handles GET /api/v1/dashboard/consumer?member_id=N
func (h *Handler) ConsumerDashboard(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok || user.ConsumerID == nil {
		h.WriteError(w, http.StatusUnauthorized, "missing authentication")
		return
	}

	memberID, err := strconv.ParseInt(r.URL.Query().Get("member_id"), 10, 64)
	if err != nil {
		h.HandleError(w, internal.NewValidationError("member_id is required", internal.ErrCodeValidationFailed))
		return
	}

	d, err := h.Service.ConsumerDashboard(*user.ConsumerID, memberID)
	if err != nil {
		h.HandleError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, d)
}
