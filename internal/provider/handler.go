package provider

import (
	"log/slog"
	"net/http"

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

// WalletBalance handles GET /api/v1/wallet for the authenticated provider.
func (h *Handler) WalletBalance(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok || user.ProviderID == nil {
		h.HandleError(w, internal.NewForbiddenError("provider account required", internal.ErrCodeUnauthorizedOwner))
		return
	}

	balance, err := h.Service.WalletBalance(*user.ProviderID)
	if err != nil {
		h.HandleError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"provider_id":    *user.ProviderID,
		"wallet_balance": balance.StringFixed(2),
	})
}
