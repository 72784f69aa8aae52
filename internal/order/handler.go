package order

import (
	"encoding/json"
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

// CreateOrder handles POST /api/v1/pg/create-order. The response carries the
// gateway checkout session; the client never sends an amount.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing authentication")
		return
	}

	var dto CreateOrderDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.HandleError(w, internal.NewValidationError("invalid request body", internal.ErrCodeValidationFailed))
		return
	}
	dto.ConsumerID = user.ConsumerID

	session, err := h.Service.CreateOrder(r.Context(), dto)
	if err != nil {
		h.HandleError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, session)
}
