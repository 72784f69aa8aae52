package reconcile

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/feebook/feebook/internal"
	"github.com/feebook/feebook/internal/order"
	"github.com/feebook/feebook/internal/transaction"
	"github.com/feebook/feebook/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	Engine *Engine
}

func NewHandler(engine *Engine, logger *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger),
		Engine:      engine,
	}
}

// VerificationView is the client-facing outcome of a verification pass.
type VerificationView struct {
	Order       *order.OrderView             `json:"order"`
	Transaction *transaction.TransactionView `json:"transaction,omitempty"`
}

func toVerificationView(res *Result) *VerificationView {
	view := &VerificationView{
		Order: order.ToView(res.Order),
	}
	if res.Transaction != nil {
		view.Transaction = transaction.ToView(res.Transaction)
	}
	return view
}

// VerifyOrder handles GET /api/v1/pg/verify-order. Clients poll this after
// returning from checkout; the response is the reconciled local state, never
// a passthrough of the gateway.
func (h *Handler) VerifyOrder(w http.ResponseWriter, r *http.Request) {
	ref := r.URL.Query().Get("order_id")
	if ref == "" {
		h.HandleError(w, internal.NewValidationError("order_id is required", internal.ErrCodeValidationFailed))
		return
	}

	res, err := h.Engine.VerifyOrder(r.Context(), ref)
	if err != nil {
		h.HandleError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, toVerificationView(res))
}

// webhookEnvelope is the gateway notification payload. Only the order id is
// trusted; everything else is re-fetched from the gateway before any write.
type webhookEnvelope struct {
	Type string `json:"type"`
	Data struct {
		Order struct {
			OrderID         string `json:"order_id"`
			ExternalOrderID string `json:"cf_order_id"`
		} `json:"order"`
	} `json:"data"`
}

// HandleWebhook handles POST /api/v1/pg/webhook. Webhooks are hints, not
// facts: the handler extracts the order reference and runs the same
// verification path as every other caller.
func (h *Handler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	var envelope webhookEnvelope
	if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil {
		h.Logger.Warn("webhook: undecodable payload", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid webhook payload")
		return
	}

	ref := envelope.Data.Order.ExternalOrderID
	if ref == "" {
		ref = envelope.Data.Order.OrderID
	}
	if ref == "" {
		h.Logger.Warn("webhook: payload carries no order reference", "type", envelope.Type)
		h.WriteError(w, http.StatusBadRequest, "missing order reference")
		return
	}

	res, err := h.Engine.VerifyOrder(r.Context(), ref)
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok && appErr.Type == internal.ErrorTypeNotFound {
			// A webhook for an order we never created. Acknowledge so the
			// gateway stops retrying, and leave the log line for moderators.
			h.Logger.Error("webhook: unknown order", "order_ref", ref, "type", envelope.Type)
			h.WriteJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
			return
		}
		h.HandleError(w, err)
		return
	}

	h.Logger.Info("webhook processed",
		"order_id", res.Order.ID,
		"status", res.Order.Status,
		"transitioned", res.Transitioned)

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "processed"})
}
