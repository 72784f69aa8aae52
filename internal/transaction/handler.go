package transaction

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

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

// ListTransactions handles GET /api/v1/transactions: the authenticated
// consumer's payment history, filterable by status and time window.
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok || user.ConsumerID == nil {
		h.WriteError(w, http.StatusUnauthorized, "missing authentication")
		return
	}

	q := r.URL.Query()
	filters := Filters{Status: q.Get("status")}
	if v := q.Get("from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filters.From = t
		}
	}
	if v := q.Get("to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filters.To = t
		}
	}

	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	if offset < 0 {
		offset = 0
	}

	txs, err := h.Service.ListByConsumer(*user.ConsumerID, filters, limit, offset)
	if err != nil {
		h.HandleError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"transactions": ToViews(txs)})
}
