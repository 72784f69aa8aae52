package gateway

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Gateway-side order states as reported by the order status endpoint.
const (
	OrderStateActive               = "ACTIVE"
	OrderStatePaid                 = "PAID"
	OrderStateExpired              = "EXPIRED"
	OrderStateTerminated           = "TERMINATED"
	OrderStateTerminationRequested = "TERMINATION_REQUESTED"
)

// Gateway-side payment states as reported per payment attempt.
const (
	PaymentStateNotAttempted = "NOT_ATTEMPTED"
	PaymentStatePending      = "PENDING"
	PaymentStateSuccess      = "SUCCESS"
	PaymentStateFailed       = "FAILED"
	PaymentStateCancelled    = "CANCELLED"
	PaymentStateUserDropped  = "USER_DROPPED"
	PaymentStateVoid         = "VOID"
)

// CreateOrderRequest mints a hosted-checkout order at the gateway. OrderTags
// is opaque metadata the gateway echoes back on every notification.
type CreateOrderRequest struct {
	OrderID     string            `json:"order_id"`
	Amount      decimal.Decimal   `json:"order_amount"`
	Currency    string            `json:"order_currency"`
	CustomerRef string            `json:"customer_id"`
	OrderTags   map[string]string `json:"order_tags,omitempty"`
	ReturnURL   string            `json:"return_url,omitempty"`
	NotifyURL   string            `json:"notify_url,omitempty"`
}

type CreateOrderResponse struct {
	ExternalOrderID  string `json:"cf_order_id"`
	PaymentSessionID string `json:"payment_session_id"`
	OrderStatus      string `json:"order_status"`
}

// OrderState is the authoritative order snapshot fetched during verification.
type OrderState struct {
	ExternalOrderID string          `json:"cf_order_id"`
	OrderID         string          `json:"order_id"`
	Status          string          `json:"order_status"`
	Amount          decimal.Decimal `json:"order_amount"`
	Currency        string          `json:"order_currency"`
}

// PaymentRecord is one gateway-reported payment attempt against an order.
type PaymentRecord struct {
	ExternalPaymentID string          `json:"cf_payment_id"`
	Status            string          `json:"payment_status"`
	Amount            decimal.Decimal `json:"payment_amount"`
	Currency          string          `json:"payment_currency"`
	Method            json.RawMessage `json:"payment_method,omitempty"`
	BankReference     string          `json:"bank_reference,omitempty"`
	Message           string          `json:"payment_message,omitempty"`
	CompletedAt       *time.Time      `json:"payment_completion_time,omitempty"`
	Gateway           string          `json:"payment_gateway,omitempty"`
}
