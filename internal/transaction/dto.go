package transaction

import (
	"encoding/json"
	"time"

	txmodel "github.com/feebook/feebook/internal/core/datamodel/transaction"
	"github.com/shopspring/decimal"
)

// Attempt is one gateway-reported payment event to be recorded against an
// order. ExternalPaymentID may be empty for pre-settlement placeholders.
type Attempt struct {
	OrderID           int64
	FeePlanID         int64
	ConsumerID        *int64
	ExternalPaymentID string
	Status            string
	Amount            decimal.Decimal
	Currency          string
	Method            json.RawMessage
	BankReference     string
	Gateway           string
	Message           string
	PaymentTime       *time.Time
}

// Filters narrows payment-history listings. Zero values mean "no filter".
type Filters struct {
	Status string
	From   time.Time
	To     time.Time
}

type TransactionView struct {
	ID                int64           `json:"id"`
	OrderID           int64           `json:"order_id"`
	FeePlanID         int64           `json:"fee_plan_id"`
	ExternalPaymentID *string         `json:"external_payment_id,omitempty"`
	Amount            string          `json:"amount"`
	Status            string          `json:"status"`
	PaymentTime       *time.Time      `json:"payment_time,omitempty"`
	PaymentCurrency   string          `json:"payment_currency"`
	PaymentMethod     json.RawMessage `json:"payment_method,omitempty"`
	BankReference     string          `json:"bank_reference,omitempty"`
	PaymentGateway    string          `json:"payment_gateway,omitempty"`
	PaymentMessage    string          `json:"payment_message,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

func ToView(t *txmodel.Transaction) *TransactionView {
	return &TransactionView{
		ID:                t.ID,
		OrderID:           t.OrderID,
		FeePlanID:         t.FeePlanID,
		ExternalPaymentID: t.ExternalPaymentID,
		Amount:            t.Amount.StringFixed(2),
		Status:            t.Status,
		PaymentTime:       t.PaymentTime,
		PaymentCurrency:   t.PaymentCurrency,
		PaymentMethod:     t.PaymentMethod,
		BankReference:     t.BankReference,
		PaymentGateway:    t.PaymentGateway,
		PaymentMessage:    t.PaymentMessage,
		CreatedAt:         t.CreatedAt,
	}
}

func ToViews(ts []*txmodel.Transaction) []*TransactionView {
	views := make([]*TransactionView, 0, len(ts))
	for _, t := range ts {
		views = append(views, ToView(t))
	}
	return views
}
