package transaction

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusNotAttempted = "NOT_ATTEMPTED"
	StatusPending      = "PENDING"
	StatusSuccess      = "SUCCESS"
	StatusFailed       = "FAILED"
	StatusCancelled    = "CANCELLED"
	StatusUserDropped  = "USER_DROPPED"
	StatusVoid         = "VOID"
)

// IsTerminal reports whether a status can no longer change. A transaction
// never reverts from a terminal state.
func IsTerminal(status string) bool {
	switch status {
	case StatusSuccess, StatusFailed, StatusCancelled, StatusUserDropped, StatusVoid:
		return true
	}
	return false
}

type Transaction struct {
	ID                int64           `gorm:"primaryKey"`
	OrderID           int64           `gorm:"column:order_id;not null;index"`
	FeePlanID         int64           `gorm:"column:fee_plan_id;not null;index"`
	ConsumerID        *int64          `gorm:"column:consumer_id;index"`
	ExternalPaymentID *string         `gorm:"column:external_payment_id;uniqueIndex"`
	Amount            decimal.Decimal `gorm:"column:amount;type:numeric(14,2);not null"`
	Status            string          `gorm:"column:status;default:NOT_ATTEMPTED"`
	PaymentTime       *time.Time      `gorm:"column:payment_time"`
	PaymentCurrency   string          `gorm:"column:payment_currency;default:INR"`
	PaymentMethod     json.RawMessage `gorm:"column:payment_method;type:jsonb"`
	BankReference     string          `gorm:"column:bank_reference"`
	PaymentGateway    string          `gorm:"column:payment_gateway"`
	PaymentMessage    string          `gorm:"column:payment_message"`
	CreatedAt         time.Time       `gorm:"column:created_at;default:now()"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;default:now()"`
}

func (Transaction) TableName() string {
	return "transactions"
}
