package order

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Order status is a coarse projection of the order's transactions. ACTIVE is
// the only non-terminal state.
const (
	StatusActive               = "ACTIVE"
	StatusPaid                 = "PAID"
	StatusExpired              = "EXPIRED"
	StatusTerminated           = "TERMINATED"
	StatusTerminationRequested = "TERMINATION_REQUESTED"
)

type Order struct {
	ID               int64           `gorm:"primaryKey"`
	ExternalOrderID  string          `gorm:"column:external_order_id;not null;uniqueIndex"`
	FeePlanID        int64           `gorm:"column:fee_plan_id;not null;index"`
	MemberID         int64           `gorm:"column:member_id;not null"`
	ProviderID       int64           `gorm:"column:provider_id;not null;index"`
	ConsumerID       *int64          `gorm:"column:consumer_id"`
	Amount           decimal.Decimal `gorm:"column:amount;type:numeric(14,2);not null"`
	Status           string          `gorm:"column:status;default:ACTIVE"`
	PaymentSessionID string          `gorm:"column:payment_session_id"`
	OrderTags        json.RawMessage `gorm:"column:order_tags;type:jsonb"`
	CreatedAt        time.Time       `gorm:"column:created_at;default:now()"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;default:now()"`
}

func (Order) TableName() string {
	return "orders"
}

// IsTerminal reports whether the order has left the ACTIVE state.
func (o *Order) IsTerminal() bool {
	return o.Status != StatusActive
}
