package feeplan

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status values are derived, never set directly by a client.
const (
	StatusDue     = "DUE"
	StatusOverdue = "OVERDUE"
	StatusPaid    = "PAID"
)

type FeePlan struct {
	ID                 int64           `gorm:"primaryKey"`
	MemberID           int64           `gorm:"column:member_id;not null;index"`
	ProviderID         int64           `gorm:"column:provider_id;not null;index"`
	Name               string          `gorm:"column:name;not null"`
	Description        string          `gorm:"column:description"`
	Amount             decimal.Decimal `gorm:"column:amount;type:numeric(14,2);not null"`
	DueDate            time.Time       `gorm:"column:due_date;not null"`
	Status             string          `gorm:"column:status;default:DUE"`
	IsOfflinePaid      bool            `gorm:"column:is_offline_paid;default:false"`
	ConsumerClaimsPaid bool            `gorm:"column:consumer_claims_paid;default:false"`
	ReceiptURL         *string         `gorm:"column:receipt_url"`
	PaidViaOrderID     *int64          `gorm:"column:paid_via_order_id"`
	CreatedAt          time.Time       `gorm:"column:created_at;default:now()"`
	UpdatedAt          time.Time       `gorm:"column:updated_at;default:now()"`
}

func (FeePlan) TableName() string {
	return "fee_plans"
}
