package provider

import (
	"time"

	"github.com/shopspring/decimal"
)

// Provider is an organization collecting fees from its members.
// WalletBalance is credited only inside the reconciliation engine's
// first-transition-to-PAID critical section.
type Provider struct {
	ID            int64           `gorm:"primaryKey"`
	Name          string          `gorm:"column:name;not null"`
	Email         string          `gorm:"column:email;not null;uniqueIndex"`
	Phone         string          `gorm:"column:phone"`
	WalletBalance decimal.Decimal `gorm:"column:wallet_balance;type:numeric(14,2);default:0"`
	CreatedAt     time.Time       `gorm:"column:created_at;default:now()"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;default:now()"`
}

func (Provider) TableName() string {
	return "providers"
}
