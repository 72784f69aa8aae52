package provider

import (
	providermodel "github.com/feebook/feebook/internal/core/datamodel/provider"
	"github.com/shopspring/decimal"
)

// Repository defines the data access methods for providers. CreditWallet is
// only ever invoked by the reconciliation engine inside its settlement
// critical section; everything else is snapshot reads.
type Repository interface {
	GetByID(id int64) (*providermodel.Provider, error)
	CreditWallet(providerID int64, amount decimal.Decimal) error
	GetWalletBalance(providerID int64) (decimal.Decimal, error)
}
