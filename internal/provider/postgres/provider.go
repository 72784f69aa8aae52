package postgres

import (
	providermodel "github.com/feebook/feebook/internal/core/datamodel/provider"
	providerpkg "github.com/feebook/feebook/internal/provider"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProviderRepository struct {
	db *gorm.DB
}

func NewProviderRepository(db *gorm.DB) providerpkg.Repository {
	return &ProviderRepository{
		db: db,
	}
}

func (r *ProviderRepository) GetByID(id int64) (*providermodel.Provider, error) {
	var p providermodel.Provider
	err := r.db.First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreditWallet increments in SQL so concurrent settlements on different
// orders never lose an update.
func (r *ProviderRepository) CreditWallet(providerID int64, amount decimal.Decimal) error {
	return r.db.Model(&providermodel.Provider{}).
		Where("id = ?", providerID).
		UpdateColumn("wallet_balance", gorm.Expr("wallet_balance + ?", amount)).Error
}

func (r *ProviderRepository) GetWalletBalance(providerID int64) (decimal.Decimal, error) {
	var p providermodel.Provider
	err := r.db.Select("wallet_balance").First(&p, providerID).Error
	if err != nil {
		return decimal.Zero, err
	}
	return p.WalletBalance, nil
}
