package postgres

import (
	"time"

	txmodel "github.com/feebook/feebook/internal/core/datamodel/transaction"
	"github.com/feebook/feebook/internal/dashboard"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) dashboard.Repository {
	return &DashboardRepository{
		db: db,
	}
}

// SumCollectedBetween totals settled transactions for the provider inside the
// window. Joined through orders because the ledger does not carry the
// provider id directly.
func (r *DashboardRepository) SumCollectedBetween(providerID int64, from, to time.Time) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := r.db.Table("transactions").
		Select("COALESCE(SUM(transactions.amount), 0) AS total").
		Joins("JOIN orders ON orders.id = transactions.order_id").
		Where("orders.provider_id = ?", providerID).
		Where("transactions.status = ?", txmodel.StatusSuccess).
		Where("transactions.updated_at >= ? AND transactions.updated_at <= ?", from, to).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}

// PlanStatusCounts buckets by the same derivation the fee plan views use:
// paid when either paid signal is set, overdue when unpaid and past due.
func (r *DashboardRepository) PlanStatusCounts(providerID int64, now time.Time) (dashboard.PlanCounts, error) {
	var row struct {
		Due     int64
		Overdue int64
		Paid    int64
	}
	err := r.db.Table("fee_plans").
		Select(`
			COALESCE(SUM(CASE WHEN paid_via_order_id IS NULL AND NOT is_offline_paid AND due_date >= ? THEN 1 ELSE 0 END), 0) AS due,
			COALESCE(SUM(CASE WHEN paid_via_order_id IS NULL AND NOT is_offline_paid AND due_date < ? THEN 1 ELSE 0 END), 0) AS overdue,
			COALESCE(SUM(CASE WHEN paid_via_order_id IS NOT NULL OR is_offline_paid THEN 1 ELSE 0 END), 0) AS paid`,
			now, now).
		Where("provider_id = ?", providerID).
		Scan(&row).Error
	if err != nil {
		return dashboard.PlanCounts{}, err
	}
	return dashboard.PlanCounts{Due: row.Due, Overdue: row.Overdue, Paid: row.Paid}, nil
}

func (r *DashboardRepository) OutstandingTotals(providerID int64, now time.Time) (decimal.Decimal, decimal.Decimal, error) {
	var row struct {
		Outstanding decimal.Decimal
		Overdue     decimal.Decimal
	}
	err := r.db.Table("fee_plans").
		Select(`
			COALESCE(SUM(CASE WHEN paid_via_order_id IS NULL AND NOT is_offline_paid THEN amount ELSE 0 END), 0) AS outstanding,
			COALESCE(SUM(CASE WHEN paid_via_order_id IS NULL AND NOT is_offline_paid AND due_date < ? THEN amount ELSE 0 END), 0) AS overdue`,
			now).
		Where("provider_id = ?", providerID).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return row.Outstanding, row.Overdue, nil
}

func (r *DashboardRepository) RecentTransactionsByProvider(providerID int64, limit int) ([]*txmodel.Transaction, error) {
	var txs []*txmodel.Transaction
	err := r.db.
		Joins("JOIN orders ON orders.id = transactions.order_id").
		Where("orders.provider_id = ?", providerID).
		Order("transactions.created_at DESC").
		Limit(limit).
		Find(&txs).Error
	return txs, err
}
