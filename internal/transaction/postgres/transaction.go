package postgres

import (
	txmodel "github.com/feebook/feebook/internal/core/datamodel/transaction"
	txpkg "github.com/feebook/feebook/internal/transaction"
	"gorm.io/gorm"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) txpkg.Repository {
	return &TransactionRepository{
		db: db,
	}
}

func (r *TransactionRepository) Create(t *txmodel.Transaction) error {
	return r.db.Create(t).Error
}

func (r *TransactionRepository) Update(t *txmodel.Transaction) error {
	return r.db.Save(t).Error
}

func (r *TransactionRepository) GetByExternalPaymentID(externalPaymentID string) (*txmodel.Transaction, error) {
	var t txmodel.Transaction
	err := r.db.Where("external_payment_id = ?", externalPaymentID).First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TransactionRepository) GetPlaceholderByOrderID(orderID int64) (*txmodel.Transaction, error) {
	var t txmodel.Transaction
	err := r.db.Where("order_id = ? AND external_payment_id IS NULL", orderID).First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetLatestByOrderID prefers a successful attempt over more recent failed
// retries so receipts always surface the payment that actually settled.
func (r *TransactionRepository) GetLatestByOrderID(orderID int64) (*txmodel.Transaction, error) {
	var t txmodel.Transaction
	err := r.db.Where("order_id = ? AND status = ?", orderID, txmodel.StatusSuccess).
		Order("updated_at DESC").First(&t).Error
	if err == nil {
		return &t, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	err = r.db.Where("order_id = ?", orderID).Order("updated_at DESC").First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TransactionRepository) ListByOrderID(orderID int64) ([]*txmodel.Transaction, error) {
	var txs []*txmodel.Transaction
	err := r.db.Where("order_id = ?", orderID).Order("created_at DESC").Find(&txs).Error
	return txs, err
}

func (r *TransactionRepository) ListByConsumer(consumerID int64, filters txpkg.Filters, limit, offset int) ([]*txmodel.Transaction, error) {
	q := r.db.Where("consumer_id = ?", consumerID)

	if filters.Status != "" {
		q = q.Where("status = ?", filters.Status)
	}
	if !filters.From.IsZero() {
		q = q.Where("created_at >= ?", filters.From)
	}
	if !filters.To.IsZero() {
		q = q.Where("created_at <= ?", filters.To)
	}

	var txs []*txmodel.Transaction
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&txs).Error
	return txs, err
}
