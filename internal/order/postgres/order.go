package postgres

import (
	"time"

	ordermodel "github.com/feebook/feebook/internal/core/datamodel/order"
	orderpkg "github.com/feebook/feebook/internal/order"
	"gorm.io/gorm"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) orderpkg.Repository {
	return &OrderRepository{
		db: db,
	}
}

func (r *OrderRepository) Create(o *ordermodel.Order) error {
	return r.db.Create(o).Error
}

func (r *OrderRepository) GetByID(id int64) (*ordermodel.Order, error) {
	var o ordermodel.Order
	err := r.db.First(&o, id).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) GetByExternalID(externalOrderID string) (*ordermodel.Order, error) {
	var o ordermodel.Order
	err := r.db.Where("external_order_id = ?", externalOrderID).First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// MarkTerminal is the compare-and-swap behind the engine's "first transition"
// check: only one caller ever observes RowsAffected > 0 for a given order.
func (r *OrderRepository) MarkTerminal(id int64, status string) (bool, error) {
	res := r.db.Model(&ordermodel.Order{}).
		Where("id = ? AND status = ?", id, ordermodel.StatusActive).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *OrderRepository) ListActiveOlderThan(cutoff time.Time, limit int) ([]*ordermodel.Order, error) {
	var orders []*ordermodel.Order
	err := r.db.Where("status = ? AND created_at < ?", ordermodel.StatusActive, cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}
