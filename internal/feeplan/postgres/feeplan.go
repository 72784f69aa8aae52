package postgres

import (
	"time"

	feeplanmodel "github.com/feebook/feebook/internal/core/datamodel/feeplan"
	feeplanpkg "github.com/feebook/feebook/internal/feeplan"
	"gorm.io/gorm"
)

type FeePlanRepository struct {
	db *gorm.DB
}

func NewFeePlanRepository(db *gorm.DB) feeplanpkg.Repository {
	return &FeePlanRepository{
		db: db,
	}
}

func (r *FeePlanRepository) Create(plan *feeplanmodel.FeePlan) error {
	return r.db.Create(plan).Error
}

func (r *FeePlanRepository) GetByID(id int64) (*feeplanmodel.FeePlan, error) {
	var plan feeplanmodel.FeePlan
	err := r.db.First(&plan, id).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *FeePlanRepository) ListByProvider(providerID int64, limit, offset int) ([]*feeplanmodel.FeePlan, error) {
	var plans []*feeplanmodel.FeePlan
	err := r.db.Where("provider_id = ?", providerID).
		Order("due_date ASC").
		Limit(limit).Offset(offset).
		Find(&plans).Error
	return plans, err
}

func (r *FeePlanRepository) ListByMember(memberID int64, limit, offset int) ([]*feeplanmodel.FeePlan, error) {
	var plans []*feeplanmodel.FeePlan
	err := r.db.Where("member_id = ?", memberID).
		Order("due_date ASC").
		Limit(limit).Offset(offset).
		Find(&plans).Error
	return plans, err
}

func (r *FeePlanRepository) UpdateDetails(id int64, name, description string, dueDate time.Time, status string) error {
	return r.db.Model(&feeplanmodel.FeePlan{}).Where("id = ?", id).Updates(map[string]interface{}{
		"name":        name,
		"description": description,
		"due_date":    dueDate,
		"status":      status,
		"updated_at":  time.Now(),
	}).Error
}

func (r *FeePlanRepository) SetOfflinePaid(id int64, paid bool, status string) error {
	return r.db.Model(&feeplanmodel.FeePlan{}).Where("id = ?", id).Updates(map[string]interface{}{
		"is_offline_paid": paid,
		"status":          status,
		"updated_at":      time.Now(),
	}).Error
}

func (r *FeePlanRepository) SetConsumerClaimsPaid(id int64, claims bool) error {
	return r.db.Model(&feeplanmodel.FeePlan{}).Where("id = ?", id).Updates(map[string]interface{}{
		"consumer_claims_paid": claims,
		"updated_at":           time.Now(),
	}).Error
}

// MarkPaidViaOrder is the storage-level guard against crediting one fee plan
// through two different orders: the conditional update only lands when no
// other order has stamped the plan yet.
func (r *FeePlanRepository) MarkPaidViaOrder(feePlanID, orderID int64, receiptURL string) (bool, error) {
	res := r.db.Model(&feeplanmodel.FeePlan{}).
		Where("id = ? AND (paid_via_order_id IS NULL OR paid_via_order_id = ?)", feePlanID, orderID).
		Updates(map[string]interface{}{
			"status":            feeplanmodel.StatusPaid,
			"paid_via_order_id": orderID,
			"receipt_url":       receiptURL,
			"updated_at":        time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
