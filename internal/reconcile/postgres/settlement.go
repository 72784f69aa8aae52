package postgres

import (
	"time"

	feeplanmodel "github.com/feebook/feebook/internal/core/datamodel/feeplan"
	ordermodel "github.com/feebook/feebook/internal/core/datamodel/order"
	providermodel "github.com/feebook/feebook/internal/core/datamodel/provider"
	reconcilepkg "github.com/feebook/feebook/internal/reconcile"
	"gorm.io/gorm"
)

type SettlementRepository struct {
	db *gorm.DB
}

func NewSettlementRepository(db *gorm.DB) reconcilepkg.Settlements {
	return &SettlementRepository{
		db: db,
	}
}

// SettleOrder commits the order status CAS and, when the order settles PAID,
// the fee plan stamp and the wallet credit in one database transaction. A
// failure on any write rolls all of them back, so a transient error never
// strands a PAID order with an uncredited wallet: the order stays ACTIVE and
// the next verification retries the whole unit.
func (r *SettlementRepository) SettleOrder(s reconcilepkg.Settlement) (reconcilepkg.SettlementOutcome, error) {
	var out reconcilepkg.SettlementOutcome

	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&ordermodel.Order{}).
			Where("id = ? AND status = ?", s.OrderID, ordermodel.StatusActive).
			Updates(map[string]interface{}{
				"status":     s.Target,
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		out.Transitioned = res.RowsAffected > 0

		if !out.Transitioned || s.Target != ordermodel.StatusPaid {
			return nil
		}

		// Conditional on no other order having stamped the plan: the losing
		// order keeps its PAID status but must not credit the wallet.
		res = tx.Model(&feeplanmodel.FeePlan{}).
			Where("id = ? AND paid_via_order_id IS NULL", s.FeePlanID).
			Updates(map[string]interface{}{
				"status":            feeplanmodel.StatusPaid,
				"paid_via_order_id": s.OrderID,
				"receipt_url":       s.ReceiptURL,
				"updated_at":        time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		out.PlanStamped = res.RowsAffected > 0

		if !out.PlanStamped {
			return nil
		}

		return tx.Model(&providermodel.Provider{}).
			Where("id = ?", s.ProviderID).
			UpdateColumn("wallet_balance", gorm.Expr("wallet_balance + ?", s.Amount)).Error
	})
	if err != nil {
		return reconcilepkg.SettlementOutcome{}, err
	}
	return out, nil
}
