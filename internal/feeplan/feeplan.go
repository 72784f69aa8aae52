package feeplan

import (
	"time"

	feeplanmodel "github.com/feebook/feebook/internal/core/datamodel/feeplan"
)

// DeriveStatus computes the fee plan status from its two independent paid
// signals and the due date. Owned here so no caller ever re-implements the
// "is this fee overdue" check inline.
//
// PAID when a settled order has marked the plan (PaidViaOrderID) or the
// provider flagged it offline-paid. OVERDUE only when unpaid and past due.
func DeriveStatus(plan *feeplanmodel.FeePlan, now time.Time) string {
	if plan.PaidViaOrderID != nil || plan.IsOfflinePaid {
		return feeplanmodel.StatusPaid
	}
	if plan.DueDate.Before(now) {
		return feeplanmodel.StatusOverdue
	}
	return feeplanmodel.StatusDue
}

// Repository defines the data access methods for fee plans.
type Repository interface {
	Create(plan *feeplanmodel.FeePlan) error
	GetByID(id int64) (*feeplanmodel.FeePlan, error)
	ListByProvider(providerID int64, limit, offset int) ([]*feeplanmodel.FeePlan, error)
	ListByMember(memberID int64, limit, offset int) ([]*feeplanmodel.FeePlan, error)
	UpdateDetails(id int64, name, description string, dueDate time.Time, status string) error
	SetOfflinePaid(id int64, paid bool, status string) error
	SetConsumerClaimsPaid(id int64, claims bool) error

	// MarkPaidViaOrder conditionally stamps the plan as paid through the given
	// order. Returns false without writing when another order already claimed
	// the plan; returns true when this call applied the stamp or the same
	// order had already applied it.
	MarkPaidViaOrder(feePlanID, orderID int64, receiptURL string) (bool, error)
}
