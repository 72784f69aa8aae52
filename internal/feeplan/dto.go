package feeplan

import (
	"time"

	"github.com/feebook/feebook/internal/core/common/validation"
	feeplanmodel "github.com/feebook/feebook/internal/core/datamodel/feeplan"
	"github.com/shopspring/decimal"
)

type CreateFeePlanDTO struct {
	MemberID    int64           `json:"member_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	DueDate     time.Time       `json:"due_date"`
}

func (d *CreateFeePlanDTO) Validate() error {
	validator := validation.NewValidator()

	validator.Field("member_id", d.MemberID).Required()
	validator.Field("name", d.Name).Required().MaxLength(200)
	validator.Field("amount", d.Amount).Required().PositiveAmount().MaxAmount(validation.MaxFeeAmount)
	validator.Field("due_date", d.DueDate).NotZeroTime()

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

type OfflinePaidDTO struct {
	Paid bool `json:"paid"`
}

type FeePlanView struct {
	ID                 int64     `json:"id"`
	MemberID           int64     `json:"member_id"`
	ProviderID         int64     `json:"provider_id"`
	Name               string    `json:"name"`
	Description        string    `json:"description,omitempty"`
	Amount             string    `json:"amount"`
	DueDate            time.Time `json:"due_date"`
	Status             string    `json:"status"`
	IsOfflinePaid      bool      `json:"is_offline_paid"`
	ConsumerClaimsPaid bool      `json:"consumer_claims_paid"`
	ReceiptURL         *string   `json:"receipt_url,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

// ToView recomputes the derived status at read time so a stale persisted
// projection (DUE past its due date) never leaks to a client.
func ToView(plan *feeplanmodel.FeePlan, now time.Time) *FeePlanView {
	return &FeePlanView{
		ID:                 plan.ID,
		MemberID:           plan.MemberID,
		ProviderID:         plan.ProviderID,
		Name:               plan.Name,
		Description:        plan.Description,
		Amount:             plan.Amount.StringFixed(2),
		DueDate:            plan.DueDate,
		Status:             DeriveStatus(plan, now),
		IsOfflinePaid:      plan.IsOfflinePaid,
		ConsumerClaimsPaid: plan.ConsumerClaimsPaid,
		ReceiptURL:         plan.ReceiptURL,
		CreatedAt:          plan.CreatedAt,
	}
}
