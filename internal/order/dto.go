package order

import (
	"time"

	"github.com/feebook/feebook/internal/core/common/validation"
	ordermodel "github.com/feebook/feebook/internal/core/datamodel/order"
)

// CreateOrderDTO carries a payment intent. Note the absence of an amount
// field: the order amount always comes from the stored fee plan.
type CreateOrderDTO struct {
	FeePlanID  int64  `json:"fee_plan_id"`
	MemberID   int64  `json:"member_id"`
	ProviderID int64  `json:"provider_id"`
	ConsumerID *int64 `json:"-"`
}

func (d *CreateOrderDTO) Validate() error {
	validator := validation.NewValidator()

	validator.Field("fee_plan_id", d.FeePlanID).Required()
	validator.Field("member_id", d.MemberID).Required()
	validator.Field("provider_id", d.ProviderID).Required()

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// OrderSession is what the client needs to open the hosted checkout.
type OrderSession struct {
	OrderID          int64  `json:"order_id"`
	ExternalOrderID  string `json:"external_order_id"`
	PaymentSessionID string `json:"payment_session_id"`
	Amount           string `json:"amount"`
	Currency         string `json:"currency"`
}

type OrderView struct {
	ID               int64     `json:"id"`
	ExternalOrderID  string    `json:"external_order_id"`
	FeePlanID        int64     `json:"fee_plan_id"`
	Status           string    `json:"status"`
	Amount           string    `json:"amount"`
	PaymentSessionID string    `json:"payment_session_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

func ToView(o *ordermodel.Order) *OrderView {
	return &OrderView{
		ID:               o.ID,
		ExternalOrderID:  o.ExternalOrderID,
		FeePlanID:        o.FeePlanID,
		Status:           o.Status,
		Amount:           o.Amount.StringFixed(2),
		PaymentSessionID: o.PaymentSessionID,
		CreatedAt:        o.CreatedAt,
	}
}
