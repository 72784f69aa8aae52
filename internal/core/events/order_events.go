package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EventTypeOrderSettled       = "order.settled"
	EventTypeOrderClosed        = "order.closed"
	EventTypeFeePlanOfflinePaid = "feeplan.offline_paid"
)

// OrderSettledEvent fires exactly once per order, on the first transition to
// PAID inside the reconciliation engine.
type OrderSettledEvent struct {
	BaseEvent
	OrderID           int64           `json:"order_id"`
	ExternalOrderID   string          `json:"external_order_id"`
	FeePlanID         int64           `json:"fee_plan_id"`
	ProviderID        int64           `json:"provider_id"`
	Amount            decimal.Decimal `json:"amount"`
	ExternalPaymentID string          `json:"external_payment_id"`
}

func NewOrderSettledEvent(orderID int64, externalOrderID string, feePlanID, providerID int64, amount decimal.Decimal, externalPaymentID string) *OrderSettledEvent {
	return &OrderSettledEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeOrderSettled,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"order_id":            orderID,
				"external_order_id":   externalOrderID,
				"fee_plan_id":         feePlanID,
				"provider_id":         providerID,
				"amount":              amount.StringFixed(2),
				"external_payment_id": externalPaymentID,
			},
		},
		OrderID:           orderID,
		ExternalOrderID:   externalOrderID,
		FeePlanID:         feePlanID,
		ProviderID:        providerID,
		Amount:            amount,
		ExternalPaymentID: externalPaymentID,
	}
}

// OrderClosedEvent fires when an order reaches a non-PAID terminal state
// (expired or terminated at the gateway).
type OrderClosedEvent struct {
	BaseEvent
	OrderID         int64  `json:"order_id"`
	ExternalOrderID string `json:"external_order_id"`
	FeePlanID       int64  `json:"fee_plan_id"`
	ProviderID      int64  `json:"provider_id"`
	FinalStatus     string `json:"final_status"`
}

func NewOrderClosedEvent(orderID int64, externalOrderID string, feePlanID, providerID int64, finalStatus string) *OrderClosedEvent {
	return &OrderClosedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeOrderClosed,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"order_id":          orderID,
				"external_order_id": externalOrderID,
				"fee_plan_id":       feePlanID,
				"provider_id":       providerID,
				"final_status":      finalStatus,
			},
		},
		OrderID:         orderID,
		ExternalOrderID: externalOrderID,
		FeePlanID:       feePlanID,
		ProviderID:      providerID,
		FinalStatus:     finalStatus,
	}
}

// FeePlanOfflinePaidEvent fires when a provider toggles the offline-paid flag.
// The gateway ledger is untouched; subscribers only invalidate read caches.
type FeePlanOfflinePaidEvent struct {
	BaseEvent
	FeePlanID  int64 `json:"fee_plan_id"`
	ProviderID int64 `json:"provider_id"`
	Paid       bool  `json:"paid"`
}

func NewFeePlanOfflinePaidEvent(feePlanID, providerID int64, paid bool) *FeePlanOfflinePaidEvent {
	return &FeePlanOfflinePaidEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeFeePlanOfflinePaid,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"fee_plan_id": feePlanID,
				"provider_id": providerID,
				"paid":        paid,
			},
		},
		FeePlanID:  feePlanID,
		ProviderID: providerID,
		Paid:       paid,
	}
}
