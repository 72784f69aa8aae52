package reconcile

import (
	"context"

	ordermodel "github.com/feebook/feebook/internal/core/datamodel/order"
	txmodel "github.com/feebook/feebook/internal/core/datamodel/transaction"
	"github.com/feebook/feebook/internal/core/events"
	"github.com/feebook/feebook/internal/transaction"
	"github.com/shopspring/decimal"
)

// Ledger is the slice of the transaction service the engine records through.
type Ledger interface {
	RecordAttempt(a transaction.Attempt) (*txmodel.Transaction, error)
	LatestByOrder(orderID int64) (*txmodel.Transaction, error)
}

// Publisher decouples the engine from the concrete event bus.
type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Settlement describes one terminal transition and the side effects that
// belong to it when the target status is PAID.
type Settlement struct {
	OrderID    int64
	Target     string
	FeePlanID  int64
	ReceiptURL string
	ProviderID int64
	Amount     decimal.Decimal
}

// Settlements commits a Settlement as one atomic unit: either the status
// flip, the fee plan stamp, and the wallet credit all land, or none do. The
// order stays ACTIVE on failure so the next verification retries everything.
type Settlements interface {
	SettleOrder(s Settlement) (SettlementOutcome, error)
}

// SettlementOutcome reports which writes landed. Transitioned is false when a
// concurrent verifier already moved the order; PlanStamped is false when a
// different order already paid the fee plan.
type SettlementOutcome struct {
	Transitioned bool
	PlanStamped  bool
}

// Result is the outcome of one verification pass. Transitioned is true only
// for the single call that moved the order out of ACTIVE; every later call on
// the same order sees the settled snapshot with Transitioned false.
type Result struct {
	Order        *ordermodel.Order
	Transaction  *txmodel.Transaction
	Transitioned bool
}
