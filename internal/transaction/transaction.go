package transaction

import (
	gatewaytypes "github.com/feebook/feebook/internal/core/datamodel/gateway"
	txmodel "github.com/feebook/feebook/internal/core/datamodel/transaction"
)

// Repository defines the data access methods for the transaction ledger.
type Repository interface {
	Create(t *txmodel.Transaction) error
	Update(t *txmodel.Transaction) error
	GetByExternalPaymentID(externalPaymentID string) (*txmodel.Transaction, error)

	// GetPlaceholderByOrderID returns the single pre-settlement row (nil
	// external payment id) for the order, if any.
	GetPlaceholderByOrderID(orderID int64) (*txmodel.Transaction, error)

	GetLatestByOrderID(orderID int64) (*txmodel.Transaction, error)
	ListByOrderID(orderID int64) ([]*txmodel.Transaction, error)
	ListByConsumer(consumerID int64, filters Filters, limit, offset int) ([]*txmodel.Transaction, error)
}

// statusRank orders the settlement path. A transaction only ever moves to a
// strictly higher rank; equal-rank terminal disagreements are conflicts.
func statusRank(status string) int {
	switch status {
	case txmodel.StatusNotAttempted:
		return 0
	case txmodel.StatusPending:
		return 1
	default:
		return 2
	}
}

// ResolveStatus applies the monotonic rule to an existing and an incoming
// status. It returns the status to persist and whether the pair was a
// terminal-vs-terminal conflict the caller should log.
//
// Gateway notifications race: a FAILED arriving after a SUCCESS must not
// downgrade the record. When two different terminal states are claimed,
// SUCCESS wins over any other because money received is authoritative;
// otherwise the first-observed terminal state is kept.
func ResolveStatus(existing, incoming string) (string, bool) {
	if existing == incoming {
		return existing, false
	}

	if !txmodel.IsTerminal(existing) {
		if statusRank(incoming) < statusRank(existing) {
			return existing, false
		}
		return incoming, false
	}

	if !txmodel.IsTerminal(incoming) {
		// stale pre-settlement update after settlement, drop it
		return existing, false
	}

	if incoming == txmodel.StatusSuccess {
		return txmodel.StatusSuccess, true
	}
	return existing, true
}

// MapGatewayStatus translates a gateway payment state into the ledger status.
// Unknown states are treated as PENDING rather than guessed terminal.
func MapGatewayStatus(state string) string {
	switch state {
	case gatewaytypes.PaymentStateSuccess:
		return txmodel.StatusSuccess
	case gatewaytypes.PaymentStateFailed:
		return txmodel.StatusFailed
	case gatewaytypes.PaymentStateCancelled:
		return txmodel.StatusCancelled
	case gatewaytypes.PaymentStateUserDropped:
		return txmodel.StatusUserDropped
	case gatewaytypes.PaymentStateVoid:
		return txmodel.StatusVoid
	case gatewaytypes.PaymentStateNotAttempted:
		return txmodel.StatusNotAttempted
	case gatewaytypes.PaymentStatePending:
		return txmodel.StatusPending
	default:
		return txmodel.StatusPending
	}
}
