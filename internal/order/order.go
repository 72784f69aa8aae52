package order

import (
	"time"

	ordermodel "github.com/feebook/feebook/internal/core/datamodel/order"
)

// Repository defines the data access methods for orders. Status writes go
// through MarkTerminal so a terminal order can never be overwritten.
type Repository interface {
	Create(o *ordermodel.Order) error
	GetByID(id int64) (*ordermodel.Order, error)
	GetByExternalID(externalOrderID string) (*ordermodel.Order, error)

	// MarkTerminal conditionally moves an ACTIVE order into the given terminal
	// status. Returns true only when this call performed the transition.
	MarkTerminal(id int64, status string) (bool, error)

	// ListActiveOlderThan feeds the stuck-order sweep.
	ListActiveOlderThan(cutoff time.Time, limit int) ([]*ordermodel.Order, error)
}
