package moderator

import (
	querymodel "github.com/feebook/feebook/internal/core/datamodel/moderator"
)

// Repository defines the data access methods for support queries.
type Repository interface {
	Create(q *querymodel.Query) error
	GetByID(id int64) (*querymodel.Query, error)
	ListByStatus(status string, limit, offset int) ([]*querymodel.Query, error)
	ListByRaisedBy(userID int64, limit, offset int) ([]*querymodel.Query, error)
	Update(q *querymodel.Query) error
}
