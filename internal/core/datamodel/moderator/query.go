package moderator

import "time"

const (
	QueryStatusOpen     = "OPEN"
	QueryStatusResolved = "RESOLVED"
)

// Query is a support request raised by a consumer or provider and worked by a
// platform moderator. Plain field updates, no core invariants.
type Query struct {
	ID         int64      `gorm:"primaryKey"`
	RaisedByID int64      `gorm:"column:raised_by_id;not null;index"`
	Subject    string     `gorm:"column:subject;not null"`
	Body       string     `gorm:"column:body"`
	Status     string     `gorm:"column:status;default:OPEN"`
	Resolution string     `gorm:"column:resolution"`
	ResolvedAt *time.Time `gorm:"column:resolved_at"`
	CreatedAt  time.Time  `gorm:"column:created_at;default:now()"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;default:now()"`
}

func (Query) TableName() string {
	return "moderator_queries"
}
