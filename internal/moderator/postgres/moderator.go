package postgres

import (
	querymodel "github.com/feebook/feebook/internal/core/datamodel/moderator"
	moderatorpkg "github.com/feebook/feebook/internal/moderator"
	"gorm.io/gorm"
)

type QueryRepository struct {
	db *gorm.DB
}

func NewQueryRepository(db *gorm.DB) moderatorpkg.Repository {
	return &QueryRepository{
		db: db,
	}
}

func (r *QueryRepository) Create(q *querymodel.Query) error {
	return r.db.Create(q).Error
}

func (r *QueryRepository) GetByID(id int64) (*querymodel.Query, error) {
	var q querymodel.Query
	err := r.db.First(&q, id).Error
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *QueryRepository) ListByStatus(status string, limit, offset int) ([]*querymodel.Query, error) {
	q := r.db.Order("created_at DESC").Limit(limit).Offset(offset)
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var queries []*querymodel.Query
	err := q.Find(&queries).Error
	return queries, err
}

func (r *QueryRepository) ListByRaisedBy(userID int64, limit, offset int) ([]*querymodel.Query, error) {
	var queries []*querymodel.Query
	err := r.db.Where("raised_by_id = ?", userID).
		Order("created_at DESC").Limit(limit).Offset(offset).
		Find(&queries).Error
	return queries, err
}

func (r *QueryRepository) Update(q *querymodel.Query) error {
	return r.db.Save(q).Error
}
