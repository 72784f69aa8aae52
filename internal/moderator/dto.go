package moderator

import (
	"time"

	apperrors "github.com/feebook/feebook/internal"
	"github.com/feebook/feebook/internal/core/common/validation"
	querymodel "github.com/feebook/feebook/internal/core/datamodel/moderator"
)

type CreateQueryDTO struct {
	Subject    string `json:"subject"`
	Body       string `json:"body"`
	RaisedByID int64  `json:"-"`
}

func (d CreateQueryDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("subject", d.Subject).Required().MaxLength(200)
	v.Field("body", d.Body).MaxLength(5000)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type ResolveQueryDTO struct {
	Resolution string `json:"resolution"`
}

func (d ResolveQueryDTO) Validate() error {
	if d.Resolution == "" {
		return apperrors.NewValidationFieldError("resolution", "resolution is required", apperrors.ErrCodeValidationFailed)
	}
	return nil
}

type QueryView struct {
	ID         int64      `json:"id"`
	RaisedByID int64      `json:"raised_by_id"`
	Subject    string     `json:"subject"`
	Body       string     `json:"body"`
	Status     string     `json:"status"`
	Resolution string     `json:"resolution,omitempty"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func ToView(q *querymodel.Query) *QueryView {
	return &QueryView{
		ID:         q.ID,
		RaisedByID: q.RaisedByID,
		Subject:    q.Subject,
		Body:       q.Body,
		Status:     q.Status,
		Resolution: q.Resolution,
		ResolvedAt: q.ResolvedAt,
		CreatedAt:  q.CreatedAt,
	}
}

func ToViews(qs []*querymodel.Query) []*QueryView {
	views := make([]*QueryView, 0, len(qs))
	for _, q := range qs {
		views = append(views, ToView(q))
	}
	return views
}
