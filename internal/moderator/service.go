package moderator

import (
	"log/slog"
	"time"

	apperrors "github.com/feebook/feebook/internal"
	querymodel "github.com/feebook/feebook/internal/core/datamodel/moderator"
	txmodel "github.com/feebook/feebook/internal/core/datamodel/transaction"
	"github.com/feebook/feebook/internal/transaction"
)

// Service handles support queries and read-only payment-log access for
// moderators. No settlement state is ever mutated from here.
type Service struct {
	repo   Repository
	ledger *transaction.Service
	logger *slog.Logger
}

func NewService(repo Repository, ledger *transaction.Service, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		ledger: ledger,
		logger: logger,
	}
}

func (s *Service) RaiseQuery(dto CreateQueryDTO) (*querymodel.Query, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	q := &querymodel.Query{
		RaisedByID: dto.RaisedByID,
		Subject:    dto.Subject,
		Body:       dto.Body,
		Status:     querymodel.QueryStatusOpen,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Create(q); err != nil {
		s.logger.Error("failed to create query", "error", err, "raised_by_id", dto.RaisedByID)
		return nil, apperrors.NewInternalError("failed to create query", err)
	}

	s.logger.Info("support query raised", "query_id", q.ID, "raised_by_id", q.RaisedByID)
	return q, nil
}

func (s *Service) GetQuery(id int64) (*querymodel.Query, error) {
	q, err := s.repo.GetByID(id)
	if err != nil {
		return nil, apperrors.ErrQueryNotFound
	}
	return q, nil
}

func (s *Service) ListQueries(status string, limit, offset int) ([]*querymodel.Query, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	qs, err := s.repo.ListByStatus(status, limit, offset)
	if err != nil {
		s.logger.Error("failed to list queries", "error", err, "status", status)
		return nil, apperrors.NewInternalError("failed to list queries", err)
	}
	return qs, nil
}

func (s *Service) ListQueriesForUser(userID int64, limit, offset int) ([]*querymodel.Query, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	qs, err := s.repo.ListByRaisedBy(userID, limit, offset)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list queries", err)
	}
	return qs, nil
}

// ResolveQuery closes an open query with a resolution note. Resolving an
// already resolved query is a conflict, not an overwrite.
func (s *Service) ResolveQuery(id int64, dto ResolveQueryDTO) (*querymodel.Query, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	q, err := s.repo.GetByID(id)
	if err != nil {
		return nil, apperrors.ErrQueryNotFound
	}

	if q.Status == querymodel.QueryStatusResolved {
		return nil, apperrors.NewConflictError("query is already resolved", apperrors.ErrCodeDuplicateClaim)
	}

	now := time.Now()
	q.Status = querymodel.QueryStatusResolved
	q.Resolution = dto.Resolution
	q.ResolvedAt = &now
	q.UpdatedAt = now

	if err := s.repo.Update(q); err != nil {
		s.logger.Error("failed to resolve query", "error", err, "query_id", id)
		return nil, apperrors.NewInternalError("failed to resolve query", err)
	}

	s.logger.Info("support query resolved", "query_id", id)
	return q, nil
}

// PaymentLogs exposes the raw attempt ledger for one order so moderators can
// settle disputes from recorded facts.
func (s *Service) PaymentLogs(orderID int64) ([]*txmodel.Transaction, error) {
	txs, err := s.ledger.ListByOrder(orderID)
	if err != nil {
		s.logger.Error("failed to load payment logs", "error", err, "order_id", orderID)
		return nil, apperrors.NewInternalError("failed to load payment logs", err)
	}
	return txs, nil
}
