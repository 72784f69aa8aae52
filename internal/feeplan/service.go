package feeplan

import (
	"log/slog"
	"time"

	errors "github.com/feebook/feebook/internal"
	feeplanmodel "github.com/feebook/feebook/internal/core/datamodel/feeplan"
)

// Service handles fee plan business logic for providers and consumers.
// Payment-driven mutations (PAID stamping) belong to the reconciliation
// engine, not here.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// CreateFeePlan creates a payable obligation for a member of the provider.
func (s *Service) CreateFeePlan(providerID int64, dto CreateFeePlanDTO) (*feeplanmodel.FeePlan, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("fee plan validation failed", "error", err, "provider_id", providerID)
		return nil, err
	}

	now := time.Now()
	plan := &feeplanmodel.FeePlan{
		MemberID:    dto.MemberID,
		ProviderID:  providerID,
		Name:        dto.Name,
		Description: dto.Description,
		Amount:      dto.Amount,
		DueDate:     dto.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	plan.Status = DeriveStatus(plan, now)

	if err := s.repo.Create(plan); err != nil {
		s.logger.Error("failed to create fee plan", "error", err, "provider_id", providerID, "member_id", dto.MemberID)
		return nil, err
	}

	s.logger.Info("fee plan created",
		"fee_plan_id", plan.ID,
		"provider_id", providerID,
		"member_id", dto.MemberID,
		"amount", dto.Amount.StringFixed(2),
		"due_date", dto.DueDate)

	return plan, nil
}

func (s *Service) GetFeePlan(id int64) (*feeplanmodel.FeePlan, error) {
	plan, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get fee plan", "error", err, "fee_plan_id", id)
		return nil, errors.ErrFeePlanNotFound
	}
	return plan, nil
}

// GetFeePlanForProvider enforces provider ownership.
func (s *Service) GetFeePlanForProvider(id, providerID int64) (*feeplanmodel.FeePlan, error) {
	plan, err := s.GetFeePlan(id)
	if err != nil {
		return nil, err
	}
	if plan.ProviderID != providerID {
		s.logger.Warn("fee plan access denied", "fee_plan_id", id, "provider_id", providerID, "owner_provider_id", plan.ProviderID)
		return nil, errors.ErrUnauthorizedOwner
	}
	return plan, nil
}

func (s *Service) ListByProvider(providerID int64, limit, offset int) ([]*feeplanmodel.FeePlan, error) {
	plans, err := s.repo.ListByProvider(providerID, limit, offset)
	if err != nil {
		s.logger.Error("failed to list provider fee plans", "error", err, "provider_id", providerID)
		return nil, err
	}
	return plans, nil
}

func (s *Service) ListByMember(memberID int64, limit, offset int) ([]*feeplanmodel.FeePlan, error) {
	plans, err := s.repo.ListByMember(memberID, limit, offset)
	if err != nil {
		s.logger.Error("failed to list member fee plans", "error", err, "member_id", memberID)
		return nil, err
	}
	return plans, nil
}

// ClaimPaid records an unverified consumer claim that a fee was paid. The
// claim never changes the derived status; it only flags the plan for the
// provider to review.
func (s *Service) ClaimPaid(feePlanID int64, claims bool) error {
	if _, err := s.GetFeePlan(feePlanID); err != nil {
		return err
	}

	if err := s.repo.SetConsumerClaimsPaid(feePlanID, claims); err != nil {
		s.logger.Error("failed to set consumer claim", "error", err, "fee_plan_id", feePlanID)
		return err
	}

	s.logger.Info("consumer payment claim updated", "fee_plan_id", feePlanID, "claims_paid", claims)
	return nil
}
