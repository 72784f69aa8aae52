package provider

import (
	"log/slog"

	errors "github.com/feebook/feebook/internal"
	providermodel "github.com/feebook/feebook/internal/core/datamodel/provider"
	"github.com/shopspring/decimal"
)

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

func (s *Service) GetProvider(id int64) (*providermodel.Provider, error) {
	p, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get provider", "error", err, "provider_id", id)
		return nil, errors.ErrProviderNotFound
	}
	return p, nil
}

// WalletBalance is a lock-free snapshot read; the balance is only ever
// mutated inside the reconciliation engine's settlement path.
func (s *Service) WalletBalance(providerID int64) (decimal.Decimal, error) {
	balance, err := s.repo.GetWalletBalance(providerID)
	if err != nil {
		s.logger.Error("failed to read wallet balance", "error", err, "provider_id", providerID)
		return decimal.Zero, errors.ErrProviderNotFound
	}
	return balance, nil
}
