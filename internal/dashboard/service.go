package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	errors "github.com/feebook/feebook/internal"
	feeplanmodel "github.com/feebook/feebook/internal/core/datamodel/feeplan"
	"github.com/feebook/feebook/internal/core/events"
	"github.com/feebook/feebook/internal/feeplan"
	"github.com/feebook/feebook/internal/provider"
	"github.com/feebook/feebook/internal/transaction"
	"github.com/shopspring/decimal"
)

const recentTransactionsLimit = 10

type Service struct {
	repo      Repository
	plans     feeplan.Repository
	providers provider.Repository
	ledger    *transaction.Service
	cache     Cache
	logger    *slog.Logger
}

func NewService(
	repo Repository,
	plans feeplan.Repository,
	providers provider.Repository,
	ledger *transaction.Service,
	cache Cache,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:      repo,
		plans:     plans,
		providers: providers,
		ledger:    ledger,
		cache:     cache,
		logger:    logger,
	}
}

// ProviderDashboard assembles the provider rollup, served from cache within
// the TTL. Collected revenue is windowed by calendar month in UTC, current
// and previous.
func (s *Service) ProviderDashboard(providerID int64) (*ProviderDashboard, error) {
	key := providerCacheKey(providerID)
	if cached, ok := s.cache.Get(key); ok {
		if d, ok := cached.(*ProviderDashboard); ok {
			return d, nil
		}
	}

	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	lastMonthStart := monthStart.AddDate(0, -1, 0)

	balance, err := s.providers.GetWalletBalance(providerID)
	if err != nil {
		return nil, errors.ErrProviderNotFound
	}

	collected, err := s.repo.SumCollectedBetween(providerID, monthStart, now)
	if err != nil {
		s.logger.Error("dashboard: failed to sum collected", "error", err, "provider_id", providerID)
		return nil, errors.NewInternalError("failed to build dashboard", err)
	}

	collectedLastMonth, err := s.repo.SumCollectedBetween(providerID, lastMonthStart, monthStart)
	if err != nil {
		s.logger.Error("dashboard: failed to sum last month collected", "error", err, "provider_id", providerID)
		return nil, errors.NewInternalError("failed to build dashboard", err)
	}

	counts, err := s.repo.PlanStatusCounts(providerID, now)
	if err != nil {
		s.logger.Error("dashboard: failed to count plans", "error", err, "provider_id", providerID)
		return nil, errors.NewInternalError("failed to build dashboard", err)
	}

	outstanding, overdue, err := s.repo.OutstandingTotals(providerID, now)
	if err != nil {
		s.logger.Error("dashboard: failed to total outstanding", "error", err, "provider_id", providerID)
		return nil, errors.NewInternalError("failed to build dashboard", err)
	}

	recent, err := s.repo.RecentTransactionsByProvider(providerID, recentTransactionsLimit)
	if err != nil {
		s.logger.Error("dashboard: failed to list recent transactions", "error", err, "provider_id", providerID)
		return nil, errors.NewInternalError("failed to build dashboard", err)
	}

	d := &ProviderDashboard{
		ProviderID:         providerID,
		WalletBalance:      balance.StringFixed(2),
		CollectedThisMonth: collected.StringFixed(2),
		CollectedLastMonth: collectedLastMonth.StringFixed(2),
		OutstandingTotal:   outstanding.StringFixed(2),
		OverdueTotal:       overdue.StringFixed(2),
		PlanCounts:         counts,
		RecentTransactions: transaction.ToViews(recent),
		GeneratedAt:        now,
	}

	s.cache.Set(key, d, 0)
	return d, nil
}

// ConsumerDashboard assembles the consumer view: unpaid plans for the member
// ordered by due date, plus the consumer's recent payment attempts.
func (s *Service) ConsumerDashboard(consumerID, memberID int64) (*ConsumerDashboard, error) {
	key := consumerCacheKey(consumerID, memberID)
	if cached, ok := s.cache.Get(key); ok {
		if d, ok := cached.(*ConsumerDashboard); ok {
			return d, nil
		}
	}

	now := time.Now().UTC()

	plans, err := s.plans.ListByMember(memberID, 100, 0)
	if err != nil {
		s.logger.Error("dashboard: failed to list member plans", "error", err, "member_id", memberID)
		return nil, errors.NewInternalError("failed to build dashboard", err)
	}

	upcoming := make([]*feeplan.FeePlanView, 0, len(plans))
	outstanding := decimal.Zero
	for _, plan := range plans {
		if feeplan.DeriveStatus(plan, now) == feeplanmodel.StatusPaid {
			continue
		}
		upcoming = append(upcoming, feeplan.ToView(plan, now))
		outstanding = outstanding.Add(plan.Amount)
	}

	recent, err := s.ledger.ListByConsumer(consumerID, transaction.Filters{}, recentTransactionsLimit, 0)
	if err != nil {
		return nil, errors.NewInternalError("failed to build dashboard", err)
	}

	d := &ConsumerDashboard{
		MemberID:         memberID,
		OutstandingTotal: outstanding.StringFixed(2),
		UpcomingDues:     upcoming,
		RecentPayments:   transaction.ToViews(recent),
		GeneratedAt:      now,
	}

	s.cache.Set(key, d, 0)
	return d, nil
}

// RegisterInvalidations wires settlement events to cache eviction so a paid
// fee is visible on the next dashboard read instead of after TTL expiry.
func (s *Service) RegisterInvalidations(bus *events.EventBus) {
	invalidate := func(ctx context.Context, event events.Event) error {
		payload, ok := event.Payload().(map[string]interface{})
		if !ok {
			return nil
		}
		if providerID, ok := payload["provider_id"].(int64); ok {
			s.cache.Invalidate(providerCacheKey(providerID))
		}
		return nil
	}

	bus.Subscribe(events.EventTypeOrderSettled, invalidate)
	bus.Subscribe(events.EventTypeOrderClosed, invalidate)
	bus.Subscribe(events.EventTypeFeePlanOfflinePaid, invalidate)
}

func providerCacheKey(providerID int64) string {
	return fmt.Sprintf("dashboard:provider:%d", providerID)
}

func consumerCacheKey(consumerID, memberID int64) string {
	return fmt.Sprintf("dashboard:consumer:%d:%d", consumerID, memberID)
}
