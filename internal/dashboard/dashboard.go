package dashboard

import (
	"time"

	txmodel "github.com/feebook/feebook/internal/core/datamodel/transaction"
	"github.com/feebook/feebook/internal/feeplan"
	"github.com/feebook/feebook/internal/transaction"
	"github.com/shopspring/decimal"
)

// PlanCounts buckets a provider's fee plans by derived status.
type PlanCounts struct {
	Due     int64 `json:"due"`
	Overdue int64 `json:"overdue"`
	Paid    int64 `json:"paid"`
}

// Repository serves the aggregate reads behind dashboards. All methods are
// read-only; derived-status rules (paid signals, due-date cutoff) live in the
// SQL so counts match what the fee plan views report.
type Repository interface {
	SumCollectedBetween(providerID int64, from, to time.Time) (decimal.Decimal, error)
	PlanStatusCounts(providerID int64, now time.Time) (PlanCounts, error)
	OutstandingTotals(providerID int64, now time.Time) (outstanding, overdue decimal.Decimal, err error)
	RecentTransactionsByProvider(providerID int64, limit int) ([]*txmodel.Transaction, error)
}

type ProviderDashboard struct {
	ProviderID         int64                          `json:"provider_id"`
	WalletBalance      string                         `json:"wallet_balance"`
	CollectedThisMonth string                         `json:"collected_this_month"`
	CollectedLastMonth string                         `json:"collected_last_month"`
	OutstandingTotal   string                         `json:"outstanding_total"`
	OverdueTotal       string                         `json:"overdue_total"`
	PlanCounts         PlanCounts                     `json:"plan_counts"`
	RecentTransactions []*transaction.TransactionView `json:"recent_transactions"`
	GeneratedAt        time.Time                      `json:"generated_at"`
}

type ConsumerDashboard struct {
	MemberID         int64                          `json:"member_id"`
	OutstandingTotal string                         `json:"outstanding_total"`
	UpcomingDues     []*feeplan.FeePlanView         `json:"upcoming_dues"`
	RecentPayments   []*transaction.TransactionView `json:"recent_payments"`
	GeneratedAt      time.Time                      `json:"generated_at"`
}
