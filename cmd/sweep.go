package cmd

import (
	"context"
	"log"
	"time"

	"github.com/feebook/feebook/internal/core/events"
	feeplanpostgres "github.com/feebook/feebook/internal/feeplan/postgres"
	"github.com/feebook/feebook/internal/gateway"
	orderpostgres "github.com/feebook/feebook/internal/order/postgres"
	"github.com/feebook/feebook/internal/reconcile"
	reconcilepostgres "github.com/feebook/feebook/internal/reconcile/postgres"
	"github.com/feebook/feebook/internal/transaction"
	transactionpostgres "github.com/feebook/feebook/internal/transaction/postgres"
	"github.com/feebook/feebook/pkg/logger"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	sweepCmd = &cobra.Command{
		RunE:  runSweep,
		Use:   "sweep",
		Short: "Re-verify ACTIVE orders that have not settled, catching missed webhooks",
	}
	sweepOlderThan time.Duration
	sweepLimit     int
)

func init() {
	sweepCmd.Flags().DurationVar(&sweepOlderThan, "older-than", 30*time.Minute, "only sweep orders created before now minus this duration")
	sweepCmd.Flags().IntVar(&sweepLimit, "limit", 200, "maximum orders to sweep in one run")
}

// runSweep drives the stuck-order sweep through the same verification path
// the webhook and poll endpoints use. Intended for cron.
func runSweep(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig(".")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger.Init("production")
	lg := logger.LoggerWrapper()

	sqlDB, err := initDB(cfg.Database)
	if err != nil {
		log.Fatalf("failed to init db: %v", err)
	}
	defer sqlDB.Close()

	db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to init orm: %v", err)
	}

	gatewayClient := gateway.NewClient(gateway.Config{
		BaseURL:        cfg.Gateway.BaseURL,
		ClientID:       cfg.Gateway.ClientID,
		ClientSecret:   cfg.Gateway.ClientSecret,
		RequestTimeout: cfg.Gateway.RequestTimeout,
		ReturnURL:      cfg.Gateway.ReturnURL,
		NotifyURL:      cfg.Gateway.WebhookURL,
	}, lg)

	txService := transaction.NewService(transactionpostgres.NewTransactionRepository(db), lg)
	engine := reconcile.NewEngine(
		orderpostgres.NewOrderRepository(db),
		feeplanpostgres.NewFeePlanRepository(db),
		txService,
		reconcilepostgres.NewSettlementRepository(db),
		gatewayClient,
		events.NewEventBus(lg),
		lg,
	)

	cutoff := time.Now().Add(-sweepOlderThan)
	settled, err := engine.SweepStaleOrders(context.Background(), cutoff, sweepLimit)
	if err != nil {
		return err
	}

	lg.Info("sweep completed", "settled", settled, "cutoff", cutoff)
	return nil
}
