package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/feebook/feebook/internal"
	"github.com/feebook/feebook/internal/auth"
	authpostgres "github.com/feebook/feebook/internal/auth/postgres"
	"github.com/feebook/feebook/internal/core/events"
	"github.com/feebook/feebook/internal/dashboard"
	dashboardpostgres "github.com/feebook/feebook/internal/dashboard/postgres"
	"github.com/feebook/feebook/internal/feeplan"
	feeplanpostgres "github.com/feebook/feebook/internal/feeplan/postgres"
	"github.com/feebook/feebook/internal/gateway"
	"github.com/feebook/feebook/internal/moderator"
	moderatorpostgres "github.com/feebook/feebook/internal/moderator/postgres"
	"github.com/feebook/feebook/internal/order"
	orderpostgres "github.com/feebook/feebook/internal/order/postgres"
	"github.com/feebook/feebook/internal/provider"
	providerpostgres "github.com/feebook/feebook/internal/provider/postgres"
	"github.com/feebook/feebook/internal/reconcile"
	reconcilepostgres "github.com/feebook/feebook/internal/reconcile/postgres"
	"github.com/feebook/feebook/internal/transaction"
	transactionpostgres "github.com/feebook/feebook/internal/transaction/postgres"
	"github.com/feebook/feebook/internal/transport/rest"
	"github.com/feebook/feebook/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	env := "development"
	if config.Observability.Logging.Format == "json" {
		env = "production"
	}
	logger.Init(env)
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	bus := events.NewEventBus(lg)

	// Repositories
	planRepo := feeplanpostgres.NewFeePlanRepository(gormDB)
	orderRepo := orderpostgres.NewOrderRepository(gormDB)
	txRepo := transactionpostgres.NewTransactionRepository(gormDB)
	providerRepo := providerpostgres.NewProviderRepository(gormDB)
	userRepo := authpostgres.NewUserRepository(gormDB)
	queryRepo := moderatorpostgres.NewQueryRepository(gormDB)
	dashboardRepo := dashboardpostgres.NewDashboardRepository(gormDB)

	// Gateway client
	gatewayClient := gateway.NewClient(gateway.Config{
		BaseURL:        config.Gateway.BaseURL,
		ClientID:       config.Gateway.ClientID,
		ClientSecret:   config.Gateway.ClientSecret,
		RequestTimeout: config.Gateway.RequestTimeout,
		ReturnURL:      config.Gateway.ReturnURL,
		NotifyURL:      config.Gateway.WebhookURL,
	}, lg)

	// Services
	planService := feeplan.NewService(planRepo, lg)
	orderService := order.NewService(orderRepo, planService, gatewayClient, lg)
	txService := transaction.NewService(txRepo, lg)
	providerService := provider.NewService(providerRepo, lg)
	settlementRepo := reconcilepostgres.NewSettlementRepository(gormDB)
	engine := reconcile.NewEngine(orderRepo, planRepo, txService, settlementRepo, gatewayClient, bus, lg)
	moderatorService := moderator.NewService(queryRepo, txService, lg)

	cache := dashboard.NewMemoryCache(config.Dashboard.CacheTTL)
	dashboardService := dashboard.NewService(dashboardRepo, planRepo, providerRepo, txService, cache, lg)
	dashboardService.RegisterInvalidations(bus)

	tokenGen := auth.NewJWTTokenGenerator(config.Security.JWTSecret, config.Security.AccessTokenDuration)
	authService := auth.NewService(userRepo, tokenGen, config.Security.BCryptCost)

	// Handlers
	handlers := rest.Handlers{
		Auth:        auth.NewHandler(authService),
		FeePlan:     feeplan.NewHandler(planService, engine, lg),
		Order:       order.NewHandler(orderService, lg),
		Provider:    provider.NewHandler(providerService, lg),
		Reconcile:   reconcile.NewHandler(engine, lg),
		Transaction: transaction.NewHandler(txService, lg),
		Dashboard:   dashboard.NewHandler(dashboardService, lg),
		Moderator:   moderator.NewHandler(moderatorService, lg),
	}

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, db.DB, handlers, lg)

	return &Dependencies{
		Config: config,
		Logger: lg,
		DB:     db,
		Router: router,
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
