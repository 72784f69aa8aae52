package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/feebook/feebook/internal/auth"
	usermodel "github.com/feebook/feebook/internal/core/datamodel/user"
	"github.com/feebook/feebook/internal/dashboard"
	"github.com/feebook/feebook/internal/feeplan"
	"github.com/feebook/feebook/internal/moderator"
	"github.com/feebook/feebook/internal/order"
	"github.com/feebook/feebook/internal/provider"
	"github.com/feebook/feebook/internal/reconcile"
	"github.com/feebook/feebook/internal/transaction"
	"github.com/feebook/feebook/internal/transport/middleware"
	"github.com/feebook/feebook/internal/transport/swagger"
	"github.com/go-chi/chi"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth        *auth.Handler
	FeePlan     *feeplan.Handler
	Order       *order.Handler
	Provider    *provider.Handler
	Reconcile   *reconcile.Handler
	Transaction *transaction.Handler
	Dashboard   *dashboard.Handler
	Moderator   *moderator.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Gateway notifications authenticate via re-verification against the
		// gateway, not via bearer tokens.
		r.Post("/pg/webhook", h.Reconcile.HandleWebhook)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", h.Auth.Login)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Get("/users/me", h.Auth.CurrentUser)

			pr.Route("/fee-plans", func(fr chi.Router) {
				fr.Post("/", h.FeePlan.CreateFeePlan)
				fr.Get("/", h.FeePlan.ListFeePlans)
				fr.Get("/{id}", h.FeePlan.GetFeePlan)

				fr.Group(func(mr chi.Router) {
					mr.Use(h.Auth.RequireRole(usermodel.RoleProvider))
					mr.Patch("/{id}/offline-paid", h.FeePlan.SetOfflinePaid)
				})

				fr.Group(func(mr chi.Router) {
					mr.Use(h.Auth.RequireRole(usermodel.RoleConsumer))
					mr.Patch("/{id}/claim-paid", h.FeePlan.ClaimPaid)
				})
			})

			pr.Route("/pg", func(gr chi.Router) {
				gr.Post("/create-order", h.Order.CreateOrder)
				gr.Get("/verify-order", h.Reconcile.VerifyOrder)
			})

			pr.Get("/transactions", h.Transaction.ListTransactions)

			pr.Group(func(wr chi.Router) {
				wr.Use(h.Auth.RequireRole(usermodel.RoleProvider))
				wr.Get("/wallet", h.Provider.WalletBalance)
			})

			pr.Route("/dashboard", func(dr chi.Router) {
				dr.Get("/provider", h.Dashboard.ProviderDashboard)
				dr.Get("/consumer", h.Dashboard.ConsumerDashboard)
			})

			pr.Route("/queries", func(qr chi.Router) {
				qr.Post("/", h.Moderator.RaiseQuery)
				qr.Get("/", h.Moderator.ListQueries)
				qr.Get("/{id}", h.Moderator.GetQuery)

				qr.Group(func(mr chi.Router) {
					mr.Use(h.Auth.RequireRole(usermodel.RoleModerator))
					mr.Patch("/{id}/resolve", h.Moderator.ResolveQuery)
					mr.Get("/payment-logs/{orderID}", h.Moderator.PaymentLogs)
				})
			})
		})
	})
}
