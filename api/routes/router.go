package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/moh9765/dispatchly-backend/api/controllers"
	"github.com/moh9765/dispatchly-backend/api/middleware"
	broadcastsvc "github.com/moh9765/dispatchly-backend/internal/broadcast"
	checkoutsvc "github.com/moh9765/dispatchly-backend/internal/checkout"
	"github.com/moh9765/dispatchly-backend/internal/orders"
	rewardsvc "github.com/moh9765/dispatchly-backend/internal/rewards"
	walletsvc "github.com/moh9765/dispatchly-backend/internal/wallet"
	"github.com/moh9765/dispatchly-backend/pkg/auth/session"
	"github.com/moh9765/dispatchly-backend/pkg/config"
	"github.com/moh9765/dispatchly-backend/pkg/db"
	"github.com/moh9765/dispatchly-backend/pkg/enums"
	"github.com/moh9765/dispatchly-backend/pkg/logger"
	"github.com/moh9765/dispatchly-backend/pkg/metrics"
	"github.com/moh9765/dispatchly-backend/pkg/redis"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          db.Pinger
	Redis       *redis.Client
	Sessions    session.AccessSessionChecker
	HTTPMetrics *metrics.HTTPMetrics
	Registry    *prometheus.Registry

	Checkout  checkoutsvc.Service
	Broadcast broadcastsvc.Service
	Orders    orders.Service
	Wallet    walletsvc.Service
	Rewards   rewardsvc.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB, deps.Redis, logg))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	checkoutPolicy := middleware.NewRateLimitPolicy(
		"checkout",
		cfg.RateLimit.CheckoutWindow,
		cfg.RateLimit.CheckoutIPLimit,
		cfg.RateLimit.CheckoutUserLimit,
	)
	dispatchPolicy := middleware.NewRateLimitPolicy(
		"dispatch",
		cfg.RateLimit.DispatchWindow,
		cfg.RateLimit.DispatchIPLimit,
		cfg.RateLimit.DispatchUserLimit,
	)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Route("/v1", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(enums.UserRoleCustomer.String(), logg))
				r.With(middleware.RateLimit(checkoutPolicy, deps.Redis, logg)).Post("/orders/checkout", controllers.Checkout(deps.Checkout, logg))
				r.Get("/orders", controllers.CustomerOrders(deps.Orders, logg))
				r.Get("/orders/{orderId}", controllers.CustomerOrderDetail(deps.Orders, logg))
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(enums.UserRoleDriver.String(), logg))
				r.Get("/driver/offers", controllers.DriverOffers(deps.Broadcast, logg))
				r.With(middleware.RateLimit(dispatchPolicy, deps.Redis, logg)).Post("/driver/offers/{orderId}/accept", controllers.AcceptOffer(deps.Broadcast, logg))
				r.With(middleware.RateLimit(dispatchPolicy, deps.Redis, logg)).Post("/driver/offers/{orderId}/reject", controllers.RejectOffer(deps.Broadcast, logg))
				r.Get("/driver/orders", controllers.DriverOrders(deps.Orders, logg))
				r.Post("/driver/position", controllers.DriverUpdatePosition(deps.Broadcast, logg))
				r.With(middleware.RateLimit(dispatchPolicy, deps.Redis, logg)).Post("/driver/orders/{orderId}/status", controllers.DriverUpdateOrderStatus(deps.Broadcast, logg))
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(enums.UserRoleAdmin.String(), logg))
				r.Post("/orders/{orderId}/broadcast", controllers.BroadcastOrder(deps.Broadcast, logg))
			})

			r.Route("/wallet", func(r chi.Router) {
				r.Get("/", controllers.Wallet(deps.Wallet, logg))
				r.Post("/funds", controllers.WalletAddFunds(deps.Wallet, logg))
				r.Post("/withdraw", controllers.WalletWithdraw(deps.Wallet, logg))
				r.Get("/transactions", controllers.WalletTransactions(deps.Wallet, logg))
			})

			r.Route("/rewards", func(r chi.Router) {
				r.Get("/", controllers.RewardAccount(deps.Rewards, logg))
				r.Post("/redeem", controllers.RewardRedeem(deps.Rewards, logg))
				r.Get("/transactions", controllers.RewardTransactions(deps.Rewards, logg))
			})
		})

		r.Route("/admin/v1", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.UserRoleAdmin.String(), logg))
			r.Post("/orders/{orderId}/assign", controllers.AdminAssignOrder(deps.Broadcast, logg))
		})
	})

	return r
}
