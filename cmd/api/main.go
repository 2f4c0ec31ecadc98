package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/moh9765/dispatchly-backend/api/routes"
	broadcastsvc "github.com/moh9765/dispatchly-backend/internal/broadcast"
	checkoutsvc "github.com/moh9765/dispatchly-backend/internal/checkout"
	"github.com/moh9765/dispatchly-backend/internal/orders"
	"github.com/moh9765/dispatchly-backend/internal/products"
	rewardsvc "github.com/moh9765/dispatchly-backend/internal/rewards"
	"github.com/moh9765/dispatchly-backend/internal/users"
	walletsvc "github.com/moh9765/dispatchly-backend/internal/wallet"
	"github.com/moh9765/dispatchly-backend/pkg/auth/session"
	"github.com/moh9765/dispatchly-backend/pkg/config"
	"github.com/moh9765/dispatchly-backend/pkg/db"
	"github.com/moh9765/dispatchly-backend/pkg/logger"
	"github.com/moh9765/dispatchly-backend/pkg/metrics"
	"github.com/moh9765/dispatchly-backend/pkg/migrate"
	"github.com/moh9765/dispatchly-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = "sqlite"
	}
	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)
	dispatchMetrics := metrics.NewDispatchMetrics(registry)

	ordersRepo := orders.NewRepository(dbClient.DB())
	usersRepo := users.NewRepository(dbClient.DB())
	productsRepo := products.NewRepository(dbClient.DB())
	broadcastRepo := broadcastsvc.NewRepository(dbClient.DB())
	walletRepo := walletsvc.NewRepository(dbClient.DB())
	rewardsRepo := rewardsvc.NewRepository(dbClient.DB())

	walletService, err := walletsvc.NewService(dbClient, walletRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create wallet service", err)
		os.Exit(1)
	}
	rewardsService, err := rewardsvc.NewService(dbClient, rewardsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create rewards service", err)
		os.Exit(1)
	}
	broadcastService, err := broadcastsvc.NewService(broadcastsvc.ServiceParams{
		Tx:             dbClient,
		Repo:           broadcastRepo,
		OrdersRepo:     ordersRepo,
		UsersRepo:      usersRepo,
		Wallet:         walletService,
		Metrics:        dispatchMetrics,
		SearchRadiusKM: cfg.Dispatch.DriverSearchRadiusKM,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create broadcast service", err)
		os.Exit(1)
	}
	checkoutService, err := checkoutsvc.NewService(dbClient, ordersRepo, productsRepo, rewardsService, broadcastService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}
	ordersService, err := orders.NewService(ordersRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:      cfg,
			Logger:      logg,
			DB:          dbClient,
			Redis:       redisClient,
			Sessions:    sessionManager,
			HTTPMetrics: httpMetrics,
			Registry:    registry,
			Checkout:    checkoutService,
			Broadcast:   broadcastService,
			Orders:      ordersService,
			Wallet:      walletService,
			Rewards:     rewardsService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
