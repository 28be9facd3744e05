package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mrivera-dev/stockroom-backend/api/routes"
	"github.com/mrivera-dev/stockroom-backend/internal/auth"
	"github.com/mrivera-dev/stockroom-backend/internal/categories"
	"github.com/mrivera-dev/stockroom-backend/internal/dashboard"
	"github.com/mrivera-dev/stockroom-backend/internal/ledger"
	"github.com/mrivera-dev/stockroom-backend/internal/orders"
	"github.com/mrivera-dev/stockroom-backend/internal/products"
	"github.com/mrivera-dev/stockroom-backend/internal/users"
	"github.com/mrivera-dev/stockroom-backend/pkg/auth/session"
	"github.com/mrivera-dev/stockroom-backend/pkg/config"
	"github.com/mrivera-dev/stockroom-backend/pkg/db"
	"github.com/mrivera-dev/stockroom-backend/pkg/logger"
	"github.com/mrivera-dev/stockroom-backend/pkg/metrics"
	"github.com/mrivera-dev/stockroom-backend/pkg/migrate"
	"github.com/mrivera-dev/stockroom-backend/pkg/redis"
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

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}
	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		SessionManager: sessionManager,
		PasswordConfig: cfg.Password,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	ledgerRepo := ledger.NewRepository(dbClient.DB())
	categoryService := categories.NewService(categories.NewRepository(dbClient.DB()), dbClient)
	productService := products.NewService(products.NewRepository(dbClient.DB()), ledgerRepo, dbClient)
	orderService := orders.NewService(orders.NewRepository(dbClient.DB()), ledgerRepo, dbClient)
	inventoryService := ledger.NewService(ledgerRepo)
	dashboardService := dashboard.NewService(dashboard.NewRepository(dbClient.DB()))

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)

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
			Config:          cfg,
			Logger:          logg,
			DB:              dbClient,
			Redis:           redisClient,
			SessionManager:  sessionManager,
			AuthService:     authService,
			RegisterService: registerService,
			Categories:      categoryService,
			Products:        productService,
			Orders:          orderService,
			Inventory:       inventoryService,
			Dashboard:       dashboardService,
			Metrics:         httpMetrics,
			Registry:        registry,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
