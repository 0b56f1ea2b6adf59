package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/shubhavasar/storefront-backend/api/routes"
	"github.com/shubhavasar/storefront-backend/internal/cart"
	"github.com/shubhavasar/storefront-backend/internal/checkout"
	"github.com/shubhavasar/storefront-backend/internal/fx"
	"github.com/shubhavasar/storefront-backend/internal/notify"
	"github.com/shubhavasar/storefront-backend/internal/orders"
	"github.com/shubhavasar/storefront-backend/internal/pricing"
	"github.com/shubhavasar/storefront-backend/internal/products"
	"github.com/shubhavasar/storefront-backend/internal/users"
	stripewebhook "github.com/shubhavasar/storefront-backend/internal/webhooks/stripe"
	"github.com/shubhavasar/storefront-backend/internal/wishlist"
	"github.com/shubhavasar/storefront-backend/pkg/config"
	"github.com/shubhavasar/storefront-backend/pkg/db"
	"github.com/shubhavasar/storefront-backend/pkg/email"
	"github.com/shubhavasar/storefront-backend/pkg/logger"
	"github.com/shubhavasar/storefront-backend/pkg/metrics"
	"github.com/shubhavasar/storefront-backend/pkg/migrate"
	"github.com/shubhavasar/storefront-backend/pkg/redis"
	"github.com/shubhavasar/storefront-backend/pkg/stripe"
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

	stripeClient, err := stripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap stripe", err)
		os.Exit(1)
	}

	emailClient, err := email.NewClient(cfg.Email)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap email relay", err)
		os.Exit(1)
	}

	policy, err := pricing.PolicyFromConfig(cfg.Pricing)
	if err != nil {
		logg.Error(context.Background(), "failed to parse pricing policy", err)
		os.Exit(1)
	}

	checkoutMetrics := metrics.NewCheckoutMetrics(prometheus.DefaultRegisterer)

	usersRepo := users.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())
	wishlistRepo := wishlist.NewRepository(dbClient.DB())
	productsRepo := products.NewRepository(dbClient.DB())

	converter := fx.NewConverter(cfg.FX, redisClient, logg)
	cartService := cart.NewService(redisClient)
	notifyService := notify.NewService(emailClient, cfg.Email, logg)

	checkoutService := checkout.NewService(
		stripeClient,
		policy,
		converter,
		usersRepo,
		cfg.JWT,
		cfg.Stripe,
		checkoutMetrics,
		logg,
	)

	webhookService := stripewebhook.NewService(
		ordersRepo,
		usersRepo,
		notifyService,
		stripewebhook.NewFailureRecorder(dbClient.DB(), logg),
		stripewebhook.NewEventGuard(redisClient, cfg.Webhook.IdempotencyTTL, logg),
		checkoutMetrics,
		logg,
	)

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
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			checkoutService,
			webhookService,
			stripeClient,
			notifyService,
			cartService,
			ordersRepo,
			wishlistRepo,
			productsRepo,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
