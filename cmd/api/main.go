package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/pcforge-backend/api/routes"
	"github.com/angelmondragon/pcforge-backend/internal/builds"
	"github.com/angelmondragon/pcforge-backend/internal/cart"
	"github.com/angelmondragon/pcforge-backend/internal/catalog"
	"github.com/angelmondragon/pcforge-backend/internal/checkout"
	"github.com/angelmondragon/pcforge-backend/internal/recommender"
	"github.com/angelmondragon/pcforge-backend/internal/store"
	"github.com/angelmondragon/pcforge-backend/internal/users"
	"github.com/angelmondragon/pcforge-backend/pkg/config"
	"github.com/angelmondragon/pcforge-backend/pkg/db"
	"github.com/angelmondragon/pcforge-backend/pkg/logger"
	"github.com/angelmondragon/pcforge-backend/pkg/metrics"
	"github.com/angelmondragon/pcforge-backend/pkg/migrate"
	"github.com/angelmondragon/pcforge-backend/pkg/pubsub"
	"github.com/angelmondragon/pcforge-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var closers []func() error

	st, err := openStore(ctx, cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap store", err)
		os.Exit(1)
	}
	closers = append(closers, st.Close)

	if cfg.Store.SeedCatalog {
		seed, err := catalog.LoadSeed(cfg.Catalog.SeedPath)
		if err != nil {
			logg.Error(ctx, "failed to load catalog seed", err)
			os.Exit(1)
		}
		seeded, err := catalog.Seed(ctx, st, seed)
		if err != nil {
			logg.Error(ctx, "failed to seed catalog", err)
			os.Exit(1)
		}
		logg.Info(logg.WithField(ctx, "seeded", seeded), "catalog ready")
	}

	userService, err := users.NewService(st, cfg.Password)
	if err != nil {
		logg.Error(ctx, "failed to create users service", err)
		os.Exit(1)
	}
	seededUser, err := users.Seed(ctx, userService, cfg.Users.SeedUsername, cfg.Users.SeedPassword)
	if err != nil {
		logg.Error(ctx, "failed to seed user", err)
		os.Exit(1)
	}
	if seededUser {
		logg.Info(logg.WithField(ctx, "username", cfg.Users.SeedUsername), "user seeded")
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		closers = append(closers, redisClient.Close)
	} else {
		logg.Warn(ctx, "redis disabled; rate limiting and idempotency are off")
	}

	var publisher checkout.EventPublisher
	if cfg.PubSub.Enabled(cfg.GCP) {
		psClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap pubsub", err)
			os.Exit(1)
		}
		closers = append(closers, psClient.Close)
		if p := checkout.NewPubSubPublisher(psClient.OrdersPublisher()); p != nil {
			publisher = p
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	catalogService, err := catalog.NewService(st)
	if err != nil {
		logg.Error(ctx, "failed to create catalog service", err)
		os.Exit(1)
	}

	tax, shipping, freeOver, err := cfg.Pricing.Decimals()
	if err != nil {
		logg.Error(ctx, "invalid pricing config", err)
		os.Exit(1)
	}
	cartService, err := cart.NewService(cart.ServiceParams{
		Store:   st,
		Catalog: catalogService,
		Pricing: &cart.Pricing{TaxRate: tax, ShippingFlat: shipping, FreeShippingOver: freeOver},
		Logger:  logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create cart service", err)
		os.Exit(1)
	}

	fallback, err := builds.LoadFallback(cfg.Builder.FallbackPath)
	if err != nil {
		logg.Error(ctx, "failed to load fallback build", err)
		os.Exit(1)
	}
	advisor := recommender.NewOpenAI(cfg.OpenAI)
	if !advisor.Configured() {
		logg.Warn(ctx, "openai api key not set; builder will serve the fallback build")
	}
	buildService, err := builds.NewService(builds.ServiceParams{
		Store:       st,
		Catalog:     catalogService,
		Recommender: advisor,
		Fallback:    fallback,
		Timeout:     cfg.OpenAI.Timeout,
		Metrics:     metrics.NewBuilderMetrics(reg),
		Logger:      logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create build service", err)
		os.Exit(1)
	}

	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		Cart:      cartService,
		Publisher: publisher,
		Metrics:   metrics.NewCheckoutMetrics(reg),
		Logger:    logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create checkout service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	serverCtx := logg.WithFields(ctx, map[string]any{
		"env":          cfg.App.Env,
		"addr":         addr,
		"store_driver": cfg.Store.Driver,
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, reg, st, redisClient, catalogService, cartService, buildService, checkoutService),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.OpenAI.Timeout + 15*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(serverCtx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	exitCode := 0
	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(serverCtx, "api server stopped unexpectedly", err)
			exitCode = 1
		}
	case <-ctx.Done():
		logg.Info(serverCtx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(serverCtx, "graceful shutdown failed", err)
			exitCode = 1
		}
		cancel()
	}

	var closeErr error
	for i := len(closers) - 1; i >= 0; i-- {
		closeErr = multierr.Append(closeErr, closers[i]())
	}
	if closeErr != nil {
		logg.Error(serverCtx, "error releasing resources", closeErr)
		exitCode = 1
	}
	os.Exit(exitCode)
}

func openStore(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*store.Store, error) {
	var (
		client *db.Client
		err    error
	)
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		logg.Info(ctx, "using in-memory store")
		return store.NewMemory(), nil
	case config.StoreDriverSQLite:
		client, err = db.NewSQLite(ctx, cfg.Store.SQLitePath, logg)
	default:
		client, err = db.New(ctx, cfg.DB, logg)
	}
	if err != nil {
		return nil, err
	}
	if err := migrate.MaybeAutoMigrate(ctx, cfg, logg, client); err != nil {
		return nil, multierr.Append(err, client.Close())
	}
	return store.NewGorm(client), nil
}
