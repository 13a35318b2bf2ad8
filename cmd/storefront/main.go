package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/config"
	"github.com/fjod/go_cart/storefront/internal/events"
	h "github.com/fjod/go_cart/storefront/internal/http"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/fjod/go_cart/storefront/internal/notify"
	"github.com/fjod/go_cart/storefront/internal/session"
	"github.com/fjod/go_cart/storefront/internal/storage"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(2)
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}
	log := logger.New(os.Stderr, level)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("storefront stopped with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx := context.Background()
	otel.SetTextMapPropagator(propagation.TraceContext{})

	var redisClient *redis.Client
	if cfg.Storage.Backend == config.BackendRedis || cfg.Catalog.Cache {
		client, err := storage.ConnectRedis(ctx, cfg.Storage.Redis.Addr, cfg.Storage.Redis.Password, cfg.Storage.Redis.DB)
		if err != nil {
			return err
		}
		defer client.Close()
		redisClient = client
		log.Info("connected to redis", "addr", cfg.Storage.Redis.Addr)
	}

	var bridge storage.Bridge
	switch cfg.Storage.Backend {
	case config.BackendRedis:
		bridge = storage.NewRedisStore(redisClient, cfg.Storage.Redis.TTL)
	case config.BackendMongo:
		db, err := storage.ConnectMongoDB(ctx, cfg.Storage.Mongo.URI, cfg.Storage.Mongo.Database)
		if err != nil {
			return err
		}
		defer disconnectMongo(db, log)
		bridge = storage.NewMongoStore(db, cfg.Storage.Mongo.Collection)
		log.Info("connected to mongodb", "database", cfg.Storage.Mongo.Database)
	default:
		bridge = storage.NewMemoryStore()
	}

	repo, err := catalog.NewRepository(cfg.Catalog.DBPath)
	if err != nil {
		return err
	}
	defer repo.Close()
	if err := repo.RunMigrations(); err != nil {
		return err
	}

	var api catalog.API = repo
	if cfg.Catalog.Cache {
		api = catalog.NewCachedAPI(api, redisClient, cfg.Catalog.CacheTTL, log)
	}
	breaker := catalog.DefaultBreakerSettings()
	breaker.Timeout = cfg.Catalog.BreakerTimeout
	breaker.ConsecutiveFailures = cfg.Catalog.BreakerMaxFailures
	api = catalog.NewBreakerAPI(api, breaker, log)

	sessions := session.NewManager(bridge, api, session.Options{
		TTL:             cfg.Session.TTL,
		CleanupInterval: cfg.Session.CleanupInterval,
		SearchDebounce:  cfg.Session.SearchDebounce,
		InboxSize:       cfg.Session.InboxSize,
	}, log)
	defer sessions.Close()

	gateway := checkout.NewSimulatedGateway(cfg.Payment.Delay, cfg.Payment.FailureRate)
	var checkoutOpts []checkout.Option
	if len(cfg.Events.Brokers) > 0 {
		publisher := events.NewKafkaPublisher(cfg.Events.Topic, cfg.Events.Brokers...)
		defer publisher.Close()
		checkoutOpts = append(checkoutOpts, checkout.WithPublisher(publisher))
		log.Info("publishing order events", "topic", cfg.Events.Topic, "brokers", cfg.Events.Brokers)
	}
	orders := checkout.NewService(gateway, notify.LogNotifier{Logger: log}, log, checkoutOpts...)

	handler := h.NewRouter(h.RouterConfig{
		Sessions:           sessions,
		Catalog:            api,
		Checkout:           orders,
		Logger:             log,
		RequestTimeout:     cfg.HTTP.RequestTimeout,
		MaxRequestBodySize: cfg.HTTP.MaxRequestBodySize,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.HTTP.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("storefront starting", "port", cfg.HTTP.Port, "storage", cfg.Storage.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server exited")
	return nil
}

func disconnectMongo(db *mongo.Database, log *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.Client().Disconnect(ctx); err != nil {
		log.Error("failed to disconnect mongodb", "err", err)
	}
}
