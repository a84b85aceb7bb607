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
	"go.uber.org/zap"

	"github.com/ariefcatur/go-marketplace-orders/internal/auth"
	"github.com/ariefcatur/go-marketplace-orders/internal/config"
	"github.com/ariefcatur/go-marketplace-orders/internal/httpx"
	kafkax "github.com/ariefcatur/go-marketplace-orders/internal/kafka"
	"github.com/ariefcatur/go-marketplace-orders/internal/listings"
	"github.com/ariefcatur/go-marketplace-orders/internal/logging"
	"github.com/ariefcatur/go-marketplace-orders/internal/metrics"
	"github.com/ariefcatur/go-marketplace-orders/internal/orders"
	"github.com/ariefcatur/go-marketplace-orders/internal/postgres"
	"github.com/ariefcatur/go-marketplace-orders/internal/redisx"
	"github.com/ariefcatur/go-marketplace-orders/internal/settings"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Bootstrap("marketplace-api").Fatal("config_invalid", zap.Error(err))
	}
	log := logging.MustNew(cfg.ServiceName, cfg.Env)
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN, cfg.PostgresMaxConns)
	if err != nil {
		log.Fatal("db_connect_failed", zap.Error(err))
	}
	defer db.Close()
	if cfg.MigrateOnStart {
		if err := postgres.Migrate(ctx, db, log); err != nil {
			log.Fatal("db_migrate_failed", zap.Error(err))
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)
	resp := httpx.Responder{Dev: cfg.Development()}

	ordersHandler := &httpx.OrdersHandler{Resp: resp}

	// Redis
	if cfg.RedisAddr != "" {
		rdb := redisx.New(cfg.RedisAddr)
		defer rdb.Close()
		ordersHandler.Idempotency = &redisx.Idempotency{RDB: rdb}
	} else {
		log.Info("redis_disabled", zap.String("reason", "REDIS_ADDR not set"))
	}

	// Kafka producers
	var notifier orders.Notifier
	var producers []*kafkax.Producer
	if len(cfg.KafkaBrokers) > 0 {
		created := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCreated, 1024, log)
		updated := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderUpdated, 1024, log)
		producers = append(producers, created, updated)
		for _, p := range producers {
			p.Start(ctx)
		}
		notifier = &kafkax.OrderEvents{Created: created, Updated: updated, ServiceName: cfg.ServiceName, Metrics: m}
	} else {
		log.Info("kafka_disabled", zap.String("reason", "KAFKA_BROKERS not set"))
	}

	settingsCache := settings.NewCache(&settings.Store{DB: db}, cfg.SettingsTTL)
	repo := &orders.Repo{DB: db}
	query := &orders.QueryService{Store: repo}

	ordersHandler.Checkout = &orders.Engine{
		DB:       db,
		Ledger:   listings.Ledger{},
		Numbers:  orders.NewNumberGenerator(cfg.OrderPrefix),
		Currency: cfg.Currency.String(),
		Notifier: notifier,
		Metrics:  m,
	}
	ordersHandler.Reader = query
	ordersHandler.Updater = &orders.Updater{DB: db, Notifier: notifier}

	router := httpx.NewRouter(httpx.RouterConfig{
		Logger:   log,
		Timeout:  cfg.RequestTimeout,
		Resolver: auth.NewJWTResolver(cfg.JWTSecret),
		Metrics:  m,
		Gatherer: reg,
		DB:       db,
		Orders:   ordersHandler,
		Listings: &httpx.ListingsHandler{Service: &listings.Service{DB: db}, Resp: resp},
		Settings: &httpx.SettingsHandler{Settings: settingsCache, Resp: resp},
		Resp:     resp,
	})

	// HTTP server
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("http_listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http_listen_failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting_down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_shutdown_failed", zap.Error(err))
	}
	for _, p := range producers {
		p.Close()
		p.WaitClosed()
	}
}
