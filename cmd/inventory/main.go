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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-marketplace-orders/internal/config"
	"github.com/ariefcatur/go-marketplace-orders/internal/inventory"
	kafkax "github.com/ariefcatur/go-marketplace-orders/internal/kafka"
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
		logging.Bootstrap("marketplace-api-inventory").Fatal("config_invalid", zap.Error(err))
	}
	service := cfg.ServiceName + "-inventory"
	log := logging.MustNew(service, cfg.Env)
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	if len(cfg.KafkaBrokers) == 0 {
		log.Fatal("kafka_brokers_required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// DB, read for the low-stock threshold only
	db, err := postgres.Connect(ctx, cfg.PostgresDSN, cfg.PostgresMaxConns)
	if err != nil {
		log.Fatal("db_connect_failed", zap.Error(err))
	}
	defer db.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metricsSrv := &http.Server{
		Addr:              cfg.InventoryMetricsAddr,
		Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("metrics_listening", zap.String("addr", cfg.InventoryMetricsAddr))
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics_listen_failed", zap.Error(err))
		}
	}()

	alerts := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicListingStockLow, 1024, log)
	alerts.Start(ctx)

	svc := &inventory.Service{
		Settings:    settings.NewCache(&settings.Store{DB: db}, cfg.SettingsTTL),
		Alerts:      alerts,
		ServiceName: service,
		Metrics:     metrics.New(reg),
		Log:         log,
	}
	if cfg.RedisAddr != "" {
		rdb := redisx.New(cfg.RedisAddr)
		defer rdb.Close()
		svc.Claims = &redisx.Claimer{RDB: rdb}
	}

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.InventoryGroup, orders.TopicOrderCreated, cfg.InventoryWorkers, log)
	log.Info("inventory_consumer_started",
		zap.String("group", cfg.InventoryGroup),
		zap.String("topic", orders.TopicOrderCreated),
		zap.Int("workers", cfg.InventoryWorkers),
	)
	if err := cons.Start(ctx, svc.HandleOrderCreated); err != nil && ctx.Err() == nil {
		log.Error("consumer_exit", zap.Error(err))
	}

	log.Info("shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("metrics_shutdown_failed", zap.Error(err))
	}
	alerts.Close()
	alerts.WaitClosed()
}
