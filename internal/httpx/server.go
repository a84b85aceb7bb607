package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-marketplace-orders/internal/auth"
	"github.com/ariefcatur/go-marketplace-orders/internal/metrics"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type RouterConfig struct {
	Logger   *zap.Logger
	Timeout  time.Duration
	Resolver auth.Resolver
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer // nil disables /metrics
	DB       Pinger

	Orders   *OrdersHandler
	Listings *ListingsHandler
	Settings *SettingsHandler
	Resp     Responder
}

func NewRouter(cfg RouterConfig) *chi.Mux {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestContext(cfg.Logger), middleware.Recoverer)
	r.Use(tracing, httpMetrics(cfg.Metrics))
	r.Use(middleware.Timeout(cfg.Timeout))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if cfg.DB != nil {
			if err := cfg.DB.Ping(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "database unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, dataBody{Success: true, Data: map[string]string{"status": "ok"}})
	})
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}
	if cfg.Settings != nil {
		cfg.Settings.RegisterPublic(r)
	}

	r.Group(func(r chi.Router) {
		r.Use(authenticate(cfg.Resolver, cfg.Resp))
		if cfg.Orders != nil {
			cfg.Orders.Register(r)
		}
		if cfg.Listings != nil {
			cfg.Listings.Register(r)
		}
		if cfg.Settings != nil {
			cfg.Settings.Register(r)
		}
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "route not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
	})
	return r
}
