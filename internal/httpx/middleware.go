package httpx

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-marketplace-orders/internal/apperr"
	"github.com/ariefcatur/go-marketplace-orders/internal/auth"
	"github.com/ariefcatur/go-marketplace-orders/internal/logging"
	"github.com/ariefcatur/go-marketplace-orders/internal/metrics"
)

const headerRequestID = "X-Request-ID"

// requestContext echoes the request id and puts a request-scoped logger
// into the context. Must run after middleware.RequestID.
func requestContext(base *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rid := middleware.GetReqID(r.Context())
			w.Header().Set(headerRequestID, rid)

			log := base.With(
				zap.String("request_id", rid),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
			)
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(logging.ContextWithLogger(r.Context(), log)))

			log.Info("http_access",
				zap.Int("status", ww.Status()),
				zap.Int64("latency_ms", time.Since(start).Milliseconds()),
			)
		})
	}
}

// tracing starts a server span per request, continuing any W3C parent.
func tracing(next http.Handler) http.Handler {
	tracer := otel.Tracer("httpx")
	prop := otel.GetTextMapPropagator()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := prop.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		ctx, span := tracer.Start(ctx, r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.target", r.URL.Path),
				attribute.String("request_id", middleware.GetReqID(r.Context())),
			),
		)
		defer span.End()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// httpMetrics records request counts and latency by route pattern.
func httpMetrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := "unknown"
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			m.ObserveHTTP(r.Method, route, status, time.Since(start))
		})
	}
}

// authenticate resolves the bearer token into an Identity; requests
// without a valid one are rejected with 401.
func authenticate(resolver auth.Resolver, rs Responder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := auth.BearerToken(r.Header.Get("Authorization"))
			if !ok {
				rs.Error(w, r, apperr.Unauthenticated("missing or invalid authorization header"))
				return
			}
			id, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				rs.Error(w, r, err)
				return
			}
			ctx := auth.WithIdentity(r.Context(), id)
			logging.FromContext(ctx).Debug("authenticated", zap.String("user_id", id.UserID.String()), zap.String("role", string(id.Role)))
			ctx = logging.ContextWithLogger(ctx, logging.FromContext(ctx).With(zap.String("user_id", id.UserID.String())))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// caller returns the identity placed by authenticate.
func caller(r *http.Request) auth.Identity {
	id, _ := auth.FromContext(r.Context())
	return id
}
