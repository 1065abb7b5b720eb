package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Vodeneev/surebetbot/internal/pkg/health/handlers"
)

// NewRouter builds the service router: /ping, /health, /metrics plus routes added by register.
func NewRouter(gatherer prometheus.Gatherer, checks map[string]handlers.Check, register ...func(chi.Router)) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	// Health endpoints
	r.Get("/ping", handlers.HandlePing)
	r.Get("/health", handlers.HealthHandler(checks))

	// Metrics endpoint
	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", handlers.MetricsHandler(gatherer))
	}

	for _, fn := range register {
		fn(r)
	}
	return r
}

// Run serves handler on addr until ctx is cancelled. It returns immediately.
func Run(ctx context.Context, addr string, service string, handler http.Handler, readHeaderTimeout time.Duration) {
	if readHeaderTimeout <= 0 {
		readHeaderTimeout = 5 * time.Second
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	go func() {
		slog.Info("Health server listening", "service", service, "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Health server error", "service", service, "error", err)
		}
	}()
}
