package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/advdv/bcapture"
	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ServerConfig holds optional configuration for the HTTP server.
type ServerConfig struct {
	HealthHandler func(http.ResponseWriter, *http.Request)
}

// ServerParams holds the dependencies for creating an HTTP server.
type ServerParams struct {
	fx.In

	Env        Environment
	Mux        *Mux
	Metrics    *Metrics
	Logger     *zap.Logger
	TracerProv trace.TracerProvider
	Propagator propagation.TextMapPropagator
}

const (
	readHeaderTimeout = 10 * time.Second
	idleTimeout       = 120 * time.Second
)

// NewServer creates an HTTP server with all middleware and routing configured.
func NewServer(params ServerParams, cfg ServerConfig) *http.Server {
	params.Mux.Use(withRequestLogger(params.Logger))

	healthPath := params.Env.HealthPath
	healthHandler := cfg.HealthHandler
	if healthHandler == nil {
		healthHandler = defaultHealthHandler
	}

	params.Mux.HandleFunc("GET "+healthPath, func(_ context.Context, w bcapture.ResponseWriter, r *http.Request) error {
		healthHandler(w, r)
		return nil
	})

	// metrics are served outside of the capture, they never hold email addresses.
	root := http.NewServeMux()
	root.Handle("GET "+MetricsPath, params.Metrics.Handler())
	root.Handle("/", params.Mux)

	handler := withTracing(params.TracerProv, params.Propagator, params.Env.ServiceName, healthPath, MetricsPath)(root)

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", params.Env.Port),
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}
}

// startServerHook registers lifecycle hooks for the HTTP server.
func startServerHook(lc fx.Lifecycle, server *http.Server, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			logger.Info("starting server", zap.String("addr", server.Addr))
			go func() {
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server error", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping server")
			return server.Shutdown(ctx)
		},
	})
}

func defaultHealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}
