package app

import (
	"context"
	"net/http"

	"go.uber.org/fx"
)

// App wraps an fx.App for lifecycle management.
type App struct {
	app *fx.App
}

// AppConfig holds configuration for the app.
type AppConfig struct {
	ServerConfig
	FxOptions []fx.Option
}

// Option configures the App.
type Option func(*AppConfig)

// WithFx adds fx options for dependency injection.
func WithFx(fxOpts ...fx.Option) Option {
	return func(c *AppConfig) {
		c.FxOptions = append(c.FxOptions, fxOpts...)
	}
}

// WithHealthHandler sets a custom health check handler.
// If not set, a default handler returning 200 OK is used.
func WithHealthHandler(h func(http.ResponseWriter, *http.Request)) Option {
	return func(c *AppConfig) {
		c.HealthHandler = h
	}
}

// FxOptions returns the options that make up the dependency graph of the app. The routing
// function can request any provided type, at minimum it should accept *Mux.
func FxOptions(routing any, opts ...Option) []fx.Option {
	var cfg AppConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	return append([]fx.Option{
		fx.NopLogger,
		fx.Provide(ParseEnv),
		fx.Provide(NewLogger),
		fx.Provide(NewMetrics),
		fx.Provide(NewTracerProvider),
		fx.Provide(NewPropagator),
		fx.Provide(NewController),
		fx.Provide(NewMux),
		fx.Provide(NewSource),
		fx.Supply(cfg.ServerConfig),
		fx.Provide(NewServer),
		fx.Invoke(startServerHook),
		fx.Invoke(routing),
	}, cfg.FxOptions...)
}

// New creates the app. Example:
//
//	app.New(func(m *app.Mux, src app.Source) {
//	    m.HandleFunc("GET /", app.StaticHandler(src))
//	}).Run()
func New(routing any, opts ...Option) *App {
	return &App{app: fx.New(FxOptions(routing, opts...)...)}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() {
	a.app.Run()
}

// Start starts the application and blocks until ctx is done, then stops it.
func (a *App) Start(ctx context.Context) error {
	if err := a.app.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), a.app.StopTimeout())
	defer cancel()

	return a.app.Stop(stopCtx)
}

// Err returns any error encountered while building the dependency graph.
func (a *App) Err() error { return a.app.Err() }
