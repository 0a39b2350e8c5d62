package app

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/km-arc/go-ioc/framework/config"
	"github.com/km-arc/go-ioc/framework/container"
	gohttp "github.com/km-arc/go-ioc/framework/http"
	"github.com/km-arc/go-ioc/framework/logging"
	"github.com/km-arc/go-ioc/framework/metrics"
	"github.com/km-arc/go-ioc/framework/providers"
	"github.com/km-arc/go-ioc/framework/routing"
)

// Application is the top-level application container.
// It embeds the root Container and the ProviderRegistry so user code can
// call app.Singleton(), app.Constructor(), app.Register() directly,
// like $app in Laravel's bootstrap/app.php.
type Application struct {
	*container.Container
	Providers *container.ProviderRegistry
}

// New loads configuration, builds the logger and metrics collector the
// container reports to, and registers the framework providers.
//
//	application, err := app.New()
//	application.Register(&testservice.Provider{})
//	application.Run(ctx)
func New(envFiles ...string) (*Application, error) {
	return NewWithConfig(config.Load(envFiles...), logging.New)
}

// NewWithConfig is New for an already-loaded configuration. newLogger builds
// the logger from APP_ENV and LOG_LEVEL.
func NewWithConfig(cfg *config.Config, newLogger func(env, level string) *slog.Logger) (*Application, error) {
	logger := newLogger(cfg.App.Env, cfg.Log.Level)

	opts := []container.Option{container.WithLogger(logger)}
	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.New()
		opts = append(opts, container.WithRecorder(collector))
	}

	c := container.New(opts...)
	app := &Application{
		Container: c,
		Providers: container.NewProviderRegistry(c),
	}

	// Framework core providers, same order as Laravel.
	for _, p := range []container.ServiceProvider{
		&providers.ConfigServiceProvider{Config: cfg},
		&providers.LoggingServiceProvider{Logger: logger},
		&providers.MetricsServiceProvider{Collector: collector},
		&providers.RoutingServiceProvider{},
		&providers.ValidationServiceProvider{},
	} {
		if err := app.Register(p); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// Register adds a ServiceProvider to the application.
func (a *Application) Register(provider container.ServiceProvider) error {
	return a.Providers.Register(provider)
}

// Boot runs the Boot() phase on all providers.
func (a *Application) Boot() error {
	return a.Providers.Boot()
}

// Config resolves *config.Config from the container.
func (a *Application) Config() *config.Config {
	return container.MustResolve[*config.Config](a.Container)
}

// Router resolves *routing.Router from the container.
func (a *Application) Router() *routing.Router {
	return container.MustResolve[*routing.Router](a.Container)
}

// Logger resolves *slog.Logger from the container.
func (a *Application) Logger() *slog.Logger {
	return container.MustResolve[*slog.Logger](a.Container)
}

// ── Serving ──────────────────────────────────────────────────────────────────

// Run boots the application (if needed), listens on APP_PORT and serves
// until ctx is cancelled. See Serve.
func (a *Application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Config().Addr())
	if err != nil {
		return errors.Wrap(err, "listen")
	}
	return a.Serve(ctx, ln)
}

// Serve serves HTTP on ln until ctx is cancelled or the server fails, then
// shuts the server down within HTTP_SHUTDOWN_TIMEOUT and disposes the root
// container.
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	if err := a.Boot(); err != nil {
		_ = ln.Close()
		return err
	}
	cfg := a.Config()
	logger := a.Logger()

	srv := &http.Server{
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http: listening",
			"app", cfg.App.Name, "addr", ln.Addr().String(), "env", cfg.App.Env)
		serveErr <- srv.Serve(ln)
	}()

	var err error
	select {
	case err = <-serveErr:
		err = errors.Wrap(err, "serve")
	case <-ctx.Done():
		logger.Info("http: shutting down", "timeout", cfg.HTTP.ShutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if serr := srv.Shutdown(shutdownCtx); serr != nil {
			err = errors.Wrap(serr, "shutdown")
		}
	}

	if derr := a.Dispose(); derr != nil {
		logger.Warn("app: dispose failed", "error", derr)
		if err == nil {
			err = derr
		}
	}
	return err
}

// ── Environment ──────────────────────────────────────────────────────────────

// Environment returns APP_ENV value.
func (a *Application) Environment() string { return a.Config().App.Env }
func (a *Application) IsLocal() bool       { return a.Environment() == "local" }
func (a *Application) IsProduction() bool  { return a.Environment() == "production" }
func (a *Application) IsTesting() bool     { return a.Environment() == "testing" }
func (a *Application) IsDebug() bool       { return a.Config().App.Debug }
func (a *Application) Version() string     { return "0.1.0" }

// Controller is an embeddable base for HTTP controllers.
type Controller struct{}

func (c *Controller) Request(r *http.Request) *gohttp.Request {
	return gohttp.NewRequest(r)
}
func (c *Controller) Response(w http.ResponseWriter) *gohttp.Response {
	return gohttp.NewResponse(w)
}
