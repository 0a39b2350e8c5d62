package providers

import (
	"log/slog"

	"github.com/pkg/errors"

	"github.com/km-arc/go-ioc/framework/config"
	"github.com/km-arc/go-ioc/framework/container"
	gohttp "github.com/km-arc/go-ioc/framework/http"
	"github.com/km-arc/go-ioc/framework/http/validation"
	"github.com/km-arc/go-ioc/framework/metrics"
	"github.com/km-arc/go-ioc/framework/routing"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider binds the loaded configuration into the container.
//
// Bound services:
//   - TypeOf[*config.Config]()  (registration name "config")
//
// Laravel equivalent:
//
//	// Illuminate\Foundation\Bootstrap\LoadConfiguration
//	$app->instance('config', $config = new Repository($items));
type ConfigServiceProvider struct {
	container.BaseProvider
	Config *config.Config
}

func (p *ConfigServiceProvider) Register(app *container.Container) error {
	if p.Config == nil {
		return errors.New("config provider: no configuration loaded")
	}
	_, err := app.Instance(container.TypeOf[*config.Config](), p.Config, container.WithName("config"))
	return err
}

// ── LoggingServiceProvider ────────────────────────────────────────────────────

// LoggingServiceProvider binds the application logger.
//
// Bound services:
//   - TypeOf[*slog.Logger]()  (registration name "log")
type LoggingServiceProvider struct {
	container.BaseProvider
	Logger *slog.Logger
}

func (p *LoggingServiceProvider) Register(app *container.Container) error {
	logger := p.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	_, err := app.Instance(container.TypeOf[*slog.Logger](), logger, container.WithName("log"))
	return err
}

func (p *LoggingServiceProvider) Boot(app *container.Container) error {
	cfg, ok, err := container.TryResolve[*config.Config](app)
	if err != nil || !ok {
		return err
	}
	logger := container.MustResolve[*slog.Logger](app)
	logger.Info("application booted",
		"app", cfg.App.Name,
		"env", cfg.App.Env,
		"registrations", len(app.Registrations()),
	)
	return nil
}

// ── MetricsServiceProvider ────────────────────────────────────────────────────

// MetricsServiceProvider binds the Prometheus collector and, when metrics
// are enabled, mounts its page on the router at boot.
//
// Bound services:
//   - TypeOf[*metrics.Collector]()  (registration name "metrics")
//
// Configuration read from "config":
//   - METRICS_ENABLED, METRICS_PATH
type MetricsServiceProvider struct {
	container.BaseProvider
	Collector *metrics.Collector
}

func (p *MetricsServiceProvider) Register(app *container.Container) error {
	if p.Collector == nil {
		return nil
	}
	_, err := app.Instance(container.TypeOf[*metrics.Collector](), p.Collector, container.WithName("metrics"))
	return err
}

func (p *MetricsServiceProvider) Boot(app *container.Container) error {
	if p.Collector == nil {
		return nil
	}
	cfg, err := container.Resolve[*config.Config](app)
	if err != nil {
		return err
	}
	if !cfg.Metrics.Enabled {
		return nil
	}
	router, err := container.Resolve[*routing.Router](app)
	if err != nil {
		return err
	}
	router.Handle(cfg.Metrics.Path, p.Collector.Handler())
	return nil
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider registers the HTTP router. Every request gets its
// own inner container of the application (see gohttp.RequestScope), and is
// logged and measured when a logger or collector is bound.
//
// Bound services:
//   - TypeOf[*routing.Router]()  (registration name "router")
//
// Laravel equivalent:
//
//	// Illuminate\Routing\RoutingServiceProvider
//	$app->singleton('router', fn($app) => new Router($app['events'], $app));
type RoutingServiceProvider struct {
	container.BaseProvider
}

func (p *RoutingServiceProvider) Register(app *container.Container) error {
	_, err := container.Provide(app, container.SingletonScope, newRouter, container.WithName("router"))
	return err
}

func newRouter(ctx container.Context) (*routing.Router, error) {
	opts := []routing.Option{}

	logger, ok, err := container.TryResolve[*slog.Logger](ctx)
	if err != nil {
		return nil, err
	}
	if ok {
		opts = append(opts, routing.WithLogger(logger))
	}

	collector, ok, err := container.TryResolve[*metrics.Collector](ctx)
	if err != nil {
		return nil, err
	}
	if ok {
		opts = append(opts, routing.WithMiddleware(collector.Middleware()))
	}

	// Singletons are built in the root, so this is the application container.
	opts = append(opts, routing.WithMiddleware(gohttp.RequestScope(ctx.Container())))
	return routing.New(opts...), nil
}

// ── ValidationServiceProvider ─────────────────────────────────────────────────

// ValidationServiceProvider is deferred: the rule factory is only built the
// first time something asks for it.
//
// Bound services:
//   - TypeOf[*validation.Factory]()  (registration name "validator")
type ValidationServiceProvider struct {
	container.BaseProvider
}

func (p *ValidationServiceProvider) Register(app *container.Container) error {
	_, err := container.Provide(app, container.SingletonScope, func(container.Context) (*validation.Factory, error) {
		return validation.NewFactory(), nil
	}, container.WithName("validator"))
	return err
}

func (p *ValidationServiceProvider) IsDeferred() bool { return true }

func (p *ValidationServiceProvider) Provides() []container.Service {
	return []container.Service{container.TypeOf[*validation.Factory]()}
}
