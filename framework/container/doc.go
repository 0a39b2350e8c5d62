// Package container provides an IoC (Inversion of Control) container with
// nested containers, lifetime scopes and deterministic disposal, plus the
// Laravel-style Service Provider system built on top of it.
//
// # Overview
//
// A Registration binds one or more services to an Activator (how to build)
// and a ScopePolicy (when to reuse). A Container resolves a service by
// finding its registration (locally, then in each ancestor, then in the
// registration sources) and asking the scope policy whether a cached
// instance can be reused.
//
// Go has no constructor metadata, so auto-wiring works from constructor
// function signatures (ReflectionActivator) or explicit factories
// (DelegateActivator).
//
// # Container Lifecycle
//
//  1. Create: c := container.New(container.WithLogger(logger))
//  2. Register providers: registry.Register(&MyProvider{})
//  3. Boot: registry.Boot()   // safe to resolve everything after this
//  4. Per unit of work: inner := c.CreateInnerContainer(); defer inner.Dispose()
//  5. Shutdown: c.Dispose()
//
// # Bindings
//
//	// Transient: new instance every Resolve
//	// Laravel: $app->bind(Foo::class, fn($app) => new Foo)
//	c.Bind(container.TypeOf[*Foo](), func(ctx container.Context) (any, error) { return &Foo{}, nil })
//
//	// Singleton: created once, cached in the root container
//	// Laravel: $app->singleton(Cache::class, fn($app) => new RedisCache)
//	c.Constructor(NewRedisCache)
//
//	// One per container (e.g. per request)
//	// Laravel: $app->scoped(Session::class, ...)
//	container.Provide(c, container.ContainerScope, newSession)
//
//	// Pre-built value, never disposed by the container
//	// Laravel: $app->instance(Config::class, $config)
//	c.Instance(container.TypeOf[*config.Config](), cfg)
//
// # Resolving
//
//	// Untyped
//	raw, err := c.Resolve(container.Named("cache"))
//
//	// Generic (preferred, no type assertion required)
//	cache, err := container.Resolve[*RedisCache](c)
//
//	// Optional
//	cache, ok, err := container.TryResolve[*RedisCache](c)
//
//	// Every registration of a service
//	// Laravel: $app->tagged('reports')
//	reports, err := container.ResolveAll[Report](c)
//
// # Nested containers
//
// Singletons always live in the root. Container-scoped instances live in
// the container that resolved them. Disposing an inner container closes
// what it owns, never what its ancestors own.
//
//	inner := c.CreateInnerContainer()
//	defer inner.Dispose()
//
// # Service Providers
//
//	type AppServiceProvider struct{ container.BaseProvider }
//
//	func (p *AppServiceProvider) Register(app *container.Container) error {
//	    _, err := app.Constructor(mail.NewSMTP)
//	    return err
//	}
//
//	registry := container.NewProviderRegistry(c)
//	registry.Register(&AppServiceProvider{})
//	registry.Boot()
//
// # Deferred Providers
//
//	type HeavyProvider struct{ container.BaseProvider }
//
//	func (p *HeavyProvider) IsDeferred() bool              { return true }
//	func (p *HeavyProvider) Provides() []container.Service { return []container.Service{container.Named("heavy")} }
//	func (p *HeavyProvider) Register(app *container.Container) error {
//	    // only called on the first lookup of "heavy"
//	    _, err := app.Singleton(container.Named("heavy"), heavySetup)
//	    return err
//	}
package container
