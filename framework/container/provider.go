package container

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"
)

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider groups related registrations, the way Laravel's
// Illuminate\Support\ServiceProvider does.
//
// Register only registers. Boot runs after every eager provider has been
// registered, so it may resolve anything.
//
//	type AppServiceProvider struct{ container.BaseProvider }
//
//	func (p *AppServiceProvider) Register(app *container.Container) error {
//	    _, err := app.Constructor(logging.New)
//	    return err
//	}
//
//	func (p *AppServiceProvider) Boot(app *container.Container) error {
//	    logger, err := container.Resolve[*slog.Logger](app)
//	    if err != nil {
//	        return err
//	    }
//	    logger.Info("application booted")
//	    return nil
//	}
type ServiceProvider interface {
	// Register binds services into the container.
	// Do NOT resolve other bindings here; use Boot() for that.
	Register(app *Container) error

	// Boot is called after all eager providers are registered.
	Boot(app *Container) error

	// Provides lists the services a deferred provider registers.
	//
	//	// Laravel: public function provides(): array { return [Cache::class]; }
	Provides() []Service

	// IsDeferred returns true if this provider should be loaded lazily,
	// only when one of its Provides() services is first looked up.
	//
	//	// Laravel: protected $defer = true;
	IsDeferred() bool
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider is an embeddable struct that provides no-op implementations
// of Boot(), Provides(), and IsDeferred().
//
//	type MyProvider struct{ container.BaseProvider }
//	func (p *MyProvider) Register(app *container.Container) error { ... }
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ *Container) error { return nil }
func (p *BaseProvider) Provides() []Service     { return nil }
func (p *BaseProvider) IsDeferred() bool        { return false }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry registers and boots providers against one container.
//
// Deferred providers are served through a registration source on that
// container: the first lookup of one of their services registers (and, once
// the registry is booted, boots) the provider and hands back the
// registration it made.
type ProviderRegistry struct {
	app *Container

	mu         sync.Mutex
	eager      []ServiceProvider
	deferred   map[Service]ServiceProvider
	registered map[ServiceProvider]bool
	booted     bool
}

// NewProviderRegistry creates a registry bound to app.
func NewProviderRegistry(app *Container) *ProviderRegistry {
	r := &ProviderRegistry{
		app:        app,
		deferred:   make(map[Service]ServiceProvider),
		registered: make(map[ServiceProvider]bool),
	}
	app.AddRegistrationSource(RegistrationSourceFunc(r.registrationFor))
	return r
}

// Register adds a provider. Eager providers are registered at once (and
// booted at once if the registry is already booted); deferred ones wait for
// the first lookup of a service they provide.
//
//	// Laravel: $app->register(new AppServiceProvider($app))
func (r *ProviderRegistry) Register(provider ServiceProvider) error {
	r.mu.Lock()
	if r.registered[provider] {
		r.mu.Unlock()
		return nil
	}
	r.registered[provider] = true

	if provider.IsDeferred() {
		for _, s := range provider.Provides() {
			r.deferred[s] = provider
		}
		r.mu.Unlock()
		return nil
	}
	r.eager = append(r.eager, provider)
	booted := r.booted
	r.mu.Unlock()

	if err := provider.Register(r.app); err != nil {
		return errors.Wrapf(err, "registering provider %T", provider)
	}
	if booted {
		if err := provider.Boot(r.app); err != nil {
			return errors.Wrapf(err, "booting provider %T", provider)
		}
	}
	return nil
}

// registrationFor loads the deferred provider of s, if any. A provider whose
// Register fails is replaced by a registration that reports the failure, so
// every later lookup of its services surfaces the cause.
func (r *ProviderRegistry) registrationFor(s Service) (*Registration, bool) {
	r.mu.Lock()
	provider, ok := r.deferred[s]
	if ok {
		for _, p := range provider.Provides() {
			delete(r.deferred, p)
		}
	}
	booted := r.booted
	r.mu.Unlock()
	if !ok {
		return nil, false
	}

	if err := provider.Register(r.app); err != nil {
		err = errors.Wrapf(err, "registering deferred provider %s", providerName(provider))
		r.app.logger.Warn("container: deferred provider failed to register",
			"provider", providerName(provider), "service", s.String(), "error", err)
		return r.failedProvider(provider, s, err)
	}
	if booted {
		if err := provider.Boot(r.app); err != nil {
			r.app.logger.Warn("container: deferred provider failed to boot",
				"provider", providerName(provider), "service", s.String(), "error", err)
		}
	}
	return r.app.registry.local(s)
}

// failedProvider registers, on the registry's container, a factory for the
// services of provider that always fails with err.
func (r *ProviderRegistry) failedProvider(provider ServiceProvider, s Service, err error) (*Registration, bool) {
	fail := DelegateActivator(func(Context, Parameters) (any, error) { return nil, err })
	opts := []RegistrationOption{WithScope(FactoryScope)}

	reg, rerr := NewRegistration(provider.Provides(), fail, opts...)
	if rerr != nil || !serves(reg, s) {
		reg, rerr = NewRegistration([]Service{s}, fail, opts...)
	}
	if rerr != nil {
		return nil, false
	}
	r.app.registry.add(reg)
	return reg, true
}

// Boot calls Boot() on all eager providers, in registration order. Calling
// it again is a no-op.
//
//	// Laravel: $app->boot()
func (r *ProviderRegistry) Boot() error {
	r.mu.Lock()
	if r.booted {
		r.mu.Unlock()
		return nil
	}
	r.booted = true
	providers := append([]ServiceProvider(nil), r.eager...)
	r.mu.Unlock()

	for _, provider := range providers {
		if err := provider.Boot(r.app); err != nil {
			return errors.Wrapf(err, "booting provider %T", provider)
		}
	}
	return nil
}

// Booted returns true if Boot() has been called.
func (r *ProviderRegistry) Booted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.booted
}

// Providers returns the eager providers in registration order.
func (r *ProviderRegistry) Providers() []ServiceProvider {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ServiceProvider(nil), r.eager...)
}

func providerName(p ServiceProvider) string {
	return fmt.Sprintf("%T", p)
}
