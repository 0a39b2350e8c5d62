package container

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

// ── Binding helpers ───────────────────────────────────────────────────────────

// Factory builds a value from the activation context.
type Factory func(ctx Context) (any, error)

func (f Factory) activator() Activator {
	if f == nil {
		return nil
	}
	return DelegateActivator(func(ctx Context, _ Parameters) (any, error) { return f(ctx) })
}

// Bind registers a factory that runs on every resolve.
//
//	// Laravel: $app->bind(UserRepository::class, fn($app) => new EloquentUserRepository($app))
//	c.Bind(container.Named("UserRepository"), func(ctx container.Context) (any, error) {
//	    return &EloquentUserRepository{}, nil
//	})
func (c *Container) Bind(s Service, f Factory, opts ...RegistrationOption) (*Registration, error) {
	return c.Register([]Service{s}, f.activator(), FactoryScope, opts...)
}

// Singleton registers a factory whose result is cached in the root
// container after the first resolve.
//
//	// Laravel: $app->singleton(Cache::class, fn($app) => new RedisCache($app))
func (c *Container) Singleton(s Service, f Factory, opts ...RegistrationOption) (*Registration, error) {
	return c.Register([]Service{s}, f.activator(), SingletonScope, opts...)
}

// Scoped registers a factory whose result is cached once per container
// that resolves it, typically one per request.
//
//	// Laravel: $app->scoped(Transistor::class, fn($app) => new Transistor(...))
func (c *Container) Scoped(s Service, f Factory, opts ...RegistrationOption) (*Registration, error) {
	return c.Register([]Service{s}, f.activator(), ContainerScope, opts...)
}

// Instance registers a pre-built value. The container does not dispose it.
//
//	// Laravel: $app->instance(Config::class, $config)
//	c.Instance(container.TypeOf[*config.Config](), cfg)
func (c *Container) Instance(s Service, v any, opts ...RegistrationOption) (*Registration, error) {
	return c.Register([]Service{s}, NewInstanceActivator(v), SingletonScope, opts...)
}

// Constructor registers a constructor function as a singleton of its result
// type. Each argument is resolved by type; pass WithScope to change the
// lifetime.
//
//	c.Constructor(NewUserService)                              // *UserService
//	c.Constructor(NewUserService, container.WithScope(container.FactoryScope))
func (c *Container) Constructor(constructor any, opts ...RegistrationOption) (*Registration, error) {
	act, err := NewReflectionActivator(constructor)
	if err != nil {
		return nil, err
	}
	reg, err := NewRegistration([]Service{TypedService{Type: act.LimitType()}}, act, opts...)
	if err != nil {
		return nil, err
	}
	if err := c.RegisterComponent(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// Provide registers a typed factory for T under TypeOf[T] and any extra
// services passed with As.
//
//	container.Provide(c, container.ContainerScope, func(ctx container.Context) (*Session, error) {
//	    return newSession(), nil
//	})
func Provide[T any](c *Container, scope ScopePolicy, fn func(ctx Context) (T, error), opts ...RegistrationOption) (*Registration, error) {
	if fn == nil {
		return nil, invalidRegistration("factory for %s is nil", TypeOf[T]())
	}
	act := DelegateActivator(func(ctx Context, _ Parameters) (any, error) { return fn(ctx) })
	return c.Register([]Service{TypeOf[T]()}, act, scope, opts...)
}

// ── Typed resolution ──────────────────────────────────────────────────────────

// Resolve resolves TypeOf[T] and type-asserts the result.
//
//	// Instead of: v, _ := c.Resolve(container.TypeOf[*gorm.DB]()); db := v.(*gorm.DB)
//	db, err := container.Resolve[*gorm.DB](c)
func Resolve[T any](r Resolver, params ...Parameter) (T, error) {
	v, err := r.Resolve(TypeOf[T](), params...)
	if err != nil {
		var zero T
		return zero, err
	}
	return cast[T](TypeOf[T](), v)
}

// TryResolve is the typed TryResolve.
func TryResolve[T any](r Resolver, params ...Parameter) (T, bool, error) {
	var zero T
	v, ok, err := r.TryResolve(TypeOf[T](), params...)
	if err != nil || !ok {
		return zero, false, err
	}
	t, err := cast[T](TypeOf[T](), v)
	if err != nil {
		return zero, false, err
	}
	return t, true, nil
}

// MustResolve is Resolve that panics on failure. Use it in wiring code
// where a missing service is a programming error.
func MustResolve[T any](r Resolver, params ...Parameter) T {
	t, err := Resolve[T](r, params...)
	if err != nil {
		panic(err)
	}
	return t
}

// ResolveNamed resolves name and type-asserts the result.
//
//	cfg, err := container.ResolveNamed[*config.Config](c, "config")
func ResolveNamed[T any](r Resolver, name string, params ...Parameter) (T, error) {
	v, err := r.ResolveNamed(name, params...)
	if err != nil {
		var zero T
		return zero, err
	}
	return cast[T](Named(name), v)
}

// ResolveAll resolves every registration of TypeOf[T].
func ResolveAll[T any](r Resolver) ([]T, error) {
	vs, err := r.ResolveAll(TypeOf[T]())
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(vs))
	for _, v := range vs {
		t, err := cast[T](TypeOf[T](), v)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// IsRegistered reports whether TypeOf[T] can be resolved from r.
func IsRegistered[T any](r Resolver) bool {
	return r.IsRegistered(TypeOf[T]())
}

func cast[T any](s Service, v any) (T, error) {
	if v == nil {
		var zero T
		return zero, nil
	}
	t, ok := v.(T)
	if !ok {
		var zero T
		return zero, errors.Errorf("container: [%s] resolved to %T, not %s", s, v, reflect.TypeFor[T]())
	}
	return t, nil
}

// TypeKey returns the package-qualified type name of v, handy for naming
// registrations after the type they produce.
//
//	container.WithName(container.TypeKey((*UserRepository)(nil)))  // "main.UserRepository"
func TypeKey(v any) string {
	t := reflect.TypeOf(v)
	if t == nil {
		return ""
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return fmt.Sprintf("%s.%s", t.PkgPath(), t.Name())
}
