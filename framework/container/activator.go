package container

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

// Activator constructs the instance of a registration. It is stateless with
// respect to resolution and is invoked at most once per cache miss.
type Activator interface {
	Activate(ctx Context, params Parameters) (any, error)
}

// ownership is implemented by activators that hand out instances they do
// not own, such as a pre-built value.
type ownership interface {
	ExternallyOwned() bool
}

// ── Fixed instance ────────────────────────────────────────────────────────────

// InstanceActivator returns a pre-supplied value. Unless built with
// NewOwnedInstanceActivator the container never disposes it.
type InstanceActivator struct {
	instance any
	owned    bool
}

// NewInstanceActivator wraps a value the caller keeps ownership of.
//
//	// Laravel: $app->instance(Config::class, $config)
//	container.NewInstanceActivator(cfg)
func NewInstanceActivator(instance any) *InstanceActivator {
	return &InstanceActivator{instance: instance}
}

// NewOwnedInstanceActivator wraps a value whose disposal is handed over to
// the container that ends up owning it.
func NewOwnedInstanceActivator(instance any) *InstanceActivator {
	return &InstanceActivator{instance: instance, owned: true}
}

func (a *InstanceActivator) Activate(Context, Parameters) (any, error) {
	return a.instance, nil
}

func (a *InstanceActivator) ExternallyOwned() bool { return !a.owned }

// ── Delegate ──────────────────────────────────────────────────────────────────

// DelegateActivator constructs instances with a caller-supplied function.
// Dependencies must be resolved through ctx so cycles are detected and
// scoping follows the owning container.
//
//	container.DelegateActivator(func(ctx container.Context, _ container.Parameters) (any, error) {
//	    db, err := container.Resolve[*sql.DB](ctx)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return &EloquentUserRepository{DB: db}, nil
//	})
type DelegateActivator func(ctx Context, params Parameters) (any, error)

func (f DelegateActivator) Activate(ctx Context, params Parameters) (any, error) {
	return f(ctx, params)
}

// ── Reflective ────────────────────────────────────────────────────────────────

var errorType = reflect.TypeFor[error]()

// ReflectionActivator calls a constructor function, resolving each of its
// arguments from the activation context.
//
// Argument resolution order: a TypedParameter assignable to the argument,
// then the argument's type as a TypedService. A slice argument whose type is
// not registered receives every registration of its element type.
//
// Constructors return either T or (T, error).
type ReflectionActivator struct {
	fn  reflect.Value
	typ reflect.Type
}

// NewReflectionActivator validates constructor and wraps it.
//
//	act, err := container.NewReflectionActivator(NewUserService)
func NewReflectionActivator(constructor any) (*ReflectionActivator, error) {
	if constructor == nil {
		return nil, invalidRegistration("constructor is nil")
	}
	v := reflect.ValueOf(constructor)
	t := v.Type()
	if t.Kind() != reflect.Func {
		return nil, invalidRegistration("constructor must be a func, got %s", t)
	}
	if t.IsVariadic() {
		return nil, invalidRegistration("constructor %s must not be variadic", t)
	}
	switch t.NumOut() {
	case 1:
	case 2:
		if t.Out(1) != errorType {
			return nil, invalidRegistration("second result of %s must be error", t)
		}
	default:
		return nil, invalidRegistration("constructor %s must return T or (T, error)", t)
	}
	return &ReflectionActivator{fn: v, typ: t}, nil
}

// LimitType is the type the constructor produces.
func (a *ReflectionActivator) LimitType() reflect.Type { return a.typ.Out(0) }

func (a *ReflectionActivator) Activate(ctx Context, params Parameters) (any, error) {
	args := make([]reflect.Value, a.typ.NumIn())
	for i := range args {
		arg, err := a.argument(ctx, params, a.typ.In(i))
		if err != nil {
			return nil, err
		}
		args[i] = arg
	}

	out := a.fn.Call(args)
	if len(out) == 2 && !out[1].IsNil() {
		return nil, errors.Wrapf(out[1].Interface().(error), "constructor %s", a.typ)
	}
	if isNilValue(out[0]) {
		return nil, errors.Errorf("constructor %s returned nil", a.typ)
	}
	return out[0].Interface(), nil
}

func (a *ReflectionActivator) argument(ctx Context, params Parameters, t reflect.Type) (reflect.Value, error) {
	if v, ok := params.Typed(t); ok {
		return reflect.ValueOf(v), nil
	}

	svc := TypedService{Type: t}
	v, ok, err := ctx.TryResolve(svc)
	if err != nil {
		return reflect.Value{}, err
	}
	if ok {
		return assignable(v, t)
	}

	if t.Kind() == reflect.Slice && ctx.IsRegistered(TypedService{Type: t.Elem()}) {
		items, err := ctx.ResolveAll(TypedService{Type: t.Elem()})
		if err != nil {
			return reflect.Value{}, err
		}
		slice := reflect.MakeSlice(t, 0, len(items))
		for _, item := range items {
			iv, err := assignable(item, t.Elem())
			if err != nil {
				return reflect.Value{}, err
			}
			slice = reflect.Append(slice, iv)
		}
		return slice, nil
	}

	return reflect.Value{}, &NotRegisteredError{Service: svc}
}

func assignable(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(v)
	if !rv.Type().AssignableTo(t) {
		return reflect.Value{}, fmt.Errorf("resolved %s is not assignable to %s", rv.Type(), t)
	}
	return rv, nil
}

func isNilValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}
