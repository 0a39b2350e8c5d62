package container

import (
	"fmt"

	"github.com/google/uuid"
)

// Ownership says whether the container disposes the instances a registration
// produces.
type Ownership int

const (
	// OwnedByContainer instances are enrolled in the owning container's
	// Disposer when they are Disposable.
	OwnedByContainer Ownership = iota
	// ExternallyOwned instances are never closed by the container.
	ExternallyOwned
)

func (o Ownership) String() string {
	if o == ExternallyOwned {
		return "external"
	}
	return "container"
}

// Registration binds a set of services to one activator and one scope
// policy. It is immutable once built; hooks are attached through options.
type Registration struct {
	id        uuid.UUID
	name      string
	services  []Service
	activator Activator
	scope     ScopePolicy

	ownership    Ownership
	ownershipSet bool

	activating []ActivatingHandler
	activated  []ActivatedHandler
}

// RegistrationOption configures a Registration under construction.
type RegistrationOption func(*Registration)

// WithScope sets the scope policy. The default is SingletonScope.
func WithScope(scope ScopePolicy) RegistrationOption {
	return func(r *Registration) { r.scope = scope }
}

// WithName overrides the registration name used by ResolveNamed. The
// default name is the registration id.
func WithName(name string) RegistrationOption {
	return func(r *Registration) { r.name = name }
}

// WithOwnership overrides the ownership the activator implies.
func WithOwnership(o Ownership) RegistrationOption {
	return func(r *Registration) {
		r.ownership = o
		r.ownershipSet = true
	}
}

// OnActivating appends a handler fired after construction, before the
// instance is cached. Handlers may replace Instance.
func OnActivating(h ActivatingHandler) RegistrationOption {
	return func(r *Registration) { r.activating = append(r.activating, h) }
}

// OnActivated appends a handler fired once the instance is final.
func OnActivated(h ActivatedHandler) RegistrationOption {
	return func(r *Registration) { r.activated = append(r.activated, h) }
}

// NewRegistration validates and builds a registration.
//
// It fails with ErrInvalidRegistration when services is empty, contains a nil
// or zero service, or contains the same service twice, and when activator or
// the scope is nil.
func NewRegistration(services []Service, activator Activator, opts ...RegistrationOption) (*Registration, error) {
	r := &Registration{
		id:        uuid.New(),
		services:  append([]Service(nil), services...),
		activator: activator,
		scope:     SingletonScope,
	}
	r.name = r.id.String()
	for _, opt := range opts {
		opt(r)
	}
	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// checkRegistration accepts only registrations built by NewRegistration.
func checkRegistration(reg *Registration) error {
	if reg == nil {
		return invalidRegistration("registration is nil")
	}
	if reg.id == uuid.Nil {
		return invalidRegistration("registration was not built with NewRegistration")
	}
	return reg.validate()
}

func (r *Registration) validate() error {
	if len(r.services) == 0 {
		return invalidRegistration("no services")
	}
	seen := make(map[Service]struct{}, len(r.services))
	for i, s := range r.services {
		if !validService(s) {
			return invalidRegistration("service #%d is nil", i)
		}
		if _, dup := seen[s]; dup {
			return invalidRegistration("service [%s] listed twice", s)
		}
		seen[s] = struct{}{}
	}
	if r.activator == nil {
		return invalidRegistration("activator is nil")
	}
	if f, ok := r.activator.(DelegateActivator); ok && f == nil {
		return invalidRegistration("activator is nil")
	}
	if r.scope == nil {
		return invalidRegistration("scope policy is nil")
	}
	if r.name == "" {
		return invalidRegistration("name is empty")
	}
	for _, h := range r.activating {
		if h == nil {
			return invalidRegistration("activating handler is nil")
		}
	}
	for _, h := range r.activated {
		if h == nil {
			return invalidRegistration("activated handler is nil")
		}
	}
	return nil
}

// ID is unique per registration.
func (r *Registration) ID() uuid.UUID { return r.id }

// Name is the key ResolveNamed falls back to.
func (r *Registration) Name() string { return r.name }

// Services returns a copy of the services the registration satisfies.
func (r *Registration) Services() []Service { return append([]Service(nil), r.services...) }

func (r *Registration) Activator() Activator { return r.activator }

func (r *Registration) Scope() ScopePolicy { return r.scope }

// Ownership reports who disposes the instances. Unless set explicitly it
// follows the activator: fixed instances are externally owned.
func (r *Registration) Ownership() Ownership {
	if r.ownershipSet {
		return r.ownership
	}
	if o, ok := r.activator.(ownership); ok && o.ExternallyOwned() {
		return ExternallyOwned
	}
	return OwnedByContainer
}

func (r *Registration) String() string {
	return fmt.Sprintf("%s [%s] %s", r.name, chainString(r.services), r.scope)
}
