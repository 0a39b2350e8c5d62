package container

import (
	"reflect"
)

// Service identifies a contract a consumer asks the container to satisfy.
//
// Implementations must be comparable: services are used as map keys.
//
//	container.TypeOf[*UserRepository]()   // by Go type
//	container.Named("reports.cpu")        // by name
type Service interface {
	// String describes the service in error messages and resolution chains.
	String() string

	valid() bool
}

// ── TypedService ──────────────────────────────────────────────────────────────

// TypedService identifies a service by its Go type.
type TypedService struct {
	Type reflect.Type
}

func (s TypedService) String() string {
	if s.Type == nil {
		return "<nil>"
	}
	return s.Type.String()
}

func (s TypedService) valid() bool { return s.Type != nil }

// TypeOf returns the TypedService for T. Interfaces work as expected:
//
//	container.TypeOf[io.Writer]()
func TypeOf[T any]() Service {
	return TypedService{Type: reflect.TypeFor[T]()}
}

// ── NamedService ──────────────────────────────────────────────────────────────

// NamedService identifies a service by an arbitrary string key such as
// "config" or "router".
type NamedService struct {
	Name string
}

func (s NamedService) String() string { return s.Name }

func (s NamedService) valid() bool { return s.Name != "" }

// Named returns the NamedService for name.
func Named(name string) Service {
	return NamedService{Name: name}
}

// validService reports whether s can be used as a service identity.
func validService(s Service) bool {
	if s == nil {
		return false
	}
	return s.valid()
}
