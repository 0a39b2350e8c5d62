package container

import "reflect"

// Parameter is an explicit construction argument supplied by the caller of
// Resolve. Activators decide how (and whether) to consume it.
type Parameter interface {
	// Match reports whether the parameter can satisfy an argument of type t
	// or the argument called name. Either may be empty.
	Match(t reflect.Type, name string) (any, bool)
}

// NamedParameter is matched by name; delegate activators look it up with
// Parameters.Named.
type NamedParameter struct {
	Name  string
	Value any
}

func (p NamedParameter) Match(_ reflect.Type, name string) (any, bool) {
	if name != "" && name == p.Name {
		return p.Value, true
	}
	return nil, false
}

// TypedParameter is matched by assignability to the argument type; the
// reflective activator consults it before resolving an argument.
type TypedParameter struct {
	Value any
}

func (p TypedParameter) Match(t reflect.Type, _ string) (any, bool) {
	if t == nil || p.Value == nil {
		return nil, false
	}
	if reflect.TypeOf(p.Value).AssignableTo(t) {
		return p.Value, true
	}
	return nil, false
}

// Param is shorthand for NamedParameter{Name: name, Value: v}.
func Param(name string, v any) Parameter { return NamedParameter{Name: name, Value: v} }

// Parameters is the ordered set of explicit parameters of one activation.
type Parameters []Parameter

// Named returns the value of the first parameter matching name.
func (ps Parameters) Named(name string) (any, bool) {
	for _, p := range ps {
		if v, ok := p.Match(nil, name); ok {
			return v, true
		}
	}
	return nil, false
}

// Typed returns the value of the first parameter assignable to t.
func (ps Parameters) Typed(t reflect.Type) (any, bool) {
	for _, p := range ps {
		if v, ok := p.Match(t, ""); ok {
			return v, true
		}
	}
	return nil, false
}
