package container

import (
	"github.com/google/uuid"
)

// Resolver is the read side shared by *Container and Context. The generic
// helpers (Resolve[T], ResolveAll[T], ...) accept either.
type Resolver interface {
	Resolve(service Service, params ...Parameter) (any, error)
	TryResolve(service Service, params ...Parameter) (any, bool, error)
	ResolveNamed(name string, params ...Parameter) (any, error)
	TryResolveNamed(name string, params ...Parameter) (any, bool, error)
	ResolveAll(service Service) ([]any, error)
	IsRegistered(service Service) bool
}

// Context is handed to activators. Resolutions through it continue the
// current operation: they share its resolution stack, so cycles are caught,
// and they resolve from the container that owns the instance being built.
type Context interface {
	Resolver

	// Container is the container dependencies are resolved from.
	Container() *Container
}

// operation is the state of one top-level resolve call. It is never shared
// between goroutines.
type operation struct {
	stack  []Service
	active map[uuid.UUID]struct{}
}

func newOperation() *operation {
	return &operation{active: make(map[uuid.UUID]struct{})}
}

// push appends s, failing if s is already being resolved.
func (op *operation) push(s Service) error {
	for _, x := range op.stack {
		if x == s {
			return op.cycle(s)
		}
	}
	op.stack = append(op.stack, s)
	return nil
}

func (op *operation) pop() {
	op.stack = op.stack[:len(op.stack)-1]
}

// cycle builds the error for a revisit of s.
func (op *operation) cycle(s Service) error {
	chain := append(append([]Service(nil), op.stack...), s)
	return &CircularDependencyError{Chain: chain}
}

// enter marks reg as under construction. Reaching the same registration
// again through another of its services is a cycle too.
func (op *operation) enter(reg *Registration) error {
	if err := op.reentered(reg); err != nil {
		return err
	}
	op.active[reg.id] = struct{}{}
	return nil
}

func (op *operation) reentered(reg *Registration) error {
	if _, ok := op.active[reg.id]; ok {
		return &CircularDependencyError{Chain: append([]Service(nil), op.stack...)}
	}
	return nil
}

func (op *operation) leave(reg *Registration) {
	delete(op.active, reg.id)
}

// resolveContext binds an operation to the container resolving for it.
type resolveContext struct {
	c  *Container
	op *operation
}

func (x *resolveContext) Container() *Container { return x.c }

func (x *resolveContext) Resolve(service Service, params ...Parameter) (any, error) {
	return x.c.resolve(x.op, service, params)
}

func (x *resolveContext) TryResolve(service Service, params ...Parameter) (any, bool, error) {
	return x.c.tryResolve(x.op, service, params)
}

func (x *resolveContext) ResolveNamed(name string, params ...Parameter) (any, error) {
	return x.c.resolveNamed(x.op, name, params)
}

func (x *resolveContext) TryResolveNamed(name string, params ...Parameter) (any, bool, error) {
	return x.c.tryResolveNamed(x.op, name, params)
}

func (x *resolveContext) ResolveAll(service Service) ([]any, error) {
	return x.c.resolveAll(x.op, service)
}

func (x *resolveContext) IsRegistered(service Service) bool {
	return x.c.IsRegistered(service)
}
