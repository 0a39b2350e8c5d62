package container

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Sentinels for errors.Is. Every error returned by the container matches
// exactly one of them.
var (
	ErrInvalidRegistration  = errors.New("container: invalid registration")
	ErrServiceNotRegistered = errors.New("container: service not registered")
	ErrCircularDependency   = errors.New("container: circular dependency")
	ErrActivationFailure    = errors.New("container: activation failed")
	ErrDisposed             = errors.New("container: container has been disposed")
)

// RegistrationError reports a malformed registration. It is a caller error
// and is never retried.
type RegistrationError struct {
	Reason string
}

func (e *RegistrationError) Error() string {
	return "container: invalid registration: " + e.Reason
}

func (e *RegistrationError) Is(target error) bool { return target == ErrInvalidRegistration }

func invalidRegistration(format string, args ...any) error {
	return &RegistrationError{Reason: fmt.Sprintf(format, args...)}
}

// NotRegisteredError reports that neither a registration nor a source could
// satisfy Service.
type NotRegisteredError struct {
	Service Service
}

func (e *NotRegisteredError) Error() string {
	if e.Service == nil {
		return "container: no registration for [<nil>]"
	}
	return fmt.Sprintf("container: no registration for [%s]", e.Service)
}

func (e *NotRegisteredError) Is(target error) bool { return target == ErrServiceNotRegistered }

// CircularDependencyError carries the resolution chain that revisited a
// service, e.g. "A -> B -> A". It has no inner cause.
type CircularDependencyError struct {
	Chain []Service
}

func (e *CircularDependencyError) Error() string {
	return "container: circular dependency detected: " + chainString(e.Chain)
}

func (e *CircularDependencyError) Is(target error) bool { return target == ErrCircularDependency }

// ActivationError wraps a failure raised while constructing an instance:
// by the activator itself or by an activating/activated handler.
type ActivationError struct {
	Service      Service
	Registration *Registration
	Cause        error
}

func (e *ActivationError) Error() string {
	return fmt.Sprintf("container: activating [%s] (registration %s): %v",
		e.Service, e.Registration.Name(), e.Cause)
}

func (e *ActivationError) Unwrap() error { return e.Cause }

func (e *ActivationError) Is(target error) bool { return target == ErrActivationFailure }

// activationFailure wraps err unless it already is a resolution error raised
// further down the chain, which passes through untouched.
func activationFailure(s Service, r *Registration, err error) error {
	var (
		nr *NotRegisteredError
		cd *CircularDependencyError
		ae *ActivationError
		re *RegistrationError
	)
	switch {
	case errors.As(err, &cd), errors.As(err, &ae), errors.As(err, &nr), errors.As(err, &re):
		return err
	}
	return &ActivationError{Service: s, Registration: r, Cause: err}
}

// sourceFailure reports a registration source that answered s with a
// malformed registration. It still matches ErrInvalidRegistration.
func sourceFailure(s Service, err error) error {
	return errors.Wrapf(err, "container: registration source answered [%s]", s)
}

func chainString(chain []Service) string {
	parts := make([]string, len(chain))
	for i, s := range chain {
		parts[i] = s.String()
	}
	return strings.Join(parts, " -> ")
}
