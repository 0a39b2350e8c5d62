package container

// RegistrationSource synthesizes registrations on demand. Sources are asked
// only when no container in the chain has a registration for the service,
// the asking container's first, then each ancestor's. The first source to
// answer wins and its registration is kept in the asking container's
// registry, unless the source registered it somewhere in the chain itself.
// The answer must come from NewRegistration.
//
// A source may register into or resolve from the container it is attached
// to, except for the very service it is being asked about.
type RegistrationSource interface {
	RegistrationFor(service Service) (*Registration, bool)
}

// RegistrationSourceFunc adapts a function to RegistrationSource.
//
//	c.AddRegistrationSource(container.RegistrationSourceFunc(func(s container.Service) (*container.Registration, bool) {
//	    ...
//	}))
type RegistrationSourceFunc func(service Service) (*Registration, bool)

func (f RegistrationSourceFunc) RegistrationFor(service Service) (*Registration, bool) {
	return f(service)
}
