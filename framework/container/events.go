package container

// ActivatingEvent is fired after an instance is constructed and enrolled for
// disposal, before it is cached or returned. Handlers may replace Instance.
type ActivatingEvent struct {
	// Container is the sender: the container whose registry supplied
	// Component.
	Container *Container
	Context   Context
	Component *Registration
	Instance  any
}

// ActivatedEvent is fired once the instance is final and cached.
type ActivatedEvent struct {
	Container *Container
	Context   Context
	Component *Registration
	Instance  any
}

// ActivatingHandler observes (and may replace) a new instance. A returned
// error fails the resolution with ErrActivationFailure.
type ActivatingHandler func(e *ActivatingEvent) error

// ActivatedHandler observes a final instance.
type ActivatedHandler func(e *ActivatedEvent) error
