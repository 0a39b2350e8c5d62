package container

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// ScopePolicy decides, for a resolve issued against a container, which
// container owns the instance (its cache and its Disposer) and whether the
// instance is cached there at all.
//
// The owner is also the context the instance's dependencies are resolved
// from.
type ScopePolicy interface {
	Owner(c *Container) (owner *Container, cached bool)
	String() string
}

var (
	// SingletonScope caches one instance in the root container, whichever
	// descendant asks first.
	//
	//	// Laravel: $app->singleton(...)
	SingletonScope ScopePolicy = singletonScope{}

	// ContainerScope caches one instance per resolving container. Siblings
	// and children each get their own.
	ContainerScope ScopePolicy = containerScope{}

	// FactoryScope never caches; every resolve constructs.
	//
	//	// Laravel: $app->bind(...)
	FactoryScope ScopePolicy = factoryScope{}
)

type singletonScope struct{}

func (singletonScope) Owner(c *Container) (*Container, bool) { return c.root(), true }
func (singletonScope) String() string                        { return "singleton" }

type containerScope struct{}

func (containerScope) Owner(c *Container) (*Container, bool) { return c, true }
func (containerScope) String() string                        { return "container" }

type factoryScope struct{}

func (factoryScope) Owner(c *Container) (*Container, bool) { return c, false }
func (factoryScope) String() string                        { return "factory" }

// ── Instance cache ────────────────────────────────────────────────────────────

// instanceCache holds the cached instances of one container, keyed by
// registration id. Each entry is a creation slot: the first resolver claims
// the slot's lock and constructs, everyone else waits and reads the result.
type instanceCache struct {
	mu    sync.Mutex
	slots map[uuid.UUID]*slot
}

type slot struct {
	mu    sync.Mutex // held for the duration of a construction
	done  atomic.Bool
	value any
}

func newInstanceCache() *instanceCache {
	return &instanceCache{slots: make(map[uuid.UUID]*slot)}
}

// slot returns the slot for id, creating it if needed.
func (ic *instanceCache) slot(id uuid.UUID) *slot {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	s, ok := ic.slots[id]
	if !ok {
		s = &slot{}
		ic.slots[id] = s
	}
	return s
}

func (ic *instanceCache) clear() {
	ic.mu.Lock()
	ic.slots = make(map[uuid.UUID]*slot)
	ic.mu.Unlock()
}

func (s *slot) load() (any, bool) {
	if s.done.Load() {
		return s.value, true
	}
	return nil, false
}

func (s *slot) store(v any) {
	s.value = v
	s.done.Store(true)
}
