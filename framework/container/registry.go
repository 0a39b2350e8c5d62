package container

import (
	"sync"
)

// registry is the per-container store of registrations. A child never writes
// to a parent's registry; lookups that walk the chain only read.
type registry struct {
	mu       sync.RWMutex
	services map[Service][]*Registration
	names    map[string]*Registration
	order    []*Registration
	sources  []RegistrationSource

	// sourceLocks serialize source consultation per service so a container
	// asks its chain's sources at most once for a service they can answer.
	sourceLocks map[Service]*sync.Mutex
}

func newRegistry() *registry {
	return &registry{
		services:    make(map[Service][]*Registration),
		names:       make(map[string]*Registration),
		sourceLocks: make(map[Service]*sync.Mutex),
	}
}

// add indexes r under each of its services and any extra ones.
func (r *registry) add(reg *Registration, extra ...Service) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.addLocked(reg, extra...)
}

func (r *registry) addLocked(reg *Registration, extra ...Service) {
	for _, s := range reg.services {
		r.services[s] = append(r.services[s], reg)
	}
	for _, s := range extra {
		if !serves(reg, s) {
			r.services[s] = append(r.services[s], reg)
		}
	}
	r.names[reg.name] = reg
	r.order = append(r.order, reg)
}

// local returns the most recent registration for s.
func (r *registry) local(s Service) (*Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	regs := r.services[s]
	if len(regs) == 0 {
		return nil, false
	}
	return regs[len(regs)-1], true
}

// localAll returns every registration for s in registration order.
func (r *registry) localAll(s Service) []*Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Registration(nil), r.services[s]...)
}

func (r *registry) named(name string) (*Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.names[name]
	return reg, ok
}

func (r *registry) all() []*Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Registration(nil), r.order...)
}

func (r *registry) addSource(src RegistrationSource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources = append(r.sources, src)
}

func (r *registry) sourceList() []RegistrationSource {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]RegistrationSource(nil), r.sources...)
}

// cache keeps a registration a source answered for s, so later lookups in
// this container never reach the sources again.
func (r *registry) cache(reg *Registration, s Service) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexed(reg, s) {
		return
	}
	if r.contains(reg) {
		r.services[s] = append(r.services[s], reg)
		return
	}
	r.addLocked(reg, s)
}

func (r *registry) sourceLock(s Service) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.sourceLocks[s]
	if !ok {
		l = &sync.Mutex{}
		r.sourceLocks[s] = l
	}
	return l
}

// indexed reports whether reg is reachable under s. Caller holds mu.
func (r *registry) indexed(reg *Registration, s Service) bool {
	for _, x := range r.services[s] {
		if x == reg {
			return true
		}
	}
	return false
}

// contains reports whether reg was added to this registry. Caller holds mu.
func (r *registry) contains(reg *Registration) bool {
	for _, x := range r.order {
		if x == reg {
			return true
		}
	}
	return false
}

func serves(reg *Registration, s Service) bool {
	for _, x := range reg.services {
		if x == s {
			return true
		}
	}
	return false
}
