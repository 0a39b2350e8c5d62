package container

import (
	"errors"
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"
	"time"
	"weak"
)

// ── Container ─────────────────────────────────────────────────────────────────

// Container is the composition root of the resolution engine.
//
// It owns its registry, its Disposer and its instance cache. It holds a
// plain back-reference to its parent and only weak references to its
// children: a child is reachable for cascading disposal but is kept alive by
// whoever created it, never by the parent.
type Container struct {
	parent *Container

	mu       sync.Mutex
	children []weak.Pointer[Container]
	disposed atomic.Bool

	registry *registry
	disposer *Disposer
	cache    *instanceCache

	eventsMu   sync.RWMutex
	activating []ActivatingHandler
	activated  []ActivatedHandler

	logger   *slog.Logger
	recorder Recorder
}

// Option configures a root container.
type Option func(*Container)

// WithLogger sets the logger. Inner containers inherit it.
func WithLogger(l *slog.Logger) Option {
	return func(c *Container) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRecorder installs resolution instrumentation. Inner containers
// inherit it.
func WithRecorder(r Recorder) Option {
	return func(c *Container) {
		if r != nil {
			c.recorder = r
		}
	}
}

// New creates an empty root container. Like Laravel's container it is bound
// to itself: resolving *Container yields the container asked.
func New(opts ...Option) *Container {
	c := newContainer(nil)
	c.logger = slog.New(slog.DiscardHandler)
	c.recorder = nopRecorder{}
	for _, opt := range opts {
		opt(c)
	}
	c.bindSelf()
	return c
}

func newContainer(parent *Container) *Container {
	return &Container{
		parent:   parent,
		registry: newRegistry(),
		disposer: NewDisposer(),
		cache:    newInstanceCache(),
	}
}

func (c *Container) bindSelf() {
	reg, _ := NewRegistration(
		[]Service{TypeOf[*Container]()},
		NewInstanceActivator(c),
		WithScope(ContainerScope),
	)
	c.registry.add(reg)
}

// Parent returns the container this one was created from, or nil for a root.
func (c *Container) Parent() *Container { return c.parent }

// Logger returns the logger the container reports to.
func (c *Container) Logger() *slog.Logger { return c.logger }

func (c *Container) root() *Container {
	r := c
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// IsDisposed reports whether Dispose has run.
func (c *Container) IsDisposed() bool { return c.disposed.Load() }

// ── Registration ──────────────────────────────────────────────────────────────

// Register builds a registration and adds it to this container's registry.
//
//	reg, err := c.Register(
//	    []container.Service{container.TypeOf[Cache]()},
//	    container.DelegateActivator(newRedisCache),
//	    container.SingletonScope,
//	)
func (c *Container) Register(services []Service, activator Activator, scope ScopePolicy, opts ...RegistrationOption) (*Registration, error) {
	opts = append([]RegistrationOption{WithScope(scope)}, opts...)
	reg, err := NewRegistration(services, activator, opts...)
	if err != nil {
		return nil, err
	}
	if err := c.RegisterComponent(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// RegisterComponent adds a pre-built registration. A later registration of
// the same service wins for singular resolution; both stay available to
// ResolveAll.
func (c *Container) RegisterComponent(reg *Registration) error {
	if err := checkRegistration(reg); err != nil {
		return err
	}
	if c.disposed.Load() {
		return ErrDisposed
	}
	c.registry.add(reg)
	c.logger.Debug("container: registered", "registration", reg.String())
	return nil
}

// AddRegistrationSource appends a fallback source. Sources are consulted
// lazily, only when no container in the chain has a registration.
func (c *Container) AddRegistrationSource(src RegistrationSource) {
	if src == nil {
		return
	}
	c.registry.addSource(src)
}

// Registrations lists the registrations held by this container (not its
// ancestors), in registration order.
func (c *Container) Registrations() []*Registration {
	return c.registry.all()
}

// ── Events ────────────────────────────────────────────────────────────────────

// OnActivating subscribes to every activation of a registration held by this
// container, including those requested from inner containers.
func (c *Container) OnActivating(h ActivatingHandler) {
	c.eventsMu.Lock()
	defer c.eventsMu.Unlock()
	c.activating = append(c.activating, h)
}

// OnActivated subscribes to every completed activation of a registration
// held by this container.
func (c *Container) OnActivated(h ActivatedHandler) {
	c.eventsMu.Lock()
	defer c.eventsMu.Unlock()
	c.activated = append(c.activated, h)
}

func (c *Container) activatingHandlers() []ActivatingHandler {
	c.eventsMu.RLock()
	defer c.eventsMu.RUnlock()
	return append([]ActivatingHandler(nil), c.activating...)
}

func (c *Container) activatedHandlers() []ActivatedHandler {
	c.eventsMu.RLock()
	defer c.eventsMu.RUnlock()
	return append([]ActivatedHandler(nil), c.activated...)
}

// ── Lookup ────────────────────────────────────────────────────────────────────

// find returns the registration for s and the container whose registry holds
// it: local entries first, then each ancestor, then registration sources
// from this container outwards.
func (c *Container) find(s Service) (*Registration, *Container, bool, error) {
	if reg, holder, ok := c.findLocal(s); ok {
		return reg, holder, true, nil
	}
	return c.fromSources(s)
}

func (c *Container) findLocal(s Service) (*Registration, *Container, bool) {
	for cur := c; cur != nil; cur = cur.parent {
		if reg, ok := cur.registry.local(s); ok {
			return reg, cur, true
		}
	}
	return nil, nil, false
}

// fromSources asks the sources of c, then those of each ancestor, for s. An
// answer is kept in c's registry: ancestors' registries are never written,
// and each container consults the chain at most once per service. A source
// that registered the answer itself, as deferred providers do, leaves it
// where it put it.
func (c *Container) fromSources(s Service) (*Registration, *Container, bool, error) {
	lock := c.registry.sourceLock(s)
	lock.Lock()
	defer lock.Unlock()

	for cur := c; cur != nil; cur = cur.parent {
		reg, holder, ok, err := c.consult(cur, s)
		if err != nil || ok {
			return reg, holder, ok, err
		}
	}
	return nil, nil, false, nil
}

// consult asks the sources attached to cur. Ancestors' locks are always
// taken after descendants', so two containers never wait on each other.
func (c *Container) consult(cur *Container, s Service) (*Registration, *Container, bool, error) {
	sources := cur.registry.sourceList()
	if len(sources) == 0 {
		return nil, nil, false, nil
	}
	if cur != c {
		lock := cur.registry.sourceLock(s)
		lock.Lock()
		defer lock.Unlock()
	}

	// Another caller may have populated s while we waited.
	if reg, holder, ok := c.findLocal(s); ok {
		return reg, holder, true, nil
	}

	for _, src := range sources {
		reg, ok := src.RegistrationFor(s)
		if !ok || reg == nil {
			continue
		}
		if err := checkRegistration(reg); err != nil {
			return nil, nil, false, sourceFailure(s, err)
		}
		if found, holder, ok := c.findLocal(s); ok && found == reg {
			return reg, holder, true, nil
		}
		c.registry.cache(reg, s)
		return reg, c, true, nil
	}
	return nil, nil, false, nil
}

type located struct {
	reg    *Registration
	holder *Container
}

// findAll returns every registration for s, root first, each container's in
// registration order. Sources are only asked when there is none.
func (c *Container) findAll(s Service) ([]located, error) {
	var chain []*Container
	for cur := c; cur != nil; cur = cur.parent {
		chain = append(chain, cur)
	}
	var out []located
	for i := len(chain) - 1; i >= 0; i-- {
		for _, reg := range chain[i].registry.localAll(s) {
			out = append(out, located{reg: reg, holder: chain[i]})
		}
	}
	if len(out) == 0 {
		reg, holder, ok, err := c.find(s)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, located{reg: reg, holder: holder})
		}
	}
	return out, nil
}

func (c *Container) findByName(name string) (*Registration, *Container, bool) {
	for cur := c; cur != nil; cur = cur.parent {
		if reg, ok := cur.registry.named(name); ok {
			return reg, cur, true
		}
	}
	return nil, nil, false
}

// IsRegistered reports whether s can be resolved from this container,
// consulting registration sources if needed.
func (c *Container) IsRegistered(s Service) bool {
	if !validService(s) || c.disposed.Load() {
		return false
	}
	_, _, ok, err := c.find(s)
	return ok && err == nil
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Resolve returns an instance of s, creating it if the scope policy calls
// for it. It fails with ErrServiceNotRegistered, ErrCircularDependency or
// ErrActivationFailure.
//
//	// Laravel: $app->make(UserRepository::class)
//	repo, err := c.Resolve(container.TypeOf[UserRepository]())
func (c *Container) Resolve(s Service, params ...Parameter) (any, error) {
	v, err := c.resolve(newOperation(), s, params)
	return v, c.failed(s, err)
}

// TryResolve is Resolve that reports a missing registration for s as
// (nil, false, nil). Cycles and activation failures, including a missing
// dependency of s, are still errors.
func (c *Container) TryResolve(s Service, params ...Parameter) (any, bool, error) {
	v, ok, err := c.tryResolve(newOperation(), s, params)
	return v, ok, c.failed(s, err)
}

// ResolveNamed resolves Named(name), falling back to the registration whose
// name is name.
func (c *Container) ResolveNamed(name string, params ...Parameter) (any, error) {
	v, err := c.resolveNamed(newOperation(), name, params)
	return v, c.failed(Named(name), err)
}

// TryResolveNamed is ResolveNamed reporting absence as (nil, false, nil).
func (c *Container) TryResolveNamed(name string, params ...Parameter) (any, bool, error) {
	v, ok, err := c.tryResolveNamed(newOperation(), name, params)
	return v, ok, c.failed(Named(name), err)
}

// ResolveAll resolves every registration of s independently, ignoring the
// most-recent-wins rule. It returns an empty slice when there is none.
//
//	// Laravel: $app->tagged('reports')
//	reports, err := c.ResolveAll(container.Named("reports"))
func (c *Container) ResolveAll(s Service) ([]any, error) {
	vs, err := c.resolveAll(newOperation(), s)
	return vs, c.failed(s, err)
}

// failed reports a top-level failure to the recorder and logger.
func (c *Container) failed(s Service, err error) error {
	if err != nil {
		c.recorder.Failed(s, err)
		c.logger.Debug("container: resolve failed", "service", serviceString(s), "error", err)
	}
	return err
}

func serviceString(s Service) string {
	if s == nil {
		return "<nil>"
	}
	return s.String()
}

func (c *Container) resolve(op *operation, s Service, params Parameters) (any, error) {
	v, ok, err := c.tryResolve(op, s, params)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &NotRegisteredError{Service: s}
	}
	return v, nil
}

func (c *Container) tryResolve(op *operation, s Service, params Parameters) (any, bool, error) {
	if !validService(s) {
		return nil, false, nil
	}
	if c.disposed.Load() {
		return nil, false, ErrDisposed
	}
	if err := op.push(s); err != nil {
		return nil, false, err
	}
	defer op.pop()

	reg, holder, ok, err := c.find(s)
	if err != nil || !ok {
		return nil, false, err
	}
	v, err := c.instance(op, s, reg, holder, params)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (c *Container) resolveNamed(op *operation, name string, params Parameters) (any, error) {
	v, ok, err := c.tryResolveNamed(op, name, params)
	if err != nil {
		return nil, err
	}
	if !ok {
		s := Named(name)
		return nil, &NotRegisteredError{Service: s}
	}
	return v, nil
}

func (c *Container) tryResolveNamed(op *operation, name string, params Parameters) (any, bool, error) {
	if v, ok, err := c.tryResolve(op, Named(name), params); err != nil || ok {
		return v, ok, err
	}
	reg, holder, ok := c.findByName(name)
	if !ok {
		return nil, false, nil
	}
	s := Named(name)
	if err := op.push(s); err != nil {
		return nil, false, err
	}
	defer op.pop()
	v, err := c.instance(op, s, reg, holder, params)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (c *Container) resolveAll(op *operation, s Service) ([]any, error) {
	if !validService(s) {
		return []any{}, nil
	}
	if c.disposed.Load() {
		return nil, ErrDisposed
	}
	if err := op.push(s); err != nil {
		return nil, err
	}
	defer op.pop()

	found, err := c.findAll(s)
	if err != nil {
		return nil, err
	}
	out := make([]any, 0, len(found))
	for _, f := range found {
		v, err := c.instance(op, s, f.reg, f.holder, nil)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// instance applies the scope policy of reg to a resolve issued against c.
func (c *Container) instance(op *operation, s Service, reg *Registration, holder *Container, params Parameters) (any, error) {
	owner, cached := reg.scope.Owner(c)
	if owner.disposed.Load() {
		return nil, ErrDisposed
	}
	if !cached {
		c.recorder.Resolved(reg, false)
		v, ctx, err := owner.construct(op, s, reg, holder, params)
		if err != nil {
			return nil, err
		}
		return v, holder.fireActivated(ctx, s, reg, v)
	}

	sl := owner.cache.slot(reg.id)
	if v, ok := sl.load(); ok {
		c.recorder.Resolved(reg, true)
		return v, nil
	}
	// Re-entering a slot this operation is filling would self-deadlock.
	if err := op.reentered(reg); err != nil {
		return nil, err
	}

	sl.mu.Lock()
	defer sl.mu.Unlock()
	if v, ok := sl.load(); ok {
		c.recorder.Resolved(reg, true)
		return v, nil
	}
	c.recorder.Resolved(reg, false)
	v, ctx, err := owner.construct(op, s, reg, holder, params)
	if err != nil {
		return nil, err
	}
	sl.store(v)
	return v, holder.fireActivated(ctx, s, reg, v)
}

// construct runs the activator of reg in c (the owner), enrolls the result
// for disposal and fires the activating handlers held by holder.
func (c *Container) construct(op *operation, s Service, reg *Registration, holder *Container, params Parameters) (any, Context, error) {
	if err := op.enter(reg); err != nil {
		return nil, nil, err
	}
	defer op.leave(reg)

	ctx := &resolveContext{c: c, op: op}
	start := time.Now()

	v, err := reg.activator.Activate(ctx, params)
	if err != nil {
		return nil, nil, activationFailure(s, reg, err)
	}
	if err := c.enroll(reg, v); err != nil {
		return nil, nil, activationFailure(s, reg, err)
	}

	e := &ActivatingEvent{Container: holder, Context: ctx, Component: reg, Instance: v}
	handlers := append(append([]ActivatingHandler(nil), reg.activating...), holder.activatingHandlers()...)
	for _, h := range handlers {
		if err := h(e); err != nil {
			return nil, nil, activationFailure(s, reg, err)
		}
	}
	if !sameInstance(e.Instance, v) {
		if err := c.enroll(reg, e.Instance); err != nil {
			return nil, nil, activationFailure(s, reg, err)
		}
	}

	elapsed := time.Since(start)
	c.recorder.Activated(reg, elapsed)
	c.logger.Debug("container: activated",
		"service", s.String(),
		"registration", reg.name,
		"scope", reg.scope.String(),
		"elapsed", elapsed,
	)
	return e.Instance, ctx, nil
}

// enroll hands a disposable instance to this container's Disposer.
func (c *Container) enroll(reg *Registration, v any) error {
	if reg.Ownership() != OwnedByContainer {
		return nil
	}
	d, ok := v.(Disposable)
	if !ok {
		return nil
	}
	return c.disposer.Add(d)
}

// sameInstance is a == b that tolerates uncomparable dynamic types: maps,
// slices and funcs are compared by identity.
func sameInstance(a, b any) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta == nil || ta.Comparable() {
		return a == b
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch va.Kind() {
	case reflect.Map, reflect.Slice, reflect.Func:
		return va.Pointer() == vb.Pointer()
	}
	return false
}

func (c *Container) fireActivated(ctx Context, s Service, reg *Registration, v any) error {
	e := &ActivatedEvent{Container: c, Context: ctx, Component: reg, Instance: v}
	handlers := append(append([]ActivatedHandler(nil), reg.activated...), c.activatedHandlers()...)
	for _, h := range handlers {
		if err := h(e); err != nil {
			return activationFailure(s, reg, err)
		}
	}
	return nil
}

// ── Inner containers ──────────────────────────────────────────────────────────

// CreateInnerContainer returns a child whose lookups fall back to this
// container and whose Disposer is independent. Dispose the child before, or
// together with, its parent. A disposed container hands out children that
// are already disposed.
func (c *Container) CreateInnerContainer() *Container {
	child := newContainer(c)
	child.logger = c.logger
	child.recorder = c.recorder
	child.bindSelf()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed.Load() {
		child.disposed.Store(true)
		return child
	}
	c.children = append(c.children, weak.Make(child))
	return child
}

// detach forgets child once it has been disposed on its own.
func (c *Container) detach(child *Container) {
	c.mu.Lock()
	defer c.mu.Unlock()
	wp := weak.Make(child)
	for i, p := range c.children {
		if p == wp {
			c.children = append(c.children[:i], c.children[i+1:]...)
			return
		}
	}
}

// ── Disposal ──────────────────────────────────────────────────────────────────

// Dispose tears the container down: live inner containers first (newest
// first), then the instances this container owns in reverse creation order.
// Instances cached in ancestors are never touched. Calling Dispose again is a
// no-op.
func (c *Container) Dispose() error {
	c.mu.Lock()
	if c.disposed.Load() {
		c.mu.Unlock()
		return nil
	}
	c.disposed.Store(true)
	children := c.children
	c.children = nil
	c.mu.Unlock()

	var errs []error
	for i := len(children) - 1; i >= 0; i-- {
		if child := children[i].Value(); child != nil {
			if err := child.Dispose(); err != nil {
				errs = append(errs, err)
			}
		}
	}

	n := c.disposer.Len()
	if err := c.disposer.Close(); err != nil {
		c.logger.Warn("container: dispose failed", "error", err)
		errs = append(errs, err)
	}
	c.cache.clear()

	if c.parent != nil {
		c.parent.detach(c)
	}

	err := errors.Join(errs...)
	c.recorder.Disposed(n, err)
	c.logger.Debug("container: disposed", "instances", n)
	return err
}

// Close implements Disposable so a container can be enrolled like any other
// resource.
func (c *Container) Close() error { return c.Dispose() }
