package container_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-ioc/framework/container"
)

// ── fixtures ──────────────────────────────────────────────────────────────────

// closeLog records the order instances are closed in.
type closeLog struct {
	mu    sync.Mutex
	order []any
}

func (l *closeLog) add(v any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.order = append(l.order, v)
}

func (l *closeLog) closed() []any {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]any(nil), l.order...)
}

// B depends on A, C depends on B, F depends on every A.

type A struct {
	log    *closeLog
	closed bool
}

func (a *A) Close() error {
	a.closed = true
	if a.log != nil {
		a.log.add(a)
	}
	return nil
}

type B struct {
	A      *A
	log    *closeLog
	closed bool
}

func (b *B) Close() error {
	b.closed = true
	if b.log != nil {
		b.log.add(b)
	}
	return nil
}

type C struct{ B *B }

type F struct{ As []*A }

func NewA(log *closeLog) *A       { return &A{log: log} }
func NewB(a *A, log *closeLog) *B { return &B{A: a, log: log} }
func NewC(b *B) *C                { return &C{B: b} }
func NewF(as []*A) *F             { return &F{As: as} }

func newContainer(t *testing.T) (*container.Container, *closeLog) {
	t.Helper()
	c := container.New()
	log := &closeLog{}
	_, err := c.Instance(container.TypeOf[*closeLog](), log)
	require.NoError(t, err)
	return c, log
}

func mustConstructor(t *testing.T, c *container.Container, fn any, opts ...container.RegistrationOption) *container.Registration {
	t.Helper()
	reg, err := c.Constructor(fn, opts...)
	require.NoError(t, err)
	return reg
}

// ── Unregistered services ─────────────────────────────────────────────────────

func TestResolve_Unregistered_Fails(t *testing.T) {
	c := container.New()

	_, err := c.Resolve(container.TypeOf[*A]())

	require.Error(t, err)
	assert.ErrorIs(t, err, container.ErrServiceNotRegistered)
	assert.Contains(t, err.Error(), "*container_test.A")

	var nr *container.NotRegisteredError
	require.ErrorAs(t, err, &nr)
	assert.Equal(t, container.TypeOf[*A](), nr.Service)
}

func TestTryResolve_Unregistered_ReturnsEmpty(t *testing.T) {
	c := container.New()

	v, ok, err := c.TryResolve(container.TypeOf[*A]())

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, v)
}

func TestTryResolve_MissingDependency_IsAnError(t *testing.T) {
	c := container.New()
	mustConstructor(t, c, NewB) // *A and *closeLog are missing

	_, ok, err := c.TryResolve(container.TypeOf[*B]())

	assert.False(t, ok)
	assert.ErrorIs(t, err, container.ErrServiceNotRegistered)
}

func TestResolve_ProvidedInstance(t *testing.T) {
	c := container.New()
	_, err := c.Instance(container.Named("greeting"), "Hello")
	require.NoError(t, err)

	v, ok, err := c.TryResolve(container.Named("greeting"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Hello", v)
	assert.True(t, c.IsRegistered(container.Named("greeting")))
}

// ── Registration ──────────────────────────────────────────────────────────────

func TestRegister_LaterRegistrationWins(t *testing.T) {
	c := container.New()
	first, second := &A{}, &A{}

	_, err := c.Instance(container.TypeOf[*A](), first)
	require.NoError(t, err)
	_, err = c.Instance(container.TypeOf[*A](), second)
	require.NoError(t, err)

	got, err := container.Resolve[*A](c)
	require.NoError(t, err)
	assert.Same(t, second, got)

	all, err := container.ResolveAll[*A](c)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Same(t, first, all[0])
	assert.Same(t, second, all[1])
}

func TestRegister_MultipleServices(t *testing.T) {
	c := container.New()
	reg, err := c.Register(
		[]container.Service{container.TypeOf[any](), container.TypeOf[string]()},
		container.NewInstanceActivator("Hello"),
		container.ContainerScope,
	)
	require.NoError(t, err)
	assert.Len(t, reg.Services(), 2)

	assert.True(t, container.IsRegistered[any](c))
	assert.True(t, container.IsRegistered[string](c))
}

func TestRegister_InvalidDescriptors(t *testing.T) {
	act := container.NewInstanceActivator(&A{})

	tests := []struct {
		name      string
		services  []container.Service
		activator container.Activator
		scope     container.ScopePolicy
	}{
		{"duplicate service", []container.Service{container.TypeOf[*A](), container.TypeOf[*A]()}, act, container.SingletonScope},
		{"nil service", []container.Service{container.TypeOf[*A](), nil}, act, container.SingletonScope},
		{"zero typed service", []container.Service{container.TypedService{}}, act, container.SingletonScope},
		{"empty name", []container.Service{container.Named("")}, act, container.SingletonScope},
		{"no services", nil, act, container.SingletonScope},
		{"nil activator", []container.Service{container.TypeOf[*A]()}, nil, container.SingletonScope},
		{"nil delegate", []container.Service{container.TypeOf[*A]()}, container.DelegateActivator(nil), container.SingletonScope},
		{"nil scope", []container.Service{container.TypeOf[*A]()}, act, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := container.New()

			reg, err := c.Register(tt.services, tt.activator, tt.scope)

			assert.Nil(t, reg)
			assert.ErrorIs(t, err, container.ErrInvalidRegistration)
			assert.False(t, container.IsRegistered[*A](c), "nothing may reach the registry")
		})
	}
}

func TestRegisterComponent_Nil(t *testing.T) {
	c := container.New()
	assert.ErrorIs(t, c.RegisterComponent(nil), container.ErrInvalidRegistration)
	assert.ErrorIs(t, c.RegisterComponent(&container.Registration{}), container.ErrInvalidRegistration)
}

// ── Circular dependencies ─────────────────────────────────────────────────────

func TestResolve_CircularDependency(t *testing.T) {
	c := container.New()
	_, err := c.Bind(container.Named("A"), func(ctx container.Context) (any, error) {
		return ctx.Resolve(container.Named("B"))
	})
	require.NoError(t, err)
	_, err = c.Bind(container.Named("B"), func(ctx container.Context) (any, error) {
		return ctx.Resolve(container.Named("A"))
	})
	require.NoError(t, err)
	_, err = c.Instance(container.Named("C"), "unrelated")
	require.NoError(t, err)

	_, err = c.Resolve(container.Named("A"))

	require.Error(t, err)
	assert.ErrorIs(t, err, container.ErrCircularDependency)
	assert.Contains(t, err.Error(), "A -> B -> A")
	assert.Nil(t, errors.Unwrap(err), "a cycle carries no inner cause")

	var cd *container.CircularDependencyError
	require.ErrorAs(t, err, &cd)
	assert.Equal(t, []container.Service{
		container.Named("A"), container.Named("B"), container.Named("A"),
	}, cd.Chain)

	// The stack was fully unwound.
	v, err := c.Resolve(container.Named("C"))
	require.NoError(t, err)
	assert.Equal(t, "unrelated", v)
}

func TestResolve_SelfDependency(t *testing.T) {
	c := container.New()
	_, err := c.Singleton(container.TypeOf[any](), func(ctx container.Context) (any, error) {
		return ctx.Resolve(container.TypeOf[any]())
	})
	require.NoError(t, err)

	_, err = c.Resolve(container.TypeOf[any]())

	assert.ErrorIs(t, err, container.ErrCircularDependency)
	assert.Contains(t, err.Error(), "interface {} -> interface {}")
}

func TestResolve_CycleThroughSecondServiceOfSameRegistration(t *testing.T) {
	c := container.New()
	_, err := c.Register(
		[]container.Service{container.Named("x"), container.Named("y")},
		container.DelegateActivator(func(ctx container.Context, _ container.Parameters) (any, error) {
			return ctx.Resolve(container.Named("y"))
		}),
		container.SingletonScope,
	)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := c.Resolve(container.Named("x"))
		done <- err
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, container.ErrCircularDependency)
	case <-time.After(2 * time.Second):
		t.Fatal("resolve deadlocked")
	}
}

// ── Scope policies ────────────────────────────────────────────────────────────

func TestSingleton_SharedAcrossHierarchy(t *testing.T) {
	c, _ := newContainer(t)
	mustConstructor(t, c, NewA)

	child := c.CreateInnerContainer()
	grandchild := child.CreateInnerContainer()

	fromRoot := container.MustResolve[*A](c)
	fromChild := container.MustResolve[*A](child)
	fromGrandchild := container.MustResolve[*A](grandchild)

	assert.Same(t, fromRoot, fromChild)
	assert.Same(t, fromRoot, fromGrandchild)
	assert.Same(t, fromRoot, container.MustResolve[*A](c))
}

func TestFactory_NewInstanceEachResolve(t *testing.T) {
	c, _ := newContainer(t)
	mustConstructor(t, c, NewA, container.WithScope(container.FactoryScope))

	a1 := container.MustResolve[*A](c)
	a2 := container.MustResolve[*A](c)

	assert.NotSame(t, a1, a2)
}

func TestContainerScope_OnePerContainer(t *testing.T) {
	c, _ := newContainer(t)
	mustConstructor(t, c, NewA, container.WithScope(container.ContainerScope))
	inner := c.CreateInnerContainer()

	innerA := container.MustResolve[*A](inner)
	targetA := container.MustResolve[*A](c)

	assert.Same(t, innerA, container.MustResolve[*A](inner))
	assert.Same(t, targetA, container.MustResolve[*A](c))
	assert.NotSame(t, innerA, targetA)

	require.NoError(t, inner.Dispose())
	assert.True(t, innerA.closed)
	assert.False(t, targetA.closed, "disposing a child must not touch the parent's instance")

	require.NoError(t, c.Dispose())
	assert.True(t, targetA.closed)
}

func TestContainerScope_SiblingDisposalLeavesOtherInstance(t *testing.T) {
	c, _ := newContainer(t)
	mustConstructor(t, c, NewA, container.WithScope(container.ContainerScope))
	inner := c.CreateInnerContainer()

	innerA := container.MustResolve[*A](inner)
	sibling := c.CreateInnerContainer()
	siblingA := container.MustResolve[*A](sibling)
	assert.NotSame(t, innerA, siblingA)

	require.NoError(t, sibling.Dispose())
	assert.True(t, siblingA.closed)
	assert.False(t, innerA.closed)
}

func TestSingletonFromInnerContainer_OwnedByRoot(t *testing.T) {
	c, _ := newContainer(t)
	mustConstructor(t, c, NewA)
	inner := c.CreateInnerContainer()

	innerA := container.MustResolve[*A](inner)
	targetA := container.MustResolve[*A](c)
	assert.Same(t, innerA, targetA)

	require.NoError(t, inner.Dispose())
	assert.False(t, innerA.closed)

	require.NoError(t, c.Dispose())
	assert.True(t, innerA.closed)
}

func TestFactoryFromInnerContainer_OwnedByResolver(t *testing.T) {
	c, _ := newContainer(t)
	mustConstructor(t, c, NewA, container.WithScope(container.FactoryScope))
	inner := c.CreateInnerContainer()

	innerA := container.MustResolve[*A](inner)
	targetA := container.MustResolve[*A](c)
	assert.NotSame(t, innerA, targetA)

	require.NoError(t, inner.Dispose())
	assert.True(t, innerA.closed)
	assert.False(t, targetA.closed)

	require.NoError(t, c.Dispose())
	assert.True(t, targetA.closed)
}

func TestOuterInstancesCannotReferenceInner(t *testing.T) {
	c, _ := newContainer(t)
	mustConstructor(t, c, NewA, container.WithScope(container.ContainerScope))
	mustConstructor(t, c, NewB, container.WithScope(container.FactoryScope))
	inner := c.CreateInnerContainer()

	outerB := container.MustResolve[*B](c)
	innerB := container.MustResolve[*B](inner)
	outerA := container.MustResolve[*A](c)
	innerA := container.MustResolve[*A](inner)

	assert.Same(t, innerA, innerB.A)
	assert.Same(t, outerA, outerB.A)
	assert.NotSame(t, innerA, outerA)
	assert.NotSame(t, innerB, outerB)
}

func TestInnerCannotResolveOuterSingletonDependencies(t *testing.T) {
	outer, _ := newContainer(t)
	mustConstructor(t, outer, NewB)

	inner := outer.CreateInnerContainer()
	mustConstructor(t, inner, NewC)
	mustConstructor(t, inner, NewA)

	// B is a singleton, so it is built in the root, where *A is unknown.
	_, err := container.Resolve[*C](inner)

	assert.ErrorIs(t, err, container.ErrServiceNotRegistered)
	assert.Contains(t, err.Error(), "*container_test.A")
}

func TestSingleton_ConstructedOnceUnderConcurrency(t *testing.T) {
	c := container.New()
	var built atomic.Int32
	_, err := c.Singleton(container.TypeOf[*A](), func(container.Context) (any, error) {
		built.Add(1)
		time.Sleep(10 * time.Millisecond)
		return &A{}, nil
	})
	require.NoError(t, err)

	const n = 32
	got := make([]*A, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			inner := c.CreateInnerContainer()
			defer inner.Dispose()
			got[i] = container.MustResolve[*A](inner)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), built.Load())
	for _, a := range got {
		assert.Same(t, got[0], a)
	}
}

// ── Disposal ──────────────────────────────────────────────────────────────────

func TestDispose_DependentsBeforeDependencies(t *testing.T) {
	tests := []struct {
		name    string
		resolve func(c *container.Container) (*A, *B)
	}{
		{"A then B", func(c *container.Container) (*A, *B) {
			a := container.MustResolve[*A](c)
			return a, container.MustResolve[*B](c)
		}},
		{"B then A", func(c *container.Container) (*A, *B) {
			b := container.MustResolve[*B](c)
			return container.MustResolve[*A](c), b
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, log := newContainer(t)
			mustConstructor(t, c, NewA)
			mustConstructor(t, c, NewB)

			a, b := tt.resolve(c)
			require.NoError(t, c.Dispose())

			assert.Equal(t, []any{b, a}, log.closed())
		})
	}
}

func TestDispose_Idempotent(t *testing.T) {
	c, log := newContainer(t)
	mustConstructor(t, c, NewA)
	container.MustResolve[*A](c)

	require.NoError(t, c.Dispose())
	require.NoError(t, c.Dispose())

	assert.Len(t, log.closed(), 1)
	assert.True(t, c.IsDisposed())
}

func TestDispose_CascadesToLiveChildren(t *testing.T) {
	c, log := newContainer(t)
	mustConstructor(t, c, NewA)
	mustConstructor(t, c, NewB, container.WithScope(container.ContainerScope))

	inner := c.CreateInnerContainer()
	innerB := container.MustResolve[*B](inner)
	a := container.MustResolve[*A](c)

	require.NoError(t, c.Dispose())

	assert.True(t, inner.IsDisposed())
	assert.Equal(t, []any{innerB, a}, log.closed(), "the child's B depends on the root's A")
}

func TestDispose_DisposedChildIsNotDisposedTwice(t *testing.T) {
	c, log := newContainer(t)
	mustConstructor(t, c, NewA, container.WithScope(container.ContainerScope))

	inner := c.CreateInnerContainer()
	container.MustResolve[*A](inner)
	require.NoError(t, inner.Dispose())
	require.NoError(t, c.Dispose())

	assert.Len(t, log.closed(), 1)
}

func TestDispose_InnerContainerOfDisposedParent(t *testing.T) {
	c, _ := newContainer(t)
	require.NoError(t, c.Dispose())

	inner := c.CreateInnerContainer()

	assert.True(t, inner.IsDisposed())
	_, err := container.Resolve[*A](inner)
	assert.ErrorIs(t, err, container.ErrDisposed)
}

func TestDispose_ResolveAfterDispose(t *testing.T) {
	c, _ := newContainer(t)
	mustConstructor(t, c, NewA)
	require.NoError(t, c.Dispose())

	_, err := c.Resolve(container.TypeOf[*A]())
	assert.ErrorIs(t, err, container.ErrDisposed)
	assert.False(t, container.IsRegistered[*A](c))
}

func TestDispose_ProvidedInstanceIsExternallyOwned(t *testing.T) {
	c := container.New()
	external, owned := &A{}, &A{}
	_, err := c.Instance(container.Named("external"), external)
	require.NoError(t, err)
	_, err = c.Register(
		[]container.Service{container.Named("owned")},
		container.NewOwnedInstanceActivator(owned),
		container.SingletonScope,
	)
	require.NoError(t, err)

	_, err = c.Resolve(container.Named("external"))
	require.NoError(t, err)
	_, err = c.Resolve(container.Named("owned"))
	require.NoError(t, err)
	require.NoError(t, c.Dispose())

	assert.False(t, external.closed)
	assert.True(t, owned.closed)
}

type failingCloser struct{}

func (failingCloser) Close() error { return errors.New("boom") }

func TestDispose_ReportsCloseErrors(t *testing.T) {
	c := container.New()
	_, err := c.Bind(container.Named("bad"), func(container.Context) (any, error) {
		return failingCloser{}, nil
	})
	require.NoError(t, err)
	_, err = c.Resolve(container.Named("bad"))
	require.NoError(t, err)

	err = c.Dispose()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

// ── Registration sources ──────────────────────────────────────────────────────

type countingSource struct {
	calls atomic.Int32
	asked []container.Service
	mu    sync.Mutex
}

func (s *countingSource) RegistrationFor(svc container.Service) (*container.Registration, bool) {
	s.calls.Add(1)
	s.mu.Lock()
	s.asked = append(s.asked, svc)
	s.mu.Unlock()
	if svc != container.TypeOf[*A]() {
		return nil, false
	}
	reg, err := container.NewRegistration(
		[]container.Service{svc},
		container.DelegateActivator(func(container.Context, container.Parameters) (any, error) { return &A{}, nil }),
		container.WithScope(container.FactoryScope),
	)
	return reg, err == nil
}

func TestRegistrationSource_ConsultedOnMissOnce(t *testing.T) {
	c := container.New()
	assert.False(t, container.IsRegistered[*A](c))

	src := &countingSource{}
	c.AddRegistrationSource(src)

	assert.True(t, container.IsRegistered[*A](c))
	a1, err := container.Resolve[*A](c)
	require.NoError(t, err)
	a2, err := container.Resolve[*A](c)
	require.NoError(t, err)

	assert.NotSame(t, a1, a2, "the synthesized registration keeps its factory scope")
	assert.Equal(t, int32(1), src.calls.Load())
	assert.Len(t, c.Registrations(), 2, "self binding plus the synthesized registration")
}

func TestRegistrationSource_NotConsultedWhenRegistered(t *testing.T) {
	c := container.New()
	src := &countingSource{}
	c.AddRegistrationSource(src)
	_, err := c.Instance(container.TypeOf[*A](), &A{})
	require.NoError(t, err)

	container.MustResolve[*A](c)

	assert.Equal(t, int32(0), src.calls.Load())
}

func TestRegistrationSource_AncestorRegistryWinsOverSource(t *testing.T) {
	c := container.New()
	parentA := &A{}
	_, err := c.Instance(container.TypeOf[*A](), parentA)
	require.NoError(t, err)

	inner := c.CreateInnerContainer()
	src := &countingSource{}
	inner.AddRegistrationSource(src)

	assert.Same(t, parentA, container.MustResolve[*A](inner))
	assert.Equal(t, int32(0), src.calls.Load())
}

func TestRegistrationSource_CachedInAskingContainer(t *testing.T) {
	c := container.New()
	inner := c.CreateInnerContainer()
	src := &countingSource{}
	inner.AddRegistrationSource(src)

	container.MustResolve[*A](inner)
	container.MustResolve[*A](inner)

	assert.Equal(t, int32(1), src.calls.Load())
	assert.False(t, container.IsRegistered[*A](c), "the parent never sees the child's source")
}

func TestRegistrationSource_AncestorSourceCachedInEachChild(t *testing.T) {
	c := container.New()
	src := &countingSource{}
	c.AddRegistrationSource(src)
	rootRegs := len(c.Registrations())

	child1 := c.CreateInnerContainer()
	child2 := c.CreateInnerContainer()
	container.MustResolve[*A](child1)
	container.MustResolve[*A](child1)
	container.MustResolve[*A](child2)

	assert.Equal(t, int32(2), src.calls.Load(), "one consultation per asking container")
	assert.Len(t, c.Registrations(), rootRegs, "a child never writes to its parent's registry")
	assert.Len(t, child1.Registrations(), 2)
	assert.Len(t, child2.Registrations(), 2)
}

func TestRegistrationSource_MalformedRegistration(t *testing.T) {
	c := container.New()
	c.AddRegistrationSource(container.RegistrationSourceFunc(func(container.Service) (*container.Registration, bool) {
		return &container.Registration{}, true
	}))

	var err error
	require.NotPanics(t, func() { _, err = c.Resolve(container.Named("x")) })
	assert.ErrorIs(t, err, container.ErrInvalidRegistration)

	_, _, err = c.TryResolve(container.Named("x"))
	assert.ErrorIs(t, err, container.ErrInvalidRegistration)

	_, err = c.ResolveAll(container.Named("x"))
	assert.ErrorIs(t, err, container.ErrInvalidRegistration)

	assert.False(t, c.IsRegistered(container.Named("x")))
	assert.Len(t, c.Registrations(), 1, "nothing is cached")
}

// ── Collections ───────────────────────────────────────────────────────────────

func TestResolveAll_IndependentInstances(t *testing.T) {
	c, _ := newContainer(t)
	mustConstructor(t, c, NewA)
	for i := 0; i < 3; i++ {
		mustConstructor(t, c, NewB, container.WithScope(container.FactoryScope))
	}

	bs, err := container.ResolveAll[*B](c)
	require.NoError(t, err)
	require.Len(t, bs, 3)

	for i, b := range bs {
		require.NotNil(t, b.A, "B #%d was not injected", i)
		assert.Same(t, bs[0].A, b.A)
	}
	assert.NotSame(t, bs[0], bs[1])
	assert.NotSame(t, bs[1], bs[2])
}

func TestResolveAll_IncludesAncestors(t *testing.T) {
	c := container.New()
	_, err := c.Instance(container.Named("report"), "cpu")
	require.NoError(t, err)
	inner := c.CreateInnerContainer()
	_, err = inner.Instance(container.Named("report"), "memory")
	require.NoError(t, err)

	reports, err := inner.ResolveAll(container.Named("report"))
	require.NoError(t, err)
	assert.Equal(t, []any{"cpu", "memory"}, reports)

	reports, err = c.ResolveAll(container.Named("report"))
	require.NoError(t, err)
	assert.Equal(t, []any{"cpu"}, reports)
}

func TestResolveAll_NoneRegistered(t *testing.T) {
	c := container.New()

	all, err := container.ResolveAll[*A](c)

	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestDependencyOnCollection(t *testing.T) {
	c, _ := newContainer(t)
	mustConstructor(t, c, NewA, container.WithScope(container.FactoryScope))
	mustConstructor(t, c, NewA, container.WithScope(container.FactoryScope))
	mustConstructor(t, c, NewF)

	f := container.MustResolve[*F](c)

	require.Len(t, f.As, 2)
	assert.NotSame(t, f.As[0], f.As[1])
}

// ── Named resolution ──────────────────────────────────────────────────────────

func TestResolveNamed_ByRegistrationName(t *testing.T) {
	c := container.New()
	reg, err := c.Bind(container.TypeOf[*A](), func(container.Context) (any, error) { return &A{}, nil })
	require.NoError(t, err)
	require.NotEmpty(t, reg.Name())

	v, ok, err := c.TryResolveNamed(reg.Name())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.IsType(t, &A{}, v)

	assert.False(t, c.IsRegistered(container.Named(reg.Name())))
}

func TestResolveNamed_ByNamedService(t *testing.T) {
	c := container.New()
	_, err := c.Instance(container.Named("config"), map[string]string{"env": "testing"})
	require.NoError(t, err)

	cfg, err := container.ResolveNamed[map[string]string](c, "config")
	require.NoError(t, err)
	assert.Equal(t, "testing", cfg["env"])

	_, err = c.ResolveNamed("missing")
	assert.ErrorIs(t, err, container.ErrServiceNotRegistered)
	assert.Contains(t, err.Error(), "missing")
}

func TestResolveNamed_WithName(t *testing.T) {
	c := container.New()
	_, err := c.Bind(container.TypeOf[*A](), func(container.Context) (any, error) { return &A{}, nil },
		container.WithName(container.TypeKey((*A)(nil))))
	require.NoError(t, err)

	a, err := container.ResolveNamed[*A](c, "github.com/km-arc/go-ioc/framework/container_test.A")
	require.NoError(t, err)
	assert.NotNil(t, a)
}

// ── Self binding ──────────────────────────────────────────────────────────────

func TestResolve_ContainerResolvesItself(t *testing.T) {
	c := container.New()
	inner := c.CreateInnerContainer()

	assert.Same(t, c, container.MustResolve[*container.Container](c))
	assert.Same(t, inner, container.MustResolve[*container.Container](inner))
	assert.Same(t, c, inner.Parent())

	require.NoError(t, c.Dispose())
	assert.True(t, inner.IsDisposed())
}

// ── Failures ──────────────────────────────────────────────────────────────────

func TestResolve_ActivationFailureWrapsCause(t *testing.T) {
	c := container.New()
	cause := errors.New("database unreachable")
	_, err := c.Singleton(container.Named("db"), func(container.Context) (any, error) {
		return nil, cause
	})
	require.NoError(t, err)

	_, err = c.Resolve(container.Named("db"))

	assert.ErrorIs(t, err, container.ErrActivationFailure)
	assert.ErrorIs(t, err, cause)

	_, ok, err := c.TryResolve(container.Named("db"))
	assert.False(t, ok)
	assert.ErrorIs(t, err, container.ErrActivationFailure, "TryResolve only swallows absence")
}

func TestResolve_FailedSingletonCanBeRetried(t *testing.T) {
	c := container.New()
	var calls int
	_, err := c.Singleton(container.Named("flaky"), func(container.Context) (any, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("first call fails")
		}
		return "ok", nil
	})
	require.NoError(t, err)

	_, err = c.Resolve(container.Named("flaky"))
	require.Error(t, err)

	v, err := c.Resolve(container.Named("flaky"))
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestResolve_WrongTypeAssertion(t *testing.T) {
	c := container.New()
	_, err := c.Instance(container.Named("n"), 42)
	require.NoError(t, err)

	_, err = container.ResolveNamed[string](c, "n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "int")

	assert.Panics(t, func() { container.MustResolve[*A](c) })
}
