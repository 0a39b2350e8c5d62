package container

import (
	"errors"
	"fmt"
	"sync"
)

// Disposable is the capability the container looks for on every instance it
// creates. Matching instances are enrolled in the owning container's Disposer.
type Disposable interface {
	Close() error
}

// Disposer is the ordered teardown list of one container. Instances are
// appended as they are created and closed in reverse order, so an instance is
// always closed before the dependencies it was built from.
//
// A Disposer is itself Disposable.
type Disposer struct {
	mu       sync.Mutex
	items    []Disposable
	disposed bool
}

// NewDisposer returns an empty Disposer.
func NewDisposer() *Disposer {
	return &Disposer{}
}

// Add enrolls d. Adding to a drained Disposer closes d immediately so it
// cannot leak.
func (d *Disposer) Add(item Disposable) error {
	d.mu.Lock()
	if !d.disposed {
		d.items = append(d.items, item)
		d.mu.Unlock()
		return nil
	}
	d.mu.Unlock()
	return item.Close()
}

// Len is the number of instances waiting to be closed.
func (d *Disposer) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.items)
}

// Close drains the list in reverse append order. Every item is closed even if
// an earlier one fails; failures are joined. Subsequent calls are no-ops.
func (d *Disposer) Close() error {
	d.mu.Lock()
	if d.disposed {
		d.mu.Unlock()
		return nil
	}
	d.disposed = true
	items := d.items
	d.items = nil
	d.mu.Unlock()

	var errs []error
	for i := len(items) - 1; i >= 0; i-- {
		if err := items[i].Close(); err != nil {
			errs = append(errs, fmt.Errorf("dispose %T: %w", items[i], err))
		}
	}
	return errors.Join(errs...)
}
