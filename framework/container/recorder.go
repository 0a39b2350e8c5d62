package container

import "time"

// Recorder receives resolution telemetry. framework/metrics provides a
// Prometheus implementation; the default discards everything.
//
// Implementations are called synchronously on the resolving goroutine and
// must be safe for concurrent use.
type Recorder interface {
	// Resolved is called once per instance handed out; hit reports a cache
	// hit.
	Resolved(reg *Registration, hit bool)
	// Activated is called after a successful construction.
	Activated(reg *Registration, elapsed time.Duration)
	// Failed is called when resolving service fails.
	Failed(service Service, err error)
	// Disposed is called once per disposed container.
	Disposed(instances int, err error)
}

type nopRecorder struct{}

func (nopRecorder) Resolved(*Registration, bool)           {}
func (nopRecorder) Activated(*Registration, time.Duration) {}
func (nopRecorder) Failed(Service, error)                  {}
func (nopRecorder) Disposed(int, error)                    {}
