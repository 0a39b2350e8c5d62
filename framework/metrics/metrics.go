// Package metrics provides Prometheus instrumentation for the container and
// the HTTP kernel.
//
// A Collector owns its own registry, so several applications (or tests) can
// live in one process. Wire it up once at bootstrap:
//
//	m := metrics.New()
//	c := container.New(container.WithRecorder(m))
//	r.Use(m.Middleware())
//	r.Get("/metrics", m.Handler().ServeHTTP)
//
// Then scrape http://localhost:8000/metrics from Prometheus.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/km-arc/go-ioc/framework/container"
)

const namespace = "ioc"

// Collector implements container.Recorder on top of Prometheus metrics.
type Collector struct {
	registry *prometheus.Registry

	// Resolves counts instances handed out, by scope and cache result
	// ("hit" | "miss").
	Resolves *prometheus.CounterVec
	// Activations counts successful constructions by scope.
	Activations *prometheus.CounterVec
	// ActivationDuration tracks how long constructions take, including the
	// construction of their dependencies.
	ActivationDuration *prometheus.HistogramVec
	// Failures counts failed resolutions by kind.
	Failures *prometheus.CounterVec
	// Disposals counts disposed containers by result ("ok" | "error").
	Disposals *prometheus.CounterVec
	// DisposedInstances counts instances closed by container disposal.
	DisposedInstances prometheus.Counter

	// RequestDuration tracks HTTP request latency by method, route and status.
	RequestDuration *prometheus.HistogramVec
	// RequestsInFlight is the number of requests currently being served.
	RequestsInFlight prometheus.Gauge
}

var _ container.Recorder = (*Collector)(nil)

// New creates a Collector with Go runtime and process collectors already
// registered.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		Resolves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "container",
			Name:      "resolves_total",
			Help:      "Total instances handed out by the container.",
		}, []string{"scope", "cache"}),
		Activations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "container",
			Name:      "activations_total",
			Help:      "Total instances constructed by the container.",
		}, []string{"scope"}),
		ActivationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "container",
			Name:      "activation_duration_seconds",
			Help:      "Duration of instance construction in seconds.",
			Buckets:   []float64{.00001, .0001, .001, .01, .1, 1},
		}, []string{"scope"}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "container",
			Name:      "failures_total",
			Help:      "Total failed resolutions.",
		}, []string{"kind"}),
		Disposals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "container",
			Name:      "disposals_total",
			Help:      "Total disposed containers.",
		}, []string{"result"}),
		DisposedInstances: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "container",
			Name:      "disposed_instances_total",
			Help:      "Total instances closed by container disposal.",
		}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		RequestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being served.",
		}),
	}

	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.Resolves,
		c.Activations,
		c.ActivationDuration,
		c.Failures,
		c.Disposals,
		c.DisposedInstances,
		c.RequestDuration,
		c.RequestsInFlight,
	)
	return c
}

// Registry exposes the underlying registry for custom metrics.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// ── container.Recorder ────────────────────────────────────────────────────────

func (c *Collector) Resolved(reg *container.Registration, hit bool) {
	cache := "miss"
	if hit {
		cache = "hit"
	}
	c.Resolves.WithLabelValues(reg.Scope().String(), cache).Inc()
}

func (c *Collector) Activated(reg *container.Registration, elapsed time.Duration) {
	scope := reg.Scope().String()
	c.Activations.WithLabelValues(scope).Inc()
	c.ActivationDuration.WithLabelValues(scope).Observe(elapsed.Seconds())
}

func (c *Collector) Failed(_ container.Service, err error) {
	c.Failures.WithLabelValues(FailureKind(err)).Inc()
}

func (c *Collector) Disposed(instances int, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.Disposals.WithLabelValues(result).Inc()
	c.DisposedInstances.Add(float64(instances))
}

// FailureKind classifies a container error for the "kind" label.
func FailureKind(err error) string {
	switch {
	case errors.Is(err, container.ErrServiceNotRegistered):
		return "not_registered"
	case errors.Is(err, container.ErrCircularDependency):
		return "circular_dependency"
	case errors.Is(err, container.ErrActivationFailure):
		return "activation"
	case errors.Is(err, container.ErrDisposed):
		return "disposed"
	default:
		return "other"
	}
}

// ── HTTP ──────────────────────────────────────────────────────────────────────

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records the duration of every request, labelled with the chi
// route pattern rather than the raw path to keep cardinality bounded.
func (c *Collector) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			c.RequestsInFlight.Inc()
			defer c.RequestsInFlight.Dec()

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			c.RequestDuration.
				WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).
				Observe(time.Since(start).Seconds())
		})
	}
}

// Handler exposes the metrics page. Mount it on GET /metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}
