// Package metrics provides Prometheus instrumentation for tasklane components.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metric instances for tasklane components.
type Registry struct {
	// Scheduler Metrics
	ClosuresScheduled *prometheus.CounterVec
	ClosuresExecuted  *prometheus.CounterVec
	ClosuresEvicted   *prometheus.CounterVec
	Drains            *prometheus.CounterVec
	QueueLength       *prometheus.GaugeVec
	QueueCapacity     *prometheus.GaugeVec

	// Runner Metrics
	JobsFired      *prometheus.CounterVec
	JobPanics      *prometheus.CounterVec
	DrainDuration  *prometheus.HistogramVec
	RunnerJobCount *prometheus.GaugeVec
}

// DefaultRegistry is the default metrics registry used by tasklane components.
var DefaultRegistry *Registry

var (
	registriesMu sync.Mutex
	registries   = make(map[registryKey]*Registry)
)

type registryKey struct {
	reg       prometheus.Registerer
	namespace string
}

func init() {
	DefaultRegistry = For(Config{})
}

// For returns the Registry for config's registerer and namespace, creating
// it on first use. Components enabled with equal configs share series.
// Labels are taken from the first config seen for a key.
func For(config Config) *Registry {
	key := registryKey{reg: config.Registry, namespace: config.Namespace}
	if key.reg == nil {
		key.reg = prometheus.DefaultRegisterer
	}
	if key.namespace == "" {
		key.namespace = DefaultNamespace
	}

	registriesMu.Lock()
	defer registriesMu.Unlock()

	if r, ok := registries[key]; ok {
		return r
	}
	r := NewRegistryWithConfig(config)
	registries[key] = r
	return r
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	return NewRegistryWithConfig(Config{Registry: reg})
}

// NewRegistryWithConfig creates a metrics registry honoring the namespace
// and constant labels of config. A nil Registry means the default registerer.
func NewRegistryWithConfig(config Config) *Registry {
	reg := config.Registry
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	namespace := config.Namespace
	if namespace == "" {
		namespace = DefaultNamespace
	}
	labels := config.Labels

	factory := promauto.With(reg)

	return &Registry{
		// Scheduler Metrics
		ClosuresScheduled: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "scheduler",
				Name:        "closures_scheduled_total",
				Help:        "Total number of closures written to the work queue",
				ConstLabels: labels,
			},
			[]string{"scheduler_name"},
		),

		ClosuresExecuted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "scheduler",
				Name:        "closures_executed_total",
				Help:        "Total number of closures invoked",
				ConstLabels: labels,
			},
			[]string{"scheduler_name"},
		),

		ClosuresEvicted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "scheduler",
				Name:        "closures_evicted_total",
				Help:        "Total number of closures run early because the queue was full",
				ConstLabels: labels,
			},
			[]string{"scheduler_name"},
		),

		Drains: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "scheduler",
				Name:        "drains_total",
				Help:        "Total number of drains that ran at least one closure",
				ConstLabels: labels,
			},
			[]string{"scheduler_name"},
		),

		QueueLength: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   namespace,
				Subsystem:   "queue",
				Name:        "length",
				Help:        "Number of closures queued at the last flush",
				ConstLabels: labels,
			},
			[]string{"scheduler_name"},
		),

		QueueCapacity: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   namespace,
				Subsystem:   "queue",
				Name:        "capacity",
				Help:        "Maximum number of queued closures",
				ConstLabels: labels,
			},
			[]string{"scheduler_name"},
		),

		// Runner Metrics
		JobsFired: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "runner",
				Name:        "jobs_fired_total",
				Help:        "Total number of timed jobs fired",
				ConstLabels: labels,
			},
			[]string{"runner_name", "job_id"},
		),

		JobPanics: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "runner",
				Name:        "panics_total",
				Help:        "Total number of panics recovered by the runner",
				ConstLabels: labels,
			},
			[]string{"runner_name"},
		),

		DrainDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   namespace,
				Subsystem:   "runner",
				Name:        "drain_duration_seconds",
				Help:        "Time spent running a job and draining its closures",
				Buckets:     prometheus.ExponentialBuckets(1e-6, 4, 10),
				ConstLabels: labels,
			},
			[]string{"runner_name"},
		),

		RunnerJobCount: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   namespace,
				Subsystem:   "runner",
				Name:        "jobs",
				Help:        "Number of timed jobs registered",
				ConstLabels: labels,
			},
			[]string{"runner_name"},
		),
	}
}
