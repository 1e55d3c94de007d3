package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vnykmshr/tasklane/pkg/metrics"
)

var _ metrics.Instrumentable = (*Scheduler)(nil)

// schedulerMetrics holds the label-bound series for one scheduler.
type schedulerMetrics struct {

	scheduled prometheus.Counter
	executed  prometheus.Counter
	evicted   prometheus.Counter
	drains    prometheus.Counter
	length    prometheus.Gauge
	capacity  prometheus.Gauge
}

// NewWithMetrics creates a scheduler that publishes to its own Prometheus
// registry, returned alongside it.
func NewWithMetrics(name string) (*Scheduler, *prometheus.Registry) {
	// Use a separate registry for each metrics-enabled component to avoid conflicts
	registry := prometheus.NewRegistry()
	s := NewWithConfig(Config{Name: name})
	_ = s.EnableMetrics(metrics.Config{
		Enabled:  true,
		Registry: registry,
	})
	return s, registry
}

// EnableMetrics starts publishing to the registry described by config.
// Counters accumulated before enabling are published on the first flush.
func (s *Scheduler) EnableMetrics(config metrics.Config) error {
	if !config.Enabled {
		s.DisableMetrics()
		return nil
	}

	s.AttachMetrics(metrics.For(config))
	return nil
}

// AttachMetrics publishes to series already created in registry. Use it
// when several components share one metrics.Registry. Re-attaching to the
// registry last published to continues from what it already holds; a new
// registry receives the full counters on the next flush.
func (s *Scheduler) AttachMetrics(registry *metrics.Registry) {
	if registry != s.publishedTo {
		s.publishedTo = registry
		s.published = Stats{}
	}
	s.metrics = &schedulerMetrics{
		scheduled: registry.ClosuresScheduled.WithLabelValues(s.name),
		executed:  registry.ClosuresExecuted.WithLabelValues(s.name),
		evicted:   registry.ClosuresEvicted.WithLabelValues(s.name),
		drains:    registry.Drains.WithLabelValues(s.name),
		length:    registry.QueueLength.WithLabelValues(s.name),
		capacity:  registry.QueueCapacity.WithLabelValues(s.name),
	}
	s.Flush()
}

// DisableMetrics stops publishing.
func (s *Scheduler) DisableMetrics() {
	s.metrics = nil
}

// MetricsEnabled returns true if metrics are currently enabled.
func (s *Scheduler) MetricsEnabled() bool {
	return s.metrics != nil
}

// Flush publishes the counters accumulated since the previous flush. It is
// a no-op when metrics are disabled.
func (s *Scheduler) Flush() {
	m := s.metrics
	if m == nil {
		return
	}

	cur, last := s.stats, s.published
	m.scheduled.Add(float64(cur.Scheduled - last.Scheduled))
	m.executed.Add(float64(cur.Executed - last.Executed))
	m.evicted.Add(float64(cur.Evicted - last.Evicted))
	m.drains.Add(float64(cur.Drains - last.Drains))
	m.length.Set(float64(s.queue.Len()))
	m.capacity.Set(float64(s.queue.Cap()))
	s.published = cur
}
