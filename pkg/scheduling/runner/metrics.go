package runner

import (
	"context"
	stderrors "errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vnykmshr/tasklane/pkg/common/errors"
	"github.com/vnykmshr/tasklane/pkg/metrics"
	"github.com/vnykmshr/tasklane/pkg/scheduling/scheduler"
)

var _ metrics.Instrumentable = (*Runner)(nil)

type runnerMetrics struct {
	fired    *prometheus.CounterVec
	panics   prometheus.Counter
	duration prometheus.Observer
	jobs     prometheus.Gauge
}

// EnableMetrics starts recording job activity. The owned scheduler is
// enabled with the same config.
func (r *Runner) EnableMetrics(config metrics.Config) error {
	if !config.Enabled {
		r.DisableMetrics()
		return nil
	}

	registry := metrics.For(config)

	m := &runnerMetrics{
		fired:    registry.JobsFired,
		panics:   registry.JobPanics.WithLabelValues(r.name),
		duration: registry.DrainDuration.WithLabelValues(r.name),
		jobs:     registry.RunnerJobCount.WithLabelValues(r.name),
	}

	r.mu.Lock()
	m.jobs.Set(float64(len(r.order)))
	r.mu.Unlock()

	r.metrics.Store(m)

	return r.withScheduler(func(s *scheduler.Scheduler) {
		s.AttachMetrics(registry)
	})
}

// DisableMetrics stops recording job activity and stops the owned
// scheduler publishing.
func (r *Runner) DisableMetrics() {
	r.metrics.Store(nil)
	_ = r.withScheduler(func(s *scheduler.Scheduler) {
		s.DisableMetrics()
	})
}

// withScheduler runs job against the owned scheduler from a goroutine
// allowed to touch it: the runner's own once started, the caller's before
// Start or after the runner has stopped.
func (r *Runner) withScheduler(job Job) error {
	r.mu.Lock()
	started := r.started
	r.mu.Unlock()

	if started {
		err := r.Post(context.Background(), job)
		if !stderrors.Is(err, errors.ErrClosed) {
			return err
		}
		<-r.stopped
	}
	job(r.sched)
	return nil
}

// MetricsEnabled returns true if metrics are currently enabled.
func (r *Runner) MetricsEnabled() bool {
	return r.metrics.Load() != nil
}
