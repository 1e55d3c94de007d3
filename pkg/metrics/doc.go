// Package metrics provides Prometheus instrumentation for tasklane components.
//
// # Overview
//
// Schedulers keep plain counters while they run closures; nothing on the
// scheduling path touches Prometheus. When metrics are enabled, a scheduler
// publishes the counters' deltas in Flush, which Drive calls after every
// drain. Runners record their job activity around each drain.
//
// # Quick Start
//
//	s := scheduler.New()
//	if err := s.EnableMetrics(metrics.DefaultConfig()); err != nil {
//		log.Fatal(err)
//	}
//
// Then expose metrics via HTTP:
//
//	http.Handle("/metrics", promhttp.Handler())
//	log.Fatal(http.ListenAndServe(":9090", nil))
//
// # Custom Registry
//
// Use a custom Prometheus registry for isolation:
//
//	registry := prometheus.NewRegistry()
//	config := metrics.Config{
//		Enabled:  true,
//		Registry: registry,
//	}
//	s.EnableMetrics(config)
//
// # Available Metrics
//
// ## Scheduler Metrics
//
//   - tasklane_scheduler_closures_scheduled_total: Closures written to the work queue
//   - tasklane_scheduler_closures_executed_total: Closures invoked
//   - tasklane_scheduler_closures_evicted_total: Closures run early because the queue was full
//   - tasklane_scheduler_drains_total: Drains that ran at least one closure
//   - tasklane_queue_length: Closures queued at the last flush
//   - tasklane_queue_capacity: Maximum number of queued closures
//
// ## Runner Metrics
//
//   - tasklane_runner_jobs_fired_total: Timed jobs fired
//   - tasklane_runner_panics_total: Panics recovered by the runner
//   - tasklane_runner_drain_duration_seconds: Time spent running a job and draining
//   - tasklane_runner_jobs: Timed jobs registered
//
// # Labels
//
//   - scheduler_name: Name of the scheduler instance
//   - runner_name: Name of the runner instance
//   - job_id: Identifier of a timed job
//
// # Runtime Control
//
// Components implementing the Instrumentable interface support runtime control:
//
//	s.DisableMetrics()           // Stop publishing
//	s.EnableMetrics(config)      // Re-enable with new config
//	enabled := s.MetricsEnabled() // Check current state
package metrics
