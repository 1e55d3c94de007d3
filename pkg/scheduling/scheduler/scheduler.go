package scheduler

import (
	"github.com/vnykmshr/tasklane/pkg/common/errors"
	"github.com/vnykmshr/tasklane/pkg/common/validation"
	"github.com/vnykmshr/tasklane/pkg/metrics"
	"github.com/vnykmshr/tasklane/pkg/workqueue"
)

// DefaultName labels schedulers created without a name.
const DefaultName = "default"

// Config holds scheduler configuration.
type Config struct {
	// Capacity is the maximum number of queued closures (default: 32).
	Capacity int

	// Name identifies the scheduler in metrics and logs (default: "default").
	Name string
}

// Stats counts scheduler activity since creation.
type Stats struct {
	Scheduled uint64 // closures written to the queue
	Executed  uint64 // closures invoked, by Drive or by eviction
	Evicted   uint64 // closures invoked early to make room
	Drains    uint64 // Drive calls that ran at least one closure
}

// Scheduler is a single-threaded closure scheduler. It is not safe for
// concurrent use.
type Scheduler struct {
	name    string
	queue   *workqueue.Queue
	stats   Stats
	metrics *schedulerMetrics

	// counters as of the last flush, and where they went
	published   Stats
	publishedTo *metrics.Registry
}

// New creates a scheduler with default configuration.
func New() *Scheduler {
	return NewWithConfig(Config{})
}

// NewWithConfig creates a scheduler with custom configuration. Zero or
// negative values fall back to the defaults.
func NewWithConfig(cfg Config) *Scheduler {
	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = workqueue.DefaultCapacity
	}

	name := cfg.Name
	if name == "" {
		name = DefaultName
	}

	return &Scheduler{
		name:  name,
		queue: workqueue.New(capacity),
	}
}

// NewWithConfigSafe validates cfg and returns an error instead of silently
// applying defaults to invalid values. A zero capacity still means default.
func NewWithConfigSafe(cfg Config) (*Scheduler, error) {
	if cfg.Capacity < 0 {
		return nil, errors.NewValidationError("scheduler", "capacity", cfg.Capacity, "cannot be negative").
			WithHint("use 0 for the default capacity of 32")
	}
	if err := validation.ValidateMaxLength("scheduler", "name", cfg.Name, 255); err != nil {
		return nil, err
	}
	return NewWithConfig(cfg), nil
}

// Name returns the scheduler's name.
func (s *Scheduler) Name() string {
	return s.name
}

// Len returns the number of queued closures.
func (s *Scheduler) Len() int {
	return s.queue.Len()
}

// Cap returns the maximum number of queued closures.
func (s *Scheduler) Cap() int {
	return s.queue.Cap()
}

// Stats returns a copy of the scheduler's counters.
func (s *Scheduler) Stats() Stats {
	return s.stats
}

// Drive runs queued closures in FIFO order until the queue is empty,
// including closures scheduled while draining. It returns the number of
// closures run.
func (s *Scheduler) Drive() int {
	ran := 0
	for s.queue.Len() > 0 {
		s.runOne()
		ran++
	}
	if ran > 0 {
		s.stats.Drains++
		if s.metrics != nil {
			s.Flush()
		}
	}
	return ran
}

// RunOne runs the oldest queued closure, if any, and reports whether one
// ran. It lets a host interleave closures with its own work.
func (s *Scheduler) RunOne() bool {
	if s.queue.Len() == 0 {
		return false
	}
	s.runOne()
	return true
}

// Reset abandons every queued closure without running it. Registered
// bodies stay valid.
func (s *Scheduler) Reset() {
	s.queue.Reset()
}

// register adds a trampoline to the queue's function table.
func (s *Scheduler) register(fn workqueue.Func) workqueue.FuncID {
	return s.queue.Register(fn)
}

// reserve makes room if needed and returns a record of n words with its
// header written. The fullness check repeats because the evicted closure
// may itself schedule work.
func (s *Scheduler) reserve(fn workqueue.FuncID, n int) workqueue.Record {
	for s.queue.Full() {
		s.stats.Evicted++
		s.runOne()
	}
	s.stats.Scheduled++
	return s.queue.Enqueue(fn, n)
}

func (s *Scheduler) runOne() {
	s.stats.Executed++
	s.queue.DequeueAndInvoke()
}
