package runner

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/tliron/commonlog"

	"github.com/vnykmshr/tasklane/pkg/common/errors"
	"github.com/vnykmshr/tasklane/pkg/common/validation"
	"github.com/vnykmshr/tasklane/pkg/scheduling/scheduler"
)

// DefaultInbox is the number of posted jobs buffered before Post blocks.
const DefaultInbox = 16

// idle is how long the loop sleeps when no timed job is registered.
const idle = time.Hour

// Job runs on the runner's goroutine with exclusive access to its scheduler.
type Job func(s *scheduler.Scheduler)

// JobInfo describes a registered timed job.
type JobInfo struct {
	ID       string
	Schedule string    // cron expression, or "@every <interval>"
	Next     time.Time // zero until the runner starts
	Fired    uint64
}

// Stats counts runner activity.
type Stats struct {
	Fired  uint64 // timed jobs fired
	Posted uint64 // jobs run through Post
	Panics uint64 // panics recovered from jobs and closures
}

// Config holds runner configuration.
type Config struct {
	// Name identifies the runner in logs and metrics (default: the scheduler's name).
	Name string

	// Scheduler is the scheduler owned by the runner (default: scheduler.New()).
	Scheduler *scheduler.Scheduler

	// Location is the time zone for cron expressions (default: time.Local).
	Location *time.Location

	// Logger receives lifecycle events and recovered panics
	// (default: commonlog.GetLogger("tasklane.runner")).
	Logger commonlog.Logger

	// Inbox is the Post buffer size (default: 16).
	Inbox int
}

type timedJob struct {
	id       string
	expr     string
	schedule cron.Schedule
	job      Job
	next     time.Time
	fired    uint64
}

// Runner confines a scheduler to one goroutine, locked to its OS thread,
// and feeds it from timed and posted jobs.
type Runner struct {
	name     string
	sched    *scheduler.Scheduler
	location *time.Location
	log      commonlog.Logger
	parser   cron.Parser

	mu      sync.Mutex
	jobs    map[string]*timedJob
	order   []*timedJob
	onStart []Job
	started bool
	closing bool

	posts   chan Job
	quit    chan struct{}
	stopped chan struct{}

	fired   atomic.Uint64
	posted  atomic.Uint64
	panics  atomic.Uint64
	metrics atomic.Pointer[runnerMetrics]
}

// New creates a runner. Zero values in cfg fall back to the defaults.
func New(cfg Config) *Runner {
	sched := cfg.Scheduler
	if sched == nil {
		sched = scheduler.New()
	}

	name := cfg.Name
	if name == "" {
		name = sched.Name()
	}

	location := cfg.Location
	if location == nil {
		location = time.Local
	}

	log := cfg.Logger
	if log == nil {
		log = commonlog.GetLogger("tasklane.runner")
	}

	inbox := cfg.Inbox
	if inbox <= 0 {
		inbox = DefaultInbox
	}

	return &Runner{
		name:     name,
		sched:    sched,
		location: location,
		log:      log,
		parser:   cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		jobs:     make(map[string]*timedJob),
		posts:    make(chan Job, inbox),
		quit:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Name returns the runner's name.
func (r *Runner) Name() string {
	return r.name
}

// Scheduler returns the owned scheduler. It must only be used from jobs
// while the runner is running.
func (r *Runner) Scheduler() *scheduler.Scheduler {
	return r.sched
}

// Every registers job to fire once per interval after Start.
func (r *Runner) Every(id string, interval time.Duration, job Job) error {
	if err := validation.ValidatePositiveDuration("runner", "interval", interval); err != nil {
		return err
	}
	return r.add(id, fmt.Sprintf("@every %s", interval), every(interval), job)
}

// Cron registers job to fire on a cron expression. Expressions take five
// fields, an optional leading seconds field, or a descriptor such as
// "@hourly".
func (r *Runner) Cron(id, expr string, job Job) error {
	if err := validation.ValidateNotEmpty("runner", "cron", expr); err != nil {
		return err
	}
	schedule, err := r.parser.Parse(expr)
	if err != nil {
		return errors.NewValidationError("runner", "cron", expr, err.Error()).
			WithHint("use \"min hour dom month dow\", optionally preceded by seconds")
	}
	return r.add(id, expr, schedule, job)
}

// OnStart registers job to run once, before any timed job fires.
func (r *Runner) OnStart(job Job) error {
	if job == nil {
		return validation.ValidateNotNil("runner", "job", nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return fmt.Errorf("runner %q: cannot add start job: %w", r.name, errors.ErrAlreadyRunning)
	}
	r.onStart = append(r.onStart, job)
	return nil
}

func (r *Runner) add(id, expr string, schedule cron.Schedule, job Job) error {
	if err := validation.ValidateNotEmpty("runner", "id", id); err != nil {
		return err
	}
	if err := validation.ValidateMaxLength("runner", "id", id, 255); err != nil {
		return err
	}
	if job == nil {
		return validation.ValidateNotNil("runner", "job", nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return fmt.Errorf("runner %q: cannot add job %q: %w", r.name, id, errors.ErrAlreadyRunning)
	}
	if _, exists := r.jobs[id]; exists {
		return fmt.Errorf("job %q: %w", id, errors.ErrDuplicateID)
	}

	tj := &timedJob{id: id, expr: expr, schedule: schedule, job: job}
	r.jobs[id] = tj
	r.order = append(r.order, tj)
	return nil
}

// List returns the registered timed jobs ordered by next firing time.
func (r *Runner) List() []JobInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	infos := make([]JobInfo, 0, len(r.order))
	for _, tj := range r.order {
		infos = append(infos, JobInfo{ID: tj.id, Schedule: tj.expr, Next: tj.next, Fired: tj.fired})
	}

	sort.SliceStable(infos, func(i, j int) bool {
		return infos[i].Next.Before(infos[j].Next)
	})
	return infos
}

// Stats returns a snapshot of the runner's counters.
func (r *Runner) Stats() Stats {
	return Stats{
		Fired:  r.fired.Load(),
		Posted: r.posted.Load(),
		Panics: r.panics.Load(),
	}
}

// Start launches the runner's goroutine. The runner stops when ctx is
// canceled or Stop is called.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closing {
		return fmt.Errorf("runner %q: %w", r.name, errors.ErrClosed)
	}
	if r.started {
		return fmt.Errorf("runner %q: %w", r.name, errors.ErrAlreadyRunning)
	}
	r.started = true

	now := time.Now().In(r.location)
	for _, tj := range r.order {
		tj.next = tj.schedule.Next(now)
	}
	if m := r.metrics.Load(); m != nil {
		m.jobs.Set(float64(len(r.order)))
	}

	go r.run(ctx)
	return nil
}

// Stop asks the runner to exit. The returned channel closes once queued
// closures and posted jobs have run and the goroutine has returned.
func (r *Runner) Stop() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.closing {
		r.closing = true
		close(r.quit)
		if !r.started {
			r.started = true
			close(r.stopped)
		}
	}
	return r.stopped
}

// Done returns a channel closed when the runner has stopped.
func (r *Runner) Done() <-chan struct{} {
	return r.stopped
}

// Post hands job to the runner's goroutine. Jobs posted before Start run
// once it starts.
func (r *Runner) Post(ctx context.Context, job Job) error {
	if job == nil {
		return validation.ValidateNotNil("runner", "job", nil)
	}

	select {
	case <-r.quit:
		return fmt.Errorf("runner %q: %w", r.name, errors.ErrClosed)
	default:
	}

	select {
	case r.posts <- job:
		return nil
	case <-r.quit:
		return fmt.Errorf("runner %q: %w", r.name, errors.ErrClosed)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) run(ctx context.Context) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(r.stopped)

	r.log.Infof("runner %s started with %d timed jobs", r.name, len(r.order))

	for _, job := range r.onStart {
		r.invoke("start", job)
	}

	timer := time.NewTimer(r.untilNext(time.Now()))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			r.shutdown(ctx.Err())
			return
		case <-r.quit:
			r.shutdown(nil)
			return
		case job := <-r.posts:
			r.posted.Add(1)
			r.invoke("post", job)
		case now := <-timer.C:
			r.fireDue(now)
			timer.Reset(r.untilNext(time.Now()))
		}
	}
}

// fireDue runs every timed job whose firing time has passed, in
// registration order.
func (r *Runner) fireDue(now time.Time) {
	now = now.In(r.location)
	for _, tj := range r.due(now) {
		r.fired.Add(1)
		if m := r.metrics.Load(); m != nil {
			m.fired.WithLabelValues(r.name, tj.id).Inc()
		}
		r.invoke(tj.id, tj.job)
	}
}

func (r *Runner) due(now time.Time) []*timedJob {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ready []*timedJob
	for _, tj := range r.order {
		if now.Before(tj.next) {
			continue
		}
		ready = append(ready, tj)
		tj.fired++
		tj.next = tj.schedule.Next(now)
	}
	return ready
}

func (r *Runner) untilNext(now time.Time) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	wait := idle
	for _, tj := range r.order {
		if d := tj.next.Sub(now); d < wait {
			wait = d
		}
	}
	if wait < 0 {
		wait = 0
	}
	return wait
}

// invoke runs job and then drains the scheduler, recovering from panics in
// either.
func (r *Runner) invoke(id string, job Job) {
	start := time.Now()

	r.safely(id, func() { job(r.sched) })
	r.drain(id)

	if m := r.metrics.Load(); m != nil {
		m.duration.Observe(time.Since(start).Seconds())
	}
}

// drain runs queued closures until none remain. A closure that panics has
// already left the queue, so every pass makes progress.
func (r *Runner) drain(id string) {
	for r.sched.Len() > 0 {
		r.safely(id, func() { r.sched.Drive() })
	}
}

func (r *Runner) safely(id string, fn func()) {
	defer func() {
		if p := recover(); p != nil {
			r.panics.Add(1)
			if m := r.metrics.Load(); m != nil {
				m.panics.Inc()
			}
			r.log.Errorf("runner %s: job %s panicked: %v", r.name, id, p)
		}
	}()
	fn()
}

func (r *Runner) shutdown(cause error) {
	r.mu.Lock()
	if !r.closing {
		r.closing = true
		close(r.quit)
	}
	r.mu.Unlock()

	for drained := false; !drained; {
		select {
		case job := <-r.posts:
			r.posted.Add(1)
			r.invoke("post", job)
		default:
			drained = true
		}
	}
	r.drain("stop")

	if cause != nil {
		r.log.Infof("runner %s stopped: %v", r.name, cause)
		return
	}
	r.log.Infof("runner %s stopped", r.name)
}

// every is a fixed-delay schedule. Unlike cron.Every it keeps sub-second
// precision.
type every time.Duration

func (e every) Next(t time.Time) time.Time {
	return t.Add(time.Duration(e))
}

var _ cron.Schedule = every(0)
