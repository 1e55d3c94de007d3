/*
Package scheduling provides closure scheduling primitives for Go applications.

  - scheduler: single-threaded scheduler that records closures in a fixed work queue
  - runner: dedicated goroutine that owns a scheduler and feeds it jobs

Scheduler:

The scheduler defers small closures without allocating:

	s := scheduler.New()
	add := scheduler.Register2(s, func(a, b int64) {
		fmt.Println(a + b)
	})
	add.Schedule(1, 2)
	s.Drive()

Runner:

The runner drains its scheduler after timed and posted jobs:

	r := runner.New(runner.Config{Scheduler: s})
	r.Every("flush", time.Second, func(s *scheduler.Scheduler) {
		add.Schedule(3, 4)
	})
	r.Start(ctx)
	defer func() { <-r.Stop() }()

The scheduler is not safe for concurrent use. Once a runner starts, touch
its scheduler only from jobs.
*/
package scheduling
