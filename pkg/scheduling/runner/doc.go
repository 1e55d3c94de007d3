/*
Package runner hosts a scheduler on a dedicated goroutine.

A Scheduler is single-threaded and never blocks, so something has to own
it and decide when to drain it. A Runner does that: it locks one goroutine
to its OS thread, runs jobs on it, and drains the scheduler after every
job. Jobs come from three places:

  - OnStart jobs, run once when the runner starts
  - timed jobs registered with Every or Cron
  - jobs handed over from other goroutines with Post

Basic usage:

	r := runner.New(runner.Config{Name: "io"})

	var tick scheduler.Task1[int64]
	r.OnStart(func(s *scheduler.Scheduler) {
		tick = scheduler.Register1(s, func(n int64) { fmt.Println(n) })
	})
	r.Every("heartbeat", time.Second, func(s *scheduler.Scheduler) {
		tick.Schedule(time.Now().Unix())
	})
	r.Cron("nightly", "0 3 * * *", compact)

	if err := r.Start(ctx); err != nil {
		log.Fatal(err)
	}
	defer func() { <-r.Stop() }()

Cron expressions use the robfig/cron parser with an optional leading
seconds field and the usual descriptors (@hourly, @daily, @every 5m).

Panics raised by jobs or closures are recovered and logged; the closure
that panicked is dropped and the loop continues. On Stop, or when the
start context ends, pending posted jobs and queued closures run before
the channel returned by Stop closes.
*/
package runner
