/*
Package scheduler runs closures stored inline in a fixed-capacity word queue.

A Scheduler owns exactly one workqueue.Queue and belongs to exactly one
execution context: create one per goroutine that schedules work and never
share it. Nothing on the scheduling or draining path allocates, locks, or
uses atomics.

Basic Usage:

	s := scheduler.New()

	greet := scheduler.Register1(s, func(n int64) {
		fmt.Println("hello", n)
	})

	greet.Schedule(1)
	greet.Schedule(2)

	s.Drive() // hello 1, hello 2

Registering Bodies:

A body is registered once per capture shape with Register0 through Register7.
Registration builds the trampoline that decodes the captured words and
returns a typed handle; Schedule on that handle copies the values into the
queue. Captured values must satisfy workqueue.Value: integer kinds,
uintptr, or unsafe.Pointer. Anything else, or more than seven captures,
does not compile.

	var countdown scheduler.Task1[int]
	countdown = scheduler.Register1(s, func(n int) {
		if n > 0 {
			countdown.Schedule(n - 1) // re-entrant scheduling is allowed
		}
	})

Overflow:

Schedule never blocks and never fails. When the queue is full, the oldest
closure runs immediately to make room before the new one is written. The
cost is that an old closure runs earlier than its natural turn.

Draining:

Drive runs closures in FIFO order until the queue is observed empty,
including closures scheduled by the closures it runs. A second Drive with
nothing scheduled in between does nothing.

Metrics:

EnableMetrics publishes the scheduler's counters to Prometheus. Publication
happens in Flush, which Drive calls after each drain, so the per-closure path
stays free of metric updates.
*/
package scheduler
