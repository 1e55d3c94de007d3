/*
Package tasklane provides an allocation-free, single-threaded closure
scheduler for Go programs.

Closures are recorded as a header word plus one word per captured value in
a fixed circular buffer. Scheduling never allocates and never blocks: when
the queue is full, the oldest closure runs immediately to make room.

Work Queue (pkg/workqueue):
  - word and header codecs
  - circular word buffer with sentinel wrap

Scheduling (pkg/scheduling):
  - scheduler: typed closure capture, eviction and draining
  - runner: a goroutine that owns a scheduler and feeds it timed jobs

Example usage:

	import "github.com/vnykmshr/tasklane/pkg/scheduling/scheduler"

	s := scheduler.New()
	greet := scheduler.Register1(s, func(n int64) {
		fmt.Println("hello", n)
	})

	greet.Schedule(1)
	greet.Schedule(2)
	s.Drive()

The cmd/tasklane binary hosts a runner configured from a TOML file.
*/
package tasklane
