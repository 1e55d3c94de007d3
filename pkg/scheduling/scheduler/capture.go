package scheduler

import (
	"github.com/vnykmshr/tasklane/pkg/common/errors"
	"github.com/vnykmshr/tasklane/pkg/workqueue"
)

// MaxCaptures is the largest number of values a registered body may take.
const MaxCaptures = workqueue.MaxCaptures

func mustBody(op string, isNil bool) {
	if isNil {
		panic(errors.Invariant(op, "nil body"))
	}
}

// Task0 is a registered body that captures nothing.
type Task0 struct {
	s  *Scheduler
	id workqueue.FuncID
}

// Register0 registers body for zero captured values.
func Register0(s *Scheduler, body func()) Task0 {
	mustBody("scheduler.Register0", body == nil)
	id := s.register(func(r workqueue.Record) {
		r.Expect(1)
		body()
	})
	return Task0{s: s, id: id}
}

// Schedule queues the body, evicting the oldest closure if the queue is full.
func (t Task0) Schedule() {
	t.s.reserve(t.id, 1)
}

// Task1 is a registered body that captures one value.
type Task1[A workqueue.Value] struct {
	s  *Scheduler
	id workqueue.FuncID
}

// Register1 registers body and returns a handle that schedules it with one
// captured value. The trampoline reads the value back from offset 1 of the
// record; offset 0 holds the header.
func Register1[A workqueue.Value](s *Scheduler, body func(A)) Task1[A] {
	mustBody("scheduler.Register1", body == nil)
	id := s.register(func(r workqueue.Record) {
		r.Expect(2)
		a := workqueue.Arg[A](r, 1)
		body(a)
	})
	return Task1[A]{s: s, id: id}
}

// Schedule queues the body with the given values.
func (t Task1[A]) Schedule(a A) {
	r := t.s.reserve(t.id, 2)
	workqueue.Put(r, 1, a)
}

// Task2 is a registered body that captures two values.
type Task2[A, B workqueue.Value] struct {
	s  *Scheduler
	id workqueue.FuncID
}

// Register2 registers body for two captured values.
func Register2[A, B workqueue.Value](s *Scheduler, body func(A, B)) Task2[A, B] {
	mustBody("scheduler.Register2", body == nil)
	id := s.register(func(r workqueue.Record) {
		r.Expect(3)
		a := workqueue.Arg[A](r, 1)
		b := workqueue.Arg[B](r, 2)
		body(a, b)
	})
	return Task2[A, B]{s: s, id: id}
}

// Schedule queues the body with the given values.
func (t Task2[A, B]) Schedule(a A, b B) {
	r := t.s.reserve(t.id, 3)
	workqueue.Put(r, 1, a)
	workqueue.Put(r, 2, b)
}

// Task3 is a registered body that captures three values.
type Task3[A, B, C workqueue.Value] struct {
	s  *Scheduler
	id workqueue.FuncID
}

// Register3 registers body for three captured values.
func Register3[A, B, C workqueue.Value](s *Scheduler, body func(A, B, C)) Task3[A, B, C] {
	mustBody("scheduler.Register3", body == nil)
	id := s.register(func(r workqueue.Record) {
		r.Expect(4)
		a := workqueue.Arg[A](r, 1)
		b := workqueue.Arg[B](r, 2)
		c := workqueue.Arg[C](r, 3)
		body(a, b, c)
	})
	return Task3[A, B, C]{s: s, id: id}
}

// Schedule queues the body with the given values.
func (t Task3[A, B, C]) Schedule(a A, b B, c C) {
	r := t.s.reserve(t.id, 4)
	workqueue.Put(r, 1, a)
	workqueue.Put(r, 2, b)
	workqueue.Put(r, 3, c)
}

// Task4 is a registered body that captures four values.
type Task4[A, B, C, D workqueue.Value] struct {
	s  *Scheduler
	id workqueue.FuncID
}

// Register4 registers body for four captured values.
func Register4[A, B, C, D workqueue.Value](s *Scheduler, body func(A, B, C, D)) Task4[A, B, C, D] {
	mustBody("scheduler.Register4", body == nil)
	id := s.register(func(r workqueue.Record) {
		r.Expect(5)
		a := workqueue.Arg[A](r, 1)
		b := workqueue.Arg[B](r, 2)
		c := workqueue.Arg[C](r, 3)
		d := workqueue.Arg[D](r, 4)
		body(a, b, c, d)
	})
	return Task4[A, B, C, D]{s: s, id: id}
}

// Schedule queues the body with the given values.
func (t Task4[A, B, C, D]) Schedule(a A, b B, c C, d D) {
	r := t.s.reserve(t.id, 5)
	workqueue.Put(r, 1, a)
	workqueue.Put(r, 2, b)
	workqueue.Put(r, 3, c)
	workqueue.Put(r, 4, d)
}

// Task5 is a registered body that captures five values.
type Task5[A, B, C, D, E workqueue.Value] struct {
	s  *Scheduler
	id workqueue.FuncID
}

// Register5 registers body for five captured values.
func Register5[A, B, C, D, E workqueue.Value](s *Scheduler, body func(A, B, C, D, E)) Task5[A, B, C, D, E] {
	mustBody("scheduler.Register5", body == nil)
	id := s.register(func(r workqueue.Record) {
		r.Expect(6)
		a := workqueue.Arg[A](r, 1)
		b := workqueue.Arg[B](r, 2)
		c := workqueue.Arg[C](r, 3)
		d := workqueue.Arg[D](r, 4)
		e := workqueue.Arg[E](r, 5)
		body(a, b, c, d, e)
	})
	return Task5[A, B, C, D, E]{s: s, id: id}
}

// Schedule queues the body with the given values.
func (t Task5[A, B, C, D, E]) Schedule(a A, b B, c C, d D, e E) {
	r := t.s.reserve(t.id, 6)
	workqueue.Put(r, 1, a)
	workqueue.Put(r, 2, b)
	workqueue.Put(r, 3, c)
	workqueue.Put(r, 4, d)
	workqueue.Put(r, 5, e)
}

// Task6 is a registered body that captures six values.
type Task6[A, B, C, D, E, F workqueue.Value] struct {
	s  *Scheduler
	id workqueue.FuncID
}

// Register6 registers body for six captured values.
func Register6[A, B, C, D, E, F workqueue.Value](s *Scheduler, body func(A, B, C, D, E, F)) Task6[A, B, C, D, E, F] {
	mustBody("scheduler.Register6", body == nil)
	id := s.register(func(r workqueue.Record) {
		r.Expect(7)
		a := workqueue.Arg[A](r, 1)
		b := workqueue.Arg[B](r, 2)
		c := workqueue.Arg[C](r, 3)
		d := workqueue.Arg[D](r, 4)
		e := workqueue.Arg[E](r, 5)
		f := workqueue.Arg[F](r, 6)
		body(a, b, c, d, e, f)
	})
	return Task6[A, B, C, D, E, F]{s: s, id: id}
}

// Schedule queues the body with the given values.
func (t Task6[A, B, C, D, E, F]) Schedule(a A, b B, c C, d D, e E, f F) {
	r := t.s.reserve(t.id, 7)
	workqueue.Put(r, 1, a)
	workqueue.Put(r, 2, b)
	workqueue.Put(r, 3, c)
	workqueue.Put(r, 4, d)
	workqueue.Put(r, 5, e)
	workqueue.Put(r, 6, f)
}

// Task7 is a registered body that captures seven values.
type Task7[A, B, C, D, E, F, G workqueue.Value] struct {
	s  *Scheduler
	id workqueue.FuncID
}

// Register7 registers body for seven captured values.
func Register7[A, B, C, D, E, F, G workqueue.Value](s *Scheduler, body func(A, B, C, D, E, F, G)) Task7[A, B, C, D, E, F, G] {
	mustBody("scheduler.Register7", body == nil)
	id := s.register(func(r workqueue.Record) {
		r.Expect(8)
		a := workqueue.Arg[A](r, 1)
		b := workqueue.Arg[B](r, 2)
		c := workqueue.Arg[C](r, 3)
		d := workqueue.Arg[D](r, 4)
		e := workqueue.Arg[E](r, 5)
		f := workqueue.Arg[F](r, 6)
		g := workqueue.Arg[G](r, 7)
		body(a, b, c, d, e, f, g)
	})
	return Task7[A, B, C, D, E, F, G]{s: s, id: id}
}

// Schedule queues the body with the given values.
func (t Task7[A, B, C, D, E, F, G]) Schedule(a A, b B, c C, d D, e E, f F, g G) {
	r := t.s.reserve(t.id, 8)
	workqueue.Put(r, 1, a)
	workqueue.Put(r, 2, b)
	workqueue.Put(r, 3, c)
	workqueue.Put(r, 4, d)
	workqueue.Put(r, 5, e)
	workqueue.Put(r, 6, f)
	workqueue.Put(r, 7, g)
}
