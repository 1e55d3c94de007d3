package workqueue

import (
	"unsafe"

	tlerrors "github.com/vnykmshr/tasklane/pkg/common/errors"
	"github.com/vnykmshr/tasklane/pkg/common/validation"
)

// DefaultCapacity is the number of closures a queue holds when no capacity
// is configured.
const DefaultCapacity = 32

// Queue is a fixed-capacity FIFO of closure records.
type Queue struct {
	buf  []Word
	refs []unsafe.Pointer
	fns  []Func

	capacity int
	head     int
	tail     int
	length   int // in closures, not words
}

// New creates a queue holding up to capacity closures. The backing array is
// allocated once and carries two maximum-size records of slack beyond the
// nominal capacity, which covers the words lost behind a wrap sentinel and
// keeps the tail strictly behind the head. It panics if capacity is not
// positive.
func New(capacity int) *Queue {
	if err := validation.ValidatePositive("workqueue", "capacity", capacity); err != nil {
		panic(err)
	}

	words := WordsFor(capacity)
	return &Queue{
		buf:      make([]Word, words),
		refs:     make([]unsafe.Pointer, words),
		capacity: capacity,
	}
}

// WordsFor returns the size of the backing array for a queue of capacity
// closures.
func WordsFor(capacity int) int {
	return (capacity + 2) * MaxRecordWords
}

// Register adds fn to the function table and returns its id. Registration
// is the only operation that may allocate; do it up front, not per closure.
func (q *Queue) Register(fn Func) FuncID {
	if fn == nil {
		panic(tlerrors.Invariant("workqueue.Register", "nil function"))
	}
	id := FuncID(len(q.fns))
	if id > MaxFuncID {
		panic(tlerrors.Invariant("workqueue.Register", "function table full (%d entries)", len(q.fns)))
	}
	q.fns = append(q.fns, fn)
	return id
}

// Funcs returns the number of registered functions.
func (q *Queue) Funcs() int {
	return len(q.fns)
}

// Len returns the number of queued closures.
func (q *Queue) Len() int {
	return q.length
}

// Cap returns the maximum number of queued closures.
func (q *Queue) Cap() int {
	return q.capacity
}

// Full reports whether the next enqueue would exceed capacity.
func (q *Queue) Full() bool {
	return q.length == q.capacity
}

// Words returns the size of the backing array in words.
func (q *Queue) Words() int {
	return len(q.buf)
}

// Head returns the word index of the oldest record (or of the wrap sentinel
// in front of it).
func (q *Queue) Head() int {
	return q.head
}

// Tail returns the word index where the next record will be written.
func (q *Queue) Tail() int {
	return q.tail
}

// EnqueueRegion reserves n contiguous words and returns them as a record
// whose header the caller must write at offset 0. The region starts at the
// tail if it fits strictly inside the array; otherwise the old tail is
// marked with the sentinel and the region starts at index 0.
func (q *Queue) EnqueueRegion(n int) Record {
	if n < 1 || n > MaxRecordWords {
		panic(tlerrors.Invariant("workqueue.EnqueueRegion", "record size %d outside [1, %d]", n, MaxRecordWords))
	}
	if q.length >= q.capacity {
		panic(tlerrors.Invariant("workqueue.EnqueueRegion", "queue full (len=%d, cap=%d)", q.length, q.capacity))
	}

	hd, tl := q.head, q.tail
	start, newTail := tl, tl+n
	wrap := newTail >= len(q.buf)
	if wrap {
		start, newTail = 0, n
	}
	if q.length > 0 && overruns(hd, tl, newTail, wrap) {
		panic(tlerrors.Invariant("workqueue.EnqueueRegion", "tail %d would overrun head %d", newTail, hd))
	}
	if wrap {
		q.buf[tl] = sentinel
	}

	q.length++
	q.tail = newTail
	return Record{
		words: q.buf[start:newTail:newTail],
		refs:  q.refs[start:newTail:newTail],
	}
}

// Enqueue reserves a record of n words for fn and writes its header. The
// caller fills offsets 1..n-1 with Put.
func (q *Queue) Enqueue(fn FuncID, n int) Record {
	r := q.EnqueueRegion(n)
	r.words[0] = MakeHeader(fn, n)
	return r
}

// DequeueAndInvoke pops the oldest record and calls its function with it.
// The head advances before the call, so the function may enqueue freely.
func (q *Queue) DequeueAndInvoke() {
	if q.length == 0 {
		panic(tlerrors.Invariant("workqueue.DequeueAndInvoke", "queue is empty"))
	}
	q.length--
	if q.head == q.tail {
		panic(tlerrors.Invariant("workqueue.DequeueAndInvoke", "head meets tail at %d with %d closures queued", q.head, q.length+1))
	}

	hd := q.head
	if q.buf[hd] == sentinel {
		hd = 0
	}
	fn, n := ReadHeader(q.buf[hd])
	if n < 1 || n > MaxRecordWords || fn >= FuncID(len(q.fns)) {
		panic(tlerrors.Invariant("workqueue.DequeueAndInvoke", "corrupt header %#x at %d", uint64(q.buf[hd]), hd))
	}
	q.head = hd + n

	q.fns[fn](Record{
		words: q.buf[hd : hd+n : hd+n],
		refs:  q.refs[hd : hd+n : hd+n],
	})
}

// Reset abandons every queued closure without running it. Registered
// functions are kept.
func (q *Queue) Reset() {
	clear(q.refs)
	q.head, q.tail, q.length = 0, 0, 0
}

// overruns reports whether writing a record that ends at newTail would
// clobber live records starting at hd. When the tail is behind the head it
// must stay strictly behind it and must not wrap again:
//
//	[x][ ][ ][ ][ ][x][x][x][x]
//	    ^tl         ^hd
func overruns(hd, tl, newTail int, wrap bool) bool {
	switch {
	case tl == hd:
		return true
	case tl < hd:
		return wrap || newTail >= hd
	default:
		return wrap && newTail >= hd
	}
}
