package workqueue

import (
	"unsafe"

	tlerrors "github.com/vnykmshr/tasklane/pkg/common/errors"
)

// Func is a type-erased trampoline. It receives the whole record, header
// included, and is responsible for skipping the header itself.
type Func func(r Record)

// Record is a view of one closure record inside a queue's storage. It is
// only valid until the next enqueue on the same queue.
type Record struct {
	words []Word
	refs  []unsafe.Pointer
}

// Len returns the record size in words, header included.
func (r Record) Len() int {
	return len(r.words)
}

// Header returns the header word.
func (r Record) Header() Word {
	return r.words[0]
}

// Word returns the raw word at offset i.
func (r Record) Word(i int) Word {
	return r.words[i]
}

// Expect panics unless the record is exactly n words long. Trampolines use
// it to check that the size reserved at schedule time is the size they read.
func (r Record) Expect(n int) {
	if len(r.words) != n {
		panic(tlerrors.Invariant("workqueue.Record", "trampoline reads %d words, record holds %d", n, len(r.words)))
	}
}

// Put stores v at offset i. Pointer values are also kept in the queue's
// shadow array so the garbage collector sees them while they are queued.
func Put[T Value](r Record, i int, v T) {
	r.words[i] = ToWord(v)
	if IsPointer[T]() {
		r.refs[i] = pointerOf(v)
	}
}

// Arg reads the value at offset i back as T. Pointer values are taken from
// the shadow array, which is cleared so the queue stops retaining them.
func Arg[T Value](r Record, i int) T {
	if IsPointer[T]() {
		p := r.refs[i]
		r.refs[i] = nil
		return valueOf[T](p)
	}
	return FromWord[T](r.words[i])
}
