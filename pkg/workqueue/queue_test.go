package workqueue

import (
	"math/rand"
	"runtime"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tlerrors "github.com/vnykmshr/tasklane/pkg/common/errors"
)

// expectInvariant fails the test unless fn panics with an InvariantError.
func expectInvariant(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		require.NotNil(t, r, "expected panic")
		err, ok := r.(error)
		require.True(t, ok, "panic value %v is not an error", r)
		assert.True(t, tlerrors.IsInvariantError(err), "got %v", err)
	}()
	fn()
}

func TestNew(t *testing.T) {
	q := New(DefaultCapacity)

	assert.Equal(t, 32, q.Cap())
	assert.Equal(t, 0, q.Len())
	assert.Equal(t, (32+2)*8, q.Words())
	assert.False(t, q.Full())
}

func TestNew_InvalidCapacity(t *testing.T) {
	for _, capacity := range []int{0, -1} {
		assert.Panics(t, func() { New(capacity) }, "capacity %d", capacity)
	}
}

func TestQueue_FIFO(t *testing.T) {
	q := New(8)
	var got []Word
	id := q.Register(func(r Record) {
		got = append(got, r.Word(1))
	})

	for i := 0; i < 8; i++ {
		r := q.Enqueue(id, 2)
		Put(r, 1, int64(i))
	}
	assert.True(t, q.Full())

	for q.Len() > 0 {
		q.DequeueAndInvoke()
	}

	assert.Equal(t, []Word{0, 1, 2, 3, 4, 5, 6, 7}, got)
	assert.Equal(t, q.Head(), q.Tail())
}

func TestQueue_RecordIncludesHeader(t *testing.T) {
	q := New(4)
	var seen Record
	id := q.Register(func(r Record) { seen = r })
	q.Register(func(Record) {})
	other := q.Register(func(r Record) { seen = r })

	q.Enqueue(id, 1)
	q.DequeueAndInvoke()
	gotID, n := ReadHeader(seen.Header())
	assert.Equal(t, id, gotID)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, seen.Len())

	r := q.Enqueue(other, 4)
	Put(r, 1, uint8(1))
	Put(r, 2, int16(-2))
	Put(r, 3, uint32(3))
	q.DequeueAndInvoke()
	gotID, n = ReadHeader(seen.Header())
	assert.Equal(t, other, gotID)
	assert.Equal(t, 4, n)
	assert.Equal(t, []Word{1, -2, 3}, []Word{seen.Word(1), seen.Word(2), seen.Word(3)})
}

func TestQueue_WrapWritesSentinel(t *testing.T) {
	// Capacity 2 gives a 32-word array; the fourth 8-word record does not fit
	// strictly after index 24 and must start at 0.
	q := New(2)
	var got []int64
	id := q.Register(func(r Record) {
		r.Expect(MaxRecordWords)
		got = append(got, Arg[int64](r, 1))
	})

	for i := 0; i < 3; i++ {
		r := q.Enqueue(id, MaxRecordWords)
		Put(r, 1, int64(i))
		q.DequeueAndInvoke()
	}
	require.Equal(t, 24, q.Tail())

	r := q.Enqueue(id, MaxRecordWords)
	Put(r, 1, int64(3))

	assert.Equal(t, MaxRecordWords, q.Tail(), "tail wraps to the end of the new record")
	assert.Equal(t, sentinel, q.buf[24], "old tail is marked")
	assert.Equal(t, 24, q.Head(), "head still points at the sentinel")

	q.DequeueAndInvoke()
	assert.Equal(t, []int64{0, 1, 2, 3}, got)
	assert.Equal(t, MaxRecordWords, q.Head())
}

func TestQueue_NoSplit(t *testing.T) {
	for _, capacity := range []int{1, 2, 3, 7, 32} {
		q := New(capacity)
		rng := rand.New(rand.NewSource(int64(capacity)))

		type want struct {
			n    int
			base int64
		}
		var pending []want
		var next int64
		ran := 0

		id := q.Register(func(r Record) {
			require.NotEmpty(t, pending)
			w := pending[0]
			pending = pending[1:]

			require.Equal(t, w.n, r.Len(), "record must come back whole")
			for i := 1; i < w.n; i++ {
				require.Equal(t, w.base+int64(i), Arg[int64](r, i), "word %d", i)
			}
			ran++
		})

		for step := 0; step < 5000; step++ {
			if q.Full() || (q.Len() > 0 && rng.Intn(3) == 0) {
				q.DequeueAndInvoke()
				continue
			}
			n := 1 + rng.Intn(MaxRecordWords)
			r := q.Enqueue(id, n)
			for i := 1; i < n; i++ {
				Put(r, i, next+int64(i))
			}
			pending = append(pending, want{n: n, base: next})
			next += int64(n)

			require.Less(t, q.Tail(), q.Words(), "tail stays inside the array")
		}
		for q.Len() > 0 {
			q.DequeueAndInvoke()
		}
		assert.Empty(t, pending, "capacity %d", capacity)
		assert.Positive(t, ran)
	}
}

func TestQueue_ReentrantEnqueue(t *testing.T) {
	q := New(4)
	var got []int64
	var id FuncID
	id = q.Register(func(r Record) {
		v := Arg[int64](r, 1)
		got = append(got, v)
		if v < 10 {
			next := q.Enqueue(id, 2)
			Put(next, 1, v+1)
		}
	})

	first := q.Enqueue(id, 2)
	Put(first, 1, int64(0))
	for q.Len() > 0 {
		q.DequeueAndInvoke()
	}

	assert.Equal(t, []int64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, got)
}

func TestQueue_PointerShadow(t *testing.T) {
	q := New(2)
	var got *int
	id := q.Register(func(r Record) {
		got = (*int)(Arg[unsafe.Pointer](r, 1))
	})

	x := new(int)
	*x = 99
	r := q.Enqueue(id, 2)
	Put(r, 1, unsafe.Pointer(x))
	start := q.Tail() - 2

	assert.Equal(t, unsafe.Pointer(x), q.refs[start+1], "queued pointers are retained")
	assert.Equal(t, ToWord(unsafe.Pointer(x)), q.buf[start+1], "word keeps the bit pattern")
	x = nil
	runtime.GC()

	q.DequeueAndInvoke()
	require.NotNil(t, got)
	assert.Equal(t, 99, *got)
	assert.Nil(t, q.refs[start+1], "reading the argument releases it")
}

func TestQueue_Invariants(t *testing.T) {
	t.Run("dequeue empty", func(t *testing.T) {
		q := New(1)
		expectInvariant(t, q.DequeueAndInvoke)
	})

	t.Run("record too large", func(t *testing.T) {
		q := New(1)
		expectInvariant(t, func() { q.EnqueueRegion(MaxRecordWords + 1) })
	})

	t.Run("empty record", func(t *testing.T) {
		q := New(1)
		expectInvariant(t, func() { q.EnqueueRegion(0) })
	})

	t.Run("enqueue when full", func(t *testing.T) {
		q := New(1)
		id := q.Register(func(Record) {})
		q.Enqueue(id, 1)
		expectInvariant(t, func() { q.Enqueue(id, 1) })
	})

	t.Run("unknown function", func(t *testing.T) {
		q := New(1)
		q.Enqueue(FuncID(3), 1)
		expectInvariant(t, q.DequeueAndInvoke)
	})

	t.Run("nil function", func(t *testing.T) {
		q := New(1)
		expectInvariant(t, func() { q.Register(nil) })
	})

	t.Run("trampoline size mismatch", func(t *testing.T) {
		q := New(1)
		id := q.Register(func(r Record) { r.Expect(3) })
		q.Enqueue(id, 2)
		expectInvariant(t, q.DequeueAndInvoke)
	})
}

func TestOverruns(t *testing.T) {
	tests := []struct {
		name              string
		hd, tl, newTail   int
		wrap, wantOverrun bool
	}{
		{"ahead, no wrap", 0, 8, 16, false, false},
		{"ahead, wrap clear of head", 24, 40, 8, true, false},
		{"ahead, wrap onto head", 8, 40, 8, true, true},
		{"behind, clear", 24, 8, 16, false, false},
		{"behind, touching head", 24, 16, 24, false, true},
		{"behind, wrapping again", 24, 16, 8, true, true},
		{"ambiguous", 8, 8, 16, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantOverrun, overruns(tt.hd, tt.tl, tt.newTail, tt.wrap))
		})
	}
}

func TestQueue_Reset(t *testing.T) {
	q := New(2)
	calls := 0
	id := q.Register(func(Record) { calls++ })
	r := q.Enqueue(id, 2)
	Put(r, 1, unsafe.Pointer(new(int)))

	q.Reset()

	assert.Equal(t, 0, q.Len())
	assert.Equal(t, 0, q.Head())
	assert.Equal(t, 0, q.Tail())
	assert.Equal(t, 1, q.Funcs(), "registrations survive a reset")
	for _, p := range q.refs {
		assert.Nil(t, p)
	}
	assert.Equal(t, 0, calls)
}

func TestQueue_NoAllocations(t *testing.T) {
	q := New(DefaultCapacity)
	var sum int64
	id := q.Register(func(r Record) {
		sum += Arg[int64](r, 1) + int64(Arg[uint32](r, 2))
	})
	x := new(int)

	allocs := testing.AllocsPerRun(1000, func() {
		for i := 0; i < DefaultCapacity; i++ {
			r := q.Enqueue(id, 4)
			Put(r, 1, int64(i))
			Put(r, 2, uint32(i))
			Put(r, 3, unsafe.Pointer(x))
		}
		for q.Len() > 0 {
			q.DequeueAndInvoke()
		}
	})

	assert.Zero(t, allocs)
	assert.Positive(t, sum)
}
