package workqueue

import "unsafe"

// Word is the queue's storage unit. It is pointer sized on every supported
// platform.
type Word int64

// Compile-time guard: the header layout needs 64-bit words and pointers.
var _ [unsafe.Sizeof(uintptr(0)) - 8]struct{}

// Value is the closed set of types a closure may capture. Each fits in a
// single Word and round-trips exactly.
type Value interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr |
		unsafe.Pointer
}

// ToWord converts v to its word representation. Signed values are sign
// extended, unsigned values zero extended.
func ToWord[T Value](v T) Word {
	return Word(uintptr(v))
}

// FromWord reconstructs a value of type T from w. The caller must know the
// type w was produced from; there is no type tag.
//
// For unsafe.Pointer the result is only valid while the referenced object is
// kept alive elsewhere. Queued pointer captures are read through Arg, which
// takes the reference from the queue's shadow array instead.
func FromWord[T Value](w Word) T {
	return T(uintptr(w))
}

// IsPointer reports whether T is unsafe.Pointer.
func IsPointer[T Value]() bool {
	// A typed nil pointer converts to an interface without allocating.
	_, ok := any((*T)(nil)).(*unsafe.Pointer)
	return ok
}

// pointerOf reinterprets v as unsafe.Pointer. Only valid when IsPointer[T].
func pointerOf[T Value](v T) unsafe.Pointer {
	return *(*unsafe.Pointer)(unsafe.Pointer(&v))
}

// valueOf reinterprets p as T. Only valid when IsPointer[T].
func valueOf[T Value](p unsafe.Pointer) T {
	return *(*T)(unsafe.Pointer(&p))
}
