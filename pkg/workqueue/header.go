package workqueue

// FuncID identifies a trampoline in a queue's function table.
type FuncID uint64

const (
	// MaxCaptures is the largest number of values a closure may capture.
	MaxCaptures = 7

	// MaxRecordWords is the size of the largest record: header plus captures.
	MaxRecordWords = MaxCaptures + 1

	sizeShift = 57
	idMask    = ^uint64(0) >> (64 - sizeShift)

	// Ids are restored with sign extension from bit 56, so that bit must
	// stay clear.
	idLimit = idMask >> 1

	// MaxFuncID is the largest id that survives header packing.
	MaxFuncID = FuncID(idLimit)

	// sentinel marks the point where the tail wrapped to index 0.
	sentinel Word = 0
)

// MakeHeader packs fn and the record size n (in words, header included)
// into a single header word. The top 7 bits of fn are cleared and replaced
// by n.
//
// n must be below 128 and fn must not exceed MaxFuncID; otherwise the
// decoded id is silently corrupted. Queue.EnqueueRegion and Queue.Register
// enforce both.
func MakeHeader(fn FuncID, n int) Word {
	return Word(uint64(fn)&idMask | uint64(n)<<sizeShift)
}

// ReadHeader unpacks a header word produced by MakeHeader. The size comes
// from an unsigned shift; the id from a left shift followed by an arithmetic
// right shift, which clears the size bits and restores the id's original
// bit pattern.
func ReadHeader(h Word) (FuncID, int) {
	n := int(uint64(h) >> sizeShift)
	fn := FuncID((h << (64 - sizeShift)) >> (64 - sizeShift))
	return fn, n
}
