/*
Package workqueue stores deferred closures inline in a fixed ring of machine words.

A closure is written as one contiguous record: a header word followed by one
word per captured value. The header packs the index of the closure's
trampoline in the queue's function table together with the record size:

	bit 63        57 56                                   0
	    [ size (7)  ][ function id (57)                     ]

	offset 0      header
	offset 1..n   captured values, in declaration order

The backing array holds (capacity+2) * MaxRecordWords words. A record is never
split across the physical end of the array: when it would not fit, a zero
sentinel is written at the tail and the record starts at index 0 instead.
A valid header always carries a size of at least one, so it can never be
mistaken for the sentinel.

Queues are not safe for concurrent use. Each execution context owns its own
queue; nothing on the enqueue or dequeue path allocates, locks, or uses
atomics.

Broken invariants (dequeue from an empty queue, oversize records, a tail
about to overrun the head) panic with *errors.InvariantError. The checks are
always on.
*/
package workqueue
