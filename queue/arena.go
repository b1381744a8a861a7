package queue

import "github.com/danushkam/openqueue/internal/util"

// arena is a free-list-backed pool of T. Every live element has a stable
// int32 index, usable as a sibling reference between the admission and
// processing PacketEntry halves of one packet (Design Note: "arena-
// allocated records with stable indices" replacing the source's raw
// sibling pointers). Growth is rounded up to the next power of two to
// amortize reallocation, matching §5's "pool is internal and its size
// grows with peak queue depth."
type arena[T any] struct {
	slots []arenaSlot[T]
	free  []int32
	max   int // 0 = unbounded
}

type arenaSlot[T any] struct {
	val  T
	used bool
}

func newArena[T any](max int) *arena[T] {
	return &arena[T]{max: max}
}

// alloc reserves a slot and returns its stable index and a pointer to its
// zero-valued payload. ok is false if the arena has hit its configured
// bound (Options.MaxPool).
func (a *arena[T]) alloc() (idx int32, val *T, ok bool) {
	if len(a.free) == 0 {
		if a.max > 0 && len(a.slots) >= a.max {
			return 0, nil, false
		}
		a.grow()
		if len(a.free) == 0 {
			return 0, nil, false
		}
	}
	n := len(a.free) - 1
	i := a.free[n]
	a.free = a.free[:n]
	a.slots[i].used = true
	return i, &a.slots[i].val, true
}

// get returns the payload at i, or ok=false if i does not currently
// reference a live slot (an invariant breach at the call site).
func (a *arena[T]) get(i int32) (val *T, ok bool) {
	if i < 0 || int(i) >= len(a.slots) || !a.slots[i].used {
		return nil, false
	}
	return &a.slots[i].val, true
}

// release returns slot i to the free list.
func (a *arena[T]) release(i int32) {
	var zero T
	a.slots[i].val = zero
	a.slots[i].used = false
	a.free = append(a.free, i)
}

func (a *arena[T]) grow() {
	cur := len(a.slots)
	next := int(util.NextPow2(uint64(cur + 1)))
	if a.max > 0 && next > a.max {
		next = a.max
	}
	if next <= cur {
		return
	}
	a.slots = append(a.slots, make([]arenaSlot[T], next-cur)...)
	for i := cur; i < next; i++ {
		a.free = append(a.free, int32(i))
	}
}
