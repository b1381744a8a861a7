// Package queue implements the dual-index packet queue (C1): every
// admitted packet is indexed simultaneously by an admission key and a
// processing key, so a policy can select packets for transmission in a
// different order than they were accepted, while still being able to
// evict consistently from both views on congestion.
//
// A DualIndexQueue is not safe for concurrent use by multiple goroutines.
// Per the concurrency model, a Port (and the queues it owns) is
// single-writer: the caller is responsible for serializing Enqueue/
// Dequeue on the same Port, typically via a lock held above this package.
package queue

import (
	"container/list"

	"github.com/danushkam/openqueue/internal/util"
	"github.com/google/btree"
)

// entry is one PacketEntry half (admission or processing) of a packet.
// Every admitted packet corresponds to exactly two entries, one living in
// the admission arena, one in the processing arena, cross-referenced by
// sibling.
type entry[P comparable] struct {
	packet  P
	key     uint64 // key within this entry's own tree
	sibling int32  // arena index of the sibling entry, in the OTHER arena
	bucket  *list.List
	elem    *list.Element
}

// Options configures a DualIndexQueue.
type Options struct {
	// MaxPool bounds the entry arena (0 = unbounded). Exceeding it is the
	// only way Insert reports ErrNoMemory in this implementation — see
	// DESIGN.md's Open Questions for why Go needs an explicit bound to
	// give NO_MEMORY a realistic trigger.
	MaxPool int
}

// DualIndexQueue is one named, bounded queue (C1). Capacity is advisory
// here: per spec, "Q.length ≤ Q.capacity is enforced by the Scheduler, not
// by Q itself" — Capacity() exists so a Policy's Congested callback (and
// Statistics/Dump) can read it.
type DualIndexQueue[P comparable] struct {
	name     string
	capacity int

	admission  *btree.BTreeG[treeItem]
	processing *btree.BTreeG[treeItem]

	admissionEntries  *arena[entry[P]]
	processingEntries *arena[entry[P]]

	byPacket map[P]int32 // packet -> admission arena index, for RemoveSpecific

	length        int
	dropped       util.Counter32
	totalAdmitted util.Counter32
}

// New constructs an empty queue named name with the given advisory
// capacity.
func New[P comparable](name string, capacity int, opts Options) *DualIndexQueue[P] {
	return &DualIndexQueue[P]{
		name:              name,
		capacity:          capacity,
		admission:         newTree(),
		processing:        newTree(),
		admissionEntries:  newArena[entry[P]](opts.MaxPool),
		processingEntries: newArena[entry[P]](opts.MaxPool),
		byPacket:          make(map[P]int32),
	}
}

// Name returns the queue's configured name.
func (q *DualIndexQueue[P]) Name() string { return q.name }

// Capacity returns the advisory capacity passed to New.
func (q *DualIndexQueue[P]) Capacity() int { return q.capacity }

// Len returns the number of distinct packets currently indexed.
func (q *DualIndexQueue[P]) Len() int { return q.length }

// Dropped returns the saturating dropped-packet counter.
func (q *DualIndexQueue[P]) Dropped() int32 { return q.dropped.Load() }

// TotalAdmitted returns the saturating total-admitted counter.
func (q *DualIndexQueue[P]) TotalAdmitted() int32 { return q.totalAdmitted.Load() }

// RecordDrop increments the dropped counter without touching the queue's
// contents. Used by the scheduler for DROP_INCOMING, where the packet is
// released without ever being indexed.
func (q *DualIndexQueue[P]) RecordDrop() { q.dropped.Add(1) }

// Insert adds pkt to both indexes under the given keys. It is
// all-or-nothing: on ErrNoMemory neither tree is touched. Inserting a
// packet reference that is already present is caller error; the core
// does not detect it (per spec §4.1).
func (q *DualIndexQueue[P]) Insert(pkt P, admissionKey, processingKey uint64) error {
	aIdx, aEntry, ok := q.admissionEntries.alloc()
	if !ok {
		return ErrNoMemory
	}
	pIdx, pEntry, ok := q.processingEntries.alloc()
	if !ok {
		q.admissionEntries.release(aIdx)
		return ErrNoMemory
	}

	aEntry.packet = pkt
	aEntry.sibling = pIdx
	pEntry.packet = pkt
	pEntry.sibling = aIdx

	pushBack(q.admission, admissionKey, aIdx, aEntry)
	pushBack(q.processing, processingKey, pIdx, pEntry)

	q.byPacket[pkt] = aIdx
	q.length++
	q.totalAdmitted.Add(1)
	return nil
}

// PopByProcessing removes and returns the packet with the largest
// processing key (ties broken by earliest insertion). It does not count
// as a drop.
func (q *DualIndexQueue[P]) PopByProcessing() (P, bool, error) {
	return q.extract(q.processing, q.admission, q.processingEntries, q.admissionEntries, true, false)
}

// PopByAdmissionTail removes and returns the packet with the largest
// admission key (ties broken by earliest insertion). Used to implement
// DROP_TAIL; counts as a drop.
func (q *DualIndexQueue[P]) PopByAdmissionTail() (P, bool, error) {
	return q.extract(q.admission, q.processing, q.admissionEntries, q.processingEntries, true, true)
}

// PopByAdmissionHeadOldest removes and returns the packet with the
// smallest admission key (ties broken by earliest insertion). Used to
// implement DROP_HEAD; counts as a drop.
func (q *DualIndexQueue[P]) PopByAdmissionHeadOldest() (P, bool, error) {
	return q.extract(q.admission, q.processing, q.admissionEntries, q.processingEntries, false, true)
}

func (q *DualIndexQueue[P]) extract(
	ownTree, otherTree *btree.BTreeG[treeItem],
	ownArena, otherArena *arena[entry[P]],
	largest bool,
	isDrop bool,
) (P, bool, error) {
	var zero P

	var item treeItem
	var ok bool
	if largest {
		item, ok = ownTree.Max()
	} else {
		item, ok = ownTree.Min()
	}
	if !ok {
		return zero, false, nil
	}

	frontEl := item.bucket.Front()
	if frontEl == nil {
		// An empty KeyBucket should never exist; this is corruption, not
		// a usage error.
		return zero, false, ErrInvariant
	}
	ownIdx := frontEl.Value.(int32)

	ownEntry, ok := ownArena.get(ownIdx)
	if !ok {
		return zero, false, ErrInvariant
	}
	pkt := ownEntry.packet
	siblingIdx := ownEntry.sibling

	siblingEntry, ok := otherArena.get(siblingIdx)
	if !ok {
		return zero, false, ErrInvariant
	}

	detach(ownTree, ownEntry)
	ownArena.release(ownIdx)

	detach(otherTree, siblingEntry)
	otherArena.release(siblingIdx)

	delete(q.byPacket, pkt)
	q.length--
	if isDrop {
		q.dropped.Add(1)
	}
	return pkt, true, nil
}

// PeekByProcessing returns the packet PopByProcessing would return,
// without removing it. Used by policies (e.g. deficit round-robin) that
// need to inspect the head-of-line packet before deciding whether to
// transmit it.
func (q *DualIndexQueue[P]) PeekByProcessing() (P, bool) {
	var zero P
	item, ok := q.processing.Max()
	if !ok {
		return zero, false
	}
	frontEl := item.bucket.Front()
	if frontEl == nil {
		return zero, false
	}
	idx := frontEl.Value.(int32)
	e, ok := q.processingEntries.get(idx)
	if !ok {
		return zero, false
	}
	return e.packet, true
}

// RemoveSpecific detaches pkt, given a reference already known to be in
// the queue (e.g. the incoming packet right after Insert). It runs in
// O(1) amortized via an internal packet->entry index, exceeding the
// O(L) floor the spec sets as acceptable worst case (see DESIGN.md).
func (q *DualIndexQueue[P]) RemoveSpecific(pkt P) (bool, error) {
	admIdx, ok := q.byPacket[pkt]
	if !ok {
		return false, nil
	}
	admEntry, ok := q.admissionEntries.get(admIdx)
	if !ok {
		return false, ErrInvariant
	}
	procEntry, ok := q.processingEntries.get(admEntry.sibling)
	if !ok {
		return false, ErrInvariant
	}

	procIdx := admEntry.sibling
	detach(q.admission, admEntry)
	q.admissionEntries.release(admIdx)
	detach(q.processing, procEntry)
	q.processingEntries.release(procIdx)

	delete(q.byPacket, pkt)
	q.length--
	return true, nil
}

// Reset releases every resident packet through release (called once per
// packet) and zeros length/dropped/total. Per §9, the source's reset path
// is incomplete; this is the corrected semantics the spec mandates.
func (q *DualIndexQueue[P]) Reset(release func(P)) {
	for {
		pkt, ok, err := q.PopByProcessing()
		if err != nil || !ok {
			break
		}
		if release != nil {
			release(pkt)
		}
	}
	q.dropped.Store(0)
	q.totalAdmitted.Store(0)
}
