// Package weighted implements a work-conserving deficit round-robin
// policy. Unlike policy/priority (a direct generalization of a shipped
// C policy), this one has no original-source counterpart — the source's
// my_schd_prio is a one-line stub that always picks queue 0 — so it is
// built in the teacher's stateful-policy idiom instead: a per-port struct
// holding private state (here, a deficit counter per queue) mutated
// across calls, the same shape policy/twoq's in-memory A1in/ghost lists
// take in the cache this module is descended from.
package weighted

import (
	"github.com/danushkam/openqueue/policy"
	"github.com/danushkam/openqueue/queue"
)

// QueueSpec configures one of the policy's queues.
type QueueSpec struct {
	Name     string
	Capacity int
}

// Config parameterizes the policy.
type Config[P comparable] struct {
	Queues []QueueSpec

	// Quantum is added to a queue's deficit counter every time Schedule
	// considers it. Defaults to 1 if zero.
	Quantum int

	// PacketSize weighs a packet against a queue's accumulated deficit;
	// a queue only transmits once its deficit covers PacketSize of the
	// packet at the head of its processing order.
	PacketSize func(pkt P) uint64

	AdmissionKey  func(pkt P) uint64
	ProcessingKey func(pkt P) uint64

	// Select chooses the admission queue for an arriving packet. When nil,
	// every packet is offered to queue 0.
	Select func(pkt P, numQueues int) int
}

// New returns a Factory constructing a fresh weightedPolicy, with its own
// zeroed deficit counters and round-robin cursor, on every call.
func New[P comparable](cfg Config[P]) policy.Factory[P] {
	if cfg.Quantum <= 0 {
		cfg.Quantum = 1
	}
	return func() policy.Policy[P] {
		return &weightedPolicy[P]{cfg: cfg}
	}
}

type weightedPolicy[P comparable] struct {
	cfg     Config[P]
	deficit map[string]int
	cursor  int
}

func (wp *weightedPolicy[P]) InitPort(b policy.PortBuilder[P]) error {
	wp.deficit = make(map[string]int, len(wp.cfg.Queues))
	for _, qs := range wp.cfg.Queues {
		if err := b.AddQueue(qs.Name, qs.Capacity); err != nil {
			return err
		}
		wp.deficit[qs.Name] = 0
	}
	return nil
}

func (wp *weightedPolicy[P]) Select(v policy.PortView[P], pkt P) int {
	if wp.cfg.Select == nil {
		return 0
	}
	return wp.cfg.Select(pkt, v.NumQueues())
}

// Congested reports a queue full by capacity; weighted round-robin has
// no per-queue threshold distinct from capacity.
func (wp *weightedPolicy[P]) Congested(q *queue.DualIndexQueue[P]) bool {
	return q.Capacity() > 0 && q.Len() >= q.Capacity()
}

func (wp *weightedPolicy[P]) OnCongestion(_ *queue.DualIndexQueue[P], _ P) policy.Action {
	return policy.DropTail
}

func (wp *weightedPolicy[P]) AdmissionKey(_ *queue.DualIndexQueue[P], pkt P) uint64 {
	return wp.cfg.AdmissionKey(pkt)
}

func (wp *weightedPolicy[P]) ProcessingKey(_ *queue.DualIndexQueue[P], pkt P) uint64 {
	return wp.cfg.ProcessingKey(pkt)
}

// Schedule runs one step of deficit round-robin: it walks queues starting
// from the cursor, crediting each non-empty queue's deficit by Quantum,
// and transmits from the first whose deficit covers the packet at its
// processing head. A queue that cannot yet afford its head packet
// carries its deficit forward to the next call. The cursor advances past
// a queue once it has been considered, whether or not it transmitted.
func (wp *weightedPolicy[P]) Schedule(v policy.PortView[P]) (int, bool) {
	n := v.NumQueues()
	if n == 0 {
		return 0, false
	}
	for step := 0; step < n; step++ {
		i := wp.cursor
		wp.cursor = (wp.cursor + 1) % n

		q, ok := v.Queue(i)
		if !ok || q.Len() == 0 {
			continue
		}
		name := q.Name()
		wp.deficit[name] += wp.cfg.Quantum

		pkt, ok := q.PeekByProcessing()
		if !ok {
			continue
		}
		size := wp.cfg.PacketSize(pkt)
		if uint64(wp.deficit[name]) >= size {
			wp.deficit[name] -= int(size)
			return i, true
		}
	}
	return 0, false
}
