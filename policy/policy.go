// Package policy defines the pluggable scheduling policy contract (C2):
// the pure callbacks a Port binds at construction time, and the Action a
// policy returns to resolve congestion.
//
// A Policy never touches a Port or DualIndexQueue's internals directly; it
// only sees the narrow views below, the same separation the cache package
// keeps between its shard and the policy's Hooks/Node contracts.
package policy

import "github.com/danushkam/openqueue/queue"

// Action is the caller's instruction for resolving congestion, returned
// from OnCongestion.
type Action int

const (
	// DropTail evicts the entry at the largest admission key's bucket
	// head, then admits the incoming packet.
	DropTail Action = iota
	// DropHead evicts the entry at the smallest admission key's bucket
	// head, then admits the incoming packet.
	DropHead
	// DropIncoming releases the incoming packet without admitting it.
	DropIncoming
)

func (a Action) String() string {
	switch a {
	case DropTail:
		return "drop-tail"
	case DropHead:
		return "drop-head"
	case DropIncoming:
		return "drop-incoming"
	default:
		return "unknown"
	}
}

// PortView is the read-only contract a Policy needs to inspect a Port's
// queues from Select/Schedule.
type PortView[P comparable] interface {
	NumQueues() int
	Queue(i int) (*queue.DualIndexQueue[P], bool)
}

// PortBuilder is what InitPort gets: a PortView plus the ability to
// populate the Port's fixed queue array. It is only ever satisfied by
// *port.Port[P]; policy never imports the port package directly, which
// is what lets port import policy without a cycle.
type PortBuilder[P comparable] interface {
	PortView[P]
	AddQueue(name string, capacity int) error
}

// Policy bundles the six pure callbacks plus InitPort. The Scheduler
// treats every callback as pure with respect to the Packet and Queue it
// is given; any per-port state a policy needs (e.g. deficit counters) is
// private to the Policy value InitPort's factory produces.
type Policy[P comparable] interface {
	// InitPort populates b's queues (via AddQueue) and performs any other
	// one-time setup. After it returns successfully, NumQueues is fixed
	// for the Port's lifetime. A failed InitPort means the caller must
	// discard the half-built Port.
	InitPort(b PortBuilder[P]) error

	// Select returns the queue index an arriving packet is offered to.
	// It is total, like the callbacks below: an out-of-range index is
	// reported by the scheduler as ErrBadQueue rather than by Select
	// itself.
	Select(v PortView[P], pkt P) int

	// Congested reports whether q should reject admission of an
	// arbitrary incoming packet without inspecting it.
	Congested(q *queue.DualIndexQueue[P]) bool

	// OnCongestion resolves a congested admission attempt.
	OnCongestion(q *queue.DualIndexQueue[P], pkt P) Action

	// AdmissionKey computes pkt's key in q's admission index.
	AdmissionKey(q *queue.DualIndexQueue[P], pkt P) uint64

	// ProcessingKey computes pkt's key in q's processing index.
	ProcessingKey(q *queue.DualIndexQueue[P], pkt P) uint64

	// Schedule picks the queue to dequeue from next. ok is false when
	// there is nothing to send (e.g. every queue is empty).
	Schedule(v PortView[P]) (int, bool)
}

// Factory constructs a fresh Policy instance. Policies that carry
// per-port state (policy/weighted's deficit counters) must return a new
// value on every call; a Factory is looked up and invoked once per
// port.New.
type Factory[P comparable] func() Policy[P]
