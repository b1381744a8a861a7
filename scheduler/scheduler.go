// Package scheduler implements the Enqueue/Dequeue state machines (C4)
// that drive a Port's queues through its bound Policy. It holds no state
// of its own: per the concurrency model a Port already carries
// everything an operation needs, and the caller is responsible for
// serializing calls on the same Port.
package scheduler

import (
	"errors"

	"github.com/danushkam/openqueue/policy"
	"github.com/danushkam/openqueue/port"
	"github.com/danushkam/openqueue/queue"
	"github.com/danushkam/openqueue/stats"
)

var (
	// ErrBadQueue is returned when Select returns an index outside
	// [0, NumQueues).
	ErrBadQueue = errors.New("scheduler: queue index out of range")
	// ErrBadAction is returned when OnCongestion returns an Action the
	// scheduler does not recognize.
	ErrBadAction = errors.New("scheduler: unrecognized congestion action")
)

// Enqueue offers pkt to port, admitting it or resolving congestion per
// the Policy's callbacks. release is called on any packet the scheduler
// evicts or rejects (the DROP_TAIL/DROP_HEAD victim, or pkt itself under
// DROP_INCOMING); it is never called on a packet that ends up admitted.
//
// The scheduler never retries: one arrival produces at most one
// admission attempt and at most one eviction. If eviction frees space and
// the subsequent insert still fails (ErrNoMemory), pkt is released and
// counted as dropped instead of being retried.
func Enqueue[P comparable](prt *port.Port[P], pkt P, release func(P)) error {
	pol := prt.Policy()

	q := pol.Select(prt, pkt)
	if q < 0 || q >= prt.NumQueues() {
		return ErrBadQueue
	}
	dq, _ := prt.Queue(q)

	if !pol.Congested(dq) {
		return admit(pol, dq, pkt, release, false)
	}

	switch action := pol.OnCongestion(dq, pkt); action {
	case policy.DropTail:
		if victim, ok, err := dq.PopByAdmissionTail(); err != nil {
			return err
		} else if ok && release != nil {
			release(victim)
		}
		return admit(pol, dq, pkt, release, true)

	case policy.DropHead:
		if victim, ok, err := dq.PopByAdmissionHeadOldest(); err != nil {
			return err
		} else if ok && release != nil {
			release(victim)
		}
		return admit(pol, dq, pkt, release, true)

	case policy.DropIncoming:
		dq.RecordDrop()
		if release != nil {
			release(pkt)
		}
		return nil

	default:
		return ErrBadAction
	}
}

// admit computes pkt's keys and inserts it into dq. If insertion fails
// with ErrNoMemory after a DROP_TAIL/DROP_HEAD eviction already ran
// (evicted), pkt is released and counted as dropped rather than retried;
// any other insert error is returned to the caller.
func admit[P comparable](pol policy.Policy[P], dq *queue.DualIndexQueue[P], pkt P, release func(P), evicted bool) error {
	a := pol.AdmissionKey(dq, pkt)
	p := pol.ProcessingKey(dq, pkt)
	if err := dq.Insert(pkt, a, p); err != nil {
		if evicted && errors.Is(err, queue.ErrNoMemory) {
			dq.RecordDrop()
			if release != nil {
				release(pkt)
			}
			return nil
		}
		return err
	}
	return nil
}

// Dequeue asks port's Policy which queue to transmit from next and pops
// the head of that queue's processing order. ok is false when Schedule
// names no queue, or the chosen queue happens to be empty. A pop error
// (ErrInvariant) is also reported only as ok=false; Dequeue does not
// return the error itself.
func Dequeue[P comparable](prt *port.Port[P]) (P, bool) {
	var zero P

	pol := prt.Policy()
	q, ok := pol.Schedule(prt)
	if !ok || q < 0 || q >= prt.NumQueues() {
		return zero, false
	}
	dq, _ := prt.Queue(q)

	pkt, ok, err := dq.PopByProcessing()
	if err != nil || !ok {
		return zero, false
	}
	return pkt, true
}

// Stats forwards to stats.Dump, kept separate from Enqueue/Dequeue so
// scheduler stays a pure state-machine module with no formatting/export
// concerns.
func Stats[P comparable](prt *port.Port[P]) stats.Snapshot {
	return stats.Dump(prt)
}
