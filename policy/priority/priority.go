// Package priority generalizes the shipped myPort policy: a fixed set of
// independently-congestible queues, each with its own capacity,
// congestion threshold and congestion Action, selected by a caller-
// supplied admission-queue chooser and ordered within a queue by
// caller-supplied key extractors standing in for the original's
// ip_hdr->tos (admission) and skb->len (processing) fields.
//
// Select/Schedule both implement strict priority: Schedule always
// transmits from the lowest-indexed non-empty queue, so queue order in
// Config.Queues doubles as priority order.
package priority

import (
	"github.com/danushkam/openqueue/internal/util"
	"github.com/danushkam/openqueue/policy"
	"github.com/danushkam/openqueue/queue"
)

// QueueSpec configures one of the policy's queues.
type QueueSpec struct {
	Name      string
	Capacity  int
	Threshold int // Congested once Len() >= Threshold
	Action    policy.Action
}

// Config parameterizes the policy. AdmissionKey and ProcessingKey are
// required; Select defaults to always choosing queue 0, matching the
// shipped policy's select_admission_queue.
type Config[P comparable] struct {
	Queues        []QueueSpec
	AdmissionKey  func(pkt P) uint64
	ProcessingKey func(pkt P) uint64
	Select        func(pkt P, numQueues int) int
}

type priorityPolicy[P comparable] struct {
	cfg       Config[P]
	threshold map[string]int
	action    map[string]policy.Action
}

// New returns a Factory that constructs a policy from cfg. Every call to
// the returned Factory produces a fresh, independent instance, though
// this policy carries no per-port state beyond the immutable cfg.
func New[P comparable](cfg Config[P]) policy.Factory[P] {
	return func() policy.Policy[P] {
		return &priorityPolicy[P]{cfg: cfg}
	}
}

// NewMyPort returns a Factory reproducing the shipped myPort policy: two
// queues, "q1" (capacity 128, DROP_TAIL once 1024 is reached) ahead of
// "q2" (capacity 1024, DROP_INCOMING once full).
func NewMyPort[P comparable](admissionKey, processingKey func(pkt P) uint64) policy.Factory[P] {
	return New(Config[P]{
		Queues: []QueueSpec{
			{Name: "q1", Capacity: 128, Threshold: 1024, Action: policy.DropTail},
			{Name: "q2", Capacity: 1024, Threshold: 1024, Action: policy.DropIncoming},
		},
		AdmissionKey:  admissionKey,
		ProcessingKey: processingKey,
	})
}

// HashKey builds an AdmissionKey/ProcessingKey func for callers whose
// packet type has no natural uint64 ordering field — it hashes the packet
// value itself with util.Fnv64a. K is typically string, a fixed-size byte
// array, or an integer type; P is the packet type, and extract pulls the
// hashable field out of it (for example, a 5-tuple flow ID).
func HashKey[P any, K comparable](extract func(P) K) func(P) uint64 {
	return func(pkt P) uint64 {
		return util.Fnv64a(extract(pkt))
	}
}

func (pp *priorityPolicy[P]) InitPort(b policy.PortBuilder[P]) error {
	pp.threshold = make(map[string]int, len(pp.cfg.Queues))
	pp.action = make(map[string]policy.Action, len(pp.cfg.Queues))
	for _, qs := range pp.cfg.Queues {
		if err := b.AddQueue(qs.Name, qs.Capacity); err != nil {
			return err
		}
		pp.threshold[qs.Name] = qs.Threshold
		pp.action[qs.Name] = qs.Action
	}
	return nil
}

func (pp *priorityPolicy[P]) Select(v policy.PortView[P], pkt P) int {
	if pp.cfg.Select != nil {
		return pp.cfg.Select(pkt, v.NumQueues())
	}
	return 0
}

func (pp *priorityPolicy[P]) Congested(q *queue.DualIndexQueue[P]) bool {
	return q.Len() >= pp.threshold[q.Name()]
}

func (pp *priorityPolicy[P]) OnCongestion(q *queue.DualIndexQueue[P], _ P) policy.Action {
	return pp.action[q.Name()]
}

func (pp *priorityPolicy[P]) AdmissionKey(_ *queue.DualIndexQueue[P], pkt P) uint64 {
	return pp.cfg.AdmissionKey(pkt)
}

func (pp *priorityPolicy[P]) ProcessingKey(_ *queue.DualIndexQueue[P], pkt P) uint64 {
	return pp.cfg.ProcessingKey(pkt)
}

// Schedule transmits from the lowest-indexed non-empty queue, enforcing
// strict priority across Config.Queues.
func (pp *priorityPolicy[P]) Schedule(v policy.PortView[P]) (int, bool) {
	for i := 0; i < v.NumQueues(); i++ {
		q, ok := v.Queue(i)
		if ok && q.Len() > 0 {
			return i, true
		}
	}
	return 0, false
}
