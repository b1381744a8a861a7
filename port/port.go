// Package port implements the Port (C3): a named bundle of up to
// MaxQueues dual-index queues bound to one policy.
package port

import (
	"errors"
	"fmt"

	"github.com/danushkam/openqueue/policy"
	"github.com/danushkam/openqueue/queue"
)

// MaxQueues is the fixed size of a Port's queue array, matching
// TCQ_OQ_MAX_QUEUE in the discipline this module generalizes.
const MaxQueues = 16

// MaxNameLen bounds Port and queue names.
const MaxNameLen = 32

var (
	// ErrNameTooLong is returned by New and AddQueue when a name exceeds
	// MaxNameLen bytes.
	ErrNameTooLong = errors.New("port: name exceeds maximum length")
	// ErrTooManyQueues is returned by AddQueue once a policy has already
	// populated MaxQueues entries.
	ErrTooManyQueues = errors.New("port: too many queues")
	// ErrDuplicateQueueName is returned by AddQueue when name already
	// names another queue on the same Port. A Port's queues must have
	// distinct names: policies key per-queue state (thresholds, deficits)
	// off Queue.Name(), and two same-named queues would collide there.
	ErrDuplicateQueueName = errors.New("port: duplicate queue name")
)

// Port is a named collection of dual-index queues bound to one Policy.
// After New returns successfully, NumQueues is fixed for the Port's
// lifetime; Port is not safe for concurrent Enqueue/Dequeue without an
// external lock (see the scheduler package and §5's single-writer model).
type Port[P comparable] struct {
	name   string
	queues [MaxQueues]*queue.DualIndexQueue[P]
	numQ   int
	policy policy.Policy[P]
}

// New looks up policyName in reg, invokes its factory, and runs
// InitPort against a fresh Port. If InitPort fails, New discards the
// half-built Port and returns the error; no partially-initialized *Port
// is ever handed back to the caller.
func New[P comparable](name string, reg lookupper[P], policyName string) (*Port[P], error) {
	if len(name) > MaxNameLen {
		return nil, ErrNameTooLong
	}
	factory, ok := reg.Lookup(policyName)
	if !ok {
		return nil, fmt.Errorf("port: %w: %s", ErrPolicyMissing, policyName)
	}

	p := &Port[P]{name: name, policy: factory()}
	if err := p.policy.InitPort(p); err != nil {
		return nil, err
	}
	return p, nil
}

// ErrPolicyMissing is returned by New when policyName has no registered
// factory.
var ErrPolicyMissing = errors.New("port: policy not registered")

// lookupper is the narrow slice of registry.Registry[P] that New needs,
// kept local so port does not import registry (registry does not depend
// on port either; the dependency runs the other way, from callers that
// wire the two together).
type lookupper[P comparable] interface {
	Lookup(name string) (policy.Factory[P], bool)
}

// Name returns the Port's configured name.
func (p *Port[P]) Name() string { return p.name }

// NumQueues returns the number of queues InitPort populated.
func (p *Port[P]) NumQueues() int { return p.numQ }

// Policy returns the Policy instance bound to this Port.
func (p *Port[P]) Policy() policy.Policy[P] { return p.policy }

// Queue returns the i'th queue, or ok=false if i is out of range.
func (p *Port[P]) Queue(i int) (*queue.DualIndexQueue[P], bool) {
	if i < 0 || i >= p.numQ {
		return nil, false
	}
	return p.queues[i], true
}

// AddQueue appends a new named, capacity-bounded queue to the Port. It is
// called by a Policy's InitPort and fails once MaxQueues entries exist or
// name is too long.
func (p *Port[P]) AddQueue(name string, capacity int) error {
	if len(name) > MaxNameLen {
		return ErrNameTooLong
	}
	if p.numQ >= MaxQueues {
		return ErrTooManyQueues
	}
	for i := 0; i < p.numQ; i++ {
		if p.queues[i].Name() == name {
			return ErrDuplicateQueueName
		}
	}
	p.queues[p.numQ] = queue.New[P](name, capacity, queue.Options{})
	p.numQ++
	return nil
}
