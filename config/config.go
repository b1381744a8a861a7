// Package config realizes §6's fixed-width configuration payload — the
// record carried opaque across the transport that would, in the source
// system, cross the netlink boundary — as a plain Go struct of
// fixed-size arrays, plus conversions to and from a live Port's state.
package config

import (
	"errors"

	"github.com/hashicorp/go-multierror"

	"github.com/danushkam/openqueue/port"
	"github.com/danushkam/openqueue/stats"
)

// NameLen is the wire width of a name field: 32 bytes plus a NUL
// terminator, truncated on overflow (per §6/§9).
const NameLen = port.MaxNameLen + 1

// MaxQueueRecords is the wire width of the queue descriptor array.
const MaxQueueRecords = port.MaxQueues

var (
	ErrNumQueuesOutOfRange = errors.New("config: num_q out of range [0,16]")
	ErrDuplicateQueueName  = errors.New("config: duplicate queue name")
)

// QueueRecord is one queue's wire descriptor.
type QueueRecord struct {
	Name    [NameLen]byte
	MaxLen  int32
	Len     int32
	Dropped int32
	Total   int32
}

// Record is the fixed-width configuration/dump payload: a port name, up
// to MaxQueueRecords queue descriptors, and a count of how many are
// meaningful.
type Record struct {
	PortName [NameLen]byte
	Queues   [MaxQueueRecords]QueueRecord
	NumQ     int32
}

// SetPortName truncates name to NameLen-1 bytes and stores it
// NUL-terminated, per §6/§9's "names are 32-byte + NUL-terminator,
// truncated on overflow."
func (r *Record) SetPortName(name string) {
	setFixedName(&r.PortName, name)
}

// PortNameString returns the NUL-terminated name as a Go string.
func (r *Record) PortNameString() string {
	return fixedNameString(r.PortName)
}

func setFixedName(dst *[NameLen]byte, name string) {
	for i := range dst {
		dst[i] = 0
	}
	n := len(name)
	if n > NameLen-1 {
		n = NameLen - 1
	}
	copy(dst[:n], name[:n])
}

func fixedNameString(b [NameLen]byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b[:])
}

// Validate aggregates every structural problem in r instead of stopping
// at the first, using hashicorp/go-multierror so a caller sees the whole
// picture at once.
func (r *Record) Validate() error {
	var result *multierror.Error

	if r.NumQ < 0 || int(r.NumQ) > MaxQueueRecords {
		result = multierror.Append(result, ErrNumQueuesOutOfRange)
	}

	seen := make(map[string]struct{}, r.NumQ)
	limit := int(r.NumQ)
	if limit < 0 {
		limit = 0
	}
	if limit > MaxQueueRecords {
		limit = MaxQueueRecords
	}
	for i := 0; i < limit; i++ {
		name := fixedNameString(r.Queues[i].Name)
		if _, dup := seen[name]; dup {
			result = multierror.Append(result, ErrDuplicateQueueName)
			continue
		}
		seen[name] = struct{}{}
	}

	return result.ErrorOrNil()
}

// ApplyTo returns the port name carried by r. It is the only field
// meaningful on admission per §6: the queue array is populated by the
// policy's InitPort during port.New, not copied in from the wire.
func (r *Record) ApplyTo() (portName string) {
	return r.PortNameString()
}

// FromPort converts prt's current dump into a wire Record. Counter
// fields are already saturating 32-bit values by the time stats.Dump
// produces them, so this is a width-preserving copy, not a re-clamp.
func FromPort[P comparable](prt *port.Port[P]) Record {
	snap := stats.Dump(prt)

	var rec Record
	rec.SetPortName(snap.PortName)
	rec.NumQ = int32(snap.NumQueues)
	for i, q := range snap.Queues {
		if i >= MaxQueueRecords {
			break
		}
		qr := &rec.Queues[i]
		setFixedName(&qr.Name, q.Name)
		qr.MaxLen = q.Capacity
		qr.Len = q.Length
		qr.Dropped = q.Dropped
		qr.Total = q.TotalAdmitted
	}
	return rec
}
