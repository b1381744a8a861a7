// Package stats implements the read-only Statistics/Dump surface (C6):
// a point-in-time snapshot of a Port and its queues.
package stats

import "github.com/danushkam/openqueue/port"

// QueueSnapshot mirrors one queue's counters at dump time.
type QueueSnapshot struct {
	Name          string
	Capacity      int32
	Length        int32
	Dropped       int32
	TotalAdmitted int32
}

// Snapshot mirrors a Port's counters at dump time.
type Snapshot struct {
	PortName  string
	NumQueues int
	Queues    []QueueSnapshot
}

// Dump reads prt's current state. It is a pure read with no side
// effects; the caller holds whatever lock serializes the Port (see §5).
func Dump[P comparable](prt *port.Port[P]) Snapshot {
	snap := Snapshot{
		PortName:  prt.Name(),
		NumQueues: prt.NumQueues(),
		Queues:    make([]QueueSnapshot, 0, prt.NumQueues()),
	}
	for i := 0; i < prt.NumQueues(); i++ {
		q, ok := prt.Queue(i)
		if !ok {
			continue
		}
		snap.Queues = append(snap.Queues, QueueSnapshot{
			Name:          q.Name(),
			Capacity:      int32(q.Capacity()),
			Length:        int32(q.Len()),
			Dropped:       q.Dropped(),
			TotalAdmitted: q.TotalAdmitted(),
		})
	}
	return snap
}
