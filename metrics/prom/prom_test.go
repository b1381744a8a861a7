package prom

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/danushkam/openqueue/stats"
)

func TestAdapter_ObservePublishesGaugesPerQueue(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := New(reg, nil)

	a.Observe(stats.Snapshot{
		PortName:  "eth0",
		NumQueues: 1,
		Queues: []stats.QueueSnapshot{
			{Name: "q1", Capacity: 128, Length: 3, Dropped: 1, TotalAdmitted: 10},
		},
	})

	want := `
# HELP openqueue_queue_length Number of packets currently resident in a queue
# TYPE openqueue_queue_length gauge
openqueue_queue_length{port="eth0",queue="q1"} 3
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(want), "openqueue_queue_length"); err != nil {
		t.Fatalf("unexpected metric output: %v", err)
	}
}

func TestAdapter_ObserveOverwritesPreviousValues(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := New(reg, nil)

	snap := stats.Snapshot{
		PortName: "eth0",
		Queues:   []stats.QueueSnapshot{{Name: "q1", Length: 5}},
	}
	a.Observe(snap)
	snap.Queues[0].Length = 0
	a.Observe(snap)

	want := `
# HELP openqueue_queue_length Number of packets currently resident in a queue
# TYPE openqueue_queue_length gauge
openqueue_queue_length{port="eth0",queue="q1"} 0
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(want), "openqueue_queue_length"); err != nil {
		t.Fatalf("unexpected metric output after second Observe: %v", err)
	}
}
