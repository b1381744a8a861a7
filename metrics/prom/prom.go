// Package prom adapts stats.Snapshot to Prometheus gauges, grounded on
// the teacher's metrics/prom.Adapter shape (constructor-time
// registration, ConstLabels, registerer injection).
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/danushkam/openqueue/stats"
)

// Adapter publishes a Port's queue counters as Prometheus gauges, labeled
// by port and queue name. Safe for concurrent use; all Prometheus metric
// types are goroutine-safe.
type Adapter struct {
	length   *prometheus.GaugeVec
	dropped  *prometheus.GaugeVec
	admitted *prometheus.GaugeVec
	capacity *prometheus.GaugeVec
}

// New constructs a Prometheus metrics adapter.
//   - reg: registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - constLabels: static labels applied to all metrics (may be nil)
func New(reg prometheus.Registerer, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	labels := []string{"port", "queue"}
	a := &Adapter{
		length: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   "openqueue",
			Name:        "queue_length",
			Help:        "Number of packets currently resident in a queue",
			ConstLabels: constLabels,
		}, labels),
		dropped: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   "openqueue",
			Name:        "queue_dropped_total",
			Help:        "Packets dropped from a queue since creation",
			ConstLabels: constLabels,
		}, labels),
		admitted: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   "openqueue",
			Name:        "queue_admitted_total",
			Help:        "Packets admitted to a queue since creation",
			ConstLabels: constLabels,
		}, labels),
		capacity: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   "openqueue",
			Name:        "queue_capacity",
			Help:        "Advisory capacity configured for a queue",
			ConstLabels: constLabels,
		}, labels),
	}
	reg.MustRegister(a.length, a.dropped, a.admitted, a.capacity)
	return a
}

// Observe publishes one Snapshot's counters. Callers drive this either
// periodically or on every Enqueue/Dequeue, per their own tradeoff
// between freshness and overhead.
func (a *Adapter) Observe(snap stats.Snapshot) {
	for _, q := range snap.Queues {
		a.length.WithLabelValues(snap.PortName, q.Name).Set(float64(q.Length))
		a.dropped.WithLabelValues(snap.PortName, q.Name).Set(float64(q.Dropped))
		a.admitted.WithLabelValues(snap.PortName, q.Name).Set(float64(q.TotalAdmitted))
		a.capacity.WithLabelValues(snap.PortName, q.Name).Set(float64(q.Capacity))
	}
}
