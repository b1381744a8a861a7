// Package util contains internal helpers (hashing, pool growth, padding).
//revive:disable:var-naming  // allow 'util' as an internal helpers package name
package util

import (
	"math"
	"unsafe"
)

// CacheLineSize is a reasonable default for most modern CPUs.
// std has runtime/internal/sys.CacheLineSize but it's unexported.
// 64 works well in practice.
const CacheLineSize = 64

// CacheLinePad is a dummy field used to separate hot fields into distinct
// cache lines and reduce false sharing. Place between groups of hot fields.
type CacheLinePad struct{ _ [CacheLineSize]byte }

// Counter32 is a saturating, 32-bit signed counter padded to one cache
// line. It is intentionally NOT atomic: a Port is single-writer (the
// caller serializes Enqueue/Dequeue on a given Port), so nothing here
// needs compare-and-swap. The padding still earns its keep, because
// independent Ports run on independent goroutines/cores in parallel and
// are frequently stored contiguously (a Port's fixed queue array) —
// without padding their hot counters would share cache lines and two
// unrelated Ports would contend anyway.
type Counter32 struct {
	value int32
	_     [CacheLineSize - 4]byte
}

// Add adds delta, saturating to [0, math.MaxInt32].
func (c *Counter32) Add(delta int32) {
	v := int64(c.value) + int64(delta)
	if v > math.MaxInt32 {
		v = math.MaxInt32
	}
	if v < 0 {
		v = 0
	}
	c.value = int32(v)
}

// Load returns the current value.
func (c *Counter32) Load() int32 { return c.value }

// Store resets the counter to v.
func (c *Counter32) Store(v int32) { c.value = v }

// ---- Compile-time size check (must be exactly one cache line) ----
var _ [CacheLineSize - int(unsafe.Sizeof(Counter32{}))]byte
