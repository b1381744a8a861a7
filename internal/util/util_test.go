package util

import (
	"math"
	"testing"
)

func TestCounter32_AddAccumulates(t *testing.T) {
	var c Counter32
	c.Add(5)
	c.Add(3)
	if got := c.Load(); got != 8 {
		t.Fatalf("Load() = %d, want 8", got)
	}
}

func TestCounter32_SaturatesAtMaxInt32(t *testing.T) {
	var c Counter32
	c.Store(math.MaxInt32 - 1)
	c.Add(10)
	if got := c.Load(); got != math.MaxInt32 {
		t.Fatalf("Load() = %d, want %d", got, int32(math.MaxInt32))
	}
}

func TestCounter32_FloorsAtZero(t *testing.T) {
	var c Counter32
	c.Store(2)
	c.Add(-10)
	if got := c.Load(); got != 0 {
		t.Fatalf("Load() = %d, want 0", got)
	}
}

func TestFnv64a_DeterministicAcrossSupportedKeyTypes(t *testing.T) {
	if Fnv64a("abc") != Fnv64a("abc") {
		t.Fatal("string hash not deterministic")
	}
	if Fnv64a("abc") == Fnv64a("abd") {
		t.Fatal("distinct strings hashed equal")
	}
	if Fnv64a(uint64(42)) != Fnv64a(uint64(42)) {
		t.Fatal("uint64 hash not deterministic")
	}
	if Fnv64a(uint64(42)) == Fnv64a(uint64(43)) {
		// extremely unlikely but check anyway
		t.Log("warning: adjacent uint64 hashes collided")
	}
}

func TestFnv64a_PanicsOnUnsupportedType(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unsupported key type")
		}
	}()
	Fnv64a(struct{ x int }{x: 1})
}

func TestIsPowerOfTwo(t *testing.T) {
	cases := map[uint64]bool{
		0: false, 1: true, 2: true, 3: false, 4: true, 1023: false, 1024: true,
	}
	for x, want := range cases {
		if got := IsPowerOfTwo(x); got != want {
			t.Fatalf("IsPowerOfTwo(%d) = %v, want %v", x, got, want)
		}
	}
}

func TestNextPow2(t *testing.T) {
	cases := map[uint64]uint64{
		0: 1, 1: 1, 2: 2, 3: 4, 4: 4, 5: 8, 1000: 1024, 1024: 1024,
	}
	for x, want := range cases {
		if got := NextPow2(x); got != want {
			t.Fatalf("NextPow2(%d) = %d, want %d", x, got, want)
		}
	}
}
