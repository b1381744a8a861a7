package manager

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/danushkam/openqueue/policy"
	"github.com/danushkam/openqueue/queue"
	"github.com/danushkam/openqueue/registry"
)

type pkt struct{}

type countingPolicy struct {
	inits *int64
}

func (cp countingPolicy) InitPort(b policy.PortBuilder[*pkt]) error {
	atomic.AddInt64(cp.inits, 1)
	return b.AddQueue("q0", 8)
}
func (cp countingPolicy) Select(policy.PortView[*pkt], *pkt) int { return 0 }
func (cp countingPolicy) Congested(*queue.DualIndexQueue[*pkt]) bool      { return false }
func (cp countingPolicy) OnCongestion(*queue.DualIndexQueue[*pkt], *pkt) policy.Action {
	return policy.DropTail
}
func (cp countingPolicy) AdmissionKey(*queue.DualIndexQueue[*pkt], *pkt) uint64  { return 0 }
func (cp countingPolicy) ProcessingKey(*queue.DualIndexQueue[*pkt], *pkt) uint64 { return 0 }
func (cp countingPolicy) Schedule(policy.PortView[*pkt]) (int, bool)             { return 0, false }

func TestManager_GetOrCreate_CoalescesConcurrentConstruction(t *testing.T) {
	var inits int64
	reg := registry.New[*pkt]()
	if err := reg.Register("counting", func() policy.Policy[*pkt] {
		return countingPolicy{inits: &inits}
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	mgr := New[*pkt](reg)

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		go func(idx int) {
			defer wg.Done()
			_, errs[idx] = mgr.GetOrCreate(context.Background(), "shared", "counting")
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("GetOrCreate[%d]: %v", i, err)
		}
	}
	if got := atomic.LoadInt64(&inits); got != 1 {
		t.Fatalf("InitPort ran %d times, want 1", got)
	}
}

func TestManager_GetOrCreate_CachesByName(t *testing.T) {
	var inits int64
	reg := registry.New[*pkt]()
	if err := reg.Register("counting", func() policy.Policy[*pkt] {
		return countingPolicy{inits: &inits}
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	mgr := New[*pkt](reg)

	p1, err := mgr.GetOrCreate(context.Background(), "p0", "counting")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	p2, err := mgr.GetOrCreate(context.Background(), "p0", "counting")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if p1 != p2 {
		t.Fatal("expected the same cached Port for the same name")
	}

	mgr.Remove("p0")
	p3, err := mgr.GetOrCreate(context.Background(), "p0", "counting")
	if err != nil {
		t.Fatalf("GetOrCreate after Remove: %v", err)
	}
	if p3 == p1 {
		t.Fatal("expected a fresh Port after Remove")
	}
}
