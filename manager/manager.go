// Package manager is a thin ambient layer standing in for "the
// collaborator serializes construction of a Port for a given name": two
// concurrent requests for the same port name must not race to call
// InitPort twice.
package manager

import (
	"context"
	"sync"

	"github.com/danushkam/openqueue/internal/singleflight"
	"github.com/danushkam/openqueue/port"
	"github.com/danushkam/openqueue/registry"
)

// Manager coalesces concurrent construction of Ports by name and caches
// the result for its own lifetime.
type Manager[P comparable] struct {
	reg   *registry.Registry[P]
	group singleflight.Group[string, *port.Port[P]]

	mu    sync.Mutex
	ports map[string]*port.Port[P]
}

// New constructs a Manager backed by reg.
func New[P comparable](reg *registry.Registry[P]) *Manager[P] {
	return &Manager[P]{reg: reg, ports: make(map[string]*port.Port[P])}
}

// GetOrCreate returns the cached Port for name, constructing it via
// port.New(name, reg, policyName) on first request. Concurrent callers
// for the same name share one construction attempt and its result.
func (m *Manager[P]) GetOrCreate(ctx context.Context, name, policyName string) (*port.Port[P], error) {
	// fast path
	m.mu.Lock()
	if p, ok := m.ports[name]; ok {
		m.mu.Unlock()
		return p, nil
	}
	m.mu.Unlock()

	// singleflight: exactly one real construction for the name, and the
	// result is cached before the in-flight marker is cleared, so a
	// follower arriving just after the leader's fn returns still finds
	// the Port via the fast path above instead of becoming a new leader.
	return m.group.Do(ctx, name, func() (*port.Port[P], error) {
		// double-check after flight join
		m.mu.Lock()
		if p, ok := m.ports[name]; ok {
			m.mu.Unlock()
			return p, nil
		}
		m.mu.Unlock()

		p, err := port.New[P](name, m.reg, policyName)
		if err != nil {
			return nil, err
		}

		m.mu.Lock()
		m.ports[name] = p
		m.mu.Unlock()
		return p, nil
	})
}

// Remove drops name from the cache. The Port itself keeps operating
// under any other reference the caller still holds; only future
// GetOrCreate calls for name are affected.
func (m *Manager[P]) Remove(name string) {
	m.mu.Lock()
	delete(m.ports, name)
	m.mu.Unlock()
}
