package registry

import (
	"context"
	"sync"
	"time"
)

// MemoryRegistry keeps connection records in process memory. Used for
// single-node deployments and tests.
type MemoryRegistry struct {
	mu    sync.RWMutex
	conns map[string]Connection
}

var _ Registry = (*MemoryRegistry)(nil)

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		conns: make(map[string]Connection),
	}
}

func (r *MemoryRegistry) Connect(_ context.Context, connectionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[connectionID] = Connection{
		ConnectionID: connectionID,
		Timestamp:    time.Now().UnixMilli(),
	}
	return nil
}

func (r *MemoryRegistry) Disconnect(_ context.Context, connectionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, connectionID)
	return nil
}

func (r *MemoryRegistry) List(_ context.Context) ([]Connection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Connection, 0, len(r.conns))
	for _, c := range r.conns {
		out = append(out, c)
	}
	return out, nil
}
