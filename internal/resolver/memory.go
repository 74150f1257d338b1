package resolver

import (
	"context"
	"sync"
)

// Memory is the in-process resolver used by the sequential strategy. It is
// safe for concurrent use so the optimized strategy's batch workers can share
// one instance when no redis address is configured.
type Memory struct {
	mu  sync.RWMutex
	ids map[string]uint
}

var _ Resolver = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{ids: make(map[string]uint)}
}

func (m *Memory) Put(_ context.Context, xref string, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.ids[xref]; exists {
		return duplicateErr(xref)
	}
	m.ids[xref] = id
	return nil
}

func (m *Memory) Get(_ context.Context, xref string) (uint, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.ids[xref]
	return id, ok
}

func (m *Memory) Close(context.Context) error {
	return nil
}

// Len reports how many xrefs have been resolved so far.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.ids)
}
