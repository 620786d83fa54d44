// Copyright 2025 Certen Protocol

package storage

import (
	"context"
	"sync"

	"github.com/timewave-computer/almanac-sub001/pkg/causality/types"
)

// MemoryCausalityBackend is the in-process CausalityBackend: single
// mutex-guarded maps, following the single-writer-store convention used
// throughout this module's in-memory backends.
type MemoryCausalityBackend struct {
	mu     sync.RWMutex
	events map[string]types.CausalityEvent
	index  *types.CausalityIndex
}

var _ CausalityBackend = (*MemoryCausalityBackend)(nil)

// NewMemoryCausalityBackend returns an empty MemoryCausalityBackend.
func NewMemoryCausalityBackend() *MemoryCausalityBackend {
	return &MemoryCausalityBackend{events: make(map[string]types.CausalityEvent)}
}

func (m *MemoryCausalityBackend) StoreEvent(_ context.Context, event types.CausalityEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[event.Id] = event
	return nil
}

func (m *MemoryCausalityBackend) GetEvent(_ context.Context, id string) (types.CausalityEvent, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.events[id]
	return e, ok, nil
}

func (m *MemoryCausalityBackend) GetChainEvents(_ context.Context, chain types.ChainId) ([]types.CausalityEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []types.CausalityEvent
	for _, e := range m.events {
		if e.ChainId == chain {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MemoryCausalityBackend) GetEventsInRange(_ context.Context, chain types.ChainId, startBlock, endBlock uint64) ([]types.CausalityEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []types.CausalityEvent
	for _, e := range m.events {
		if e.ChainId == chain && e.BlockNumber >= startBlock && e.BlockNumber <= endBlock {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MemoryCausalityBackend) StoreIndex(_ context.Context, index types.CausalityIndex) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := index
	m.index = &idx
	return nil
}

func (m *MemoryCausalityBackend) GetIndex(_ context.Context) (types.CausalityIndex, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.index == nil {
		return types.CausalityIndex{}, false, nil
	}
	return *m.index, true, nil
}
