// Copyright 2025 Certen Protocol

package smt

import (
	"context"
	"encoding/hex"
	"sync"
)

// MemoryBackend is the in-process Backend: a single mutex-guarded map,
// matching the single-writer-per-store pattern used elsewhere in this
// module for in-memory stores.
type MemoryBackend struct {
	mu   sync.Mutex
	data map[string][]byte
}

var _ Backend = (*MemoryBackend)(nil)

// NewMemoryBackend returns an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]byte)}
}

func compositeKey(prefix string, key []byte) string {
	return prefix + "/" + hex.EncodeToString(key)
}

func (m *MemoryBackend) Get(_ context.Context, prefix string, key []byte) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[compositeKey(prefix, key)]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (m *MemoryBackend) Set(_ context.Context, prefix string, key []byte, value []byte) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := compositeKey(prefix, key)
	prev, had := m.data[k]
	stored := make([]byte, len(value))
	copy(stored, value)
	m.data[k] = stored
	return prev, had, nil
}

func (m *MemoryBackend) Remove(_ context.Context, prefix string, key []byte) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := compositeKey(prefix, key)
	prev, had := m.data[k]
	delete(m.data, k)
	return prev, had, nil
}

func (m *MemoryBackend) Has(_ context.Context, prefix string, key []byte) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[compositeKey(prefix, key)]
	return ok, nil
}
