// Copyright 2025 Certen Protocol
//
// CometBFTDBBackend wraps a cometbft-db handle as an SMT Backend, storing
// each record under a "prefix/key" byte key.

package smt

import (
	"context"
	"sync"

	dbm "github.com/cometbft/cometbft-db"
)

// CometBFTDBBackend adapts a cometbft-db handle to Backend. dbm.DB has no
// atomic get-and-set, so writes are serialised behind a mutex to give Set
// its previous-value-return and same-key ordering guarantees.
type CometBFTDBBackend struct {
	mu sync.Mutex
	db dbm.DB
}

var _ Backend = (*CometBFTDBBackend)(nil)

// NewCometBFTDBBackend wraps db as a Backend.
func NewCometBFTDBBackend(db dbm.DB) *CometBFTDBBackend {
	return &CometBFTDBBackend{db: db}
}

func (c *CometBFTDBBackend) Get(_ context.Context, prefix string, key []byte) ([]byte, bool, error) {
	v, err := c.db.Get(compositeKeyBytes(prefix, key))
	if err != nil {
		return nil, false, err
	}
	return v, v != nil, nil
}

func (c *CometBFTDBBackend) Set(_ context.Context, prefix string, key []byte, value []byte) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := compositeKeyBytes(prefix, key)
	prev, err := c.db.Get(k)
	if err != nil {
		return nil, false, err
	}
	if err := c.db.SetSync(k, value); err != nil {
		return nil, false, err
	}
	return prev, prev != nil, nil
}

func (c *CometBFTDBBackend) Remove(_ context.Context, prefix string, key []byte) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := compositeKeyBytes(prefix, key)
	prev, err := c.db.Get(k)
	if err != nil {
		return nil, false, err
	}
	if err := c.db.DeleteSync(k); err != nil {
		return nil, false, err
	}
	return prev, prev != nil, nil
}

func (c *CometBFTDBBackend) Has(_ context.Context, prefix string, key []byte) (bool, error) {
	return c.db.Has(compositeKeyBytes(prefix, key))
}

func compositeKeyBytes(prefix string, key []byte) []byte {
	out := make([]byte, 0, len(prefix)+1+len(key))
	out = append(out, []byte(prefix)...)
	out = append(out, '/')
	out = append(out, key...)
	return out
}
