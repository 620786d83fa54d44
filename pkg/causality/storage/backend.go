// Copyright 2025 Certen Protocol
//
// Package storage implements the causality backend and the combined
// CausalityStorage wiring described in SPEC_FULL.md §4.6.

package storage

import (
	"context"

	"github.com/timewave-computer/almanac-sub001/pkg/causality/types"
)

// CausalityBackend is back-end-agnostic persistence for events and the
// index. Writes are idempotent by event id.
type CausalityBackend interface {
	StoreEvent(ctx context.Context, event types.CausalityEvent) error
	GetEvent(ctx context.Context, id string) (types.CausalityEvent, bool, error)
	GetChainEvents(ctx context.Context, chain types.ChainId) ([]types.CausalityEvent, error)
	GetEventsInRange(ctx context.Context, chain types.ChainId, startBlock, endBlock uint64) ([]types.CausalityEvent, error)
	StoreIndex(ctx context.Context, index types.CausalityIndex) error
	GetIndex(ctx context.Context) (types.CausalityIndex, bool, error)
}
