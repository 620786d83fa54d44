// Copyright 2025 Certen Protocol

package indexer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/timewave-computer/almanac-sub001/pkg/causality/graph"
	"github.com/timewave-computer/almanac-sub001/pkg/causality/hash"
	"github.com/timewave-computer/almanac-sub001/pkg/causality/smt"
	"github.com/timewave-computer/almanac-sub001/pkg/causality/storage"
	"github.com/timewave-computer/almanac-sub001/pkg/causality/tracker"
	"github.com/timewave-computer/almanac-sub001/pkg/causality/types"
)

// Indexer is the orchestrator wiring the SMT, the causality tracker, and
// persistence together. Its mutable state is split across four
// independently-locked fields (current root, tracker, index metadata,
// chain counters); process() acquires all four in the fixed order
// root -> tracker -> index -> counters and releases in reverse, per
// SPEC_FULL.md §5.
type Indexer struct {
	config Config
	hasher hash.Hasher
	tree   *smt.Tree
	store  storage.CausalityStorage

	rootMu      sync.RWMutex
	currentRoot hash.Hash

	trackerMu         sync.RWMutex
	tracker           *tracker.Tracker
	crossChainTracker *tracker.CrossChainTracker

	indexMu        sync.RWMutex
	causalityIndex types.CausalityIndex

	countersMu    sync.RWMutex
	chainCounters map[types.ChainId]uint64
}

// withWriteLocks acquires every indexer lock in the fixed order
// root -> tracker -> index -> counters, runs fn, and releases in
// reverse order via defer's LIFO unwinding.
func (idx *Indexer) withWriteLocks(fn func() error) error {
	idx.rootMu.Lock()
	defer idx.rootMu.Unlock()
	idx.trackerMu.Lock()
	defer idx.trackerMu.Unlock()
	idx.indexMu.Lock()
	defer idx.indexMu.Unlock()
	idx.countersMu.Lock()
	defer idx.countersMu.Unlock()
	return fn()
}

// Initialize loads any persisted CausalityIndex, seeds current_root and
// causality_index from it, and recomputes per-chain counters from
// storage so a fresh Indexer over the same backends observes identical
// state to the instance that wrote it (restart consistency).
func (idx *Indexer) Initialize(ctx context.Context) error {
	stored, ok, err := idx.store.Events.GetIndex(ctx)
	if err != nil {
		return fmt.Errorf("indexer: initialize: load index: %w", err)
	}

	idx.indexMu.Lock()
	if ok {
		idx.causalityIndex = stored
	} else {
		idx.causalityIndex = types.NewCausalityIndex()
	}
	chains := append([]types.ChainId{}, idx.causalityIndex.Chains...)
	idx.indexMu.Unlock()

	idx.rootMu.Lock()
	idx.currentRoot = idx.causalityIndex.Root
	idx.rootMu.Unlock()

	if len(idx.config.IndexedChains) > 0 {
		chains = idx.config.IndexedChains
	}
	counters := make(map[types.ChainId]uint64, len(chains))
	for _, c := range chains {
		events, err := idx.store.Events.GetChainEvents(ctx, c)
		if err != nil {
			return fmt.Errorf("indexer: initialize: count chain %q events: %w", c, err)
		}
		counters[c] = uint64(len(events))
	}

	idx.countersMu.Lock()
	idx.chainCounters = counters
	idx.countersMu.Unlock()
	return nil
}

// ProcessEvent builds a CausalityEvent from raw via
// types.CausalityEventFromRaw and runs it through the pipeline.
func (idx *Indexer) ProcessEvent(ctx context.Context, raw types.RawEvent) error {
	return idx.process(ctx, types.CausalityEventFromRaw(raw))
}

// ProcessCausalityEvent runs an already-constructed CausalityEvent
// through the pipeline, for adapters that build richer event data than
// types.CausalityEventFromRaw produces.
func (idx *Indexer) ProcessCausalityEvent(ctx context.Context, event types.CausalityEvent) error {
	return idx.process(ctx, event)
}

func (idx *Indexer) process(ctx context.Context, event types.CausalityEvent) error {
	if !idx.config.chainAllowed(event.ChainId) {
		return nil
	}

	return idx.withWriteLocks(func() error {
		newRoot := idx.currentRoot

		if idx.config.EnableSMT {
			key := event.SmtKey(idx.hasher)
			data, err := event.ToBytes()
			if err != nil {
				return fmt.Errorf("indexer: encode event %q: %w", event.Id, err)
			}
			nr, err := idx.tree.Insert(ctx, idx.currentRoot, key, data)
			if err != nil {
				return fmt.Errorf("indexer: smt insert for event %q: %w", event.Id, err)
			}
			newRoot = nr
		}

		if idx.config.EnableCausalityTracking {
			idx.tracker.AddEvent(event)
		}

		if err := idx.store.Events.StoreEvent(ctx, event); err != nil {
			return fmt.Errorf("indexer: store event %q: %w", event.Id, err)
		}

		idx.currentRoot = newRoot
		idx.causalityIndex.Root = newRoot
		idx.causalityIndex.EventCount++
		if event.Data.Resource != nil {
			idx.causalityIndex.ResourceCount++
		}
		idx.causalityIndex.LastUpdated = time.Now()
		if !chainKnown(idx.causalityIndex.Chains, event.ChainId) {
			idx.causalityIndex.Chains = append(idx.causalityIndex.Chains, event.ChainId)
		}
		idx.chainCounters[event.ChainId]++

		if err := idx.store.Events.StoreIndex(ctx, idx.causalityIndex); err != nil {
			return fmt.Errorf("indexer: store index after event %q: %w", event.Id, err)
		}
		return nil
	})
}

func chainKnown(chains []types.ChainId, chain types.ChainId) bool {
	for _, c := range chains {
		if c == chain {
			return true
		}
	}
	return false
}

// GenerateEventProof looks up the stored event and returns its SMT
// inclusion proof against the current root.
func (idx *Indexer) GenerateEventProof(ctx context.Context, eventID string) (types.SmtProof, bool, error) {
	event, ok, err := idx.store.Events.GetEvent(ctx, eventID)
	if err != nil {
		return types.SmtProof{}, false, fmt.Errorf("indexer: generate proof: load event %q: %w", eventID, err)
	}
	if !ok {
		return types.SmtProof{}, false, nil
	}

	idx.rootMu.RLock()
	root := idx.currentRoot
	idx.rootMu.RUnlock()

	key := event.SmtKey(idx.hasher)
	return idx.tree.Proof(ctx, root, key)
}

// VerifyEventProof looks up the stored event and verifies proof against
// root. Returns false (never an error) on a failed verification.
func (idx *Indexer) VerifyEventProof(ctx context.Context, eventID string, proof types.SmtProof, root hash.Hash) (bool, error) {
	event, ok, err := idx.store.Events.GetEvent(ctx, eventID)
	if err != nil {
		return false, fmt.Errorf("indexer: verify proof: load event %q: %w", eventID, err)
	}
	if !ok {
		return false, nil
	}
	data, err := event.ToBytes()
	if err != nil {
		return false, fmt.Errorf("indexer: verify proof: encode event %q: %w", eventID, err)
	}
	return smt.Verify(idx.hasher, root, data, proof), nil
}

// GetCurrentRoot is a pure read of the tree's current root.
func (idx *Indexer) GetCurrentRoot() hash.Hash {
	idx.rootMu.RLock()
	defer idx.rootMu.RUnlock()
	return idx.currentRoot
}

// GetCausalityIndex is a pure read of the persisted index metadata.
func (idx *Indexer) GetCausalityIndex() types.CausalityIndex {
	idx.indexMu.RLock()
	defer idx.indexMu.RUnlock()
	return idx.causalityIndex
}

// GetCausalityGraph exposes the underlying graph for read-only queries
// (path finding, cycle detection).
func (idx *Indexer) GetCausalityGraph() *graph.Graph {
	idx.trackerMu.RLock()
	defer idx.trackerMu.RUnlock()
	return idx.tracker.Graph
}

// GetCrossChainTracker returns the cross-chain tracker, or nil if
// EnableCrossChain was false at Build time.
func (idx *Indexer) GetCrossChainTracker() *tracker.CrossChainTracker {
	idx.trackerMu.RLock()
	defer idx.trackerMu.RUnlock()
	return idx.crossChainTracker
}

// GetStatistics takes a consistent snapshot across all four guarded
// fields: readers acquire every read lock in the same fixed order used
// by writers, so they observe either all-pre or all-post of one
// process_event call.
func (idx *Indexer) GetStatistics() types.IndexerStatistics {
	idx.rootMu.RLock()
	defer idx.rootMu.RUnlock()
	idx.trackerMu.RLock()
	defer idx.trackerMu.RUnlock()
	idx.indexMu.RLock()
	defer idx.indexMu.RUnlock()
	idx.countersMu.RLock()
	defer idx.countersMu.RUnlock()

	counts := make(map[types.ChainId]uint64, len(idx.chainCounters))
	for k, v := range idx.chainCounters {
		counts[k] = v
	}
	chains := append([]types.ChainId{}, idx.causalityIndex.Chains...)

	return types.IndexerStatistics{
		TotalEvents:      idx.causalityIndex.EventCount,
		TotalResources:   idx.causalityIndex.ResourceCount,
		IndexedChains:    chains,
		CurrentRoot:      idx.currentRoot,
		LastUpdated:      idx.causalityIndex.LastUpdated,
		ChainEventCounts: counts,
	}
}
