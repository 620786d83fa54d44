// Copyright 2025 Certen Protocol
//
// Package tracker implements the causality tracker: relation derivation
// on event ingestion, and causal-depth analysis over the graph, per
// SPEC_FULL.md §4.5.

package tracker

import (
	"fmt"
	"sync"
	"time"

	"github.com/timewave-computer/almanac-sub001/pkg/causality/graph"
	"github.com/timewave-computer/almanac-sub001/pkg/causality/hash"
	"github.com/timewave-computer/almanac-sub001/pkg/causality/types"
)

// Tracker is a thin wrapper around a Graph plus a Hasher. It performs no
// I/O; its sole side effect outside the graph is optional cross-domain
// key derivation.
type Tracker struct {
	Graph  *graph.Graph
	Hasher hash.Hasher

	mu              sync.RWMutex
	depthMemo       map[string]int
	crossDomainKeys map[string]hash.Hash
}

// New returns a Tracker over a fresh Graph using hasher.
func New(hasher hash.Hasher) *Tracker {
	return &Tracker{
		Graph:           graph.New(),
		Hasher:          hasher,
		depthMemo:       make(map[string]int),
		crossDomainKeys: make(map[string]hash.Hash),
	}
}

// AddEvent inserts event into the graph and derives relations implied by
// event.Data (per SPEC_FULL.md §4.5). The event is inserted first so that
// a resource flow whose to_event is this event has a known endpoint.
func (t *Tracker) AddEvent(event types.CausalityEvent) {
	t.Graph.AddEvent(event)

	switch {
	case event.Data.Effect != nil:
		t.deriveResourceFlowRelations(event, event.Data.Effect)
	case event.Data.CrossDomainMessage != nil:
		key := t.deriveCrossDomainKey(event, event.Data.CrossDomainMessage)
		t.mu.Lock()
		t.crossDomainKeys[event.Id] = key
		t.mu.Unlock()
	}

	t.invalidateDepthMemo()
}

// deriveResourceFlowRelations adds a ResourceFlow relation (strength
// 1.0) for every input resource flow whose from_event is already known
// to the graph.
func (t *Tracker) deriveResourceFlowRelations(event types.CausalityEvent, effect *types.CausalityEffect) {
	for _, flow := range effect.Inputs {
		if _, ok := t.Graph.Event(flow.FromEvent); !ok {
			continue
		}
		rel := types.CausalityRelation{
			FromEntity:    types.StringToHash(flow.FromEvent),
			ToEntity:      types.StringToHash(flow.ToEvent),
			RelationType:  types.RelationResourceFlow,
			Strength:      1.0,
			EstablishedAt: time.Now(),
		}
		_ = t.Graph.AddRelation(rel) // best-effort: absent endpoints are a no-op per §4.5
	}
}

// deriveCrossDomainKey derives the cross-domain lookup key described in
// SPEC_FULL.md §4.5. It does not add a graph relation; AddEvent records
// the result in crossDomainKeys, where CrossDomainKey returns it. The
// recorded keys are not consulted by CrossChainTracker.FindCrossChainPaths,
// which returns no paths.
func (t *Tracker) deriveCrossDomainKey(event types.CausalityEvent, msg *types.CrossDomainMessage) hash.Hash {
	context := fmt.Sprintf("cross-domain:%s:%s", msg.SourceDomain.Hex(), msg.TargetDomain.Hex())
	return t.Hasher.Key(context, []byte(event.Id))
}

// CrossDomainKey returns the cross-domain lookup key recorded for
// eventID, if event.Data.CrossDomainMessage was set when it was added.
func (t *Tracker) CrossDomainKey(eventID string) (hash.Hash, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	k, ok := t.crossDomainKeys[eventID]
	return k, ok
}

func (t *Tracker) invalidateDepthMemo() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.depthMemo = make(map[string]int)
}

// AnalyzeEventCausality computes the causal summary for eventID.
func (t *Tracker) AnalyzeEventCausality(eventID string) (types.EventCausalityAnalysis, bool) {
	event, ok := t.Graph.Event(eventID)
	if !ok {
		return types.EventCausalityAnalysis{}, false
	}
	deps := t.Graph.GetDependencies(eventID)
	dependents := t.Graph.GetDependents(eventID)
	depth := t.CalculateCausalDepth(eventID, make(map[string]bool))

	return types.EventCausalityAnalysis{
		EventId:         eventID,
		ChainId:         event.ChainId,
		DependencyCount: len(deps),
		DependentCount:  len(dependents),
		CausalDepth:     depth,
		IsRoot:          len(deps) == 0,
		IsLeaf:          len(dependents) == 0,
	}, true
}

// CalculateCausalDepth returns the length of the longest dependency
// chain rooted at eventID (DAG longest path), memoised per Tracker
// lifetime until the next AddEvent invalidates the cache. visiting
// guards against a corrupt/cyclic graph turning this into infinite
// recursion.
func (t *Tracker) CalculateCausalDepth(eventID string, visiting map[string]bool) int {
	t.mu.RLock()
	if d, ok := t.depthMemo[eventID]; ok {
		t.mu.RUnlock()
		return d
	}
	t.mu.RUnlock()

	if visiting[eventID] {
		return 0
	}
	visiting[eventID] = true
	defer delete(visiting, eventID)

	deps := t.Graph.GetDependencies(eventID)
	best := 0
	for _, dep := range deps {
		if d := t.CalculateCausalDepth(dep, visiting) + 1; d > best {
			best = d
		}
	}

	t.mu.Lock()
	t.depthMemo[eventID] = best
	t.mu.Unlock()
	return best
}
