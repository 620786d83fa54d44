// Copyright 2025 Certen Protocol
//
// Package graph implements the in-memory causality graph: typed entity
// maps, forward/reverse relation adjacency, and causal path/cycle
// discovery, per SPEC_FULL.md §4.4.

package graph

import (
	"sync"

	"github.com/timewave-computer/almanac-sub001/pkg/causality/hash"
	"github.com/timewave-computer/almanac-sub001/pkg/causality/types"
)

// Graph is the shared read-many/write-one causality graph. The indexer
// serialises all writers; Graph's own mutex only guards against readers
// observing a partially-applied mutation.
type Graph struct {
	mu sync.RWMutex

	resources    map[hash.Hash]types.CausalityResource
	effects      map[hash.Hash]types.CausalityEffect
	transactions map[hash.Hash]types.CausalityTransaction
	intents      map[hash.Hash]types.CausalityIntent
	handlers     map[hash.Hash]types.CausalityHandler
	domains      map[hash.Hash]types.CausalityDomain
	nullifiers   map[hash.Hash]types.CausalityNullifier

	events      map[string]types.CausalityEvent
	eventHashes map[hash.Hash]string // string_to_hash(id) -> id

	relations        map[hash.Hash][]types.CausalityRelation // from_hash -> forward adjacency
	reverseRelations map[hash.Hash][]hash.Hash                // to_hash -> from_hash back edges

	domainEntities map[types.DomainId]map[hash.Hash]struct{}
	chainEvents    map[types.ChainId]map[string]struct{}
}

// New returns an empty Graph.
func New() *Graph {
	return &Graph{
		resources:        make(map[hash.Hash]types.CausalityResource),
		effects:          make(map[hash.Hash]types.CausalityEffect),
		transactions:     make(map[hash.Hash]types.CausalityTransaction),
		intents:          make(map[hash.Hash]types.CausalityIntent),
		handlers:         make(map[hash.Hash]types.CausalityHandler),
		domains:          make(map[hash.Hash]types.CausalityDomain),
		nullifiers:       make(map[hash.Hash]types.CausalityNullifier),
		events:           make(map[string]types.CausalityEvent),
		eventHashes:      make(map[hash.Hash]string),
		relations:        make(map[hash.Hash][]types.CausalityRelation),
		reverseRelations: make(map[hash.Hash][]hash.Hash),
		domainEntities:   make(map[types.DomainId]map[hash.Hash]struct{}),
		chainEvents:      make(map[types.ChainId]map[string]struct{}),
	}
}

func (g *Graph) addDomainEntity(d types.DomainId, h hash.Hash) {
	set, ok := g.domainEntities[d]
	if !ok {
		set = make(map[hash.Hash]struct{})
		g.domainEntities[d] = set
	}
	set[h] = struct{}{}
}

// AddResource inserts or replaces a resource entity.
func (g *Graph) AddResource(r types.CausalityResource) {
	g.mu.Lock()
	defer g.mu.Unlock()
	h := r.Id.Inner()
	g.resources[h] = r
	g.addDomainEntity(r.Domain, h)
}

// AddEffect inserts or replaces an effect entity.
func (g *Graph) AddEffect(e types.CausalityEffect) {
	g.mu.Lock()
	defer g.mu.Unlock()
	h := e.Id.Inner()
	g.effects[h] = e
	g.addDomainEntity(e.Domain, h)
}

// AddTransaction inserts or replaces a transaction entity.
func (g *Graph) AddTransaction(t types.CausalityTransaction) {
	g.mu.Lock()
	defer g.mu.Unlock()
	h := t.Id.Inner()
	g.transactions[h] = t
	g.addDomainEntity(t.Domain, h)
}

// AddIntent inserts or replaces an intent entity.
func (g *Graph) AddIntent(i types.CausalityIntent) {
	g.mu.Lock()
	defer g.mu.Unlock()
	h := i.Id.Inner()
	g.intents[h] = i
	g.addDomainEntity(i.Domain, h)
}

// AddHandler inserts or replaces a handler entity.
func (g *Graph) AddHandler(h2 types.CausalityHandler) {
	g.mu.Lock()
	defer g.mu.Unlock()
	h := h2.Id.Inner()
	g.handlers[h] = h2
	g.addDomainEntity(h2.Domain, h)
}

// AddDomain inserts or replaces a domain entity.
func (g *Graph) AddDomain(d types.CausalityDomain) {
	g.mu.Lock()
	defer g.mu.Unlock()
	h := d.Id.Inner()
	g.domains[h] = d
	g.addDomainEntity(d.Domain, h)
}

// AddNullifier inserts or replaces a nullifier entity.
func (g *Graph) AddNullifier(n types.CausalityNullifier) {
	g.mu.Lock()
	defer g.mu.Unlock()
	h := n.Id.Inner()
	g.nullifiers[h] = n
	g.addDomainEntity(n.Domain, h)
}

// AddEvent inserts or replaces an event, indexed by its string id and
// chain, and records its string_to_hash identity for relation lookups.
func (g *Graph) AddEvent(event types.CausalityEvent) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.events[event.Id] = event
	g.eventHashes[types.StringToHash(event.Id)] = event.Id

	set, ok := g.chainEvents[event.ChainId]
	if !ok {
		set = make(map[string]struct{})
		g.chainEvents[event.ChainId] = set
	}
	set[event.Id] = struct{}{}
}

// Event returns the event stored under id, if any.
func (g *Graph) Event(id string) (types.CausalityEvent, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	e, ok := g.events[id]
	return e, ok
}

// ChainEvents returns every event ingested for chain.
func (g *Graph) ChainEvents(chain types.ChainId) []types.CausalityEvent {
	g.mu.RLock()
	defer g.mu.RUnlock()
	ids := g.chainEvents[chain]
	out := make([]types.CausalityEvent, 0, len(ids))
	for id := range ids {
		out = append(out, g.events[id])
	}
	return out
}

// knownHash reports whether h identifies any entity or event currently
// in the graph. Callers must hold at least a read lock.
func (g *Graph) knownHash(h hash.Hash) bool {
	if _, ok := g.resources[h]; ok {
		return true
	}
	if _, ok := g.effects[h]; ok {
		return true
	}
	if _, ok := g.transactions[h]; ok {
		return true
	}
	if _, ok := g.intents[h]; ok {
		return true
	}
	if _, ok := g.handlers[h]; ok {
		return true
	}
	if _, ok := g.domains[h]; ok {
		return true
	}
	if _, ok := g.nullifiers[h]; ok {
		return true
	}
	if _, ok := g.eventHashes[h]; ok {
		return true
	}
	return false
}

// AddRelation records a directed edge between two known entities/events.
// It fails with ErrRelationNotFound if either endpoint cannot be
// resolved to a known hash, per testable property 9.
func (g *Graph) AddRelation(r types.CausalityRelation) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.knownHash(r.FromEntity) || !g.knownHash(r.ToEntity) {
		return ErrRelationNotFound
	}
	g.relations[r.FromEntity] = append(g.relations[r.FromEntity], r)
	g.reverseRelations[r.ToEntity] = append(g.reverseRelations[r.ToEntity], r.FromEntity)
	return nil
}

// GetDependents returns the forward relations rooted at eventID's hash.
func (g *Graph) GetDependents(eventID string) []types.CausalityRelation {
	h := types.StringToHash(eventID)
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]types.CausalityRelation, len(g.relations[h]))
	copy(out, g.relations[h])
	return out
}

// GetDependencies returns the string ids of the events feeding into
// eventID, where known.
func (g *Graph) GetDependencies(eventID string) []string {
	h := types.StringToHash(eventID)
	g.mu.RLock()
	defer g.mu.RUnlock()
	froms := g.reverseRelations[h]
	out := make([]string, 0, len(froms))
	for _, f := range froms {
		if id, ok := g.eventHashes[f]; ok {
			out = append(out, id)
		}
	}
	return out
}

// FindCausalPath enumerates every simple path from fromHex to toHex over
// the relation graph, operating purely on hex-encoded Hash identity
// (never mixing in string_to_hash), per SPEC_FULL.md §9. It terminates
// via a visited set and returns every path found, not only the shortest.
func (g *Graph) FindCausalPath(fromHex, toHex string) ([][]string, error) {
	from, err := types.HashFromHex(fromHex)
	if err != nil {
		return nil, err
	}
	to, err := types.HashFromHex(toHex)
	if err != nil {
		return nil, err
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	var paths [][]string
	visited := map[hash.Hash]bool{from: true}
	path := []hash.Hash{from}

	var dfs func(current hash.Hash)
	dfs = func(current hash.Hash) {
		if current == to {
			paths = append(paths, hashesToHex(path))
			return
		}
		for _, rel := range g.relations[current] {
			next := rel.ToEntity
			if visited[next] {
				continue
			}
			visited[next] = true
			path = append(path, next)
			dfs(next)
			path = path[:len(path)-1]
			visited[next] = false
		}
	}
	dfs(from)
	return paths, nil
}

// FindCycles enumerates cycles in the relation graph via DFS, reporting
// each cycle once starting at its entry point.
func (g *Graph) FindCycles() [][]string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	visitedGlobal := make(map[hash.Hash]bool)
	onStack := make(map[hash.Hash]bool)
	var stack []hash.Hash
	var cycles [][]string

	var dfs func(node hash.Hash)
	dfs = func(node hash.Hash) {
		visitedGlobal[node] = true
		onStack[node] = true
		stack = append(stack, node)

		for _, rel := range g.relations[node] {
			next := rel.ToEntity
			if onStack[next] {
				idx := indexOfHash(stack, next)
				if idx >= 0 {
					cycle := append([]hash.Hash{}, stack[idx:]...)
					cycles = append(cycles, hashesToHex(cycle))
				}
				continue
			}
			if !visitedGlobal[next] {
				dfs(next)
			}
		}

		stack = stack[:len(stack)-1]
		onStack[node] = false
	}

	nodes := make([]hash.Hash, 0, len(g.relations))
	for n := range g.relations {
		nodes = append(nodes, n)
	}
	for _, n := range nodes {
		if !visitedGlobal[n] {
			dfs(n)
		}
	}
	return cycles
}

func hashesToHex(hs []hash.Hash) []string {
	out := make([]string, len(hs))
	for i, h := range hs {
		out[i] = types.HashToHex(h)
	}
	return out
}

func indexOfHash(hs []hash.Hash, target hash.Hash) int {
	for i, h := range hs {
		if h == target {
			return i
		}
	}
	return -1
}
