// Copyright 2025 Certen Protocol

package tracker

import (
	"sync"

	"github.com/timewave-computer/almanac-sub001/pkg/causality/hash"
	"github.com/timewave-computer/almanac-sub001/pkg/causality/types"
)

// CrossChainTracker holds one Tracker per chain plus the list of
// observed CrossChainReference links, per SPEC_FULL.md §4.8.
type CrossChainTracker struct {
	mu         sync.RWMutex
	byChain    map[types.ChainId]*Tracker
	references []types.CrossChainReference
}

// NewCrossChainTracker returns an empty CrossChainTracker.
func NewCrossChainTracker() *CrossChainTracker {
	return &CrossChainTracker{byChain: make(map[types.ChainId]*Tracker)}
}

// GetChainTracker lazily instantiates a Tracker for chain using the
// default SHA-256 hasher, the way SPEC_FULL.md §4.8 requires.
func (c *CrossChainTracker) GetChainTracker(chain types.ChainId) *Tracker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.byChain[chain]
	if !ok {
		t = New(hash.NewSha256Hasher())
		c.byChain[chain] = t
	}
	return t
}

// AddReference records an observed cross-chain link.
func (c *CrossChainTracker) AddReference(ref types.CrossChainReference) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.references = append(c.references, ref)
}

// References returns every recorded cross-chain reference.
func (c *CrossChainTracker) References() []types.CrossChainReference {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]types.CrossChainReference, len(c.references))
	copy(out, c.references)
	return out
}

// FindCrossChainPaths is an extension point: a complete implementation
// would correlate CrossChainReference entries across each chain's
// Tracker. The default returns no paths, matching SPEC_FULL.md §4.8's
// "the default implementation MAY return empty".
func (c *CrossChainTracker) FindCrossChainPaths(fromHex, toHex string) [][]string {
	return nil
}
