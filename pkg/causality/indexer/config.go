// Copyright 2025 Certen Protocol
//
// Package indexer implements the causality indexer orchestrator: it
// drives SMT updates, the causality tracker, and persistence for every
// ingested event, per SPEC_FULL.md §4.7.

package indexer

import (
	"github.com/timewave-computer/almanac-sub001/pkg/causality/hash"
	"github.com/timewave-computer/almanac-sub001/pkg/causality/types"
)

// Config controls which pipeline steps process_event runs and how the
// indexer is wired.
type Config struct {
	EnableSMT               bool
	EnableCausalityTracking bool
	MaxSMTDepth             int
	BatchSize               int
	EnableCrossChain        bool
	IndexedChains           []types.ChainId
	HasherType              hash.Type
}

// DefaultConfig returns the configuration described as the default in
// SPEC_FULL.md §4.7: SMT and causality tracking on, no chain allow-list,
// SHA-256 hashing.
func DefaultConfig() Config {
	return Config{
		EnableSMT:               true,
		EnableCausalityTracking: true,
		MaxSMTDepth:             256,
		BatchSize:               100,
		EnableCrossChain:        false,
		HasherType:              hash.TypeSha256,
	}
}

func (c Config) chainAllowed(chain types.ChainId) bool {
	if len(c.IndexedChains) == 0 {
		return true
	}
	for _, allowed := range c.IndexedChains {
		if allowed == chain {
			return true
		}
	}
	return false
}
