// Copyright 2025 Certen Protocol

package indexer

import (
	"github.com/timewave-computer/almanac-sub001/pkg/causality/hash"
	"github.com/timewave-computer/almanac-sub001/pkg/causality/smt"
	"github.com/timewave-computer/almanac-sub001/pkg/causality/storage"
	"github.com/timewave-computer/almanac-sub001/pkg/causality/tracker"
	"github.com/timewave-computer/almanac-sub001/pkg/causality/types"
)

// Builder constructs an Indexer from a Config plus its backends.
type Builder struct {
	config           Config
	smtBackend       smt.Backend
	causalityBackend storage.CausalityBackend
	hasher           hash.Hasher
}

// NewBuilder returns a Builder seeded with DefaultConfig.
func NewBuilder() *Builder {
	return &Builder{config: DefaultConfig()}
}

// WithConfig overrides the default Config.
func (b *Builder) WithConfig(c Config) *Builder {
	b.config = c
	return b
}

// WithSMTBackend sets the SMT backend. Required.
func (b *Builder) WithSMTBackend(backend smt.Backend) *Builder {
	b.smtBackend = backend
	return b
}

// WithCausalityBackend sets the causality backend. Required.
func (b *Builder) WithCausalityBackend(backend storage.CausalityBackend) *Builder {
	b.causalityBackend = backend
	return b
}

// WithHasher overrides the Hasher implied by config.HasherType.
func (b *Builder) WithHasher(hasher hash.Hasher) *Builder {
	b.hasher = hasher
	return b
}

// Build validates the builder's state and returns a ready-to-Initialize
// Indexer.
func (b *Builder) Build() (*Indexer, error) {
	if b.smtBackend == nil {
		return nil, ErrMissingSMTBackend
	}
	if b.causalityBackend == nil {
		return nil, ErrMissingCausalityBackend
	}

	hasher := b.hasher
	if hasher == nil {
		hasher = hash.New(b.config.HasherType)
	}

	idx := &Indexer{
		config:         b.config,
		hasher:         hasher,
		tree:           smt.NewTree(b.smtBackend, hasher),
		store:          storage.NewCausalityStorage(b.causalityBackend, b.smtBackend),
		tracker:        tracker.New(hasher),
		causalityIndex: types.NewCausalityIndex(),
		chainCounters:  make(map[types.ChainId]uint64),
	}
	if b.config.EnableCrossChain {
		idx.crossChainTracker = tracker.NewCrossChainTracker()
	}
	return idx, nil
}
