// Copyright 2025 Certen Protocol

package storage

import "github.com/timewave-computer/almanac-sub001/pkg/causality/smt"

// CausalityStorage wires a CausalityBackend (events, index) and an SMT
// Backend (tree nodes) together for the indexer, per SPEC_FULL.md §4.6.
type CausalityStorage struct {
	Events CausalityBackend
	Smt    smt.Backend
}

// NewCausalityStorage returns a CausalityStorage wiring the two backends.
func NewCausalityStorage(events CausalityBackend, smtBackend smt.Backend) CausalityStorage {
	return CausalityStorage{Events: events, Smt: smtBackend}
}
