// Copyright 2025 Certen Protocol

package indexer

import "errors"

var (
	// ErrMissingSMTBackend is returned by Builder.Build when no SMT
	// backend has been configured.
	ErrMissingSMTBackend = errors.New("indexer: smt backend not configured")

	// ErrMissingCausalityBackend is returned by Builder.Build when no
	// causality backend has been configured.
	ErrMissingCausalityBackend = errors.New("indexer: causality backend not configured")
)
