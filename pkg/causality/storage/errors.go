// Copyright 2025 Certen Protocol
//
// Package storage provides sentinel errors for causality storage
// operations.
// F.4 remediation: Explicit errors instead of nil, nil returns

package storage

import "errors"

var (
	// ErrEventNotFound names the absence of a requested event. The
	// backends in this package do not return it: GetEvent reports absence
	// through its bool result with a nil error.
	ErrEventNotFound = errors.New("causality storage: event not found")

	// ErrIndexNotFound names the absence of a persisted CausalityIndex.
	// The backends in this package do not return it: GetIndex reports
	// absence through its bool result with a nil error.
	ErrIndexNotFound = errors.New("causality storage: index not found")
)
