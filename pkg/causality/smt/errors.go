// Copyright 2025 Certen Protocol

package smt

import "errors"

// Sentinel errors returned by Tree and Backend operations.
var (
	// ErrMaxDepthExceeded is returned when a walk would exceed the trie's
	// fixed 256-bit depth. This can only happen on a corrupt tree, since
	// well-formed keys diverge within 256 bits by construction.
	ErrMaxDepthExceeded = errors.New("smt: max depth exceeded")

	// ErrCorruptLeaf is returned when a node identified as a leaf by the
	// leaf policy has no reverse key mapping.
	ErrCorruptLeaf = errors.New("smt: leaf has no reverse key mapping")

	// ErrCorruptNode is returned when an internal node's children record
	// cannot be read from the backend.
	ErrCorruptNode = errors.New("smt: internal node missing children record")
)
