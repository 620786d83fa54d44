// Copyright 2025 Certen Protocol
//
// Package smt implements the Sparse Merkle Tree engine: a pluggable
// content-addressed key-value Backend plus the Tree algorithm (insert,
// proof generation, proof verification) described in SPEC_FULL.md §4.2-4.3.

package smt

import "context"

// Storage prefix namespaces. smt-node holds internal node children
// records; smt-data holds leaf values keyed by the user key; smt-key is
// the reverse mapping from leaf hash to user key that the leaf policy
// relies on.
const (
	PrefixNode = "smt-node"
	PrefixData = "smt-data"
	PrefixKey  = "smt-key"
)

// Backend is the content-addressed key-value contract the Tree is built
// on. Implementations MUST be clone-cheap (handle-style) and MUST
// serialise concurrent writes to the same (prefix, key) pair.
type Backend interface {
	// Get fetches the value stored under (prefix, key). The bool reports
	// whether the key was present.
	Get(ctx context.Context, prefix string, key []byte) ([]byte, bool, error)
	// Set stores value under (prefix, key), atomically, and returns the
	// previous value if one existed.
	Set(ctx context.Context, prefix string, key []byte, value []byte) ([]byte, bool, error)
	// Remove deletes (prefix, key) and returns the previous value if any.
	Remove(ctx context.Context, prefix string, key []byte) ([]byte, bool, error)
	// Has reports whether (prefix, key) is present, without fetching it.
	Has(ctx context.Context, prefix string, key []byte) (bool, error)
}
