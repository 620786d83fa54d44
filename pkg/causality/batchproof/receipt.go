// Copyright 2025 Certen Protocol

package batchproof

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/timewave-computer/almanac-sub001/pkg/causality/hash"
)

// Receipt is a portable Merkle proof that a leaf hash belongs to a batch
// rooted at Anchor. It can be re-verified independently via Verify,
// without trusting whoever issued it.
type Receipt struct {
	// BatchID identifies the batch this receipt was issued from.
	BatchID uuid.UUID `json:"batch_id"`
	// Start is the leaf hash being proven.
	Start hash.Hash `json:"start"`
	// Anchor is the batch root reached by applying Entries to Start.
	Anchor hash.Hash `json:"anchor"`
	// LocalBlock is the block number passed to Tree.Receipt when the
	// receipt was issued; the tree stores it as given and does not check it.
	LocalBlock uint64 `json:"local_block"`
	// Entries is the sibling path from Start to Anchor, bottom-up.
	Entries []ReceiptEntry `json:"entries"`
}

// ReceiptEntry is one sibling step in a Receipt's path.
type ReceiptEntry struct {
	Hash hash.Hash `json:"hash"`
	// Right reports whether Hash sits to the right of the running value:
	// true computes Merge(current, Hash), false computes Merge(Hash, current).
	Right bool `json:"right"`
}

// Verify recomputes the batch root from r.Start through r.Entries using
// hasher and reports whether it equals r.Anchor.
func (r Receipt) Verify(hasher hash.Hasher) bool {
	current := r.Start
	for _, entry := range r.Entries {
		if entry.Right {
			current = hasher.Merge(current, entry.Hash)
		} else {
			current = hasher.Merge(entry.Hash, current)
		}
	}
	return current == r.Anchor
}

// ComputeRoot recomputes the root from r.Start through r.Entries without
// comparing it against r.Anchor.
func (r Receipt) ComputeRoot(hasher hash.Hasher) hash.Hash {
	current := r.Start
	for _, entry := range r.Entries {
		if entry.Right {
			current = hasher.Merge(current, entry.Hash)
		} else {
			current = hasher.Merge(entry.Hash, current)
		}
	}
	return current
}

// Validate reports a descriptive error if the receipt's recomputed root
// does not match its Anchor, fail-closed.
func (r Receipt) Validate(hasher hash.Hasher) error {
	computed := r.ComputeRoot(hasher)
	if computed != r.Anchor {
		return fmt.Errorf("batchproof: recomputation mismatch: computed=%x, anchor=%x", computed, r.Anchor)
	}
	return nil
}
