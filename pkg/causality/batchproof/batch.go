// Copyright 2025 Certen Protocol

package batchproof

import (
	"fmt"

	"github.com/timewave-computer/almanac-sub001/pkg/causality/hash"
	"github.com/timewave-computer/almanac-sub001/pkg/causality/types"
)

// BuildBatch hashes each event's canonical encoding into a leaf and
// builds a Tree over events[chain][fromBlock,toBlock], in the order
// given. The returned Tree is assigned a fresh batch id, shared by
// every Receipt issued from it. Callers are responsible for filtering
// events to the desired chain and block range before calling BuildBatch.
func BuildBatch(hasher hash.Hasher, events []types.CausalityEvent) (*Tree, error) {
	leaves := make([]hash.Hash, 0, len(events))
	for i, event := range events {
		data, err := event.ToBytes()
		if err != nil {
			return nil, fmt.Errorf("batchproof: encode event %q (index %d): %w", event.Id, i, err)
		}
		leaves = append(leaves, hasher.Hash(data))
	}
	return Build(hasher, leaves)
}
