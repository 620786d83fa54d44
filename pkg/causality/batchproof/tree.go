// Copyright 2025 Certen Protocol
//
// Package batchproof builds a flat binary Merkle tree over the event
// hashes of a (chain, block range) batch and issues portable Receipt
// proofs over it, independent of the indexer's SMT.

package batchproof

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/timewave-computer/almanac-sub001/pkg/causality/hash"
)

var (
	ErrEmptyTree    = errors.New("batchproof: cannot build tree from zero leaves")
	ErrLeafNotFound = errors.New("batchproof: leaf not found in tree")
)

// Position indicates which side of a pair a sibling sits on.
type Position bool

const (
	Left  Position = false
	Right Position = true
)

// Tree is a flat binary Merkle tree over a fixed batch of leaf hashes,
// paired with the same domain-separated Merge used by the SMT so a
// batch root and an SMT root are produced under one mental model.
type Tree struct {
	mu      sync.RWMutex
	hasher  hash.Hasher
	batchID uuid.UUID
	leaves  []hash.Hash
	levels  [][]hash.Hash
	root    hash.Hash
}

// Build constructs a Tree from leaves, assigning it a fresh batch id.
// Odd levels duplicate their final node, matching standard Merkle-tree
// convention.
func Build(hasher hash.Hasher, leaves []hash.Hash) (*Tree, error) {
	if len(leaves) == 0 {
		return nil, ErrEmptyTree
	}

	t := &Tree{
		hasher:  hasher,
		batchID: uuid.New(),
		leaves:  append([]hash.Hash{}, leaves...),
	}

	level := append([]hash.Hash{}, leaves...)
	t.levels = append(t.levels, level)
	for len(level) > 1 {
		next := make([]hash.Hash, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 < len(level) {
				next = append(next, hasher.Merge(level[i], level[i+1]))
			} else {
				next = append(next, hasher.Merge(level[i], level[i]))
			}
		}
		t.levels = append(t.levels, next)
		level = next
	}
	t.root = level[0]
	return t, nil
}

// Root returns the batch's Merkle root.
func (t *Tree) Root() hash.Hash {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.root
}

// LeafCount returns the number of leaves in the batch.
func (t *Tree) LeafCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.leaves)
}

// BatchID returns the unique id assigned to this batch at Build time.
// Every Receipt issued from the same Tree carries the same BatchID.
func (t *Tree) BatchID() uuid.UUID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.batchID
}

// Receipt builds a portable inclusion proof for the leaf at index.
func (t *Tree) Receipt(index int, localBlock uint64) (Receipt, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if index < 0 || index >= len(t.leaves) {
		return Receipt{}, fmt.Errorf("%w: index %d out of range [0,%d)", ErrLeafNotFound, index, len(t.leaves))
	}

	entries := make([]ReceiptEntry, 0, len(t.levels)-1)
	cur := index
	for level := 0; level < len(t.levels)-1; level++ {
		nodes := t.levels[level]

		var siblingIdx int
		var pos Position
		if cur%2 == 0 {
			siblingIdx = cur + 1
			pos = Right
		} else {
			siblingIdx = cur - 1
			pos = Left
		}

		var sibling hash.Hash
		if siblingIdx < len(nodes) {
			sibling = nodes[siblingIdx]
		} else {
			sibling = nodes[cur]
			pos = Right
		}

		entries = append(entries, ReceiptEntry{Hash: sibling, Right: pos == Right})
		cur /= 2
	}

	return Receipt{
		BatchID:    t.batchID,
		Start:      t.leaves[index],
		Anchor:     t.root,
		LocalBlock: localBlock,
		Entries:    entries,
	}, nil
}

// ReceiptByLeaf finds leaf's index and builds its receipt.
func (t *Tree) ReceiptByLeaf(leaf hash.Hash, localBlock uint64) (Receipt, error) {
	t.mu.RLock()
	idx := -1
	for i, l := range t.leaves {
		if l == leaf {
			idx = i
			break
		}
	}
	t.mu.RUnlock()
	if idx == -1 {
		return Receipt{}, ErrLeafNotFound
	}
	return t.Receipt(idx, localBlock)
}
