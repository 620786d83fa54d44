// Copyright 2025 Certen Protocol

package smt

import (
	"context"
	"fmt"

	"github.com/timewave-computer/almanac-sub001/pkg/causality/hash"
	"github.com/timewave-computer/almanac-sub001/pkg/causality/types"
)

// maxDepth is the trie's fixed bit width: every key is a 256-bit hash.
const maxDepth = hash.Size * 8

// Tree is the Sparse Merkle Tree algorithm over a Backend: insertion,
// lookup, proof generation, and verification. Tree itself holds no
// mutable state beyond its Backend and Hasher, so a Tree value can be
// shared freely; all serialisation happens at the Backend.
type Tree struct {
	backend Backend
	hasher  hash.Hasher
}

// NewTree builds a Tree over backend using hasher.
func NewTree(backend Backend, hasher hash.Hasher) *Tree {
	return &Tree{backend: backend, hasher: hasher}
}

// bitAt returns bit i of k, MSB-first: bit 0 is the most significant bit
// of byte 0. A 1 bit routes to the right child, 0 to the left.
func bitAt(k hash.Hash, i int) bool {
	byteIdx := i / 8
	bitIdx := 7 - (i % 8)
	return (k[byteIdx]>>uint(bitIdx))&1 == 1
}

// isLeaf reports whether node n is a leaf: either the empty hash, or the
// backend holds a smt-key reverse mapping for it.
func (t *Tree) isLeaf(ctx context.Context, n hash.Hash) (bool, error) {
	if n.IsEmpty() {
		return true, nil
	}
	return t.backend.Has(ctx, PrefixKey, n[:])
}

// writeInternal merges left and right, persists the children record, and
// returns the merged hash.
func (t *Tree) writeInternal(ctx context.Context, left, right hash.Hash) (hash.Hash, error) {
	parent := t.hasher.Merge(left, right)
	children := types.SmtChildren{Left: left, Right: right}
	if _, _, err := t.backend.Set(ctx, PrefixNode, parent[:], children.Bytes()); err != nil {
		return hash.Empty, fmt.Errorf("smt: write internal node: %w", err)
	}
	return parent, nil
}

func (t *Tree) readChildren(ctx context.Context, n hash.Hash) (types.SmtChildren, error) {
	raw, ok, err := t.backend.Get(ctx, PrefixNode, n[:])
	if err != nil {
		return types.SmtChildren{}, fmt.Errorf("smt: read internal node: %w", err)
	}
	if !ok {
		return types.SmtChildren{}, ErrCorruptNode
	}
	return types.ChildrenFromBytes(raw)
}

func (t *Tree) readReverseKey(ctx context.Context, leaf hash.Hash) (hash.Hash, error) {
	raw, ok, err := t.backend.Get(ctx, PrefixKey, leaf[:])
	if err != nil {
		return hash.Empty, fmt.Errorf("smt: read reverse key: %w", err)
	}
	if !ok {
		return hash.Empty, ErrCorruptLeaf
	}
	var k hash.Hash
	copy(k[:], raw)
	return k, nil
}

// Insert writes value under key into the tree rooted at root, returning
// the new root. See SPEC_FULL.md §4.3 for the full algorithm.
func (t *Tree) Insert(ctx context.Context, root hash.Hash, key hash.Hash, value []byte) (hash.Hash, error) {
	leaf := t.hasher.Hash(value)
	if _, _, err := t.backend.Set(ctx, PrefixData, key[:], value); err != nil {
		return hash.Empty, fmt.Errorf("smt: write leaf data: %w", err)
	}
	if _, _, err := t.backend.Set(ctx, PrefixKey, leaf[:], key[:]); err != nil {
		return hash.Empty, fmt.Errorf("smt: write reverse key: %w", err)
	}

	if root.IsEmpty() {
		return leaf, nil
	}

	rootIsLeaf, err := t.isLeaf(ctx, root)
	if err != nil {
		return hash.Empty, err
	}
	if rootIsLeaf {
		return t.insertIntoLeaf(ctx, root, key, leaf, 0)
	}
	return t.insertIntoInternal(ctx, root, key, leaf, 0)
}

// insertIntoLeaf handles the case where the node occupying depth is a
// leaf: either a same-key replacement, or a divergence that must grow an
// ancestor chain of internal nodes back up to depth.
func (t *Tree) insertIntoLeaf(ctx context.Context, leafNode hash.Hash, key hash.Hash, leaf hash.Hash, depth int) (hash.Hash, error) {
	oldKey, err := t.readReverseKey(ctx, leafNode)
	if err != nil {
		return hash.Empty, err
	}
	if oldKey == key {
		return leaf, nil // replacement: same key, new value
	}

	d := depth
	for d < maxDepth && bitAt(key, d) == bitAt(oldKey, d) {
		d++
	}
	if d >= maxDepth {
		return hash.Empty, ErrMaxDepthExceeded
	}

	var node hash.Hash
	if bitAt(key, d) {
		node, err = t.writeInternal(ctx, leafNode, leaf)
	} else {
		node, err = t.writeInternal(ctx, leaf, leafNode)
	}
	if err != nil {
		return hash.Empty, err
	}

	for cur := d - 1; cur >= depth; cur-- {
		if bitAt(key, cur) {
			node, err = t.writeInternal(ctx, hash.Empty, node)
		} else {
			node, err = t.writeInternal(ctx, node, hash.Empty)
		}
		if err != nil {
			return hash.Empty, err
		}
	}
	return node, nil
}

// insertIntoInternal handles the case where the node occupying depth is
// an internal node: descend into the child selected by bit(key, depth),
// then rebuild this node with the updated child.
func (t *Tree) insertIntoInternal(ctx context.Context, node hash.Hash, key hash.Hash, leaf hash.Hash, depth int) (hash.Hash, error) {
	if depth >= maxDepth {
		return hash.Empty, ErrMaxDepthExceeded
	}
	children, err := t.readChildren(ctx, node)
	if err != nil {
		return hash.Empty, err
	}

	bit := bitAt(key, depth)
	target := children.Left
	if bit {
		target = children.Right
	}

	var newChild hash.Hash
	switch {
	case target.IsEmpty():
		newChild = leaf
	default:
		targetIsLeaf, err := t.isLeaf(ctx, target)
		if err != nil {
			return hash.Empty, err
		}
		if targetIsLeaf {
			newChild, err = t.insertIntoLeaf(ctx, target, key, leaf, depth+1)
		} else {
			newChild, err = t.insertIntoInternal(ctx, target, key, leaf, depth+1)
		}
		if err != nil {
			return hash.Empty, err
		}
	}

	if bit {
		return t.writeInternal(ctx, children.Left, newChild)
	}
	return t.writeInternal(ctx, newChild, children.Right)
}

// Get returns the leaf value stored under key. Data is stored
// independently of any particular root, so root is not required.
func (t *Tree) Get(ctx context.Context, key hash.Hash) ([]byte, bool, error) {
	return t.backend.Get(ctx, PrefixData, key[:])
}

// Proof walks from root down to key's leaf, recording the sibling hash
// and direction bit at each internal node. The returned proof lists
// siblings bottom-up: index 0 is the leaf's immediate sibling.
func (t *Tree) Proof(ctx context.Context, root hash.Hash, key hash.Hash) (types.SmtProof, bool, error) {
	if root.IsEmpty() {
		return types.SmtProof{}, false, nil
	}

	var siblings []hash.Hash
	var directions []bool

	current := root
	depth := 0
	for {
		isLeaf, err := t.isLeaf(ctx, current)
		if err != nil {
			return types.SmtProof{}, false, err
		}
		if isLeaf {
			break
		}
		if depth >= maxDepth {
			return types.SmtProof{}, false, ErrMaxDepthExceeded
		}
		children, err := t.readChildren(ctx, current)
		if err != nil {
			return types.SmtProof{}, false, err
		}
		bit := bitAt(key, depth)
		chosen, sibling := children.Left, children.Right
		if bit {
			chosen, sibling = children.Right, children.Left
		}
		siblings = append(siblings, sibling)
		directions = append(directions, bit)
		current = chosen
		depth++
	}

	for i, j := 0, len(siblings)-1; i < j; i, j = i+1, j-1 {
		siblings[i], siblings[j] = siblings[j], siblings[i]
		directions[i], directions[j] = directions[j], directions[i]
	}
	return types.SmtProof{Siblings: siblings, Directions: directions}, true, nil
}

// Verify reports whether proof authenticates value against root under
// hasher. The key is not an input: the path is taken from the proof's
// directions. It requires no Backend access: proofs are self-contained.
func Verify(hasher hash.Hasher, root hash.Hash, value []byte, proof types.SmtProof) bool {
	if !proof.Valid() {
		return false
	}
	current := hasher.Hash(value)
	for i, sibling := range proof.Siblings {
		if proof.Directions[i] {
			current = hasher.Merge(sibling, current)
		} else {
			current = hasher.Merge(current, sibling)
		}
	}
	return current == root
}
