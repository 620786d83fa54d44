// Copyright 2025 Certen Protocol

package batchproof

import (
	"testing"

	"github.com/google/uuid"

	"github.com/timewave-computer/almanac-sub001/pkg/causality/hash"
)

func leavesFromStrings(hasher hash.Hasher, values ...string) []hash.Hash {
	out := make([]hash.Hash, len(values))
	for i, v := range values {
		out[i] = hasher.Hash([]byte(v))
	}
	return out
}

func TestBuildRejectsEmptyLeaves(t *testing.T) {
	if _, err := Build(hash.NewSha256Hasher(), nil); err != ErrEmptyTree {
		t.Fatalf("expected ErrEmptyTree, got %v", err)
	}
}

func TestSingleLeafRootIsTheLeafItself(t *testing.T) {
	hasher := hash.NewSha256Hasher()
	leaf := hasher.Hash([]byte("only"))
	tree, err := Build(hasher, []hash.Hash{leaf})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if tree.Root() != leaf {
		t.Fatalf("expected single-leaf root to equal the leaf itself")
	}
}

func TestReceiptVerifiesForEveryLeaf(t *testing.T) {
	hasher := hash.NewSha256Hasher()
	leaves := leavesFromStrings(hasher, "a", "b", "c", "d", "e")
	tree, err := Build(hasher, leaves)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	for i := range leaves {
		receipt, err := tree.Receipt(i, 100)
		if err != nil {
			t.Fatalf("receipt(%d): %v", i, err)
		}
		if !receipt.Verify(hasher) {
			t.Fatalf("receipt for leaf %d failed to verify", i)
		}
		if receipt.Anchor != tree.Root() {
			t.Fatalf("receipt anchor must equal tree root")
		}
	}
}

func TestReceiptByLeafFindsCorrectIndex(t *testing.T) {
	hasher := hash.NewSha256Hasher()
	leaves := leavesFromStrings(hasher, "a", "b", "c")
	tree, err := Build(hasher, leaves)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	receipt, err := tree.ReceiptByLeaf(leaves[1], 1)
	if err != nil {
		t.Fatalf("receipt by leaf: %v", err)
	}
	if receipt.Start != leaves[1] {
		t.Fatalf("expected receipt start to equal leaves[1]")
	}
	if !receipt.Verify(hasher) {
		t.Fatalf("expected receipt to verify")
	}
}

func TestReceiptByLeafMissingLeaf(t *testing.T) {
	hasher := hash.NewSha256Hasher()
	tree, err := Build(hasher, leavesFromStrings(hasher, "a", "b"))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, err := tree.ReceiptByLeaf(hasher.Hash([]byte("missing")), 1); err != ErrLeafNotFound {
		t.Fatalf("expected ErrLeafNotFound, got %v", err)
	}
}

func TestTamperedReceiptFailsVerification(t *testing.T) {
	hasher := hash.NewSha256Hasher()
	leaves := leavesFromStrings(hasher, "a", "b", "c", "d")
	tree, err := Build(hasher, leaves)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	receipt, err := tree.Receipt(0, 1)
	if err != nil {
		t.Fatalf("receipt: %v", err)
	}
	if len(receipt.Entries) == 0 {
		t.Fatalf("expected a nonzero path for a 4-leaf tree")
	}
	receipt.Entries[0].Hash = hasher.Hash([]byte("tampered"))
	if receipt.Verify(hasher) {
		t.Fatalf("expected tampered receipt to fail verification")
	}
}

func TestReceiptsFromSameTreeShareBatchID(t *testing.T) {
	hasher := hash.NewSha256Hasher()
	leaves := leavesFromStrings(hasher, "a", "b", "c")
	tree, err := Build(hasher, leaves)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if tree.BatchID() == uuid.Nil {
		t.Fatalf("expected a non-nil batch id")
	}

	r0, err := tree.Receipt(0, 1)
	if err != nil {
		t.Fatalf("receipt(0): %v", err)
	}
	r1, err := tree.Receipt(1, 1)
	if err != nil {
		t.Fatalf("receipt(1): %v", err)
	}
	if r0.BatchID != tree.BatchID() || r1.BatchID != tree.BatchID() {
		t.Fatalf("expected every receipt from the same tree to carry the tree's batch id")
	}
}

func TestDomainSeparationMatchesSMTHasher(t *testing.T) {
	hasher := hash.NewSha256Hasher()
	merged := hasher.Merge(hasher.Hash([]byte("a")), hasher.Hash([]byte("b")))

	tree, err := Build(hasher, leavesFromStrings(hasher, "a", "b"))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if tree.Root() != merged {
		t.Fatalf("expected batch pairing to use the same domain-separated Merge as the SMT hasher")
	}
}
