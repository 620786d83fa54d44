// Copyright 2025 Certen Protocol
//
// Package hash provides the pluggable, domain-separated hashing primitive
// that underlies the Sparse Merkle Tree and the causality graph's identity
// scheme.

package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"lukechampine.com/blake3"
)

const (
	domainLeaf  byte = 0x00
	domainMerge byte = 0x01
)

// Size is the fixed output width of every Hasher in this package.
const Size = 32

// Hash is a fixed 32-byte content-addressed value.
type Hash [Size]byte

// Empty is the all-zero hash, used as the SMT's empty-subtree sentinel.
var Empty = Hash{}

// IsEmpty reports whether h is the all-zero hash.
func (h Hash) IsEmpty() bool {
	return h == Empty
}

// MarshalJSON renders h as a lowercase hex string, so canonical-JSON
// payloads carry hashes legibly instead of as byte arrays.
func (h Hash) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(h[:]))
}

// UnmarshalJSON parses a hex string produced by MarshalJSON.
func (h *Hash) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("hash: invalid hex: %w", err)
	}
	if len(b) != Size {
		return fmt.Errorf("hash: invalid length: got %d bytes, want %d", len(b), Size)
	}
	copy(h[:], b)
	return nil
}

// Hasher is the pluggable hashing contract shared by the SMT and the
// causality identity scheme. Implementations MUST apply the domain
// separation bytes described in SPEC_FULL.md §4.1: a proof produced under
// one Hasher does not verify under another.
type Hasher interface {
	// Hash computes the leaf/data digest of data, domain-separated with 0x00.
	Hash(data []byte) Hash
	// Merge computes the internal-node digest of left and right children,
	// domain-separated with 0x01.
	Merge(left, right Hash) Hash
	// Key derives an SMT key from context and data, with no domain
	// separation byte: SHA-256(context || data) for Sha256Hasher, Blake3's
	// derive_key(context, data) for Blake3Hasher.
	Key(context string, data []byte) Hash
	// Digest is a convenience multi-input digest, domain-separated with 0x00.
	Digest(parts ...[]byte) Hash
}

// Sha256Hasher is the default, wire-compatible Hasher.
type Sha256Hasher struct{}

var _ Hasher = Sha256Hasher{}

// NewSha256Hasher returns the SHA-256 Hasher.
func NewSha256Hasher() Sha256Hasher { return Sha256Hasher{} }

func (Sha256Hasher) Hash(data []byte) Hash {
	h := sha256.New()
	h.Write([]byte{domainLeaf})
	h.Write(data)
	return sumTo(h)
}

func (Sha256Hasher) Merge(left, right Hash) Hash {
	h := sha256.New()
	h.Write([]byte{domainMerge})
	h.Write(left[:])
	h.Write(right[:])
	return sumTo(h)
}

func (Sha256Hasher) Key(context string, data []byte) Hash {
	h := sha256.New()
	h.Write([]byte(context))
	h.Write(data)
	return sumTo(h)
}

func (Sha256Hasher) Digest(parts ...[]byte) Hash {
	h := sha256.New()
	h.Write([]byte{domainLeaf})
	for _, p := range parts {
		h.Write(p)
	}
	return sumTo(h)
}

// Blake3Hasher is the interchangeable high-throughput Hasher. Its Key
// method matches Blake3's native keyed-hash construction (derive_key),
// which the SHA-256 variant only approximates by concatenation.
type Blake3Hasher struct{}

var _ Hasher = Blake3Hasher{}

// NewBlake3Hasher returns the Blake3 Hasher.
func NewBlake3Hasher() Blake3Hasher { return Blake3Hasher{} }

func (Blake3Hasher) Hash(data []byte) Hash {
	h := blake3.New(Size, nil)
	h.Write([]byte{domainLeaf})
	h.Write(data)
	return sumTo(h)
}

func (Blake3Hasher) Merge(left, right Hash) Hash {
	h := blake3.New(Size, nil)
	h.Write([]byte{domainMerge})
	h.Write(left[:])
	h.Write(right[:])
	return sumTo(h)
}

func (Blake3Hasher) Key(context string, data []byte) Hash {
	var out Hash
	blake3.DeriveKey(out[:], context, data)
	return out
}

func (Blake3Hasher) Digest(parts ...[]byte) Hash {
	h := blake3.New(Size, nil)
	h.Write([]byte{domainLeaf})
	for _, p := range parts {
		h.Write(p)
	}
	return sumTo(h)
}

type summer interface {
	Sum(b []byte) []byte
}

func sumTo(h summer) Hash {
	var out Hash
	copy(out[:], h.Sum(nil))
	return out
}

// Type identifies a Hasher implementation, used by configuration.
type Type string

const (
	TypeSha256 Type = "sha256"
	TypeBlake3 Type = "blake3"
)

// New constructs the Hasher named by t. An unrecognised or empty Type
// defaults to SHA-256, matching the wire-compatibility default in
// SPEC_FULL.md §6.1.
func New(t Type) Hasher {
	switch t {
	case TypeBlake3:
		return NewBlake3Hasher()
	default:
		return NewSha256Hasher()
	}
}
