// Copyright 2025 Certen Protocol

package types

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/timewave-computer/almanac-sub001/pkg/causality/codec"
	"github.com/timewave-computer/almanac-sub001/pkg/causality/hash"
)

func nsToTime(ns int64) time.Time {
	return time.Unix(0, ns).UTC()
}

// causalityEventWire is the canonical-JSON wire shape for CausalityEvent.
// Kept separate from CausalityEvent so time.Time and the *pointer fields
// of CausalityEventData marshal predictably regardless of Go's default
// struct-tag-less json behaviour.
type causalityEventWire struct {
	Id          string              `json:"id"`
	ChainId     ChainId             `json:"chain_id"`
	BlockNumber uint64              `json:"block_number"`
	TxHash      string              `json:"tx_hash"`
	EventType   CausalityEventType  `json:"event_type"`
	TimestampNS int64               `json:"timestamp_ns"`
	Data        CausalityEventData  `json:"data"`
}

// ToBytes is the single canonical binary encoding used for SMT leaf
// values, storage payloads, and hashing inputs (resolves SPEC_FULL.md §3's
// canonical-encoding decision).
func (e CausalityEvent) ToBytes() ([]byte, error) {
	w := causalityEventWire{
		Id:          e.Id,
		ChainId:     e.ChainId,
		BlockNumber: e.BlockNumber,
		TxHash:      e.TxHash,
		EventType:   e.EventType,
		TimestampNS: e.Timestamp.UnixNano(),
		Data:        e.Data,
	}
	return codec.MarshalCanonical(w)
}

// EventFromBytes decodes an event previously produced by ToBytes.
func EventFromBytes(data []byte) (CausalityEvent, error) {
	var w causalityEventWire
	if err := codec.UnmarshalCanonical(data, &w); err != nil {
		return CausalityEvent{}, fmt.Errorf("decode causality event: %w", err)
	}
	return CausalityEvent{
		Id:          w.Id,
		ChainId:     w.ChainId,
		BlockNumber: w.BlockNumber,
		TxHash:      w.TxHash,
		EventType:   w.EventType,
		Timestamp:   nsToTime(w.TimestampNS),
		Data:        w.Data,
	}, nil
}

// SmtKey derives the SMT key under which this event is stored, using the
// supplied Hasher's keyed-hash construction over a human-readable context
// string, matching SPEC_FULL.md §4.1/§4.7.
func (e CausalityEvent) SmtKey(h hash.Hasher) Hash {
	context := fmt.Sprintf("event:%s", e.ChainId)
	return h.Key(context, []byte(e.Id))
}

// SmtKey derives the SMT key for a resource entity, namespaced by its
// owning domain.
func (r CausalityResource) SmtKey(h hash.Hasher) Hash {
	context := fmt.Sprintf("resource:%s", r.Domain.Hex())
	return h.Key(context, r.Id.Hash[:])
}

// StringToHash derives the Hash identity of an opaque string id: plain
// SHA-256 of its UTF-8 bytes, with no domain separation byte. This is
// fixed regardless of the tree's configured Hasher so that
// get_dependencies and get_dependents always agree on identity, per
// SPEC_FULL.md §9.
func StringToHash(id string) Hash {
	return sha256.Sum256([]byte(id))
}
