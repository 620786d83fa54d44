// Copyright 2025 Certen Protocol
//
// Package ingest adapts heterogeneous chain data sources (EVM logs,
// Cosmos block results) into the minimal Event capability set consumed
// by the indexer, per SPEC_FULL.md §4.9.

package ingest

import (
	"time"

	"github.com/timewave-computer/almanac-sub001/pkg/causality/types"
)

// ChainPlatform identifies the family of chain an adapter ingests from.
type ChainPlatform string

const (
	PlatformEVM    ChainPlatform = "evm"
	PlatformCosmos ChainPlatform = "cosmos"
)

// Event is the concrete types.RawEvent implementation produced by every
// adapter in this package.
type Event struct {
	id          string
	chain       types.ChainId
	blockNumber uint64
	blockHash   string
	txHash      string
	timestamp   time.Time
	eventType   string
	rawData     []byte
}

var _ types.RawEvent = Event{}

// NewEvent builds an Event satisfying types.RawEvent.
func NewEvent(id string, chain types.ChainId, blockNumber uint64, blockHash, txHash string, timestamp time.Time, eventType string, rawData []byte) Event {
	return Event{
		id:          id,
		chain:       chain,
		blockNumber: blockNumber,
		blockHash:   blockHash,
		txHash:      txHash,
		timestamp:   timestamp,
		eventType:   eventType,
		rawData:     rawData,
	}
}

func (e Event) ID() string           { return e.id }
func (e Event) Chain() types.ChainId { return e.chain }
func (e Event) BlockNumber() uint64  { return e.blockNumber }
func (e Event) BlockHash() string    { return e.blockHash }
func (e Event) TxHash() string       { return e.txHash }
func (e Event) Timestamp() time.Time { return e.timestamp }
func (e Event) EventType() string    { return e.eventType }
func (e Event) RawData() []byte      { return e.rawData }

// Adapter is the minimal contract an ingestion source must satisfy to be
// registered in an AdapterRegistry.
type Adapter interface {
	Chain() types.ChainId
	Close() error
}
