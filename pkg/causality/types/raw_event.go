// Copyright 2025 Certen Protocol

package types

import "time"

// RawEvent is the minimal capability set an ingestion adapter must
// expose for CausalityEventFromRaw to build a CausalityEvent, per
// SPEC_FULL.md §4.9.
type RawEvent interface {
	ID() string
	Chain() ChainId
	BlockNumber() uint64
	BlockHash() string
	TxHash() string
	Timestamp() time.Time
	EventType() string
	RawData() []byte
}

// CausalityEventFromRaw builds a CrossDomainMessage-variant event from a
// RawEvent, recording RawData() as the payload. Adapters that know more
// about the event may construct a richer CausalityEventData directly
// instead of going through this path.
func CausalityEventFromRaw(e RawEvent) CausalityEvent {
	return CausalityEvent{
		Id:          e.ID(),
		ChainId:     e.Chain(),
		BlockNumber: e.BlockNumber(),
		TxHash:      e.TxHash(),
		EventType:   EventTypeCrossDomainMsg,
		Timestamp:   e.Timestamp(),
		Data: CausalityEventData{
			CrossDomainMessage: &CrossDomainMessage{
				MessageType: e.EventType(),
				Payload:     e.RawData(),
			},
		},
	}
}
