// Copyright 2025 Certen Protocol

package ingest

import (
	"testing"
	"time"

	"github.com/timewave-computer/almanac-sub001/pkg/causality/types"
)

func TestEventSatisfiesRawEvent(t *testing.T) {
	now := time.Unix(1700000000, 0)
	ev := NewEvent("evt-1", "ethereum", 42, "0xblockhash", "0xabc", now, "evm_log", []byte("payload"))

	if ev.ID() != "evt-1" {
		t.Fatalf("unexpected id: %s", ev.ID())
	}
	if ev.Chain() != "ethereum" {
		t.Fatalf("unexpected chain: %v", ev.Chain())
	}
	if ev.BlockNumber() != 42 {
		t.Fatalf("unexpected block number: %d", ev.BlockNumber())
	}
	if ev.BlockHash() != "0xblockhash" {
		t.Fatalf("unexpected block hash: %s", ev.BlockHash())
	}

	causalityEvent := types.CausalityEventFromRaw(ev)
	if causalityEvent.Id != "evt-1" {
		t.Fatalf("expected bridged event id evt-1, got %s", causalityEvent.Id)
	}
	if causalityEvent.ChainId != "ethereum" {
		t.Fatalf("expected bridged chain id ethereum, got %v", causalityEvent.ChainId)
	}
	if causalityEvent.Data.CrossDomainMessage == nil {
		t.Fatalf("expected CausalityEventFromRaw to populate a CrossDomainMessage variant")
	}
	if causalityEvent.Data.CrossDomainMessage.MessageType != "evm_log" {
		t.Fatalf("expected message type evm_log, got %s", causalityEvent.Data.CrossDomainMessage.MessageType)
	}
}
