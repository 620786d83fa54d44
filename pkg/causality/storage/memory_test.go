package storage

import (
	"context"
	"testing"

	"github.com/timewave-computer/almanac-sub001/pkg/causality/types"
)

func TestMemoryCausalityBackendStoreAndGetEvent(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryCausalityBackend()
	event := types.CausalityEvent{Id: "evt-1", ChainId: "ethereum", BlockNumber: 10}

	if err := b.StoreEvent(ctx, event); err != nil {
		t.Fatalf("store: %v", err)
	}
	got, ok, err := b.GetEvent(ctx, "evt-1")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got.ChainId != event.ChainId || got.BlockNumber != event.BlockNumber {
		t.Fatalf("unexpected event: %+v", got)
	}
}

func TestMemoryCausalityBackendGetEventsInRange(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryCausalityBackend()
	for i, block := range []uint64{5, 15, 25} {
		b.StoreEvent(ctx, types.CausalityEvent{Id: eventID(i), ChainId: "ethereum", BlockNumber: block})
	}
	out, err := b.GetEventsInRange(ctx, "ethereum", 10, 20)
	if err != nil {
		t.Fatalf("range query: %v", err)
	}
	if len(out) != 1 || out[0].BlockNumber != 15 {
		t.Fatalf("expected exactly the block-15 event, got %+v", out)
	}
}

func eventID(i int) string {
	return string(rune('a' + i))
}

func TestMemoryCausalityBackendIndexRoundTrip(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryCausalityBackend()
	if _, ok, _ := b.GetIndex(ctx); ok {
		t.Fatalf("expected no index before any store")
	}
	idx := types.NewCausalityIndex()
	idx.EventCount = 3
	if err := b.StoreIndex(ctx, idx); err != nil {
		t.Fatalf("store index: %v", err)
	}
	got, ok, err := b.GetIndex(ctx)
	if err != nil || !ok {
		t.Fatalf("get index: ok=%v err=%v", ok, err)
	}
	if got.EventCount != 3 {
		t.Fatalf("expected event count 3, got %d", got.EventCount)
	}
}
