package types

import (
	"testing"

	"github.com/timewave-computer/almanac-sub001/pkg/causality/hash"
)

func TestHashHexRoundTrip(t *testing.T) {
	h := hash.NewSha256Hasher().Hash([]byte("abc"))
	s := HashToHex(h)
	if len(s) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(s))
	}
	back, err := HashFromHex(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if back != h {
		t.Fatalf("round trip mismatch")
	}
}

func TestHashFromHexRejectsWrongLength(t *testing.T) {
	if _, err := HashFromHex("deadbeef"); err == nil {
		t.Fatalf("expected error for short hex")
	}
}

func TestEntityIdNullAndEquality(t *testing.T) {
	null := NullEntityId()
	if !null.IsNull() {
		t.Fatalf("expected null entity id")
	}
	id1 := NewEntityId(hash.NewSha256Hasher().Hash([]byte("x")))
	id2 := NewEntityId(hash.NewSha256Hasher().Hash([]byte("x")))
	if id1 != id2 {
		t.Fatalf("equal hashes must produce equal entity ids")
	}
}

func TestSmtChildrenBytesRoundTrip(t *testing.T) {
	c := SmtChildren{Left: hash.Empty, Right: hash.NewSha256Hasher().Hash([]byte("r"))}
	b := c.Bytes()
	if len(b) != 64 {
		t.Fatalf("expected 64 bytes, got %d", len(b))
	}
	back, err := ChildrenFromBytes(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if back != c {
		t.Fatalf("round trip mismatch")
	}
}

func TestChildrenFromBytesRejectsBadLength(t *testing.T) {
	if _, err := ChildrenFromBytes(make([]byte, 63)); err == nil {
		t.Fatalf("expected error for wrong length")
	}
}

func TestCausalityEventToBytesRoundTrip(t *testing.T) {
	ev := CausalityEvent{
		Id:          "evt-1",
		ChainId:     "ethereum",
		BlockNumber: 100,
		TxHash:      "0xabc",
		EventType:   EventTypeCrossDomainMsg,
		Data: CausalityEventData{
			CrossDomainMessage: &CrossDomainMessage{
				SourceDomain: NullDomainId(),
				TargetDomain: NullDomainId(),
				MessageType:  "raw",
				Payload:      []byte("hello"),
			},
		},
	}
	b, err := ev.ToBytes()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	back, err := EventFromBytes(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if back.Id != ev.Id || back.ChainId != ev.ChainId || back.BlockNumber != ev.BlockNumber {
		t.Fatalf("round trip mismatch: %+v vs %+v", back, ev)
	}
	if back.Data.CrossDomainMessage == nil || string(back.Data.CrossDomainMessage.Payload) != "hello" {
		t.Fatalf("cross domain payload lost in round trip")
	}
}
