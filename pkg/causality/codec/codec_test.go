package codec

import (
	"bytes"
	"testing"
)

func TestMarshalCanonicalSortsKeys(t *testing.T) {
	type payload struct {
		B string `json:"b"`
		A string `json:"a"`
	}
	out, err := MarshalCanonical(payload{B: "2", A: "1"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := []byte(`{"a":"1","b":"2"}`)
	if !bytes.Equal(out, want) {
		t.Fatalf("got %s, want %s", out, want)
	}
}

func TestCanonicalizeDeterministicAcrossInputOrder(t *testing.T) {
	a, err := Canonicalize([]byte(`{"z":1,"a":2}`))
	if err != nil {
		t.Fatalf("canonicalize a: %v", err)
	}
	b, err := Canonicalize([]byte(`{"a":2,"z":1}`))
	if err != nil {
		t.Fatalf("canonicalize b: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("expected identical canonical bytes, got %s vs %s", a, b)
	}
}

func TestCanonicalizePreservesIntegersAbove2To53(t *testing.T) {
	// 1_700_000_000_123_456_789 is a realistic timestamp_ns value and
	// exceeds 2^53 (9007199254740992), where float64 loses precision.
	const big = `{"timestamp_ns":1700000000123456789}`
	out, err := Canonicalize([]byte(big))
	if err != nil {
		t.Fatalf("canonicalize: %v", err)
	}
	want := []byte(`{"timestamp_ns":1700000000123456789}`)
	if !bytes.Equal(out, want) {
		t.Fatalf("expected exact integer round trip, got %s, want %s", out, want)
	}
}

func TestRoundTrip(t *testing.T) {
	type payload struct {
		Name  string `json:"name"`
		Value int    `json:"value"`
	}
	in := payload{Name: "x", Value: 7}
	encoded, err := MarshalCanonical(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out payload
	if err := UnmarshalCanonical(encoded, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out != in {
		t.Fatalf("round trip mismatch: got %+v, want %+v", out, in)
	}
}
