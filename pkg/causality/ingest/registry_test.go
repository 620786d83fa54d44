// Copyright 2025 Certen Protocol

package ingest

import (
	"testing"

	"github.com/timewave-computer/almanac-sub001/pkg/causality/types"
)

type fakeAdapter struct {
	chain  types.ChainId
	closed bool
}

func (f *fakeAdapter) Chain() types.ChainId { return f.chain }
func (f *fakeAdapter) Close() error         { f.closed = true; return nil }

func TestRegistryRegisterAndGet(t *testing.T) {
	reg := NewAdapterRegistry()
	a := &fakeAdapter{chain: "ethereum"}
	reg.Register(PlatformEVM, a)

	got, err := reg.Get(PlatformEVM)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Chain() != "ethereum" {
		t.Fatalf("expected chain ethereum, got %v", got.Chain())
	}
}

func TestRegistryGetMissingPlatform(t *testing.T) {
	reg := NewAdapterRegistry()
	if _, err := reg.Get(PlatformCosmos); err != ErrAdapterNotFound {
		t.Fatalf("expected ErrAdapterNotFound, got %v", err)
	}
}

func TestRegistryCloseClosesAllAdapters(t *testing.T) {
	reg := NewAdapterRegistry()
	evm := &fakeAdapter{chain: "ethereum"}
	cosmos := &fakeAdapter{chain: "osmosis"}
	reg.Register(PlatformEVM, evm)
	reg.Register(PlatformCosmos, cosmos)

	if err := reg.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !evm.closed || !cosmos.closed {
		t.Fatalf("expected both adapters closed, evm=%v cosmos=%v", evm.closed, cosmos.closed)
	}
}

func TestRegistryIsInstanceScoped(t *testing.T) {
	reg1 := NewAdapterRegistry()
	reg2 := NewAdapterRegistry()
	reg1.Register(PlatformEVM, &fakeAdapter{chain: "ethereum"})

	if _, err := reg2.Get(PlatformEVM); err != ErrAdapterNotFound {
		t.Fatalf("registries must not share state, got err=%v", err)
	}
}
