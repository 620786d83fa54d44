// Copyright 2025 Certen Protocol

package ingest

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/timewave-computer/almanac-sub001/pkg/causality/types"
)

// EVMAdapter ingests contract logs from an EVM-compatible chain via
// ethclient and turns them into Events.
type EVMAdapter struct {
	client    *ethclient.Client
	chain     types.ChainId
	addresses []common.Address
}

var _ Adapter = (*EVMAdapter)(nil)

// NewEVMAdapter dials rpcURL and returns an EVMAdapter scoped to chain,
// filtering logs to addresses (all addresses if empty).
func NewEVMAdapter(ctx context.Context, rpcURL string, chain types.ChainId, addresses ...common.Address) (*EVMAdapter, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("ingest: dial evm %q: %w", rpcURL, err)
	}
	return &EVMAdapter{client: client, chain: chain, addresses: addresses}, nil
}

func (a *EVMAdapter) Chain() types.ChainId { return a.chain }

func (a *EVMAdapter) Close() error {
	a.client.Close()
	return nil
}

// FetchLogs pulls logs for [fromBlock, toBlock] and converts each into an
// Event, identified by tx hash + log index so re-fetching the same range
// is idempotent.
func (a *EVMAdapter) FetchLogs(ctx context.Context, fromBlock, toBlock uint64) ([]Event, error) {
	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		ToBlock:   new(big.Int).SetUint64(toBlock),
		Addresses: a.addresses,
	}
	logs, err := a.client.FilterLogs(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ingest: filter evm logs [%d,%d]: %w", fromBlock, toBlock, err)
	}

	events := make([]Event, 0, len(logs))
	for _, l := range logs {
		if l.Removed {
			continue
		}
		id := fmt.Sprintf("evm:%s:%s:%d", a.chain, l.TxHash.Hex(), l.Index)
		events = append(events, NewEvent(id, a.chain, l.BlockNumber, l.BlockHash.Hex(), l.TxHash.Hex(), time.Now(), "evm_log", l.Data))
	}
	return events, nil
}

// LatestBlock returns the chain's current head block number.
func (a *EVMAdapter) LatestBlock(ctx context.Context) (uint64, error) {
	return a.client.BlockNumber(ctx)
}
