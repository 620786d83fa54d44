// Copyright 2025 Certen Protocol
//
// PostgresCausalityBackend persists events and the index in PostgreSQL
// over a database/sql connection pool, with its schema applied from
// embedded migrations.

package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"sort"
	"strings"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/timewave-computer/almanac-sub001/pkg/causality/codec"
	"github.com/timewave-computer/almanac-sub001/pkg/causality/types"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresCausalityBackend is the persistent CausalityBackend.
type PostgresCausalityBackend struct {
	db     *sql.DB
	logger *log.Logger
}

var _ CausalityBackend = (*PostgresCausalityBackend)(nil)

// NewPostgresCausalityBackend opens a connection pool against databaseURL.
func NewPostgresCausalityBackend(databaseURL string) (*PostgresCausalityBackend, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("causality storage: database url cannot be empty")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("causality storage: failed to open database: %w", err)
	}
	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("causality storage: failed to ping database: %w", err)
	}
	return &PostgresCausalityBackend{
		db:     db,
		logger: log.New(log.Writer(), "[CausalityStorage] ", log.LstdFlags),
	}, nil
}

// Close releases the underlying connection pool.
func (b *PostgresCausalityBackend) Close() error {
	return b.db.Close()
}

// Migrate applies every embedded migration in lexical filename order.
func (b *PostgresCausalityBackend) Migrate(ctx context.Context) error {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("causality storage: reading embedded migrations: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	for _, name := range names {
		sqlBytes, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("causality storage: reading migration %s: %w", name, err)
		}
		if _, err := b.db.ExecContext(ctx, string(sqlBytes)); err != nil {
			return fmt.Errorf("causality storage: applying migration %s: %w", name, err)
		}
		b.logger.Printf("applied migration %s", name)
	}
	return nil
}

func (b *PostgresCausalityBackend) StoreEvent(ctx context.Context, event types.CausalityEvent) error {
	data, err := event.ToBytes()
	if err != nil {
		return fmt.Errorf("causality storage: encode event: %w", err)
	}
	_, err = b.db.ExecContext(ctx,
		`INSERT INTO causality_events (event_id, chain_id, block_number, data)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (event_id) DO UPDATE SET chain_id = EXCLUDED.chain_id,
		   block_number = EXCLUDED.block_number, data = EXCLUDED.data`,
		event.Id, string(event.ChainId), event.BlockNumber, data)
	if err != nil {
		return fmt.Errorf("causality storage: store event: %w", err)
	}
	return nil
}

func (b *PostgresCausalityBackend) GetEvent(ctx context.Context, id string) (types.CausalityEvent, bool, error) {
	var data []byte
	err := b.db.QueryRowContext(ctx,
		`SELECT data FROM causality_events WHERE event_id = $1`, id,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return types.CausalityEvent{}, false, nil
	}
	if err != nil {
		return types.CausalityEvent{}, false, fmt.Errorf("causality storage: get event: %w", err)
	}
	event, err := types.EventFromBytes(data)
	if err != nil {
		return types.CausalityEvent{}, false, fmt.Errorf("causality storage: decode event: %w", err)
	}
	return event, true, nil
}

func (b *PostgresCausalityBackend) GetChainEvents(ctx context.Context, chain types.ChainId) ([]types.CausalityEvent, error) {
	rows, err := b.db.QueryContext(ctx,
		`SELECT data FROM causality_events WHERE chain_id = $1 ORDER BY block_number`, string(chain))
	if err != nil {
		return nil, fmt.Errorf("causality storage: get chain events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (b *PostgresCausalityBackend) GetEventsInRange(ctx context.Context, chain types.ChainId, startBlock, endBlock uint64) ([]types.CausalityEvent, error) {
	rows, err := b.db.QueryContext(ctx,
		`SELECT data FROM causality_events
		 WHERE chain_id = $1 AND block_number BETWEEN $2 AND $3
		 ORDER BY block_number`, string(chain), startBlock, endBlock)
	if err != nil {
		return nil, fmt.Errorf("causality storage: get events in range: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]types.CausalityEvent, error) {
	var out []types.CausalityEvent
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("causality storage: scan event row: %w", err)
		}
		event, err := types.EventFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("causality storage: decode event row: %w", err)
		}
		out = append(out, event)
	}
	return out, rows.Err()
}

func (b *PostgresCausalityBackend) StoreIndex(ctx context.Context, index types.CausalityIndex) error {
	data, err := codec.MarshalCanonical(index)
	if err != nil {
		return fmt.Errorf("causality storage: encode index: %w", err)
	}
	_, err = b.db.ExecContext(ctx,
		`INSERT INTO causality_index (id, data) VALUES (1, $1)
		 ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data`, data)
	if err != nil {
		return fmt.Errorf("causality storage: store index: %w", err)
	}
	return nil
}

func (b *PostgresCausalityBackend) GetIndex(ctx context.Context) (types.CausalityIndex, bool, error) {
	var data []byte
	err := b.db.QueryRowContext(ctx, `SELECT data FROM causality_index WHERE id = 1`).Scan(&data)
	if err == sql.ErrNoRows {
		return types.CausalityIndex{}, false, nil
	}
	if err != nil {
		return types.CausalityIndex{}, false, fmt.Errorf("causality storage: get index: %w", err)
	}
	var index types.CausalityIndex
	if err := codec.UnmarshalCanonical(data, &index); err != nil {
		return types.CausalityIndex{}, false, fmt.Errorf("causality storage: decode index: %w", err)
	}
	return index, true, nil
}
