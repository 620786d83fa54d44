// Copyright 2025 Certen Protocol
//
// PostgresBackend persists SMT records in PostgreSQL over a database/sql
// connection pool, with its schema applied from embedded migrations.

package smt

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
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresBackend is the persistent, clone-cheap Backend targeting
// PostgreSQL. It wraps a single connection pool; handles may be shared
// across goroutines, relying on PostgreSQL's own row locking for
// same-key write serialisation.
type PostgresBackend struct {
	db     *sql.DB
	logger *log.Logger
}

var _ Backend = (*PostgresBackend)(nil)

// PostgresOption configures a PostgresBackend.
type PostgresOption func(*PostgresBackend)

// WithLogger sets a custom logger for the backend.
func WithLogger(logger *log.Logger) PostgresOption {
	return func(b *PostgresBackend) {
		b.logger = logger
	}
}

// NewPostgresBackend opens a connection pool against databaseURL and
// returns a ready-to-use PostgresBackend. Callers MUST call Migrate
// before first use against a fresh database.
func NewPostgresBackend(databaseURL string, opts ...PostgresOption) (*PostgresBackend, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("smt: database url cannot be empty")
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("smt: failed to open database: %w", err)
	}

	backend := &PostgresBackend{
		db:     db,
		logger: log.New(log.Writer(), "[SmtPostgres] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(backend)
	}

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("smt: failed to ping database: %w", err)
	}
	return backend, nil
}

// Close releases the underlying connection pool.
func (b *PostgresBackend) Close() error {
	return b.db.Close()
}

// Migrate applies every embedded migration in lexical filename order. It
// is idempotent: CREATE TABLE IF NOT EXISTS statements make re-running a
// no-op.
func (b *PostgresBackend) Migrate(ctx context.Context) error {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("smt: reading embedded migrations: %w", err)
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
			return fmt.Errorf("smt: reading migration %s: %w", name, err)
		}
		if _, err := b.db.ExecContext(ctx, string(sqlBytes)); err != nil {
			return fmt.Errorf("smt: applying migration %s: %w", name, err)
		}
		b.logger.Printf("applied migration %s", name)
	}
	return nil
}

func (b *PostgresBackend) Get(ctx context.Context, prefix string, key []byte) ([]byte, bool, error) {
	var value []byte
	err := b.db.QueryRowContext(ctx,
		`SELECT value FROM smt_kv WHERE prefix = $1 AND key = $2`, prefix, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("smt: get (%s): %w", prefix, err)
	}
	return value, true, nil
}

func (b *PostgresBackend) Set(ctx context.Context, prefix string, key []byte, value []byte) ([]byte, bool, error) {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("smt: set (%s) begin tx: %w", prefix, err)
	}
	defer tx.Rollback()

	var prev []byte
	had := true
	err = tx.QueryRowContext(ctx,
		`SELECT value FROM smt_kv WHERE prefix = $1 AND key = $2`, prefix, key,
	).Scan(&prev)
	if err == sql.ErrNoRows {
		had = false
	} else if err != nil {
		return nil, false, fmt.Errorf("smt: set (%s) read previous: %w", prefix, err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO smt_kv (prefix, key, value) VALUES ($1, $2, $3)
		 ON CONFLICT (prefix, key) DO UPDATE SET value = EXCLUDED.value`,
		prefix, key, value)
	if err != nil {
		return nil, false, fmt.Errorf("smt: set (%s) upsert: %w", prefix, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("smt: set (%s) commit: %w", prefix, err)
	}
	return prev, had, nil
}

func (b *PostgresBackend) Remove(ctx context.Context, prefix string, key []byte) ([]byte, bool, error) {
	prev, had, err := b.Get(ctx, prefix, key)
	if err != nil {
		return nil, false, err
	}
	if !had {
		return nil, false, nil
	}
	if _, err := b.db.ExecContext(ctx,
		`DELETE FROM smt_kv WHERE prefix = $1 AND key = $2`, prefix, key,
	); err != nil {
		return nil, false, fmt.Errorf("smt: remove (%s): %w", prefix, err)
	}
	return prev, true, nil
}

func (b *PostgresBackend) Has(ctx context.Context, prefix string, key []byte) (bool, error) {
	var exists bool
	err := b.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM smt_kv WHERE prefix = $1 AND key = $2)`, prefix, key,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("smt: has (%s): %w", prefix, err)
	}
	return exists, nil
}
