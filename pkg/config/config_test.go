// Copyright 2025 Certen Protocol

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/timewave-computer/almanac-sub001/pkg/causality/hash"
)

const sampleConfig = `
environment: development
indexer:
  hasher_type: blake3
  enable_smt: true
  enable_causality_tracking: true
  indexed_chains: ["ethereum", "osmosis"]
storage:
  backend: postgres
  database_url: "${TEST_DATABASE_URL:-postgres://localhost/test}"
ingest:
  evm:
    - chain: ethereum
      rpc_url: "${TEST_EVM_RPC:-http://localhost:8545}"
server:
  health_addr: "0.0.0.0:9001"
`

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "indexer.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoadAppliesEnvSubstitutionAndDefaults(t *testing.T) {
	path := writeTempConfig(t, sampleConfig)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Storage.DatabaseURL != "postgres://localhost/test" {
		t.Fatalf("expected default-substituted database url, got %q", cfg.Storage.DatabaseURL)
	}
	if cfg.Ingest.EVM[0].RPCURL != "http://localhost:8545" {
		t.Fatalf("expected default-substituted rpc url, got %q", cfg.Ingest.EVM[0].RPCURL)
	}
	if cfg.Indexer.MaxSMTDepth != hash.Size*8 {
		t.Fatalf("expected default max_smt_depth, got %d", cfg.Indexer.MaxSMTDepth)
	}
	if cfg.Server.MetricsAddr != "0.0.0.0:9090" {
		t.Fatalf("expected default metrics_addr, got %q", cfg.Server.MetricsAddr)
	}
	if cfg.HasherType() != hash.TypeBlake3 {
		t.Fatalf("expected blake3 hasher type, got %v", cfg.HasherType())
	}
}

func TestLoadEnvVarOverridesDefault(t *testing.T) {
	os.Setenv("TEST_DATABASE_URL", "postgres://override/test")
	defer os.Unsetenv("TEST_DATABASE_URL")

	path := writeTempConfig(t, sampleConfig)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.DatabaseURL != "postgres://override/test" {
		t.Fatalf("expected env override, got %q", cfg.Storage.DatabaseURL)
	}
}

func TestValidateRequiresDatabaseURLForPostgresBackend(t *testing.T) {
	cfg := &IndexerConfig{}
	cfg.Storage.Backend = "postgres"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected validation error for missing database_url")
	}
}

func TestValidatePassesForMemoryBackend(t *testing.T) {
	cfg := &IndexerConfig{}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected memory-backend config to validate, got %v", err)
	}
}
