// Copyright 2025 Certen Protocol
//
// Configuration loader for the causality indexer, loading from a YAML
// file with environment-variable substitution.

package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/timewave-computer/almanac-sub001/pkg/causality/hash"
	"github.com/timewave-computer/almanac-sub001/pkg/causality/types"
)

// IndexerConfig is the top-level configuration for the indexerd process.
type IndexerConfig struct {
	Environment string `yaml:"environment"`

	Indexer  IndexerSettings  `yaml:"indexer"`
	Storage  StorageSettings  `yaml:"storage"`
	Ingest   IngestSettings   `yaml:"ingest"`
	Server   ServerSettings   `yaml:"server"`
	Logging  LoggingSettings  `yaml:"logging"`
}

// IndexerSettings configures the causality indexer itself.
type IndexerSettings struct {
	HasherType              string         `yaml:"hasher_type"`
	EnableSMT               bool           `yaml:"enable_smt"`
	EnableCausalityTracking bool           `yaml:"enable_causality_tracking"`
	EnableCrossChain        bool           `yaml:"enable_cross_chain"`
	MaxSMTDepth             int            `yaml:"max_smt_depth"`
	BatchSize               int            `yaml:"batch_size"`
	IndexedChains           []types.ChainId `yaml:"indexed_chains"`
}

// StorageSettings configures the event/index and SMT backends.
type StorageSettings struct {
	Backend        string   `yaml:"backend"` // "memory" or "postgres"; indexerd uses the in-memory backends for any other value
	DatabaseURL    string   `yaml:"database_url"`
	CometBFTDBDir  string   `yaml:"cometbft_db_dir"`
	MaxOpenConns   int      `yaml:"max_open_conns"`
	MaxIdleConns   int      `yaml:"max_idle_conns"`
	ConnMaxLifetime Duration `yaml:"conn_max_lifetime"`
}

// IngestSettings configures the chain adapters.
type IngestSettings struct {
	EVM    []EVMSourceSettings    `yaml:"evm"`
	Cosmos []CosmosSourceSettings `yaml:"cosmos"`
}

// EVMSourceSettings configures a single EVM chain source.
type EVMSourceSettings struct {
	Chain        types.ChainId `yaml:"chain"`
	RPCURL       string        `yaml:"rpc_url"`
	Addresses    []string      `yaml:"addresses"`
	PollInterval Duration      `yaml:"poll_interval"`
}

// CosmosSourceSettings configures a single Cosmos chain source.
type CosmosSourceSettings struct {
	Chain        types.ChainId `yaml:"chain"`
	RPCURL       string        `yaml:"rpc_url"`
	PollInterval Duration      `yaml:"poll_interval"`
}

// ServerSettings configures the HTTP surface (health + metrics).
type ServerSettings struct {
	HealthAddr  string `yaml:"health_addr"`
	MetricsAddr string `yaml:"metrics_addr"`
}

// LoggingSettings configures the structured logger.
type LoggingSettings struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Duration wraps time.Duration for YAML unmarshaling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Load reads path, substitutes ${VAR} / ${VAR:-default} environment
// references, parses YAML, and applies defaults.
func Load(path string) (*IndexerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	expanded := substituteEnvVars(string(data))

	var cfg IndexerConfig
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *IndexerConfig) applyDefaults() {
	if c.Indexer.HasherType == "" {
		c.Indexer.HasherType = "sha256"
	}
	if c.Indexer.MaxSMTDepth == 0 {
		c.Indexer.MaxSMTDepth = hash.Size * 8
	}
	if c.Indexer.BatchSize == 0 {
		c.Indexer.BatchSize = 100
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = "memory"
	}
	if c.Storage.MaxOpenConns == 0 {
		c.Storage.MaxOpenConns = 25
	}
	if c.Storage.MaxIdleConns == 0 {
		c.Storage.MaxIdleConns = 5
	}
	if c.Storage.ConnMaxLifetime == 0 {
		c.Storage.ConnMaxLifetime = Duration(time.Hour)
	}
	if c.Server.HealthAddr == "" {
		c.Server.HealthAddr = "0.0.0.0:8081"
	}
	if c.Server.MetricsAddr == "" {
		c.Server.MetricsAddr = "0.0.0.0:9090"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	for i := range c.Ingest.EVM {
		if c.Ingest.EVM[i].PollInterval == 0 {
			c.Ingest.EVM[i].PollInterval = Duration(15 * time.Second)
		}
	}
	for i := range c.Ingest.Cosmos {
		if c.Ingest.Cosmos[i].PollInterval == 0 {
			c.Ingest.Cosmos[i].PollInterval = Duration(6 * time.Second)
		}
	}
}

// HasherType resolves the configured hasher name to a hash.Type.
func (c *IndexerConfig) HasherType() hash.Type {
	switch strings.ToLower(c.Indexer.HasherType) {
	case "blake3":
		return hash.TypeBlake3
	default:
		return hash.TypeSha256
	}
}

// Validate checks that the configuration is internally consistent.
func (c *IndexerConfig) Validate() error {
	var errs []string

	if c.Storage.Backend == "postgres" && c.Storage.DatabaseURL == "" {
		errs = append(errs, "storage.database_url is required when storage.backend is \"postgres\"")
	}
	for i, src := range c.Ingest.EVM {
		if src.RPCURL == "" || strings.HasPrefix(src.RPCURL, "${") {
			errs = append(errs, fmt.Sprintf("ingest.evm[%d].rpc_url is required", i))
		}
	}
	for i, src := range c.Ingest.Cosmos {
		if src.RPCURL == "" || strings.HasPrefix(src.RPCURL, "${") {
			errs = append(errs, fmt.Sprintf("ingest.cosmos[%d].rpc_url is required", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// envVarPattern matches ${VAR_NAME} or ${VAR_NAME:-default}.
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

func substituteEnvVars(content string) string {
	return envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		varName := groups[1]
		defaultValue := ""
		if len(groups) >= 4 {
			defaultValue = groups[3]
		}
		if value := os.Getenv(varName); value != "" {
			return value
		}
		return defaultValue
	})
}
