// Copyright 2025 Certen Protocol

package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/timewave-computer/almanac-sub001/pkg/causality/indexer"
	"github.com/timewave-computer/almanac-sub001/pkg/causality/ingest"
	"github.com/timewave-computer/almanac-sub001/pkg/causality/metrics"
	"github.com/timewave-computer/almanac-sub001/pkg/causality/smt"
	"github.com/timewave-computer/almanac-sub001/pkg/causality/storage"
	"github.com/timewave-computer/almanac-sub001/pkg/causality/types"
	"github.com/timewave-computer/almanac-sub001/pkg/config"
)

// HealthStatus tracks process readiness for the /healthz endpoint.
type HealthStatus struct {
	mu        sync.RWMutex
	Status    string `json:"status"` // "starting", "ok", "degraded"
	Storage   string `json:"storage"`
	StartedAt time.Time `json:"started_at"`
}

func (h *HealthStatus) Set(status, storage string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Status = status
	h.Storage = storage
}

func (h *HealthStatus) ToJSON() []byte {
	h.mu.RLock()
	defer h.mu.RUnlock()
	data, _ := json.Marshal(h)
	return data
}

var health = &HealthStatus{Status: "starting", Storage: "unknown", StartedAt: time.Now()}

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	configPath := flag.String("config", "indexer.yaml", "path to the indexer configuration file")
	flag.Parse()

	log.Printf("loading configuration from %s", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	smtBackend, causalityBackend, err := buildBackends(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to build storage backends: %v", err)
	}
	health.Set("starting", cfg.Storage.Backend)

	idxCfg := indexer.DefaultConfig()
	idxCfg.HasherType = cfg.HasherType()
	idxCfg.EnableSMT = cfg.Indexer.EnableSMT
	idxCfg.EnableCausalityTracking = cfg.Indexer.EnableCausalityTracking
	idxCfg.EnableCrossChain = cfg.Indexer.EnableCrossChain
	idxCfg.BatchSize = cfg.Indexer.BatchSize
	idxCfg.IndexedChains = cfg.Indexer.IndexedChains

	idx, err := indexer.NewBuilder().
		WithConfig(idxCfg).
		WithSMTBackend(smtBackend).
		WithCausalityBackend(causalityBackend).
		Build()
	if err != nil {
		log.Fatalf("failed to build indexer: %v", err)
	}
	if err := idx.Initialize(ctx); err != nil {
		log.Fatalf("failed to initialize indexer: %v", err)
	}
	log.Printf("indexer initialized: root=%x events=%d", idx.GetCurrentRoot(), idx.GetCausalityIndex().EventCount)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.ObserveRoot(hexRoot(idx))

	registry := ingest.NewAdapterRegistry()
	defer registry.Close()
	startAdapters(ctx, cfg, registry, idx, m)

	healthMux := http.NewServeMux()
	healthMux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(health.ToJSON())
	})
	healthServer := &http.Server{Addr: cfg.Server.HealthAddr, Handler: healthMux}
	go func() {
		log.Printf("indexerd health endpoint listening on %s", cfg.Server.HealthAddr)
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("health server error: %v", err)
		}
	}()

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	metricsServer := &http.Server{Addr: cfg.Server.MetricsAddr, Handler: metricsMux}
	go func() {
		log.Printf("indexerd metrics endpoint listening on %s", cfg.Server.MetricsAddr)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("metrics server error: %v", err)
		}
	}()

	health.Set("ok", cfg.Storage.Backend)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Printf("shutting down indexerd")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("health server shutdown error: %v", err)
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("metrics server shutdown error: %v", err)
	}
	log.Printf("indexerd stopped")
}

func hexRoot(idx *indexer.Indexer) string {
	return types.HashToHex(idx.GetCurrentRoot())
}

func buildBackends(ctx context.Context, cfg *config.IndexerConfig) (smt.Backend, storage.CausalityBackend, error) {
	switch cfg.Storage.Backend {
	case "postgres":
		smtBackend, err := smt.NewPostgresBackend(cfg.Storage.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := smtBackend.Migrate(ctx); err != nil {
			return nil, nil, err
		}
		causalityBackend, err := storage.NewPostgresCausalityBackend(cfg.Storage.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := causalityBackend.Migrate(ctx); err != nil {
			return nil, nil, err
		}
		return smtBackend, causalityBackend, nil
	default:
		return smt.NewMemoryBackend(), storage.NewMemoryCausalityBackend(), nil
	}
}

func startAdapters(ctx context.Context, cfg *config.IndexerConfig, registry *ingest.AdapterRegistry, idx *indexer.Indexer, m *metrics.Metrics) {
	for _, src := range cfg.Ingest.EVM {
		addresses := make([]common.Address, len(src.Addresses))
		for i, a := range src.Addresses {
			addresses[i] = common.HexToAddress(a)
		}
		adapter, err := ingest.NewEVMAdapter(ctx, src.RPCURL, src.Chain, addresses...)
		if err != nil {
			log.Printf("evm adapter %s: %v", src.Chain, err)
			continue
		}
		registry.Register(ingest.PlatformEVM, adapter)
		go pollEVM(ctx, adapter, src.PollInterval.Duration(), idx, m)
	}
	for _, src := range cfg.Ingest.Cosmos {
		adapter, err := ingest.NewCosmosAdapter(src.RPCURL, src.Chain)
		if err != nil {
			log.Printf("cosmos adapter %s: %v", src.Chain, err)
			continue
		}
		registry.Register(ingest.PlatformCosmos, adapter)
		go pollCosmos(ctx, adapter, src.PollInterval.Duration(), idx, m)
	}
}

func pollEVM(ctx context.Context, adapter *ingest.EVMAdapter, interval time.Duration, idx *indexer.Indexer, m *metrics.Metrics) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	var lastBlock uint64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			head, err := adapter.LatestBlock(ctx)
			if err != nil || head <= lastBlock {
				continue
			}
			events, err := adapter.FetchLogs(ctx, lastBlock+1, head)
			if err != nil {
				log.Printf("evm %s: fetch logs: %v", adapter.Chain(), err)
				continue
			}
			for _, ev := range events {
				start := time.Now()
				if err := idx.ProcessEvent(ctx, ev); err != nil {
					log.Printf("evm %s: process event %s: %v", adapter.Chain(), ev.ID(), err)
					continue
				}
				m.EventsProcessed.WithLabelValues(string(adapter.Chain())).Inc()
				m.ProcessEventSeconds.WithLabelValues(string(adapter.Chain())).Observe(time.Since(start).Seconds())
			}
			m.ObserveRoot(hexRoot(idx))
			lastBlock = head
		}
	}
}

func pollCosmos(ctx context.Context, adapter *ingest.CosmosAdapter, interval time.Duration, idx *indexer.Indexer, m *metrics.Metrics) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	var lastHeight int64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			head, err := adapter.LatestBlock(ctx)
			if err != nil || head <= lastHeight {
				continue
			}
			for height := lastHeight + 1; height <= head; height++ {
				events, err := adapter.FetchBlockEvents(ctx, height)
				if err != nil {
					log.Printf("cosmos %s: fetch block %d: %v", adapter.Chain(), height, err)
					break
				}
				for _, ev := range events {
					start := time.Now()
					if err := idx.ProcessEvent(ctx, ev); err != nil {
						log.Printf("cosmos %s: process event %s: %v", adapter.Chain(), ev.ID(), err)
						continue
					}
					m.EventsProcessed.WithLabelValues(string(adapter.Chain())).Inc()
					m.ProcessEventSeconds.WithLabelValues(string(adapter.Chain())).Observe(time.Since(start).Seconds())
				}
			}
			m.ObserveRoot(hexRoot(idx))
			lastHeight = head
		}
	}
}
