// Copyright 2025 Certen Protocol
//
// Package metrics registers the Prometheus collectors exposed by the
// causality indexer's /metrics endpoint.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles every collector the indexer updates. It is instance-
// scoped: construct one per Registerer rather than relying on the
// default global registry, so tests and multiple indexers in one
// process don't collide.
type Metrics struct {
	EventsProcessed    *prometheus.CounterVec
	ProcessEventSeconds *prometheus.HistogramVec
	CurrentRootInfo    *prometheus.GaugeVec
	ChainEventCount    *prometheus.GaugeVec
}

// New registers every collector against reg and returns the bundle.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		EventsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "almanac_causality_events_processed_total",
			Help: "Total causality events successfully processed, by chain.",
		}, []string{"chain"}),
		ProcessEventSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "almanac_causality_process_event_duration_seconds",
			Help:    "Latency of a single process_event call.",
			Buckets: prometheus.DefBuckets,
		}, []string{"chain"}),
		CurrentRootInfo: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "almanac_causality_current_root_info",
			Help: "Always 1; the root label carries the active SMT root as hex.",
		}, []string{"root"}),
		ChainEventCount: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "almanac_causality_chain_event_count",
			Help: "Number of events indexed per chain.",
		}, []string{"chain"}),
	}
}

// ObserveRoot sets CurrentRootInfo so rootHex is the only series with
// value 1, clearing any prior root's series.
func (m *Metrics) ObserveRoot(rootHex string) {
	m.CurrentRootInfo.Reset()
	m.CurrentRootInfo.WithLabelValues(rootHex).Set(1)
}
