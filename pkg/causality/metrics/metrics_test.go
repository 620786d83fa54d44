// Copyright 2025 Certen Protocol

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNewRegistersAllCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.EventsProcessed.WithLabelValues("ethereum").Inc()
	m.ProcessEventSeconds.WithLabelValues("ethereum").Observe(0.01)
	m.ChainEventCount.WithLabelValues("ethereum").Set(3)
	m.ObserveRoot("abcd")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(families) != 4 {
		t.Fatalf("expected 4 registered metric families, got %d", len(families))
	}
}

func TestObserveRootReplacesPriorSeries(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveRoot("root-1")
	m.ObserveRoot("root-2")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	var rootFamily *dto.MetricFamily
	for _, f := range families {
		if f.GetName() == "almanac_causality_current_root_info" {
			rootFamily = f
		}
	}
	if rootFamily == nil {
		t.Fatalf("expected current_root_info family to be present")
	}
	if len(rootFamily.Metric) != 1 {
		t.Fatalf("expected exactly one root series after ObserveRoot twice, got %d", len(rootFamily.Metric))
	}
}
