package tracker

import (
	"testing"

	"github.com/timewave-computer/almanac-sub001/pkg/causality/hash"
	"github.com/timewave-computer/almanac-sub001/pkg/causality/types"
)

func TestAddEventDerivesResourceFlowRelation(t *testing.T) {
	tr := New(hash.NewSha256Hasher())

	e1 := types.CausalityEvent{Id: "evt-1", ChainId: "ethereum", EventType: types.EventTypeResource,
		Data: types.CausalityEventData{Resource: &types.CausalityResource{Id: types.NewEntityId(hash.NewSha256Hasher().Hash([]byte("r1")))}}}
	tr.AddEvent(e1)

	e2 := types.CausalityEvent{Id: "evt-2", ChainId: "ethereum", EventType: types.EventTypeEffect,
		Data: types.CausalityEventData{Effect: &types.CausalityEffect{
			Id: types.NewEntityId(hash.NewSha256Hasher().Hash([]byte("e2"))),
			Inputs: []types.ResourceFlow{
				{FromEvent: "evt-1", ToEvent: "evt-2", ResourceType: "token"},
			},
		}}}
	tr.AddEvent(e2)

	dependents := tr.Graph.GetDependents("evt-1")
	if len(dependents) != 1 {
		t.Fatalf("expected 1 derived relation, got %d", len(dependents))
	}
	if dependents[0].RelationType != types.RelationResourceFlow {
		t.Fatalf("expected ResourceFlow relation, got %v", dependents[0].RelationType)
	}
}

func TestAnalyzeEventCausalityRootAndLeaf(t *testing.T) {
	tr := New(hash.NewSha256Hasher())
	root := types.CausalityEvent{Id: "root", ChainId: "ethereum"}
	tr.AddEvent(root)

	analysis, ok := tr.AnalyzeEventCausality("root")
	if !ok {
		t.Fatalf("expected analysis for known event")
	}
	if !analysis.IsRoot || !analysis.IsLeaf {
		t.Fatalf("expected isolated event to be both root and leaf, got %+v", analysis)
	}
	if analysis.CausalDepth != 0 {
		t.Fatalf("expected causal depth 0, got %d", analysis.CausalDepth)
	}
}

func TestAnalyzeEventCausalityUnknownEvent(t *testing.T) {
	tr := New(hash.NewSha256Hasher())
	if _, ok := tr.AnalyzeEventCausality("missing"); ok {
		t.Fatalf("expected ok=false for unknown event")
	}
}

func TestAddEventRecordsCrossDomainKey(t *testing.T) {
	hasher := hash.NewSha256Hasher()
	tr := New(hasher)

	source := types.NewDomainId(hasher.Hash([]byte("chain-a")))
	target := types.NewDomainId(hasher.Hash([]byte("chain-b")))
	evt := types.CausalityEvent{Id: "evt-1", ChainId: "ethereum", EventType: types.EventTypeCrossDomainMsg,
		Data: types.CausalityEventData{CrossDomainMessage: &types.CrossDomainMessage{
			SourceDomain: source,
			TargetDomain: target,
			MessageType:  "transfer",
		}}}
	tr.AddEvent(evt)

	key, ok := tr.CrossDomainKey("evt-1")
	if !ok {
		t.Fatalf("expected a recorded cross-domain key for evt-1")
	}
	if key.IsEmpty() {
		t.Fatalf("expected a non-empty cross-domain key")
	}

	want := tr.deriveCrossDomainKey(evt, evt.Data.CrossDomainMessage)
	if key != want {
		t.Fatalf("expected recorded key to match deriveCrossDomainKey's output")
	}

	if _, ok := tr.CrossDomainKey("missing"); ok {
		t.Fatalf("expected no recorded key for an unknown event")
	}
}

func TestCrossChainTrackerLazyInstantiation(t *testing.T) {
	cct := NewCrossChainTracker()
	t1 := cct.GetChainTracker("ethereum")
	t2 := cct.GetChainTracker("ethereum")
	if t1 != t2 {
		t.Fatalf("expected the same Tracker instance to be reused per chain")
	}
	t3 := cct.GetChainTracker("osmosis-1")
	if t3 == t1 {
		t.Fatalf("expected distinct trackers per chain")
	}
}
