// Copyright 2025 Certen Protocol
//
// Package types defines the content-addressed data model shared by the
// Sparse Merkle Tree, the causality graph, and the indexer: typed ids,
// SMT node shapes, causality entities, and the ingestion event envelope.

package types

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/timewave-computer/almanac-sub001/pkg/causality/hash"
)

// Hash is the shared 32-byte content-addressed value.
type Hash = hash.Hash

// EmptyHash is the all-zero sentinel hash.
var EmptyHash = hash.Empty

// HashToHex renders h as lowercase, unpadded, 64-char hex.
func HashToHex(h Hash) string {
	return hex.EncodeToString(h[:])
}

// HashFromHex parses a 64-char hex string into a Hash. The conversion is
// bijective with HashToHex over well-formed input.
func HashFromHex(s string) (Hash, error) {
	var h Hash
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("invalid hash hex: %w", err)
	}
	if len(b) != hash.Size {
		return h, fmt.Errorf("invalid hash length: got %d bytes, want %d", len(b), hash.Size)
	}
	copy(h[:], b)
	return h, nil
}

// idKind names each newtype wrapper purely for error messages.
type idKind string

// newtypeID is the common shape shared by every typed id below: a
// content-addressed Hash with null/hex helpers. Each public type embeds one
// of these rather than aliasing Hash directly so that EntityId and
// DomainId remain distinct types to the compiler.
type newtypeID struct {
	Hash Hash
}

func (n newtypeID) IsNull() bool   { return n.Hash.IsEmpty() }
func (n newtypeID) Inner() Hash    { return n.Hash }
func (n newtypeID) Hex() string    { return HashToHex(n.Hash) }
func (n newtypeID) String() string { return n.Hex() }

// EntityId identifies any content-addressed entity.
type EntityId struct{ newtypeID }

// NewEntityId wraps h as an EntityId.
func NewEntityId(h Hash) EntityId { return EntityId{newtypeID{h}} }

// NullEntityId is the all-zero EntityId.
func NullEntityId() EntityId { return EntityId{newtypeID{EmptyHash}} }

// EntityIdFromHex parses a hex string into an EntityId.
func EntityIdFromHex(s string) (EntityId, error) {
	h, err := HashFromHex(s)
	if err != nil {
		return EntityId{}, err
	}
	return NewEntityId(h), nil
}

// The remaining id types follow the same shape as EntityId. Go lacks
// newtype-over-newtype inheritance, so each is spelled out explicitly to
// keep them nominally distinct (required by §3.1: "newtype wrappers").

type DomainId struct{ newtypeID }

func NewDomainId(h Hash) DomainId  { return DomainId{newtypeID{h}} }
func NullDomainId() DomainId       { return DomainId{newtypeID{EmptyHash}} }

type ExprId struct{ newtypeID }

func NewExprId(h Hash) ExprId { return ExprId{newtypeID{h}} }
func NullExprId() ExprId      { return ExprId{newtypeID{EmptyHash}} }

type ValueExprId struct{ newtypeID }

func NewValueExprId(h Hash) ValueExprId { return ValueExprId{newtypeID{h}} }
func NullValueExprId() ValueExprId      { return ValueExprId{newtypeID{EmptyHash}} }

type HandlerId struct{ newtypeID }

func NewHandlerId(h Hash) HandlerId { return HandlerId{newtypeID{h}} }
func NullHandlerId() HandlerId      { return HandlerId{newtypeID{EmptyHash}} }

type IntentId struct{ newtypeID }

func NewIntentId(h Hash) IntentId { return IntentId{newtypeID{h}} }
func NullIntentId() IntentId      { return IntentId{newtypeID{EmptyHash}} }

type ResourceId struct{ newtypeID }

func NewResourceId(h Hash) ResourceId { return ResourceId{newtypeID{h}} }
func NullResourceId() ResourceId      { return ResourceId{newtypeID{EmptyHash}} }

type TransactionId struct{ newtypeID }

func NewTransactionId(h Hash) TransactionId { return TransactionId{newtypeID{h}} }
func NullTransactionId() TransactionId      { return TransactionId{newtypeID{EmptyHash}} }

type EffectId struct{ newtypeID }

func NewEffectId(h Hash) EffectId { return EffectId{newtypeID{h}} }
func NullEffectId() EffectId      { return EffectId{newtypeID{EmptyHash}} }

// ChainId is an opaque chain identifier (e.g. "ethereum", "osmosis-1").
type ChainId string

// --- SMT node shapes (§3.2) ---------------------------------------------

// SmtChildren is an internal SMT node: 64 contiguous bytes on disk,
// left ‖ right.
type SmtChildren struct {
	Left  Hash
	Right Hash
}

// Bytes serialises the children as left ‖ right (exactly 64 bytes).
func (c SmtChildren) Bytes() []byte {
	out := make([]byte, 0, hash.Size*2)
	out = append(out, c.Left[:]...)
	out = append(out, c.Right[:]...)
	return out
}

// ChildrenFromBytes parses a 64-byte left‖right blob. Any other length is
// rejected per SPEC_FULL.md §6.1.
func ChildrenFromBytes(b []byte) (SmtChildren, error) {
	var c SmtChildren
	if len(b) != hash.Size*2 {
		return c, fmt.Errorf("smt: invalid children data length: got %d, want %d", len(b), hash.Size*2)
	}
	copy(c.Left[:], b[:hash.Size])
	copy(c.Right[:], b[hash.Size:])
	return c, nil
}

// SmtProof is the ordered list of sibling hashes and directions produced
// by Tree.Proof. Direction true means the authenticated subhash is the
// RIGHT child at that level.
type SmtProof struct {
	Siblings   []Hash
	Directions []bool
}

// Valid reports whether the proof's parallel slices are well-formed.
func (p SmtProof) Valid() bool {
	return len(p.Siblings) == len(p.Directions)
}

// --- TypedDomain (§3.3) --------------------------------------------------

// TypedDomainKind discriminates the TypedDomain tagged variant.
type TypedDomainKind string

const (
	TypedDomainVerifiable TypedDomainKind = "verifiable"
	TypedDomainService    TypedDomainKind = "service"
)

// TypedDomain is a tagged variant describing an execution environment.
type TypedDomain struct {
	Kind         TypedDomainKind
	DomainId     DomainId
	Capabilities []string // VerifiableDomain only
	ServiceType  string   // ServiceDomain only
	Endpoint     string   // ServiceDomain only, optional
}

// DefaultTypedDomain is a ServiceDomain with no endpoint, matching the
// Rust reference's #[derive(Default)] behaviour.
func DefaultTypedDomain() TypedDomain {
	return TypedDomain{Kind: TypedDomainService}
}

// --- Causality entities (§3.3) ------------------------------------------

// ResourceFlow is a typed edge describing resources moving between events.
type ResourceFlow struct {
	FromEvent    string
	ToEvent      string
	ResourceType string
	ResourceData []byte
	Timestamp    time.Time
}

// CrossChainReference links two chains via bridge/oracle/message semantics.
type CrossChainReference struct {
	SourceChain ChainId
	TargetChain ChainId
	RefType     string
	RefData     []byte
	Timestamp   time.Time
}

// CausalityResource is a content-addressed resource entity.
type CausalityResource struct {
	Id           EntityId
	Name         string
	Domain       DomainId
	Timestamp    time.Time
	ResourceType string
	Quantity     uint64
}

// CausalityEffect is a content-addressed effect entity.
type CausalityEffect struct {
	Id                           EntityId
	Name                         string
	Domain                       DomainId
	Timestamp                    time.Time
	EffectType                   string
	Inputs                       []ResourceFlow
	Outputs                      []ResourceFlow
	Expression                   *ExprId
	ScopedBy                     *HandlerId
	IntentId                     *IntentId
	SourceTypedDomain            *TypedDomain
	TargetTypedDomain            *TypedDomain
	OriginatingDataflowInstance  *EntityId
}

// CausalityTransaction is a content-addressed transaction entity.
type CausalityTransaction struct {
	Id        EntityId
	Name      string
	Domain    DomainId
	Timestamp time.Time
	Effects   []EffectId
	Intents   []IntentId
	Inputs    []ResourceFlow
	Outputs   []ResourceFlow
}

// CausalityIntent is a content-addressed intent entity.
type CausalityIntent struct {
	Id               EntityId
	Name             string
	Domain           DomainId
	Timestamp        time.Time
	IntentType       string
	RequiredInputs   []ResourceFlow
	ExpectedOutputs  []ResourceFlow
	Constraints      []byte
	IsSatisfied      bool
	Priority         uint32
	TargetTypedDomain *TypedDomain
}

// CausalityHandler is a content-addressed effect-handler entity.
type CausalityHandler struct {
	Id         EntityId
	Name       string
	Domain     DomainId
	Timestamp  time.Time
	EffectTypes []string
	Expression ExprId
}

// CausalityDomain is a content-addressed execution-domain entity.
type CausalityDomain struct {
	Id         EntityId
	Name       string
	Domain     DomainId
	Timestamp  time.Time
	DomainType string
	Capabilities []string
	Config     []byte
}

// CausalityNullifier is a content-addressed double-spend commitment.
type CausalityNullifier struct {
	Id            EntityId
	Name          string
	Domain        DomainId
	Timestamp     time.Time
	ResourceId    ResourceId
	NullifierHash Hash
}

// --- CausalityEvent (§3.4) ----------------------------------------------

// CausalityEventType discriminates the CausalityEvent tagged variant.
type CausalityEventType string

const (
	EventTypeResource        CausalityEventType = "resource"
	EventTypeEffect          CausalityEventType = "effect"
	EventTypeTransaction     CausalityEventType = "transaction"
	EventTypeIntent          CausalityEventType = "intent"
	EventTypeHandler         CausalityEventType = "handler"
	EventTypeDomain          CausalityEventType = "domain"
	EventTypeNullifier       CausalityEventType = "nullifier"
	EventTypeCrossDomainMsg  CausalityEventType = "cross_domain_message"
	EventTypeTegStateChange  CausalityEventType = "teg_state_change"
)

// CrossDomainMessage carries a cross-domain message payload.
type CrossDomainMessage struct {
	SourceDomain DomainId
	TargetDomain DomainId
	MessageType  string
	Payload      []byte
}

// TegStateChange records a transition of the TEG (typed execution graph)
// state root.
type TegStateChange struct {
	PreviousRoot Hash
	NewRoot      Hash
	Transition   []byte
}

// CausalityEventData is a tagged variant mirroring CausalityEventType; at
// most one field other than the discriminant is meaningful per value.
type CausalityEventData struct {
	Resource            *CausalityResource
	Effect               *CausalityEffect
	Transaction          *CausalityTransaction
	Intent               *CausalityIntent
	Handler              *CausalityHandler
	Domain               *CausalityDomain
	Nullifier            *CausalityNullifier
	CrossDomainMessage   *CrossDomainMessage
	TegStateChange       *TegStateChange
}

// CausalityEvent is the unit of ingestion: a normalised, chain-tagged
// event carrying one typed payload.
type CausalityEvent struct {
	Id          string
	ChainId     ChainId
	BlockNumber uint64
	TxHash      string
	EventType   CausalityEventType
	Timestamp   time.Time
	Data        CausalityEventData
}

// --- CausalityIndex (§3.5) ------------------------------------------------

// CausalityIndex is the persisted index metadata.
type CausalityIndex struct {
	Root        Hash
	EventCount  uint64
	ResourceCount uint64
	LastUpdated time.Time
	Chains      []ChainId
}

// NewCausalityIndex returns a zero-valued index with an empty root.
func NewCausalityIndex() CausalityIndex {
	return CausalityIndex{Root: EmptyHash, Chains: []ChainId{}}
}

// --- CausalityRelation (§4.4) --------------------------------------------

// RelationType discriminates the causal relation kinds.
type RelationType string

const (
	RelationDirectDependency RelationType = "direct_dependency"
	RelationResourceFlow     RelationType = "resource_flow"
	RelationCrossChain       RelationType = "cross_chain"
	RelationTemporal         RelationType = "temporal"
	RelationState            RelationType = "state"
)

// CustomRelationType builds a RelationType for the Custom(string) variant.
func CustomRelationType(name string) RelationType {
	return RelationType("custom:" + name)
}

// CausalityRelation is a directed, weighted edge between two entities or
// events, identified by their Hash.
type CausalityRelation struct {
	FromEntity   Hash
	ToEntity     Hash
	RelationType RelationType
	Strength     float64 // in [0, 1]
	EstablishedAt time.Time
	Metadata     map[string]string
}

// --- Statistics & proofs (§4.7, §6.4) ------------------------------------

// CausalityProof bundles a root with the proofs needed to audit a set of
// events/resources against it.
type CausalityProof struct {
	Root          Hash
	EventProofs   map[string]SmtProof
	ResourceProofs map[string]SmtProof
	Metadata      ProofMetadata
}

// ProofMetadata carries provenance for a CausalityProof.
type ProofMetadata struct {
	GeneratedAt time.Time
	HasherType  string
}

// IndexerStatistics is the read-only snapshot returned by get_statistics.
type IndexerStatistics struct {
	TotalEvents      uint64
	TotalResources   uint64
	IndexedChains    []ChainId
	CurrentRoot      Hash
	LastUpdated      time.Time
	ChainEventCounts map[ChainId]uint64
}

// EventCausalityAnalysis is the result of Tracker.AnalyzeEventCausality.
type EventCausalityAnalysis struct {
	EventId         string
	ChainId         ChainId
	DependencyCount int
	DependentCount  int
	CausalDepth     int
	IsRoot          bool
	IsLeaf          bool
}
