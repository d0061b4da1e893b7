package dag

import (
	"sort"
	"sync"
	"sync/atomic"

	"crateweld/internal/resolver"
	"crateweld/internal/step"
)

// NodeState tracks a node through execution.
type NodeState int32

const (
	Pending NodeState = iota
	Running
	Done
	Failed
)

// Graph is a collection of nodes and their dependencies, representing a
// DAG. All mutating operations are concurrency-safe.
type Graph struct {
	// mutex protects the Nodes map during concurrent access.
	mutex sync.RWMutex
	// Nodes stores all nodes in the graph, keyed by their unique ID.
	Nodes map[string]*Node
}

// Node represents a single vertex: one unit of planned work.
type Node struct {
	ID   string
	Kind step.Kind

	// Step is the executable payload. It is nil for aggregate nodes,
	// which are pure synchronization points.
	Step step.Step

	// AlwaysStale is set on every crate_build node: the step declares a
	// stamp output that is deliberately never written, so the node can
	// never be considered up to date. Staleness tracking belongs to the
	// external tool; do not turn this into incremental skipping.
	AlwaysStale bool

	// AlwaysBuild marks an aggregate with no consuming host target. It
	// still runs on every build so FFI-only crates get built.
	AlwaysBuild bool

	// Deps holds the nodes this node depends on (predecessors).
	Deps map[string]*Node
	// Dependents holds the nodes that depend on this node (successors).
	Dependents map[string]*Node

	state    atomic.Int32
	err      error
	depCount atomic.Int32
	skipOnce sync.Once
}

// State reports the node's current execution state.
func (n *Node) State() NodeState {
	return NodeState(n.state.Load())
}

// Err reports the failure recorded during execution, if any.
func (n *Node) Err() error {
	return n.err
}

// SetInitialCounters primes the unmet-dependency counter before execution.
func (n *Node) SetInitialCounters() {
	n.depCount.Store(int32(len(n.Deps)))
}

// Plan is the fully resolved build graph plus everything reporting needs.
type Plan struct {
	Graph *Graph

	// Artifacts lists every declared build output in deterministic order.
	Artifacts []Artifact

	// Probes records the toolchain root lookups made while planning.
	Probes []resolver.Probe
}

// Artifact describes one declared build output; serialized as-is by the
// artifacts export.
type Artifact struct {
	Target        string `json:"target,omitempty"`
	Crate         string `json:"crate"`
	Configuration string `json:"configuration"`
	Path          string `json:"artifact"`
	ImportLib     string `json:"import_lib,omitempty"`
}

// Kinds returns the distinct node kinds present in the plan, sorted.
func (p *Plan) Kinds() []step.Kind {
	seen := make(map[step.Kind]struct{})
	for _, node := range p.Graph.Nodes {
		seen[node.Kind] = struct{}{}
	}
	kinds := make([]step.Kind, 0, len(seen))
	for kind := range seen {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
