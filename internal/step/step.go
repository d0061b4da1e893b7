// Package step defines the executable payloads the planner attaches to
// graph nodes. It is a leaf package so the graph, the registry, and the
// step modules can share the types without import cycles.
package step

import "crateweld/internal/config"

// Kind identifies what a graph node does.
type Kind string

const (
	// KindCrateBuild runs the external tool for one (crate, configuration).
	KindCrateBuild Kind = "crate_build"
	// KindAggregate is a grouping node with no work of its own.
	KindAggregate Kind = "aggregate"
	// KindHostTarget records how a host target links a crate artifact.
	KindHostTarget Kind = "host_target"
)

// Step is one executable unit of a plan.
type Step interface {
	StepKind() Kind
}

// Build tells the external tool to produce one shared library. Every path
// is absolute and precomputed by the planner.
type Build struct {
	Crate         string
	LibraryName   string
	Configuration string
	Triple        string
	ExportSymbol  string

	WorkspaceRoot string
	ManifestDir   string
	ToolchainRoot string
	OutputDir     string
	ArtifactPath  string
	ImportLibPath string
	TargetTempDir string
	ToolTempDir   string

	// StampPath is declared as an output but never written; see
	// dag.Node.AlwaysStale.
	StampPath string
}

func (*Build) StepKind() Kind { return KindCrateBuild }

// Link records how a host target consumes a crate artifact, one record per
// registered configuration.
type Link struct {
	Target  string
	Crate   string
	Records []LinkRecord
}

func (*Link) StepKind() Kind { return KindHostTarget }

// LinkRecord is the per-configuration slice of a link plan.
type LinkRecord struct {
	Configuration string
	ArtifactPath  string
	ImportLibPath string
	Visibility    config.LinkVisibility

	// RetainDirective forces the export symbol to survive host linking on
	// Windows ("/INCLUDE:<symbol>"); the artifact is only dynamically
	// referenced and would otherwise be stripped.
	RetainDirective string

	// LinkArgsPath is where the record is written for host build scripts.
	LinkArgsPath string
}
