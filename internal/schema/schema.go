package schema

import "github.com/hashicorp/hcl/v2"

// Workspace represents the optional `workspace` block. At most one may
// appear across all loaded files.
type Workspace struct {
	BuildDir       string `hcl:"build_dir,optional"`
	BuildToolDir   string `hcl:"build_tool_dir,optional"`
	FallbackSubdir string `hcl:"fallback_subdir,optional"`
	SDK            *SDK   `hcl:"sdk,block"`
}

// SDK represents the `sdk` block inside workspace: where toolchain
// discovery looks when no explicit root is given.
type SDK struct {
	Name       string   `hcl:"name,optional"`
	EnvVar     string   `hcl:"env_var,optional"`
	Executable string   `hcl:"executable,optional"`
	WellKnown  []string `hcl:"well_known,optional"`
}

// Crate represents a `crate` block: one native library build wired into
// the host graph.
type Crate struct {
	Name           string   `hcl:"name,label"`
	ManifestDir    string   `hcl:"manifest_dir"`
	LibraryName    string   `hcl:"library_name,optional"`
	ExportSymbol   string   `hcl:"export_symbol,optional"`
	Configurations []string `hcl:"configurations,optional"`
	DependsOn      []string `hcl:"depends_on,optional"`
}

// Target represents a `target` block: one host consumer of a crate
// artifact.
type Target struct {
	Name  string `hcl:"name,label"`
	Crate string `hcl:"crate"`
	Link  string `hcl:"link,optional"`
}

// FileRoot decodes every top-level block a workspace file may carry.
type FileRoot struct {
	Workspaces []*Workspace `hcl:"workspace,block"`
	Crates     []*Crate     `hcl:"crate,block"`
	Targets    []*Target    `hcl:"target,block"`
	Body       hcl.Body     `hcl:",remain"`
}
