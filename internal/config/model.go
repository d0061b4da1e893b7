package config

import "fmt"

// Defaults applied when the workspace block omits the attribute.
const (
	DefaultBuildDir     = "build"
	DefaultBuildToolDir = "build_tool"
)

// LinkVisibility controls how a crate artifact is attached to a target.
type LinkVisibility string

const (
	LinkPrivate LinkVisibility = "private"
	LinkPublic  LinkVisibility = "public"
)

// Model is the unified representation of one workspace: its attributes
// plus every crate and target declared across its files.
type Model struct {
	Workspace *Workspace
	Crates    map[string]*Crate
	Targets   map[string]*Target
}

// Workspace carries the workspace-wide attributes.
type Workspace struct {
	// Root is the absolute directory the workspace was loaded from.
	Root string

	// BuildDir and BuildToolDir are relative to Root unless absolute.
	BuildDir     string
	BuildToolDir string

	// FallbackSubdir is the conventional crate directory probed under a
	// toolchain-derived root. Empty means the resolver default.
	FallbackSubdir string

	SDK *SDK
}

// SDK mirrors the optional sdk block: where toolchain discovery looks.
type SDK struct {
	Name       string   // well-known Windows install dir name
	EnvVar     string   // environment variable consulted for the root
	Executable string   // PATH probe, root is two levels above the binary
	WellKnown  []string // extra candidate roots, probed before the built-ins
}

// Crate describes one native crate wired into the host build.
type Crate struct {
	Name string

	// SourceDir is the directory of the file that declared the crate;
	// relative manifest hints are anchored here.
	SourceDir string

	// ManifestDir is the manifest_dir hint, absolute or relative.
	ManifestDir string

	// LibraryName is the linkable name. Empty means derive it: Cargo.toml
	// when readable, else the crate name.
	LibraryName string

	// ExportSymbol is force-retained by the host linker on Windows.
	ExportSymbol string

	// Configurations lists the configurations to register build steps
	// for. Empty means the active configuration only.
	Configurations []string

	// DependsOn lists "crate.<name>" references built before this one.
	DependsOn []string
}

// Target describes one host build target consuming a crate artifact.
type Target struct {
	Name      string
	SourceDir string
	Crate     string
	Link      LinkVisibility
}

// Validate checks cross references after every file has been merged.
func (m *Model) Validate() error {
	if m.Workspace == nil {
		return fmt.Errorf("model has no workspace")
	}
	for name, target := range m.Targets {
		if _, ok := m.Crates[target.Crate]; !ok {
			return fmt.Errorf("target %q references unknown crate %q", name, target.Crate)
		}
		switch target.Link {
		case LinkPrivate, LinkPublic:
		default:
			return fmt.Errorf("target %q has invalid link visibility %q", name, target.Link)
		}
	}
	for name, crate := range m.Crates {
		for _, dep := range crate.DependsOn {
			ref, ok := CrateRef(dep)
			if !ok {
				return fmt.Errorf("crate %q dependency %q must be of the form crate.<name>", name, dep)
			}
			if _, exists := m.Crates[ref]; !exists {
				return fmt.Errorf("crate %q depends on unknown crate %q", name, ref)
			}
		}
	}
	return nil
}

// CrateRef parses a "crate.<name>" reference.
func CrateRef(ref string) (string, bool) {
	const prefix = "crate."
	if len(ref) <= len(prefix) || ref[:len(prefix)] != prefix {
		return "", false
	}
	return ref[len(prefix):], true
}
