package resolver

import "crateweld/internal/platform"

// BuildContext is the immutable per-(crate, configuration) input to path
// resolution. The planner builds one for every build step it registers.
type BuildContext struct {
	TargetName      string
	CrateName       string
	ManifestDirHint string
	SourceDir       string
	LibraryName     string
	ExportSymbol    string
	Configuration   string
	PlatformTriple  string
}

// ResolvedPaths is the output of one resolution pass. Paths are absolute;
// ToolchainRoot and ImportLibPath may be empty. A fresh value is computed
// per invocation and never mutated afterwards.
type ResolvedPaths struct {
	ManifestDir   string
	ToolchainRoot string
	OutputDir     string
	ArtifactPath  string

	// ImportLibPath is the Windows import library the host links against.
	// Cargo writes it next to the dll as <artifact>.lib.
	ImportLibPath string
}

// Layout maps the workspace build directory onto the per-configuration
// output scheme.
type Layout struct {
	Platform platform.Strategy
	BuildDir string // absolute build directory under the workspace root
}

// OutputDir is where artifacts for one configuration land.
func (l Layout) OutputDir(configuration string) string {
	return l.Platform.Join(l.BuildDir, configuration)
}

// ArtifactPath is the shared library the external tool must produce.
func (l Layout) ArtifactPath(configuration, library string) string {
	return l.Platform.Join(l.OutputDir(configuration), l.Platform.SharedLibName(library))
}

// LinkArgsPath is where hostlink records the link plan for a crate.
func (l Layout) LinkArgsPath(configuration, crate string) string {
	return l.Platform.Join(l.OutputDir(configuration), crate+".link")
}

// TargetTempDir is the scratch directory handed to the external tool for
// one crate and configuration.
func (l Layout) TargetTempDir(crate, configuration string) string {
	return l.Platform.Join(l.BuildDir, ".tmp", crate, configuration)
}

// ToolTempDir is scratch space shared by every invocation of the external
// tool.
func (l Layout) ToolTempDir() string {
	return l.Platform.Join(l.BuildDir, ".tool")
}

// StampPath is the declared output that is deliberately never written, so
// the owning build step stays permanently out of date. Staleness tracking
// belongs to the external tool, not to this graph.
func (l Layout) StampPath(crate, configuration string) string {
	return l.Platform.Join(l.TargetTempDir(crate, configuration), "stamp")
}

// Resolve computes every path one build step needs. The error is either
// nil or ErrManifestDirMissing; the returned paths are usable either way.
func (r *Resolver) Resolve(ctx BuildContext, layout Layout, toolchain ToolchainSpec, fallbackSubdir string) (ResolvedPaths, []Probe, error) {
	root, probes := r.ToolchainRoot(toolchain)
	paths, err := r.ResolveWithRoot(ctx, layout, root, fallbackSubdir)
	return paths, probes, err
}

// ResolveWithRoot is Resolve for callers that already hold the toolchain
// root, such as the planner, which probes it once per run rather than once
// per build step.
func (r *Resolver) ResolveWithRoot(ctx BuildContext, layout Layout, root, fallbackSubdir string) (ResolvedPaths, error) {
	manifestDir, err := r.ManifestDir(ManifestDirRequest{
		Hint:           ctx.ManifestDirHint,
		SourceDir:      ctx.SourceDir,
		KnownRoot:      root,
		FallbackSubdir: fallbackSubdir,
	})

	paths := ResolvedPaths{
		ManifestDir:   manifestDir,
		ToolchainRoot: root,
		OutputDir:     layout.OutputDir(ctx.Configuration),
		ArtifactPath:  layout.ArtifactPath(ctx.Configuration, ctx.LibraryName),
	}
	if ext := r.Platform.ImportLibExtension(); ext != "" {
		paths.ImportLibPath = paths.ArtifactPath + ext
	}
	return paths, err
}
