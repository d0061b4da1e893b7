package dag

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"crateweld/internal/cargoprobe"
	"crateweld/internal/config"
	"crateweld/internal/ctxlog"
	"crateweld/internal/resolver"
	"crateweld/internal/step"
)

// BuildOptions carries everything the planner needs besides the model.
type BuildOptions struct {
	Resolver *resolver.Resolver
	Layout   resolver.Layout

	// Configuration is the active configuration, used for crates without
	// an explicit configurations list.
	Configuration string

	// Triple is the target platform triple stamped into build steps.
	Triple string

	// SDKOverride wins over every workspace toolchain discovery source.
	SDKOverride string

	// ProbeManifest reads a crate manifest for library-name defaulting.
	// Nil means cargoprobe.Load.
	ProbeManifest func(dir string) (*cargoprobe.Manifest, error)
}

// builder accumulates planner state across the construction passes.
type builder struct {
	model *config.Model
	opts  BuildOptions
	root  string            // resolved toolchain root, may be ""
	libs  map[string]string // crate name -> derived library name
	plan  *Plan
}

// Build constructs a complete, validated plan from a config model.
func Build(ctx context.Context, model *config.Model, opts BuildOptions) (*Plan, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: Starting graph construction.")

	if opts.Configuration == "" {
		return nil, fmt.Errorf("no active configuration given")
	}
	if opts.ProbeManifest == nil {
		opts.ProbeManifest = cargoprobe.Load
	}

	root, probes := opts.Resolver.ToolchainRoot(ToolchainSpecFor(model.Workspace, opts.SDKOverride))
	if root == "" {
		logger.Warn("Toolchain root unresolved; passing an empty value through to the external tool.")
	}

	b := &builder{
		model: model,
		opts:  opts,
		root:  root,
		libs:  make(map[string]string),
		plan:  &Plan{Graph: New(), Probes: probes},
	}

	if err := b.createCrateNodes(ctx); err != nil {
		return nil, err
	}
	if err := b.createTargetNodes(ctx); err != nil {
		return nil, err
	}
	if err := b.linkCrateDependencies(ctx); err != nil {
		return nil, err
	}

	for _, node := range b.plan.Graph.Nodes {
		node.SetInitialCounters()
	}

	if err := b.plan.Graph.DetectCycles(); err != nil {
		return nil, fmt.Errorf("error validating dependency graph: %w", err)
	}

	logger.Debug("Build: Graph construction successful.", "node_count", len(b.plan.Graph.Nodes))
	return b.plan, nil
}

// ToolchainSpecFor assembles the discovery spec from the workspace and the
// explicit override. The doctor report reuses it so diagnosis and planning
// probe the same sources.
func ToolchainSpecFor(ws *config.Workspace, override string) resolver.ToolchainSpec {
	spec := resolver.ToolchainSpec{Override: override}
	if ws.SDK != nil {
		spec.EnvVar = ws.SDK.EnvVar
		spec.Executable = ws.SDK.Executable
		spec.ExtraRoots = ws.SDK.WellKnown
		spec.SDKName = ws.SDK.Name
	}
	return spec
}

// configurationsOf returns the configurations a crate registers build
// steps for: its explicit list, or the active configuration alone. Each
// entry becomes its own node; a single configuration-parameterized node
// cannot be expressed by older host tools.
func (b *builder) configurationsOf(crate *config.Crate) []string {
	if len(crate.Configurations) > 0 {
		return crate.Configurations
	}
	return []string{b.opts.Configuration}
}

// createCrateNodes performs the first pass: one crate_build node per
// (crate, configuration), each with fully resolved paths.
func (b *builder) createCrateNodes(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	ws := b.model.Workspace

	for _, name := range sortedKeys(b.model.Crates) {
		crate := b.model.Crates[name]
		crateLogger := logger.With("crate", name)

		manifestDir, err := b.opts.Resolver.ManifestDir(resolver.ManifestDirRequest{
			Hint:           crate.ManifestDir,
			SourceDir:      crate.SourceDir,
			KnownRoot:      b.root,
			FallbackSubdir: ws.FallbackSubdir,
		})
		if errors.Is(err, resolver.ErrManifestDirMissing) {
			crateLogger.Warn("Manifest directory not found, proceeding with best guess.", "manifest_dir", manifestDir)
		}

		lib := b.libraryName(ctx, crate, manifestDir)
		b.libs[name] = lib

		for _, cfg := range b.configurationsOf(crate) {
			bctx := resolver.BuildContext{
				CrateName:       name,
				ManifestDirHint: crate.ManifestDir,
				SourceDir:       crate.SourceDir,
				LibraryName:     lib,
				ExportSymbol:    crate.ExportSymbol,
				Configuration:   cfg,
				PlatformTriple:  b.opts.Triple,
			}
			paths, _ := b.opts.Resolver.ResolveWithRoot(bctx, b.opts.Layout, b.root, ws.FallbackSubdir)

			node := &Node{
				ID:   BuildNodeID(name, cfg),
				Kind: step.KindCrateBuild,
				Step: &step.Build{
					Crate:         name,
					LibraryName:   lib,
					Configuration: cfg,
					Triple:        b.opts.Triple,
					ExportSymbol:  crate.ExportSymbol,
					WorkspaceRoot: ws.Root,
					ManifestDir:   paths.ManifestDir,
					ToolchainRoot: paths.ToolchainRoot,
					OutputDir:     paths.OutputDir,
					ArtifactPath:  paths.ArtifactPath,
					ImportLibPath: paths.ImportLibPath,
					TargetTempDir: b.opts.Layout.TargetTempDir(name, cfg),
					ToolTempDir:   b.opts.Layout.ToolTempDir(),
					StampPath:     b.opts.Layout.StampPath(name, cfg),
				},
				AlwaysStale: true,
			}
			if err := b.plan.Graph.AddNode(node); err != nil {
				return fmt.Errorf("registering build step for crate %q: %w", name, err)
			}
			crateLogger.Debug("Registered build step.", "node_id", node.ID, "artifact", paths.ArtifactPath)
		}
	}
	return nil
}

// libraryName derives the linkable name: the explicit attribute, then the
// crate manifest, then the block label.
func (b *builder) libraryName(ctx context.Context, crate *config.Crate, manifestDir string) string {
	if crate.LibraryName != "" {
		return crate.LibraryName
	}
	if m, err := b.opts.ProbeManifest(manifestDir); err == nil {
		if name := m.LibraryName(); name != "" {
			return name
		}
	} else {
		ctxlog.FromContext(ctx).Debug("Crate manifest probe failed, using crate name.", "crate", crate.Name, "error", err)
	}
	return crate.Name
}

// createTargetNodes performs the second pass: an aggregate and a
// host_target node per target, plus always-build aggregates for crates no
// target consumes.
func (b *builder) createTargetNodes(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	graph := b.plan.Graph
	windows := b.opts.Resolver.Platform.OS() == "windows"

	consumed := make(map[string]bool)

	for _, name := range sortedKeys(b.model.Targets) {
		target := b.model.Targets[name]
		crate := b.model.Crates[target.Crate]
		consumed[target.Crate] = true

		aggregate := &Node{ID: AggregateNodeID(name), Kind: step.KindAggregate}
		if err := graph.AddNode(aggregate); err != nil {
			return err
		}

		var records []step.LinkRecord
		for _, cfg := range b.configurationsOf(crate) {
			if err := graph.AddEdge(BuildNodeID(crate.Name, cfg), aggregate.ID); err != nil {
				return err
			}
			records = append(records, b.linkRecord(crate, cfg, target.Link, windows))
			b.plan.Artifacts = append(b.plan.Artifacts, b.artifact(name, crate, cfg))
		}

		link := &Node{
			ID:   TargetNodeID(name),
			Kind: step.KindHostTarget,
			Step: &step.Link{Target: name, Crate: crate.Name, Records: records},
		}
		if err := graph.AddNode(link); err != nil {
			return err
		}
		if err := graph.AddEdge(aggregate.ID, link.ID); err != nil {
			return err
		}
		logger.Debug("Registered host target link.", "target", name, "crate", crate.Name)
	}

	for _, name := range sortedKeys(b.model.Crates) {
		if consumed[name] {
			continue
		}
		crate := b.model.Crates[name]
		aggregate := &Node{ID: AggregateNodeID(name), Kind: step.KindAggregate, AlwaysBuild: true}
		if err := graph.AddNode(aggregate); err != nil {
			return err
		}
		for _, cfg := range b.configurationsOf(crate) {
			if err := graph.AddEdge(BuildNodeID(name, cfg), aggregate.ID); err != nil {
				return err
			}
			b.plan.Artifacts = append(b.plan.Artifacts, b.artifact("", crate, cfg))
		}
		logger.Debug("Registered always-build aggregate for unconsumed crate.", "crate", name)
	}
	return nil
}

func (b *builder) linkRecord(crate *config.Crate, cfg string, vis config.LinkVisibility, windows bool) step.LinkRecord {
	lib := b.libs[crate.Name]
	rec := step.LinkRecord{
		Configuration: cfg,
		ArtifactPath:  b.opts.Layout.ArtifactPath(cfg, lib),
		Visibility:    vis,
		LinkArgsPath:  b.opts.Layout.LinkArgsPath(cfg, crate.Name),
	}
	if ext := b.opts.Resolver.Platform.ImportLibExtension(); ext != "" {
		rec.ImportLibPath = rec.ArtifactPath + ext
	}
	if windows && crate.ExportSymbol != "" {
		rec.RetainDirective = "/INCLUDE:" + crate.ExportSymbol
	}
	return rec
}

func (b *builder) artifact(target string, crate *config.Crate, cfg string) Artifact {
	lib := b.libs[crate.Name]
	path := b.opts.Layout.ArtifactPath(cfg, lib)
	a := Artifact{Target: target, Crate: crate.Name, Configuration: cfg, Path: path}
	if ext := b.opts.Resolver.Platform.ImportLibExtension(); ext != "" {
		a.ImportLib = path + ext
	}
	return a
}

// linkCrateDependencies performs the third pass: depends_on references
// become edges between build steps of the same configuration.
func (b *builder) linkCrateDependencies(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Starting crate dependency linking pass.")

	graph := b.plan.Graph
	for _, name := range sortedKeys(b.model.Crates) {
		crate := b.model.Crates[name]
		for _, ref := range crate.DependsOn {
			depName, ok := config.CrateRef(ref)
			if !ok {
				return fmt.Errorf("crate %q has malformed dependency %q", name, ref)
			}
			for _, cfg := range b.configurationsOf(crate) {
				depID := BuildNodeID(depName, cfg)
				if _, exists := graph.Nodes[depID]; !exists {
					return fmt.Errorf("crate %q depends on %q which does not build configuration %q", name, depName, cfg)
				}
				if err := graph.AddEdge(depID, BuildNodeID(name, cfg)); err != nil {
					return err
				}
			}
		}
	}

	logger.Debug("Finished crate dependency linking pass.")
	return nil
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
