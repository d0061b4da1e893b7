package app

import (
	"context"
	"fmt"

	"crateweld/internal/ctxlog"
	"crateweld/internal/dag"
	"crateweld/internal/platform"
)

// Plan resolves paths and constructs the build graph without executing it.
func (a *App) Plan(ctx context.Context) (*dag.Plan, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	triple := a.appConfig.TargetTriple
	if triple == "" {
		triple = platform.HostTriple()
	}

	a.logger.Debug("Building dependency graph from config model...")
	plan, err := dag.Build(ctx, a.model, dag.BuildOptions{
		Resolver:      a.resolver,
		Layout:        a.layout,
		Configuration: a.appConfig.Configuration,
		Triple:        triple,
		SDKOverride:   a.appConfig.SDKRoot,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build dependency graph: %w", err)
	}
	a.logger.Debug("Dependency graph built.", "node_count", len(plan.Graph.Nodes))
	return plan, nil
}

// Run executes a full build: plan, validate handler parity, execute, then
// export the artifacts manifest when asked to.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	plan, err := a.Plan(ctx)
	if err != nil {
		return err
	}

	if err := a.registry.ValidateParity(ctx, plan.Kinds()); err != nil {
		return fmt.Errorf("registry validation failed: %w", err)
	}

	if len(plan.Graph.Nodes) > 0 {
		a.logger.Info("🚀 Starting build run...", "configuration", a.appConfig.Configuration)
		exec := dag.NewExecutor(plan.Graph, a.appConfig.WorkerCount, a.registry)
		if err := exec.Run(ctx); err != nil {
			return fmt.Errorf("build failed: %w", err)
		}
		a.logger.Info("🏁 Build finished.")
	} else {
		a.logger.Warn("No nodes found in graph, execution not required.")
	}

	if a.appConfig.ArtifactsOut != "" {
		if err := a.writeArtifacts(a.appConfig.ArtifactsOut, plan.Artifacts); err != nil {
			return err
		}
		a.logger.Info("Artifacts manifest written.", "path", a.appConfig.ArtifactsOut)
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}
