// Package cargo executes crate build steps by handing them to the
// workspace's external build tool through the launcher contract.
package cargo

import (
	"context"
	"fmt"
	"os"

	"crateweld/internal/ctxlog"
	"crateweld/internal/registry"
	"crateweld/internal/step"
)

// Runner abstracts the launcher so the handler can be tested without
// spawning processes.
type Runner interface {
	Run(ctx context.Context, b *step.Build) error
}

// Module implements the registry.Module interface for this package.
type Module struct {
	// Launcher runs the external tool. Required.
	Launcher Runner
}

// Handler executes crate_build steps.
type Handler struct {
	launcher Runner
}

// Execute prepares the step's directories and runs the external tool once.
// The stamp declared for this step is deliberately never written, so the
// step is re-run on every build; staleness tracking belongs to the
// external tool.
func (h *Handler) Execute(ctx context.Context, s step.Step) error {
	b, ok := s.(*step.Build)
	if !ok {
		return fmt.Errorf("cargo handler got unexpected step type %T", s)
	}

	logger := ctxlog.FromContext(ctx).With("crate", b.Crate, "configuration", b.Configuration)

	for _, dir := range []string{b.OutputDir, b.TargetTempDir, b.ToolTempDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create build directory %s: %w", dir, err)
		}
	}

	if err := h.launcher.Run(ctx, b); err != nil {
		return err
	}

	// Advisory only: some tools stage outputs late, and the artifact is
	// owned by the external tool either way.
	if _, err := os.Stat(b.ArtifactPath); err != nil {
		logger.Warn("External tool succeeded but the artifact is not in place yet.", "artifact", b.ArtifactPath)
	} else {
		logger.Info("Crate artifact ready.", "artifact", b.ArtifactPath)
	}
	return nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterHandler(step.KindCrateBuild, &Handler{launcher: m.Launcher})
}
