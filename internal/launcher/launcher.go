// Package launcher invokes the workspace's external build tool through its
// platform launcher script, carrying the environment contract the tool
// reads its inputs from.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"crateweld/internal/ctxlog"
	"crateweld/internal/platform"
	"crateweld/internal/step"
)

// Environment contract between the orchestrator and the external build
// tool. The names are a stable interface; renaming one breaks every build
// tool script in the wild.
const (
	EnvTool           = "CRATEWELD_TOOL"
	EnvConfiguration  = "CRATEWELD_CONFIGURATION"
	EnvManifestDir    = "CRATEWELD_MANIFEST_DIR"
	EnvTargetTempDir  = "CRATEWELD_TARGET_TEMP_DIR"
	EnvOutputDir      = "CRATEWELD_OUTPUT_DIR"
	EnvTargetPlatform = "CRATEWELD_TARGET_PLATFORM"
	EnvToolTempDir    = "CRATEWELD_TOOL_TEMP_DIR"
	EnvRootProjectDir = "CRATEWELD_ROOT_PROJECT_DIR"
	EnvToolchainRoot  = "CRATEWELD_TOOLCHAIN_ROOT"
)

// buildSubcommand is the single argument passed to the launcher script.
const buildSubcommand = "build"

// ExitStatusError reports the external tool's non-zero exit status so the
// process boundary can propagate it unchanged.
type ExitStatusError struct {
	Crate  string
	Status int
}

func (e *ExitStatusError) Error() string {
	return fmt.Sprintf("external build tool exited with status %d for crate %s", e.Status, e.Crate)
}

// Launcher runs the external build tool for build steps.
type Launcher struct {
	Platform platform.Strategy

	// WorkspaceRoot and BuildToolDir locate the launcher script.
	WorkspaceRoot string
	BuildToolDir  string

	// Stdout and Stderr receive the external tool's output verbatim.
	Stdout io.Writer
	Stderr io.Writer

	toolPath func() (string, error)
}

// New creates a Launcher rooted at the workspace.
func New(p platform.Strategy, workspaceRoot, buildToolDir string, stdout, stderr io.Writer) *Launcher {
	return &Launcher{
		Platform:      p,
		WorkspaceRoot: workspaceRoot,
		BuildToolDir:  buildToolDir,
		Stdout:        stdout,
		Stderr:        stderr,
		toolPath:      os.Executable,
	}
}

// ScriptPath returns the absolute path of the platform launcher script.
func (l *Launcher) ScriptPath() string {
	return l.Platform.Join(l.WorkspaceRoot, l.BuildToolDir, l.Platform.LauncherScript())
}

// Run invokes the launcher script for one build step and streams its
// output through. The script's working directory is the crate manifest
// dir; the host environment is inherited with the contract appended, since
// the external tool still needs PATH, HOME, CARGO_HOME and friends.
func (l *Launcher) Run(ctx context.Context, b *step.Build) error {
	logger := ctxlog.FromContext(ctx)

	script := l.ScriptPath()
	if l.Platform.NeedsExecBit() {
		if err := os.Chmod(script, 0o755); err != nil {
			return fmt.Errorf("failed to mark launcher script executable: %w", err)
		}
	}

	env, err := l.contractEnv(b)
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, script, buildSubcommand)
	cmd.Dir = b.ManifestDir
	cmd.Env = append(os.Environ(), env...)
	cmd.Stdout = l.Stdout
	cmd.Stderr = l.Stderr

	logger.Info("Invoking external build tool.", "script", script, "crate", b.Crate, "configuration", b.Configuration)
	logger.Debug("External tool contract.", "dir", cmd.Dir, "env", env)

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ExitStatusError{Crate: b.Crate, Status: exitErr.ExitCode()}
		}
		return fmt.Errorf("failed to run external build tool: %w", err)
	}

	logger.Info("External build tool finished.", "crate", b.Crate, "configuration", b.Configuration)
	return nil
}

// contractEnv renders the nine contract variables for one build step.
// CRATEWELD_TOOLCHAIN_ROOT may legitimately be empty.
func (l *Launcher) contractEnv(b *step.Build) ([]string, error) {
	tool, err := l.toolPath()
	if err != nil {
		return nil, fmt.Errorf("failed to locate own executable: %w", err)
	}
	return []string{
		EnvTool + "=" + tool,
		EnvConfiguration + "=" + b.Configuration,
		EnvManifestDir + "=" + b.ManifestDir,
		EnvTargetTempDir + "=" + b.TargetTempDir,
		EnvOutputDir + "=" + b.OutputDir,
		EnvTargetPlatform + "=" + b.Triple,
		EnvToolTempDir + "=" + b.ToolTempDir,
		EnvRootProjectDir + "=" + b.WorkspaceRoot,
		EnvToolchainRoot + "=" + b.ToolchainRoot,
	}, nil
}
