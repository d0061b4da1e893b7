package cli

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/subcommands"

	"crateweld/internal/app"
	"crateweld/internal/launcher"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// commonFlags holds the flags shared by every subcommand.
type commonFlags struct {
	workspace string
	config    string
	triple    string
	sdkRoot   string
	logFormat string
	logLevel  string
	workers   int
}

func (c *commonFlags) register(f *flag.FlagSet) {
	f.StringVar(&c.workspace, "workspace", ".", "path to the workspace file or directory")
	f.StringVar(&c.workspace, "w", ".", "shorthand for -workspace")
	f.StringVar(&c.config, "config", "", "active build configuration")
	f.StringVar(&c.triple, "target", "", "target platform triple (defaults to the host)")
	f.StringVar(&c.sdkRoot, "sdk-root", "", "explicit toolchain root, overriding discovery")
	f.StringVar(&c.logFormat, "log-format", "", "log output format: 'text' or 'json'")
	f.StringVar(&c.logLevel, "log-level", "", "logging level: 'debug', 'info', 'warn', 'error'")
	f.IntVar(&c.workers, "workers", 0, "number of concurrent build workers")
}

// appConfig resolves the effective configuration. Explicit flags win over the
// workspace settings file, which wins over the built-in defaults.
func (c *commonFlags) appConfig() (*app.Config, *app.Settings, error) {
	settings, err := app.LoadSettings(workspaceDir(c.workspace))
	if err != nil {
		return nil, nil, &ExitError{Code: 2, Message: err.Error()}
	}

	cfg := app.Config{
		WorkspacePath: c.workspace,
		Configuration: firstNonEmpty(c.config, settings.Configuration, "release"),
		TargetTriple:  c.triple,
		SDKRoot:       firstNonEmpty(c.sdkRoot, settings.SDKRoot),
		LogFormat:     strings.ToLower(firstNonEmpty(c.logFormat, settings.LogFormat, "text")),
		LogLevel:      strings.ToLower(firstNonEmpty(c.logLevel, settings.LogLevel, "info")),
		WorkerCount:   firstPositive(c.workers, settings.Workers),
	}

	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, nil, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, nil, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	resolved, err := app.NewConfig(cfg)
	if err != nil {
		return nil, nil, &ExitError{Code: 2, Message: err.Error()}
	}
	return resolved, settings, nil
}

// workspaceDir locates the directory the settings file lives in: the
// workspace path itself, or its parent when the path names a file.
func workspaceDir(path string) string {
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return filepath.Dir(path)
	}
	return path
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}

// exitStatusFor maps an error to the process exit status. Flag and settings
// problems exit with code 2, a failed external build tool propagates its own
// exit status, and everything else exits with 1.
func exitStatusFor(err error) subcommands.ExitStatus {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return subcommands.ExitStatus(exitErr.Code)
	}
	var toolErr *launcher.ExitStatusError
	if errors.As(err, &toolErr) && toolErr.Status > 0 {
		return subcommands.ExitStatus(toolErr.Status)
	}
	return subcommands.ExitFailure
}
