package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// WorkspacePath is a .hcl file or a directory of .hcl files.
	WorkspacePath string

	// Configuration is the active build configuration.
	Configuration string

	// TargetTriple selects the target platform. Empty means the host.
	TargetTriple string

	// SDKRoot overrides toolchain root discovery entirely.
	SDKRoot string

	LogFormat    string
	LogLevel     string
	WorkerCount  int
	ArtifactsOut string
}

// NewConfig validates a Config and fills the remaining defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.WorkspacePath == "" {
		return nil, errors.New("WorkspacePath is a required configuration field and cannot be empty")
	}
	if cfg.Configuration == "" {
		cfg.Configuration = "release"
	}
	return &cfg, nil
}
