package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SettingsFileName is looked up in the workspace directory.
const SettingsFileName = ".crateweld.yaml"

// Settings are the optional per-workspace defaults. Explicit flags win
// over them, and they win over the built-in defaults.
type Settings struct {
	Configuration string `yaml:"configuration"`
	LogFormat     string `yaml:"log_format"`
	LogLevel      string `yaml:"log_level"`
	Workers       int    `yaml:"workers"`
	SDKRoot       string `yaml:"sdk_root"`
	ArtifactsOut  string `yaml:"artifacts_out"`
}

// LoadSettings reads .crateweld.yaml from dir. A missing file is not an
// error; a malformed one is.
func LoadSettings(dir string) (*Settings, error) {
	raw, err := os.ReadFile(filepath.Join(dir, SettingsFileName))
	if errors.Is(err, os.ErrNotExist) {
		return &Settings{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", SettingsFileName, err)
	}

	var s Settings
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", SettingsFileName, err)
	}
	return &s, nil
}
