// Package cargoprobe reads just enough of a crate's Cargo.toml to suggest
// defaults and feed diagnostics. It is strictly best-effort: the external
// tool owns manifest validation, so every failure here is ignorable.
package cargoprobe

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Manifest is the slice of Cargo.toml this tool cares about.
type Manifest struct {
	Package struct {
		Name    string `toml:"name"`
		Version string `toml:"version"`
	} `toml:"package"`
	Lib struct {
		Name      string   `toml:"name"`
		CrateType []string `toml:"crate-type"`
	} `toml:"lib"`
}

// Load reads <dir>/Cargo.toml.
func Load(dir string) (*Manifest, error) {
	raw, err := os.ReadFile(filepath.Join(dir, "Cargo.toml"))
	if err != nil {
		return nil, fmt.Errorf("reading crate manifest: %w", err)
	}
	var m Manifest
	if err := toml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parsing crate manifest: %w", err)
	}
	return &m, nil
}

// LibraryName returns the linkable library name: [lib] name when set,
// otherwise the package name with dashes mapped to underscores, which is
// cargo's own defaulting rule.
func (m *Manifest) LibraryName() string {
	if m.Lib.Name != "" {
		return m.Lib.Name
	}
	return strings.ReplaceAll(m.Package.Name, "-", "_")
}

// IsCdylib reports whether the crate builds a C-compatible shared library.
func (m *Manifest) IsCdylib() bool {
	for _, ct := range m.Lib.CrateType {
		if ct == "cdylib" {
			return true
		}
	}
	return false
}
