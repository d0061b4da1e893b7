// Package hcl_adapter implements config.Loader for HCL workspace files.
package hcl_adapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"crateweld/internal/config"
	"crateweld/internal/ctxlog"
	"crateweld/internal/fsutil"
	"crateweld/internal/platform"
	"crateweld/internal/schema"
)

// Extension is the workspace file extension.
const Extension = ".hcl"

// Loader is the HCL implementation of the config.Loader interface.
type Loader struct {
	platform platform.Strategy
	arch     string
}

// NewLoader creates a workspace loader for the given host platform.
func NewLoader(p platform.Strategy) *Loader {
	return &Loader{platform: p, arch: runtime.GOARCH}
}

// Load orchestrates workspace loading: discover files, parse, evaluate
// attribute expressions against the static context, translate into the
// model, merge across files, and validate.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	root, err := workspaceRoot(paths)
	if err != nil {
		return nil, err
	}

	files, err := findWorkspaceFiles(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no %s workspace files found under %v", Extension, paths)
	}
	logger.Debug("Discovered workspace files.", "count", len(files))

	model := &config.Model{
		Crates:  make(map[string]*config.Crate),
		Targets: make(map[string]*config.Target),
	}
	declared := newDeclarations()

	parser := hclparse.NewParser()
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse workspace file %s: %w", file, diags)
		}

		var fileRoot schema.FileRoot
		diags = gohcl.DecodeBody(hclFile.Body, l.evalContext(root, filepath.Dir(file)), &fileRoot)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode workspace file %s: %w", file, diags)
		}

		if err := mergeFile(model, declared, &fileRoot, file, root); err != nil {
			return nil, err
		}
	}

	applyDefaults(model, root)
	if err := model.Validate(); err != nil {
		return nil, err
	}

	logger.Debug("Workspace loading complete.",
		"crates", len(model.Crates),
		"targets", len(model.Targets),
	)
	return model, nil
}

// workspaceRoot derives the workspace root from the first path: the
// directory itself, or the containing directory for a file path.
func workspaceRoot(paths []string) (string, error) {
	if len(paths) == 0 {
		return "", fmt.Errorf("no workspace path given")
	}
	abs, err := filepath.Abs(paths[0])
	if err != nil {
		return "", fmt.Errorf("resolving workspace path %s: %w", paths[0], err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("workspace path %s: %w", paths[0], err)
	}
	if info.IsDir() {
		return abs, nil
	}
	return filepath.Dir(abs), nil
}

// findWorkspaceFiles flattens the given paths into a deduplicated list of
// absolute workspace file paths.
func findWorkspaceFiles(paths []string) ([]string, error) {
	var all []string
	seen := make(map[string]struct{})
	add := func(f string) {
		if _, dup := seen[f]; !dup {
			all = append(all, f)
			seen[f] = struct{}{}
		}
	}

	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("resolving path %s: %w", path, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}
		if info.IsDir() {
			// cargo target dirs are huge and never hold workspace files
			found, err := fsutil.FindFilesByExtension(abs, Extension, ".git", "target")
			if err != nil {
				return nil, err
			}
			for _, f := range found {
				add(f)
			}
			continue
		}
		if filepath.Ext(abs) == Extension {
			add(abs)
		}
	}
	return all, nil
}
