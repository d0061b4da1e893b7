// This file translates decoded HCL schema structs into the
// format-agnostic model defined in the config package.

package hcl_adapter

import (
	"fmt"
	"path/filepath"

	"crateweld/internal/config"
	"crateweld/internal/schema"
)

// declarations tracks which file declared each name, so duplicates across
// files produce an error naming both locations.
type declarations struct {
	workspaceFile string
	crateFiles    map[string]string
	targetFiles   map[string]string
}

func newDeclarations() *declarations {
	return &declarations{
		crateFiles:  make(map[string]string),
		targetFiles: make(map[string]string),
	}
}

// mergeFile folds one decoded file into the model.
func mergeFile(model *config.Model, declared *declarations, root *schema.FileRoot, file, workspaceRoot string) error {
	for _, ws := range root.Workspaces {
		if declared.workspaceFile != "" {
			return fmt.Errorf("workspace block declared in both %s and %s", declared.workspaceFile, file)
		}
		declared.workspaceFile = file
		model.Workspace = translateWorkspace(ws, workspaceRoot)
	}

	fileDir := filepath.Dir(file)
	for _, crate := range root.Crates {
		if prev, dup := declared.crateFiles[crate.Name]; dup {
			return fmt.Errorf("crate %q declared in both %s and %s", crate.Name, prev, file)
		}
		declared.crateFiles[crate.Name] = file
		model.Crates[crate.Name] = translateCrate(crate, fileDir)
	}
	for _, target := range root.Targets {
		if prev, dup := declared.targetFiles[target.Name]; dup {
			return fmt.Errorf("target %q declared in both %s and %s", target.Name, prev, file)
		}
		declared.targetFiles[target.Name] = file
		model.Targets[target.Name] = translateTarget(target, fileDir)
	}
	return nil
}

func translateWorkspace(ws *schema.Workspace, root string) *config.Workspace {
	out := &config.Workspace{
		Root:           root,
		BuildDir:       ws.BuildDir,
		BuildToolDir:   ws.BuildToolDir,
		FallbackSubdir: ws.FallbackSubdir,
	}
	if ws.SDK != nil {
		out.SDK = &config.SDK{
			Name:       ws.SDK.Name,
			EnvVar:     ws.SDK.EnvVar,
			Executable: ws.SDK.Executable,
			WellKnown:  ws.SDK.WellKnown,
		}
	}
	return out
}

func translateCrate(c *schema.Crate, fileDir string) *config.Crate {
	return &config.Crate{
		Name:           c.Name,
		SourceDir:      fileDir,
		ManifestDir:    c.ManifestDir,
		LibraryName:    c.LibraryName,
		ExportSymbol:   c.ExportSymbol,
		Configurations: c.Configurations,
		DependsOn:      c.DependsOn,
	}
}

func translateTarget(t *schema.Target, fileDir string) *config.Target {
	return &config.Target{
		Name:      t.Name,
		SourceDir: fileDir,
		Crate:     t.Crate,
		Link:      config.LinkVisibility(t.Link),
	}
}

// applyDefaults fills attributes the workspace may omit.
func applyDefaults(model *config.Model, root string) {
	if model.Workspace == nil {
		model.Workspace = &config.Workspace{Root: root}
	}
	ws := model.Workspace
	if ws.BuildDir == "" {
		ws.BuildDir = config.DefaultBuildDir
	}
	if ws.BuildToolDir == "" {
		ws.BuildToolDir = config.DefaultBuildToolDir
	}
	for _, target := range model.Targets {
		if target.Link == "" {
			target.Link = config.LinkPrivate
		}
	}
}
