package hcl_adapter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crateweld/internal/config"
	"crateweld/internal/platform"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	full := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	return full
}

func newTestLoader() *Loader {
	return NewLoader(platform.Posix{GOOS: "linux"})
}

func TestLoad(t *testing.T) {
	t.Run("full workspace round trip", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "workspace.hcl", `
workspace {
  build_dir       = "out"
  fallback_subdir = "crates"

  sdk {
    env_var    = "MY_SDK_ROOT"
    executable = "cargo"
  }
}

crate "core" {
  manifest_dir = "rust/core"
}

crate "bridge" {
  manifest_dir   = "rust/bridge"
  library_name   = "host_bridge"
  export_symbol  = "bridge_init"
  configurations = ["debug", "release"]
  depends_on     = ["crate.core"]
}

target "app" {
  crate = "bridge"
  link  = "public"
}
`)
		model, err := newTestLoader().Load(context.Background(), dir)
		require.NoError(t, err)

		ws := model.Workspace
		require.NotNil(t, ws)
		assert.Equal(t, dir, ws.Root)
		assert.Equal(t, "out", ws.BuildDir)
		assert.Equal(t, "build_tool", ws.BuildToolDir, "default applied")
		assert.Equal(t, "crates", ws.FallbackSubdir)
		require.NotNil(t, ws.SDK)
		assert.Equal(t, "MY_SDK_ROOT", ws.SDK.EnvVar)
		assert.Equal(t, "cargo", ws.SDK.Executable)

		crate := model.Crates["bridge"]
		require.NotNil(t, crate)
		assert.Equal(t, dir, crate.SourceDir)
		assert.Equal(t, "rust/bridge", crate.ManifestDir)
		assert.Equal(t, "host_bridge", crate.LibraryName)
		assert.Equal(t, "bridge_init", crate.ExportSymbol)
		assert.Equal(t, []string{"debug", "release"}, crate.Configurations)
		assert.Equal(t, []string{"crate.core"}, crate.DependsOn)

		target := model.Targets["app"]
		require.NotNil(t, target)
		assert.Equal(t, "bridge", target.Crate)
		assert.Equal(t, config.LinkPublic, target.Link)
	})

	t.Run("expressions see the static context", func(t *testing.T) {
		t.Setenv("CRATEWELD_TEST_LIB", "from_env")
		dir := t.TempDir()
		writeFile(t, dir, "ws.hcl", `
crate "bridge" {
  manifest_dir   = "${workspace.dir}/rust"
  library_name   = env("CRATEWELD_TEST_LIB")
  configurations = [platform.os]
}
`)
		model, err := newTestLoader().Load(context.Background(), dir)
		require.NoError(t, err)

		crate := model.Crates["bridge"]
		require.NotNil(t, crate)
		assert.Equal(t, dir+"/rust", crate.ManifestDir)
		assert.Equal(t, "from_env", crate.LibraryName)
		assert.Equal(t, []string{"linux"}, crate.Configurations)
	})

	t.Run("defaults when the workspace block is absent", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "ws.hcl", `
crate "bridge" {
  manifest_dir = "rust"
}

target "app" {
  crate = "bridge"
}
`)
		model, err := newTestLoader().Load(context.Background(), dir)
		require.NoError(t, err)

		assert.Equal(t, dir, model.Workspace.Root)
		assert.Equal(t, "build", model.Workspace.BuildDir)
		assert.Equal(t, config.LinkPrivate, model.Targets["app"].Link)
	})

	t.Run("nested files anchor their own source dir", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "ws.hcl", `workspace {}`)
		writeFile(t, dir, "native/crates.hcl", `
crate "bridge" {
  manifest_dir = "../rust"
}
`)
		model, err := newTestLoader().Load(context.Background(), dir)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "native"), model.Crates["bridge"].SourceDir)
	})

	t.Run("single file path loads", func(t *testing.T) {
		dir := t.TempDir()
		file := writeFile(t, dir, "ws.hcl", `
crate "bridge" {
  manifest_dir = "rust"
}
`)
		model, err := newTestLoader().Load(context.Background(), file)
		require.NoError(t, err)
		assert.Equal(t, dir, model.Workspace.Root)
		assert.Len(t, model.Crates, 1)
	})

	t.Run("duplicate crate names across files are rejected", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "a.hcl", `
crate "bridge" {
  manifest_dir = "rust"
}
`)
		writeFile(t, dir, "b.hcl", `
crate "bridge" {
  manifest_dir = "other"
}
`)
		_, err := newTestLoader().Load(context.Background(), dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `crate "bridge" declared in both`)
	})

	t.Run("second workspace block is rejected", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "a.hcl", `workspace {}`)
		writeFile(t, dir, "b.hcl", `workspace {}`)
		_, err := newTestLoader().Load(context.Background(), dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "workspace block declared in both")
	})

	t.Run("missing manifest_dir is a decode error", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "ws.hcl", `crate "bridge" {}`)
		_, err := newTestLoader().Load(context.Background(), dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to decode workspace file")
	})

	t.Run("target referencing unknown crate is rejected", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "ws.hcl", `
target "app" {
  crate = "ghost"
}
`)
		_, err := newTestLoader().Load(context.Background(), dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown crate")
	})

	t.Run("bad depends_on reference is rejected", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "ws.hcl", `
crate "bridge" {
  manifest_dir = "rust"
  depends_on   = ["bridge"]
}
`)
		_, err := newTestLoader().Load(context.Background(), dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "crate.<name>")
	})

	t.Run("no workspace files is an error", func(t *testing.T) {
		_, err := newTestLoader().Load(context.Background(), t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no .hcl workspace files")
	})
}
