package launcher

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crateweld/internal/platform"
	"crateweld/internal/step"
)

func TestScriptPath(t *testing.T) {
	l := New(platform.Posix{GOOS: "linux"}, "/ws", "build_tool", nil, nil)
	assert.Equal(t, "/ws/build_tool/run_build_tool.sh", l.ScriptPath())

	l = New(platform.Windows{}, `C:\ws`, "build_tool", nil, nil)
	assert.Equal(t, `C:\ws\build_tool\run_build_tool.cmd`, l.ScriptPath())
}

func TestContractEnv(t *testing.T) {
	l := New(platform.Posix{GOOS: "linux"}, "/ws", "build_tool", nil, nil)
	l.toolPath = func() (string, error) { return "/usr/local/bin/crateweld", nil }

	env, err := l.contractEnv(&step.Build{
		Crate:         "host_bridge",
		Configuration: "release",
		Triple:        "x86_64-unknown-linux-gnu",
		WorkspaceRoot: "/ws",
		ManifestDir:   "/ws/native/rust",
		OutputDir:     "/ws/build/release",
		TargetTempDir: "/ws/build/.tmp/host_bridge/release",
		ToolTempDir:   "/ws/build/.tool",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"CRATEWELD_TOOL=/usr/local/bin/crateweld",
		"CRATEWELD_CONFIGURATION=release",
		"CRATEWELD_MANIFEST_DIR=/ws/native/rust",
		"CRATEWELD_TARGET_TEMP_DIR=/ws/build/.tmp/host_bridge/release",
		"CRATEWELD_OUTPUT_DIR=/ws/build/release",
		"CRATEWELD_TARGET_PLATFORM=x86_64-unknown-linux-gnu",
		"CRATEWELD_TOOL_TEMP_DIR=/ws/build/.tool",
		"CRATEWELD_ROOT_PROJECT_DIR=/ws",
		"CRATEWELD_TOOLCHAIN_ROOT=", // may legitimately be empty
	}, env)
}

// writeScript drops a launcher script into <root>/build_tool. The file is
// deliberately not executable; Run has to flip the bit itself.
func writeScript(t *testing.T, root, body string) {
	t.Helper()
	dir := filepath.Join(root, "build_tool")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "run_build_tool.sh"), []byte(body), 0o644))
}

func testBuildStep(t *testing.T, root string) *step.Build {
	t.Helper()
	tempDir := filepath.Join(root, "build", ".tmp", "host_bridge", "release")
	require.NoError(t, os.MkdirAll(tempDir, 0o755))
	manifestDir := filepath.Join(root, "native", "rust")
	require.NoError(t, os.MkdirAll(manifestDir, 0o755))
	return &step.Build{
		Crate:         "host_bridge",
		Configuration: "release",
		Triple:        "x86_64-unknown-linux-gnu",
		WorkspaceRoot: root,
		ManifestDir:   manifestDir,
		OutputDir:     filepath.Join(root, "build", "release"),
		TargetTempDir: tempDir,
		ToolTempDir:   filepath.Join(root, "build", ".tool"),
		ToolchainRoot: "/opt/rust-sdk",
	}
}

func TestRun(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("launcher exec tests require a POSIX shell")
	}

	t.Run("invokes the script with the contract", func(t *testing.T) {
		root := t.TempDir()
		writeScript(t, root, `#!/bin/sh
{
  echo "sub=$1"
  echo "cwd=$(pwd -P)"
  echo "tool=$CRATEWELD_TOOL"
  echo "configuration=$CRATEWELD_CONFIGURATION"
  echo "manifest_dir=$CRATEWELD_MANIFEST_DIR"
  echo "platform=$CRATEWELD_TARGET_PLATFORM"
  echo "root_project=$CRATEWELD_ROOT_PROJECT_DIR"
  echo "toolchain=$CRATEWELD_TOOLCHAIN_ROOT"
  echo "path=$PATH"
} > "$CRATEWELD_TARGET_TEMP_DIR/seen.txt"
echo "building crate"
`)

		var out, errOut bytes.Buffer
		l := New(platform.ForHost(), root, "build_tool", &out, &errOut)
		l.toolPath = func() (string, error) { return "/fake/crateweld", nil }

		b := testBuildStep(t, root)
		require.NoError(t, l.Run(context.Background(), b))

		assert.Equal(t, "building crate\n", out.String())
		assert.Empty(t, errOut.String())

		raw, err := os.ReadFile(filepath.Join(b.TargetTempDir, "seen.txt"))
		require.NoError(t, err)
		seen := string(raw)

		wantCwd, err := filepath.EvalSymlinks(b.ManifestDir)
		require.NoError(t, err)

		assert.Contains(t, seen, "sub=build\n")
		assert.Contains(t, seen, "cwd="+wantCwd+"\n")
		assert.Contains(t, seen, "tool=/fake/crateweld\n")
		assert.Contains(t, seen, "configuration=release\n")
		assert.Contains(t, seen, "manifest_dir="+b.ManifestDir+"\n")
		assert.Contains(t, seen, "platform=x86_64-unknown-linux-gnu\n")
		assert.Contains(t, seen, "root_project="+root+"\n")
		assert.Contains(t, seen, "toolchain=/opt/rust-sdk\n")
		// The host environment must leak through, not be replaced.
		assert.NotContains(t, seen, "path=\n")
	})

	t.Run("marks the script executable first", func(t *testing.T) {
		root := t.TempDir()
		writeScript(t, root, "#!/bin/sh\nexit 0\n")

		l := New(platform.ForHost(), root, "build_tool", nil, nil)
		l.toolPath = func() (string, error) { return "/fake/crateweld", nil }
		require.NoError(t, l.Run(context.Background(), testBuildStep(t, root)))

		info, err := os.Stat(l.ScriptPath())
		require.NoError(t, err)
		assert.NotZero(t, info.Mode()&0o111)
	})

	t.Run("non-zero exit surfaces the status", func(t *testing.T) {
		root := t.TempDir()
		writeScript(t, root, "#!/bin/sh\necho 'error: linker not found' >&2\nexit 7\n")

		var out, errOut bytes.Buffer
		l := New(platform.ForHost(), root, "build_tool", &out, &errOut)
		l.toolPath = func() (string, error) { return "/fake/crateweld", nil }

		err := l.Run(context.Background(), testBuildStep(t, root))
		require.Error(t, err)

		var exitErr *ExitStatusError
		require.True(t, errors.As(err, &exitErr))
		assert.Equal(t, 7, exitErr.Status)
		assert.Equal(t, "host_bridge", exitErr.Crate)

		// The tool's own diagnostics pass through untouched.
		assert.True(t, strings.Contains(errOut.String(), "error: linker not found"))
	})

	t.Run("missing script is an error", func(t *testing.T) {
		root := t.TempDir()
		l := New(platform.ForHost(), root, "build_tool", nil, nil)
		l.toolPath = func() (string, error) { return "/fake/crateweld", nil }

		err := l.Run(context.Background(), testBuildStep(t, root))
		require.Error(t, err)
	})
}
