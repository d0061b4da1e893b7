// Package testutil provides shared workspace fixtures for tests that drive
// the app end to end.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"crateweld/internal/platform"
)

// ToolScriptName is the launcher script the tests install, matching what the
// launcher resolves on POSIX hosts.
const ToolScriptName = "run_build_tool.sh"

// CdylibCargoToml renders a minimal Cargo manifest for a cdylib crate.
func CdylibCargoToml(name string) string {
	return fmt.Sprintf("[package]\nname = %q\nversion = \"0.1.0\"\n\n[lib]\ncrate-type = [\"cdylib\"]\n", name)
}

// HostSharedLib returns the file name the host platform gives a shared
// library, like libcore.so on Linux or libcore.dylib on macOS.
func HostSharedLib(library string) string {
	return platform.ForHost().SharedLibName(library)
}

// HostSharedLibSuffix returns the host's shared library suffix, ".so" or
// ".dylib", for scripts that derive artifact names themselves.
func HostSharedLibSuffix() string {
	return strings.TrimPrefix(platform.ForHost().SharedLibName(""), "lib")
}

// WriteFiles materializes the given path-to-content map under root. Relative
// paths create the workspace layout, including intermediate directories.
func WriteFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

// WriteTool installs an executable launcher script under the workspace's
// build tool directory. The body runs under /bin/sh with the launcher's
// environment contract applied.
func WriteTool(t *testing.T, root, buildToolDir, body string) string {
	t.Helper()
	dir := filepath.Join(root, buildToolDir)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, ToolScriptName)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

// RequirePosixShell skips tests that spawn shell scripts on hosts without one.
func RequirePosixShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("test requires a POSIX shell")
	}
}
