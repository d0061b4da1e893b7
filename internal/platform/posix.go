package platform

import "path"

// Posix is the Strategy for Linux and macOS hosts. Shared libraries carry the
// "lib" prefix, the launcher is a shell script that must be executable, and
// there are no fixed toolchain install locations to probe.
type Posix struct {
	// GOOS is "linux" or "darwin"; it selects the shared-library suffix and
	// the triple vendor/os tail.
	GOOS string
}

func (p Posix) OS() string { return p.GOOS }

func (p Posix) Triple(goarch string) string {
	arch := goarch
	switch goarch {
	case "amd64":
		arch = "x86_64"
	case "arm64":
		arch = "aarch64"
	case "386":
		arch = "i686"
	}
	if p.GOOS == "darwin" {
		return arch + "-apple-darwin"
	}
	return arch + "-unknown-linux-gnu"
}

func (p Posix) SharedLibName(library string) string {
	return "lib" + library + p.sharedLibSuffix()
}

func (p Posix) sharedLibSuffix() string {
	if p.GOOS == "darwin" {
		return ".dylib"
	}
	return ".so"
}

func (Posix) ImportLibExtension() string { return "" }

func (Posix) LauncherScript() string { return "run_build_tool.sh" }

func (Posix) NeedsExecBit() bool { return true }

func (Posix) WellKnownRoots(string) []string { return nil }

func (Posix) IsAbs(p string) bool { return path.IsAbs(p) }

func (Posix) Join(elem ...string) string { return path.Join(elem...) }

func (Posix) Dir(p string) string { return path.Dir(p) }
