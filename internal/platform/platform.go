// Package platform encapsulates the host-OS conventions the orchestrator
// depends on: shared-library naming, launcher script flavor, toolchain
// install locations, and path semantics. Exactly one Strategy is selected at
// startup; nothing outside this package branches on the OS name.
package platform

import "runtime"

// Strategy is the set of host conventions for one operating system family.
// The Windows and Posix implementations carry their own path semantics so
// both can be exercised from tests regardless of the test host.
type Strategy interface {
	// OS returns the GOOS-style name this strategy was built for.
	OS() string

	// Triple returns the Rust target triple for the given GOARCH on this OS.
	Triple(goarch string) string

	// SharedLibName returns the platform filename for a shared library,
	// e.g. "mylib" -> "libmylib.so" or "mylib.dll".
	SharedLibName(library string) string

	// ImportLibExtension returns the extension appended to the artifact path
	// for the linker import library, or "" where the concept does not exist.
	ImportLibExtension() string

	// LauncherScript returns the filename of the external build-tool
	// launcher for this OS.
	LauncherScript() string

	// NeedsExecBit reports whether the launcher script must be made
	// executable before invocation.
	NeedsExecBit() bool

	// WellKnownRoots returns fixed install locations probed for the named
	// SDK when every other discovery source misses. Empty off Windows.
	WellKnownRoots(sdkName string) []string

	// IsAbs, Join and Dir mirror the path/filepath operations under this
	// strategy's separator rules.
	IsAbs(p string) bool
	Join(elem ...string) string
	Dir(p string) string
}

// ForHost selects the strategy matching the running process.
func ForHost() Strategy {
	if runtime.GOOS == "windows" {
		return Windows{}
	}
	return Posix{GOOS: runtime.GOOS}
}

// HostTriple returns the Rust target triple of the running process.
func HostTriple() string {
	return ForHost().Triple(runtime.GOARCH)
}
