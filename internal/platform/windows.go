package platform

import (
	"os"
	"strings"
)

// Windows is the Strategy for Windows hosts. Shared libraries are bare
// "name.dll" files with a separate ".lib" import library, the launcher is a
// cmd script, and toolchains additionally live in a handful of conventional
// install directories.
type Windows struct{}

func (Windows) OS() string { return "windows" }

func (Windows) Triple(goarch string) string {
	switch goarch {
	case "amd64":
		return "x86_64-pc-windows-msvc"
	case "arm64":
		return "aarch64-pc-windows-msvc"
	case "386":
		return "i686-pc-windows-msvc"
	default:
		return goarch + "-pc-windows-msvc"
	}
}

func (Windows) SharedLibName(library string) string { return library + ".dll" }

func (Windows) ImportLibExtension() string { return ".lib" }

func (Windows) LauncherScript() string { return "run_build_tool.cmd" }

func (Windows) NeedsExecBit() bool { return false }

// WellKnownRoots lists conventional SDK install directories, most specific
// first. Entries depending on an unset environment variable are omitted.
func (w Windows) WellKnownRoots(sdkName string) []string {
	if sdkName == "" {
		return nil
	}
	roots := []string{
		w.Join(`C:\`, sdkName),
		w.Join(`C:\src`, sdkName),
	}
	if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
		roots = append(roots, w.Join(localAppData, sdkName))
	}
	if programFiles := os.Getenv("ProgramFiles"); programFiles != "" {
		roots = append(roots, w.Join(programFiles, sdkName))
	}
	return roots
}

func (Windows) IsAbs(p string) bool {
	if strings.HasPrefix(p, `\\`) {
		return true // UNC
	}
	if len(p) < 3 {
		return false
	}
	drive := p[0]
	letter := (drive >= 'a' && drive <= 'z') || (drive >= 'A' && drive <= 'Z')
	return letter && p[1] == ':' && (p[2] == '\\' || p[2] == '/')
}

// Join concatenates elements with backslashes, normalizing any forward
// slashes. It deliberately does not resolve ".." segments; candidates are
// handed to the external tool untouched.
func (Windows) Join(elem ...string) string {
	parts := make([]string, 0, len(elem))
	for _, e := range elem {
		e = strings.ReplaceAll(e, "/", `\`)
		e = strings.Trim(e, `\`)
		if e != "" {
			parts = append(parts, e)
		}
	}
	joined := strings.Join(parts, `\`)
	if len(elem) > 0 {
		switch {
		case strings.HasPrefix(elem[0], `\\`):
			joined = `\\` + joined
		case strings.HasPrefix(elem[0], `\`) || strings.HasPrefix(elem[0], "/"):
			joined = `\` + joined
		}
	}
	// A bare drive reference ("C:") needs its trailing separator back.
	if len(joined) == 2 && joined[1] == ':' {
		joined += `\`
	}
	return joined
}

// Dir returns the parent directory, stopping at the drive root.
func (w Windows) Dir(p string) string {
	p = strings.ReplaceAll(p, "/", `\`)
	p = strings.TrimRight(p, `\`)
	if len(p) == 2 && p[1] == ':' {
		return p + `\`
	}
	i := strings.LastIndex(p, `\`)
	if i < 0 {
		return p
	}
	parent := p[:i]
	if len(parent) == 2 && parent[1] == ':' {
		return parent + `\`
	}
	if parent == "" {
		return `\`
	}
	return parent
}
