// Package resolver turns manifest hints and toolchain probes into the
// absolute paths a build step needs. Every filesystem, environment, and
// PATH lookup goes through an injected function, so the per-platform
// fallback chains are testable on any host.
package resolver

import (
	"errors"
	"os"
	"os/exec"

	"crateweld/internal/platform"
)

// DefaultFallbackSubdir is the conventional crate directory probed under a
// toolchain-derived root when the manifest hint is unusable. Workspaces can
// override it with the fallback_subdir attribute.
const DefaultFallbackSubdir = "rust"

// ErrManifestDirMissing reports that no manifest dir candidate exists on
// disk. It is advisory: the path returned alongside it is the best guess,
// and callers log a warning and carry on. The external tool is the
// authority on whether a manifest dir is actually usable.
var ErrManifestDirMissing = errors.New("manifest directory not found")

// Resolver computes paths for one host platform. The zero value is not
// usable; construct with New or fill in every field.
type Resolver struct {
	Platform  platform.Strategy
	Exists    func(path string) bool
	LookupEnv func(key string) (string, bool)
	LookPath  func(file string) (string, error)
}

// New returns a Resolver backed by the real filesystem and environment.
func New(p platform.Strategy) *Resolver {
	return &Resolver{
		Platform:  p,
		Exists:    dirExists,
		LookupEnv: os.LookupEnv,
		LookPath:  exec.LookPath,
	}
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// ManifestDirRequest carries the inputs for one manifest directory lookup.
type ManifestDirRequest struct {
	// Hint is the manifest_dir value from the workspace file. It may be
	// absolute, relative, or empty; relative and empty hints are anchored
	// at SourceDir.
	Hint string

	// SourceDir is the directory of the workspace file that declared the
	// crate.
	SourceDir string

	// KnownRoot anchors the fallback candidate, usually the resolved
	// toolchain root. Empty disables the fallback.
	KnownRoot string

	// FallbackSubdir overrides DefaultFallbackSubdir when non-empty.
	FallbackSubdir string
}

// ManifestDir resolves the crate manifest directory. A non-nil error is
// always ErrManifestDirMissing, and the returned path is still the best
// candidate computed along the way.
//
// An absolute hint that exists wins outright. A hint that misses falls back
// to <parent(parent(KnownRoot))>/<FallbackSubdir>; on Windows that fallback
// is trusted even when absent, because relocated toolchain installs make
// the conventional layout a better bet than a hint known to be wrong.
func (r *Resolver) ManifestDir(req ManifestDirRequest) (string, error) {
	p := r.Platform

	primary := req.Hint
	if !p.IsAbs(primary) {
		primary = p.Join(req.SourceDir, req.Hint)
	}
	if r.Exists(primary) {
		return primary, nil
	}

	fallback := r.fallbackCandidate(req)
	if fallback == "" {
		return primary, ErrManifestDirMissing
	}
	if r.Exists(fallback) {
		return fallback, nil
	}
	if p.OS() == "windows" {
		return fallback, nil
	}
	return fallback, ErrManifestDirMissing
}

func (r *Resolver) fallbackCandidate(req ManifestDirRequest) string {
	if req.KnownRoot == "" {
		return ""
	}
	subdir := req.FallbackSubdir
	if subdir == "" {
		subdir = DefaultFallbackSubdir
	}
	p := r.Platform
	return p.Join(p.Dir(p.Dir(req.KnownRoot)), subdir)
}
