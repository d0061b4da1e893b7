package config

import "context"

// Loader is the interface for a format-specific workspace loader.
type Loader interface {
	// Load reads workspace files from the given paths, translates them
	// into the format-agnostic model, applies defaults, and validates
	// cross references. Duplicate crate or target names across files are
	// a load error.
	Load(ctx context.Context, paths ...string) (*Model, error)
}
