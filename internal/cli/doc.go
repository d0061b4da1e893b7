// Package cli implements the crateweld subcommands and the mapping from
// command-line flags and workspace settings to an application config.
package cli
