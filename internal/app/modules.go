package app

import (
	"crateweld/internal/launcher"
	"crateweld/internal/registry"
	"crateweld/modules/cargo"
	"crateweld/modules/hostlink"
)

// coreModules is the definitive list of handler modules compiled into the
// crateweld binary.
func coreModules(l *launcher.Launcher) []registry.Module {
	return []registry.Module{
		&cargo.Module{Launcher: l},
		&hostlink.Module{},
	}
}
