package app

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/fatih/color"

	"crateweld/internal/cargoprobe"
	"crateweld/internal/ctxlog"
	"crateweld/internal/dag"
	"crateweld/internal/platform"
	"crateweld/internal/resolver"
)

// Doctor prints an environment diagnosis without building anything: the
// launcher script, toolchain discovery probes, and every crate manifest.
// Findings are informational; the command itself always succeeds.
func (a *App) Doctor(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	ctxlog.FromContext(ctx).Debug("Doctor started.")

	ok := color.GreenString("ok ")
	warn := color.YellowString("-- ")
	bad := color.RedString("!! ")

	fmt.Fprintf(a.outW, "crateweld doctor, workspace %s\n\n", a.model.Workspace.Root)
	fmt.Fprintf(a.outW, "%shost platform %s (%s)\n", ok, a.platform.OS(), platform.HostTriple())

	script := a.launcher.ScriptPath()
	if _, err := os.Stat(script); err == nil {
		fmt.Fprintf(a.outW, "%slauncher script %s\n", ok, script)
	} else {
		fmt.Fprintf(a.outW, "%slauncher script missing: %s\n", bad, script)
	}

	root, probes := a.resolver.ToolchainRoot(dag.ToolchainSpecFor(a.model.Workspace, a.appConfig.SDKRoot))
	fmt.Fprintln(a.outW, "\ntoolchain discovery:")
	for _, p := range probes {
		mark := warn
		if p.Hit {
			mark = ok
		}
		detail := p.Detail
		if p.Value != "" && p.Value != p.Detail {
			detail = fmt.Sprintf("%s -> %s", p.Detail, p.Value)
		}
		fmt.Fprintf(a.outW, "%s%-10s %s\n", mark, p.Source, detail)
	}
	if root == "" {
		fmt.Fprintf(a.outW, "%sno toolchain root found; the external tool may still locate one itself\n", warn)
	}

	fmt.Fprintln(a.outW, "\ncrates:")
	names := make([]string, 0, len(a.model.Crates))
	for name := range a.model.Crates {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		crate := a.model.Crates[name]
		manifestDir, err := a.resolver.ManifestDir(resolver.ManifestDirRequest{
			Hint:           crate.ManifestDir,
			SourceDir:      crate.SourceDir,
			KnownRoot:      root,
			FallbackSubdir: a.model.Workspace.FallbackSubdir,
		})
		if err != nil {
			fmt.Fprintf(a.outW, "%s%s: manifest dir missing, best guess %s\n", bad, name, manifestDir)
			continue
		}

		m, err := cargoprobe.Load(manifestDir)
		if err != nil {
			fmt.Fprintf(a.outW, "%s%s: %s (Cargo.toml unreadable: %v)\n", warn, name, manifestDir, err)
			continue
		}

		mark := ok
		note := ""
		if !m.IsCdylib() {
			mark = warn
			note = ", crate-type does not include cdylib"
		}
		fmt.Fprintf(a.outW, "%s%s: %s, library %s%s\n", mark, name, manifestDir, m.LibraryName(), note)
	}
	return nil
}
