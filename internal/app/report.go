package app

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"crateweld/internal/dag"
	"crateweld/internal/step"
)

// RenderPlan prints a human-readable plan summary to the report writer.
func (a *App) RenderPlan(plan *dag.Plan) {
	fmt.Fprintf(a.outW, "Build plan for %s (configuration %s)\n\n", a.model.Workspace.Root, a.appConfig.Configuration)

	for _, id := range plan.Graph.SortedIDs() {
		node := plan.Graph.Nodes[id]

		switch s := node.Step.(type) {
		case *step.Build:
			fmt.Fprintln(a.outW, color.CyanString(id))
			fmt.Fprintf(a.outW, "    manifest   %s\n", s.ManifestDir)
			fmt.Fprintf(a.outW, "    artifact   %s\n", s.ArtifactPath)
			if s.ImportLibPath != "" {
				fmt.Fprintf(a.outW, "    import lib %s\n", s.ImportLibPath)
			}
		case *step.Link:
			fmt.Fprintln(a.outW, color.GreenString(id))
			for _, rec := range s.Records {
				fmt.Fprintf(a.outW, "    links %s %s (%s)\n", s.Crate, rec.Configuration, rec.Visibility)
			}
		default:
			fmt.Fprintln(a.outW, color.YellowString(id))
			if node.AlwaysBuild {
				fmt.Fprintln(a.outW, "    always built, no consuming target")
			}
		}

		if deps, err := plan.Graph.Dependencies(id); err == nil && len(deps) > 0 {
			fmt.Fprintf(a.outW, "    after      %s\n", strings.Join(deps, ", "))
		}
	}

	fmt.Fprintf(a.outW, "\n%d build steps, %d artifacts declared.\n", countKind(plan, step.KindCrateBuild), len(plan.Artifacts))
}

func countKind(plan *dag.Plan, kind step.Kind) int {
	n := 0
	for _, node := range plan.Graph.Nodes {
		if node.Kind == kind {
			n++
		}
	}
	return n
}
