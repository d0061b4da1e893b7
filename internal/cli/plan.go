package cli

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/google/subcommands"

	"crateweld/internal/app"
	"crateweld/internal/hcl_adapter"
	"crateweld/internal/platform"
)

// PlanCmd resolves the build graph and prints it without executing anything.
type PlanCmd struct {
	flags commonFlags

	outW io.Writer
	errW io.Writer
}

// NewPlanCmd creates the 'plan' subcommand writing to the given streams.
func NewPlanCmd(outW, errW io.Writer) *PlanCmd {
	return &PlanCmd{outW: outW, errW: errW}
}

func (*PlanCmd) Name() string     { return "plan" }
func (*PlanCmd) Synopsis() string { return "resolve the build graph and print it" }
func (*PlanCmd) Usage() string {
	return `plan [-workspace PATH] [-config NAME]:
  Resolve every build step and link record for the active configuration and
  print the resulting graph. Nothing is built and no files are written.
`
}

func (c *PlanCmd) SetFlags(f *flag.FlagSet) {
	c.flags.register(f)
}

func (c *PlanCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, _, err := c.flags.appConfig()
	if err != nil {
		fmt.Fprintln(c.errW, err)
		return exitStatusFor(err)
	}

	a := app.NewApp(c.outW, c.errW, cfg, hcl_adapter.NewLoader(platform.ForHost()))
	plan, err := a.Plan(ctx)
	if err != nil {
		fmt.Fprintln(c.errW, err)
		return exitStatusFor(err)
	}
	a.RenderPlan(plan)
	return subcommands.ExitSuccess
}
