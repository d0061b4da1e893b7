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

// BuildCmd builds every crate in the workspace and records the link plans
// for the host targets that consume them.
type BuildCmd struct {
	flags        commonFlags
	artifactsOut string

	outW io.Writer
	errW io.Writer
}

// NewBuildCmd creates the 'build' subcommand writing to the given streams.
func NewBuildCmd(outW, errW io.Writer) *BuildCmd {
	return &BuildCmd{outW: outW, errW: errW}
}

func (*BuildCmd) Name() string     { return "build" }
func (*BuildCmd) Synopsis() string { return "build every crate and record link plans" }
func (*BuildCmd) Usage() string {
	return `build [-workspace PATH] [-config NAME] [-artifacts-out FILE]:
  Build every crate of the workspace for the active configuration via the
  external build tool, then record a link plan for each host target.
`
}

func (c *BuildCmd) SetFlags(f *flag.FlagSet) {
	c.flags.register(f)
	f.StringVar(&c.artifactsOut, "artifacts-out", "", "write the declared artifacts as JSON to this file")
}

func (c *BuildCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, settings, err := c.flags.appConfig()
	if err != nil {
		fmt.Fprintln(c.errW, err)
		return exitStatusFor(err)
	}
	cfg.ArtifactsOut = firstNonEmpty(c.artifactsOut, settings.ArtifactsOut)

	a := app.NewApp(c.outW, c.errW, cfg, hcl_adapter.NewLoader(platform.ForHost()))
	if err := a.Run(ctx); err != nil {
		fmt.Fprintln(c.errW, err)
		return exitStatusFor(err)
	}
	return subcommands.ExitSuccess
}
