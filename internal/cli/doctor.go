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

// DoctorCmd inspects the workspace and reports on toolchain discovery,
// launcher scripts and crate manifests.
type DoctorCmd struct {
	flags commonFlags

	outW io.Writer
	errW io.Writer
}

// NewDoctorCmd creates the 'doctor' subcommand writing to the given streams.
func NewDoctorCmd(outW, errW io.Writer) *DoctorCmd {
	return &DoctorCmd{outW: outW, errW: errW}
}

func (*DoctorCmd) Name() string     { return "doctor" }
func (*DoctorCmd) Synopsis() string { return "diagnose the workspace and toolchain discovery" }
func (*DoctorCmd) Usage() string {
	return `doctor [-workspace PATH]:
  Check the workspace for common problems: report every toolchain probe,
  verify the launcher script is present and inspect each crate manifest.
`
}

func (c *DoctorCmd) SetFlags(f *flag.FlagSet) {
	c.flags.register(f)
}

func (c *DoctorCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, _, err := c.flags.appConfig()
	if err != nil {
		fmt.Fprintln(c.errW, err)
		return exitStatusFor(err)
	}

	a := app.NewApp(c.outW, c.errW, cfg, hcl_adapter.NewLoader(platform.ForHost()))
	if err := a.Doctor(ctx); err != nil {
		fmt.Fprintln(c.errW, err)
		return exitStatusFor(err)
	}
	return subcommands.ExitSuccess
}
