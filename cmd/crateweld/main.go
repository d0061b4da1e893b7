package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/subcommands"

	"crateweld/internal/cli"
)

// main is the entrypoint for the crateweld binary.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	status := run(ctx, os.Stdout, os.Stderr, os.Args[1:])
	stop()
	os.Exit(int(status))
}

// run wires up the subcommands and executes the requested one. It is split
// from main so tests can drive the whole binary without spawning a process.
func run(ctx context.Context, outW, errW io.Writer, args []string) (status subcommands.ExitStatus) {
	// The app panics on critical startup errors, so we recover here to
	// provide a clean exit message to the user.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(errW, "A critical startup error occurred: %v\n", r)
			status = subcommands.ExitFailure
		}
	}()

	fs := flag.NewFlagSet("crateweld", flag.ContinueOnError)
	fs.SetOutput(errW)

	cdr := subcommands.NewCommander(fs, "crateweld")
	cdr.Output = outW
	cdr.Error = errW
	cdr.Register(cdr.HelpCommand(), "")
	cdr.Register(cdr.FlagsCommand(), "")
	cdr.Register(cli.NewBuildCmd(outW, errW), "")
	cdr.Register(cli.NewPlanCmd(outW, errW), "")
	cdr.Register(cli.NewDoctorCmd(outW, errW), "")

	if err := fs.Parse(args); err != nil {
		return subcommands.ExitUsageError
	}
	return cdr.Execute(ctx)
}
