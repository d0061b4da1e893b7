// Package hostlink executes host_target steps: it renders the link plan
// for every configuration of a target into the crate's link-args file in
// the output dir, where the host build's generator picks it up.
package hostlink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"crateweld/internal/ctxlog"
	"crateweld/internal/registry"
	"crateweld/internal/step"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Handler executes host_target steps.
type Handler struct{}

// Execute writes one link-args file per configuration record.
func (h *Handler) Execute(ctx context.Context, s step.Step) error {
	l, ok := s.(*step.Link)
	if !ok {
		return fmt.Errorf("hostlink handler got unexpected step type %T", s)
	}

	logger := ctxlog.FromContext(ctx).With("target", l.Target, "crate", l.Crate)

	for _, rec := range l.Records {
		if err := writeLinkArgs(l, rec); err != nil {
			return err
		}
		logger.Info("Recorded link plan.", "configuration", rec.Configuration, "file", rec.LinkArgsPath)
	}
	return nil
}

// writeLinkArgs renders one record as key=value lines. The format is part
// of the host-side interface; generators parse it line by line.
func writeLinkArgs(l *step.Link, rec step.LinkRecord) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# link plan for target %s, written by crateweld\n", l.Target)
	fmt.Fprintf(&b, "target=%s\n", l.Target)
	fmt.Fprintf(&b, "crate=%s\n", l.Crate)
	fmt.Fprintf(&b, "configuration=%s\n", rec.Configuration)
	fmt.Fprintf(&b, "artifact=%s\n", rec.ArtifactPath)
	fmt.Fprintf(&b, "visibility=%s\n", rec.Visibility)
	if rec.ImportLibPath != "" {
		fmt.Fprintf(&b, "import_lib=%s\n", rec.ImportLibPath)
	}
	if rec.RetainDirective != "" {
		fmt.Fprintf(&b, "retain=%s\n", rec.RetainDirective)
	}

	if err := os.MkdirAll(filepath.Dir(rec.LinkArgsPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output dir for link args: %w", err)
	}
	if err := os.WriteFile(rec.LinkArgsPath, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write link args for target %s: %w", l.Target, err)
	}
	return nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterHandler(step.KindHostTarget, &Handler{})
}
