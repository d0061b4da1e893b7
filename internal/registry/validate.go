package registry

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"crateweld/internal/ctxlog"
	"crateweld/internal/step"
)

// ValidateParity performs a strict check between the kinds a plan emitted
// and the handlers registered in Go code. Aggregate nodes execute inside
// the graph itself and are exempt.
func (r *Registry) ValidateParity(ctx context.Context, kinds []step.Kind) error {
	var missing []string
	for _, kind := range kinds {
		if kind == step.KindAggregate {
			continue
		}
		if _, ok := r.handlers[kind]; !ok {
			missing = append(missing, string(kind))
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("no handler registered for node kind(s): %s", strings.Join(missing, ", "))
	}

	ctxlog.FromContext(ctx).Debug("Handler parity validated.", "kind_count", len(kinds))
	return nil
}
