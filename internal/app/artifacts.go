package app

import (
	"encoding/json"
	"fmt"
	"os"

	"crateweld/internal/dag"
)

// writeArtifacts exports the declared outputs as a JSON array for host
// builds that consume them from scripts. An empty plan writes an empty
// array, not null.
func (a *App) writeArtifacts(path string, artifacts []dag.Artifact) error {
	if artifacts == nil {
		artifacts = []dag.Artifact{}
	}
	raw, err := json.MarshalIndent(artifacts, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode artifacts manifest: %w", err)
	}
	raw = append(raw, '\n')
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write artifacts manifest: %w", err)
	}
	return nil
}
