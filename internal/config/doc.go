// Package config defines the format-agnostic workspace model for the
// orchestrator, along with the Loader interface implemented by concrete
// formats. The config.Model is the single source of truth for the dag
// planner and the executor; the HCL implementation lives in the
// hcl_adapter package.
package config
