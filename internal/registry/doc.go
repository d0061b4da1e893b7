// Package registry maps graph node kinds to the Go handlers that execute
// them. Step modules self-register through the Module interface at
// startup, and a parity check guarantees every kind the planner emits has
// a handler before anything runs.
package registry
