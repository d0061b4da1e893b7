// Package dag is the execution layer of the orchestrator. It plans a
// directed acyclic graph of build-step, aggregate, and host-target nodes
// from a validated workspace model, and executes the nodes concurrently
// according to their dependencies.
package dag
