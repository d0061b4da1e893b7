package dag

import "fmt"

// Node IDs have three forms: crate.<name>[<configuration>] for build
// steps, aggregate.<owner> for grouping nodes, target.<name> for host
// targets. The owner of an aggregate is the consuming target, or the
// crate itself when no target consumes it.

// BuildNodeID names the build-step node for one (crate, configuration).
func BuildNodeID(crate, configuration string) string {
	return fmt.Sprintf("crate.%s[%s]", crate, configuration)
}

// AggregateNodeID names the grouping node owned by a target or crate.
func AggregateNodeID(owner string) string {
	return "aggregate." + owner
}

// TargetNodeID names the link bookkeeping node for a host target.
func TargetNodeID(target string) string {
	return "target." + target
}
