// Package executor drives a validated task graph to completion: a buffered
// ready channel seeded with the root tasks, drained by a worker pool that
// unlocks dependents as their last unmet dependency completes.
package executor
