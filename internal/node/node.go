// Package node defines the per-task scheduling state used by the execution
// graph: an atomic lifecycle state machine plus the unmet-dependency counter
// that drives ready-queue admission.
package node

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/vk/taskmesh/internal/infer"
)

// RunFunc is the unit of work a node executes. It receives the resolved
// results of the node's declared dependencies and nothing else.
type RunFunc func(ctx context.Context, in infer.Inputs) (any, error)

// State represents the execution state of a node in the graph.
type State int32

const (
	// Pending indicates the node is waiting for its dependencies to complete.
	Pending State = iota
	// Running indicates the node is currently being executed by a worker.
	Running
	// Done indicates the node has completed execution successfully.
	Done
	// Failed indicates the node's run function returned an error.
	Failed
	// Skipped indicates the node was never started because an upstream
	// dependency failed or the run was canceled.
	Skipped
)

// String returns the lowercase name of the state.
func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Done:
		return "done"
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Node is a single vertex in the execution graph, representing one named
// unit of work together with its scheduling bookkeeping.
type Node struct {
	name  string
	needs []string
	run   RunFunc

	// Error stores any error that occurred during the node's execution.
	Error error
	// Output stores the result of the node's execution for use by dependents.
	Output any

	// depCount is an atomic counter for unmet dependencies, used by the executor.
	depCount atomic.Int32
	// state is the node's current execution state, managed atomically.
	state atomic.Int32
	// skipOnce ensures a node is marked as skipped and accounted for exactly once.
	skipOnce sync.Once
}

// New creates a node for the named task. The needs slice is the node's
// effective, deduplicated dependency list in declaration order.
func New(name string, needs []string, run RunFunc) *Node {
	return &Node{
		name:  name,
		needs: needs,
		run:   run,
	}
}

// Name returns the unique task name of the node.
func (n *Node) Name() string {
	return n.name
}

// Needs returns the node's declared dependency names. The returned slice
// must not be mutated.
func (n *Node) Needs() []string {
	return n.needs
}

// Run invokes the node's unit of work.
func (n *Node) Run(ctx context.Context, in infer.Inputs) (any, error) {
	return n.run(ctx, in)
}

// SetDepCount initializes the unmet-dependency counter.
func (n *Node) SetDepCount(count int32) {
	n.depCount.Store(count)
}

// DepCount atomically returns the current number of unmet dependencies.
func (n *Node) DepCount() int32 {
	return n.depCount.Load()
}

// DecrementDepCount atomically decrements the dependency counter and returns
// the new value. A return of zero means every declared dependency has
// completed and the node is ready to run.
func (n *Node) DecrementDepCount() int32 {
	return n.depCount.Add(-1)
}

// SetState atomically sets the node's execution state.
func (n *Node) SetState(s State) {
	n.state.Store(int32(s))
}

// GetState atomically retrieves the node's execution state.
func (n *Node) GetState() State {
	return State(n.state.Load())
}

// Terminal reports whether the node reached a final state.
func (n *Node) Terminal() bool {
	switch n.GetState() {
	case Done, Failed, Skipped:
		return true
	default:
		return false
	}
}

// Skip marks a node as skipped and decrements the WaitGroup counter. It uses
// a sync.Once to guarantee this happens only once even when the node is
// reachable through several failed upstream paths, returning true if this
// call was the one that performed the skip.
func (n *Node) Skip(err error, wg *sync.WaitGroup) bool {
	var wasSkipped bool
	n.skipOnce.Do(func() {
		n.SetState(Skipped)
		n.Error = err
		wg.Done()
		wasSkipped = true
	})
	return wasSkipped
}
