package taskmesh

import (
	"errors"

	"github.com/vk/taskmesh/internal/executor"
	"github.com/vk/taskmesh/internal/graph"
)

var (
	// ErrNilRun indicates a task was registered without an implementation.
	ErrNilRun = errors.New("task run function must not be nil")
	// ErrEmptyTaskName indicates a task was registered under the empty name.
	ErrEmptyTaskName = errors.New("task name must not be empty")

	// ErrUnknownDependency indicates a task declared a dependency on a name
	// that was never registered.
	ErrUnknownDependency = graph.ErrUnknownTask
	// ErrSelfDependency indicates a task declared itself as a dependency.
	ErrSelfDependency = graph.ErrSelfDependency
	// ErrCycleDetected indicates the dependency graph contains a cycle.
	ErrCycleDetected = graph.ErrCycle
	// ErrNoRootTasks indicates an unsatisfiable graph: every task declares
	// at least one dependency, so nothing is eligible to start.
	ErrNoRootTasks = executor.ErrNoRootTasks
	// ErrTasksStuck indicates one or more tasks never reached a terminal
	// state despite the graph validating as acyclic.
	ErrTasksStuck = executor.ErrTasksStuck
)
