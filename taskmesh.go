package taskmesh

import (
	"context"
	"fmt"

	"github.com/vk/taskmesh/internal/ctxlog"
	"github.com/vk/taskmesh/internal/executor"
	"github.com/vk/taskmesh/internal/graph"
	"github.com/vk/taskmesh/internal/infer"
	"github.com/vk/taskmesh/internal/node"
)

// Inputs is the filtered view of the shared result set handed to a running
// task: exactly its declared dependencies' resolved values, keyed by task
// name. It is a private copy, never a reference into the live result set.
type Inputs = infer.Inputs

// TaskFunc is the asynchronous unit of work of one task. It runs only after
// every declared dependency has completed, and in receives those results and
// nothing else.
type TaskFunc func(ctx context.Context, in Inputs) (any, error)

// Task is a named unit of work together with its dependency declaration.
type Task struct {
	// Needs lists the names of the tasks whose results this task reads.
	Needs []string
	// Uses optionally declares a typed input shape; dependency names are
	// inferred from its `task:"name"` struct tags and appended to Needs.
	// A shape that cannot be parsed infers no dependencies.
	Uses any
	// Run is the task implementation. Required.
	Run TaskFunc
}

// dependencies returns the task's effective dependency list: explicit Needs
// first, then names inferred from the Uses shape, deduplicated in order.
func (t Task) dependencies() []string {
	inferred := infer.Dependencies(t.Uses)
	if len(t.Needs) == 0 {
		return inferred
	}

	seen := make(map[string]struct{}, len(t.Needs)+len(inferred))
	needs := make([]string, 0, len(t.Needs)+len(inferred))
	for _, name := range t.Needs {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		needs = append(needs, name)
	}
	for _, name := range inferred {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		needs = append(needs, name)
	}
	return needs
}

// Execute runs the task set to completion and returns a result map with
// exactly the same key set as tasks, each name mapped to its task's resolved
// value.
//
// Each task starts the instant its declared dependencies have completed;
// tasks with no dependency relationship run concurrently in no particular
// order. The call rejects before any task runs if a dependency name is
// unregistered, a task depends on itself, no task is dependency-free, or the
// graph contains a cycle. The first task failure fails the whole invocation
// with that exact error; the failed task's dependents are never started.
func Execute(ctx context.Context, tasks map[string]Task, opts ...Option) (map[string]any, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	ctx = ctxlog.WithLogger(ctx, options.logger)

	g, err := buildGraph(tasks)
	if err != nil {
		return nil, err
	}

	exec := executor.New(g, executor.Options{
		Workers:         options.workers,
		CancelOnFailure: options.cancelOnFailure,
	})
	return exec.Run(ctx)
}

// buildGraph turns the flat task registry into a directed graph ready for
// scheduling: one inference pass per task, then an edge per declared
// dependency.
func buildGraph(tasks map[string]Task) (*graph.Graph, error) {
	g := graph.New()

	needsByName := make(map[string][]string, len(tasks))
	for name, t := range tasks {
		if name == "" {
			return nil, ErrEmptyTaskName
		}
		if t.Run == nil {
			return nil, fmt.Errorf("%w: task '%s'", ErrNilRun, name)
		}
		needs := t.dependencies()
		needsByName[name] = needs
		g.AddNode(node.New(name, needs, node.RunFunc(t.Run)))
	}

	for name, needs := range needsByName {
		for _, dep := range needs {
			if err := g.AddEdge(dep, name); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}
