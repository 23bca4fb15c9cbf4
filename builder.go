package taskmesh

import (
	"context"
	"sync"
)

// Builder assembles a task set incrementally instead of constructing one map
// literal. It carries no execution behavior of its own; Execute delegates to
// the package-level Execute with the accumulated registry.
type Builder struct {
	mu    sync.Mutex
	tasks map[string]Task
	opts  []Option
}

// New creates an empty Builder. Options are applied when Execute is called.
func New(opts ...Option) *Builder {
	return &Builder{
		tasks: make(map[string]Task),
		opts:  opts,
	}
}

// Add registers a task with no dependencies. Registering a name twice
// overwrites the earlier task, matching map-registry semantics.
func (b *Builder) Add(name string, fn TaskFunc) *Builder {
	return b.AddTask(name, Task{Run: fn})
}

// AddDependent registers a task that reads the results of the named tasks.
func (b *Builder) AddDependent(name string, fn TaskFunc, needs ...string) *Builder {
	return b.AddTask(name, Task{Needs: needs, Run: fn})
}

// AddTask registers a fully specified task, e.g. one declaring a typed Uses
// shape.
func (b *Builder) AddTask(name string, t Task) *Builder {
	b.mu.Lock()
	b.tasks[name] = t
	b.mu.Unlock()
	return b
}

// Execute runs the accumulated task set. The builder may be reused
// afterwards; each call builds a fresh graph.
func (b *Builder) Execute(ctx context.Context, opts ...Option) (map[string]any, error) {
	b.mu.Lock()
	tasks := make(map[string]Task, len(b.tasks))
	for name, t := range b.tasks {
		tasks[name] = t
	}
	b.mu.Unlock()

	combined := make([]Option, 0, len(b.opts)+len(opts))
	combined = append(combined, b.opts...)
	combined = append(combined, opts...)
	return Execute(ctx, tasks, combined...)
}
