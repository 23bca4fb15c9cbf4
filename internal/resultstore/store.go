// Package resultstore provides the shared result set of one execution: an
// ephemeral, thread-safe map from task name to resolved value.
//
// The store is written exactly once per task name, at that task's successful
// completion, and is never handed to tasks directly: running tasks receive a
// filtered copy holding only their declared dependencies. Single writer per
// key with many readers is therefore guaranteed structurally, not by caller
// discipline.
//
// sync.Map fits this access pattern well: the key space is stable (every
// task is known up front) while the executor's workers write and read
// independent keys concurrently.
package resultstore

import (
	"sync"

	"github.com/vk/taskmesh/internal/infer"
)

// Store is the in-memory result set shared by all nodes of one execution.
type Store struct {
	outputs sync.Map // Key: task name, Value: any (resolved output)
	errors  sync.Map // Key: task name, Value: error
}

// New creates a new, empty result store.
func New() *Store {
	return &Store{}
}

// SetOutput records the successful output of a task. Called exactly once per
// task, at its Done transition.
func (s *Store) SetOutput(name string, output any) {
	s.outputs.Store(name, output)
}

// Output retrieves the recorded output of a completed task.
func (s *Store) Output(name string) (any, bool) {
	return s.outputs.Load(name)
}

// SetError records the failure of a task.
func (s *Store) SetError(name string, taskErr error) {
	s.errors.Store(name, taskErr)
}

// Err retrieves the recorded error of a failed task, or nil.
func (s *Store) Err(name string) error {
	v, ok := s.errors.Load(name)
	if !ok {
		return nil
	}
	return v.(error)
}

// Inputs builds the private context for a task about to run: a copy of the
// store narrowed to exactly the given dependency names. Names without a
// recorded output are omitted, which by the scheduling invariant only
// happens when the store itself is inspected outside an execution.
func (s *Store) Inputs(names []string) infer.Inputs {
	in := make(infer.Inputs, len(names))
	for _, name := range names {
		if v, ok := s.outputs.Load(name); ok {
			in[name] = v
		}
	}
	return in
}

// Snapshot returns the final result map narrowed to exactly the given task
// names.
func (s *Store) Snapshot(names []string) map[string]any {
	out := make(map[string]any, len(names))
	for _, name := range names {
		if v, ok := s.outputs.Load(name); ok {
			out[name] = v
		}
	}
	return out
}
