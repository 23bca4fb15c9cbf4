package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/vk/taskmesh/internal/ctxlog"
	"github.com/vk/taskmesh/internal/graph"
	"github.com/vk/taskmesh/internal/node"
	"github.com/vk/taskmesh/internal/resultstore"
)

var (
	// ErrNoRootTasks indicates an unsatisfiable graph: every task declares at
	// least one dependency, so nothing is eligible to start.
	ErrNoRootTasks = errors.New("no root tasks: every task is blocked on a dependency")
	// ErrTasksStuck indicates one or more tasks never reached a terminal
	// state despite the graph validating as acyclic.
	ErrTasksStuck = errors.New("tasks could not complete")
)

// Options configures one execution.
type Options struct {
	// Workers bounds the worker pool. Zero or negative means one worker per
	// task, so independent tasks never queue behind each other.
	Workers int
	// CancelOnFailure cancels the run context on the first task failure,
	// sweeping not-yet-started tasks on unrelated branches. When false,
	// unrelated branches keep executing and only the failed task's
	// dependents are skipped.
	CancelOnFailure bool
}

// Executor drives one graph to completion with the maximum parallelism the
// dependency edges allow. It is single-use: build a fresh one per invocation.
type Executor struct {
	graph   *graph.Graph
	opts    Options
	results *resultstore.Store

	wg sync.WaitGroup

	failMu   sync.Mutex
	firstErr error
}

// New creates an executor for a fully built graph.
func New(g *graph.Graph, opts Options) *Executor {
	return &Executor{
		graph:   g,
		opts:    opts,
		results: resultstore.New(),
	}
}

// Run executes the graph and blocks until every task reached a terminal
// state. On success it returns the result map narrowed to exactly the
// registered task names; on failure it returns the first task error
// verbatim. Unsatisfiable graphs are rejected before any task runs.
func (e *Executor) Run(ctx context.Context) (map[string]any, error) {
	logger := ctxlog.FromContext(ctx).With("execution_id", uuid.NewString())
	ctx = ctxlog.WithLogger(ctx, logger)

	total := e.graph.Len()
	if total == 0 {
		return map[string]any{}, nil
	}

	names := make([]string, 0, total)
	for _, n := range e.graph.Nodes() {
		names = append(names, n.Name())
		n.SetDepCount(int32(len(e.graph.Dependencies(n.Name()))))
	}

	logger.Debug("Initializing executor, finding root tasks.", "tasks", total)
	roots := e.graph.Roots()
	if len(roots) == 0 {
		return nil, ErrNoRootTasks
	}
	if err := e.graph.DetectCycles(); err != nil {
		return nil, err
	}

	readyChan := make(chan *node.Node, total)
	for _, n := range roots {
		logger.Debug("Found root task.", "task", n.Name())
		readyChan <- n
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	e.wg.Add(total)

	workerCount := e.opts.Workers
	if workerCount <= 0 {
		workerCount = total
	}
	logger.Debug("Starting worker pool.", "workers", workerCount)
	var pool errgroup.Group
	for i := 0; i < workerCount; i++ {
		i := i
		pool.Go(func() error {
			e.worker(runCtx, logger, readyChan, cancel, i)
			return nil
		})
	}

	e.wg.Wait()
	close(readyChan)
	_ = pool.Wait()
	logger.Debug("All tasks reached a terminal state.")

	if stuck := e.stuckTasks(); len(stuck) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrTasksStuck, strings.Join(stuck, ", "))
	}
	if err := e.err(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.results.Snapshot(names), nil
}

// recordFailure remembers the first real task error of the run.
func (e *Executor) recordFailure(err error) {
	e.failMu.Lock()
	if e.firstErr == nil {
		e.firstErr = err
	}
	e.failMu.Unlock()
}

func (e *Executor) err() error {
	e.failMu.Lock()
	defer e.failMu.Unlock()
	return e.firstErr
}

// stuckTasks returns the sorted names of tasks that never reached a terminal
// state.
func (e *Executor) stuckTasks() []string {
	var stuck []string
	for _, n := range e.graph.Nodes() {
		if !n.Terminal() {
			stuck = append(stuck, n.Name())
		}
	}
	sort.Strings(stuck)
	return stuck
}

// skipDependents marks all downstream tasks as skipped and releases their
// WaitGroup slots. The per-node once guard makes the recursion safe when a
// task is reachable through several failed paths.
func (e *Executor) skipDependents(logger *slog.Logger, n *node.Node) {
	for _, name := range e.graph.Dependents(n.Name()) {
		dep, ok := e.graph.Node(name)
		if !ok {
			continue
		}
		reason := fmt.Errorf("skipped due to upstream failure of '%s'", n.Name())
		if dep.Skip(reason, &e.wg) {
			logger.Warn("Skipping dependent task due to upstream failure.", "task", name, "dependency", n.Name())
			e.skipDependents(logger, dep)
		}
	}
}
