package executor

import (
	"context"
	"log/slog"

	"github.com/vk/taskmesh/internal/node"
)

// worker is the core processing loop for a single concurrent worker. It
// drains the ready channel, runs each task against a filtered view of the
// result set, and unlocks dependents whose last unmet dependency it was.
func (e *Executor) worker(ctx context.Context, logger *slog.Logger, readyChan chan *node.Node, cancel context.CancelFunc, workerID int) {
	logger.Debug("Worker started.", "worker_id", workerID)

	for n := range readyChan {
		workerLogger := logger.With("worker_id", workerID, "task", n.Name())

		if ctx.Err() != nil {
			if n.Skip(ctx.Err(), &e.wg) {
				workerLogger.Warn("Run context canceled, skipping task.")
				e.skipDependents(workerLogger, n)
			}
			continue
		}

		workerLogger.Debug("Worker picked up task.")
		n.SetState(node.Running)
		out, err := n.Run(ctx, e.results.Inputs(n.Needs()))

		if err != nil {
			workerLogger.Error("Task failed.", "error", err)
			n.SetState(node.Failed)
			n.Error = err
			e.results.SetError(n.Name(), err)
			e.recordFailure(err)
			if e.opts.CancelOnFailure {
				cancel()
			}
			e.skipDependents(workerLogger, n)
			e.wg.Done()
			continue
		}

		workerLogger.Debug("Task succeeded.")
		n.Output = out
		n.SetState(node.Done)
		// The output must be visible in the store before any dependent can
		// observe a zero dependency count.
		e.results.SetOutput(n.Name(), out)

		for _, name := range e.graph.Dependents(n.Name()) {
			dep, ok := e.graph.Node(name)
			if !ok {
				continue
			}
			if dep.DecrementDepCount() == 0 {
				workerLogger.Debug("Unlocking dependent task.", "dependent", name)
				readyChan <- dep
			}
		}

		e.wg.Done()
	}
	logger.Debug("Worker finished.", "worker_id", workerID)
}
