package taskmesh

import "log/slog"

// Option configures one execution.
type Option func(*options)

type options struct {
	workers         int
	cancelOnFailure bool
	logger          *slog.Logger
}

func defaultOptions() options {
	return options{}
}

// WithWorkerCount bounds the worker pool. By default every task gets its own
// worker, so independent tasks never queue behind each other; a positive n
// caps concurrently running tasks at n.
func WithWorkerCount(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithCancelOnFailure controls what happens to unrelated branches when a
// task fails. The default (false) keeps the original fire-and-forget
// semantics: already-started and independent tasks run to their natural
// completion and their results are discarded. With true, the first failure
// cancels the run context and unstarted tasks on every branch are swept.
// Either way the failed task's own dependents never start.
func WithCancelOnFailure(cancel bool) Option {
	return func(o *options) {
		o.cancelOnFailure = cancel
	}
}

// WithLogger supplies the slog.Logger used for execution diagnostics. By
// default the logger already carried by the context, or slog.Default(), is
// used.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}
