package worker

import "github.com/vibingbhudha77/vibex/pkg/logger"

// Option configures a Worker.
type Option func(*Worker)

// WithName sets a name for the worker, used in log output.
func WithName(name string) Option {
	return func(w *Worker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets the logger used by the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *Worker) {
		if l != nil {
			w.logger = l
		}
	}
}
