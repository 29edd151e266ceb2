package ecs

import "go.uber.org/zap"

// Option configures a World.
type Option func(*World)

// WithLogger attaches a logger. The World logs under the "ecs" name.
func WithLogger(log *zap.Logger) Option {
	return func(w *World) {
		if log != nil {
			w.log = log.Named("ecs")
		}
	}
}

// WithTaskScheduler sets the scheduler used by the ParallelForEach helpers.
func WithTaskScheduler(tasks TaskScheduler) Option {
	return func(w *World) {
		if tasks != nil {
			w.tasks = tasks
		}
	}
}
