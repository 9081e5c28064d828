package tree

import "runtime"

// DefaultBeamWidth is the beam width used when none is given.
const DefaultBeamWidth = 10

type predictConfig struct {
	beamWidth int
	workers   int
}

// Option configures a prediction call.
type Option func(*predictConfig)

// WithBeamWidth sets the number of partial paths kept per level.
func WithBeamWidth(n int) Option {
	return func(c *predictConfig) {
		c.beamWidth = n
	}
}

// WithWorkers sets the number of goroutines scoring rows (<= 0: all CPUs).
func WithWorkers(n int) Option {
	return func(c *predictConfig) {
		c.workers = n
	}
}

// WorkersOf returns the worker budget opts set, 0 when none.
func WorkersOf(opts ...Option) int {
	return newPredictConfig(opts).workers
}

func newPredictConfig(opts []Option) predictConfig {
	c := predictConfig{beamWidth: DefaultBeamWidth}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func parallelWorkers() int {
	return runtime.NumCPU()
}
