package linear

// Option configures a FlatModel.
type Option func(*FlatModel)

// WithBias declares that the last weight row belongs to a constant bias
// feature with the given value. Values <= 0 disable the bias feature.
func WithBias(bias float64) Option {
	return func(m *FlatModel) {
		m.Bias = bias
	}
}

// WithThreshold sets per-label offsets added to every decision value.
func WithThreshold(threshold []float64) Option {
	return func(m *FlatModel) {
		m.Threshold = threshold
	}
}

type predictConfig struct {
	workers int
}

// PredictOption configures one PredictValues call.
type PredictOption func(*predictConfig)

// WithWorkers sets the number of goroutines scoring rows (<= 0: all CPUs).
func WithWorkers(n int) PredictOption {
	return func(c *predictConfig) {
		c.workers = n
	}
}
