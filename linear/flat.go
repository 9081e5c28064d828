package linear

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/xlinear/core/parallel"
	"github.com/YuminosukeSato/xlinear/core/sparse"
	"github.com/YuminosukeSato/xlinear/pkg/errors"
)

// FlatModel is a one-vs-rest linear model scoring every label directly.
// Weights is D×L, or (D+1)×L when Bias > 0, in which case the last row holds
// the bias weights.
type FlatModel struct {
	Weights   *mat.Dense
	Bias      float64
	Threshold []float64
}

// NewFlatModel validates the weights and applies options.
func NewFlatModel(weights *mat.Dense, opts ...Option) (*FlatModel, error) {
	m := &FlatModel{Weights: weights}
	for _, opt := range opts {
		opt(m)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks shapes and rejects non-finite weights.
func (m *FlatModel) Validate() error {
	if m.Weights == nil || m.Weights.IsEmpty() {
		return errors.NewModelError("FlatModel.Validate", "empty weights", errors.ErrEmptyData)
	}
	r, c := m.Weights.Dims()
	if m.Bias > 0 && r < 1 {
		return errors.NewDimensionError("FlatModel.Validate", 1, r, 0)
	}
	if m.Threshold != nil && len(m.Threshold) != c {
		return errors.NewDimensionError("FlatModel.Validate", c, len(m.Threshold), 1)
	}
	for i := 0; i < r; i++ {
		if err := errors.CheckNumericalStability("FlatModel.Validate", m.Weights.RawRowView(i)); err != nil {
			return err
		}
	}
	return nil
}

// NumFeatures returns the feature width D expected from instances.
func (m *FlatModel) NumFeatures() int {
	r, _ := m.Weights.Dims()
	if m.Bias > 0 {
		return r - 1
	}
	return r
}

// NumLabels returns L.
func (m *FlatModel) NumLabels() int {
	_, c := m.Weights.Dims()
	return c
}

// PredictValues scores every label of every row. The returned score matrix
// stores all L labels per row. The model is not modified.
func (m *FlatModel) PredictValues(x *sparse.CSR, opts ...PredictOption) (*sparse.CSR, error) {
	cfg := predictConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	d := m.NumFeatures()
	if x.Cols != d {
		return nil, errors.NewDimensionError("FlatModel.PredictValues", d, x.Cols, 1)
	}
	nLabels := m.NumLabels()
	b := x.Rows

	data := make([]float64, b*nLabels)
	parallel.ParallelizeWorkers(b, cfg.workers, func(_, start, end int) {
		for i := start; i < end; i++ {
			row := data[i*nLabels : (i+1)*nLabels]
			idx, val := x.Row(i)
			ScoreRow(row, idx, val, m.Weights)
			if m.Bias > 0 {
				floats.AddScaled(row, m.Bias, m.Weights.RawRowView(d))
			}
			if m.Threshold != nil {
				floats.Add(row, m.Threshold)
			}
		}
	})

	indptr := make([]int, b+1)
	indices := make([]int, b*nLabels)
	for i := 0; i < b; i++ {
		indptr[i+1] = (i + 1) * nLabels
		for j := 0; j < nLabels; j++ {
			indices[i*nLabels+j] = j
		}
	}
	return &sparse.CSR{Rows: b, Cols: nLabels, Indptr: indptr, Indices: indices, Data: data}, nil
}
