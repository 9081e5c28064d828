// Package linear provides the linear scoring primitive shared by every model
// kind and the flat one-vs-rest model.
package linear

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/xlinear/core/parallel"
	"github.com/YuminosukeSato/xlinear/core/sparse"
	"github.com/YuminosukeSato/xlinear/pkg/errors"
)

// 並列処理の閾値（この行数以下では逐次処理）
const parallelThreshold = 64

// Score returns the B×M decision values x·w for a B×D sparse feature matrix
// and a D×M weight matrix. Rows are accumulated in stored column order, so
// the result is bit-for-bit reproducible for identical inputs.
func Score(x *sparse.CSR, w *mat.Dense) (*mat.Dense, error) {
	d, m := w.Dims()
	if x.Cols != d {
		return nil, errors.NewDimensionError("linear.Score", d, x.Cols, 1)
	}
	if x.Rows == 0 || m == 0 {
		return &mat.Dense{}, nil
	}

	out := mat.NewDense(x.Rows, m, nil)
	parallel.ParallelizeWithThreshold(x.Rows, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			idx, val := x.Row(i)
			ScoreRow(out.RawRowView(i), idx, val, w)
		}
	})
	return out, nil
}

// ScoreRow writes the decision values of one sparse row into dst, which must
// have length equal to the number of weight columns. Column indices must be
// valid weight rows; callers validate dimensions once per batch.
func ScoreRow(dst []float64, idx []int, val []float64, w *mat.Dense) {
	for k := range dst {
		dst[k] = 0
	}
	for k, j := range idx {
		floats.AddScaled(dst, val[k], w.RawRowView(j))
	}
}
