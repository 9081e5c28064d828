package tree

import (
	"github.com/YuminosukeSato/xlinear/core/parallel"
	"github.com/YuminosukeSato/xlinear/core/sparse"
	"github.com/YuminosukeSato/xlinear/linear"
	"github.com/YuminosukeSato/xlinear/pkg/errors"
)

// ScoreExhaustive scores every label through its full root-to-leaf path
// without pruning. It is the reference PredictValues converges to when the
// beam is at least Width() wide.
func (t *Tree) ScoreExhaustive(x *sparse.CSR) (*sparse.CSR, error) {
	if x.Cols != t.NumFeatures {
		return nil, errors.NewDimensionError("Tree.ScoreExhaustive", t.NumFeatures, x.Cols, 1)
	}

	data := make([]float64, x.Rows*t.NumLabels)
	parallel.ParallelizeWithThreshold(x.Rows, 16, func(start, end int) {
		dec := make([]float64, max(t.maxBranch, t.maxLeaf))
		for i := start; i < end; i++ {
			idx, val := x.Row(i)
			t.walk(0, 0, idx, val, dec, data[i*t.NumLabels:(i+1)*t.NumLabels])
		}
	})

	b := sparse.NewBuilder(t.NumLabels, x.Rows)
	labels := make([]int, t.NumLabels)
	for l := range labels {
		labels[l] = l
	}
	for i := 0; i < x.Rows; i++ {
		b.AppendRow(labels, data[i*t.NumLabels:(i+1)*t.NumLabels])
	}
	return b.Build(), nil
}

// walk accumulates path scores depth first. dec is clobbered by recursion,
// so child scores are copied before descending.
func (t *Tree) walk(node int, score float64, idx []int, val []float64, dec []float64, out []float64) {
	n := &t.Nodes[node]
	if n.IsLeaf() {
		d := dec[:len(n.Labels)]
		linear.ScoreRow(d, idx, val, n.Weights)
		for k, l := range n.Labels {
			out[l] = score + d[k]
		}
		return
	}
	d := dec[:len(n.Children)]
	linear.ScoreRow(d, idx, val, n.Weights)
	child := make([]float64, len(d))
	copy(child, d)
	for c, ci := range n.Children {
		t.walk(ci, score+child[c], idx, val, dec, out)
	}
}
