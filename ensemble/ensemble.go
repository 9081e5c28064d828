// Package ensemble combines independently trained label trees by summing
// their beam-search scores.
package ensemble

import (
	"context"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/YuminosukeSato/xlinear/core/sparse"
	"github.com/YuminosukeSato/xlinear/pkg/errors"
	"github.com/YuminosukeSato/xlinear/tree"
)

// Ensemble is a set of trees over the same label and feature spaces. Seeds
// optionally records the partition seed of each member.
type Ensemble struct {
	Trees []*tree.Tree
	Seeds []int64

	// members scored concurrently; <= 0 means all at once
	Parallelism int
}

// New validates that every member shares the label and feature spaces.
func New(trees ...*tree.Tree) (*Ensemble, error) {
	e := &Ensemble{Trees: trees}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Validate checks member compatibility.
func (e *Ensemble) Validate() error {
	const op = "ensemble.New"
	if len(e.Trees) == 0 {
		return errors.NewModelError(op, "ensemble has no trees", errors.ErrEmptyData)
	}
	first := e.Trees[0]
	for _, t := range e.Trees[1:] {
		if t.NumLabels != first.NumLabels {
			return errors.NewDimensionError(op, first.NumLabels, t.NumLabels, 1)
		}
		if t.NumFeatures != first.NumFeatures {
			return errors.NewDimensionError(op, first.NumFeatures, t.NumFeatures, 0)
		}
	}
	if e.Seeds != nil && len(e.Seeds) != len(e.Trees) {
		return errors.NewValidationError("seeds", "must have one seed per tree", len(e.Seeds))
	}
	return nil
}

// NumLabels returns the label count shared by all members.
func (e *Ensemble) NumLabels() int { return e.Trees[0].NumLabels }

// NumFeatures returns the feature count shared by all members.
func (e *Ensemble) NumFeatures() int { return e.Trees[0].NumFeatures }

// PredictValues runs beam search on every member and merges the results.
// Members run concurrently; the first failure skips members not yet started.
// Cancellation of ctx does not interrupt a call in progress, so a batch is
// either scored completely or not at all.
func (e *Ensemble) PredictValues(ctx context.Context, x *sparse.CSR, opts ...tree.Option) (*sparse.CSR, error) {
	parts := make([]*sparse.CSR, len(e.Trees))
	g, gctx := errgroup.WithContext(context.WithoutCancel(ctx))
	if e.Parallelism > 0 {
		g.SetLimit(e.Parallelism)
	}
	for i, t := range e.Trees {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			scores, err := t.PredictValues(x, opts...)
			if err != nil {
				return errors.Wrapf(err, "ensemble member %d", i)
			}
			parts[i] = scores
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return Merge(e.NumLabels(), parts...)
}

// Merge sums score matrices label-wise. A label missing from a part adds 0;
// a label missing from every part stays absent. Rows list labels in
// ascending order.
func Merge(numLabels int, parts ...*sparse.CSR) (*sparse.CSR, error) {
	if len(parts) == 0 {
		return nil, errors.NewModelError("ensemble.Merge", "nothing to merge", errors.ErrEmptyData)
	}
	rows := parts[0].Rows
	for _, p := range parts {
		if p.Rows != rows {
			return nil, errors.NewDimensionError("ensemble.Merge", rows, p.Rows, 0)
		}
		if p.Cols != numLabels {
			return nil, errors.NewDimensionError("ensemble.Merge", numLabels, p.Cols, 1)
		}
	}

	// dense accumulator plus touched list, reset per row
	acc := make([]float64, numLabels)
	seen := make([]bool, numLabels)
	var touched []int

	b := sparse.NewBuilder(numLabels, rows)
	for i := 0; i < rows; i++ {
		touched = touched[:0]
		for _, p := range parts {
			idx, val := p.Row(i)
			for k, l := range idx {
				if !seen[l] {
					seen[l] = true
					touched = append(touched, l)
				}
				acc[l] += val[k]
			}
		}
		slices.Sort(touched)
		for _, l := range touched {
			b.Push(l, acc[l])
			acc[l] = 0
			seen[l] = false
		}
		b.EndRow()
	}
	return b.Build(), nil
}
