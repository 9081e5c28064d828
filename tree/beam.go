package tree

import (
	"slices"

	"github.com/YuminosukeSato/xlinear/core/parallel"
	"github.com/YuminosukeSato/xlinear/core/sparse"
	"github.com/YuminosukeSato/xlinear/linear"
	"github.com/YuminosukeSato/xlinear/pkg/errors"
)

type beamEntry struct {
	node  int32
	score float64
}

// 降順、同点はノード番号の昇順
func compareBeam(a, b beamEntry) int {
	switch {
	case a.score > b.score:
		return -1
	case a.score < b.score:
		return 1
	}
	return int(a.node) - int(b.node)
}

// arena holds the scratch space of one worker. It is reused across levels
// and rows, so a row allocates only its output.
type arena struct {
	beam     []beamEntry
	cand     []beamEntry
	decision []float64
	labels   []int
	scores   []float64
	order    []int
}

func (t *Tree) newArena(beamWidth int) *arena {
	return &arena{
		beam:     make([]beamEntry, 0, beamWidth),
		cand:     make([]beamEntry, 0, beamWidth*max(t.maxBranch, 1)),
		decision: make([]float64, max(t.maxBranch, t.maxLeaf)),
	}
}

// PredictValues scores a batch by beam search. Row i of the result stores the
// labels owned by the leaves surviving in the beam of instance i, in
// ascending label order; labels of pruned subtrees are absent.
func (t *Tree) PredictValues(x *sparse.CSR, opts ...Option) (*sparse.CSR, error) {
	cfg := newPredictConfig(opts)
	if cfg.beamWidth < 1 {
		return nil, errors.NewValidationError("beam_width", "must be at least 1", cfg.beamWidth)
	}
	if x.Cols != t.NumFeatures {
		return nil, errors.NewDimensionError("Tree.PredictValues", t.NumFeatures, x.Cols, 1)
	}

	rowLabels := make([][]int, x.Rows)
	rowScores := make([][]float64, x.Rows)
	workers := cfg.workers
	if workers <= 0 || workers > x.Rows {
		workers = min(max(x.Rows, 1), parallelWorkers())
	}
	arenas := make([]*arena, workers)
	for w := range arenas {
		arenas[w] = t.newArena(cfg.beamWidth)
	}

	parallel.ParallelizeWorkers(x.Rows, workers, func(w, start, end int) {
		a := arenas[w]
		for i := start; i < end; i++ {
			idx, val := x.Row(i)
			rowLabels[i], rowScores[i] = t.searchRow(a, idx, val, cfg.beamWidth)
		}
	})

	return assemble(x.Rows, t.NumLabels, rowLabels, rowScores), nil
}

// searchRow runs beam search for one instance and returns its reached labels
// in ascending order with their scores.
func (t *Tree) searchRow(a *arena, idx []int, val []float64, beamWidth int) ([]int, []float64) {
	a.beam = append(a.beam[:0], beamEntry{node: 0})

	for level := 1; level < t.depth; level++ {
		if !t.hasInternal(a.beam) {
			break
		}
		a.cand = a.cand[:0]
		for _, e := range a.beam {
			n := &t.Nodes[e.node]
			if n.IsLeaf() {
				a.cand = append(a.cand, e)
				continue
			}
			dec := a.decision[:len(n.Children)]
			linear.ScoreRow(dec, idx, val, n.Weights)
			for c, child := range n.Children {
				a.cand = append(a.cand, beamEntry{node: int32(child), score: e.score + dec[c]})
			}
		}
		slices.SortFunc(a.cand, compareBeam)
		if len(a.cand) > beamWidth {
			a.cand = a.cand[:beamWidth]
		}
		a.beam, a.cand = a.cand, a.beam
	}

	// surviving leaves emit every owned label
	a.labels, a.scores = a.labels[:0], a.scores[:0]
	for _, e := range a.beam {
		n := &t.Nodes[e.node]
		if !n.IsLeaf() {
			continue
		}
		dec := a.decision[:len(n.Labels)]
		linear.ScoreRow(dec, idx, val, n.Weights)
		for k, l := range n.Labels {
			a.labels = append(a.labels, l)
			a.scores = append(a.scores, e.score+dec[k])
		}
	}
	return sortedCopy(a)
}

func (t *Tree) hasInternal(beam []beamEntry) bool {
	for _, e := range beam {
		if !t.Nodes[e.node].IsLeaf() {
			return true
		}
	}
	return false
}

// sortedCopy returns owned copies of the arena's label/score buffers ordered
// by label.
func sortedCopy(a *arena) ([]int, []float64) {
	a.order = a.order[:0]
	for k := range a.labels {
		a.order = append(a.order, k)
	}
	slices.SortFunc(a.order, func(p, q int) int { return a.labels[p] - a.labels[q] })

	labels := make([]int, len(a.order))
	scores := make([]float64, len(a.order))
	for k, o := range a.order {
		labels[k] = a.labels[o]
		scores[k] = a.scores[o]
	}
	return labels, scores
}

// assemble concatenates per-row results in row order.
func assemble(rows, numLabels int, rowLabels [][]int, rowScores [][]float64) *sparse.CSR {
	nnz := 0
	for _, l := range rowLabels {
		nnz += len(l)
	}
	b := sparse.NewBuilder(numLabels, rows)
	b.Reserve(nnz)
	for i := 0; i < rows; i++ {
		b.AppendRow(rowLabels[i], rowScores[i])
	}
	return b.Build()
}
