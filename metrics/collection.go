package metrics

import (
	"math"
	"slices"

	"github.com/YuminosukeSato/xlinear/core/rank"
	"github.com/YuminosukeSato/xlinear/core/sparse"
	"github.com/YuminosukeSato/xlinear/pkg/errors"
)

// Option configures a Collection.
type Option func(*Collection)

// WithMulticlass makes the F1 family score the single best label of each
// instance instead of every label with a positive score.
func WithMulticlass(on bool) Option {
	return func(c *Collection) {
		c.multiclass = on
	}
}

// Collection is a streaming accumulator for a fixed list of metrics. It is
// not safe for concurrent use; parallel producers keep one collection each
// and combine them with Merge.
type Collection struct {
	metrics    []Metric
	numLabels  int
	multiclass bool

	maxK      int
	confusion bool
	stats     *Stats

	top []rank.Entry
	// discount[r] = 1/log2(r+2); ideal[r] = sum of discount[:r+1]
	discount []float64
	ideal    []float64
}

// NewCollection parses names and prepares empty statistics over numLabels
// labels.
func NewCollection(names []string, numLabels int, opts ...Option) (*Collection, error) {
	if numLabels <= 0 {
		return nil, errors.NewValidationError("num_labels", "must be positive", numLabels)
	}
	c := &Collection{numLabels: numLabels}
	for _, opt := range opts {
		opt(c)
	}
	for _, name := range names {
		m, err := Parse(name)
		if err != nil {
			return nil, err
		}
		c.metrics = append(c.metrics, m)
		if m.ranked() {
			c.maxK = max(c.maxK, m.K)
		} else {
			c.confusion = true
		}
	}

	c.discount = make([]float64, c.maxK)
	c.ideal = make([]float64, c.maxK)
	acc := 0.0
	for r := range c.discount {
		c.discount[r] = 1 / math.Log2(float64(r+2))
		acc += c.discount[r]
		c.ideal[r] = acc
	}
	c.Reset()
	return c, nil
}

// Names returns the metric names in configuration order.
func (c *Collection) Names() []string {
	out := make([]string, len(c.metrics))
	for i, m := range c.metrics {
		out[i] = m.Name
	}
	return out
}

// NumLabels returns the label space size.
func (c *Collection) NumLabels() int { return c.numLabels }

// Stats exposes the accumulated statistics.
func (c *Collection) Stats() *Stats { return c.stats }

// Reset discards all accumulated statistics.
func (c *Collection) Reset() {
	c.stats = newStats(c.maxK, c.numLabels, c.maxK > 0, c.confusion)
}

// Update folds one batch of scores and targets into the statistics. Absent
// score entries rank below every stored entry and are never positive.
func (c *Collection) Update(scores *sparse.CSR, targets *sparse.LabelMatrix) error {
	rows, _ := targets.Dims()
	if scores.Rows != rows {
		return errors.NewDimensionError("metrics.Update", rows, scores.Rows, 0)
	}
	if scores.Cols != c.numLabels || targets.NumLabels != c.numLabels {
		return errors.NewDimensionError("metrics.Update", c.numLabels, max(scores.Cols, targets.NumLabels), 1)
	}

	s := c.stats
	for i := 0; i < rows; i++ {
		idx, val := scores.Row(i)
		if c.maxK > 0 {
			c.updateRanked(i, idx, val, targets)
		}
		if c.confusion {
			c.updateConfusion(i, idx, val, targets)
		}
	}
	s.N += rows
	return nil
}

func (c *Collection) updateRanked(i int, idx []int, val []float64, targets *sparse.LabelMatrix) {
	s := c.stats
	c.top = rank.TopKPadded(idx, val, c.maxK, c.numLabels, c.top)
	nPos := targets.Count(i)

	hits := 0
	dcg := 0.0
	for r := 0; r < c.maxK; r++ {
		if r < len(c.top) && targets.Contains(i, c.top[r].Label) {
			hits++
			dcg += c.discount[r]
		}
		k := r + 1
		s.Precision[r] += float64(hits) / float64(k)
		if nPos == 0 {
			continue
		}
		denom := min(k, nPos)
		s.RPrecision[r] += float64(hits) / float64(denom)
		s.NDCG[r] += dcg / c.ideal[denom-1]
	}
}

func (c *Collection) updateConfusion(i int, idx []int, val []float64, targets *sparse.LabelMatrix) {
	s := c.stats
	for _, l := range targets.Labels(i) {
		s.Support[l]++
	}
	mark := func(l int) {
		if targets.Contains(i, l) {
			s.TP[l]++
		} else {
			s.FP[l]++
		}
	}

	if c.multiclass {
		if best, ok := rank.Argmax(idx, val); ok {
			mark(best.Label)
		}
		return
	}
	for k, l := range idx {
		if val[k] > 0 {
			mark(l)
		}
	}
}

// Merge adds the statistics of other, which must track the same metrics over
// the same label space.
func (c *Collection) Merge(other *Collection) error {
	if other.numLabels != c.numLabels {
		return errors.NewDimensionError("metrics.Merge", c.numLabels, other.numLabels, 1)
	}
	if !slices.Equal(c.Names(), other.Names()) || c.multiclass != other.multiclass {
		return errors.NewValidationError("metrics", "collections track different metrics", other.Names())
	}
	c.stats.Merge(other.stats)
	return nil
}

// Compute returns the current metric values by name. With no instances every
// metric is 0 and an UndefinedMetricWarning is raised per metric.
func (c *Collection) Compute() map[string]float64 {
	out := make(map[string]float64, len(c.metrics))
	s := c.stats
	if s.N == 0 {
		for _, m := range c.metrics {
			out[m.Name] = 0
			errors.Warn(errors.NewUndefinedMetricWarning(m.Name, "no instances were evaluated", 0))
		}
		return out
	}

	n := float64(s.N)
	tp, fp, fn := 0.0, 0.0, 0.0
	if c.confusion {
		tp, fp, fn = s.micro()
	}
	for _, m := range c.metrics {
		var v float64
		switch m.Kind {
		case PrecisionAtK:
			v = s.Precision[m.K-1] / n
		case RPrecisionAtK:
			v = s.RPrecision[m.K-1] / n
		case NDCGAtK:
			v = s.NDCG[m.K-1] / n
		case MicroF1:
			v = errors.SafeDivide(2*tp, 2*tp+fp+fn)
		case MicroPrecision:
			v = errors.SafeDivide(tp, tp+fp)
		case MicroRecall:
			v = errors.SafeDivide(tp, tp+fn)
		case MacroF1:
			v = c.macroF1()
		case AnotherMacroF1:
			v = c.anotherMacroF1()
		}
		out[m.Name] = v
	}
	return out
}

// macroF1 averages per-label F1, counting labels with no positives and no
// predictions as 0.
func (c *Collection) macroF1() float64 {
	s := c.stats
	sum := 0.0
	for l := range s.TP {
		tp := float64(s.TP[l])
		fp := float64(s.FP[l])
		fn := float64(s.Support[l] - s.TP[l])
		sum += errors.SafeDivide(2*tp, 2*tp+fp+fn)
	}
	return sum / float64(c.numLabels)
}

func (c *Collection) anotherMacroF1() float64 {
	s := c.stats
	p, r := 0.0, 0.0
	for l := range s.TP {
		tp := float64(s.TP[l])
		p += errors.SafeDivide(tp, tp+float64(s.FP[l]))
		r += errors.SafeDivide(tp, float64(s.Support[l]))
	}
	p /= float64(c.numLabels)
	r /= float64(c.numLabels)
	return errors.SafeDivide(2*p*r, p+r)
}
