package output

import (
	"bufio"
	"io"
	"strconv"

	"github.com/YuminosukeSato/xlinear/core/rank"
	"github.com/YuminosukeSato/xlinear/core/sparse"
	"github.com/YuminosukeSato/xlinear/pkg/errors"
)

// Option configures a Writer.
type Option func(*Writer)

// WithLabelMapping prints names[label] instead of numeric label ids.
func WithLabelMapping(names []string) Option {
	return func(w *Writer) {
		w.mapping = names
	}
}

// Writer formats score batches according to a Policy. Each WriteBatch ends
// with a flush, so the sink only ever holds complete lines.
type Writer struct {
	bw        *bufio.Writer
	closer    io.Closer
	policy    Policy
	numLabels int
	mapping   []string

	entries []rank.Entry
	line    []byte
	lines   int
}

// NewWriter validates policy and wraps w. When w is an io.Closer, Close
// closes it after the final flush.
func NewWriter(w io.Writer, policy Policy, numLabels int, opts ...Option) (*Writer, error) {
	if err := policy.Validate(numLabels); err != nil {
		return nil, err
	}
	out := &Writer{
		bw:        bufio.NewWriterSize(w, 1<<16),
		policy:    policy,
		numLabels: numLabels,
	}
	if c, ok := w.(io.Closer); ok {
		out.closer = c
	}
	for _, opt := range opts {
		opt(out)
	}
	if out.mapping != nil && len(out.mapping) != numLabels {
		return nil, errors.NewDimensionError("output.NewWriter", numLabels, len(out.mapping), 1)
	}
	return out, nil
}

// Policy returns the active policy.
func (w *Writer) Policy() Policy { return w.policy }

// Lines returns the number of lines written so far.
func (w *Writer) Lines() int { return w.lines }

// WriteBatch writes one line per row of scores and flushes. Absent labels
// score -Inf.
func (w *Writer) WriteBatch(scores *sparse.CSR) error {
	if !w.policy.Enabled() {
		return nil
	}
	if scores.Cols != w.numLabels {
		return errors.NewDimensionError("output.WriteBatch", w.numLabels, scores.Cols, 1)
	}
	for i := 0; i < scores.Rows; i++ {
		idx, val := scores.Row(i)
		switch w.policy.Mode {
		case TopK:
			w.entries = rank.TopKPadded(idx, val, w.policy.K, w.numLabels, w.entries)
		case Positive:
			w.entries = rank.Above(idx, val, w.policy.Threshold, w.entries)
		}
		w.line = w.appendLine(w.line[:0], w.entries)
		if _, err := w.bw.Write(w.line); err != nil {
			return errors.Wrap(err, "failed to write predictions")
		}
		w.lines++
	}
	return errors.Wrap(w.bw.Flush(), "failed to flush predictions")
}

// appendLine renders entries as space separated label:score tokens.
func (w *Writer) appendLine(dst []byte, entries []rank.Entry) []byte {
	for k, e := range entries {
		if k > 0 {
			dst = append(dst, ' ')
		}
		if w.mapping != nil {
			dst = append(dst, w.mapping[e.Label]...)
		} else {
			dst = strconv.AppendInt(dst, int64(e.Label), 10)
		}
		dst = append(dst, ':')
		dst = AppendScore(dst, e.Score)
	}
	return append(dst, '\n')
}

// AppendScore formats a score with 4 significant digits, like %.4g.
func AppendScore(dst []byte, score float64) []byte {
	return strconv.AppendFloat(dst, score, 'g', 4, 64)
}

// Close flushes buffered output and closes the underlying writer.
func (w *Writer) Close() error {
	err := w.bw.Flush()
	if w.closer != nil {
		if cerr := w.closer.Close(); err == nil {
			err = cerr
		}
	}
	return errors.Wrap(err, "failed to close prediction output")
}
