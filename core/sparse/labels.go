package sparse

import (
	"github.com/RoaringBitmap/roaring/v2"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/xlinear/pkg/errors"
)

// LabelMatrix is a sparse boolean instance × label matrix holding ground
// truth. Each row is a roaring bitmap of relevant label ids; a nil row is
// empty.
type LabelMatrix struct {
	NumLabels int
	Rows      []*roaring.Bitmap
}

// NewLabelMatrix builds a label matrix from per-row label lists.
func NewLabelMatrix(numLabels int, rows [][]int) (*LabelMatrix, error) {
	m := &LabelMatrix{NumLabels: numLabels, Rows: make([]*roaring.Bitmap, len(rows))}
	for i, labels := range rows {
		bm := roaring.New()
		for _, l := range labels {
			if l < 0 || l >= numLabels {
				return nil, errors.NewDataErrorf("NewLabelMatrix", "row %d: label %d outside [0, %d)", i, l, numLabels)
			}
			bm.Add(uint32(l))
		}
		m.Rows[i] = bm
	}
	return m, nil
}

// Validate checks that every stored label lies in [0, NumLabels).
func (m *LabelMatrix) Validate() error {
	if m.NumLabels < 0 {
		return errors.NewDataErrorf("LabelMatrix.Validate", "negative label count %d", m.NumLabels)
	}
	for i, bm := range m.Rows {
		if bm == nil || bm.IsEmpty() {
			continue
		}
		if maxLabel := int(bm.Maximum()); maxLabel >= m.NumLabels {
			return errors.NewDataErrorf("LabelMatrix.Validate", "row %d: label %d outside [0, %d)", i, maxLabel, m.NumLabels)
		}
	}
	return nil
}

// Dims returns the number of instances and labels.
func (m *LabelMatrix) Dims() (r, c int) {
	return len(m.Rows), m.NumLabels
}

// At returns 1 when label j is relevant for instance i, 0 otherwise.
func (m *LabelMatrix) At(i, j int) float64 {
	if m.Contains(i, j) {
		return 1
	}
	return 0
}

// T returns the implicit transpose.
func (m *LabelMatrix) T() mat.Matrix {
	return mat.Transpose{Matrix: m}
}

// Contains reports whether label is relevant for instance i.
func (m *LabelMatrix) Contains(i, label int) bool {
	bm := m.Rows[i]
	return bm != nil && label >= 0 && bm.Contains(uint32(label))
}

// Count returns the number of relevant labels of instance i.
func (m *LabelMatrix) Count(i int) int {
	if bm := m.Rows[i]; bm != nil {
		return int(bm.GetCardinality())
	}
	return 0
}

// Labels returns the relevant labels of instance i in ascending order.
func (m *LabelMatrix) Labels(i int) []int {
	bm := m.Rows[i]
	if bm == nil {
		return nil
	}
	out := make([]int, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out
}

// Slice returns rows [start, end) sharing the row bitmaps with m.
func (m *LabelMatrix) Slice(start, end int) *LabelMatrix {
	return &LabelMatrix{NumLabels: m.NumLabels, Rows: m.Rows[start:end]}
}
