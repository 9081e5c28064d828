// Package sparse provides the row-major sparse matrices consumed by the
// prediction pipeline: CSR feature and score matrices and roaring-bitmap
// label matrices. Both satisfy gonum's mat.Matrix so they interoperate with
// dense gonum code.
package sparse

import (
	"slices"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/xlinear/pkg/errors"
)

// CSR is a compressed sparse row matrix. Row i stores its column indices in
// Indices[Indptr[i]:Indptr[i+1]] (strictly increasing) and the matching
// values in Data. Indptr offsets are absolute, so row views produced by
// Slice share Indices and Data with their parent.
//
// When a CSR holds scores, columns are labels and a missing entry means the
// label was not reached by the model.
type CSR struct {
	Rows    int
	Cols    int
	Indptr  []int
	Indices []int
	Data    []float64
}

// NewCSR builds a CSR from raw arrays and validates it.
func NewCSR(rows, cols int, indptr, indices []int, data []float64) (*CSR, error) {
	m := &CSR{Rows: rows, Cols: cols, Indptr: indptr, Indices: indices, Data: data}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks the structural invariants of the matrix.
func (m *CSR) Validate() error {
	const op = "CSR.Validate"
	if m.Rows < 0 || m.Cols < 0 {
		return errors.NewDataErrorf(op, "negative shape (%d, %d)", m.Rows, m.Cols)
	}
	if len(m.Indptr) != m.Rows+1 {
		return errors.NewDataErrorf(op, "indptr has %d entries, want %d", len(m.Indptr), m.Rows+1)
	}
	if len(m.Indices) != len(m.Data) {
		return errors.NewDataErrorf(op, "%d indices but %d values", len(m.Indices), len(m.Data))
	}
	if m.Indptr[0] < 0 || m.Indptr[m.Rows] > len(m.Indices) {
		return errors.NewDataErrorf(op, "indptr range [%d, %d] outside %d stored values",
			m.Indptr[0], m.Indptr[m.Rows], len(m.Indices))
	}
	for i := 0; i < m.Rows; i++ {
		lo, hi := m.Indptr[i], m.Indptr[i+1]
		if hi < lo {
			return errors.NewDataErrorf(op, "indptr decreases at row %d", i)
		}
		prev := -1
		for _, j := range m.Indices[lo:hi] {
			if j <= prev || j >= m.Cols {
				return errors.NewDataErrorf(op, "row %d: column %d out of order or outside [0, %d)", i, j, m.Cols)
			}
			prev = j
		}
	}
	return nil
}

// Dims returns the number of rows and columns.
func (m *CSR) Dims() (r, c int) {
	return m.Rows, m.Cols
}

// At returns the stored value at (i, j) or 0 when the entry is absent.
func (m *CSR) At(i, j int) float64 {
	if i < 0 || i >= m.Rows || j < 0 || j >= m.Cols {
		panic(mat.ErrIndexOutOfRange)
	}
	idx, val := m.Row(i)
	k := sort.SearchInts(idx, j)
	if k < len(idx) && idx[k] == j {
		return val[k]
	}
	return 0
}

// T returns the implicit transpose.
func (m *CSR) T() mat.Matrix {
	return mat.Transpose{Matrix: m}
}

// Row returns views of the column indices and values stored in row i.
func (m *CSR) Row(i int) (indices []int, data []float64) {
	lo, hi := m.Indptr[i], m.Indptr[i+1]
	return m.Indices[lo:hi], m.Data[lo:hi]
}

// RowNNZ returns the number of stored entries in row i.
func (m *CSR) RowNNZ(i int) int {
	return m.Indptr[i+1] - m.Indptr[i]
}

// NNZ returns the number of stored entries.
func (m *CSR) NNZ() int {
	return m.Indptr[m.Rows] - m.Indptr[0]
}

// Slice returns rows [start, end) as a view sharing storage with m.
func (m *CSR) Slice(start, end int) *CSR {
	if start < 0 || end > m.Rows || start > end {
		panic(mat.ErrRowAccess)
	}
	return &CSR{
		Rows:    end - start,
		Cols:    m.Cols,
		Indptr:  m.Indptr[start : end+1],
		Indices: m.Indices,
		Data:    m.Data,
	}
}

// ToDense materializes the matrix. Absent entries become 0.
func (m *CSR) ToDense() *mat.Dense {
	if m.Rows == 0 || m.Cols == 0 {
		return &mat.Dense{}
	}
	d := mat.NewDense(m.Rows, m.Cols, nil)
	for i := 0; i < m.Rows; i++ {
		idx, val := m.Row(i)
		for k, j := range idx {
			d.Set(i, j, val[k])
		}
	}
	return d
}

// FromDense converts a dense matrix, storing every non-zero entry.
func FromDense(d mat.Matrix) *CSR {
	r, c := d.Dims()
	b := NewBuilder(c, r)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := d.At(i, j); v != 0 {
				b.Push(j, v)
			}
		}
		b.EndRow()
	}
	return b.Build()
}

// Builder appends rows to a CSR. Entries of a row must be pushed in
// increasing column order.
type Builder struct {
	cols    int
	indptr  []int
	indices []int
	data    []float64
}

// NewBuilder creates a builder for a matrix with cols columns.
func NewBuilder(cols, rowsHint int) *Builder {
	indptr := make([]int, 1, rowsHint+1)
	return &Builder{cols: cols, indptr: indptr}
}

// Push appends entry (j, v) to the current row.
func (b *Builder) Push(j int, v float64) {
	b.indices = append(b.indices, j)
	b.data = append(b.data, v)
}

// EndRow closes the current row.
func (b *Builder) EndRow() {
	b.indptr = append(b.indptr, len(b.indices))
}

// Reserve grows the entry buffers to hold at least n more entries.
func (b *Builder) Reserve(n int) {
	b.indices = slices.Grow(b.indices, n)
	b.data = slices.Grow(b.data, n)
}

// AppendRow appends a complete row.
func (b *Builder) AppendRow(indices []int, data []float64) {
	b.indices = append(b.indices, indices...)
	b.data = append(b.data, data...)
	b.EndRow()
}

// Build returns the matrix. The builder must not be used afterwards.
func (b *Builder) Build() *CSR {
	return &CSR{
		Rows:    len(b.indptr) - 1,
		Cols:    b.cols,
		Indptr:  b.indptr,
		Indices: b.indices,
		Data:    b.data,
	}
}
