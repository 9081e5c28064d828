package sparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/xlinear/pkg/errors"
)

func sampleCSR(t *testing.T) *CSR {
	t.Helper()
	// [[1 0 2]
	//  [0 0 0]
	//  [0 3 0]]
	m, err := NewCSR(3, 3, []int{0, 2, 2, 3}, []int{0, 2, 1}, []float64{1, 2, 3})
	require.NoError(t, err)
	return m
}

func TestCSRAccessors(t *testing.T) {
	m := sampleCSR(t)

	r, c := m.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 3, c)
	assert.Equal(t, 3, m.NNZ())
	assert.Equal(t, 2.0, m.At(0, 2))
	assert.Equal(t, 0.0, m.At(1, 1))
	assert.Equal(t, 3.0, m.T().At(1, 2))
	assert.Equal(t, 0, m.RowNNZ(1))

	want := mat.NewDense(3, 3, []float64{1, 0, 2, 0, 0, 0, 0, 3, 0})
	assert.True(t, mat.Equal(want, m.ToDense()))
	assert.True(t, mat.Equal(want, FromDense(want).ToDense()))
}

func TestCSRSliceSharesStorage(t *testing.T) {
	m := sampleCSR(t)
	s := m.Slice(1, 3)

	assert.Equal(t, 2, s.Rows)
	assert.Equal(t, 1, s.NNZ())
	idx, val := s.Row(1)
	assert.Equal(t, []int{1}, idx)
	assert.Equal(t, []float64{3}, val)
	assert.NoError(t, s.Validate())

	empty := m.Slice(3, 3)
	assert.Equal(t, 0, empty.Rows)
	assert.Equal(t, 0, empty.NNZ())
}

func TestCSRValidate(t *testing.T) {
	tests := []struct {
		name    string
		m       CSR
		wantErr bool
	}{
		{name: "empty", m: CSR{Rows: 0, Cols: 4, Indptr: []int{0}}},
		{name: "short indptr", m: CSR{Rows: 2, Cols: 2, Indptr: []int{0, 1}, Indices: []int{0}, Data: []float64{1}}, wantErr: true},
		{name: "length mismatch", m: CSR{Rows: 1, Cols: 2, Indptr: []int{0, 1}, Indices: []int{0}, Data: nil}, wantErr: true},
		{name: "unsorted columns", m: CSR{Rows: 1, Cols: 3, Indptr: []int{0, 2}, Indices: []int{2, 1}, Data: []float64{1, 1}}, wantErr: true},
		{name: "column out of range", m: CSR{Rows: 1, Cols: 2, Indptr: []int{0, 1}, Indices: []int{2}, Data: []float64{1}}, wantErr: true},
		{name: "decreasing indptr", m: CSR{Rows: 2, Cols: 2, Indptr: []int{0, 1, 0}, Indices: []int{0}, Data: []float64{1}}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.m.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var dataErr *errors.DataError
			assert.True(t, errors.As(err, &dataErr), "got %v", err)
		})
	}
}

func TestBuilder(t *testing.T) {
	b := NewBuilder(5, 2)
	b.Push(1, 0.5)
	b.Push(4, -1)
	b.EndRow()
	b.AppendRow(nil, nil)
	b.AppendRow([]int{0}, []float64{2})
	m := b.Build()

	require.NoError(t, m.Validate())
	assert.Equal(t, 3, m.Rows)
	assert.Equal(t, -1.0, m.At(0, 4))
	assert.Equal(t, 2.0, m.At(2, 0))
}

func TestLabelMatrix(t *testing.T) {
	m, err := NewLabelMatrix(5, [][]int{{0, 3}, {}, {4, 1, 1}})
	require.NoError(t, err)
	require.NoError(t, m.Validate())

	r, c := m.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 5, c)
	assert.True(t, m.Contains(0, 3))
	assert.False(t, m.Contains(1, 3))
	assert.Equal(t, 2, m.Count(2))
	assert.Equal(t, []int{1, 4}, m.Labels(2))
	assert.Equal(t, 1.0, m.At(2, 4))

	s := m.Slice(1, 3)
	assert.Equal(t, 2, len(s.Rows))
	assert.Equal(t, []int{1, 4}, s.Labels(1))

	_, err = NewLabelMatrix(2, [][]int{{2}})
	assert.Error(t, err)
}
