package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/xlinear/core/fileio"
	"github.com/YuminosukeSato/xlinear/pkg/errors"
	"github.com/YuminosukeSato/xlinear/pkg/log"
)

func quiet() Option {
	logger, _ := log.NewTestLogger(log.LevelError)
	return WithLogger(logger)
}

const sample = `2,0 1:0.5 3:2
# comment

1 2:-1
4:3
`

func TestReadSVM(t *testing.T) {
	ds, err := ReadSVM(strings.NewReader(sample), quiet())
	require.NoError(t, err)

	require.NoError(t, ds.X.Validate())
	assert.Equal(t, 3, ds.X.Rows)
	assert.Equal(t, 4, ds.X.Cols)
	idx, val := ds.X.Row(0)
	assert.Equal(t, []int{0, 2}, idx)
	assert.Equal(t, []float64{0.5, 2}, val)
	idx, _ = ds.X.Row(2)
	assert.Equal(t, []int{3}, idx)

	assert.Equal(t, 3, ds.Y.NumLabels)
	assert.Equal(t, []int{0, 2}, ds.Y.Labels(0))
	assert.Equal(t, []int{1}, ds.Y.Labels(1))
	assert.Empty(t, ds.Y.Labels(2))
}

func TestReadSVMOptions(t *testing.T) {
	t.Run("fixed shape", func(t *testing.T) {
		ds, err := ReadSVM(strings.NewReader(sample), WithNumFeatures(10), WithNumLabels(5), quiet())
		require.NoError(t, err)
		assert.Equal(t, 10, ds.X.Cols)
		assert.Equal(t, 5, ds.Y.NumLabels)
	})

	t.Run("too many features", func(t *testing.T) {
		_, err := ReadSVM(strings.NewReader(sample), WithNumFeatures(3), quiet())
		var dimErr *errors.DimensionError
		assert.True(t, errors.As(err, &dimErr))
	})

	t.Run("label mapping", func(t *testing.T) {
		data := "cat,dog 1:1\nowl 1:2\ndog 2:1\n"
		logger, _ := log.NewTestLogger(log.LevelWarn)
		ds, err := ReadSVM(strings.NewReader(data),
			WithLabelMapping([]string{"dog", "cat"}), WithRemoveNoLabel(true), WithLogger(logger))
		require.NoError(t, err)

		assert.Equal(t, 2, ds.X.Rows)
		assert.Equal(t, []int{0, 1}, ds.Y.Labels(0))
		assert.Equal(t, []int{0}, ds.Y.Labels(1))
		assert.Equal(t, 1, ds.UnknownLabels)
		assert.Equal(t, 1, ds.Skipped)
		assert.True(t, logger.ContainsMessage("dropped"))
	})
}

func TestReadSVMRejectsMalformedLines(t *testing.T) {
	tests := map[string]string{
		"bad label":          "x 1:1\n",
		"negative label":     "-1 1:1\n",
		"missing colon":      "1 3\n",
		"zero index":         "1 0:1\n",
		"decreasing indices": "1 3:1 2:1\n",
		"bad value":          "1 1:abc\n",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadSVM(strings.NewReader(data), quiet())
			var dataErr *errors.DataError
			assert.True(t, errors.As(err, &dataErr), "got %v", err)
		})
	}
}

func TestLoadCompressed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.svm.gz")
	w, err := fileio.Create(path)
	require.NoError(t, err)
	_, err = w.Write([]byte(sample))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	ds, err := Load(path, quiet())
	require.NoError(t, err)
	assert.Equal(t, 3, ds.X.Rows)

	s := ds.Describe()
	assert.Equal(t, 3, s.Instances)
	assert.Equal(t, 4, s.NNZ)
	assert.Equal(t, 1, s.EmptyRows)
	assert.Equal(t, 0, s.UnusedLabels)
	assert.InDelta(t, 1.0, s.LabelsPerRow, 1e-12)
}

func TestReadLabelFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "labels.txt")
	require.NoError(t, os.WriteFile(path, []byte("alpha\nbeta\n\ngamma\n"), 0o644))

	names, err := ReadLabelFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, names)

	dup := filepath.Join(dir, "dup.txt")
	require.NoError(t, os.WriteFile(dup, []byte("a\na\n"), 0o644))
	_, err = ReadLabelFile(dup)
	assert.Error(t, err)
}
