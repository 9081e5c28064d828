package model

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/xlinear/ensemble"
	"github.com/YuminosukeSato/xlinear/linear"
	"github.com/YuminosukeSato/xlinear/pkg/errors"
	"github.com/YuminosukeSato/xlinear/testutil"
	"github.com/YuminosukeSato/xlinear/tree"
)

func TestTechniqueKind(t *testing.T) {
	tests := []struct {
		technique Technique
		want      Kind
	}{
		{OneVsRest, KindFlat},
		{Thresholding, KindFlat},
		{CostSensitive, KindFlat},
		{CostSensitiveMicro, KindFlat},
		{BinaryAndMulticlass, KindFlat},
		{TreeTechnique, KindTree},
		{TreeEnsemble, KindEnsemble},
	}
	for _, tt := range tests {
		t.Run(string(tt.technique), func(t *testing.T) {
			got, err := tt.technique.Kind()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Technique("svm").Kind()
	var cfgErr *errors.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.True(t, errors.Is(err, errors.ErrUnknownTechnique))
	assert.Len(t, Techniques(), 7)
}

func TestValidateRequiresMatchingVariant(t *testing.T) {
	rng := testutil.NewRand(1)
	tr := testutil.RandomTree(rng, 8, 3, 2)
	flat, err := linear.NewFlatModel(testutil.RandomDense(rng, 3, 8, 1))
	require.NoError(t, err)

	assert.Error(t, (&Model{Technique: TreeTechnique, Flat: flat}).Validate())
	assert.Error(t, (&Model{Technique: OneVsRest}).Validate())
	assert.Error(t, (&Model{Technique: TreeTechnique, Tree: tr, Flat: flat}).Validate())
	assert.NoError(t, (&Model{Technique: CostSensitive, Flat: flat}).Validate())
}

func TestPredictValuesDispatch(t *testing.T) {
	rng := testutil.NewRand(2)
	x := testutil.RandomCSR(rng, 6, 4, 0.5)
	t1 := testutil.RandomTree(rng, 10, 4, 3)
	t2 := testutil.RandomTree(rng, 10, 4, 3)
	flat, err := linear.NewFlatModel(testutil.RandomDense(rng, 4, 10, 1))
	require.NoError(t, err)
	ens, err := ensemble.New(t1, t2)
	require.NoError(t, err)

	ctx := context.Background()

	fm, err := NewFlat(OneVsRest, flat)
	require.NoError(t, err)
	got, err := fm.PredictValues(ctx, x, tree.WithBeamWidth(1))
	require.NoError(t, err)
	want, err := flat.PredictValues(x)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	got, err = fm.PredictValues(ctx, x, tree.WithWorkers(1))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	tm, err := NewTree(t1)
	require.NoError(t, err)
	got, err = tm.PredictValues(ctx, x, tree.WithBeamWidth(2))
	require.NoError(t, err)
	want, err = t1.PredictValues(x, tree.WithBeamWidth(2))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	em, err := NewEnsemble(ens)
	require.NoError(t, err)
	got, err = em.PredictValues(ctx, x, tree.WithBeamWidth(2))
	require.NoError(t, err)
	want, err = ens.PredictValues(ctx, x, tree.WithBeamWidth(2))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	bad := &Model{Technique: "unknown", Flat: flat}
	_, err = bad.PredictValues(ctx, x)
	var cfgErr *errors.ConfigError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	rng := testutil.NewRand(3)
	x := testutil.RandomCSR(rng, 5, 6, 0.5)

	t1 := testutil.RandomTree(rng, 20, 6, 3)
	t2 := testutil.RandomTree(rng, 20, 6, 4)
	ens, err := ensemble.New(t1, t2)
	require.NoError(t, err)
	ens.Seeds = []int64{1, 2}
	flat, err := linear.NewFlatModel(testutil.RandomDense(rng, 7, 20, 1), linear.WithBias(1))
	require.NoError(t, err)

	models := map[string]*Model{}
	models["flat"], err = NewFlat(Thresholding, flat)
	require.NoError(t, err)
	models["tree"], err = NewTree(t1)
	require.NoError(t, err)
	models["ensemble"], err = NewEnsemble(ens)
	require.NoError(t, err)

	ctx := context.Background()
	for name, m := range models {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "model.gob")
			require.NoError(t, Save(m, path))
			loaded, err := Load(path)
			require.NoError(t, err)

			assert.Equal(t, m.Summarize(), loaded.Summarize())
			want, err := m.PredictValues(ctx, x, tree.WithBeamWidth(3))
			require.NoError(t, err)
			got, err := loaded.PredictValues(ctx, x, tree.WithBeamWidth(3))
			require.NoError(t, err)
			assert.Equal(t, want.Indices, got.Indices)
			assert.Equal(t, want.Data, got.Data)
		})
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	_, err := LoadFromReader(bytes.NewBufferString("not a checkpoint"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.gob"))
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	tr, err := tree.New([]tree.Node{
		{Children: []int{1, 2}, Weights: mat.NewDense(1, 2, nil)},
		{Labels: []int{0}, Weights: mat.NewDense(1, 1, nil)},
		{Labels: []int{1}, Weights: mat.NewDense(1, 1, nil)},
	}, 2, 1)
	require.NoError(t, err)
	m, err := NewTree(tr)
	require.NoError(t, err)
	m.Name = "toy"

	s := m.Summarize()
	assert.Equal(t, "tree", s.Kind)
	assert.Equal(t, 3, s.NumNodes)
	assert.Equal(t, 2, s.MaxDepth)

	out, err := s.ToJSON()
	require.NoError(t, err)
	assert.Contains(t, string(out), `"technique": "tree"`)
}
