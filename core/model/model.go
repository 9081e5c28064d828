// Package model defines the trained model handed to the predictor: a tagged
// choice between a flat linear model, a single label tree and a tree
// ensemble, plus its checkpoint persistence.
package model

import (
	"context"
	"slices"

	"github.com/YuminosukeSato/xlinear/core/sparse"
	"github.com/YuminosukeSato/xlinear/ensemble"
	"github.com/YuminosukeSato/xlinear/linear"
	"github.com/YuminosukeSato/xlinear/pkg/errors"
	"github.com/YuminosukeSato/xlinear/tree"
)

// Technique は学習手法の名前（設定ファイルの linear_technique）
type Technique string

const (
	OneVsRest           Technique = "1vsrest"
	Thresholding        Technique = "thresholding"
	CostSensitive       Technique = "cost_sensitive"
	CostSensitiveMicro  Technique = "cost_sensitive_micro"
	BinaryAndMulticlass Technique = "binary_and_multiclass"
	TreeTechnique       Technique = "tree"
	TreeEnsemble        Technique = "tree_ensemble"
)

// Kind is the model variant a technique produces.
type Kind int

const (
	KindFlat Kind = iota
	KindTree
	KindEnsemble
)

func (k Kind) String() string {
	switch k {
	case KindFlat:
		return "flat"
	case KindTree:
		return "tree"
	case KindEnsemble:
		return "ensemble"
	}
	return "unknown"
}

var techniqueKinds = map[Technique]Kind{
	OneVsRest:           KindFlat,
	Thresholding:        KindFlat,
	CostSensitive:       KindFlat,
	CostSensitiveMicro:  KindFlat,
	BinaryAndMulticlass: KindFlat,
	TreeTechnique:       KindTree,
	TreeEnsemble:        KindEnsemble,
}

// Techniques returns every known technique name, sorted.
func Techniques() []string {
	out := make([]string, 0, len(techniqueKinds))
	for t := range techniqueKinds {
		out = append(out, string(t))
	}
	slices.Sort(out)
	return out
}

// Kind resolves the technique to its model variant.
func (t Technique) Kind() (Kind, error) {
	k, ok := techniqueKinds[t]
	if !ok {
		return 0, errors.NewConfigError("unknown technique "+string(t), errors.ErrUnknownTechnique, "linear_technique")
	}
	return k, nil
}

// Model is the tagged model variant. Exactly the field matching the kind of
// Technique is set.
type Model struct {
	Name      string
	Technique Technique
	Flat      *linear.FlatModel
	Tree      *tree.Tree
	Ensemble  *ensemble.Ensemble
}

// NewFlat wraps a flat model.
func NewFlat(technique Technique, m *linear.FlatModel) (*Model, error) {
	return newModel(&Model{Technique: technique, Flat: m})
}

// NewTree wraps a single tree.
func NewTree(t *tree.Tree) (*Model, error) {
	return newModel(&Model{Technique: TreeTechnique, Tree: t})
}

// NewEnsemble wraps a tree ensemble.
func NewEnsemble(e *ensemble.Ensemble) (*Model, error) {
	return newModel(&Model{Technique: TreeEnsemble, Ensemble: e})
}

func newModel(m *Model) (*Model, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks that the payload matches the technique.
func (m *Model) Validate() error {
	kind, err := m.Technique.Kind()
	if err != nil {
		return err
	}
	set := 0
	for _, ok := range []bool{m.Flat != nil, m.Tree != nil, m.Ensemble != nil} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return errors.NewModelError("Model.Validate", "model must hold exactly one variant", nil)
	}

	var payloadOK bool
	switch kind {
	case KindFlat:
		payloadOK = m.Flat != nil
	case KindTree:
		payloadOK = m.Tree != nil
	case KindEnsemble:
		payloadOK = m.Ensemble != nil
	}
	if !payloadOK {
		return errors.NewModelError("Model.Validate",
			"technique "+string(m.Technique)+" requires a "+kind.String()+" model", nil)
	}
	return nil
}

// Kind returns the variant tag. The technique must be valid.
func (m *Model) Kind() Kind {
	k, _ := m.Technique.Kind()
	return k
}

// IsTree reports whether the model is searched by beam search.
func (m *Model) IsTree() bool {
	return m.Tree != nil || m.Ensemble != nil
}

// Multiclass reports whether predictions are single-label.
func (m *Model) Multiclass() bool {
	return m.Technique == BinaryAndMulticlass
}

// NumLabels returns the label space size.
func (m *Model) NumLabels() int {
	switch {
	case m.Flat != nil:
		return m.Flat.NumLabels()
	case m.Tree != nil:
		return m.Tree.NumLabels
	case m.Ensemble != nil:
		return m.Ensemble.NumLabels()
	}
	return 0
}

// NumFeatures returns the expected instance width.
func (m *Model) NumFeatures() int {
	switch {
	case m.Flat != nil:
		return m.Flat.NumFeatures()
	case m.Tree != nil:
		return m.Tree.NumFeatures
	case m.Ensemble != nil:
		return m.Ensemble.NumFeatures()
	}
	return 0
}

// PredictValues scores a batch with whichever variant the model holds. Flat
// models only honor tree.WithWorkers. The model is read-only here, so one
// Model may serve concurrent calls with different options.
func (m *Model) PredictValues(ctx context.Context, x *sparse.CSR, opts ...tree.Option) (*sparse.CSR, error) {
	kind, err := m.Technique.Kind()
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindFlat:
		return m.Flat.PredictValues(x, linear.WithWorkers(tree.WorkersOf(opts...)))
	case KindTree:
		return m.Tree.PredictValues(x, opts...)
	default:
		return m.Ensemble.PredictValues(ctx, x, opts...)
	}
}
