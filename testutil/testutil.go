// Package testutil generates deterministic random fixtures for tests:
// sparse instance matrices, label matrices and label trees.
package testutil

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/xlinear/core/sparse"
	"github.com/YuminosukeSato/xlinear/tree"
)

// NewRand returns a seeded generator.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// RandomCSR returns a rows×cols matrix where every entry is stored with the
// given probability and drawn from N(0, 1).
func RandomCSR(rng *rand.Rand, rows, cols int, density float64) *sparse.CSR {
	b := sparse.NewBuilder(cols, rows)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if rng.Float64() < density {
				b.Push(j, rng.NormFloat64())
			}
		}
		b.EndRow()
	}
	return b.Build()
}

// RandomDense returns a rows×cols matrix with N(0, scale²) entries.
func RandomDense(rng *rand.Rand, rows, cols int, scale float64) *mat.Dense {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = rng.NormFloat64() * scale
	}
	return mat.NewDense(rows, cols, data)
}

// RandomLabels returns a label matrix with between 0 and maxPerRow relevant
// labels per row.
func RandomLabels(rng *rand.Rand, rows, numLabels, maxPerRow int) *sparse.LabelMatrix {
	lists := make([][]int, rows)
	for i := range lists {
		n := rng.IntN(maxPerRow + 1)
		for k := 0; k < n; k++ {
			lists[i] = append(lists[i], rng.IntN(numLabels))
		}
	}
	m, err := sparse.NewLabelMatrix(numLabels, lists)
	if err != nil {
		panic(err)
	}
	return m
}

// RandomTree builds a tree whose internal nodes have at most branching
// children, by recursively splitting a shuffled label list. Leaves own at
// most branching labels.
func RandomTree(rng *rand.Rand, numLabels, numFeatures, branching int) *tree.Tree {
	labels := rng.Perm(numLabels)
	var nodes []tree.Node

	var build func(labels []int) int
	build = func(labels []int) int {
		id := len(nodes)
		nodes = append(nodes, tree.Node{ID: id})
		if len(labels) <= branching {
			nodes[id].Labels = labels
			nodes[id].Weights = RandomDense(rng, numFeatures, len(labels), 1)
			return id
		}
		parts := min(branching, len(labels))
		children := make([]int, 0, parts)
		for p := 0; p < parts; p++ {
			lo := p * len(labels) / parts
			hi := (p + 1) * len(labels) / parts
			children = append(children, build(labels[lo:hi]))
		}
		nodes[id].Children = children
		nodes[id].Weights = RandomDense(rng, numFeatures, len(children), 1)
		return id
	}
	build(labels)

	t, err := tree.New(nodes, numLabels, numFeatures)
	if err != nil {
		panic(err)
	}
	return t
}
