// Package tree implements label trees: hierarchical partitions of the label
// set with one linear classifier per node, queried by beam search.
package tree

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/xlinear/pkg/errors"
)

// Node is one node of a label tree. Internal nodes route to Children, given
// as indices into the tree's node slice, and hold one weight column per
// child. Leaves own Labels and hold one weight column per label.
type Node struct {
	ID       int
	Children []int
	Labels   []int
	Weights  *mat.Dense
	Depth    int
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// fanout returns the number of weight columns the node must carry.
func (n *Node) fanout() int {
	if n.IsLeaf() {
		return len(n.Labels)
	}
	return len(n.Children)
}

// Tree is an immutable label tree rooted at Nodes[0]. It is safe for
// concurrent use.
type Tree struct {
	Nodes       []Node
	NumLabels   int
	NumFeatures int

	depth     int
	maxBranch int
	maxLeaf   int
	width     int
	numLeaves int
}

// New validates nodes and builds a tree over numLabels labels and
// numFeatures features. Node depths are recomputed from the root.
func New(nodes []Node, numLabels, numFeatures int) (*Tree, error) {
	t := &Tree{Nodes: nodes, NumLabels: numLabels, NumFeatures: numFeatures}
	if err := t.init(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tree) init() error {
	const op = "tree.New"
	if len(t.Nodes) == 0 {
		return errors.NewModelError(op, "tree has no nodes", errors.ErrEmptyData)
	}
	if t.NumLabels <= 0 || t.NumFeatures <= 0 {
		return errors.NewValidationError("shape", "labels and features must be positive", [2]int{t.NumLabels, t.NumFeatures})
	}

	parent := make([]int, len(t.Nodes))
	for i := range parent {
		parent[i] = -1
	}
	owner := make([]int, t.NumLabels)
	for i := range owner {
		owner[i] = -1
	}

	for i := range t.Nodes {
		n := &t.Nodes[i]
		if n.Weights == nil {
			return errors.NewDataErrorf(op, "node %d has no weights", n.ID)
		}
		r, c := n.Weights.Dims()
		if r != t.NumFeatures {
			return errors.NewDimensionError(op, t.NumFeatures, r, 0)
		}
		if c != n.fanout() {
			return errors.NewDimensionError(op, n.fanout(), c, 1)
		}
		if n.IsLeaf() {
			if len(n.Labels) == 0 {
				return errors.NewDataErrorf(op, "leaf %d owns no labels", n.ID)
			}
			for _, l := range n.Labels {
				if l < 0 || l >= t.NumLabels {
					return errors.NewDataErrorf(op, "leaf %d: label %d outside [0, %d)", n.ID, l, t.NumLabels)
				}
				if owner[l] >= 0 {
					return errors.NewDataErrorf(op, "label %d owned by leaves %d and %d", l, t.Nodes[owner[l]].ID, n.ID)
				}
				owner[l] = i
			}
			continue
		}
		if len(n.Labels) != 0 {
			return errors.NewDataErrorf(op, "internal node %d owns labels", n.ID)
		}
		for _, c := range n.Children {
			if c <= 0 || c >= len(t.Nodes) {
				return errors.NewDataErrorf(op, "node %d: child index %d outside [1, %d)", n.ID, c, len(t.Nodes))
			}
			if parent[c] >= 0 {
				return errors.NewDataErrorf(op, "node %d has two parents", t.Nodes[c].ID)
			}
			parent[c] = i
		}
	}
	for l, o := range owner {
		if o < 0 {
			return errors.NewDataErrorf(op, "label %d is owned by no leaf", l)
		}
	}

	// breadth-first from the root; every node must be reached exactly once
	t.depth, t.maxBranch, t.maxLeaf, t.width, t.numLeaves = 0, 0, 0, 0, 0
	level := []int{0}
	t.Nodes[0].Depth = 0
	visited, carried := 0, 0
	for len(level) > 0 {
		t.depth++
		// leaves from shallower levels stay in the beam
		t.width = max(t.width, len(level)+carried)
		var next []int
		for _, i := range level {
			visited++
			n := &t.Nodes[i]
			if n.IsLeaf() {
				carried++
				t.numLeaves++
				t.maxLeaf = max(t.maxLeaf, len(n.Labels))
				continue
			}
			t.maxBranch = max(t.maxBranch, len(n.Children))
			for _, c := range n.Children {
				t.Nodes[c].Depth = n.Depth + 1
				next = append(next, c)
			}
		}
		level = next
	}
	if visited != len(t.Nodes) {
		return errors.NewDataErrorf(op, "%d of %d nodes unreachable from the root", len(t.Nodes)-visited, len(t.Nodes))
	}

	for i := range t.Nodes {
		r, _ := t.Nodes[i].Weights.Dims()
		for j := 0; j < r; j++ {
			if err := errors.CheckNumericalStability(op, t.Nodes[i].Weights.RawRowView(j)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Depth returns the number of levels, 1 for a single-node tree.
func (t *Tree) Depth() int { return t.depth }

// MaxBranching returns the largest number of children of any node.
func (t *Tree) MaxBranching() int { return t.maxBranch }

// Width returns the largest number of beam candidates any level can produce:
// the nodes of that level plus the leaves above it. A beam at least this wide
// never prunes.
func (t *Tree) Width() int { return t.width }

// NumNodes returns the number of nodes.
func (t *Tree) NumNodes() int { return len(t.Nodes) }

// NumLeaves returns the number of leaves.
func (t *Tree) NumLeaves() int { return t.numLeaves }

// Reindex recomputes derived statistics after the exported fields have been
// populated directly, e.g. by a decoder.
func (t *Tree) Reindex() error {
	return t.init()
}
