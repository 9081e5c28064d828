package model

import (
	"encoding/json"
)

// Summary はモデルの概要（inspectコマンド用）
type Summary struct {
	// Name はモデル名（任意）
	Name string `json:"name,omitempty"`

	// Technique は学習手法
	Technique Technique `json:"technique"`

	// Kind はモデルの種類（flat, tree, ensemble）
	Kind string `json:"kind"`

	NumLabels   int `json:"num_labels"`
	NumFeatures int `json:"num_features"`

	// 木モデルのみ
	NumTrees     int     `json:"num_trees,omitempty"`
	NumNodes     int     `json:"num_nodes,omitempty"`
	MaxDepth     int     `json:"max_depth,omitempty"`
	MaxBranching int     `json:"max_branching,omitempty"`
	Seeds        []int64 `json:"seeds,omitempty"`

	// フラットモデルのみ
	Bias         float64 `json:"bias,omitempty"`
	HasThreshold bool    `json:"has_threshold,omitempty"`
}

// Summarize はモデルの概要を作成する
func (m *Model) Summarize() Summary {
	s := Summary{
		Name:        m.Name,
		Technique:   m.Technique,
		Kind:        m.Kind().String(),
		NumLabels:   m.NumLabels(),
		NumFeatures: m.NumFeatures(),
	}
	switch {
	case m.Flat != nil:
		s.Bias = m.Flat.Bias
		s.HasThreshold = m.Flat.Threshold != nil
	case m.Tree != nil:
		s.NumTrees = 1
		s.NumNodes = m.Tree.NumNodes()
		s.MaxDepth = m.Tree.Depth()
		s.MaxBranching = m.Tree.MaxBranching()
	case m.Ensemble != nil:
		s.NumTrees = len(m.Ensemble.Trees)
		s.Seeds = m.Ensemble.Seeds
		for _, t := range m.Ensemble.Trees {
			s.NumNodes += t.NumNodes()
			s.MaxDepth = max(s.MaxDepth, t.Depth())
			s.MaxBranching = max(s.MaxBranching, t.MaxBranching())
		}
	}
	return s
}

// ToJSON はSummaryをJSON形式にシリアライズ
func (s Summary) ToJSON() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}
