// Package metrics accumulates multi-label ranking and classification metrics
// over a stream of score batches.
//
// Every metric is a ratio of sums over instances or labels. Update only adds
// to those sums and Compute divides once at the end, so results do not depend
// on how the data was split into batches.
package metrics

import (
	"strconv"
	"strings"

	"github.com/YuminosukeSato/xlinear/pkg/errors"
)

// Kind identifies a metric family.
type Kind int

const (
	PrecisionAtK Kind = iota
	RPrecisionAtK
	NDCGAtK
	MicroF1
	MacroF1
	MicroPrecision
	MicroRecall
	// AnotherMacroF1 is the F1 of macro-averaged precision and recall.
	AnotherMacroF1
)

// Metric is a parsed metric name such as "P@5" or "Micro-F1".
type Metric struct {
	Name string
	Kind Kind
	K    int
}

var fixedMetrics = map[string]Kind{
	"Micro-F1":         MicroF1,
	"Macro-F1":         MacroF1,
	"Micro-Precision":  MicroPrecision,
	"Micro-Recall":     MicroRecall,
	"Another-Macro-F1": AnotherMacroF1,
}

var rankedPrefixes = map[string]Kind{
	"P":    PrecisionAtK,
	"RP":   RPrecisionAtK,
	"nDCG": NDCGAtK,
}

// Parse resolves a metric name.
func Parse(name string) (Metric, error) {
	if kind, ok := fixedMetrics[name]; ok {
		return Metric{Name: name, Kind: kind}, nil
	}
	prefix, kStr, ok := strings.Cut(name, "@")
	if ok {
		if kind, known := rankedPrefixes[prefix]; known {
			k, err := strconv.Atoi(kStr)
			if err == nil && k > 0 {
				return Metric{Name: name, Kind: kind, K: k}, nil
			}
		}
	}
	return Metric{}, errors.NewValidationError("monitor_metrics",
		"expected P@k, RP@k, nDCG@k, Micro-F1, Macro-F1, Another-Macro-F1, Micro-Precision or Micro-Recall", name)
}

// ranked reports whether the metric looks at the top-K of each instance.
func (m Metric) ranked() bool {
	return m.Kind == PrecisionAtK || m.Kind == RPrecisionAtK || m.Kind == NDCGAtK
}
