// Package output serializes per-instance predictions, either the top k
// labels or every positively scored label, one line per instance.
package output

import (
	"fmt"

	"github.com/YuminosukeSato/xlinear/pkg/errors"
)

// Mode selects what a prediction line contains.
type Mode int

const (
	// None writes nothing.
	None Mode = iota
	// TopK writes exactly K tokens per instance.
	TopK
	// Positive writes every label scoring above the threshold.
	Positive
)

func (m Mode) String() string {
	switch m {
	case None:
		return "none"
	case TopK:
		return "top_k"
	case Positive:
		return "positive"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Policy is the single output mode of a run together with its parameter.
// Top-k and positive output cannot both be active.
type Policy struct {
	Mode      Mode
	K         int
	Threshold float64
}

// NoOutput returns the policy that writes nothing.
func NoOutput() Policy { return Policy{Mode: None} }

// TopKPolicy returns a top-k policy.
func TopKPolicy(k int) Policy { return Policy{Mode: TopK, K: k} }

// PositivePolicy returns the score > 0 policy.
func PositivePolicy() Policy { return Policy{Mode: Positive} }

// Validate checks the policy against the label space.
func (p Policy) Validate(numLabels int) error {
	switch p.Mode {
	case None, Positive:
		return nil
	case TopK:
		if p.K <= 0 {
			return errors.NewConfigError("save_k_predictions must be positive in top-k mode", nil, "save_k_predictions")
		}
		if p.K > numLabels {
			return errors.NewConfigError(
				fmt.Sprintf("save_k_predictions=%d exceeds the %d labels of the model", p.K, numLabels),
				nil, "save_k_predictions")
		}
		return nil
	}
	return errors.NewValidationError("output_mode", "unknown mode", p.Mode)
}

// Enabled reports whether the policy writes anything.
func (p Policy) Enabled() bool {
	return p.Mode != None
}
