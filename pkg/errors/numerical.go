package errors

import (
	"math"
)

// CheckNumericalStability checks if values contain NaN or Inf
// and returns an error if numerical instability is detected.
func CheckNumericalStability(operation string, values []float64) error {
	var bad []float64
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			bad = append(bad, v)
			if len(bad) >= 5 {
				break
			}
		}
	}
	if len(bad) > 0 {
		return NewValueError(operation, formatUnstable(bad))
	}
	return nil
}

func formatUnstable(values []float64) string {
	msg := "non-finite values detected: ["
	for i, v := range values {
		if i > 0 {
			msg += ", "
		}
		msg += formatFloat(v)
	}
	return msg + "]"
}

func formatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	}
	return "finite"
}

// SafeDivide performs division with protection against division by zero.
// Returns 0 if denominator is zero.
func SafeDivide(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}
