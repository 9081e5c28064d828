package errors

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewModelError(t *testing.T) {
	tests := []struct {
		name    string
		op      string
		kind    string
		err     error
		wantMsg string
	}{
		{
			name:    "with original error",
			op:      "Tree.PredictValues",
			kind:    "node scoring failed",
			err:     fmt.Errorf("test error"),
			wantMsg: "xlinear: Tree.PredictValues: node scoring failed: test error",
		},
		{
			name:    "without original error",
			op:      "Ensemble.PredictValues",
			kind:    "no members",
			wantMsg: "xlinear: Ensemble.PredictValues: no members",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewModelError(tt.op, tt.kind, tt.err)
			assert.Equal(t, tt.wantMsg, err.Error())

			// スタックトレースの存在確認
			formatted := fmt.Sprintf("%+v", err)
			assert.True(t, strings.Contains(formatted, "errors_test.go"), "stack trace should mention the test file")

			var modelErr *ModelError
			assert.True(t, As(err, &modelErr))
		})
	}
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("linear.Score", 10, 12, 1)
	assert.Equal(t, "xlinear: linear.Score: dimension mismatch on axis 1 (columns). Expected 10, got 12", err.Error())

	var dimErr *DimensionError
	require.True(t, As(err, &dimErr))
	assert.Equal(t, 10, dimErr.Expected)
	assert.Equal(t, 12, dimErr.Got)
}

func TestNewConfigError(t *testing.T) {
	err := NewConfigError("top-k and positive-only outputs cannot both be enabled",
		ErrMutuallyExclusive, "save_k_predictions", "save_positive_predictions")

	assert.True(t, Is(err, ErrMutuallyExclusive))
	assert.Contains(t, err.Error(), "save_k_predictions")

	var cfgErr *ConfigError
	require.True(t, As(err, &cfgErr))
	assert.Equal(t, []string{"save_k_predictions", "save_positive_predictions"}, cfgErr.Options)
}

func TestNewDataErrorf(t *testing.T) {
	err := NewDataErrorf("CSR.Validate", "indptr has %d entries, want %d", 3, 5)
	assert.Equal(t, "xlinear: CSR.Validate: malformed data: indptr has 3 entries, want 5", err.Error())

	var dataErr *DataError
	assert.True(t, As(err, &dataErr))
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("beam_width", "must be positive", 0)
	assert.Equal(t, "xlinear: validation failed for parameter 'beam_width': must be positive (got: 0)", err.Error())
}

func TestWarn(t *testing.T) {
	var got []error
	SetWarningHandler(func(w error) { got = append(got, w) })
	defer SetWarningHandler(func(w error) {})

	Warn(NewUndefinedMetricWarning("P@1", "no instances", 0))
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Error(), "'P@1' is ill-defined")

	var zl []error
	SetZerologWarnFunc(func(w error) { zl = append(zl, w) })
	defer SetZerologWarnFunc(nil)
	Warn(NewUndefinedMetricWarning("Micro-F1", "no instances", 0))
	assert.Len(t, zl, 1)
	assert.Len(t, got, 1, "zerolog hook takes precedence over the plain handler")
}

func TestCheckNumericalStability(t *testing.T) {
	assert.NoError(t, CheckNumericalStability("weights", []float64{1, -2, 0}))

	err := CheckNumericalStability("weights", []float64{1, math.NaN(), math.Inf(1)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NaN")
	assert.Contains(t, err.Error(), "+Inf")
}

func TestSafeDivide(t *testing.T) {
	assert.Equal(t, 0.0, SafeDivide(3, 0))
	assert.Equal(t, 1.5, SafeDivide(3, 2))
}
