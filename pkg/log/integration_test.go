package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	xerrors "github.com/YuminosukeSato/xlinear/pkg/errors"
)

func TestTestLoggerLevels(t *testing.T) {
	testLogger, buffer := NewTestLogger(LevelInfo)

	testLogger.Debug("hidden")
	testLogger.Info("evaluation started", SamplesKey, 1000, BatchSizeKey, 256)
	testLogger.Warn("beam width exceeds branching", BeamWidthKey, 64)
	testLogger.Error("batch failed", fmt.Errorf("boom"), PredsBatchKey, 3)

	assert.NotEmpty(t, buffer.String())
	assert.False(t, testLogger.ContainsMessage("hidden"))
	assert.True(t, testLogger.ContainsMessage("evaluation started"))
	assert.True(t, testLogger.ContainsField(SamplesKey, 1000.0))
	assert.True(t, testLogger.ContainsField(ErrAttrKey, "boom"))
	assert.True(t, testLogger.ContainsField(PredsBatchKey, 3.0))

	ctx := context.Background()
	assert.True(t, testLogger.Enabled(ctx, LevelError))
	assert.False(t, testLogger.Enabled(ctx, LevelDebug))
}

func TestTestLoggerWith(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelDebug)
	child := testLogger.With(ModelNameKey, "tree", BeamWidthKey, 10)
	child.Info("predict", OperationKey, OperationPredict)

	entries, err := testLogger.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "tree", entries[0][ModelNameKey])
	assert.Equal(t, 10.0, entries[0][BeamWidthKey])
	assert.Equal(t, OperationPredict, entries[0][OperationKey])

	testLogger.Clear()
	assert.False(t, testLogger.ContainsMessage("predict"))
}

func TestZerologProvider(t *testing.T) {
	var buf bytes.Buffer
	p := NewZerologProvider(&buf, LevelInfo)

	logger := p.GetLoggerWithName("predict").With(ModelNameKey, "tree_ensemble")
	logger.Debug("not emitted")
	logger.Info("batch done", PredsBatchKey, 2, PredsKey, 7)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "batch done", entry["message"])
	assert.Equal(t, "predict", entry[ComponentKey])
	assert.Equal(t, "tree_ensemble", entry[ModelNameKey])
	assert.Equal(t, 2.0, entry[PredsBatchKey])

	p.SetLevel(LevelDebug)
	assert.True(t, logger.Enabled(context.Background(), LevelDebug))
}

func TestZerologProviderErrorDetails(t *testing.T) {
	var buf bytes.Buffer
	p := NewZerologProvider(&buf, LevelDebug)

	err := xerrors.NewDimensionError("linear.Score", 4, 5, 1)
	p.GetLogger().Error("scoring failed", err, PredsBatchKey, 0)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Contains(t, entry[ErrAttrKey], "dimension mismatch")

	detail, ok := entry["error.detail"].(map[string]interface{})
	require.True(t, ok, "typed errors are marshaled as objects")
	assert.Equal(t, "DimensionError", detail["type"])
}

func TestSetupLogger(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SetupLogger("warn", &buf))
	defer func() {
		xerrors.SetZerologWarnFunc(nil)
		SetProvider(NewZerologProvider(&bytes.Buffer{}, LevelInfo))
	}()

	GetLoggerWithName("metrics").Info("suppressed")
	xerrors.Warn(xerrors.NewUndefinedMetricWarning("P@1", "no instances", 0))

	out := buf.String()
	assert.NotContains(t, out, "suppressed")
	assert.Contains(t, out, "UndefinedMetricWarning")

	assert.Error(t, SetupLogger("verbose", &buf))
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]Level{"debug": LevelDebug, "": LevelInfo, "warning": LevelWarn, "error": LevelError} {
		got, ok := ParseLevel(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParseLevel("trace")
	assert.False(t, ok)
	assert.Equal(t, "WARN", LevelWarn.String())
}
