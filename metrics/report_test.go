package metrics

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTabulate(t *testing.T) {
	out := Tabulate(map[string]float64{"P@1": 0.5, "Micro-F1": 0.123456}, "test", "P@1", "Micro-F1", "P@5")

	assert.Contains(t, out, "test metrics")
	assert.Contains(t, out, "P@1")
	assert.Contains(t, out, "50.0000")
	assert.Contains(t, out, "12.3456")
	assert.Contains(t, out, "-")
	assert.Less(t, strings.Index(out, "P@1"), strings.Index(out, "Micro-F1"))
}

func TestTabulateSortsWhenNoNamesGiven(t *testing.T) {
	out := Tabulate(map[string]float64{"beta": 0, "alpha": 0}, "val")
	assert.Less(t, strings.Index(out, "alpha"), strings.Index(out, "beta"))
}

func TestDumpLogAppendsLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "test_log.json")

	require.NoError(t, DumpLog(path, LogRecord{Split: "test", Metrics: map[string]float64{"P@1": 0.5}}))
	require.NoError(t, DumpLog(path, LogRecord{
		Split:   "test",
		Metrics: map[string]float64{"P@1": 0.75},
		Config:  map[string]any{"beam_width": 10},
	}))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []map[string]any
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var obj map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &obj))
		lines = append(lines, obj)
	}
	require.NoError(t, sc.Err())
	require.Len(t, lines, 2)
	assert.Equal(t, 0.5, lines[0]["P@1"])
	assert.Equal(t, "test", lines[0]["split"])
	assert.NotContains(t, lines[0], "config")
	assert.Equal(t, 0.75, lines[1]["P@1"])
	assert.Contains(t, lines[1], "config")
}
