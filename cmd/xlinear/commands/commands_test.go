package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/xlinear/core/fileio"
	"github.com/YuminosukeSato/xlinear/core/model"
	"github.com/YuminosukeSato/xlinear/linear"
)

// writeFixture saves a 2-feature, 3-label flat model and a matching test set.
func writeFixture(t *testing.T) (dir, checkpoint, testFile string) {
	t.Helper()
	dir = t.TempDir()

	w := mat.NewDense(2, 3, []float64{
		1, 0, -1,
		0, 1, -1,
	})
	flat, err := linear.NewFlatModel(w)
	require.NoError(t, err)
	m, err := model.NewFlat(model.OneVsRest, flat)
	require.NoError(t, err)

	checkpoint = filepath.Join(dir, "model.gob")
	require.NoError(t, model.Save(m, checkpoint))

	testFile = filepath.Join(dir, "test.svm")
	require.NoError(t, os.WriteFile(testFile, []byte("0 1:1\n1 2:1\n"), 0o644))
	return dir, checkpoint, testFile
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestPredictCommand(t *testing.T) {
	dir, checkpoint, testFile := writeFixture(t)
	predOut := filepath.Join(dir, "out", "pred.txt.zst")
	logPath := filepath.Join(dir, "logs.json")

	stdout, err := execute(t, "predict",
		"--checkpoint", checkpoint,
		"--test-file", testFile,
		"--save-k", "2",
		"--out", predOut,
		"--log-path", logPath,
		"--metrics", "P@1,Micro-F1",
		"--log-level", "error",
	)
	require.NoError(t, err)
	assert.Contains(t, stdout, "====== test metrics ======")
	assert.Contains(t, stdout, "100.0000")

	r, err := fileio.Open(predOut)
	require.NoError(t, err)
	var pred bytes.Buffer
	_, err = pred.ReadFrom(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.Equal(t, "0:1 1:0\n1:1 0:0\n", pred.String())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	var rec map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &rec))
	assert.Equal(t, "test", rec["split"])
	assert.InDelta(t, 1.0, rec["P@1"], 1e-12)
	assert.Contains(t, rec, "config")
}

func TestPredictCommandConfigFile(t *testing.T) {
	dir, checkpoint, testFile := writeFixture(t)
	predOut := filepath.Join(dir, "pred.txt")
	cfgPath := filepath.Join(dir, "eval.yml")
	cfg := strings.Join([]string{
		"checkpoint_path: " + checkpoint,
		"test_file: " + testFile,
		"predict_out_path: " + predOut,
		"save_positive_predictions: true",
		"eval_batch_size: 1",
		"monitor_metrics: [P@1]",
		"log_level: error",
	}, "\n")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	_, err := execute(t, "predict", "-c", cfgPath)
	require.NoError(t, err)

	got, err := os.ReadFile(predOut)
	require.NoError(t, err)
	assert.Equal(t, "0:1\n1:1\n", string(got))
}

func TestPredictCommandRejectsInvalidConfig(t *testing.T) {
	dir, checkpoint, testFile := writeFixture(t)
	tests := []struct {
		name string
		args []string
	}{
		{"both output modes", []string{"--save-k", "2", "--save-positive", "--out", filepath.Join(dir, "p.txt")}},
		{"output without path", []string{"--save-k", "1"}},
		{"k beyond label count", []string{"--save-k", "4", "--out", filepath.Join(dir, "p.txt")}},
		{"unknown metric", []string{"--metrics", "P@x"}},
		{"technique mismatch", []string{"--technique", "tree"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"predict",
				"--checkpoint", checkpoint, "--test-file", testFile, "--log-level", "error"}, tt.args...)
			_, err := execute(t, args...)
			assert.Error(t, err)
		})
	}

	_, err := execute(t, "predict", "--test-file", testFile)
	assert.Error(t, err, "checkpoint is required")
}

func TestInspectCommands(t *testing.T) {
	_, checkpoint, testFile := writeFixture(t)

	stdout, err := execute(t, "inspect", "model", checkpoint)
	require.NoError(t, err)
	var summary model.Summary
	require.NoError(t, json.Unmarshal([]byte(stdout), &summary))
	assert.Equal(t, model.OneVsRest, summary.Technique)
	assert.Equal(t, 3, summary.NumLabels)
	assert.Equal(t, 2, summary.NumFeatures)

	stdout, err = execute(t, "inspect", "data", "--head", "1", testFile)
	require.NoError(t, err)
	lines := strings.SplitN(stdout, "\n", 2)
	assert.Equal(t, "0 1:1", lines[0])
	assert.Contains(t, lines[1], `"instances": 2`)

	_, err = execute(t, "inspect", "model", filepath.Join(t.TempDir(), "missing.gob"))
	assert.Error(t, err)
}

func TestPlotCommand(t *testing.T) {
	run := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(run, "train_log.json"),
		[]byte("{\"train_loss_epoch\": 0.9}\n{\"train_loss_epoch\": 0.5}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(run, "val_log.json"),
		[]byte("{\"Loss\": 1.0, \"Micro-F1\": 0.3, \"RP@5\": 0.2}\n{\"Loss\": 0.8, \"Micro-F1\": 0.4, \"RP@5\": 0.3}\n"), 0o644))
	outDir := filepath.Join(t.TempDir(), "plots")

	stdout, err := execute(t, "plot", "--log-dirs", run, "--names", "adam", "--output-dir", outDir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "micro_f1.png")
	_, err = os.Stat(filepath.Join(outDir, "rp_at_5.png"))
	assert.NoError(t, err)

	_, err = execute(t, "plot", "--log-dirs", run, "--names", "a,b")
	assert.Error(t, err)
}
