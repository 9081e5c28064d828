// Package plotting compares metric curves of several runs, reading the
// JSON-lines logs written during training and evaluation.
package plotting

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/YuminosukeSato/xlinear/pkg/errors"
)

// Log file names inside a run directory.
const (
	TrainLogFile = "train_log.json"
	ValLogFile   = "val_log.json"
)

// History holds the per-epoch series of one run.
type History struct {
	TrainLoss  []float64
	ValLoss    []float64
	ValMicroF1 []float64
	ValRP5     []float64
}

// LoadHistory reads the train and validation logs of dir. Missing files give
// empty series.
func LoadHistory(dir string) (*History, error) {
	h := &History{}

	err := readLines(filepath.Join(dir, TrainLogFile), func(rec map[string]any) {
		// older logs spell the key train_log_epoch
		if v, ok := number(rec, "train_loss_epoch"); ok {
			h.TrainLoss = append(h.TrainLoss, v)
		} else if v, ok := number(rec, "train_log_epoch"); ok {
			h.TrainLoss = append(h.TrainLoss, v)
		}
	})
	if err != nil {
		return nil, err
	}

	err = readLines(filepath.Join(dir, ValLogFile), func(rec map[string]any) {
		if v, ok := number(rec, "Loss"); ok {
			h.ValLoss = append(h.ValLoss, v)
		}
		if v, ok := number(rec, "Micro-F1"); ok {
			h.ValMicroF1 = append(h.ValMicroF1, v)
		}
		if v, ok := number(rec, "RP@5"); ok {
			h.ValRP5 = append(h.ValRP5, v)
		}
	})
	if err != nil {
		return nil, err
	}
	return h, nil
}

func readLines(path string, fn func(map[string]any)) error {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 1<<16), 1<<24)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var rec map[string]any
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			return errors.NewDataErrorf("plotting.LoadHistory", "%s:%d: %v", path, lineNo, err)
		}
		fn(rec)
	}
	return errors.Wrapf(sc.Err(), "read %s", path)
}

func number(rec map[string]any, key string) (float64, bool) {
	v, ok := rec[key].(float64)
	return v, ok
}
