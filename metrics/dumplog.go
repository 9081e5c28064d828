package metrics

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/YuminosukeSato/xlinear/pkg/errors"
)

// LogRecord is one line of a metric log.
type LogRecord struct {
	Split   string
	Time    time.Time
	Metrics map[string]float64
	Config  map[string]any
}

// MarshalJSON flattens metrics into the top-level object so each line reads
// like {"split": "test", "P@1": 0.8, ...}.
func (r LogRecord) MarshalJSON() ([]byte, error) {
	obj := make(map[string]any, len(r.Metrics)+3)
	for k, v := range r.Metrics {
		obj[k] = v
	}
	obj["split"] = r.Split
	obj["time"] = r.Time.UTC().Format(time.RFC3339)
	if len(r.Config) > 0 {
		obj["config"] = r.Config
	}
	return json.Marshal(obj)
}

// DumpLog appends record to the JSON-lines file at path, creating it and its
// directory when missing.
func DumpLog(path string, record LogRecord) error {
	if record.Time.IsZero() {
		record.Time = time.Now()
	}
	line, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "failed to encode metric log")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "failed to create log directory %s", dir)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrapf(err, "failed to open metric log %s", path)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		_ = f.Close()
		return errors.Wrap(err, "failed to write metric log")
	}
	return errors.Wrap(f.Close(), "failed to close metric log")
}
