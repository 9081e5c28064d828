// Package dataset reads multi-label LIBSVM files into the sparse matrices
// consumed by the predictor.
//
// Each line holds comma separated labels, a space, then 1-based
// index:value feature pairs in increasing index order:
//
//	3,17 1:0.5 10:1.25 42:1
package dataset

import (
	"bufio"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/xlinear/core/fileio"
	"github.com/YuminosukeSato/xlinear/core/sparse"
	"github.com/YuminosukeSato/xlinear/pkg/errors"
	"github.com/YuminosukeSato/xlinear/pkg/log"
)

// Dataset is a loaded split.
type Dataset struct {
	X *sparse.CSR
	Y *sparse.LabelMatrix
	// Labels maps label ids to names; nil when labels are numeric ids.
	Labels []string
	// Skipped counts rows removed because they had no known label.
	Skipped int
	// UnknownLabels counts label occurrences outside the label mapping.
	UnknownLabels int
}

type readConfig struct {
	numFeatures   int
	numLabels     int
	labels        []string
	removeNoLabel bool
	logger        log.Logger
}

// Option configures ReadSVM.
type Option func(*readConfig)

// WithNumFeatures fixes the feature width; wider rows are rejected.
func WithNumFeatures(d int) Option {
	return func(c *readConfig) { c.numFeatures = d }
}

// WithNumLabels fixes the label space of numeric labels.
func WithNumLabels(l int) Option {
	return func(c *readConfig) { c.numLabels = l }
}

// WithLabelMapping resolves label names through names; names not in the
// mapping are dropped and counted.
func WithLabelMapping(names []string) Option {
	return func(c *readConfig) { c.labels = names }
}

// WithRemoveNoLabel drops rows left without any label.
func WithRemoveNoLabel(on bool) Option {
	return func(c *readConfig) { c.removeNoLabel = on }
}

// WithLogger sets the logger used for data warnings.
func WithLogger(l log.Logger) Option {
	return func(c *readConfig) { c.logger = l }
}

// Load opens path, decompressing by extension, and reads it.
func Load(path string, opts ...Option) (*Dataset, error) {
	r, err := fileio.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	ds, err := ReadSVM(r, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	return ds, nil
}

// ReadSVM parses a multi-label LIBSVM stream.
func ReadSVM(r io.Reader, opts ...Option) (*Dataset, error) {
	cfg := readConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = log.GetLoggerWithName("dataset")
	}

	var index map[string]int
	if cfg.labels != nil {
		index = make(map[string]int, len(cfg.labels))
		for i, name := range cfg.labels {
			index[name] = i
		}
	}

	ds := &Dataset{Labels: cfg.labels}
	b := sparse.NewBuilder(0, 0)
	var rows [][]int
	maxFeature, maxLabel := 0, -1

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 1<<16), 1<<26)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		labelField, featField, _ := strings.Cut(line, " ")
		if strings.Contains(labelField, ":") {
			// no labels, features only
			labelField, featField = "", line
		}

		var labels []int
		for _, tok := range strings.Split(labelField, ",") {
			if tok == "" {
				continue
			}
			if index != nil {
				id, ok := index[tok]
				if !ok {
					ds.UnknownLabels++
					continue
				}
				labels = append(labels, id)
				continue
			}
			id, err := strconv.Atoi(tok)
			if err != nil || id < 0 {
				return nil, errors.NewDataErrorf("dataset.ReadSVM", "line %d: label %q is not a non-negative integer", lineNo, tok)
			}
			labels = append(labels, id)
			maxLabel = max(maxLabel, id)
		}
		if len(labels) == 0 && cfg.removeNoLabel {
			ds.Skipped++
			continue
		}

		prev := 0
		for _, tok := range strings.Fields(featField) {
			idxStr, valStr, ok := strings.Cut(tok, ":")
			if !ok {
				return nil, errors.NewDataErrorf("dataset.ReadSVM", "line %d: feature %q is not index:value", lineNo, tok)
			}
			idx, err := strconv.Atoi(idxStr)
			if err != nil || idx <= prev {
				return nil, errors.NewDataErrorf("dataset.ReadSVM", "line %d: feature index %q must be increasing and start at 1", lineNo, idxStr)
			}
			val, err := strconv.ParseFloat(valStr, 64)
			if err != nil {
				return nil, errors.NewDataErrorf("dataset.ReadSVM", "line %d: value %q is not a number", lineNo, valStr)
			}
			prev = idx
			b.Push(idx-1, val)
		}
		b.EndRow()
		maxFeature = max(maxFeature, prev)
		slices.Sort(labels)
		rows = append(rows, slices.Compact(labels))
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "read svm data")
	}

	x := b.Build()
	x.Cols = maxFeature
	if cfg.numFeatures > 0 {
		if maxFeature > cfg.numFeatures {
			return nil, errors.NewDimensionError("dataset.ReadSVM", cfg.numFeatures, maxFeature, 1)
		}
		x.Cols = cfg.numFeatures
	}

	numLabels := maxLabel + 1
	switch {
	case cfg.labels != nil:
		numLabels = len(cfg.labels)
	case cfg.numLabels > 0:
		if maxLabel >= cfg.numLabels {
			return nil, errors.NewDimensionError("dataset.ReadSVM", cfg.numLabels, maxLabel+1, 1)
		}
		numLabels = cfg.numLabels
	}
	y, err := sparse.NewLabelMatrix(numLabels, rows)
	if err != nil {
		return nil, err
	}
	ds.X, ds.Y = x, y

	if ds.UnknownLabels > 0 {
		cfg.logger.Warn("Labels outside the label mapping were dropped", log.LabelsKey, ds.UnknownLabels)
	}
	if ds.Skipped > 0 {
		cfg.logger.Warn("Rows without labels were removed", log.SamplesKey, ds.Skipped)
	}
	return ds, nil
}

// ReadLabelFile reads one label name per line.
func ReadLabelFile(path string) ([]string, error) {
	r, err := fileio.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var names []string
	seen := map[string]bool{}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		name := strings.TrimSpace(sc.Text())
		if name == "" {
			continue
		}
		if seen[name] {
			return nil, errors.NewDataErrorf("dataset.ReadLabelFile", "duplicate label %q", name)
		}
		seen[name] = true
		names = append(names, name)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return names, nil
}
