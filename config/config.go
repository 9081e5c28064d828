// Package config loads and validates the options of an evaluation run.
package config

import (
	"os"
	"runtime"

	"github.com/goccy/go-yaml"

	"github.com/YuminosukeSato/xlinear/core/model"
	"github.com/YuminosukeSato/xlinear/metrics"
	"github.com/YuminosukeSato/xlinear/output"
	"github.com/YuminosukeSato/xlinear/pkg/errors"
	"github.com/YuminosukeSato/xlinear/pkg/log"
)

// Config is the YAML configuration of a predict run.
type Config struct {
	// evaluation
	EvalBatchSize           int      `yaml:"eval_batch_size"`
	SaveKPredictions        int      `yaml:"save_k_predictions"`
	SavePositivePredictions bool     `yaml:"save_positive_predictions"`
	BeamWidth               int      `yaml:"beam_width"`
	LinearTechnique         string   `yaml:"linear_technique,omitempty"`
	MonitorMetrics          []string `yaml:"monitor_metrics"`
	NumWorkers              int      `yaml:"num_workers"`

	// files
	CheckpointPath string `yaml:"checkpoint_path"`
	TestFile       string `yaml:"test_file"`
	LabelFile      string `yaml:"label_file,omitempty"`
	PredictOutPath string `yaml:"predict_out_path,omitempty"`
	LogPath        string `yaml:"log_path,omitempty"`

	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used for keys a file leaves out.
func Default() *Config {
	return &Config{
		EvalBatchSize:  256,
		BeamWidth:      10,
		MonitorMetrics: []string{"P@1", "P@3", "P@5"},
		NumWorkers:     runtime.NumCPU(),
		LogLevel:       "info",
	}
}

// Load reads a YAML file over Default. The result is not validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return Parse(data)
}

// Parse decodes YAML over Default. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.UnmarshalWithOptions(data, cfg, yaml.Strict()); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}
	return cfg, nil
}

// Validate checks every option before any batch runs.
func (c *Config) Validate() error {
	if c.SaveKPredictions > 0 && c.SavePositivePredictions {
		return errors.NewConfigError(
			"top-k and positive-only predictions cannot both be saved; set save_k_predictions to 0 to save every positive label",
			errors.ErrMutuallyExclusive,
			"save_k_predictions", "save_positive_predictions")
	}
	if c.SaveKPredictions < 0 {
		return errors.NewValidationError("save_k_predictions", "must be non-negative", c.SaveKPredictions)
	}
	if c.EvalBatchSize <= 0 {
		return errors.NewValidationError("eval_batch_size", "must be positive", c.EvalBatchSize)
	}
	if c.BeamWidth <= 0 {
		return errors.NewValidationError("beam_width", "must be positive", c.BeamWidth)
	}
	if c.NumWorkers < 0 {
		return errors.NewValidationError("num_workers", "must be non-negative", c.NumWorkers)
	}
	if c.LinearTechnique != "" {
		if _, err := model.Technique(c.LinearTechnique).Kind(); err != nil {
			return err
		}
	}
	for _, name := range c.MonitorMetrics {
		if _, err := metrics.Parse(name); err != nil {
			return err
		}
	}
	if _, ok := log.ParseLevel(c.LogLevel); !ok {
		return errors.NewValidationError("log_level", "must be one of debug, info, warn, error", c.LogLevel)
	}
	if c.OutputPolicy().Enabled() && c.PredictOutPath == "" {
		return errors.NewConfigError("saving predictions requires predict_out_path", nil,
			"predict_out_path", "save_k_predictions", "save_positive_predictions")
	}
	return nil
}

// OutputPolicy converts the two output options into the run's single
// output policy. Call after Validate.
func (c *Config) OutputPolicy() output.Policy {
	switch {
	case c.SaveKPredictions > 0:
		return output.TopKPolicy(c.SaveKPredictions)
	case c.SavePositivePredictions:
		return output.PositivePolicy()
	}
	return output.NoOutput()
}

// ToMap returns the configuration keyed by YAML names, for metric logs.
func (c *Config) ToMap() (map[string]any, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(err, "marshal config")
	}
	out := map[string]any{}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	return out, nil
}
