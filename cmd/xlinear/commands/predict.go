package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/xlinear/config"
	"github.com/YuminosukeSato/xlinear/core/fileio"
	"github.com/YuminosukeSato/xlinear/core/model"
	"github.com/YuminosukeSato/xlinear/dataset"
	"github.com/YuminosukeSato/xlinear/metrics"
	"github.com/YuminosukeSato/xlinear/pkg/errors"
	"github.com/YuminosukeSato/xlinear/pkg/log"
	"github.com/YuminosukeSato/xlinear/predict"
)

type predictFlags struct {
	configFile string
	split      string

	checkpoint   string
	testFile     string
	labelFile    string
	out          string
	logPath      string
	logLevel     string
	technique    string
	metrics      []string
	batchSize    int
	beamWidth    int
	saveK        int
	savePositive bool
	workers      int
}

func newPredictCommand() *cobra.Command {
	f := &predictFlags{}
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Score a test set and report metrics",
		Long: `Score the test set in fixed-size batches with the checkpointed model.

Metrics are printed as a table and appended to log_path. With
save_k_predictions > 0 the top k labels of every instance are written to
predict_out_path; with save_positive_predictions every label scoring above 0
is written instead. The two output modes are mutually exclusive.

Files ending in .zst, .gz or .lz4 are compressed transparently.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return errors.SafeExecute("predict", func() error {
				return runPredict(cmd, f)
			})
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.configFile, "config", "c", "", "YAML config file")
	fl.StringVar(&f.split, "split", log.PhaseTest, "split name used in logs")
	fl.StringVar(&f.checkpoint, "checkpoint", "", "model checkpoint (checkpoint_path)")
	fl.StringVar(&f.testFile, "test-file", "", "LIBSVM test data (test_file)")
	fl.StringVar(&f.labelFile, "label-file", "", "label names, one per line (label_file)")
	fl.StringVarP(&f.out, "out", "o", "", "prediction output (predict_out_path)")
	fl.StringVar(&f.logPath, "log-path", "", "JSON-lines metric log (log_path)")
	fl.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error (log_level)")
	fl.StringVar(&f.technique, "technique", "", "expected linear technique (linear_technique)")
	fl.StringSliceVar(&f.metrics, "metrics", nil, "metrics to monitor (monitor_metrics)")
	fl.IntVar(&f.batchSize, "batch-size", 0, "instances per batch (eval_batch_size)")
	fl.IntVar(&f.beamWidth, "beam-width", 0, "beam width for tree models (beam_width)")
	fl.IntVar(&f.saveK, "save-k", 0, "save the top k predictions (save_k_predictions)")
	fl.BoolVar(&f.savePositive, "save-positive", false, "save every positive prediction (save_positive_predictions)")
	fl.IntVar(&f.workers, "workers", 0, "goroutines per batch (num_workers)")
	return cmd
}

// loadConfig reads the config file and applies the flags that were set.
func loadConfig(cmd *cobra.Command, f *predictFlags) (*config.Config, error) {
	cfg := config.Default()
	if f.configFile != "" {
		var err error
		if cfg, err = config.Load(f.configFile); err != nil {
			return nil, err
		}
	}

	changed := cmd.Flags().Changed
	if changed("checkpoint") {
		cfg.CheckpointPath = f.checkpoint
	}
	if changed("test-file") {
		cfg.TestFile = f.testFile
	}
	if changed("label-file") {
		cfg.LabelFile = f.labelFile
	}
	if changed("out") {
		cfg.PredictOutPath = f.out
	}
	if changed("log-path") {
		cfg.LogPath = f.logPath
	}
	if changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if changed("technique") {
		cfg.LinearTechnique = f.technique
	}
	if changed("metrics") {
		cfg.MonitorMetrics = f.metrics
	}
	if changed("batch-size") {
		cfg.EvalBatchSize = f.batchSize
	}
	if changed("beam-width") {
		cfg.BeamWidth = f.beamWidth
	}
	if changed("save-k") {
		cfg.SaveKPredictions = f.saveK
	}
	if changed("save-positive") {
		cfg.SavePositivePredictions = f.savePositive
	}
	if changed("workers") {
		cfg.NumWorkers = f.workers
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.CheckpointPath == "" || cfg.TestFile == "" {
		return nil, errors.NewConfigError("checkpoint_path and test_file are required", nil, "checkpoint_path", "test_file")
	}
	return cfg, nil
}

func runPredict(cmd *cobra.Command, f *predictFlags) (err error) {
	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}
	if err := log.SetupLogger(cfg.LogLevel, cmd.ErrOrStderr()); err != nil {
		return err
	}
	logger := log.GetLoggerWithName("cli")

	m, err := model.Load(cfg.CheckpointPath)
	if err != nil {
		return err
	}
	logger.Info("Model loaded",
		log.OperationKey, log.OperationLoad,
		log.PathKey, cfg.CheckpointPath,
		log.ModelNameKey, string(m.Technique),
		log.LabelsKey, m.NumLabels(),
	)

	readOpts := []dataset.Option{dataset.WithNumFeatures(m.NumFeatures())}
	var labelNames []string
	if cfg.LabelFile != "" {
		if labelNames, err = dataset.ReadLabelFile(cfg.LabelFile); err != nil {
			return err
		}
		readOpts = append(readOpts, dataset.WithLabelMapping(labelNames))
	} else {
		readOpts = append(readOpts, dataset.WithNumLabels(m.NumLabels()))
	}
	ds, err := dataset.Load(cfg.TestFile, readOpts...)
	if err != nil {
		return err
	}

	p, err := predict.New(m, predict.Options{
		BatchSize:  cfg.EvalBatchSize,
		BeamWidth:  cfg.BeamWidth,
		Workers:    cfg.NumWorkers,
		Metrics:    cfg.MonitorMetrics,
		Policy:     cfg.OutputPolicy(),
		LabelNames: labelNames,
		Technique:  cfg.LinearTechnique,
		Split:      f.split,
	})
	if err != nil {
		return err
	}

	var sink io.WriteCloser
	if cfg.OutputPolicy().Enabled() {
		if sink, err = fileio.Create(cfg.PredictOutPath); err != nil {
			return err
		}
		defer func() {
			if cerr := sink.Close(); err == nil {
				err = cerr
			}
		}()
	}

	var w io.Writer
	if sink != nil {
		w = sink
	}
	res, err := p.Run(cmd.Context(), ds.X, ds.Y, w)
	if err != nil {
		return err
	}
	if sink != nil {
		logger.Info("Saved predictions", log.PathKey, cfg.PredictOutPath, log.PredsKey, res.Lines)
	}

	if len(res.MetricNames) > 0 {
		fmt.Fprintln(cmd.OutOrStdout(), metrics.Tabulate(res.Metrics, f.split, res.MetricNames...))
	}

	if cfg.LogPath != "" {
		cfgMap, err := cfg.ToMap()
		if err != nil {
			return err
		}
		if err := metrics.DumpLog(cfg.LogPath, metrics.LogRecord{Split: f.split, Metrics: res.Metrics, Config: cfgMap}); err != nil {
			return err
		}
	}
	return nil
}
