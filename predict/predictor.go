// Package predict streams an instance matrix through a model in fixed-size
// batches, feeding each batch to the metric accumulator and the prediction
// writer in row order.
package predict

import (
	"context"
	"io"
	"time"

	"github.com/YuminosukeSato/xlinear/core/model"
	"github.com/YuminosukeSato/xlinear/core/sparse"
	"github.com/YuminosukeSato/xlinear/metrics"
	"github.com/YuminosukeSato/xlinear/output"
	"github.com/YuminosukeSato/xlinear/pkg/errors"
	"github.com/YuminosukeSato/xlinear/pkg/log"
	"github.com/YuminosukeSato/xlinear/tree"
)

// Options configures a run.
type Options struct {
	// BatchSize is the number of rows scored at once.
	BatchSize int
	// BeamWidth applies to tree and ensemble models.
	BeamWidth int
	// Workers bounds the goroutines used inside a batch (<= 0: all CPUs).
	Workers int
	// Metrics lists metric names; empty disables evaluation.
	Metrics []string
	// Policy selects the prediction output.
	Policy output.Policy
	// LabelNames optionally replaces label ids in the output.
	LabelNames []string
	// Technique, when set, must match the model's technique.
	Technique string
	// Split names the evaluated split in logs.
	Split string
	// Logger defaults to the "predict" component logger.
	Logger log.Logger
}

// Result summarizes a finished run.
type Result struct {
	Metrics     map[string]float64
	MetricNames []string
	Batches     int
	Instances   int
	Lines       int
}

// Predictor runs batch prediction for one model. Create it with New, which
// rejects invalid configurations before any batch is scored.
type Predictor struct {
	model  *model.Model
	opts   Options
	logger log.Logger
}

// New validates opts against m.
func New(m *model.Model, opts Options) (*Predictor, error) {
	if m == nil {
		return nil, errors.NewModelError("predict.New", "no model", errors.ErrEmptyData)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if opts.Technique != "" && model.Technique(opts.Technique) != m.Technique {
		if _, err := model.Technique(opts.Technique).Kind(); err != nil {
			return nil, err
		}
		return nil, errors.NewConfigError(
			"linear_technique "+opts.Technique+" does not match the checkpoint technique "+string(m.Technique),
			nil, "linear_technique", "checkpoint_path")
	}
	if opts.BatchSize <= 0 {
		return nil, errors.NewValidationError("eval_batch_size", "must be positive", opts.BatchSize)
	}
	if m.IsTree() && opts.BeamWidth <= 0 {
		return nil, errors.NewValidationError("beam_width", "must be positive", opts.BeamWidth)
	}
	if err := opts.Policy.Validate(m.NumLabels()); err != nil {
		return nil, err
	}
	if opts.LabelNames != nil && len(opts.LabelNames) != m.NumLabels() {
		return nil, errors.NewDimensionError("predict.New", m.NumLabels(), len(opts.LabelNames), 1)
	}
	for _, name := range opts.Metrics {
		if _, err := metrics.Parse(name); err != nil {
			return nil, err
		}
	}
	if opts.Split == "" {
		opts.Split = log.PhaseTest
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.GetLoggerWithName("predict")
	}
	logger = logger.With(
		log.ModelNameKey, string(m.Technique),
		log.PhaseKey, opts.Split,
	)
	return &Predictor{model: m, opts: opts, logger: logger}, nil
}

// Run scores x batch by batch. y may be nil for pure inference, in which case
// no metrics are computed. Predictions go to sink when the policy writes
// output; sink is flushed after every batch but never closed.
//
// Cancellation is checked between batches, so sink always ends on a complete
// line. Any batch failure aborts the run.
func (p *Predictor) Run(ctx context.Context, x *sparse.CSR, y *sparse.LabelMatrix, sink io.Writer) (res Result, err error) {
	defer errors.Recover(&err, "predict.Run")

	if err := p.validateInputs(x, y, sink); err != nil {
		return Result{}, err
	}

	var coll *metrics.Collection
	if y != nil && len(p.opts.Metrics) > 0 {
		coll, err = metrics.NewCollection(p.opts.Metrics, p.model.NumLabels(),
			metrics.WithMulticlass(p.model.Multiclass()))
		if err != nil {
			return Result{}, err
		}
	}

	var w *output.Writer
	if p.opts.Policy.Enabled() {
		var wopts []output.Option
		if p.opts.LabelNames != nil {
			wopts = append(wopts, output.WithLabelMapping(p.opts.LabelNames))
		}
		w, err = output.NewWriter(sink, p.opts.Policy, p.model.NumLabels(), wopts...)
		if err != nil {
			return Result{}, err
		}
	}

	n := x.Rows
	numBatches := (n + p.opts.BatchSize - 1) / p.opts.BatchSize
	p.logger.Info("Evaluation started",
		log.SamplesKey, n,
		log.FeaturesKey, x.Cols,
		log.LabelsKey, p.model.NumLabels(),
		log.BatchSizeKey, p.opts.BatchSize,
		log.BeamWidthKey, p.opts.BeamWidth,
		log.OutputModeKey, p.opts.Policy.Mode.String(),
	)

	treeOpts := []tree.Option{tree.WithBeamWidth(p.opts.BeamWidth), tree.WithWorkers(p.opts.Workers)}
	started := time.Now()
	for b := 0; b < numBatches; b++ {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("Evaluation cancelled", log.PredsBatchKey, b, log.PredsKey, res.Instances)
			return res, errors.Wrapf(err, "cancelled before batch %d of %d", b, numBatches)
		}
		start := b * p.opts.BatchSize
		end := min(start+p.opts.BatchSize, n)

		batchStart := time.Now()
		scores, err := p.model.PredictValues(ctx, x.Slice(start, end), treeOpts...)
		if err != nil {
			p.logger.Error("Batch failed", err, log.PredsBatchKey, b)
			return res, errors.Wrapf(err, "batch %d", b)
		}
		if coll != nil {
			if err := coll.Update(scores, y.Slice(start, end)); err != nil {
				return res, errors.Wrapf(err, "batch %d", b)
			}
		}
		if w != nil {
			if err := w.WriteBatch(scores); err != nil {
				return res, errors.Wrapf(err, "batch %d", b)
			}
			res.Lines = w.Lines()
		}
		res.Batches++
		res.Instances += end - start

		p.logger.Debug("Batch scored",
			log.PredsBatchKey, b,
			log.SamplesKey, end-start,
			log.PredsKey, scores.NNZ(),
			log.DurationMsKey, time.Since(batchStart).Milliseconds(),
		)
	}

	if coll != nil {
		res.Metrics = coll.Compute()
		res.MetricNames = coll.Names()
	}
	p.logger.Info("Evaluation finished",
		log.PredsKey, res.Instances,
		log.DurationMsKey, time.Since(started).Milliseconds(),
		log.MetricsKey, res.Metrics,
	)
	return res, nil
}

func (p *Predictor) validateInputs(x *sparse.CSR, y *sparse.LabelMatrix, sink io.Writer) error {
	if x == nil {
		return errors.NewDataError("predict.Run", "no instance matrix")
	}
	if err := x.Validate(); err != nil {
		return err
	}
	if x.Cols != p.model.NumFeatures() {
		return errors.NewDimensionError("predict.Run", p.model.NumFeatures(), x.Cols, 1)
	}
	if y != nil {
		if rows, _ := y.Dims(); rows != x.Rows {
			return errors.NewDataErrorf("predict.Run", "%d instances but %d target rows", x.Rows, rows)
		}
		if y.NumLabels != p.model.NumLabels() {
			return errors.NewDimensionError("predict.Run", p.model.NumLabels(), y.NumLabels, 1)
		}
		if err := y.Validate(); err != nil {
			return err
		}
	}
	if p.opts.Policy.Enabled() && sink == nil {
		return errors.NewConfigError("prediction output requested without a sink", nil, "predict_out_path")
	}
	return nil
}
