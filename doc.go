// Package xlinear is a batch inference and ensembling engine for linear
// classifiers over very large label spaces.
//
// A model is either a flat one-vs-rest weight matrix, a label tree searched
// with a beam, or an ensemble of label trees whose sparse scores are summed.
// Instances are scored in fixed-size batches; every batch feeds the metric
// accumulator and the prediction writer before the next one starts, so
// results do not depend on the batch size.
//
// # Quick Start
//
//	m, err := model.Load("model.gob")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ds, err := dataset.Load("test.svm.zst",
//	    dataset.WithNumFeatures(m.NumFeatures()),
//	    dataset.WithNumLabels(m.NumLabels()))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	p, err := predict.New(m, predict.Options{
//	    BatchSize: 256,
//	    BeamWidth: 10,
//	    Metrics:   []string{"P@1", "P@5", "nDCG@5", "Macro-F1"},
//	    Policy:    output.TopKPolicy(5),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res, err := p.Run(ctx, ds.X, ds.Y, os.Stdout)
//
// The xlinear command wraps the same flow with a YAML config:
//
//	xlinear predict -c eval.yml
//
// # Packages
//
//   - linear: flat weight matrices and sparse-times-dense scoring
//   - tree: label trees and per-instance beam search
//   - ensemble: concurrent tree prediction and additive score merge
//   - core/model: the model variant and gob checkpoints
//   - core/sparse: CSR score matrices and label sets
//   - core/rank: top-k selection with label-id tie-breaks
//   - core/fileio: transparent zstd, gzip and lz4 streams
//   - metrics: P@k, RP@k, nDCG@k and F1 accumulators
//   - output: top-k and positive prediction lines
//   - predict: the batch loop
//   - dataset: LIBSVM reader
//   - config: YAML run configuration
//   - plotting: metric curve comparison
package xlinear
