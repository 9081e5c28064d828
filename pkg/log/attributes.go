// Standard attribute keys for prediction runs. Keys are hierarchical
// ("model.name", "data.samples") so records can be filtered by prefix.

package log

// Model and operation context.
const (
	// ModelNameKey identifies the linear technique ("1vsrest", "tree", "tree_ensemble").
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is logging.
	ComponentKey = "ml.component"

	// PhaseKey indicates the evaluation split ("test", "val").
	PhaseKey = "ml.phase"
)

// Data shape.
const (
	SamplesKey   = "data.samples"
	FeaturesKey  = "data.features"
	LabelsKey    = "data.labels"
	BatchSizeKey = "data.batch_size"
	PathKey      = "data.path"
)

// Tree search.
const (
	BeamWidthKey = "tree.beam_width"
	TreeDepthKey = "tree.depth"
	NumNodesKey  = "tree.nodes"
	NumTreesKey  = "ensemble.trees"
	WorkersKey   = "infra.workers"
)

// Prediction and output.
const (
	PredsBatchKey = "preds.batch"
	PredsKey      = "preds.count"
	OutputModeKey = "preds.output_mode"
	TopKKey       = "preds.top_k"
)

// Performance and metrics.
const (
	DurationMsKey = "perf.duration_ms"
	MetricKey     = "metrics.name"
	MetricsKey    = "metrics.values"
)

// Error context.
const (
	ErrAttrKey        = "error"
	ErrorTypeKey      = "error.type"
	StacktraceAttrKey = "stacktrace"
)

// Standard operation values.
const (
	OperationPredict  = "predict"
	OperationEvaluate = "evaluate"
	OperationLoad     = "load"
	OperationPlot     = "plot"

	PhaseTest       = "test"
	PhaseValidation = "val"
)
