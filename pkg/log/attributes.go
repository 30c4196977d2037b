// Standard attribute keys for multi-label training and prediction logs.
//
// Keys follow a hierarchical naming convention (e.g. "model.name",
// "data.labels") so that log pipelines can filter on them.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the model type.
	// Examples: "BinaryRelevance", "ClassifierChain", "EnsembleOfChains"
	ModelNameKey = "model.name"

	// LearnerKey identifies the base learner used for sub-problems.
	LearnerKey = "model.learner"

	// OperationKey specifies the operation being performed.
	OperationKey = "ml.operation"

	// ComponentKey identifies which component is logging.
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of the model lifecycle.
	PhaseKey = "ml.phase"
)

// Data Shape and Characteristics
const (
	// SamplesKey indicates the number of instances.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of attributes.
	FeaturesKey = "data.features"

	// LabelsKey indicates the number of labels.
	LabelsKey = "data.labels"

	// LabelKey names a single label.
	LabelKey = "data.label"

	// CardinalityKey records the label cardinality of a dataset.
	CardinalityKey = "data.cardinality"
)

// Execution and Ensemble
const (
	// CoresKey records the number of workers used by the executor.
	CoresKey = "exec.cores"

	// TasksKey records the number of tasks dispatched to the executor.
	TasksKey = "exec.tasks"

	// TaskIndexKey identifies a task within an executor run.
	TaskIndexKey = "exec.task"

	// RandomSeedKey records the random seed for reproducibility.
	RandomSeedKey = "config.random_seed"

	// MembersKey records the number of ensemble members.
	MembersKey = "ensemble.members"

	// ChainKey records a label order.
	ChainKey = "chain.order"

	// VoteSchemaKey records the vote schema used to merge members.
	VoteSchemaKey = "vote.schema"

	// TargetCardinalityKey records the calibration target.
	TargetCardinalityKey = "calibration.cardinality"
)

// Performance
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"
)

// Error and Warning Context
const (
	// ErrorCodeKey provides a structured error code for programmatic handling.
	ErrorCodeKey = "error.code"

	// ErrorTypeKey categorizes the type of error encountered.
	ErrorTypeKey = "error.type"
)

// Standard attribute values.
const (
	OperationFit       = "fit"
	OperationPredict   = "predict"
	OperationVote      = "vote"
	OperationCalibrate = "calibrate"

	PhaseTraining  = "training"
	PhaseInference = "inference"

	ErrorValidation     = "INVALID_CONFIGURATION"
	ErrorTaskFailed     = "TASK_FAILED"
	ErrorSchemaMismatch = "SCHEMA_MISMATCH"
)
