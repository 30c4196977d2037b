package multilabel

import (
	"math/rand/v2"
	"time"

	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/mat"

	"github.com/cran/utiml/core/dataset"
	"github.com/cran/utiml/core/model"
	"github.com/cran/utiml/core/parallel"
	"github.com/cran/utiml/pkg/errors"
	"github.com/cran/utiml/pkg/log"
)

// BinaryModel is a trained Binary Relevance decomposition: one independent
// binary model per label.
type BinaryModel struct {
	labels      []string
	attributes  []string
	models      map[string]model.BinaryModel
	learner     string
	cardinality float64
}

// TrainBinary trains one sub-problem per label. Every sub-problem sees the
// full attribute matrix and the label's column as target. WithLabels
// restricts the trained labels.
func TrainBinary(ds *dataset.Dataset, learner model.BaseLearner, opts ...Option) (*BinaryModel, error) {
	s := newSettings(opts)
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if err := requireLabels(ds); err != nil {
		return nil, err
	}
	if learner == nil {
		return nil, errors.NewValidationError("learner", "must not be nil", nil)
	}
	labels, err := selectLabels(ds, s.Labels)
	if err != nil {
		return nil, err
	}
	return trainBinary(ds, labels, learner, s)
}

func trainBinary(ds *dataset.Dataset, labels []string, learner model.BaseLearner, s Settings) (*BinaryModel, error) {
	logger := s.logger("multilabel.binary")
	start := time.Now()

	X := ds.Attributes()
	tasks := make([]parallel.Task[model.BinaryModel], len(labels))
	for k, label := range labels {
		y := labelTarget(ds, label)
		tasks[k] = func(rng *rand.Rand) (model.BinaryModel, error) {
			return learner.Train(X, y, rng)
		}
	}

	trained, err := parallel.Run("multilabel.TrainBinary", tasks, s.Cores, s.Seed)
	if err != nil {
		logger.Error("Binary relevance training failed", err,
			log.OperationKey, log.OperationFit,
			log.ErrorCodeKey, log.ErrorTaskFailed,
		)
		return nil, err
	}

	models := make(map[string]model.BinaryModel, len(labels))
	for k, label := range labels {
		models[label] = trained[k]
	}

	logger.Info("Binary relevance trained",
		log.OperationKey, log.OperationFit,
		log.LearnerKey, learner.Name(),
		log.SamplesKey, ds.NumInstances(),
		log.FeaturesKey, ds.NumAttributes(),
		log.LabelsKey, len(labels),
		log.CoresKey, s.Cores,
		log.RandomSeedKey, s.seedField(),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)

	return &BinaryModel{
		labels:      labels,
		attributes:  ds.AttributeNames(),
		models:      models,
		learner:     learner.Name(),
		cardinality: ds.Cardinality(),
	}, nil
}

// Kind returns KindBinary.
func (m *BinaryModel) Kind() Kind { return KindBinary }

// LabelNames returns the trained labels in dataset order.
func (m *BinaryModel) LabelNames() []string { return slices.Clone(m.labels) }

// AttributeNames returns the attributes the model expects.
func (m *BinaryModel) AttributeNames() []string { return slices.Clone(m.attributes) }

// Cardinality returns the label cardinality of the training set.
func (m *BinaryModel) Cardinality() float64 { return m.cardinality }

// Learner returns the base learner name.
func (m *BinaryModel) Learner() string { return m.learner }

// LabelModel returns the sub-problem model of label.
func (m *BinaryModel) LabelModel(label string) (model.BinaryModel, bool) {
	bm, ok := m.models[label]
	return bm, ok
}

func (m *BinaryModel) sealed() {}

// predict runs every label model on X, an already projected attribute matrix.
func (m *BinaryModel) predict(X *mat.Dense, s Settings) (*Prediction, error) {
	rows, _ := X.Dims()
	tasks := make([]parallel.Task[*model.Prediction], len(m.labels))
	for k, label := range m.labels {
		bm := m.models[label]
		tasks[k] = func(*rand.Rand) (*model.Prediction, error) {
			return bm.Predict(X)
		}
	}

	outputs, err := parallel.Run("multilabel.PredictBinary", tasks, s.Cores, s.Seed)
	if err != nil {
		return nil, err
	}
	return mergeLabels("multilabel.PredictBinary", m.labels, m.labels, outputs, rows, s.Probability)
}
