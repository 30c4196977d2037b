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

// ChainModel is a trained Classifier Chain. The model at chain position i
// was trained on the attributes followed by the true values of the labels
// at positions 0..i-1.
type ChainModel struct {
	labels      []string
	chain       []string
	attributes  []string
	models      []model.BinaryModel // chain order
	learner     string
	cardinality float64
}

// TrainChain trains a classifier chain over chain, which must be a
// permutation of all dataset labels. An empty chain uses dataset order.
func TrainChain(ds *dataset.Dataset, chain []string, learner model.BaseLearner, opts ...Option) (*ChainModel, error) {
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
	order, err := validateChain(ds.LabelNames(), chain)
	if err != nil {
		return nil, err
	}
	return trainChain(ds, order, learner, s)
}

func trainChain(ds *dataset.Dataset, chain []string, learner model.BaseLearner, s Settings) (*ChainModel, error) {
	logger := s.logger("multilabel.chain")
	start := time.Now()

	// Each position only needs earlier ground truth, which is already data,
	// so the sub-problems can be trained concurrently.
	tasks := make([]parallel.Task[model.BinaryModel], len(chain))
	for i, label := range chain {
		y := labelTarget(ds, label)
		previous := chain[:i]
		tasks[i] = func(rng *rand.Rand) (model.BinaryModel, error) {
			X, _, err := ds.AugmentedAttributes(previous)
			if err != nil {
				return nil, err
			}
			return learner.Train(X, y, rng)
		}
	}

	trained, err := parallel.Run("multilabel.TrainChain", tasks, s.Cores, s.Seed)
	if err != nil {
		logger.Error("Classifier chain training failed", err,
			log.OperationKey, log.OperationFit,
			log.ErrorCodeKey, log.ErrorTaskFailed,
		)
		return nil, err
	}

	logger.Info("Classifier chain trained",
		log.OperationKey, log.OperationFit,
		log.LearnerKey, learner.Name(),
		log.SamplesKey, ds.NumInstances(),
		log.FeaturesKey, ds.NumAttributes(),
		log.LabelsKey, len(chain),
		log.ChainKey, chain,
		log.CoresKey, s.Cores,
		log.RandomSeedKey, s.seedField(),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)

	return &ChainModel{
		labels:      ds.LabelNames(),
		chain:       slices.Clone(chain),
		attributes:  ds.AttributeNames(),
		models:      trained,
		learner:     learner.Name(),
		cardinality: ds.Cardinality(),
	}, nil
}

// Kind returns KindChain.
func (m *ChainModel) Kind() Kind { return KindChain }

// LabelNames returns the labels in dataset order.
func (m *ChainModel) LabelNames() []string { return slices.Clone(m.labels) }

// AttributeNames returns the attributes the model expects.
func (m *ChainModel) AttributeNames() []string { return slices.Clone(m.attributes) }

// Chain returns the label order used for training and prediction.
func (m *ChainModel) Chain() []string { return slices.Clone(m.chain) }

// Cardinality returns the label cardinality of the training set.
func (m *ChainModel) Cardinality() float64 { return m.cardinality }

// Learner returns the base learner name.
func (m *ChainModel) Learner() string { return m.learner }

func (m *ChainModel) sealed() {}

// predict walks the chain in order. Position i sees the attributes followed
// by the predicted bipartitions of positions 0..i-1.
func (m *ChainModel) predict(X *mat.Dense, s Settings) (*Prediction, error) {
	const op = "multilabel.PredictChain"
	rows, p := X.Dims()

	aug := mat.NewDense(rows, p+len(m.chain), nil)
	aug.Slice(0, rows, 0, p).(*mat.Dense).Copy(X)

	outputs := make([]*model.Prediction, len(m.chain))
	for i, bm := range m.models {
		out, err := bm.Predict(aug.Slice(0, rows, 0, p+i))
		if err != nil {
			return nil, errors.NewTrainingError(op, i, err)
		}
		if err := out.Validate(op, rows); err != nil {
			return nil, errors.NewTrainingError(op, i, err)
		}
		for r, b := range out.Bipartition {
			aug.Set(r, p+i, float64(b))
		}
		outputs[i] = out
	}
	return mergeLabels(op, m.labels, m.chain, outputs, rows, s.Probability)
}
