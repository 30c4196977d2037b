package multilabel

import (
	"math"
	"math/rand/v2"
	"sort"
	"time"

	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/mat"

	"github.com/cran/utiml/core/dataset"
	"github.com/cran/utiml/core/model"
	"github.com/cran/utiml/core/parallel"
	"github.com/cran/utiml/pkg/errors"
	"github.com/cran/utiml/pkg/log"
)

// EnsembleConfig describes how ensemble members are resampled.
type EnsembleConfig struct {
	// Members is the number of members, at least 2.
	Members int
	// SubsampleFraction is the share of rows drawn per member, in [0.1, 1].
	SubsampleFraction float64
	// AttrFraction is the share of attributes drawn per member, in (0.1, 1].
	AttrFraction float64
	// Replacement draws rows with replacement.
	Replacement bool
	// Kind is the member decomposition: KindBinary or KindChain.
	Kind Kind
}

// DefaultEnsembleConfig returns 10 members over 75% of the rows drawn with
// replacement and 50% of the attributes.
func DefaultEnsembleConfig(kind Kind) EnsembleConfig {
	return EnsembleConfig{
		Members:           10,
		SubsampleFraction: 0.75,
		AttrFraction:      0.5,
		Replacement:       true,
		Kind:              kind,
	}
}

// Validate checks the configuration bounds.
func (c EnsembleConfig) Validate() error {
	if c.Members <= 1 {
		return errors.NewValidationError("members", "must be greater than 1", c.Members)
	}
	if math.IsNaN(c.SubsampleFraction) || c.SubsampleFraction < 0.1 || c.SubsampleFraction > 1 {
		return errors.NewValidationError("subsample", "must be in [0.1, 1]", c.SubsampleFraction)
	}
	if math.IsNaN(c.AttrFraction) || c.AttrFraction <= 0.1 || c.AttrFraction > 1 {
		return errors.NewValidationError("attr_space", "must be in (0.1, 1]", c.AttrFraction)
	}
	if c.Kind != KindBinary && c.Kind != KindChain {
		return errors.NewValidationError("kind", "ensemble members must be binary or chain", string(c.Kind))
	}
	return nil
}

// EnsembleMember is one trained member with the subset it was built on.
type EnsembleMember struct {
	// Rows is the number of training rows drawn.
	Rows int
	// Attributes are the attribute names the member was trained on, in
	// dataset order. Prediction projects new data onto them.
	Attributes []string
	// Model is a *BinaryModel or a *ChainModel.
	Model Model
}

// Chain returns the label order of a chain member, or nil.
func (m EnsembleMember) Chain() []string {
	if cm, ok := m.Model.(*ChainModel); ok {
		return cm.Chain()
	}
	return nil
}

// EnsembleModel is a trained ensemble of Binary Relevance or Classifier
// Chain members.
type EnsembleModel struct {
	config      EnsembleConfig
	labels      []string
	attributes  []string
	members     []EnsembleMember
	learner     string
	cardinality float64
}

// TrainEnsemble trains cfg.Members decompositions. Each member draws its
// rows, attributes and, for chains, a label order from its own task stream,
// then trains sequentially with a seed drawn from that stream.
func TrainEnsemble(ds *dataset.Dataset, cfg EnsembleConfig, learner model.BaseLearner, opts ...Option) (*EnsembleModel, error) {
	s := newSettings(opts)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if err := requireLabels(ds); err != nil {
		return nil, err
	}
	if learner == nil {
		return nil, errors.NewValidationError("learner", "must not be nil", nil)
	}

	logger := s.logger("multilabel.ensemble")
	start := time.Now()

	n, p := ds.NumInstances(), ds.NumAttributes()
	rowCount := sampleSize(n, cfg.SubsampleFraction)
	attrCount := sampleSize(p, cfg.AttrFraction)
	attrNames := ds.AttributeNames()
	labels := ds.LabelNames()

	memberSettings := s
	memberSettings.Cores = 1
	memberSettings.Labels = nil

	tasks := make([]parallel.Task[EnsembleMember], cfg.Members)
	for k := range tasks {
		tasks[k] = func(rng *rand.Rand) (EnsembleMember, error) {
			rows := sampleRows(rng, n, rowCount, cfg.Replacement)
			cols := sampleColumns(rng, p, attrCount)
			names := make([]string, len(cols))
			for c, j := range cols {
				names[c] = attrNames[j]
			}

			var chain []string
			if cfg.Kind == KindChain {
				chain = make([]string, len(labels))
				for i, j := range rng.Perm(len(labels)) {
					chain[i] = labels[j]
				}
			}

			sub, err := ds.Subset(rows, names)
			if err != nil {
				return EnsembleMember{}, err
			}

			ms := memberSettings
			ms.Seed = parallel.SeedOf(rng.Int64())

			var m Model
			if cfg.Kind == KindChain {
				m, err = trainChain(sub, chain, learner, ms)
			} else {
				m, err = trainBinary(sub, labels, learner, ms)
			}
			if err != nil {
				return EnsembleMember{}, err
			}
			return EnsembleMember{Rows: len(rows), Attributes: names, Model: m}, nil
		}
	}

	members, err := parallel.Run("multilabel.TrainEnsemble", tasks, s.Cores, s.Seed)
	if err != nil {
		logger.Error("Ensemble training failed", err,
			log.OperationKey, log.OperationFit,
			log.ErrorCodeKey, log.ErrorTaskFailed,
		)
		return nil, err
	}

	logger.Info("Ensemble trained",
		log.OperationKey, log.OperationFit,
		log.ModelNameKey, string(cfg.Kind),
		log.LearnerKey, learner.Name(),
		log.MembersKey, cfg.Members,
		log.SamplesKey, n,
		log.FeaturesKey, p,
		log.LabelsKey, len(labels),
		log.CardinalityKey, ds.Cardinality(),
		log.CoresKey, s.Cores,
		log.RandomSeedKey, s.seedField(),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)

	return &EnsembleModel{
		config:      cfg,
		labels:      labels,
		attributes:  attrNames,
		members:     members,
		learner:     learner.Name(),
		cardinality: ds.Cardinality(),
	}, nil
}

// sampleSize returns ceil(total*fraction), at least 1. The small offset keeps
// products such as 10*0.7 from rounding up past the exact value.
func sampleSize(total int, fraction float64) int {
	k := int(math.Ceil(float64(total)*fraction - 1e-9))
	if k < 1 {
		k = 1
	}
	if k > total {
		k = total
	}
	return k
}

func sampleRows(rng *rand.Rand, n, size int, replacement bool) []int {
	if !replacement {
		rows := rng.Perm(n)[:size]
		sort.Ints(rows)
		return rows
	}
	rows := make([]int, size)
	for i := range rows {
		rows[i] = rng.IntN(n)
	}
	return rows
}

// sampleColumns draws size distinct columns and returns them in dataset order.
func sampleColumns(rng *rand.Rand, p, size int) []int {
	cols := rng.Perm(p)[:size]
	sort.Ints(cols)
	return cols
}

// Kind returns KindEnsemble.
func (m *EnsembleModel) Kind() Kind { return KindEnsemble }

// LabelNames returns the labels in dataset order.
func (m *EnsembleModel) LabelNames() []string { return slices.Clone(m.labels) }

// AttributeNames returns all attributes of the training set.
func (m *EnsembleModel) AttributeNames() []string { return slices.Clone(m.attributes) }

// Config returns the resampling configuration.
func (m *EnsembleModel) Config() EnsembleConfig { return m.config }

// Members returns the trained members in member order.
func (m *EnsembleModel) Members() []EnsembleMember {
	out := make([]EnsembleMember, len(m.members))
	for i, mem := range m.members {
		out[i] = mem
		out[i].Attributes = slices.Clone(mem.Attributes)
	}
	return out
}

// Cardinality returns the label cardinality of the full training set, the
// calibration target of voted predictions.
func (m *EnsembleModel) Cardinality() float64 { return m.cardinality }

// Learner returns the base learner name.
func (m *EnsembleModel) Learner() string { return m.learner }

func (m *EnsembleModel) sealed() {}

// predict projects newdata for every member first, so a missing column is
// reported before any member runs, then predicts the members through the
// executor and votes.
func (m *EnsembleModel) predict(newdata *dataset.Dataset, s Settings) (*Result, error) {
	inputs := make([]*mat.Dense, len(m.members))
	for k, mem := range m.members {
		X, err := newdata.Project(mem.Attributes)
		if err != nil {
			return nil, err
		}
		inputs[k] = X
	}

	memberSettings := s
	memberSettings.Cores = 1

	tasks := make([]parallel.Task[*Prediction], len(m.members))
	for k, mem := range m.members {
		X := inputs[k]
		tasks[k] = func(*rand.Rand) (*Prediction, error) {
			switch mm := mem.Model.(type) {
			case *BinaryModel:
				return mm.predict(X, memberSettings)
			case *ChainModel:
				return mm.predict(X, memberSettings)
			default:
				return nil, errors.NewValidationError("member", "unsupported member model", mem.Model)
			}
		}
	}

	preds, err := parallel.Run("multilabel.PredictEnsemble", tasks, s.Cores, s.Seed)
	if err != nil {
		return nil, err
	}

	res, err := Vote(preds, s.VoteSchema, s.Probability)
	if err != nil {
		return nil, err
	}
	if res.Merged == nil {
		return res, nil
	}

	calibrated, err := Calibrate(res.Merged, m.cardinality, s.Probability)
	if err != nil {
		return nil, err
	}
	return &Result{Merged: calibrated}, nil
}
