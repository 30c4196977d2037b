// Package dummy provides baseline learners that ignore the attributes.
package dummy

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/cran/utiml/core/model"
	"github.com/cran/utiml/pkg/errors"
)

// PriorClassifier scores every instance with the positive rate observed in
// training. It is useful as a baseline and for constant label columns.
type PriorClassifier struct {
	threshold float64
}

// PriorOption configures a PriorClassifier.
type PriorOption func(*PriorClassifier)

// WithPriorThreshold sets the score at or above which the bipartition is 1.
func WithPriorThreshold(t float64) PriorOption {
	return func(p *PriorClassifier) {
		p.threshold = t
	}
}

// NewPriorClassifier creates a PriorClassifier with threshold 0.5.
func NewPriorClassifier(opts ...PriorOption) *PriorClassifier {
	p := &PriorClassifier{threshold: 0.5}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the learner name.
func (p *PriorClassifier) Name() string {
	return "prior"
}

// Train records the fraction of positive targets. rng is unused.
func (p *PriorClassifier) Train(X mat.Matrix, y []float64, _ *rand.Rand) (model.BinaryModel, error) {
	rows, _ := X.Dims()
	if rows == 0 || len(y) == 0 {
		return nil, errors.ErrEmptyData
	}
	if len(y) != rows {
		return nil, errors.NewDimensionError("PriorClassifier.Train", rows, len(y), 0)
	}
	return &PriorModel{prior: floats.Sum(y) / float64(len(y)), threshold: p.threshold}, nil
}

// PriorModel is a trained PriorClassifier.
type PriorModel struct {
	prior     float64
	threshold float64
}

// Prior returns the training positive rate.
func (m *PriorModel) Prior() float64 {
	return m.prior
}

// Predict returns the prior for every row of X.
func (m *PriorModel) Predict(X mat.Matrix) (*model.Prediction, error) {
	rows, _ := X.Dims()
	scores := make([]float64, rows)
	for i := range scores {
		scores[i] = m.prior
	}
	return model.NewPrediction(scores, m.threshold), nil
}
