package multilabel

import (
	"math"

	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/cran/utiml/core/model"
	"github.com/cran/utiml/pkg/errors"
)

// Prediction is a multi-label prediction: an instances × labels matrix of
// scores in [0,1] and an aligned 0/1 bipartition matrix. Columns follow the
// label order of the dataset the model was trained on. A Prediction is never
// mutated; thresholding and voting return new values.
type Prediction struct {
	labels      []string
	scores      *mat.Dense
	bipartition *mat.Dense
	probability bool
}

// NewPrediction validates and copies scores and bipartition into a Prediction.
func NewPrediction(labels []string, scores, bipartition mat.Matrix, probability bool) (*Prediction, error) {
	const op = "multilabel.NewPrediction"
	if len(labels) == 0 {
		return nil, errors.NewValidationError("labels", "at least one label is required", labels)
	}
	n, q := scores.Dims()
	if q != len(labels) {
		return nil, errors.NewDimensionError(op, len(labels), q, 1)
	}
	bn, bq := bipartition.Dims()
	if bn != n {
		return nil, errors.NewDimensionError(op, n, bn, 0)
	}
	if bq != q {
		return nil, errors.NewDimensionError(op, q, bq, 1)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < q; j++ {
			s := scores.At(i, j)
			if math.IsNaN(s) || s < 0 || s > 1 {
				return nil, errors.NewValueError(op, "scores must lie in [0, 1]")
			}
			if b := bipartition.At(i, j); b != 0 && b != 1 {
				return nil, errors.NewValueError(op, "bipartition values must be 0 or 1")
			}
		}
	}
	return &Prediction{
		labels:      slices.Clone(labels),
		scores:      mat.DenseCopyOf(scores),
		bipartition: mat.DenseCopyOf(bipartition),
		probability: probability,
	}, nil
}

// Labels returns the label names in column order.
func (p *Prediction) Labels() []string {
	return slices.Clone(p.labels)
}

// NumInstances returns the number of rows.
func (p *Prediction) NumInstances() int {
	n, _ := p.scores.Dims()
	return n
}

// NumLabels returns the number of label columns.
func (p *Prediction) NumLabels() int {
	return len(p.labels)
}

// Scores returns a copy of the score matrix.
func (p *Prediction) Scores() *mat.Dense {
	return mat.DenseCopyOf(p.scores)
}

// Bipartition returns a copy of the bipartition matrix.
func (p *Prediction) Bipartition() *mat.Dense {
	return mat.DenseCopyOf(p.bipartition)
}

// Probability reports whether Values returns scores.
func (p *Prediction) Probability() bool {
	return p.probability
}

// Values returns the scores when the prediction was requested as
// probabilities and the bipartition otherwise.
func (p *Prediction) Values() *mat.Dense {
	if p.probability {
		return p.Scores()
	}
	return p.Bipartition()
}

// LabelSetSizes returns the number of positive labels of each instance.
func (p *Prediction) LabelSetSizes() []int {
	n, q := p.bipartition.Dims()
	sizes := make([]int, n)
	for i := 0; i < n; i++ {
		for j := 0; j < q; j++ {
			if p.bipartition.At(i, j) == 1 {
				sizes[i]++
			}
		}
	}
	return sizes
}

// Cardinality returns the mean label-set size of the bipartition.
func (p *Prediction) Cardinality() float64 {
	sizes := p.LabelSetSizes()
	if len(sizes) == 0 {
		return 0
	}
	vals := make([]float64, len(sizes))
	for i, s := range sizes {
		vals[i] = float64(s)
	}
	return stat.Mean(vals, nil)
}

// withBipartition returns a copy of p sharing its scores with a new bipartition.
func (p *Prediction) withBipartition(bip *mat.Dense, probability bool) *Prediction {
	return &Prediction{
		labels:      p.labels,
		scores:      p.scores,
		bipartition: bip,
		probability: probability,
	}
}

// withProbability returns p with the requested view flag.
func (p *Prediction) withProbability(probability bool) *Prediction {
	if p.probability == probability {
		return p
	}
	return p.withBipartition(p.bipartition, probability)
}

// mergeLabels assembles per-label outputs into one Prediction whose columns
// follow labels. order names the label of outputs[k]; it may be any
// permutation of labels, as produced by a chain.
func mergeLabels(op string, labels, order []string, outputs []*model.Prediction, rows int, probability bool) (*Prediction, error) {
	if len(order) != len(outputs) || len(order) != len(labels) {
		return nil, errors.NewDimensionError(op, len(labels), len(outputs), 1)
	}

	scores := mat.NewDense(rows, len(labels), nil)
	bip := mat.NewDense(rows, len(labels), nil)
	for k, out := range outputs {
		j := slices.Index(labels, order[k])
		if j < 0 {
			return nil, errors.NewValidationError("labels", "prediction for an unknown label", order[k])
		}
		if err := out.Validate(op, rows); err != nil {
			return nil, err
		}
		scores.SetCol(j, out.Scores)
		for i, b := range out.Bipartition {
			bip.Set(i, j, float64(b))
		}
	}

	return &Prediction{
		labels:      slices.Clone(labels),
		scores:      scores,
		bipartition: bip,
		probability: probability,
	}, nil
}
