package multilabel

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/cran/utiml/core/dataset"
	"github.com/cran/utiml/core/model"
	"github.com/cran/utiml/pkg/errors"
)

// toyDataset has 4 instances, 3 attributes and 3 labels with cardinality 1.5.
func toyDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New(
		[][]float64{
			{1, 0, 0.5},
			{0, 1, 0.2},
			{1, 1, 0.9},
			{0, 0, 0.1},
		},
		[][]float64{
			{1, 0, 1},
			{0, 1, 0},
			{1, 1, 0},
			{0, 0, 1},
		},
		[]string{"x1", "x2", "x3"},
		[]string{"A", "B", "C"},
	)
	require.NoError(t, err)
	return ds
}

// wideDataset has enough rows and attributes for resampling to matter.
func wideDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	rng := rand.New(rand.NewPCG(11, 13))
	attrs := make([][]float64, 30)
	labels := make([][]float64, 30)
	for i := range attrs {
		attrs[i] = make([]float64, 6)
		for j := range attrs[i] {
			attrs[i][j] = rng.Float64()
		}
		labels[i] = []float64{0, 0, 0, 0}
		for j := range labels[i] {
			if attrs[i][j]+0.3*attrs[i][j+2] > 0.6 {
				labels[i][j] = 1
			}
		}
	}
	ds, err := dataset.New(attrs, labels, nil, []string{"L1", "L2", "L3", "L4"})
	require.NoError(t, err)
	return ds
}

func unlabeled(t *testing.T, ds *dataset.Dataset) *dataset.Dataset {
	t.Helper()
	out, err := dataset.NewUnlabeled(ds.Attributes(), ds.AttributeNames())
	require.NoError(t, err)
	return out
}

// randomLearner scores every row with a constant drawn from the task stream,
// so any difference in stream derivation shows up in the scores.
type randomLearner struct{}

func (randomLearner) Name() string { return "random" }

func (randomLearner) Train(X mat.Matrix, _ []float64, rng *rand.Rand) (model.BinaryModel, error) {
	_, p := X.Dims()
	return &constantModel{score: rng.Float64(), features: p}, nil
}

type constantModel struct {
	score    float64
	features int
}

func (m *constantModel) Predict(X mat.Matrix) (*model.Prediction, error) {
	rows, p := X.Dims()
	if p != m.features {
		return nil, errors.NewDimensionError("constantModel.Predict", m.features, p, 1)
	}
	scores := make([]float64, rows)
	for i := range scores {
		scores[i] = m.score
	}
	return model.NewPrediction(scores, 0.5), nil
}

// recordingLearner remembers the width of every training matrix and copies
// its last column into the score, which makes chain augmentation observable.
type recordingLearner struct {
	widths chan int
}

func (recordingLearner) Name() string { return "recording" }

func (l recordingLearner) Train(X mat.Matrix, y []float64, _ *rand.Rand) (model.BinaryModel, error) {
	_, p := X.Dims()
	if l.widths != nil {
		l.widths <- p
	}
	return &lastColumnModel{features: p, target: y}, nil
}

type lastColumnModel struct {
	features int
	target   []float64
}

func (m *lastColumnModel) Predict(X mat.Matrix) (*model.Prediction, error) {
	rows, p := X.Dims()
	if p != m.features {
		return nil, errors.NewDimensionError("lastColumnModel.Predict", m.features, p, 1)
	}
	scores := make([]float64, rows)
	for i := range scores {
		scores[i] = errors.ClipValue(X.At(i, p-1), 0, 1)
	}
	return model.NewPrediction(scores, 0.5), nil
}

// errLearnerFailed is returned by failingLearner.
var errLearnerFailed = errors.New("learner failed")

type failingLearner struct{}

func (failingLearner) Name() string { return "failing" }

func (failingLearner) Train(mat.Matrix, []float64, *rand.Rand) (model.BinaryModel, error) {
	return nil, errLearnerFailed
}

func mustPrediction(t *testing.T, labels []string, scores, bip []float64) *Prediction {
	t.Helper()
	n := len(scores) / len(labels)
	p, err := NewPrediction(labels, mat.NewDense(n, len(labels), scores), mat.NewDense(n, len(labels), bip), false)
	require.NoError(t, err)
	return p
}

func silenceWarnings(t *testing.T) *[]error {
	t.Helper()
	var warnings []error
	errors.SetWarningHandler(func(w error) { warnings = append(warnings, w) })
	t.Cleanup(func() { errors.SetWarningHandler(nil) })
	return &warnings
}
