package multilabel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/cran/utiml/core/dataset"
	"github.com/cran/utiml/pkg/errors"
	"github.com/cran/utiml/sklearn/dummy"
	"github.com/cran/utiml/sklearn/linear_model"
)

func TestToyBinaryRelevanceSameAcrossCores(t *testing.T) {
	ds := toyDataset(t)
	test := unlabeled(t, ds)
	lr := linear_model.NewLogisticRegression(linear_model.WithLRMaxIter(50))
	silenceWarnings(t)

	run := func(cores int) *Prediction {
		m, err := TrainBinary(ds, lr, WithCores(cores), WithSeed(123))
		require.NoError(t, err)
		res, err := Predict(m, test, WithCores(cores), WithSeed(123))
		require.NoError(t, err)
		return res.Merged
	}

	p1, p2 := run(1), run(2)
	assert.True(t, mat.Equal(p1.Bipartition(), p2.Bipartition()))
	assert.True(t, mat.Equal(p1.Scores(), p2.Scores()))
}

func TestSeededModelsAcrossKinds(t *testing.T) {
	ds := wideDataset(t)
	test := unlabeled(t, ds)

	train := func(kind Kind, cores int) Model {
		var (
			m   Model
			err error
		)
		switch kind {
		case KindBinary:
			m, err = TrainBinary(ds, randomLearner{}, WithCores(cores), WithSeed(42))
		case KindChain:
			m, err = TrainChain(ds, []string{"L3", "L1", "L4", "L2"}, randomLearner{}, WithCores(cores), WithSeed(42))
		}
		require.NoError(t, err)
		return m
	}

	for _, kind := range []Kind{KindBinary, KindChain} {
		a, err := Predict(train(kind, 1), test)
		require.NoError(t, err)
		b, err := Predict(train(kind, 3), test)
		require.NoError(t, err)
		assert.True(t, mat.Equal(a.Merged.Scores(), b.Merged.Scores()), "kind=%s", kind)
	}
}

func TestPredictProjectsByName(t *testing.T) {
	ds := toyDataset(t)
	m, err := TrainChain(ds, nil, recordingLearner{})
	require.NoError(t, err)

	// reversed column order plus an extra column
	attrs := ds.Attributes()
	shuffled := mat.NewDense(4, 4, nil)
	for i := 0; i < 4; i++ {
		shuffled.Set(i, 0, 7)
		shuffled.Set(i, 1, attrs.At(i, 2))
		shuffled.Set(i, 2, attrs.At(i, 1))
		shuffled.Set(i, 3, attrs.At(i, 0))
	}
	test, err := dataset.NewUnlabeled(shuffled, []string{"extra", "x3", "x2", "x1"})
	require.NoError(t, err)

	want, err := Predict(m, ds)
	require.NoError(t, err)
	got, err := Predict(m, test)
	require.NoError(t, err)
	assert.True(t, mat.Equal(want.Merged.Scores(), got.Merged.Scores()))
}

func TestPredictSchemaMismatch(t *testing.T) {
	ds := toyDataset(t)
	test, err := dataset.NewUnlabeled(mat.NewDense(2, 2, []float64{1, 0, 0, 1}), []string{"x1", "x2"})
	require.NoError(t, err)

	binary, err := TrainBinary(ds, dummy.NewPriorClassifier())
	require.NoError(t, err)
	chain, err := TrainChain(ds, nil, dummy.NewPriorClassifier())
	require.NoError(t, err)
	ensemble, err := TrainEnsemble(ds, EnsembleConfig{3, 1, 1, false, KindBinary}, dummy.NewPriorClassifier(), WithSeed(1))
	require.NoError(t, err)

	for _, m := range []Model{binary, chain, ensemble} {
		_, err := Predict(m, test)
		var serr *errors.SchemaMismatchError
		require.True(t, errors.As(err, &serr), "kind=%s", m.Kind())
		assert.Equal(t, []string{"x3"}, serr.Missing)

		var terr *errors.TrainingError
		assert.False(t, errors.As(err, &terr))
	}
}

func TestPredictValidation(t *testing.T) {
	ds := toyDataset(t)
	m, err := TrainBinary(ds, dummy.NewPriorClassifier())
	require.NoError(t, err)

	var verr *errors.ValidationError
	_, err = Predict(m, ds, WithVoteSchema("median"))
	assert.True(t, errors.As(err, &verr))
	_, err = Predict(m, ds, WithCores(-2))
	assert.True(t, errors.As(err, &verr))
	_, err = Predict(nil, ds)
	assert.True(t, errors.As(err, &verr))
	_, err = Predict(m, nil)
	assert.True(t, errors.As(err, &verr))
}

func TestModelVariant(t *testing.T) {
	ds := toyDataset(t)
	binary, err := TrainBinary(ds, dummy.NewPriorClassifier())
	require.NoError(t, err)
	chain, err := TrainChain(ds, []string{"B", "A", "C"}, dummy.NewPriorClassifier())
	require.NoError(t, err)
	ensemble, err := TrainEnsemble(ds, DefaultEnsembleConfig(KindChain), dummy.NewPriorClassifier(), WithSeed(2))
	require.NoError(t, err)

	kinds := map[Kind]Model{KindBinary: binary, KindChain: chain, KindEnsemble: ensemble}
	for kind, m := range kinds {
		assert.Equal(t, kind, m.Kind())
		assert.Equal(t, ds.LabelNames(), m.LabelNames())
	}
}

func TestParseKind(t *testing.T) {
	for name, want := range map[string]Kind{"br": KindBinary, "Binary": KindBinary, "cc": KindChain, "chain": KindChain, "ensemble": KindEnsemble} {
		got, err := ParseKind(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseKind("pairwise")
	assert.Error(t, err)
}

func TestSettings(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, 1, s.Cores)
	assert.Equal(t, VoteMaj, s.VoteSchema)
	assert.False(t, s.Probability)
	_, seeded := s.Seed.Value()
	assert.False(t, seeded)

	custom := Settings{Cores: 3, VoteSchema: VoteAvg, Probability: true, Labels: []string{"A"}}
	got := newSettings([]Option{WithSettings(custom), WithSeed(8)})
	assert.Equal(t, 3, got.Cores)
	assert.Equal(t, VoteAvg, got.VoteSchema)
	assert.True(t, got.Probability)
	assert.Equal(t, []string{"A"}, got.Labels)
	v, seeded := got.Seed.Value()
	assert.True(t, seeded)
	assert.Equal(t, int64(8), v)
}
