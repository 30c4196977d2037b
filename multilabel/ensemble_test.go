package multilabel

import (
	"math/rand/v2"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/cran/utiml/pkg/errors"
	"github.com/cran/utiml/sklearn/dummy"
)

func TestEnsembleConfigBounds(t *testing.T) {
	ds := toyDataset(t)
	base := DefaultEnsembleConfig(KindBinary)

	tests := []struct {
		name  string
		cfg   EnsembleConfig
		opts  []Option
		param string
	}{
		{"single member", EnsembleConfig{1, 0.75, 0.5, true, KindBinary}, nil, "members"},
		{"subsample too small", EnsembleConfig{10, 0.05, 0.5, true, KindBinary}, nil, "subsample"},
		{"subsample too large", EnsembleConfig{10, 1.2, 0.5, true, KindBinary}, nil, "subsample"},
		{"attr space too large", EnsembleConfig{10, 0.75, 1.5, true, KindBinary}, nil, "attr_space"},
		{"attr space at lower bound", EnsembleConfig{10, 0.75, 0.1, true, KindBinary}, nil, "attr_space"},
		{"nested ensemble", EnsembleConfig{10, 0.75, 0.5, true, KindEnsemble}, nil, "kind"},
		{"zero cores", base, []Option{WithCores(0)}, "cores"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := TrainEnsemble(ds, tt.cfg, failingLearner{}, tt.opts...)
			var verr *errors.ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.param, verr.ParamName)
		})
	}
}

func TestDefaultEnsembleConfig(t *testing.T) {
	cfg := DefaultEnsembleConfig(KindChain)
	assert.Equal(t, EnsembleConfig{Members: 10, SubsampleFraction: 0.75, AttrFraction: 0.5, Replacement: true, Kind: KindChain}, cfg)
	assert.NoError(t, cfg.Validate())
	assert.NoError(t, EnsembleConfig{2, 0.1, 1, false, KindBinary}.Validate())
}

func TestSampleSize(t *testing.T) {
	assert.Equal(t, 3, sampleSize(4, 0.75))
	assert.Equal(t, 7, sampleSize(10, 0.7))
	assert.Equal(t, 2, sampleSize(3, 0.5))
	assert.Equal(t, 1, sampleSize(3, 0.11))
	assert.Equal(t, 5, sampleSize(5, 1))
}

func TestSampleRowsAndColumns(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	rows := sampleRows(rng, 10, 7, false)
	assert.Len(t, rows, 7)
	assert.True(t, sort.IntsAreSorted(rows))
	seen := map[int]bool{}
	for _, r := range rows {
		assert.False(t, seen[r], "row %d drawn twice without replacement", r)
		seen[r] = true
	}

	boot := sampleRows(rng, 3, 50, true)
	assert.Len(t, boot, 50)
	for _, r := range boot {
		assert.True(t, r >= 0 && r < 3)
	}

	cols := sampleColumns(rng, 6, 3)
	assert.Len(t, cols, 3)
	assert.True(t, sort.IntsAreSorted(cols))
}

func TestTrainEnsembleMembers(t *testing.T) {
	ds := wideDataset(t)
	silenceWarnings(t)

	cfg := EnsembleConfig{Members: 5, SubsampleFraction: 0.5, AttrFraction: 0.5, Replacement: false, Kind: KindChain}
	m, err := TrainEnsemble(ds, cfg, dummy.NewPriorClassifier(), WithSeed(7), WithCores(2))
	require.NoError(t, err)

	assert.Equal(t, KindEnsemble, m.Kind())
	assert.Equal(t, cfg, m.Config())
	assert.InDelta(t, ds.Cardinality(), m.Cardinality(), 1e-12)

	members := m.Members()
	require.Len(t, members, 5)
	attrIndex := map[string]int{}
	for j, name := range ds.AttributeNames() {
		attrIndex[name] = j
	}
	chains := map[string]bool{}
	for _, mem := range members {
		assert.Equal(t, 15, mem.Rows)
		require.Len(t, mem.Attributes, 3)
		assert.True(t, sort.SliceIsSorted(mem.Attributes, func(a, b int) bool {
			return attrIndex[mem.Attributes[a]] < attrIndex[mem.Attributes[b]]
		}), "member attributes keep dataset order")
		assert.Equal(t, mem.Attributes, mem.Model.AttributeNames())

		chain := mem.Chain()
		require.Len(t, chain, 4)
		assert.ElementsMatch(t, ds.LabelNames(), chain)
		chains[chainKey(chain)] = true
		assert.Equal(t, ds.LabelNames(), mem.Model.LabelNames())
	}
	assert.Greater(t, len(chains), 1, "members should draw different chains")
}

func chainKey(chain []string) string {
	key := ""
	for _, l := range chain {
		key += l + ","
	}
	return key
}

func TestTrainEnsembleBinaryMembersHaveNoChain(t *testing.T) {
	ds := wideDataset(t)
	m, err := TrainEnsemble(ds, DefaultEnsembleConfig(KindBinary), dummy.NewPriorClassifier(), WithSeed(3))
	require.NoError(t, err)
	for _, mem := range m.Members() {
		assert.Nil(t, mem.Chain())
		assert.Equal(t, 23, mem.Rows)
		assert.Len(t, mem.Attributes, 3)
	}
}

func TestEnsembleSeededAcrossCores(t *testing.T) {
	ds := wideDataset(t)
	test := unlabeled(t, ds)

	for _, kind := range []Kind{KindBinary, KindChain} {
		cfg := DefaultEnsembleConfig(kind)

		predict := func(cores int) (*EnsembleModel, *Prediction) {
			m, err := TrainEnsemble(ds, cfg, randomLearner{}, WithSeed(123), WithCores(cores))
			require.NoError(t, err)
			res, err := Predict(m, test, WithVoteSchema(VoteAvg), WithCores(cores))
			require.NoError(t, err)
			return m, res.Merged
		}

		m1, p1 := predict(1)
		m4, p4 := predict(4)
		assert.True(t, mat.Equal(p1.Scores(), p4.Scores()), "kind=%s", kind)
		assert.True(t, mat.Equal(p1.Bipartition(), p4.Bipartition()), "kind=%s", kind)
		for k := range m1.Members() {
			assert.Equal(t, m1.Members()[k].Attributes, m4.Members()[k].Attributes)
			assert.Equal(t, m1.Members()[k].Chain(), m4.Members()[k].Chain())
		}

		_, other := func() (*EnsembleModel, *Prediction) {
			m, err := TrainEnsemble(ds, cfg, randomLearner{}, WithSeed(124))
			require.NoError(t, err)
			res, err := Predict(m, test, WithVoteSchema(VoteAvg))
			require.NoError(t, err)
			return m, res.Merged
		}()
		assert.False(t, mat.Equal(p1.Scores(), other.Scores()), "kind=%s", kind)
	}
}

func TestEnsemblePredictCalibratesToCardinality(t *testing.T) {
	ds := wideDataset(t)
	silenceWarnings(t)

	m, err := TrainEnsemble(ds, DefaultEnsembleConfig(KindBinary), randomLearner{}, WithSeed(5))
	require.NoError(t, err)

	for _, schema := range []VoteSchema{VoteAvg, VoteMax, VoteMin, VoteMaj} {
		res, err := Predict(m, unlabeled(t, ds), WithVoteSchema(schema))
		require.NoError(t, err)
		want := int(m.Cardinality() + 0.5)
		for _, size := range res.Merged.LabelSetSizes() {
			assert.Equal(t, want, size, "schema=%s", schema)
		}
	}
}

func TestEnsemblePredictNoneReturnsMembers(t *testing.T) {
	ds := wideDataset(t)
	m, err := TrainEnsemble(ds, EnsembleConfig{3, 0.5, 0.5, true, KindChain}, randomLearner{}, WithSeed(5))
	require.NoError(t, err)

	res, err := Predict(m, unlabeled(t, ds), WithVoteSchema(VoteNone), WithProbability(true))
	require.NoError(t, err)
	assert.Nil(t, res.Merged)
	require.Len(t, res.Members, 3)
	for _, p := range res.Members {
		assert.Equal(t, ds.LabelNames(), p.Labels())
		assert.True(t, p.Probability())
		assert.Equal(t, ds.NumInstances(), p.NumInstances())
	}
}

func TestEnsembleMemberFailureAborts(t *testing.T) {
	ds := wideDataset(t)
	m, err := TrainEnsemble(ds, DefaultEnsembleConfig(KindBinary), failingLearner{}, WithCores(4), WithSeed(1))
	assert.Nil(t, m)

	var terr *errors.TrainingError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "multilabel.TrainEnsemble", terr.Op)
	assert.True(t, errors.Is(err, errLearnerFailed))
}
