package multilabel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/cran/utiml/pkg/errors"
)

var abcd = []string{"A", "B", "C", "D"}

func TestCalibrateSelectsTopLabels(t *testing.T) {
	pred := mustPrediction(t, abcd, []float64{0.9, 0.4, 0.8, 0.1}, []float64{1, 0, 1, 0})

	got, err := Calibrate(pred, 2.0, false)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0, 1, 0}, mat.Row(nil, 0, got.Bipartition()))
	assert.True(t, mat.Equal(pred.Scores(), got.Scores()))
}

func TestCalibrateRoundsAndClamps(t *testing.T) {
	pred := mustPrediction(t, abcd, []float64{0.9, 0.4, 0.8, 0.1}, []float64{0, 0, 0, 0})

	tests := []struct {
		target float64
		want   []float64
	}{
		{0, []float64{0, 0, 0, 0}},
		{0.4, []float64{0, 0, 0, 0}},
		{1.5, []float64{1, 0, 1, 0}},
		{2.6, []float64{1, 1, 1, 0}},
		{9, []float64{1, 1, 1, 1}},
	}
	for _, tt := range tests {
		got, err := Calibrate(pred, tt.target, true)
		require.NoError(t, err)
		assert.Equal(t, tt.want, mat.Row(nil, 0, got.Bipartition()), "target=%v", tt.target)
		assert.True(t, got.Probability())
	}
}

func TestCalibrateTiesKeepLabelOrder(t *testing.T) {
	pred := mustPrediction(t, abcd, []float64{0.5, 0.7, 0.5, 0.5}, []float64{0, 0, 0, 0})

	got, err := Calibrate(pred, 2, false)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 0, 0}, mat.Row(nil, 0, got.Bipartition()))
}

func TestCalibrateRejectsInvalidTarget(t *testing.T) {
	pred := mustPrediction(t, abcd, []float64{0.9, 0.4, 0.8, 0.1}, []float64{0, 0, 0, 0})
	for _, target := range []float64{-1, math.NaN(), math.Inf(1)} {
		_, err := Calibrate(pred, target, false)
		var verr *errors.ValidationError
		assert.True(t, errors.As(err, &verr), "target=%v", target)
	}
}

func TestRCut(t *testing.T) {
	pred := mustPrediction(t, abcd,
		[]float64{0.9, 0.4, 0.8, 0.1, 0.2, 0.3, 0.1, 0.6},
		make([]float64, 8),
	)
	got, err := RCut(pred, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0, 0, 0}, mat.Row(nil, 0, got.Bipartition()))
	assert.Equal(t, []float64{0, 0, 0, 1}, mat.Row(nil, 1, got.Bipartition()))

	_, err = RCut(pred, -1)
	assert.Error(t, err)
}

func TestFixedThreshold(t *testing.T) {
	pred := mustPrediction(t, abcd, []float64{0.9, 0.4, 0.5, 0.1}, make([]float64, 4))

	got, err := FixedThreshold(pred, 0.5)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0, 1, 0}, mat.Row(nil, 0, got.Bipartition()))

	got, err = FixedThreshold(pred, 0.95, 0.3, 0.6, 0.1)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 0, 1}, mat.Row(nil, 0, got.Bipartition()))

	_, err = FixedThreshold(pred, 0.5, 0.5)
	assert.Error(t, err)
	_, err = FixedThreshold(pred)
	assert.Error(t, err)
}

func TestMCut(t *testing.T) {
	pred := mustPrediction(t, abcd,
		[]float64{
			0.9, 0.85, 0.2, 0.1, // largest gap between 0.85 and 0.2
			0.3, 0.9, 0.25, 0.2, // largest gap between 0.9 and 0.3
			0.5, 0.5, 0.5, 0.5, // no gap
		},
		make([]float64, 12),
	)
	got, err := MCut(pred)
	require.NoError(t, err)
	bip := got.Bipartition()
	assert.Equal(t, []float64{1, 1, 0, 0}, mat.Row(nil, 0, bip))
	assert.Equal(t, []float64{0, 1, 0, 0}, mat.Row(nil, 1, bip))
	assert.Equal(t, []float64{1, 1, 1, 1}, mat.Row(nil, 2, bip))

	single := mustPrediction(t, []string{"A"}, []float64{0.7, 0.2}, []float64{0, 0})
	got, err = MCut(single)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0}, mat.Col(nil, 0, got.Bipartition()))
}
