package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cran/utiml/pkg/errors"
)

func TestNewPredictionThreshold(t *testing.T) {
	p := NewPrediction([]float64{0.1, 0.5, 0.49999, 0.9}, 0.5)
	assert.Equal(t, []int{0, 1, 0, 1}, p.Bipartition)
}

func TestPredictionValidate(t *testing.T) {
	p := &Prediction{Scores: []float64{-0.2, 0.4, 1.3}, Bipartition: []int{0, 0, 1}}
	require.NoError(t, p.Validate("predict", 3))
	assert.Equal(t, []float64{0, 0.4, 1}, p.Scores)

	err := p.Validate("predict", 4)
	var derr *errors.DimensionError
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, 4, derr.Expected)

	nan := &Prediction{Scores: []float64{math.NaN()}, Bipartition: []int{0}}
	var nerr *errors.NumericalInstabilityError
	assert.True(t, errors.As(nan.Validate("predict", 1), &nerr))

	bad := &Prediction{Scores: []float64{0.3}, Bipartition: []int{2}}
	assert.Error(t, bad.Validate("predict", 1))

	var nilPred *Prediction
	assert.Error(t, nilPred.Validate("predict", 1))
}
