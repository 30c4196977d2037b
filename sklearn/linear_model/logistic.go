// Package linear_model provides linear base learners for binary sub-problems.
package linear_model

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/cran/utiml/core/model"
	"github.com/cran/utiml/pkg/errors"
)

// LogisticRegression is a binary logistic regression learner trained by
// gradient descent with an L2 penalty. It holds hyperparameters only; Train
// returns an immutable LogisticModel.
type LogisticRegression struct {
	// Hyperparameters
	penalty      string  // Regularization: "l2", "none"
	C            float64 // Inverse regularization strength (1/alpha)
	fitIntercept bool    // Whether to fit intercept
	maxIter      int     // Maximum iterations
	tol          float64 // Tolerance for stopping
	learningRate float64 // Base step size, decayed per iteration
	threshold    float64 // Score at or above which the bipartition is 1
}

// LogisticRegressionOption is a functional option for LogisticRegression
type LogisticRegressionOption func(*LogisticRegression)

// NewLogisticRegression creates a new LogisticRegression learner
func NewLogisticRegression(opts ...LogisticRegressionOption) *LogisticRegression {
	lr := &LogisticRegression{
		penalty:      "l2",
		C:            1.0,
		fitIntercept: true,
		maxIter:      100,
		tol:          1e-4,
		learningRate: 1.0,
		threshold:    0.5,
	}

	for _, opt := range opts {
		opt(lr)
	}

	return lr
}

// Option functions

// WithLRPenalty sets the regularization type
func WithLRPenalty(penalty string) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.penalty = penalty
	}
}

// WithLRC sets the inverse regularization strength
func WithLRC(c float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.C = c
	}
}

// WithLogisticFitIntercept sets whether to fit intercept
func WithLogisticFitIntercept(fit bool) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.fitIntercept = fit
	}
}

// WithLRMaxIter sets the maximum number of iterations
func WithLRMaxIter(maxIter int) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.maxIter = maxIter
	}
}

// WithLRTol sets the tolerance for stopping criteria
func WithLRTol(tol float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.tol = tol
	}
}

// WithLRLearningRate sets the base learning rate
func WithLRLearningRate(rate float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.learningRate = rate
	}
}

// WithLRThreshold sets the score threshold used for the bipartition
func WithLRThreshold(threshold float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.threshold = threshold
	}
}

// Name returns the learner name.
func (lr *LogisticRegression) Name() string {
	return "logistic"
}

func (lr *LogisticRegression) validate() error {
	if lr.C <= 0 {
		return errors.NewValidationError("C", "must be positive", lr.C)
	}
	if lr.maxIter < 1 {
		return errors.NewValidationError("max_iter", "must be at least 1", lr.maxIter)
	}
	if lr.tol < 0 {
		return errors.NewValidationError("tol", "must be non-negative", lr.tol)
	}
	if lr.learningRate <= 0 {
		return errors.NewValidationError("learning_rate", "must be positive", lr.learningRate)
	}
	if lr.penalty != "l2" && lr.penalty != "none" {
		return errors.NewValidationError("penalty", "must be \"l2\" or \"none\"", lr.penalty)
	}
	return nil
}

// Train fits the model on X and the 0/1 target y. Initial weights are drawn
// from rng so training is reproducible under a seeded stream.
func (lr *LogisticRegression) Train(X mat.Matrix, y []float64, rng *rand.Rand) (model.BinaryModel, error) {
	if err := lr.validate(); err != nil {
		return nil, err
	}

	nSamples, nFeatures := X.Dims()
	if nSamples == 0 {
		return nil, errors.ErrEmptyData
	}
	if len(y) != nSamples {
		return nil, errors.NewDimensionError("LogisticRegression.Train", nSamples, len(y), 0)
	}
	for _, v := range y {
		if v != 0 && v != 1 {
			return nil, errors.NewValueError("LogisticRegression.Train", fmt.Sprintf("target values must be 0 or 1, got %g", v))
		}
	}

	// Initialize with small random values
	weights := make([]float64, nFeatures)
	for j := range weights {
		weights[j] = rng.NormFloat64() * 0.01
	}
	intercept := 0.0

	rows := make([][]float64, nSamples)
	for i := range rows {
		rows[i] = mat.Row(nil, i, X)
	}

	gradWeights := make([]float64, nFeatures)
	nIter := 0
	converged := false

	for iter := 0; iter < lr.maxIter; iter++ {
		for j := range gradWeights {
			gradWeights[j] = 0
		}
		gradIntercept := 0.0

		for i, row := range rows {
			residual := sigmoid(floats.Dot(row, weights)+intercept) - y[i]
			gradIntercept += residual
			floats.AddScaled(gradWeights, residual, row)
		}

		// Scale gradients by number of samples
		floats.Scale(1/float64(nSamples), gradWeights)
		gradIntercept /= float64(nSamples)

		// Add L2 regularization gradient
		if lr.penalty == "l2" {
			floats.AddScaled(gradWeights, 1.0/lr.C, weights)
		}

		// Adaptive learning rate
		step := lr.learningRate / (1.0 + 0.1*float64(iter))

		floats.AddScaled(weights, -step, gradWeights)
		if lr.fitIntercept {
			intercept -= step * gradIntercept
		}
		nIter = iter + 1

		if err := errors.CheckNumericalStability("LogisticRegression.Train", weights, iter); err != nil {
			return nil, err
		}

		// Check convergence
		maxGrad := math.Abs(gradIntercept)
		if nFeatures > 0 {
			maxGrad = math.Max(maxGrad, math.Max(floats.Max(gradWeights), -floats.Min(gradWeights)))
		}
		if maxGrad < lr.tol {
			converged = true
			break
		}
	}

	if !converged {
		errors.Warn(errors.NewConvergenceWarning("LogisticRegression", nIter, ""))
	}

	return &LogisticModel{
		coef:      weights,
		intercept: intercept,
		threshold: lr.threshold,
		nIter:     nIter,
	}, nil
}

// GetParams returns the model hyperparameters
func (lr *LogisticRegression) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"penalty":       lr.penalty,
		"C":             lr.C,
		"fit_intercept": lr.fitIntercept,
		"max_iter":      lr.maxIter,
		"tol":           lr.tol,
		"learning_rate": lr.learningRate,
		"threshold":     lr.threshold,
	}
}

// SetParams sets the model hyperparameters
func (lr *LogisticRegression) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		var ok bool
		switch key {
		case "penalty":
			lr.penalty, ok = value.(string)
		case "C":
			lr.C, ok = value.(float64)
		case "fit_intercept":
			lr.fitIntercept, ok = value.(bool)
		case "max_iter":
			lr.maxIter, ok = value.(int)
		case "tol":
			lr.tol, ok = value.(float64)
		case "learning_rate":
			lr.learningRate, ok = value.(float64)
		case "threshold":
			lr.threshold, ok = value.(float64)
		default:
			return errors.NewValidationError(key, "unknown parameter", value)
		}
		if !ok {
			return errors.NewValidationError(key, fmt.Sprintf("unexpected type %T", value), value)
		}
	}
	return lr.validate()
}

// LogisticModel is a trained binary logistic regression.
type LogisticModel struct {
	coef      []float64
	intercept float64
	threshold float64
	nIter     int
}

// Coef returns a copy of the learned coefficients.
func (m *LogisticModel) Coef() []float64 {
	out := make([]float64, len(m.coef))
	copy(out, m.coef)
	return out
}

// Intercept returns the learned intercept.
func (m *LogisticModel) Intercept() float64 {
	return m.intercept
}

// NIter returns the number of gradient steps taken.
func (m *LogisticModel) NIter() int {
	return m.nIter
}

// Predict returns the positive-class probability and bipartition per row.
func (m *LogisticModel) Predict(X mat.Matrix) (*model.Prediction, error) {
	nSamples, nFeatures := X.Dims()
	if nFeatures != len(m.coef) {
		return nil, errors.NewDimensionError("LogisticModel.Predict", len(m.coef), nFeatures, 1)
	}

	scores := make([]float64, nSamples)
	row := make([]float64, nFeatures)
	for i := range scores {
		mat.Row(row, i, X)
		scores[i] = sigmoid(floats.Dot(row, m.coef) + m.intercept)
	}
	return model.NewPrediction(scores, m.threshold), nil
}

// sigmoid computes the sigmoid function
func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + errors.StabilizeExp(-z))
}
