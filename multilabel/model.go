// Package multilabel decomposes multi-label problems into binary
// sub-problems, trains them with a pluggable base learner and recombines
// their outputs.
//
// Three model kinds are supported: Binary Relevance (one independent model
// per label), Classifier Chain (each model also sees the preceding labels)
// and ensembles of either, built over resampled rows, attributes and label
// orders. Training and prediction run through core/parallel, so a seeded
// call returns the same result for any number of cores.
//
// Example:
//
//	ds, _ := dataset.New(attrs, labels, nil, []string{"A", "B", "C"})
//	lr := linear_model.NewLogisticRegression()
//	ens, err := multilabel.TrainEnsemble(ds, multilabel.DefaultEnsembleConfig(multilabel.KindChain), lr,
//	    multilabel.WithCores(4), multilabel.WithSeed(123))
//	res, err := multilabel.Predict(ens, test, multilabel.WithVoteSchema(multilabel.VoteAvg))
//	fmt.Println(res.Merged.Bipartition())
package multilabel

import (
	"strings"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/cran/utiml/core/dataset"
	"github.com/cran/utiml/pkg/errors"
	"github.com/cran/utiml/pkg/log"
)

// Kind tags the model variants.
type Kind string

// Model kinds.
const (
	KindBinary   Kind = "binary"
	KindChain    Kind = "chain"
	KindEnsemble Kind = "ensemble"
)

// ParseKind converts a decomposition name into a Kind. "br" and "cc" are
// accepted as short forms.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "binary", "br":
		return KindBinary, nil
	case "chain", "cc":
		return KindChain, nil
	case "ensemble":
		return KindEnsemble, nil
	}
	return "", errors.NewValidationError("kind", "unknown model kind", name)
}

// Model is a trained multi-label model. The set of implementations is closed:
// *BinaryModel, *ChainModel and *EnsembleModel.
type Model interface {
	Kind() Kind
	LabelNames() []string
	AttributeNames() []string
	sealed()
}

// Predict applies m to newdata. Columns of newdata are matched to the
// model's attributes by name; a missing attribute fails with
// SchemaMismatchError before any prediction runs.
//
// Binary and chain models return Result.Merged. Ensembles vote with the
// configured schema and calibrate the voted bipartition to the training
// cardinality; with VoteNone they return the member predictions unmerged.
func Predict(m Model, newdata *dataset.Dataset, opts ...Option) (*Result, error) {
	s := newSettings(opts)
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errors.NewValidationError("model", "must not be nil", nil)
	}
	if newdata == nil {
		return nil, errors.NewValidationError("newdata", "must not be nil", nil)
	}

	logger := s.logger("multilabel.predict")
	start := time.Now()

	var (
		res *Result
		err error
	)
	switch mm := m.(type) {
	case *BinaryModel:
		res, err = predictSingle(newdata, mm.attributes, s, mm.predict)
	case *ChainModel:
		res, err = predictSingle(newdata, mm.attributes, s, mm.predict)
	case *EnsembleModel:
		res, err = mm.predict(newdata, s)
	default:
		err = errors.NewValidationError("model", "unsupported model type", m)
	}
	if err != nil {
		code := log.ErrorTaskFailed
		var schemaErr *errors.SchemaMismatchError
		if errors.As(err, &schemaErr) {
			code = log.ErrorSchemaMismatch
		}
		logger.Error("Prediction failed", err,
			log.OperationKey, log.OperationPredict,
			log.ModelNameKey, string(m.Kind()),
			log.ErrorCodeKey, code,
		)
		return nil, err
	}

	logger.Debug("Prediction completed",
		log.OperationKey, log.OperationPredict,
		log.PhaseKey, log.PhaseInference,
		log.ModelNameKey, string(m.Kind()),
		log.SamplesKey, newdata.NumInstances(),
		log.VoteSchemaKey, string(s.VoteSchema),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return res, nil
}

func predictSingle(newdata *dataset.Dataset, attributes []string, s Settings,
	predict func(X *mat.Dense, s Settings) (*Prediction, error)) (*Result, error) {
	X, err := newdata.Project(attributes)
	if err != nil {
		return nil, err
	}
	pred, err := predict(X, s)
	if err != nil {
		return nil, err
	}
	return &Result{Merged: pred}, nil
}
