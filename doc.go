// Package utiml provides multi-label classification for Go: problem
// transformation into binary sub-problems, ensembles over resampled data and
// threshold calibration of the combined scores.
//
// A multi-label dataset assigns every instance a subset of labels. utiml
// decomposes it into one binary problem per label, trains each with a
// pluggable base learner and merges the outputs into a prediction whose
// columns follow the dataset's label order.
//
// # Features
//
//   - Binary Relevance and Classifier Chains
//   - Ensembles of either over row, attribute and label-order resampling
//   - Voting (avg, max, min, maj) and cardinality calibration of ensembles
//   - Reproducible parallel training: a seeded call gives identical results
//     for any number of cores
//   - Structured errors (cockroachdb/errors) and logging (zerolog)
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/cran/utiml/core/dataset"
//	    "github.com/cran/utiml/multilabel"
//	    "github.com/cran/utiml/sklearn/linear_model"
//	)
//
//	func main() {
//	    ds, err := dataset.New(
//	        [][]float64{{1, 0}, {0, 1}, {1, 1}, {0, 0}},
//	        [][]float64{{1, 0}, {0, 1}, {1, 1}, {0, 0}},
//	        nil, []string{"A", "B"},
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    model, err := multilabel.TrainBinary(ds, linear_model.NewLogisticRegression(),
//	        multilabel.WithCores(2), multilabel.WithSeed(123))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    res, err := multilabel.Predict(model, ds)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println("Bipartition:", res.Merged.Bipartition())
//	}
//
// # Packages
//
//   - core/dataset: immutable multi-label dataset view
//   - core/parallel: reproducible task executor
//   - core/model: base learner interfaces
//   - multilabel: decompositions, ensembles, voting and thresholds
//   - sklearn/linear_model, sklearn/dummy: base learners
//   - config: YAML and environment configuration
//   - diagnostic: label-set size plots
//   - pkg/errors, pkg/log: error types and structured logging
package utiml
