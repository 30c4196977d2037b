package multilabel

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/cran/utiml/pkg/errors"
	"github.com/cran/utiml/pkg/log"
)

// Calibrate rewrites the bipartition of pred so that every instance has
// round(targetCardinality) positive labels, clamped to [0, q]. The labels
// with the highest scores are chosen; equal scores keep label order.
// Scores are left untouched.
func Calibrate(pred *Prediction, targetCardinality float64, probability bool) (*Prediction, error) {
	if math.IsNaN(targetCardinality) || math.IsInf(targetCardinality, 0) || targetCardinality < 0 {
		return nil, errors.NewValidationError("cardinality", "must be a finite non-negative number", targetCardinality)
	}
	k := int(math.Round(targetCardinality))

	log.GetLoggerWithName("multilabel.threshold").Debug("Calibrating label sets",
		log.OperationKey, log.OperationCalibrate,
		log.TargetCardinalityKey, targetCardinality,
		log.SamplesKey, pred.NumInstances(),
	)
	return pred.withBipartition(topK(pred.scores, k), probability), nil
}

// RCut marks the k highest-scoring labels of every instance as positive.
func RCut(pred *Prediction, k int) (*Prediction, error) {
	if k < 0 {
		return nil, errors.NewValidationError("k", "must be non-negative", k)
	}
	return pred.withBipartition(topK(pred.scores, k), pred.probability), nil
}

// FixedThreshold sets a label positive when its score is at least the
// threshold. A single threshold applies to every label; otherwise one
// threshold per label is required, in label order.
func FixedThreshold(pred *Prediction, thresholds ...float64) (*Prediction, error) {
	q := pred.NumLabels()
	switch len(thresholds) {
	case 1, q:
	default:
		return nil, errors.NewValidationError("thresholds", "expected one threshold or one per label", len(thresholds))
	}
	for _, t := range thresholds {
		if math.IsNaN(t) {
			return nil, errors.NewValidationError("thresholds", "must not be NaN", t)
		}
	}

	n := pred.NumInstances()
	bip := mat.NewDense(n, q, nil)
	for j := 0; j < q; j++ {
		t := thresholds[0]
		if len(thresholds) == q {
			t = thresholds[j]
		}
		for i := 0; i < n; i++ {
			if pred.scores.At(i, j) >= t {
				bip.Set(i, j, 1)
			}
		}
	}
	return pred.withBipartition(bip, pred.probability), nil
}

// MCut splits every instance's labels at the largest gap between
// consecutive sorted scores: labels above the midpoint of that gap are
// positive. With a single label the 0.5 threshold is used.
func MCut(pred *Prediction) (*Prediction, error) {
	n, q := pred.scores.Dims()
	if q < 2 {
		return FixedThreshold(pred, 0.5)
	}

	bip := mat.NewDense(n, q, nil)
	row := make([]float64, q)
	for i := 0; i < n; i++ {
		mat.Row(row, i, pred.scores)
		order := rankDescending(row)

		gap, cut := -1.0, 0.0
		for r := 0; r+1 < q; r++ {
			hi, lo := row[order[r]], row[order[r+1]]
			if d := hi - lo; d > gap {
				gap, cut = d, (hi+lo)/2
			}
		}
		for j, s := range row {
			if s > cut || gap == 0 {
				bip.Set(i, j, 1)
			}
		}
	}
	return pred.withBipartition(bip, pred.probability), nil
}

// topK returns a bipartition with the k best labels of each row set to 1.
func topK(scores *mat.Dense, k int) *mat.Dense {
	n, q := scores.Dims()
	if k > q {
		k = q
	}
	bip := mat.NewDense(n, q, nil)
	row := make([]float64, q)
	for i := 0; i < n; i++ {
		mat.Row(row, i, scores)
		for _, j := range rankDescending(row)[:k] {
			bip.Set(i, j, 1)
		}
	}
	return bip
}

// rankDescending returns column indices ordered by decreasing score.
// Ties keep the original column order.
func rankDescending(row []float64) []int {
	order := make([]int, len(row))
	for j := range order {
		order[j] = j
	}
	sort.SliceStable(order, func(a, b int) bool {
		return row[order[a]] > row[order[b]]
	})
	return order
}
