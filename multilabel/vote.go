package multilabel

import (
	"strings"

	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/cran/utiml/pkg/errors"
	"github.com/cran/utiml/pkg/log"
)

// VoteSchema names the rule that merges ensemble member predictions.
type VoteSchema string

// Supported vote schemas. VoteNone returns the members unmerged.
const (
	VoteAvg  VoteSchema = "avg"
	VoteMax  VoteSchema = "max"
	VoteMin  VoteSchema = "min"
	VoteMaj  VoteSchema = "maj"
	VoteNone VoteSchema = "none"
)

// ParseVoteSchema converts a name into a VoteSchema. "", "none" and "null"
// all select VoteNone.
func ParseVoteSchema(name string) (VoteSchema, error) {
	switch s := strings.ToLower(strings.TrimSpace(name)); s {
	case "", "none", "null":
		return VoteNone, nil
	default:
		if v := VoteSchema(s); v.valid() {
			return v, nil
		}
		return "", errors.NewValidationError("vote_schema", "unsupported vote schema", name)
	}
}

func (v VoteSchema) valid() bool {
	switch v {
	case VoteAvg, VoteMax, VoteMin, VoteMaj, VoteNone:
		return true
	}
	return false
}

// Result is the outcome of Predict or Vote. Merged holds the single combined
// prediction. Members is filled instead when an ensemble is predicted with
// VoteNone and holds one prediction per member in member order.
type Result struct {
	Merged  *Prediction
	Members []*Prediction
}

// Vote combines member predictions label by label. For every schema other
// than VoteNone the aggregated bipartition is score >= 0.5.
func Vote(members []*Prediction, schema VoteSchema, probability bool) (*Result, error) {
	if !schema.valid() {
		return nil, errors.NewValidationError("vote_schema", "unsupported vote schema", string(schema))
	}
	if len(members) == 0 {
		return nil, errors.NewValidationError("members", "at least one member prediction is required", 0)
	}
	first := members[0]
	n, q := first.NumInstances(), first.NumLabels()
	for k, m := range members[1:] {
		if !slices.Equal(m.labels, first.labels) {
			return nil, errors.NewValidationError("members", "member labels differ from the first member", k+1)
		}
		if m.NumInstances() != n {
			return nil, errors.NewDimensionError("multilabel.Vote", n, m.NumInstances(), 0)
		}
	}

	if schema == VoteNone {
		out := make([]*Prediction, len(members))
		for k, m := range members {
			out[k] = m.withProbability(probability)
		}
		return &Result{Members: out}, nil
	}

	scores := mat.NewDense(n, q, nil)
	bip := mat.NewDense(n, q, nil)
	values := make([]float64, len(members))
	for i := 0; i < n; i++ {
		for j := 0; j < q; j++ {
			for k, m := range members {
				if schema == VoteMaj {
					values[k] = m.bipartition.At(i, j)
				} else {
					values[k] = m.scores.At(i, j)
				}
			}
			s := combine(schema, values)
			scores.Set(i, j, s)
			if s >= 0.5 {
				bip.Set(i, j, 1)
			}
		}
	}

	log.GetLoggerWithName("multilabel.vote").Debug("Members aggregated",
		log.OperationKey, log.OperationVote,
		log.VoteSchemaKey, string(schema),
		log.MembersKey, len(members),
		log.SamplesKey, n,
	)

	return &Result{Merged: &Prediction{
		labels:      slices.Clone(first.labels),
		scores:      scores,
		bipartition: bip,
		probability: probability,
	}}, nil
}

func combine(schema VoteSchema, values []float64) float64 {
	switch schema {
	case VoteMax:
		return floats.Max(values)
	case VoteMin:
		return floats.Min(values)
	default:
		// avg over scores, maj over bipartitions
		return stat.Mean(values, nil)
	}
}
