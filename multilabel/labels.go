package multilabel

import (
	mapset "github.com/deckarep/golang-set"

	"github.com/cran/utiml/core/dataset"
	"github.com/cran/utiml/pkg/errors"
)

func labelSet(labels []string) mapset.Set {
	s := mapset.NewThreadUnsafeSet()
	for _, l := range labels {
		s.Add(l)
	}
	return s
}

// selectLabels returns the requested labels in dataset order, or all labels
// when requested is empty.
func selectLabels(ds *dataset.Dataset, requested []string) ([]string, error) {
	all := ds.LabelNames()
	if len(requested) == 0 {
		return all, nil
	}

	want := labelSet(requested)
	if want.Cardinality() != len(requested) {
		return nil, errors.NewValidationError("labels", "duplicate label", requested)
	}
	if unknown := want.Difference(labelSet(all)); unknown.Cardinality() > 0 {
		return nil, errors.NewValidationError("labels", "unknown label", unknown.ToSlice())
	}

	out := make([]string, 0, len(requested))
	for _, l := range all {
		if want.Contains(l) {
			out = append(out, l)
		}
	}
	return out, nil
}

// validateChain checks that chain is a permutation of labels. An empty chain
// selects the label order itself.
func validateChain(labels, chain []string) ([]string, error) {
	if len(chain) == 0 {
		return append([]string(nil), labels...), nil
	}

	got := labelSet(chain)
	if got.Cardinality() != len(chain) {
		return nil, errors.NewValidationError("chain", "chain contains duplicate labels", chain)
	}
	want := labelSet(labels)
	if foreign := got.Difference(want); foreign.Cardinality() > 0 {
		return nil, errors.NewValidationError("chain", "chain contains unknown labels", foreign.ToSlice())
	}
	if missing := want.Difference(got); missing.Cardinality() > 0 {
		return nil, errors.NewValidationError("chain", "chain is missing labels", missing.ToSlice())
	}
	return append([]string(nil), chain...), nil
}

// labelTarget returns the training target of label and warns when it has a
// single value.
func labelTarget(ds *dataset.Dataset, label string) []float64 {
	j, _ := ds.LabelIndex(label)
	y := ds.LabelColumn(j)
	for _, v := range y[1:] {
		if v != y[0] {
			return y
		}
	}
	errors.Warn(errors.NewConstantLabelWarning(label, y[0], len(y)))
	return y
}

func requireLabels(ds *dataset.Dataset) error {
	if ds == nil {
		return errors.NewValidationError("dataset", "must not be nil", nil)
	}
	if !ds.HasLabels() || ds.NumLabels() == 0 {
		return errors.NewValidationError("dataset", "training requires a labeled dataset", ds.NumLabels())
	}
	return nil
}
