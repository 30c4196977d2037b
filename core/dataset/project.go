package dataset

import (
	"gonum.org/v1/gonum/mat"

	"github.com/cran/utiml/pkg/errors"
)

// Project は指定した名前の属性列を指定順で並べた行列を返す。
// 存在しない列があればSchemaMismatchErrorを返す。
func (d *Dataset) Project(attrNames []string) (*mat.Dense, error) {
	cols := make([]int, len(attrNames))
	var missing []string
	for k, name := range attrNames {
		j, ok := d.attrIndex[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		cols[k] = j
	}
	if len(missing) > 0 {
		return nil, errors.NewSchemaMismatchError("dataset.Project", missing)
	}

	n := d.NumInstances()
	out := mat.NewDense(n, len(cols), nil)
	for i := 0; i < n; i++ {
		for k, j := range cols {
			out.Set(i, k, d.attrs.At(i, j))
		}
	}
	return out, nil
}

// Subset は行と属性を選択した新しいDatasetを作成する。
// rowsは重複を許す(復元抽出)。ラベル基数はサブセットから再計算される。
func (d *Dataset) Subset(rows []int, attrNames []string) (*Dataset, error) {
	if len(rows) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "dataset.Subset: no rows selected")
	}
	if len(attrNames) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "dataset.Subset: no attributes selected")
	}
	n := d.NumInstances()
	for _, r := range rows {
		if r < 0 || r >= n {
			return nil, errors.NewValueError("dataset.Subset", "row index out of range")
		}
	}

	projected, err := d.Project(attrNames)
	if err != nil {
		return nil, err
	}

	_, p := projected.Dims()
	X := mat.NewDense(len(rows), p, nil)
	for k, r := range rows {
		X.SetRow(k, projected.RawRowView(r))
	}

	if d.labels == nil {
		return build("dataset.Subset", X, nil, attrNames, nil)
	}
	q := d.NumLabels()
	Y := mat.NewDense(len(rows), q, nil)
	for k, r := range rows {
		Y.SetRow(k, d.labels.RawRowView(r))
	}
	return build("dataset.Subset", X, Y, attrNames, d.labelNames)
}

// AugmentedAttributes は属性行列の右に指定ラベルの真値を連結した行列を返す。
// 列名は属性名の後にラベル名が続く。
func (d *Dataset) AugmentedAttributes(labelNames []string) (*mat.Dense, []string, error) {
	names := append(d.AttributeNames(), labelNames...)
	if len(labelNames) == 0 {
		return d.Attributes(), names, nil
	}

	n := d.NumInstances()
	extra := mat.NewDense(n, len(labelNames), nil)
	for k, name := range labelNames {
		j, ok := d.labelIndex[name]
		if !ok {
			return nil, nil, errors.NewValidationError("labels", "unknown label", name)
		}
		extra.SetCol(k, d.LabelColumn(j))
	}

	var aug mat.Dense
	aug.Augment(d.attrs, extra)
	return &aug, names, nil
}
