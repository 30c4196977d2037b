// Package dataset は多ラベル分類のための読み取り専用データセットビューを提供します。
//
// Datasetは属性行列、ラベル行列(0/1)、ラベル名の順序、ラベル基数(インスタンス当たりの
// 平均正例ラベル数)を保持します。構築後は不変で、アクセサはコピーを返すため
// 複数のワーカーから同時に読み取っても安全です。
package dataset

import (
	"fmt"

	mapset "github.com/deckarep/golang-set"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/cran/utiml/pkg/errors"
)

// Dataset は多ラベルデータセットの不変ビュー
type Dataset struct {
	attrs       *mat.Dense
	labels      *mat.Dense // nil when the dataset carries no labels
	attrNames   []string
	labelNames  []string
	attrIndex   map[string]int
	labelIndex  map[string]int
	cardinality float64
}

// New は生の行列からDatasetを作成する
//
// パラメータ:
//   - attrs: インスタンス × 属性 の値
//   - labels: インスタンス × ラベル の0/1値
//   - attrNames: 属性名 (nilの場合は attr_0, attr_1, ... を生成)
//   - labelNames: ラベル名 (ラベル列と一対一)
func New(attrs, labels [][]float64, attrNames, labelNames []string) (*Dataset, error) {
	if len(attrs) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "dataset.New: no instances")
	}
	if len(labels) != len(attrs) {
		return nil, errors.NewDimensionError("dataset.New", len(attrs), len(labels), 0)
	}
	X, err := denseFromRows("dataset.New", attrs)
	if err != nil {
		return nil, err
	}
	Y, err := denseFromRows("dataset.New", labels)
	if err != nil {
		return nil, err
	}
	return build("dataset.New", X, Y, attrNames, labelNames)
}

// FromMatrices はgonumの行列からDatasetを作成する。データはコピーされる。
func FromMatrices(X, Y mat.Matrix, attrNames, labelNames []string) (*Dataset, error) {
	if X == nil || Y == nil {
		return nil, errors.Wrap(errors.ErrEmptyData, "dataset.FromMatrices: nil matrix")
	}
	return build("dataset.FromMatrices", mat.DenseCopyOf(X), mat.DenseCopyOf(Y), attrNames, labelNames)
}

// NewUnlabeled は予測対象の属性のみを持つDatasetを作成する
func NewUnlabeled(X mat.Matrix, attrNames []string) (*Dataset, error) {
	if X == nil {
		return nil, errors.Wrap(errors.ErrEmptyData, "dataset.NewUnlabeled: nil matrix")
	}
	return build("dataset.NewUnlabeled", mat.DenseCopyOf(X), nil, attrNames, nil)
}

func denseFromRows(op string, rows [][]float64) (*mat.Dense, error) {
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for _, row := range rows {
		if len(row) != cols {
			return nil, errors.NewDimensionError(op, cols, len(row), 1)
		}
		data = append(data, row...)
	}
	if cols == 0 {
		return nil, errors.Wrapf(errors.ErrEmptyData, "%s: rows have no columns", op)
	}
	return mat.NewDense(len(rows), cols, data), nil
}

func build(op string, X, Y *mat.Dense, attrNames, labelNames []string) (*Dataset, error) {
	n, p := X.Dims()
	if n == 0 || p == 0 {
		return nil, errors.Wrapf(errors.ErrEmptyData, "%s: empty attribute matrix", op)
	}

	if attrNames == nil {
		attrNames = make([]string, p)
		for j := range attrNames {
			attrNames[j] = fmt.Sprintf("attr_%d", j)
		}
	}
	if len(attrNames) != p {
		return nil, errors.NewDimensionError(op, p, len(attrNames), 1)
	}
	attrIndex, err := indexNames("attributes", attrNames)
	if err != nil {
		return nil, err
	}

	ds := &Dataset{
		attrs:     X,
		attrNames: slices.Clone(attrNames),
		attrIndex: attrIndex,
	}

	if Y == nil {
		return ds, nil
	}

	rows, q := Y.Dims()
	if rows != n {
		return nil, errors.NewDimensionError(op, n, rows, 0)
	}
	if len(labelNames) != q {
		return nil, errors.NewDimensionError(op, q, len(labelNames), 1)
	}
	labelIndex, err := indexNames("labels", labelNames)
	if err != nil {
		return nil, err
	}

	// ラベル名は連鎖の拡張特徴量名として使われるため属性名と重複してはならない
	overlap := mapset.NewSetFromSlice(toInterfaces(attrNames)).Intersect(mapset.NewSetFromSlice(toInterfaces(labelNames)))
	if overlap.Cardinality() > 0 {
		return nil, errors.NewValidationError("labels", "label names must not reuse attribute names", overlap.ToSlice())
	}

	positives := 0.0
	for i := 0; i < n; i++ {
		for j := 0; j < q; j++ {
			v := Y.At(i, j)
			if v != 0 && v != 1 {
				return nil, errors.NewValidationError("labels", fmt.Sprintf("entry (%d, %d) is not 0 or 1", i, j), v)
			}
			positives += v
		}
	}

	ds.labels = Y
	ds.labelNames = slices.Clone(labelNames)
	ds.labelIndex = labelIndex
	ds.cardinality = positives / float64(n)
	return ds, nil
}

func indexNames(param string, names []string) (map[string]int, error) {
	index := make(map[string]int, len(names))
	for j, name := range names {
		if name == "" {
			return nil, errors.NewValidationError(param, "names must not be empty", j)
		}
		if _, dup := index[name]; dup {
			return nil, errors.NewValidationError(param, "duplicated name", name)
		}
		index[name] = j
	}
	return index, nil
}

func toInterfaces(names []string) []interface{} {
	out := make([]interface{}, len(names))
	for i, name := range names {
		out[i] = name
	}
	return out
}

// NumInstances はインスタンス数を返す
func (d *Dataset) NumInstances() int {
	n, _ := d.attrs.Dims()
	return n
}

// NumAttributes は属性数を返す
func (d *Dataset) NumAttributes() int {
	return len(d.attrNames)
}

// NumLabels はラベル数を返す
func (d *Dataset) NumLabels() int {
	return len(d.labelNames)
}

// Attributes は属性行列のコピーを返す
func (d *Dataset) Attributes() *mat.Dense {
	return mat.DenseCopyOf(d.attrs)
}

// Labels はラベル行列のコピーを返す。ラベルを持たない場合はnil。
func (d *Dataset) Labels() *mat.Dense {
	if d.labels == nil {
		return nil
	}
	return mat.DenseCopyOf(d.labels)
}

// AttributeNames は列順の属性名を返す
func (d *Dataset) AttributeNames() []string {
	return slices.Clone(d.attrNames)
}

// LabelNames は列順のラベル名を返す
func (d *Dataset) LabelNames() []string {
	return slices.Clone(d.labelNames)
}

// LabelIndex はラベル名の列番号を返す
func (d *Dataset) LabelIndex(name string) (int, bool) {
	j, ok := d.labelIndex[name]
	return j, ok
}

// HasLabels はラベル行列を持つかどうか
func (d *Dataset) HasLabels() bool {
	return d.labels != nil
}

// Cardinality はインスタンス当たりの平均正例ラベル数を返す
func (d *Dataset) Cardinality() float64 {
	return d.cardinality
}

// Density はラベル基数をラベル数で割った値を返す
func (d *Dataset) Density() float64 {
	if len(d.labelNames) == 0 {
		return 0
	}
	return d.cardinality / float64(len(d.labelNames))
}

// LabelColumn はj番目のラベル列のコピーを返す
func (d *Dataset) LabelColumn(j int) []float64 {
	return mat.Col(nil, j, d.labels)
}

// LabelFrequency はj番目のラベルの正例の割合を返す
func (d *Dataset) LabelFrequency(j int) float64 {
	col := d.LabelColumn(j)
	return floats.Sum(col) / float64(len(col))
}
