// Package model はマルチラベル分解が利用するベース学習器のインターフェースを定義する。
// 各サブ問題は二値ターゲット1列を持ち、学習器は [0,1] のスコアと0/1の二分割を返す。
package model

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/cran/utiml/pkg/errors"
)

// BaseLearner は二値サブ問題を学習する外部アルゴリズムのインターフェース
type BaseLearner interface {
	// Name は学習器の識別名を返す
	Name() string

	// Train は特徴行列Xと0/1ターゲットyから学習済みモデルを作る。
	// rngはタスク専用の乱数ストリームで、呼び出しの外へ持ち出してはならない。
	Train(X mat.Matrix, y []float64, rng *rand.Rand) (BinaryModel, error)
}

// BinaryModel は学習済みのサブ問題モデル。学習後は不変で、並行にPredictしてよい。
type BinaryModel interface {
	// Predict は各行のスコアと二分割を返す
	Predict(X mat.Matrix) (*Prediction, error)
}

// Prediction はサブ問題1つ分の予測結果
type Prediction struct {
	Scores      []float64
	Bipartition []int
}

// NewPrediction はスコアから閾値threshold以上を1とする二分割を作る
func NewPrediction(scores []float64, threshold float64) *Prediction {
	bip := make([]int, len(scores))
	for i, s := range scores {
		if s >= threshold {
			bip[i] = 1
		}
	}
	return &Prediction{Scores: scores, Bipartition: bip}
}

// Validate は行数の一致、スコアの有限性、二分割が0/1であることを検証する。
// 範囲外のスコアは [0,1] に切り詰められる。
func (p *Prediction) Validate(op string, rows int) error {
	if p == nil {
		return errors.NewValueError(op, "base learner returned no prediction")
	}
	if len(p.Scores) != rows {
		return errors.NewDimensionError(op, rows, len(p.Scores), 0)
	}
	if len(p.Bipartition) != rows {
		return errors.NewDimensionError(op, rows, len(p.Bipartition), 0)
	}
	for i, s := range p.Scores {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return errors.NewNumericalInstabilityError(op, p.Scores, i)
		}
		p.Scores[i] = errors.ClipValue(s, 0, 1)
	}
	for _, b := range p.Bipartition {
		if b != 0 && b != 1 {
			return errors.NewValueError(op, "bipartition values must be 0 or 1")
		}
	}
	return nil
}
