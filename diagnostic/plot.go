// Package diagnostic renders plots of multi-label predictions.
package diagnostic

import (
	"fmt"
	"image/color"
	"math"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/cran/utiml/multilabel"
	"github.com/cran/utiml/pkg/errors"
)

// LabelSetSizeCounts returns how many instances have each label-set size:
// counts[k] is the number of instances with k positive labels.
func LabelSetSizeCounts(pred *multilabel.Prediction) []int {
	counts := make([]int, pred.NumLabels()+1)
	for _, size := range pred.LabelSetSizes() {
		counts[size]++
	}
	return counts
}

// PlotLabelSetSizes draws a bar chart of predicted label-set sizes with a
// vertical line at target, usually the training cardinality. The image
// format follows the extension of path (png, svg, pdf, ...).
func PlotLabelSetSizes(pred *multilabel.Prediction, target float64, path string) error {
	if pred == nil {
		return errors.NewValidationError("prediction", "must not be nil", nil)
	}
	if math.IsNaN(target) || target < 0 {
		return errors.NewValidationError("target", "must be a non-negative number", target)
	}

	counts := LabelSetSizeCounts(pred)
	values := make(plotter.Values, len(counts))
	names := make([]string, len(counts))
	maxCount := 0
	for k, c := range counts {
		values[k] = float64(c)
		names[k] = strconv.Itoa(k)
		if c > maxCount {
			maxCount = c
		}
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Label-set sizes (cardinality %.2f)", pred.Cardinality())
	p.X.Label.Text = "positive labels per instance"
	p.Y.Label.Text = "instances"

	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return errors.Wrap(err, "diagnostic: bar chart")
	}
	bars.Color = color.RGBA{R: 70, G: 110, B: 180, A: 255}
	p.Add(bars)
	p.NominalX(names...)

	line, err := plotter.NewLine(plotter.XYs{{X: target, Y: 0}, {X: target, Y: float64(maxCount)}})
	if err != nil {
		return errors.Wrap(err, "diagnostic: target line")
	}
	line.LineStyle.Width = vg.Points(2)
	line.LineStyle.Color = color.RGBA{R: 200, G: 40, B: 40, A: 255}
	line.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	p.Add(line)
	p.Legend.Add("target", line)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "diagnostic: save %s", path)
	}
	return nil
}
