// Package report renders training results: text tables for the terminal,
// PNG plots and a JSON run summary.
package report

import (
	"fmt"
	"image/color"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"

	"github.com/chaymaerh/gaz-sensor-data-collection/pkg/nn"
)

// Plot size used for every figure.
var (
	FigureWidth  = 10 * vg.Inch
	FigureHeight = 7 * vg.Inch
)

// confusionGrid lays a confusion matrix out as a heat map grid: column c is
// the predicted class, and row 0 (the first actual class) is drawn on top.
type confusionGrid struct {
	cm [][]int
}

func (g confusionGrid) Dims() (c, r int)   { return len(g.cm), len(g.cm) }
func (g confusionGrid) Z(c, r int) float64 { return float64(g.cm[len(g.cm)-1-r][c]) }
func (g confusionGrid) X(c int) float64    { return float64(c) }
func (g confusionGrid) Y(r int) float64    { return float64(r) }

// ConfusionHeatmap draws an annotated heat map of cm and saves it to path.
// The image format follows the file extension.
func ConfusionHeatmap(cm [][]int, classes []string, path string) error {
	k := len(classes)
	if k == 0 || len(cm) != k {
		return fmt.Errorf("confusion matrix is %dx%d for %d classes", len(cm), len(cm), k)
	}

	p := plot.New()
	p.Title.Text = "Confusion Matrix"
	p.X.Label.Text = "Predicted"
	p.Y.Label.Text = "Actual"

	grid := confusionGrid{cm: cm}
	hm := plotter.NewHeatMap(grid, palette.Heat(12, 1))
	maxCount := 1
	for _, row := range cm {
		for _, v := range row {
			maxCount = max(maxCount, v)
		}
	}
	hm.Min, hm.Max = 0, float64(maxCount)
	p.Add(hm)

	var xys plotter.XYs
	var labels []string
	for r := range k {
		for c := range k {
			xys = append(xys, plotter.XY{X: grid.X(c), Y: grid.Y(r)})
			labels = append(labels, strconv.Itoa(int(grid.Z(c, r))))
		}
	}
	annotations, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return err
	}
	for i := range annotations.TextStyle {
		annotations.TextStyle[i].XAlign = text.XCenter
		annotations.TextStyle[i].YAlign = text.YCenter
		annotations.TextStyle[i].Color = color.Black
	}
	p.Add(annotations)

	actual := make([]string, k)
	for r := range k {
		actual[r] = classes[k-1-r]
	}
	p.NominalX(classes...)
	p.NominalY(actual...)

	return p.Save(FigureWidth, FigureHeight, path)
}

// LossCurves plots the training and validation loss of every epoch and
// saves the figure to path.
func LossCurves(h *nn.History, path string) error {
	if h == nil || len(h.Loss) == 0 {
		return fmt.Errorf("history has no epochs")
	}

	p := plot.New()
	p.Title.Text = "Loss Curves"
	p.X.Label.Text = "Epochs"
	p.Y.Label.Text = "Loss"
	p.Legend.Top = true

	series := []interface{}{"Training Loss", epochPoints(h.Loss)}
	if len(h.ValLoss) > 0 {
		series = append(series, "Validation Loss", epochPoints(h.ValLoss))
	}
	if err := plotutil.AddLines(p, series...); err != nil {
		return err
	}

	return p.Save(FigureWidth, FigureHeight, path)
}

func epochPoints(values []float64) plotter.XYs {
	pts := make(plotter.XYs, len(values))
	for i, v := range values {
		pts[i].X = float64(i)
		pts[i].Y = v
	}
	return pts
}
