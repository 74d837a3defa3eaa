// Package pipeline chains the training stages: label, prepare, train and
// evaluate. Stages take and return plain values; Run adds the file I/O.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/chaymaerh/gaz-sensor-data-collection/pkg/config"
	"github.com/chaymaerh/gaz-sensor-data-collection/pkg/data"
	"github.com/chaymaerh/gaz-sensor-data-collection/pkg/dataprep"
	"github.com/chaymaerh/gaz-sensor-data-collection/pkg/loader"
	"github.com/chaymaerh/gaz-sensor-data-collection/pkg/model"
	"github.com/chaymaerh/gaz-sensor-data-collection/pkg/nn"
	"github.com/chaymaerh/gaz-sensor-data-collection/pkg/optim"
	"github.com/chaymaerh/gaz-sensor-data-collection/pkg/report"
	"github.com/chaymaerh/gaz-sensor-data-collection/pkg/stats"
)

// Plot file names written into the plot directory.
const (
	ConfusionPlot = "confusion_matrix.png"
	LossPlot      = "loss_curves.png"
)

// Label checks the raw columns of t and derives its label column.
func Label(t *data.Table, s Schema) error {
	if err := s.Validate(t.Header); err != nil {
		return err
	}
	return dataprep.DeriveLabels(t, s.Columns.Tag, s.Columns.Label)
}

// Prepared is a labeled table turned into scaled train and test partitions.
type Prepared struct {
	Features []string
	Classes  []string
	Rows     int

	// RawTrain is XTrain before scaling.
	RawTrain      [][]float64
	XTrain, XTest [][]float64
	YTrain, YTest [][]float64
	Scaler        *stats.StandardScaler
}

// Prepare encodes the labels of t, splits the rows and scales the features
// with statistics fitted on the training rows only.
func Prepare(t *data.Table, s Schema, testRatio float64, seed int64) (*Prepared, error) {
	if t.Index(s.Columns.Label) < 0 {
		return nil, fmt.Errorf("%w: %w", ErrMissingLabel, &data.ColumnError{Column: s.Columns.Label})
	}
	readings, err := s.Readings(t)
	if err != nil {
		return nil, err
	}
	if len(readings) == 0 {
		return nil, errors.New("no rows to train on")
	}

	X := make([][]float64, len(readings))
	labels := make([]string, len(readings))
	for i, r := range readings {
		X[i] = r.Features()
		labels[i] = r.Label
	}
	Y, classes := dataprep.EncodeCategorical(labels)

	XTrain, XTest, YTrain, YTest, err := loader.TrainTestSplit(X, Y, testRatio, seed)
	if err != nil {
		return nil, err
	}

	scaler := stats.NewStandardScaler()
	scaledTrain, err := scaler.FitTransform(XTrain)
	if err != nil {
		return nil, err
	}
	scaledTest, err := scaler.Transform(XTest)
	if err != nil {
		return nil, err
	}

	return &Prepared{
		Features: s.Features(),
		Classes:  classes,
		Rows:     len(readings),
		RawTrain: XTrain,
		XTrain:   scaledTrain,
		XTest:    scaledTest,
		YTrain:   YTrain,
		YTest:    YTest,
		Scaler:   scaler,
	}, nil
}

// Train builds a network sized for p and fits it, validating on the test
// partition after every epoch.
func Train(ctx context.Context, p *Prepared, t config.Training, onEpoch func(nn.EpochStats)) (*nn.Network, *nn.History, error) {
	rng := rand.New(rand.NewSource(t.Seed))

	sizes := append([]int{len(p.Features)}, t.Hidden...)
	sizes = append(sizes, len(p.Classes))
	net, err := nn.New(sizes, t.Activation, rng)
	if err != nil {
		return nil, nil, err
	}
	opt, err := optim.New(t.Optimizer, t.LearningRate)
	if err != nil {
		return nil, nil, err
	}

	h, err := net.Fit(ctx, p.XTrain, p.YTrain, p.XTest, p.YTest, nn.FitOptions{
		Epochs:    t.Epochs,
		BatchSize: t.BatchSize,
		Optimizer: opt,
		Rand:      rng,
		OnEpoch:   onEpoch,
	})
	if err != nil {
		return nil, h, err
	}
	return net, h, nil
}

// Evaluate scores c on the test partition of p.
func Evaluate(c model.Classifier, p *Prepared) (*model.Evaluation, error) {
	return model.Evaluate(c, p.XTest, p.YTest, p.Classes)
}

// Classify predicts every row of t with a and stores the class names in
// column.
func Classify(a *model.Artifact, t *data.Table, column string) error {
	X, err := dataprep.FeatureSelect(t, a.Features)
	if err != nil {
		return err
	}
	predicted, err := a.Classify(X)
	if err != nil {
		return err
	}
	return t.SetColumn(column, predicted)
}

// Options are the per-run hooks of Run.
type Options struct {
	OnEpoch func(nn.EpochStats)
}

// Result is everything a training run produced.
type Result struct {
	Prepared   *Prepared
	Network    *nn.Network
	History    *nn.History
	Evaluation *model.Evaluation
	Summary    *report.Summary
	Plots      []string
}

// LabeledPath is where Run writes the labeled table: configured when set,
// otherwise <stem>_labeled<ext> next to input.
func LabeledPath(input, configured string) string {
	if configured != "" {
		return configured
	}
	ext := filepath.Ext(input)
	if ext == "" {
		ext = ".csv"
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + "_labeled" + ext
}

// Run reads input, labels it, saves and re-reads the labeled table, trains
// and evaluates a classifier, then writes the outputs configured in
// cfg.Output.
func Run(ctx context.Context, cfg config.Config, input string, opts Options) (*Result, error) {
	s := Schema{Columns: cfg.Columns}

	t, err := data.ReadTableFile(input, data.Separator)
	if err != nil {
		return nil, err
	}
	if err := Label(t, s); err != nil {
		return nil, err
	}

	labeled := LabeledPath(input, cfg.Output.Labeled)
	if err := data.WriteTableFile(labeled, t, data.Separator); err != nil {
		return nil, err
	}
	slog.Info("labeled data saved", "path", labeled, "rows", t.Len())
	if t, err = data.ReadTableFile(labeled, data.Separator); err != nil {
		return nil, err
	}

	p, err := Prepare(t, s, cfg.Training.TestRatio, cfg.Training.Seed)
	if err != nil {
		return nil, err
	}
	slog.Info("data prepared",
		"rows", p.Rows, "train", len(p.XTrain), "test", len(p.XTest), "classes", p.Classes)

	net, h, err := Train(ctx, p, cfg.Training, opts.OnEpoch)
	if err != nil {
		return nil, err
	}
	ev, err := Evaluate(net, p)
	if err != nil {
		return nil, err
	}
	slog.Info("model evaluated", "accuracy", ev.Accuracy)

	res := &Result{Prepared: p, Network: net, History: h, Evaluation: ev}
	if err := writeOutputs(cfg, input, res); err != nil {
		return res, err
	}
	return res, nil
}

func writeOutputs(cfg config.Config, input string, res *Result) error {
	p := res.Prepared

	if dir := cfg.Output.PlotDir; dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		confusion := filepath.Join(dir, ConfusionPlot)
		if err := report.ConfusionHeatmap(res.Evaluation.Confusion, p.Classes, confusion); err != nil {
			return fmt.Errorf("failed to plot confusion matrix: %w", err)
		}
		loss := filepath.Join(dir, LossPlot)
		if err := report.LossCurves(res.History, loss); err != nil {
			return fmt.Errorf("failed to plot loss curves: %w", err)
		}
		res.Plots = []string{confusion, loss}
		slog.Info("plots saved", "dir", dir)
	}

	if path := cfg.Output.Model; path != "" {
		if err := model.NewArtifact(res.Network, p.Scaler, p.Features, p.Classes).Save(path); err != nil {
			return err
		}
		slog.Info("model saved", "path", path)
	}

	sum := report.NewSummary(input)
	sum.Rows = p.Rows
	sum.TrainRows = len(p.XTrain)
	sum.TestRows = len(p.XTest)
	sum.Features = p.Features
	sum.Settings = map[string]any{
		"test_ratio":    cfg.Training.TestRatio,
		"seed":          cfg.Training.Seed,
		"hidden":        cfg.Training.Hidden,
		"activation":    cfg.Training.Activation,
		"optimizer":     cfg.Training.Optimizer,
		"learning_rate": cfg.Training.LearningRate,
		"epochs":        cfg.Training.Epochs,
		"batch_size":    cfg.Training.BatchSize,
	}
	sum.History = res.History
	sum.Evaluation = res.Evaluation
	res.Summary = sum

	if path := cfg.Output.Report; path != "" {
		if err := sum.WriteJSON(path); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		slog.Info("report saved", "path", path, "run_id", sum.RunID)
	}
	return nil
}
