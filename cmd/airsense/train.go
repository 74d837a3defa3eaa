package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/chaymaerh/gaz-sensor-data-collection/pkg/config"
	"github.com/chaymaerh/gaz-sensor-data-collection/pkg/nn"
	"github.com/chaymaerh/gaz-sensor-data-collection/pkg/pipeline"
	"github.com/chaymaerh/gaz-sensor-data-collection/pkg/report"
)

// previewRows is how many training rows are echoed before and after scaling.
const previewRows = 5

func trainCmd() *cobra.Command {
	d := config.Default()
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Label a sensor table, train the classifier and report on it",
		Long: `Derives the label column, splits the rows into train and test partitions,
standardizes the features and trains a dense network. Accuracy, the
classification report and the confusion matrix are printed. The labeled table
is always written; plots, the model and a JSON summary are written where
configured.`,
		Args: cobra.NoArgs,
		RunE: runTrain,
	}

	cmd.Flags().StringP("input", "i", "", "sensor table")
	cmd.Flags().Bool("quiet", false, "hide the epoch progress bar")
	_ = cmd.MarkFlagRequired("input")

	cmd.Flags().String("labeled-output", d.Output.Labeled, "write the labeled table here (default: <input>_labeled.csv next to the input)")
	cmd.Flags().String("plots-dir", d.Output.PlotDir, "directory for the PNG plots (empty to skip)")
	cmd.Flags().String("model-output", d.Output.Model, "write the trained model here")
	cmd.Flags().String("report-output", d.Output.Report, "write a JSON run summary here")
	cmd.Flags().Int("epochs", d.Training.Epochs, "training epochs")
	cmd.Flags().Int("batch-size", d.Training.BatchSize, "mini-batch size")
	cmd.Flags().Int64("seed", d.Training.Seed, "seed for the split, weights and shuffling")
	cmd.Flags().Float64("test-ratio", d.Training.TestRatio, "share of rows held out for evaluation")
	cmd.Flags().Float64("learning-rate", d.Training.LearningRate, "optimizer learning rate")
	cmd.Flags().IntSlice("hidden", d.Training.Hidden, "hidden layer sizes")
	cmd.Flags().String("optimizer", d.Training.Optimizer, "adam or sgd")
	cmd.Flags().String("activation", d.Training.Activation, "hidden activation (relu, sigmoid, tanh)")

	_ = viper.BindPFlag("output.labeled", cmd.Flags().Lookup("labeled-output"))
	_ = viper.BindPFlag("output.plot_dir", cmd.Flags().Lookup("plots-dir"))
	_ = viper.BindPFlag("output.model", cmd.Flags().Lookup("model-output"))
	_ = viper.BindPFlag("output.report", cmd.Flags().Lookup("report-output"))
	_ = viper.BindPFlag("training.epochs", cmd.Flags().Lookup("epochs"))
	_ = viper.BindPFlag("training.batch_size", cmd.Flags().Lookup("batch-size"))
	_ = viper.BindPFlag("training.seed", cmd.Flags().Lookup("seed"))
	_ = viper.BindPFlag("training.test_ratio", cmd.Flags().Lookup("test-ratio"))
	_ = viper.BindPFlag("training.learning_rate", cmd.Flags().Lookup("learning-rate"))
	_ = viper.BindPFlag("training.hidden", cmd.Flags().Lookup("hidden"))
	_ = viper.BindPFlag("training.optimizer", cmd.Flags().Lookup("optimizer"))
	_ = viper.BindPFlag("training.activation", cmd.Flags().Lookup("activation"))

	return cmd
}

func runTrain(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	input, _ := cmd.Flags().GetString("input")
	quiet, _ := cmd.Flags().GetBool("quiet")

	slog.Debug("training settings", "training", cfg.Training, "output", cfg.Output)

	var opts pipeline.Options
	if !quiet {
		bar := newEpochBar(cmd.ErrOrStderr(), cfg.Training.Epochs)
		opts.OnEpoch = func(s nn.EpochStats) {
			bar.Describe(fmt.Sprintf("loss %.4f  val_loss %.4f", s.Loss, s.ValLoss))
			if err := bar.Add(1); err != nil {
				slog.Warn("Failed to update progress bar", "error", err)
			}
		}
	}

	res, err := pipeline.Run(cmd.Context(), cfg, input, opts)
	if err != nil {
		return err
	}
	return printResult(cmd.OutOrStdout(), res)
}

func newEpochBar(w io.Writer, epochs int) *progressbar.ProgressBar {
	return progressbar.NewOptions(epochs,
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription("training"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(w); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}

func printResult(w io.Writer, res *pipeline.Result) error {
	p := res.Prepared
	ev := res.Evaluation

	fmt.Fprintln(w, "Training features:")
	if err := report.Preview(w, p.Features, p.RawTrain, previewRows); err != nil {
		return err
	}
	fmt.Fprintln(w, "\nScaled training features:")
	if err := report.Preview(w, p.Features, p.XTrain, previewRows); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nAccuracy: %.4f\n\n", ev.Accuracy)
	fmt.Fprintln(w, "Classification Report:")
	if err := report.FormatReport(w, ev.Report); err != nil {
		return err
	}
	fmt.Fprintln(w, "\nConfusion Matrix:")
	if err := report.FormatConfusion(w, ev.Confusion, ev.Classes); err != nil {
		return err
	}

	for _, path := range res.Plots {
		fmt.Fprintf(w, "Saved %s\n", path)
	}
	return nil
}
