package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/chaymaerh/gaz-sensor-data-collection/pkg/data"
	"github.com/chaymaerh/gaz-sensor-data-collection/pkg/model"
	"github.com/chaymaerh/gaz-sensor-data-collection/pkg/pipeline"
)

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Predict the air-quality class of every row with a trained model",
		Long: `Loads a model written by "airsense train --model-output" and appends the
predicted class of every row of the input table.`,
		Args: cobra.NoArgs,
		RunE: runClassify,
	}

	cmd.Flags().StringP("model", "m", "", "model file")
	cmd.Flags().StringP("input", "i", "", "sensor table")
	cmd.Flags().StringP("output", "o", "", "table to write")
	cmd.Flags().String("column", "predicted", "name of the prediction column")
	_ = cmd.MarkFlagRequired("model")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func runClassify(cmd *cobra.Command, _ []string) error {
	modelPath, _ := cmd.Flags().GetString("model")
	in, _ := cmd.Flags().GetString("input")
	out, _ := cmd.Flags().GetString("output")
	column, _ := cmd.Flags().GetString("column")

	a, err := model.LoadArtifact(modelPath)
	if err != nil {
		return err
	}
	t, err := data.ReadTableFile(in, data.Separator)
	if err != nil {
		return err
	}
	if err := pipeline.Classify(a, t, column); err != nil {
		return err
	}
	if err := data.WriteTableFile(out, t, data.Separator); err != nil {
		return err
	}
	slog.Info("rows classified", "rows", t.Len(), "output", out)

	predicted, err := t.Column(column)
	if err != nil {
		return err
	}
	return printCounts(cmd.OutOrStdout(), predicted)
}
