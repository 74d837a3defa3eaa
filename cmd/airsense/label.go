package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/chaymaerh/gaz-sensor-data-collection/pkg/data"
	"github.com/chaymaerh/gaz-sensor-data-collection/pkg/dataprep"
	"github.com/chaymaerh/gaz-sensor-data-collection/pkg/pipeline"
)

func labelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "label",
		Short: "Append the air-quality label derived from the label tag",
		Args:  cobra.NoArgs,
		RunE:  runLabel,
	}

	cmd.Flags().StringP("input", "i", "", "sensor table")
	cmd.Flags().StringP("output", "o", "", "labeled table to write")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func runLabel(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	in, _ := cmd.Flags().GetString("input")
	out, _ := cmd.Flags().GetString("output")

	t, err := data.ReadTableFile(in, data.Separator)
	if err != nil {
		return err
	}
	if err := pipeline.Label(t, pipeline.Schema{Columns: cfg.Columns}); err != nil {
		return err
	}
	if err := data.WriteTableFile(out, t, data.Separator); err != nil {
		return err
	}

	labels, err := t.Column(cfg.Columns.Label)
	if err != nil {
		return err
	}
	return printCounts(cmd.OutOrStdout(), labels)
}

// printCounts writes how many rows fall in each class.
func printCounts(w io.Writer, labels []string) error {
	counts := map[string]int{}
	for _, l := range labels {
		counts[l]++
	}
	for _, class := range dataprep.Classes(labels) {
		if _, err := fmt.Fprintf(w, "%-12s %d\n", class, counts[class]); err != nil {
			return err
		}
	}
	return nil
}
