// Package main contains the airsense CLI commands.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chaymaerh/gaz-sensor-data-collection/pkg/bmeraw"
)

func convertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Flatten a .bmerawdata log into a semicolon-delimited table",
		Long: `Reads the JSON log written by the BME AI-Studio board firmware and writes one
row per sample. Null cells are written as empty fields and zero label tags
are rewritten to 1.`,
		Args: cobra.NoArgs,
		RunE: runConvert,
	}

	cmd.Flags().StringP("input", "i", "", "raw .bmerawdata log")
	cmd.Flags().StringP("output", "o", "", "table to write")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func runConvert(cmd *cobra.Command, _ []string) error {
	in, _ := cmd.Flags().GetString("input")
	out, _ := cmd.Flags().GetString("output")

	raw, err := bmeraw.ConvertFile(in, out)
	if err != nil {
		return fmt.Errorf("failed to convert log: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d rows x %d columns to %s\n", len(raw.Rows), len(raw.Columns), out)
	return nil
}
