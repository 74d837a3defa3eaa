// Package bmeraw reads the .bmerawdata logs written by the BME68x
// development kit datalogger and flattens them into tables.
package bmeraw

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/chaymaerh/gaz-sensor-data-collection/pkg/data"
	"github.com/chaymaerh/gaz-sensor-data-collection/pkg/dataprep"
)

// Header is the rawDataHeader block of a log file.
type Header struct {
	CounterPowerOnOff int    `json:"counterPowerOnOff"`
	SeedPowerOnOff    string `json:"seedPowerOnOff"`
	CounterFileLimit  int    `json:"counterFileLimit"`
	DateCreated       string `json:"dateCreated"`
	DateCreatedISO    string `json:"dateCreated_ISO"`
	FirmwareVersion   string `json:"firmwareVersion"`
	BoardID           string `json:"boardId"`
}

// Column describes one entry of dataColumns.
type Column struct {
	Name   string `json:"name"`
	Unit   string `json:"unit"`
	Format string `json:"format"`
	Key    string `json:"key"`
}

// RawData is a decoded log: its header, the column descriptors and the
// row tuples of dataBlock. Cells keep their JSON text; null cells are "".
type RawData struct {
	Header  Header
	Columns []Column
	Rows    [][]json.Number
}

type rawFile struct {
	RawDataHeader *Header `json:"rawDataHeader"`
	RawDataBody   *struct {
		DataColumns []Column        `json:"dataColumns"`
		DataBlock   [][]json.Number `json:"dataBlock"`
	} `json:"rawDataBody"`
}

// Parse decodes a log. Rows are consumed positionally and must all have one
// cell per column.
func Parse(r io.Reader) (*RawData, error) {
	var f rawFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode raw data: %w", err)
	}
	if f.RawDataBody == nil {
		return nil, errors.New("rawDataBody is missing")
	}
	if len(f.RawDataBody.DataColumns) == 0 {
		return nil, errors.New("rawDataBody has no dataColumns")
	}

	raw := &RawData{
		Columns: f.RawDataBody.DataColumns,
		Rows:    f.RawDataBody.DataBlock,
	}
	if f.RawDataHeader != nil {
		raw.Header = *f.RawDataHeader
	}

	for i, row := range raw.Rows {
		if len(row) != len(raw.Columns) {
			return nil, fmt.Errorf("dataBlock row %d has %d values, expected %d", i, len(row), len(raw.Columns))
		}
	}
	return raw, nil
}

// Names returns the column names in file order.
func (r *RawData) Names() []string {
	names := make([]string, len(r.Columns))
	for i, c := range r.Columns {
		names[i] = c.Name
	}
	return names
}

// Table flattens the log into a table, one row per tuple.
func (r *RawData) Table() *data.Table {
	t := data.NewTable(r.Names()...)
	t.Rows = make([][]string, len(r.Rows))
	for i, row := range r.Rows {
		rec := make([]string, len(row))
		for j, v := range row {
			rec[j] = v.String()
		}
		t.Rows[i] = rec
	}
	return t
}

// CleanLabelTags rewrites zero values of the second-to-last column (the
// label tag in datalogger files) to one. It returns the number of cells
// changed.
//
// The rewrite has always been part of the conversion; nothing in the
// datalogger documents why tag 0 should become 1.
func CleanLabelTags(t *data.Table) int {
	if len(t.Header) < 2 {
		return 0
	}
	j := len(t.Header) - 2
	col := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		col[i] = row[j]
	}
	n := dataprep.ReplaceZero(col, "1")
	for i, row := range t.Rows {
		row[j] = col[i]
	}
	return n
}

// Convert reads a log from r and writes the cleaned table to w.
func Convert(r io.Reader, w io.Writer) (*RawData, error) {
	raw, err := Parse(r)
	if err != nil {
		return nil, err
	}
	t := raw.Table()
	CleanLabelTags(t)
	if err := data.WriteTable(w, t, data.Separator); err != nil {
		return nil, err
	}
	return raw, nil
}

// ConvertFile converts the log at in and writes the table to out. The output
// file is only created once the whole log has been parsed.
func ConvertFile(in, out string) (*RawData, error) {
	b, err := os.ReadFile(in)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	raw, err := Convert(bytes.NewReader(b), &buf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", in, err)
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return nil, err
	}

	slog.Info("Converted raw sensor log",
		"input", in,
		"output", out,
		"board", raw.Header.BoardID,
		"firmware", raw.Header.FirmwareVersion,
		"columns", len(raw.Columns),
		"rows", len(raw.Rows))
	return raw, nil
}
