package data

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

// Separator is the field delimiter of every table this module reads or writes.
const Separator = ';'

// ErrMissingColumn is returned when a table lacks a column a stage depends on.
var ErrMissingColumn = errors.New("missing column")

// ColumnError names the column that could not be found.
type ColumnError struct {
	Column string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("%s: %q", ErrMissingColumn, e.Column)
}

func (e *ColumnError) Unwrap() error { return ErrMissingColumn }

// Table is a header plus string rows, kept verbatim so a table can be
// written back without reformatting the numbers it was read with.
type Table struct {
	Header []string
	Rows   [][]string
}

// NewTable allocates an empty table with the given header.
func NewTable(header ...string) *Table {
	h := make([]string, len(header))
	copy(h, header)
	return &Table{Header: h}
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

// Index returns the position of column name, or -1.
func (t *Table) Index(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Column returns a copy of the named column.
func (t *Table) Column(name string) ([]string, error) {
	j := t.Index(name)
	if j < 0 {
		return nil, &ColumnError{Column: name}
	}
	col := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		col[i] = row[j]
	}
	return col, nil
}

// AppendColumn adds a column at the right edge of the table.
func (t *Table) AppendColumn(name string, values []string) error {
	if len(values) != len(t.Rows) {
		return fmt.Errorf("column %q has %d values, table has %d rows", name, len(values), len(t.Rows))
	}
	t.Header = append(t.Header, name)
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], values[i])
	}
	return nil
}

// SetColumn replaces the values of an existing column, or appends the column
// when the table does not have it yet.
func (t *Table) SetColumn(name string, values []string) error {
	j := t.Index(name)
	if j < 0 {
		return t.AppendColumn(name, values)
	}
	if len(values) != len(t.Rows) {
		return fmt.Errorf("column %q has %d values, table has %d rows", name, len(values), len(t.Rows))
	}
	for i := range t.Rows {
		t.Rows[i][j] = values[i]
	}
	return nil
}

// ReadTable reads a delimited table whose first record is the header.
// Every record must have as many fields as the header.
func ReadTable(r io.Reader, sep rune) (*Table, error) {
	reader := csv.NewReader(bufio.NewReader(r))
	reader.Comma = sep

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New("table is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	t := NewTable(header...)
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(t.Rows)+1, err)
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

// ReadTableFile opens path and reads it with ReadTable.
func ReadTableFile(path string, sep rune) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := ReadTable(f, sep)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// WriteTable writes the header then every row.
func WriteTable(w io.Writer, t *Table, sep rune) error {
	writer := csv.NewWriter(w)
	writer.Comma = sep

	if err := writer.Write(t.Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, row := range t.Rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteTableFile creates (or truncates) path and writes t into it.
func WriteTableFile(path string, t *Table, sep rune) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteTable(f, t, sep); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

// Batches cuts indices into consecutive mini-batches of at most size
// entries. The last batch may be shorter.
func Batches(indices []int, size int) [][]int {
	if size <= 0 {
		size = len(indices)
	}
	var out [][]int
	for start := 0; start < len(indices); start += size {
		end := min(start+size, len(indices))
		out = append(out, indices[start:end])
	}
	return out
}
