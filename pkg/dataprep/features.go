package dataprep

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chaymaerh/gaz-sensor-data-collection/pkg/data"
)

// FeatureSelect selects the named columns of t as float rows, in the order
// given by names.
func FeatureSelect(t *data.Table, names []string) ([][]float64, error) {
	idx := make([]int, len(names))
	for j, name := range names {
		idx[j] = t.Index(name)
		if idx[j] < 0 {
			return nil, &data.ColumnError{Column: name}
		}
	}

	out := make([][]float64, len(t.Rows))
	for i, row := range t.Rows {
		selected := make([]float64, len(idx))
		for j, c := range idx {
			v, err := strconv.ParseFloat(strings.TrimSpace(row[c]), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d, column %q: %w", i+1, names[j], err)
			}
			selected[j] = v
		}
		out[i] = selected
	}
	return out, nil
}
