package dataprep

import (
	"strconv"
	"strings"
)

// ReplaceZero rewrites every cell of col that is numerically zero ("0",
// "0.0", "-0", ...) with value, in place. Empty and non-numeric cells are
// left alone. It returns the number of rewritten cells.
func ReplaceZero(col []string, value string) int {
	n := 0
	for i, v := range col {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || f != 0 {
			continue
		}
		col[i] = value
		n++
	}
	return n
}
