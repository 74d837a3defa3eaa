package dataprep

import (
	"fmt"
	"sort"
)

// Classes returns the distinct categories of data in sorted order.
func Classes(data []string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, v := range data {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

// EncodeCategorical one-hot encodes a slice of string categories.
// Columns follow the sorted class order returned alongside.
func EncodeCategorical(data []string) ([][]float64, []string) {
	classes := Classes(data)
	out, _ := EncodeWithClasses(data, classes)
	return out, classes
}

// EncodeWithClasses one-hot encodes data against a fixed class list.
func EncodeWithClasses(data []string, classes []string) ([][]float64, error) {
	index := make(map[string]int, len(classes))
	for i, c := range classes {
		index[c] = i
	}
	out := make([][]float64, len(data))
	for i, v := range data {
		j, ok := index[v]
		if !ok {
			return nil, fmt.Errorf("category %q is not one of %v", v, classes)
		}
		vec := make([]float64, len(classes))
		vec[j] = 1
		out[i] = vec
	}
	return out, nil
}
