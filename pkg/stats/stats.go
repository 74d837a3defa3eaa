package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Column copies column j of X.
func Column(X [][]float64, j int) []float64 {
	col := make([]float64, len(X))
	for i := range X {
		col[i] = X[i][j]
	}
	return col
}

// MeanStd computes the mean and population standard deviation of a slice
// (divides by n, not n-1).
func MeanStd(x []float64) (float64, float64) {
	if len(x) == 0 {
		return 0, 0
	}
	mean, variance := stat.PopMeanVariance(x, nil)
	if variance < 0 {
		variance = 0
	}
	return mean, math.Sqrt(variance)
}
