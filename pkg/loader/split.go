package loader

import (
	"fmt"
	"math"
	"math/rand"
)

// TestSize returns how many of n rows go to the test partition. The count
// is rounded up, so any non-zero ratio keeps at least one test row.
func TestSize(n int, testRatio float64) int {
	return int(math.Ceil(float64(n) * testRatio))
}

// SplitIndices shuffles 0..n-1 with a generator seeded by seed and cuts the
// permutation into train and test indices.
func SplitIndices(n int, testRatio float64, seed int64) (train, test []int) {
	indices := rand.New(rand.NewSource(seed)).Perm(n)
	nTest := TestSize(n, testRatio)
	return indices[nTest:], indices[:nTest]
}

// TrainTestSplit splits X, Y into train and test sets by ratio. The split is
// deterministic for a given seed and input order.
func TrainTestSplit(X, Y [][]float64, testRatio float64, seed int64) (XTrain, XTest, YTrain, YTest [][]float64, err error) {
	if len(X) != len(Y) {
		return nil, nil, nil, nil, fmt.Errorf("features have %d rows, labels have %d", len(X), len(Y))
	}
	if testRatio <= 0 || testRatio >= 1 {
		return nil, nil, nil, nil, fmt.Errorf("test ratio must be in (0, 1), got %v", testRatio)
	}
	n := len(X)
	nTest := TestSize(n, testRatio)
	if nTest == 0 || nTest >= n {
		return nil, nil, nil, nil, fmt.Errorf("cannot split %d rows with test ratio %v", n, testRatio)
	}

	train, test := SplitIndices(n, testRatio, seed)
	for _, i := range test {
		XTest = append(XTest, X[i])
		YTest = append(YTest, Y[i])
	}
	for _, i := range train {
		XTrain = append(XTrain, X[i])
		YTrain = append(YTrain, Y[i])
	}
	return
}
