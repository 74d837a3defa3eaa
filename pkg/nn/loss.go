package nn

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// probabilities are clipped to [eps, 1-eps] before taking the log
const eps = 1e-7

// CategoricalCrossEntropy is the mean over rows of -sum(y * log(p)) for
// one-hot targets yTrue and softmax outputs yPred.
func CategoricalCrossEntropy(yTrue, yPred mat.Matrix) float64 {
	r, c := yTrue.Dims()
	if r == 0 {
		return 0
	}
	s := 0.0
	for i := range r {
		for j := range c {
			y := yTrue.At(i, j)
			if y == 0 {
				continue
			}
			p := math.Min(math.Max(yPred.At(i, j), eps), 1-eps)
			s -= y * math.Log(p)
		}
	}
	return s / float64(r)
}

// SoftmaxCrossEntropyGrad is the gradient of the mean categorical
// cross-entropy with respect to the pre-softmax scores: (p - y) / n.
func SoftmaxCrossEntropyGrad(yTrue, yPred mat.Matrix) *mat.Dense {
	r, _ := yTrue.Dims()
	var g mat.Dense
	g.Sub(yPred, yTrue)
	g.Scale(1/float64(r), &g)
	return &g
}
