package nn

import (
	"fmt"
	"math"
)

func Sigmoid(x float64) float64 { return 1.0 / (1.0 + math.Exp(-x)) }

func SigmoidPrime(x float64) float64 { s := Sigmoid(x); return s * (1 - s) }

func ReLU(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0
}

func ReLUPrime(x float64) float64 {
	if x > 0 {
		return 1
	}
	return 0
}

func Tanh(x float64) float64 { return math.Tanh(x) }

func TanhPrime(x float64) float64 { t := math.Tanh(x); return 1 - t*t }

// Activation is an element-wise hidden-layer nonlinearity and its
// derivative with respect to the pre-activation.
type Activation struct {
	Name  string
	F     func(float64) float64
	Prime func(float64) float64
}

// ActivationByName looks up "relu", "sigmoid" or "tanh".
func ActivationByName(name string) (Activation, error) {
	switch name {
	case "relu":
		return Activation{Name: name, F: ReLU, Prime: ReLUPrime}, nil
	case "sigmoid":
		return Activation{Name: name, F: Sigmoid, Prime: SigmoidPrime}, nil
	case "tanh":
		return Activation{Name: name, F: Tanh, Prime: TanhPrime}, nil
	default:
		return Activation{}, fmt.Errorf("unknown activation: %s", name)
	}
}

// Softmax turns a row of scores into probabilities in place. The row
// maximum is subtracted first so large scores do not overflow.
func Softmax(row []float64) {
	if len(row) == 0 {
		return
	}
	max := row[0]
	for _, v := range row[1:] {
		if v > max {
			max = v
		}
	}
	sum := 0.0
	for i, v := range row {
		row[i] = math.Exp(v - max)
		sum += row[i]
	}
	for i := range row {
		row[i] /= sum
	}
}
