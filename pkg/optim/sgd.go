package optim

import "fmt"

// Optimizer updates a parameter slice in place from its gradient. id names
// the parameter slice so stateful optimizers can keep per-slice moments.
type Optimizer interface {
	Step(id int, params, grads []float64)
}

// Stochastic Gradient Descent optimizer with learning rate
type SGD struct{ LearningRate float64 }

func NewSGD(lr float64) *SGD { return &SGD{LearningRate: lr} }

func (o *SGD) Step(_ int, weights, grads []float64) { // in-place update
	for i := range weights {
		weights[i] -= o.LearningRate * grads[i]
	}
}

// New returns the optimizer called name ("adam" or "sgd").
func New(name string, lr float64) (Optimizer, error) {
	switch name {
	case "adam":
		return NewAdam(lr), nil
	case "sgd":
		return NewSGD(lr), nil
	default:
		return nil, fmt.Errorf("unknown optimizer: %s", name)
	}
}
