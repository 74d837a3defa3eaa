package optim

import "math"

// Adam defaults, matching the usual Keras settings.
const (
	DefaultBeta1   = 0.9
	DefaultBeta2   = 0.999
	DefaultEpsilon = 1e-7
)

// Adam is the adaptive moment estimation optimizer.
type Adam struct {
	LearningRate float64
	Beta1, Beta2 float64
	Epsilon      float64

	state map[int]*moments
}

type moments struct {
	m, v []float64
	t    int
}

func NewAdam(lr float64) *Adam {
	return &Adam{
		LearningRate: lr,
		Beta1:        DefaultBeta1,
		Beta2:        DefaultBeta2,
		Epsilon:      DefaultEpsilon,
		state:        map[int]*moments{},
	}
}

// Step applies one bias-corrected Adam update to params.
func (o *Adam) Step(id int, params, grads []float64) {
	if o.state == nil {
		o.state = map[int]*moments{}
	}
	s, ok := o.state[id]
	if !ok || len(s.m) != len(params) {
		s = &moments{m: make([]float64, len(params)), v: make([]float64, len(params))}
		o.state[id] = s
	}
	s.t++

	c1 := 1 - math.Pow(o.Beta1, float64(s.t))
	c2 := 1 - math.Pow(o.Beta2, float64(s.t))
	for i, g := range grads {
		s.m[i] = o.Beta1*s.m[i] + (1-o.Beta1)*g
		s.v[i] = o.Beta2*s.v[i] + (1-o.Beta2)*g*g
		mHat := s.m[i] / c1
		vHat := s.v[i] / c2
		params[i] -= o.LearningRate * mHat / (math.Sqrt(vHat) + o.Epsilon)
	}
}
