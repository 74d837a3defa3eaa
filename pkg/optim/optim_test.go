package optim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSGD_Step(t *testing.T) {
	w := []float64{1, -2}
	NewSGD(0.5).Step(0, w, []float64{2, -4})
	assert.Equal(t, []float64{0, 0}, w)
}

func TestAdam_FirstStep(t *testing.T) {
	// With bias correction the first update is lr * sign(g), up to epsilon.
	w := []float64{1, 1}
	NewAdam(0.01).Step(0, w, []float64{3, -0.5})
	assert.InDelta(t, 0.99, w[0], 1e-6)
	assert.InDelta(t, 1.01, w[1], 1e-6)
}

func TestAdam_MinimizesQuadratic(t *testing.T) {
	opt := NewAdam(0.1)
	x := []float64{5}
	for range 500 {
		opt.Step(0, x, []float64{2 * (x[0] - 3)})
	}
	assert.InDelta(t, 3.0, x[0], 0.05)
}

func TestAdam_IndependentState(t *testing.T) {
	opt := NewAdam(0.01)
	a, b := []float64{0}, []float64{0, 0}
	opt.Step(0, a, []float64{1})
	opt.Step(1, b, []float64{1, 1})
	opt.Step(0, a, []float64{1})

	assert.Equal(t, 2, opt.state[0].t)
	assert.Equal(t, 1, opt.state[1].t)
}

func TestNew(t *testing.T) {
	o, err := New("adam", 0.001)
	require.NoError(t, err)
	assert.IsType(t, &Adam{}, o)

	o, err = New("sgd", 0.01)
	require.NoError(t, err)
	assert.IsType(t, &SGD{}, o)

	_, err = New("rmsprop", 0.01)
	assert.Error(t, err)
}
