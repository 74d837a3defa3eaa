package nn

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/chaymaerh/gaz-sensor-data-collection/pkg/optim"
)

func TestActivations(t *testing.T) {
	assert.Equal(t, 0.0, ReLU(-2))
	assert.Equal(t, 3.0, ReLU(3))
	assert.Equal(t, 0.0, ReLUPrime(-1))
	assert.Equal(t, 1.0, ReLUPrime(1))
	assert.InDelta(t, 0.5, Sigmoid(0), 1e-12)
	assert.InDelta(t, 0.25, SigmoidPrime(0), 1e-12)
	assert.InDelta(t, 1.0, TanhPrime(0), 1e-12)

	for _, name := range []string{"relu", "sigmoid", "tanh"} {
		act, err := ActivationByName(name)
		require.NoError(t, err)
		assert.Equal(t, name, act.Name)
	}
	_, err := ActivationByName("gelu")
	assert.Error(t, err)
}

func TestSoftmax(t *testing.T) {
	row := []float64{1000, 1000, 1000}
	Softmax(row)
	for _, p := range row {
		assert.InDelta(t, 1.0/3, p, 1e-12)
	}

	row = []float64{0, math.Log(3)}
	Softmax(row)
	assert.InDelta(t, 0.25, row[0], 1e-12)
	assert.InDelta(t, 0.75, row[1], 1e-12)
}

func TestCategoricalCrossEntropy(t *testing.T) {
	y := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	p := mat.NewDense(2, 2, []float64{0.5, 0.5, 0.1, 0.9})

	want := -(math.Log(0.5) + math.Log(0.9)) / 2
	assert.InDelta(t, want, CategoricalCrossEntropy(y, p), 1e-12)

	// A zero probability on the true class is clipped, not infinite.
	p = mat.NewDense(2, 2, []float64{0, 1, 0, 1})
	assert.False(t, math.IsInf(CategoricalCrossEntropy(y, p), 0))
}

type recorder struct{ grads map[int][]float64 }

func (r *recorder) Step(id int, _, g []float64) { r.grads[id] = append([]float64(nil), g...) }

func TestBackward_MatchesNumericalGradient(t *testing.T) {
	n, err := New([]int{3, 4, 2}, "tanh", rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	X := [][]float64{{0.5, -1, 2}, {1.5, 0.2, -0.3}, {-0.7, 0.9, 0.1}}
	Y := [][]float64{{1, 0}, {0, 1}, {0, 1}}

	x, err := toDense(X, 3, "feature")
	require.NoError(t, err)
	y, err := toDense(Y, 2, "label")
	require.NoError(t, err)

	rec := &recorder{grads: map[int][]float64{}}
	n.backward(n.forward(x), y, rec)

	const h = 1e-6
	for l, layer := range n.Layers {
		params := [][]float64{layer.W.RawMatrix().Data, layer.B}
		for p, vals := range params {
			for k := range vals {
				orig := vals[k]
				vals[k] = orig + h
				up, _, err := n.Evaluate(X, Y)
				require.NoError(t, err)
				vals[k] = orig - h
				down, _, err := n.Evaluate(X, Y)
				require.NoError(t, err)
				vals[k] = orig

				numeric := (up - down) / (2 * h)
				assert.InDelta(t, numeric, rec.grads[2*l+p][k], 1e-6, "layer %d param %d index %d", l, p, k)
			}
		}
	}
}

// blobs returns three well separated clusters in two dimensions.
func blobs(n int, rng *rand.Rand) (X, Y [][]float64) {
	centers := [][]float64{{-3, 0}, {3, 0}, {0, 4}}
	for i := range n {
		c := i % 3
		X = append(X, []float64{centers[c][0] + rng.NormFloat64()*0.5, centers[c][1] + rng.NormFloat64()*0.5})
		y := make([]float64, 3)
		y[c] = 1
		Y = append(Y, y)
	}
	return
}

func TestFit_LearnsSeparableClasses(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	X, Y := blobs(90, rng)
	valX, valY := blobs(30, rng)

	n, err := New([]int{2, 16, 16, 3}, "relu", rand.New(rand.NewSource(42)))
	require.NoError(t, err)

	var epochs []int
	h, err := n.Fit(context.Background(), X, Y, valX, valY, FitOptions{
		Epochs:    40,
		BatchSize: 16,
		Optimizer: optim.NewAdam(0.01),
		Rand:      rand.New(rand.NewSource(42)),
		OnEpoch:   func(s EpochStats) { epochs = append(epochs, s.Epoch) },
	})
	require.NoError(t, err)

	assert.Len(t, h.Loss, 40)
	assert.Len(t, h.ValLoss, 40)
	assert.Len(t, epochs, 40)
	assert.Less(t, h.Loss[len(h.Loss)-1], h.Loss[0])
	assert.Less(t, h.ValLoss[len(h.ValLoss)-1], h.ValLoss[0])

	_, acc, err := n.Evaluate(valX, valY)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, acc, 0.9)

	probs, err := n.Predict(valX[:2])
	require.NoError(t, err)
	for _, p := range probs {
		assert.InDelta(t, 1.0, p[0]+p[1]+p[2], 1e-9)
	}
}

func TestFit_Deterministic(t *testing.T) {
	X, Y := blobs(30, rand.New(rand.NewSource(1)))

	train := func() *Network {
		n, err := New([]int{2, 8, 3}, "relu", rand.New(rand.NewSource(9)))
		require.NoError(t, err)
		_, err = n.Fit(context.Background(), X, Y, nil, nil, FitOptions{
			Epochs: 5, BatchSize: 4, Optimizer: optim.NewAdam(0.001), Rand: rand.New(rand.NewSource(9)),
		})
		require.NoError(t, err)
		return n
	}

	a, b := train(), train()
	for l := range a.Layers {
		assert.Equal(t, a.Layers[l].W.RawMatrix().Data, b.Layers[l].W.RawMatrix().Data)
		assert.Equal(t, a.Layers[l].B, b.Layers[l].B)
	}
}

func TestFit_ShapeMismatch(t *testing.T) {
	n, err := New([]int{4, 8, 2}, "relu", rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	opts := FitOptions{Epochs: 1, BatchSize: 2, Optimizer: optim.NewSGD(0.1)}

	tests := []struct {
		name string
		X, Y [][]float64
	}{
		{name: "row counts differ", X: [][]float64{{1, 2, 3, 4}}, Y: [][]float64{{1, 0}, {0, 1}}},
		{name: "feature width", X: [][]float64{{1, 2, 3}}, Y: [][]float64{{1, 0}}},
		{name: "label width", X: [][]float64{{1, 2, 3, 4}}, Y: [][]float64{{1, 0, 0}}},
		{name: "empty", X: nil, Y: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := n.Fit(context.Background(), tt.X, tt.Y, nil, nil, opts)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrShapeMismatch))
		})
	}

	_, err = n.Predict([][]float64{{1}})
	assert.True(t, errors.Is(err, ErrShapeMismatch))
}

func TestFit_Cancelled(t *testing.T) {
	X, Y := blobs(9, rand.New(rand.NewSource(1)))
	n, err := New([]int{2, 4, 3}, "relu", rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = n.Fit(ctx, X, Y, nil, nil, FitOptions{Epochs: 3, Optimizer: optim.NewSGD(0.1)})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew_Errors(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	_, err := New([]int{4}, "relu", rng)
	assert.Error(t, err)
	_, err = New([]int{4, 0, 2}, "relu", rng)
	assert.Error(t, err)
	_, err = New([]int{4, 2}, "swish", rng)
	assert.Error(t, err)
}

func TestNetwork_JSONRoundTrip(t *testing.T) {
	n, err := New([]int{4, 6, 3}, "sigmoid", rand.New(rand.NewSource(5)))
	require.NoError(t, err)

	b, err := json.Marshal(n)
	require.NoError(t, err)

	var back Network
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, "sigmoid", back.Activation.Name)
	assert.Equal(t, 4, back.Inputs())
	assert.Equal(t, 3, back.Outputs())

	X := [][]float64{{0.1, 0.2, 0.3, 0.4}, {-1, 0, 1, 2}}
	want, err := n.Predict(X)
	require.NoError(t, err)
	got, err := back.Predict(X)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestNetwork_UnmarshalRejectsBadShapes(t *testing.T) {
	var n Network
	err := json.Unmarshal([]byte(`{"activation":"relu","layers":[{"inputs":2,"outputs":2,"w":[1,2,3],"b":[0,0]}]}`), &n)
	assert.True(t, errors.Is(err, ErrShapeMismatch))

	err = json.Unmarshal([]byte(`{"activation":"relu","layers":[
		{"inputs":1,"outputs":2,"w":[1,2],"b":[0,0]},
		{"inputs":3,"outputs":1,"w":[1,2,3],"b":[0]}]}`), &n)
	assert.True(t, errors.Is(err, ErrShapeMismatch))

	assert.Error(t, json.Unmarshal([]byte(`{"activation":"relu","layers":[]}`), &n))
}
