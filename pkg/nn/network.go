// Package nn implements a small fully connected classifier: dense hidden
// layers with an element-wise activation and a softmax output layer,
// trained with categorical cross-entropy on mini-batches.
package nn

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/chaymaerh/gaz-sensor-data-collection/pkg/data"
	"github.com/chaymaerh/gaz-sensor-data-collection/pkg/optim"
)

// ErrShapeMismatch is returned when inputs or targets do not fit the network.
var ErrShapeMismatch = errors.New("shape mismatch")

// Layer is a dense layer: out = in·W + B.
type Layer struct {
	W *mat.Dense // inputs x outputs
	B []float64
}

// Network is a stack of dense layers. Every layer but the last applies
// Activation; the last applies softmax.
type Network struct {
	Layers     []*Layer
	Activation Activation
}

// New builds a network with layer widths sizes (input width first, class
// count last). Weights are Glorot-uniform from rng, biases start at zero.
func New(sizes []int, activation string, rng *rand.Rand) (*Network, error) {
	if len(sizes) < 2 {
		return nil, fmt.Errorf("need at least input and output sizes, got %v", sizes)
	}
	for _, s := range sizes {
		if s <= 0 {
			return nil, fmt.Errorf("layer sizes must be positive, got %v", sizes)
		}
	}
	act, err := ActivationByName(activation)
	if err != nil {
		return nil, err
	}

	n := &Network{Activation: act}
	for l := 0; l < len(sizes)-1; l++ {
		in, out := sizes[l], sizes[l+1]
		limit := math.Sqrt(6 / float64(in+out))
		w := make([]float64, in*out)
		for i := range w {
			w[i] = (rng.Float64()*2 - 1) * limit
		}
		n.Layers = append(n.Layers, &Layer{
			W: mat.NewDense(in, out, w),
			B: make([]float64, out),
		})
	}
	return n, nil
}

// Inputs is the expected feature width.
func (n *Network) Inputs() int { r, _ := n.Layers[0].W.Dims(); return r }

// Outputs is the number of classes.
func (n *Network) Outputs() int { _, c := n.Layers[len(n.Layers)-1].W.Dims(); return c }

// pass keeps pre-activations z and activations a of one forward pass;
// a[0] is the input batch and a[len(a)-1] the softmax output.
type pass struct {
	z []*mat.Dense
	a []*mat.Dense
}

func (n *Network) forward(X *mat.Dense) *pass {
	p := &pass{a: []*mat.Dense{X}}
	last := len(n.Layers) - 1
	for l, layer := range n.Layers {
		var z mat.Dense
		z.Mul(p.a[l], layer.W)
		rows, _ := z.Dims()
		for i := range rows {
			floats.Add(z.RawRowView(i), layer.B)
		}

		a := mat.DenseCopyOf(&z)
		if l == last {
			for i := range rows {
				Softmax(a.RawRowView(i))
			}
		} else {
			a.Apply(func(_, _ int, v float64) float64 { return n.Activation.F(v) }, a)
		}
		p.z = append(p.z, &z)
		p.a = append(p.a, a)
	}
	return p
}

// backward computes the gradients of the mean cross-entropy for the pass
// and applies them with opt. Parameter ids are 2l for weights and 2l+1 for
// biases.
func (n *Network) backward(p *pass, Y *mat.Dense, opt optim.Optimizer) {
	gradW := make([]*mat.Dense, len(n.Layers))
	gradB := make([][]float64, len(n.Layers))

	delta := SoftmaxCrossEntropyGrad(Y, p.a[len(p.a)-1])
	for l := len(n.Layers) - 1; l >= 0; l-- {
		var gW mat.Dense
		gW.Mul(p.a[l].T(), delta)
		gradW[l] = &gW

		rows, cols := delta.Dims()
		gB := make([]float64, cols)
		for i := range rows {
			floats.Add(gB, delta.RawRowView(i))
		}
		gradB[l] = gB

		if l > 0 {
			var dA mat.Dense
			dA.Mul(delta, n.Layers[l].W.T())
			z := p.z[l-1]
			dA.Apply(func(i, j int, v float64) float64 { return v * n.Activation.Prime(z.At(i, j)) }, &dA)
			delta = &dA
		}
	}

	for l, layer := range n.Layers {
		opt.Step(2*l, layer.W.RawMatrix().Data, gradW[l].RawMatrix().Data)
		opt.Step(2*l+1, layer.B, gradB[l])
	}
}

// toDense packs rows into a matrix, checking every row has width columns.
func toDense(rows [][]float64, width int, what string) (*mat.Dense, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no %s rows", ErrShapeMismatch, what)
	}
	m := mat.NewDense(len(rows), width, nil)
	for i, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("%w: %s row %d has %d values, expected %d", ErrShapeMismatch, what, i, len(row), width)
		}
		m.SetRow(i, row)
	}
	return m, nil
}

func gather(m *mat.Dense, idx []int) *mat.Dense {
	_, c := m.Dims()
	out := mat.NewDense(len(idx), c, nil)
	for i, k := range idx {
		out.SetRow(i, m.RawRowView(k))
	}
	return out
}

// correct counts rows whose arg-max prediction matches the one-hot target.
func correct(Y, P *mat.Dense) int {
	rows, _ := Y.Dims()
	c := 0
	for i := range rows {
		if floats.MaxIdx(Y.RawRowView(i)) == floats.MaxIdx(P.RawRowView(i)) {
			c++
		}
	}
	return c
}

// Predict returns the class probabilities of every row of X.
func (n *Network) Predict(X [][]float64) ([][]float64, error) {
	x, err := toDense(X, n.Inputs(), "feature")
	if err != nil {
		return nil, err
	}
	out := n.forward(x).a[len(n.Layers)]
	rows, _ := out.Dims()
	probs := make([][]float64, rows)
	for i := range rows {
		probs[i] = mat.Row(nil, i, out)
	}
	return probs, nil
}

// Evaluate returns the mean cross-entropy and accuracy on X, Y.
func (n *Network) Evaluate(X, Y [][]float64) (loss, accuracy float64, err error) {
	if len(X) != len(Y) {
		return 0, 0, fmt.Errorf("%w: %d feature rows, %d label rows", ErrShapeMismatch, len(X), len(Y))
	}
	x, err := toDense(X, n.Inputs(), "feature")
	if err != nil {
		return 0, 0, err
	}
	y, err := toDense(Y, n.Outputs(), "label")
	if err != nil {
		return 0, 0, err
	}
	out := n.forward(x).a[len(n.Layers)]
	return CategoricalCrossEntropy(y, out), float64(correct(y, out)) / float64(len(Y)), nil
}

// FitOptions controls a training run.
type FitOptions struct {
	Epochs    int
	BatchSize int
	Optimizer optim.Optimizer
	// Rand shuffles the training rows before every epoch.
	Rand *rand.Rand
	// OnEpoch, if set, is called after every epoch.
	OnEpoch func(EpochStats)
}

// EpochStats are the metrics of one epoch. Validation fields are zero when
// no validation data was given.
type EpochStats struct {
	Epoch       int
	Loss        float64
	Accuracy    float64
	ValLoss     float64
	ValAccuracy float64
}

// History collects per-epoch metrics.
type History struct {
	Loss        []float64 `json:"loss"`
	Accuracy    []float64 `json:"accuracy"`
	ValLoss     []float64 `json:"val_loss,omitempty"`
	ValAccuracy []float64 `json:"val_accuracy,omitempty"`
}

// Fit trains on X, Y for opts.Epochs passes in mini-batches of
// opts.BatchSize. The training loss of an epoch is the sample-weighted mean
// of its batch losses, measured before each update. When valX is non-empty
// the validation loss is measured after every epoch.
func (n *Network) Fit(ctx context.Context, X, Y, valX, valY [][]float64, opts FitOptions) (*History, error) {
	if len(X) != len(Y) {
		return nil, fmt.Errorf("%w: %d feature rows, %d label rows", ErrShapeMismatch, len(X), len(Y))
	}
	if opts.Epochs <= 0 {
		return nil, fmt.Errorf("epochs must be positive, got %d", opts.Epochs)
	}
	if opts.Optimizer == nil {
		return nil, errors.New("no optimizer")
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(1))
	}

	x, err := toDense(X, n.Inputs(), "feature")
	if err != nil {
		return nil, err
	}
	y, err := toDense(Y, n.Outputs(), "label")
	if err != nil {
		return nil, err
	}
	validate := len(valX) > 0
	if validate {
		if _, _, err := n.Evaluate(valX, valY); err != nil {
			return nil, fmt.Errorf("validation data: %w", err)
		}
	}

	h := &History{}
	for epoch := 1; epoch <= opts.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return h, err
		}

		lossSum, hits := 0.0, 0
		for _, idx := range data.Batches(opts.Rand.Perm(len(X)), opts.BatchSize) {
			bx, by := gather(x, idx), gather(y, idx)
			p := n.forward(bx)
			out := p.a[len(p.a)-1]
			lossSum += CategoricalCrossEntropy(by, out) * float64(len(idx))
			hits += correct(by, out)
			n.backward(p, by, opts.Optimizer)
		}

		stats := EpochStats{
			Epoch:    epoch,
			Loss:     lossSum / float64(len(X)),
			Accuracy: float64(hits) / float64(len(X)),
		}
		h.Loss = append(h.Loss, stats.Loss)
		h.Accuracy = append(h.Accuracy, stats.Accuracy)

		if validate {
			stats.ValLoss, stats.ValAccuracy, _ = n.Evaluate(valX, valY)
			h.ValLoss = append(h.ValLoss, stats.ValLoss)
			h.ValAccuracy = append(h.ValAccuracy, stats.ValAccuracy)
		}
		if opts.OnEpoch != nil {
			opts.OnEpoch(stats)
		}
	}
	return h, nil
}
