package nn

import (
	"encoding/json"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

type layerState struct {
	Inputs  int       `json:"inputs"`
	Outputs int       `json:"outputs"`
	W       []float64 `json:"w"`
	B       []float64 `json:"b"`
}

type networkState struct {
	Activation string       `json:"activation"`
	Layers     []layerState `json:"layers"`
}

// MarshalJSON stores the activation name and the row-major weights of
// every layer.
func (n *Network) MarshalJSON() ([]byte, error) {
	st := networkState{Activation: n.Activation.Name}
	for _, l := range n.Layers {
		r, c := l.W.Dims()
		st.Layers = append(st.Layers, layerState{
			Inputs:  r,
			Outputs: c,
			W:       mat.DenseCopyOf(l.W).RawMatrix().Data,
			B:       l.B,
		})
	}
	return json.Marshal(st)
}

func (n *Network) UnmarshalJSON(b []byte) error {
	var st networkState
	if err := json.Unmarshal(b, &st); err != nil {
		return err
	}
	act, err := ActivationByName(st.Activation)
	if err != nil {
		return err
	}
	if len(st.Layers) == 0 {
		return fmt.Errorf("network has no layers")
	}

	layers := make([]*Layer, len(st.Layers))
	for i, l := range st.Layers {
		if l.Inputs <= 0 || l.Outputs <= 0 || len(l.W) != l.Inputs*l.Outputs || len(l.B) != l.Outputs {
			return fmt.Errorf("%w: layer %d is %dx%d with %d weights and %d biases",
				ErrShapeMismatch, i, l.Inputs, l.Outputs, len(l.W), len(l.B))
		}
		if i > 0 && st.Layers[i-1].Outputs != l.Inputs {
			return fmt.Errorf("%w: layer %d expects %d inputs, previous layer has %d outputs",
				ErrShapeMismatch, i, l.Inputs, st.Layers[i-1].Outputs)
		}
		layers[i] = &Layer{W: mat.NewDense(l.Inputs, l.Outputs, l.W), B: l.B}
	}

	n.Activation = act
	n.Layers = layers
	return nil
}
