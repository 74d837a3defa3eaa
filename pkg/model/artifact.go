package model

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/chaymaerh/gaz-sensor-data-collection/pkg/nn"
	"github.com/chaymaerh/gaz-sensor-data-collection/pkg/stats"
)

// Artifact is everything needed to classify new readings: the feature
// columns, the class names in output order, the scaler statistics fitted on
// the training rows and the trained network.
type Artifact struct {
	Features  []string    `json:"features"`
	Classes   []string    `json:"classes"`
	ScaleMean []float64   `json:"scale_mean"`
	ScaleStd  []float64   `json:"scale_std"`
	Network   *nn.Network `json:"network"`
}

// NewArtifact bundles a trained network with its preprocessing.
func NewArtifact(net *nn.Network, scaler *stats.StandardScaler, features, classes []string) *Artifact {
	return &Artifact{
		Features:  features,
		Classes:   classes,
		ScaleMean: scaler.Mean,
		ScaleStd:  scaler.Std,
		Network:   net,
	}
}

// Save writes the artifact as indented JSON.
func (a *Artifact) Save(path string) error {
	b, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal model: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("failed to write model file: %w", err)
	}
	return nil
}

// LoadArtifact reads a model saved by Save and checks that its parts agree.
func LoadArtifact(path string) (*Artifact, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}
	var a Artifact
	if err := json.Unmarshal(b, &a); err != nil {
		return nil, fmt.Errorf("failed to unmarshal model: %w", err)
	}
	if a.Network == nil {
		return nil, fmt.Errorf("model file %s has no network", path)
	}
	if a.Network.Inputs() != len(a.Features) || a.Network.Outputs() != len(a.Classes) {
		return nil, fmt.Errorf("%w: network is %dx%d, model lists %d features and %d classes",
			nn.ErrShapeMismatch, a.Network.Inputs(), a.Network.Outputs(), len(a.Features), len(a.Classes))
	}
	if _, err := stats.RestoreStandardScaler(a.ScaleMean, a.ScaleStd); err != nil {
		return nil, err
	}
	return &a, nil
}

// Predict scales raw feature rows and returns class probabilities.
func (a *Artifact) Predict(X [][]float64) ([][]float64, error) {
	scaler, err := stats.RestoreStandardScaler(a.ScaleMean, a.ScaleStd)
	if err != nil {
		return nil, err
	}
	scaled, err := scaler.Transform(X)
	if err != nil {
		return nil, err
	}
	return a.Network.Predict(scaled)
}

// Classify returns the predicted class name of every raw feature row.
func (a *Artifact) Classify(X [][]float64) ([]string, error) {
	probs, err := a.Predict(X)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(probs))
	for i, c := range ArgMax(probs) {
		out[i] = a.Classes[c]
	}
	return out, nil
}
