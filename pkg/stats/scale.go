package stats

import (
	"errors"
	"fmt"
)

// ErrNotFitted is returned by Transform on a scaler that has not seen data.
var ErrNotFitted = errors.New("scaler is not fitted")

// StandardScaler standardizes each column to zero mean and unit variance
// using statistics learned from the rows passed to Fit.
type StandardScaler struct {
	Mean []float64
	Std  []float64
	fit  bool
}

func NewStandardScaler() *StandardScaler { return &StandardScaler{} }

// RestoreStandardScaler rebuilds a fitted scaler from saved statistics.
func RestoreStandardScaler(mean, std []float64) (*StandardScaler, error) {
	if len(mean) == 0 || len(mean) != len(std) {
		return nil, fmt.Errorf("scaler statistics have %d means and %d deviations", len(mean), len(std))
	}
	s := &StandardScaler{
		Mean: append([]float64(nil), mean...),
		Std:  append([]float64(nil), std...),
		fit:  true,
	}
	for j, v := range s.Std {
		if v == 0 {
			s.Std[j] = 1
		}
	}
	return s, nil
}

// Fitted reports whether Fit has succeeded.
func (s *StandardScaler) Fitted() bool { return s.fit }

// Fit learns per-column mean and population standard deviation. A constant
// column gets a deviation of 1 so it maps to zero after centering.
func (s *StandardScaler) Fit(X [][]float64) error {
	if len(X) == 0 || len(X[0]) == 0 {
		return errors.New("cannot fit scaler on empty data")
	}
	c := len(X[0])
	for i, row := range X {
		if len(row) != c {
			return fmt.Errorf("row %d has %d features, expected %d", i, len(row), c)
		}
	}

	s.Mean = make([]float64, c)
	s.Std = make([]float64, c)
	for j := range c {
		s.Mean[j], s.Std[j] = MeanStd(Column(X, j))
		if s.Std[j] == 0 {
			s.Std[j] = 1
		}
	}
	s.fit = true
	return nil
}

// Transform applies the fitted statistics to X and returns new rows.
func (s *StandardScaler) Transform(X [][]float64) ([][]float64, error) {
	if !s.fit {
		return nil, ErrNotFitted
	}
	Y := make([][]float64, len(X))
	for i, in := range X {
		if len(in) != len(s.Mean) {
			return nil, fmt.Errorf("row %d has %d features, scaler was fitted on %d", i, len(in), len(s.Mean))
		}
		row := make([]float64, len(in))
		for j, v := range in {
			row[j] = (v - s.Mean[j]) / s.Std[j]
		}
		Y[i] = row
	}
	return Y, nil
}

func (s *StandardScaler) FitTransform(X [][]float64) ([][]float64, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}
