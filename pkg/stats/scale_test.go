package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeanStd(t *testing.T) {
	mean, std := MeanStd([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.InDelta(t, 5.0, mean, 1e-12)
	assert.InDelta(t, 2.0, std, 1e-12)

	mean, std = MeanStd(nil)
	assert.Zero(t, mean)
	assert.Zero(t, std)
}

func TestStandardScaler_FitOnTrainOnly(t *testing.T) {
	train := [][]float64{{1, 10}, {3, 10}, {5, 10}}
	test := [][]float64{{100, 50}}

	s := NewStandardScaler()
	scaled, err := s.FitTransform(train)
	require.NoError(t, err)

	assert.InDeltaSlice(t, []float64{3, 10}, s.Mean, 1e-12)
	// Population deviation of {1,3,5}; the constant column falls back to 1.
	assert.InDeltaSlice(t, []float64{1.632993161855452, 1}, s.Std, 1e-12)

	for i := range scaled {
		assert.Zero(t, scaled[i][1], "constant column centers to zero")
	}

	out, err := s.Transform(test)
	require.NoError(t, err)
	assert.InDelta(t, (100-3)/1.632993161855452, out[0][0], 1e-9)
	assert.InDelta(t, 40.0, out[0][1], 1e-12)

	// Transforming the test rows must not move the fitted statistics.
	assert.InDeltaSlice(t, []float64{3, 10}, s.Mean, 1e-12)
}

func TestStandardScaler_Errors(t *testing.T) {
	s := NewStandardScaler()

	_, err := s.Transform([][]float64{{1}})
	assert.ErrorIs(t, err, ErrNotFitted)

	assert.Error(t, s.Fit(nil))
	assert.Error(t, s.Fit([][]float64{{1, 2}, {3}}))

	require.NoError(t, s.Fit([][]float64{{1, 2}, {3, 4}}))
	_, err = s.Transform([][]float64{{1}})
	assert.Error(t, err)
}

func TestRestoreStandardScaler(t *testing.T) {
	s, err := RestoreStandardScaler([]float64{1, 2}, []float64{2, 0})
	require.NoError(t, err)
	assert.True(t, s.Fitted())

	out, err := s.Transform([][]float64{{3, 5}})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 3}}, out)

	_, err = RestoreStandardScaler([]float64{1}, nil)
	assert.Error(t, err)
}
