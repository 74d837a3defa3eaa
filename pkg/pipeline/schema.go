package pipeline

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/chaymaerh/gaz-sensor-data-collection/pkg/config"
	"github.com/chaymaerh/gaz-sensor-data-collection/pkg/data"
	"github.com/chaymaerh/gaz-sensor-data-collection/pkg/dataprep"
)

// ErrMissingLabel is returned when a table reaches training without a
// label column.
var ErrMissingLabel = errors.New("the data must contain a label column")

// Reading is one sensor row. LabelTag is NaN when the tag cell is not a
// number.
type Reading struct {
	Temperature      float64
	Pressure         float64
	RelativeHumidity float64
	GasResistance    float64
	LabelTag         float64
	Label            string
}

// Features returns the network inputs of r in column order.
func (r Reading) Features() []float64 {
	return []float64{r.Temperature, r.Pressure, r.RelativeHumidity, r.GasResistance}
}

// Schema describes the columns of a sensor table.
type Schema struct {
	Columns config.Columns
}

// DefaultSchema uses the column names written by the converter.
func DefaultSchema() Schema {
	return Schema{Columns: config.Default().Columns}
}

// Features lists the feature columns in network input order.
func (s Schema) Features() []string { return s.Columns.Features() }

// Required lists the columns a raw table must carry before labeling.
func (s Schema) Required() []string {
	return append(s.Features(), s.Columns.Tag)
}

// Validate checks header for every required column. Each missing column is
// reported as a *data.ColumnError.
func (s Schema) Validate(header []string) error {
	t := data.Table{Header: header}
	var errs []error
	for _, name := range s.Required() {
		if t.Index(name) < 0 {
			errs = append(errs, &data.ColumnError{Column: name})
		}
	}
	return errors.Join(errs...)
}

// Readings converts a labeled table into typed rows.
func (s Schema) Readings(t *data.Table) ([]Reading, error) {
	if err := s.Validate(t.Header); err != nil {
		return nil, err
	}
	labels, err := t.Column(s.Columns.Label)
	if err != nil {
		return nil, errors.Join(ErrMissingLabel, err)
	}
	X, err := dataprep.FeatureSelect(t, s.Features())
	if err != nil {
		return nil, err
	}
	tags, _ := t.Column(s.Columns.Tag)

	out := make([]Reading, len(X))
	for i, x := range X {
		tag, err := strconv.ParseFloat(strings.TrimSpace(tags[i]), 64)
		if err != nil {
			tag = math.NaN()
		}
		out[i] = Reading{
			Temperature:      x[0],
			Pressure:         x[1],
			RelativeHumidity: x[2],
			GasResistance:    x[3],
			LabelTag:         tag,
			Label:            labels[i],
		}
	}
	return out, nil
}
