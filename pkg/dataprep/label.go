package dataprep

import (
	"strconv"
	"strings"

	"github.com/chaymaerh/gaz-sensor-data-collection/pkg/data"
)

// Air-quality categories derived from the logger's label tag.
const (
	LabelNormalAir = "normal air"
	LabelSmoke     = "fumee"
	LabelUnknown   = "unknown"
)

// AssignLabel maps a label tag to its category: 0 and 1 are normal air,
// 2 is smoke, anything else is unknown.
func AssignLabel(tag float64) string {
	switch tag {
	case 0, 1:
		return LabelNormalAir
	case 2:
		return LabelSmoke
	default:
		return LabelUnknown
	}
}

// AssignLabelString parses a raw tag cell. Cells that are not numbers
// (empty cells included) are unknown.
func AssignLabelString(raw string) string {
	tag, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return LabelUnknown
	}
	return AssignLabel(tag)
}

// DeriveLabels sets labelCol of t, computed row-wise from tagCol. An
// existing label column is overwritten. Rows with an unknown tag are kept.
func DeriveLabels(t *data.Table, tagCol, labelCol string) error {
	tags, err := t.Column(tagCol)
	if err != nil {
		return err
	}
	labels := make([]string, len(tags))
	for i, raw := range tags {
		labels[i] = AssignLabelString(raw)
	}
	return t.SetColumn(labelCol, labels)
}
