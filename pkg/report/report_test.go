package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaymaerh/gaz-sensor-data-collection/pkg/model"
	"github.com/chaymaerh/gaz-sensor-data-collection/pkg/nn"
)

var classes = []string{"fumee", "normal air", "unknown"}

func TestConfusionGrid(t *testing.T) {
	g := confusionGrid{cm: [][]int{{1, 2}, {3, 4}}}

	c, r := g.Dims()
	assert.Equal(t, 2, c)
	assert.Equal(t, 2, r)
	// Top row of the figure is the first actual class.
	assert.Equal(t, 1.0, g.Z(0, 1))
	assert.Equal(t, 4.0, g.Z(1, 0))
}

func TestConfusionHeatmap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "confusion.png")
	cm := [][]int{{5, 1, 0}, {2, 7, 0}, {0, 0, 1}}

	require.NoError(t, ConfusionHeatmap(cm, classes, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestConfusionHeatmap_AllZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "confusion.png")
	require.NoError(t, ConfusionHeatmap([][]int{{0, 0}, {0, 0}}, classes[:2], path))
	assert.FileExists(t, path)
}

func TestConfusionHeatmap_BadShape(t *testing.T) {
	err := ConfusionHeatmap([][]int{{1}}, classes, filepath.Join(t.TempDir(), "x.png"))
	assert.Error(t, err)
}

func TestLossCurves(t *testing.T) {
	dir := t.TempDir()
	h := &nn.History{Loss: []float64{1.1, 0.7, 0.4}, ValLoss: []float64{1.2, 0.8, 0.6}}

	path := filepath.Join(dir, "loss.png")
	require.NoError(t, LossCurves(h, path))
	assert.FileExists(t, path)

	assert.Error(t, LossCurves(&nn.History{}, filepath.Join(dir, "empty.png")))
}

func TestFormatReport(t *testing.T) {
	r := model.ClassificationReport([]int{0, 0, 1, 1}, []int{0, 1, 1, 1}, classes)

	var buf bytes.Buffer
	require.NoError(t, FormatReport(&buf, r))
	out := buf.String()

	assert.Contains(t, out, "precision")
	assert.Contains(t, out, "fumee")
	assert.Contains(t, out, "normal air")
	assert.NotContains(t, out, "unknown")
	assert.Contains(t, out, "weighted avg")

	lines := strings.Split(out, "\n")
	assert.Contains(t, lines[2], "1.00")
	assert.Contains(t, lines[2], "0.50")
}

func TestFormatConfusion(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatConfusion(&buf, [][]int{{3, 1}, {0, 4}}, classes[:2]))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "fumee"))
	assert.Equal(t, []string{"fumee", "3", "1"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"normal", "air", "0", "4"}, strings.Fields(lines[2]))
}

func TestPreview(t *testing.T) {
	var buf bytes.Buffer
	X := [][]float64{{1, 2}, {3, 4}, {5, 6}}
	require.NoError(t, Preview(&buf, []string{"Temperature", "Pressure"}, X, 2))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, []string{"3.000000", "4.000000"}, strings.Fields(lines[2]))
}

func TestSummary_WriteJSON(t *testing.T) {
	s := NewSummary("air.csv")
	_, err := uuid.Parse(s.RunID)
	require.NoError(t, err)

	s.History = &nn.History{Loss: []float64{0.5}}
	s.Evaluation = &model.Evaluation{Classes: classes[:2], Accuracy: 0.5, Confusion: [][]int{{1, 1}, {0, 0}}}

	path := filepath.Join(t.TempDir(), "summary.json")
	require.NoError(t, s.WriteJSON(path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var back map[string]any
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, s.RunID, back["run_id"])
	assert.Equal(t, "air.csv", back["input"])
}
