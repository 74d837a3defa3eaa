package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/chaymaerh/gaz-sensor-data-collection/pkg/model"
	"github.com/chaymaerh/gaz-sensor-data-collection/pkg/nn"
)

// Summary is the machine-readable record of one training run.
type Summary struct {
	RunID      string            `json:"run_id"`
	CreatedAt  time.Time         `json:"created_at"`
	Input      string            `json:"input"`
	Rows       int               `json:"rows"`
	TrainRows  int               `json:"train_rows"`
	TestRows   int               `json:"test_rows"`
	Features   []string          `json:"features"`
	Settings   map[string]any    `json:"settings,omitempty"`
	History    *nn.History       `json:"history"`
	Evaluation *model.Evaluation `json:"evaluation"`
}

// NewSummary stamps a summary with a fresh run id.
func NewSummary(input string) *Summary {
	return &Summary{
		RunID:     uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Input:     input,
	}
}

// WriteJSON writes s as indented JSON to path.
func (s *Summary) WriteJSON(path string) error {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	return os.WriteFile(path, b, 0o644)
}
