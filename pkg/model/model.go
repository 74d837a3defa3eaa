package model

import (
	"fmt"
)

// Classifier returns one probability row per input row.
type Classifier interface {
	Predict(X [][]float64) ([][]float64, error)
}

// Evaluation is the held-out performance of a classifier.
type Evaluation struct {
	Classes   []string `json:"classes"`
	Actual    []int    `json:"-"`
	Predicted []int    `json:"-"`
	Accuracy  float64  `json:"accuracy"`
	Confusion [][]int  `json:"confusion_matrix"`
	Report    Report   `json:"report"`
}

// Evaluate predicts X with c and compares the arg-max classes with the
// one-hot targets Y. The confusion matrix covers every class in classes.
func Evaluate(c Classifier, X, Y [][]float64, classes []string) (*Evaluation, error) {
	if len(X) != len(Y) {
		return nil, fmt.Errorf("%d feature rows, %d label rows", len(X), len(Y))
	}
	probs, err := c.Predict(X)
	if err != nil {
		return nil, err
	}
	for i, y := range Y {
		if len(y) != len(classes) || len(probs[i]) != len(classes) {
			return nil, fmt.Errorf("row %d: expected %d classes", i, len(classes))
		}
	}

	actual := ArgMax(Y)
	predicted := ArgMax(probs)
	return &Evaluation{
		Classes:   classes,
		Actual:    actual,
		Predicted: predicted,
		Accuracy:  Accuracy(actual, predicted),
		Confusion: ConfusionMatrix(actual, predicted, len(classes)),
		Report:    ClassificationReport(actual, predicted, classes),
	}, nil
}
