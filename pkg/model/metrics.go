package model

import "gonum.org/v1/gonum/floats"

// ArgMax returns the index of the largest value of every row.
func ArgMax(rows [][]float64) []int {
	out := make([]int, len(rows))
	for i, row := range rows {
		out[i] = floats.MaxIdx(row)
	}
	return out
}

// Accuracy is the fraction of positions where yTrue and yPred agree.
func Accuracy(yTrue, yPred []int) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	c := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			c++
		}
	}
	return float64(c) / float64(len(yTrue))
}

// ConfusionMatrix counts (actual, predicted) pairs for k classes; rows are
// actual classes, columns predicted ones.
func ConfusionMatrix(yTrue, yPred []int, k int) [][]int {
	cm := make([][]int, k)
	for i := range cm {
		cm[i] = make([]int, k)
	}
	for i := range yTrue {
		cm[yTrue[i]][yPred[i]]++
	}
	return cm
}

// Score holds precision, recall, F1 and support of one class or average.
type Score struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// ClassScore is the Score of a named class.
type ClassScore struct {
	Class string `json:"class"`
	Score
}

// Report is a per-class classification report with accuracy and the macro
// and support-weighted averages.
type Report struct {
	Classes     []ClassScore `json:"classes"`
	Accuracy    float64      `json:"accuracy"`
	MacroAvg    Score        `json:"macro_avg"`
	WeightedAvg Score        `json:"weighted_avg"`
	Support     int          `json:"support"`
}

// PrecisionRecallF1 scores class c from a confusion matrix. Ratios with a
// zero denominator are 0.
func PrecisionRecallF1(cm [][]int, c int) (s Score) {
	tp := cm[c][c]
	predicted, actual := 0, 0
	for i := range cm {
		predicted += cm[i][c]
		actual += cm[c][i]
	}
	if predicted > 0 {
		s.Precision = float64(tp) / float64(predicted)
	}
	if actual > 0 {
		s.Recall = float64(tp) / float64(actual)
	}
	if s.Precision+s.Recall > 0 {
		s.F1 = 2 * s.Precision * s.Recall / (s.Precision + s.Recall)
	}
	s.Support = actual
	return
}

// ClassificationReport builds the report for class indices yTrue/yPred.
// Classes that appear in neither are left out, like any report built from
// the labels actually present.
func ClassificationReport(yTrue, yPred []int, classes []string) Report {
	cm := ConfusionMatrix(yTrue, yPred, len(classes))
	r := Report{Accuracy: Accuracy(yTrue, yPred), Support: len(yTrue)}

	for c, name := range classes {
		s := PrecisionRecallF1(cm, c)
		predicted := 0
		for i := range cm {
			predicted += cm[i][c]
		}
		if s.Support == 0 && predicted == 0 {
			continue
		}
		r.Classes = append(r.Classes, ClassScore{Class: name, Score: s})
	}

	if len(r.Classes) == 0 {
		return r
	}
	for _, cs := range r.Classes {
		r.MacroAvg.Precision += cs.Precision
		r.MacroAvg.Recall += cs.Recall
		r.MacroAvg.F1 += cs.F1
		if r.Support > 0 {
			w := float64(cs.Support) / float64(r.Support)
			r.WeightedAvg.Precision += w * cs.Precision
			r.WeightedAvg.Recall += w * cs.Recall
			r.WeightedAvg.F1 += w * cs.F1
		}
	}
	n := float64(len(r.Classes))
	r.MacroAvg.Precision /= n
	r.MacroAvg.Recall /= n
	r.MacroAvg.F1 /= n
	r.MacroAvg.Support = r.Support
	r.WeightedAvg.Support = r.Support
	return r
}
