package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/chaymaerh/gaz-sensor-data-collection/pkg/model"
)

// FormatReport writes r as a precision/recall/f1/support table.
func FormatReport(w io.Writer, r model.Report) error {
	width := len("weighted avg")
	for _, c := range r.Classes {
		width = max(width, len(c.Class))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%*s %9s %9s %9s %9s\n\n", width, "", "precision", "recall", "f1-score", "support")
	for _, c := range r.Classes {
		fmt.Fprintf(&b, "%*s %9.2f %9.2f %9.2f %9d\n", width, c.Class, c.Precision, c.Recall, c.F1, c.Support)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%*s %9s %9s %9.2f %9d\n", width, "accuracy", "", "", r.Accuracy, r.Support)
	fmt.Fprintf(&b, "%*s %9.2f %9.2f %9.2f %9d\n", width, "macro avg", r.MacroAvg.Precision, r.MacroAvg.Recall, r.MacroAvg.F1, r.MacroAvg.Support)
	fmt.Fprintf(&b, "%*s %9.2f %9.2f %9.2f %9d\n", width, "weighted avg", r.WeightedAvg.Precision, r.WeightedAvg.Recall, r.WeightedAvg.F1, r.WeightedAvg.Support)

	_, err := io.WriteString(w, b.String())
	return err
}

// FormatConfusion writes cm with actual classes as rows and predicted
// classes as columns.
func FormatConfusion(w io.Writer, cm [][]int, classes []string) error {
	width := len("actual \\ predicted")
	for _, c := range classes {
		width = max(width, len(c))
	}
	cell := 6
	for _, c := range classes {
		cell = max(cell, len(c))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-*s", width, "actual \\ predicted")
	for _, c := range classes {
		fmt.Fprintf(&b, " %*s", cell, c)
	}
	b.WriteString("\n")
	for i, row := range cm {
		fmt.Fprintf(&b, "%-*s", width, classes[i])
		for _, v := range row {
			fmt.Fprintf(&b, " %*d", cell, v)
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Preview writes the first n rows of X under headers.
func Preview(w io.Writer, headers []string, X [][]float64, n int) error {
	n = min(n, len(X))

	var b strings.Builder
	for _, h := range headers {
		fmt.Fprintf(&b, "%-22s", h)
	}
	b.WriteString("\n")
	for i := 0; i < n; i++ {
		for _, val := range X[i] {
			fmt.Fprintf(&b, "%-22.6f", val)
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}
