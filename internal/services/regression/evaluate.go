package regression

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"StockCast/internal/domain/models"
)

// Metrics holds the test-segment statistics of a fit.
type Metrics struct {
	MSE      float64
	R2       *float64
	Warnings []DegenerateMetricWarning
}

// Predict applies model to each row of x in order.
func Predict(model *models.Model, x [][]float64) ([]float64, error) {
	out := make([]float64, len(x))
	for i, row := range x {
		y, err := model.Predict(row)
		if err != nil {
			return nil, fmt.Errorf("predict row %d: %w", i, err)
		}
		out[i] = y
	}
	return out, nil
}

// Evaluate computes MSE and R² of predicted against actual. R² is left nil
// with a warning when actual has zero variance.
func Evaluate(actual, predicted []float64) (Metrics, error) {
	if len(actual) != len(predicted) {
		return Metrics{}, fmt.Errorf("%w: %d actual, %d predicted", models.ErrDimensionMismatch, len(actual), len(predicted))
	}
	if len(actual) == 0 {
		return Metrics{}, &InsufficientDataError{Stage: "evaluate", Got: 0, Need: 1}
	}

	var ssRes float64
	for i := range actual {
		d := actual[i] - predicted[i]
		ssRes += d * d
	}
	m := Metrics{MSE: ssRes / float64(len(actual))}

	mean := stat.Mean(actual, nil)
	var ssTot float64
	for _, v := range actual {
		d := v - mean
		ssTot += d * d
	}
	if ssTot == 0 {
		m.Warnings = append(m.Warnings, DegenerateMetricWarning{
			Metric: "r2",
			Reason: fmt.Sprintf("test targets have zero variance (n=%d)", len(actual)),
		})
		return m, nil
	}
	r2 := stat.RSquaredFrom(predicted, actual, nil)
	m.R2 = &r2
	return m, nil
}
