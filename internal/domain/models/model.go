package models

import (
	"fmt"
	"time"
)

// Model is a fitted linear regression. It is immutable once built;
// accessors return copies.
type Model struct {
	features  []string
	weights   []float64
	intercept float64
}

// NewModel builds a model from one weight per feature and an intercept.
func NewModel(features []string, weights []float64, intercept float64) (*Model, error) {
	if len(features) != len(weights) {
		return nil, fmt.Errorf("%w: %d features, %d weights", ErrDimensionMismatch, len(features), len(weights))
	}
	return &Model{
		features:  append([]string(nil), features...),
		weights:   append([]float64(nil), weights...),
		intercept: intercept,
	}, nil
}

// Features returns the ordered feature names the model expects.
func (m *Model) Features() []string { return append([]string(nil), m.features...) }

// Weights returns the coefficients in feature order.
func (m *Model) Weights() []float64 { return append([]float64(nil), m.weights...) }

// Intercept returns the fitted bias term.
func (m *Model) Intercept() float64 { return m.intercept }

// Predict applies the model to a single feature vector.
func (m *Model) Predict(x []float64) (float64, error) {
	if len(x) != len(m.weights) {
		return 0, fmt.Errorf("%w: model has %d features, got %d", ErrDimensionMismatch, len(m.weights), len(x))
	}
	y := m.intercept
	for i, w := range m.weights {
		y += w * x[i]
	}
	return y, nil
}

// Coefficient pairs a feature name with its weight.
type Coefficient struct {
	Feature string  `json:"feature"`
	Weight  float64 `json:"weight"`
}

// Coefficients returns the weights labelled by feature.
func (m *Model) Coefficients() []Coefficient {
	out := make([]Coefficient, len(m.weights))
	for i, w := range m.weights {
		out[i] = Coefficient{Feature: m.features[i], Weight: w}
	}
	return out
}

// Evaluation is the outcome of a train/evaluate run on a held-out segment.
type Evaluation struct {
	TestTargets []float64
	Predictions []float64
	TestDates   []time.Time
	Model       *Model
	MSE         float64
	// R2 is nil when the test targets have zero variance.
	R2        *float64
	TrainSize int
	TestSize  int
	Warnings  []string
}

// R2Defined reports whether the coefficient of determination could be computed.
func (e *Evaluation) R2Defined() bool { return e.R2 != nil }
