package regression

import (
	"fmt"
	"time"

	"StockCast/internal/domain/models"
	applogger "StockCast/pkg/logger"
)

// Trainer runs split, fit, predict and evaluate for one dataset.
type Trainer struct {
	testFraction float64
	l            *applogger.Logger
}

// NewTrainer creates a trainer holding out testFraction of the rows.
func NewTrainer(testFraction float64) (*Trainer, error) {
	if testFraction <= 0 || testFraction >= 1 {
		return nil, fmt.Errorf("test fraction must be in (0,1), got %v", testFraction)
	}
	return &Trainer{testFraction: testFraction}, nil
}

// SetLogger injects a structured logger.
func (t *Trainer) SetLogger(l *applogger.Logger) { t.l = l }

// TestFraction returns the held-out share.
func (t *Trainer) TestFraction() float64 { return t.testFraction }

// TrainAndEvaluate fits an OLS model on the chronological prefix of ds and
// scores it on the most recent rows.
func (t *Trainer) TrainAndEvaluate(ds models.Dataset, features []string, target string) (*models.Evaluation, error) {
	start := time.Now()
	if len(features) == 0 {
		return nil, fmt.Errorf("at least one feature is required")
	}

	split, err := ChronologicalSplit(ds, t.testFraction)
	if err != nil {
		return nil, err
	}

	xTrain, yTrain, err := split.Train.Matrix(features, target)
	if err != nil {
		return nil, fmt.Errorf("train matrix: %w", err)
	}
	model, err := FitOLS(xTrain, yTrain, features)
	if err != nil {
		return nil, fmt.Errorf("fit: %w", err)
	}

	xTest, yTest, err := split.Test.Matrix(features, target)
	if err != nil {
		return nil, fmt.Errorf("test matrix: %w", err)
	}
	preds, err := Predict(model, xTest)
	if err != nil {
		return nil, err
	}
	m, err := Evaluate(yTest, preds)
	if err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}

	ev := &models.Evaluation{
		TestTargets: yTest,
		Predictions: preds,
		TestDates:   make([]time.Time, len(split.Test)),
		Model:       model,
		MSE:         m.MSE,
		R2:          m.R2,
		TrainSize:   len(split.Train),
		TestSize:    len(split.Test),
	}
	for i, row := range split.Test {
		ev.TestDates[i] = row.Date
	}
	for _, w := range m.Warnings {
		ev.Warnings = append(ev.Warnings, w.String())
		if t.l != nil {
			t.l.Warn("degenerate metric",
				applogger.String("metric", w.Metric),
				applogger.String("reason", w.Reason),
			)
		}
	}

	if t.l != nil {
		fields := []applogger.Field{
			applogger.Int("train_rows", ev.TrainSize),
			applogger.Int("test_rows", ev.TestSize),
			applogger.Float64("mse", ev.MSE),
			applogger.Duration("duration_ms", time.Since(start)),
		}
		if ev.R2 != nil {
			fields = append(fields, applogger.Float64("r2", *ev.R2))
		}
		t.l.Info("regression trained", fields...)
	}
	return ev, nil
}
