package repository

import (
	"context"
	"time"

	"StockCast/internal/domain/models"
)

// BarSource provides read-only access to daily bars sorted ascending by date.
type BarSource interface {
	GetBars(ctx context.Context, symbol string, from, to time.Time) ([]models.Bar, error)
}

// PredictionSink stores the held-out predictions of a run.
type PredictionSink interface {
	StorePredictions(ctx context.Context, runID, symbol string, preds []models.Prediction) error
}

// ReportPublisher hands a finished report to downstream consumers.
type ReportPublisher interface {
	PublishReport(ctx context.Context, r *models.ForecastReport) error
	Close() error
}

// Metrics records pipeline observations.
type Metrics interface {
	RecordRows(stage string, n int)
	RecordDropped(reason string, n int)
	RecordEvaluation(symbol string, mse float64, r2 *float64)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
