package models

import "time"

// ForecastReport is the transport-neutral summary of one pipeline run,
// handed to publishers and API consumers.
type ForecastReport struct {
	ID           string        `json:"id"`
	Symbol       string        `json:"symbol"`
	GeneratedAt  time.Time     `json:"generated_at"`
	RawRows      int           `json:"raw_rows"`
	CleanRows    int           `json:"clean_rows"`
	DatasetRows  int           `json:"dataset_rows"`
	TrainSize    int           `json:"train_size"`
	TestSize     int           `json:"test_size"`
	MSE          float64       `json:"mse"`
	R2           *float64      `json:"r2"`
	Intercept    float64       `json:"intercept"`
	Coefficients []Coefficient `json:"coefficients"`
	Predictions  []Prediction  `json:"predictions"`
	Warnings     []string      `json:"warnings,omitempty"`
}

// Prediction pairs an actual next-day close with the model's estimate.
// Date is the feature row's day, so Actual is the close of the day after it.
type Prediction struct {
	Date      time.Time `json:"date"`
	Actual    float64   `json:"actual"`
	Predicted float64   `json:"predicted"`
}

// PredictionPairs zips the evaluation's test segment into labelled pairs.
func (e *Evaluation) PredictionPairs() []Prediction {
	out := make([]Prediction, len(e.TestTargets))
	for i := range e.TestTargets {
		var d time.Time
		if i < len(e.TestDates) {
			d = e.TestDates[i]
		}
		out[i] = Prediction{Date: d, Actual: e.TestTargets[i], Predicted: e.Predictions[i]}
	}
	return out
}
