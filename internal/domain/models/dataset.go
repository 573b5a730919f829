package models

import (
	"fmt"
	"time"
)

// Column names of the engineered dataset.
const (
	ColDailyReturn  = "Daily_Return"
	ColMAShort      = "MA_5"
	ColMALong       = "MA_10"
	ColVolatility   = "Volatility_5"
	ColVolumeChange = "Volume_Change"
	ColTargetClose  = "Target_Close"
)

// DefaultFeatures is the predictor list used when none is configured.
func DefaultFeatures() []string {
	return []string{ColDailyReturn, ColMAShort, ColMALong, ColVolatility, ColVolumeChange}
}

// DefaultTarget is the regression target column.
const DefaultTarget = ColTargetClose

// FeatureRow holds the features derived for the bar at Date and the
// next-day close it should predict.
type FeatureRow struct {
	Date         time.Time `json:"date"`
	DailyReturn  float64   `json:"daily_return"`
	MAShort      float64   `json:"ma_5"`
	MALong       float64   `json:"ma_10"`
	Volatility   float64   `json:"volatility_5"`
	VolumeChange float64   `json:"volume_change"`
	TargetClose  float64   `json:"target_close"`
}

// Value returns the named column of the row.
func (r FeatureRow) Value(name string) (float64, error) {
	switch name {
	case ColDailyReturn:
		return r.DailyReturn, nil
	case ColMAShort:
		return r.MAShort, nil
	case ColMALong:
		return r.MALong, nil
	case ColVolatility:
		return r.Volatility, nil
	case ColVolumeChange:
		return r.VolumeChange, nil
	case ColTargetClose:
		return r.TargetClose, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
}

// Dataset is a chronologically ordered sequence of feature rows.
type Dataset []FeatureRow

// Matrix extracts the design rows for the given features and the target vector.
func (d Dataset) Matrix(features []string, target string) ([][]float64, []float64, error) {
	x := make([][]float64, len(d))
	y := make([]float64, len(d))
	for i, row := range d {
		vec, err := d.vector(row, features)
		if err != nil {
			return nil, nil, err
		}
		x[i] = vec
		if y[i], err = row.Value(target); err != nil {
			return nil, nil, err
		}
	}
	return x, y, nil
}

// Column returns every value of a single column in order.
func (d Dataset) Column(name string) ([]float64, error) {
	out := make([]float64, len(d))
	for i, row := range d {
		v, err := row.Value(name)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (d Dataset) vector(row FeatureRow, features []string) ([]float64, error) {
	vec := make([]float64, len(features))
	for j, name := range features {
		v, err := row.Value(name)
		if err != nil {
			return nil, err
		}
		vec[j] = v
	}
	return vec, nil
}

// Split is a chronological train/test partition of a dataset.
type Split struct {
	Train Dataset
	Test  Dataset
}
