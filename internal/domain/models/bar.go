package models

import (
	"math"
	"time"
)

// Bar is one daily OHLCV record as handed over by a loader.
// A missing cell is represented as NaN.
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Complete reports whether every field of the bar is defined and finite.
func (b Bar) Complete() bool {
	if b.Date.IsZero() {
		return false
	}
	for _, v := range [...]float64{b.Open, b.High, b.Low, b.Close, b.Volume} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Equal compares two bars field by field. NaN fields are equal to each other,
// matching how a table-level duplicate check treats missing cells.
func (b Bar) Equal(o Bar) bool {
	return b.Date.Equal(o.Date) &&
		sameFloat(b.Open, o.Open) &&
		sameFloat(b.High, o.High) &&
		sameFloat(b.Low, o.Low) &&
		sameFloat(b.Close, o.Close) &&
		sameFloat(b.Volume, o.Volume)
}

func sameFloat(a, b float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return a == b
}
