package features

import (
	"fmt"
	"math"

	"StockCast/internal/domain/models"
)

// Config holds the rolling window lengths used by the engine.
type Config struct {
	MAShort          int
	MALong           int
	VolatilityWindow int
}

// DefaultConfig returns the documented window sizes.
func DefaultConfig() Config {
	return Config{MAShort: 5, MALong: 10, VolatilityWindow: 5}
}

// Validate checks that every window can produce a value.
func (c Config) Validate() error {
	if c.MAShort < 1 || c.MALong < 1 {
		return fmt.Errorf("moving average windows must be >= 1, got %d/%d", c.MAShort, c.MALong)
	}
	if c.VolatilityWindow < 2 {
		return fmt.Errorf("volatility window must be >= 2, got %d", c.VolatilityWindow)
	}
	return nil
}

// Engine turns cleaned bars into a feature dataset.
type Engine struct {
	cfg Config
}

// NewEngine validates cfg and builds an engine.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("feature config: %w", err)
	}
	return &Engine{cfg: cfg}, nil
}

// Config returns the window sizes in use.
func (e *Engine) Config() Config { return e.cfg }

// MinRows is the smallest number of bars that can yield one feature row:
// the longest window plus the bar whose close becomes the target.
func (e *Engine) MinRows() int {
	return max(e.cfg.MAShort, e.cfg.MALong, e.cfg.VolatilityWindow, 2) + 1
}

// Build derives one feature row per bar and drops rows with any undefined
// value. Features at position t only read bars at or before t; the target
// is the close at t+1. Input must be sorted ascending by date.
func (e *Engine) Build(bars []models.Bar) models.Dataset {
	if len(bars) == 0 {
		return models.Dataset{}
	}
	short := NewRollingWindow(e.cfg.MAShort)
	long := NewRollingWindow(e.cfg.MALong)
	vol := NewRollingWindow(e.cfg.VolatilityWindow)

	out := make(models.Dataset, 0, len(bars))
	for t, b := range bars {
		short.Push(b.Close)
		long.Push(b.Close)
		vol.Push(b.Close)

		row := models.FeatureRow{
			Date:         b.Date,
			DailyReturn:  ratio(b.Close-b.Open, b.Open),
			MAShort:      meanIfFull(short),
			MALong:       meanIfFull(long),
			Volatility:   stdIfFull(vol),
			VolumeChange: math.NaN(),
			TargetClose:  math.NaN(),
		}
		if t > 0 {
			prev := bars[t-1].Volume
			row.VolumeChange = ratio(b.Volume-prev, prev)
		}
		if t+1 < len(bars) {
			row.TargetClose = bars[t+1].Close
		}
		if defined(row) {
			out = append(out, row)
		}
	}
	return out
}

// ratio divides num by den, yielding NaN for a zero denominator.
func ratio(num, den float64) float64 {
	if den == 0 {
		return math.NaN()
	}
	return num / den
}

func meanIfFull(w *RollingWindow) float64 {
	if !w.Full() {
		return math.NaN()
	}
	return w.Mean()
}

func stdIfFull(w *RollingWindow) float64 {
	if !w.Full() {
		return math.NaN()
	}
	return w.StdDev()
}

func defined(r models.FeatureRow) bool {
	for _, v := range [...]float64{r.DailyReturn, r.MAShort, r.MALong, r.Volatility, r.VolumeChange, r.TargetClose} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
