package features

import "math"

// RollingWindow keeps the last Size values pushed and their running sum and
// sum of squares, so mean and standard deviation are O(1) per step.
// Sums are accumulated relative to a shift value to limit cancellation in
// the variance. When a sum stops being finite the shift is moved to the
// newest value and the sums are rebuilt from the held values, so a single
// extreme value only affects the steps whose window contains it.
type RollingWindow struct {
	buf   []float64
	next  int
	count int
	shift float64
	sum   float64
	sum2  float64
}

// NewRollingWindow creates a window of the given size. Size must be positive.
func NewRollingWindow(size int) *RollingWindow {
	if size <= 0 {
		panic("features: rolling window size must be positive")
	}
	return &RollingWindow{buf: make([]float64, size)}
}

// Size returns the fixed window length.
func (w *RollingWindow) Size() int { return len(w.buf) }

// Len returns how many values are currently held.
func (w *RollingWindow) Len() int { return w.count }

// Full reports whether the window holds Size values.
func (w *RollingWindow) Full() bool { return w.count == len(w.buf) }

// Push appends v, evicting the oldest value once the window is full.
func (w *RollingWindow) Push(v float64) {
	if w.count == 0 {
		w.shift = v
	}
	if w.Full() {
		old := w.buf[w.next] - w.shift
		w.sum -= old
		w.sum2 -= old * old
	} else {
		w.count++
	}
	w.buf[w.next] = v
	w.next = (w.next + 1) % len(w.buf)

	d := v - w.shift
	w.sum += d
	w.sum2 += d * d
	if !finite(w.sum) || !finite(w.sum2) {
		w.rebase(v)
	}
}

// rebase recomputes the sums from the held values relative to shift.
func (w *RollingWindow) rebase(shift float64) {
	if !finite(shift) {
		shift = 0
	}
	w.shift = shift
	w.sum, w.sum2 = 0, 0
	for i := 0; i < w.count; i++ {
		d := w.buf[i] - shift
		w.sum += d
		w.sum2 += d * d
	}
}

func finite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }

// Mean returns the arithmetic mean of the held values, NaN when empty.
func (w *RollingWindow) Mean() float64 {
	if w.count == 0 {
		return math.NaN()
	}
	return w.shift + w.sum/float64(w.count)
}

// StdDev returns the sample standard deviation (n-1 denominator),
// NaN with fewer than two values.
func (w *RollingWindow) StdDev() float64 {
	if w.count < 2 {
		return math.NaN()
	}
	n := float64(w.count)
	mean := w.sum / n
	variance := (w.sum2 - n*mean*mean) / (n - 1)
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}
