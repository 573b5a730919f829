package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	rows        *prometheus.CounterVec
	dropped     *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	mse         *prometheus.GaugeVec
	r2          *prometheus.GaugeVec
	r2Undefined *prometheus.CounterVec
	latency     *prometheus.HistogramVec
}

// New creates a recorder registered on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		rows: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockcast_rows_total",
				Help: "Rows observed at each pipeline stage",
			},
			[]string{"stage"},
		),
		dropped: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockcast_rows_dropped_total",
				Help: "Rows removed by cleaning or feature engineering",
			},
			[]string{"reason"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockcast_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		mse: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stockcast_last_mse",
				Help: "Mean squared error of the latest evaluation",
			},
			[]string{"symbol"},
		),
		r2: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stockcast_last_r2",
				Help: "Coefficient of determination of the latest evaluation",
			},
			[]string{"symbol"},
		),
		r2Undefined: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockcast_r2_undefined_total",
				Help: "Evaluations whose test targets had zero variance",
			},
			[]string{"symbol"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockcast_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordRows adds n rows seen at stage.
func (r *Recorder) RecordRows(stage string, n int) {
	r.rows.WithLabelValues(stage).Add(float64(n))
}

// RecordDropped adds n rows removed for reason.
func (r *Recorder) RecordDropped(reason string, n int) {
	if n <= 0 {
		return
	}
	r.dropped.WithLabelValues(reason).Add(float64(n))
}

// RecordEvaluation stores the latest metrics for a symbol.
func (r *Recorder) RecordEvaluation(symbol string, mse float64, r2 *float64) {
	r.mse.WithLabelValues(symbol).Set(mse)
	if r2 == nil {
		r.r2Undefined.WithLabelValues(symbol).Inc()
		return
	}
	r.r2.WithLabelValues(symbol).Set(*r2)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// Nop discards every observation.
type Nop struct{}

func (Nop) RecordRows(string, int)                     {}
func (Nop) RecordDropped(string, int)                  {}
func (Nop) RecordEvaluation(string, float64, *float64) {}
func (Nop) RecordError(string)                         {}
func (Nop) RecordLatency(string, float64)              {}
