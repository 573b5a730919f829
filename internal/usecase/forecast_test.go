package usecase

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"StockCast/internal/domain/models"
	"StockCast/internal/services/features"
	"StockCast/internal/services/regression"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scenarioCloses = []float64{100, 101, 99, 102, 105, 103, 107, 110, 108, 111, 115, 113, 117, 120, 119}

type fakeSource struct {
	bars []models.Bar
	err  error

	mu    sync.Mutex
	calls int
	from  time.Time
	to    time.Time
}

func (f *fakeSource) GetBars(_ context.Context, _ string, from, to time.Time) ([]models.Bar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.from, f.to = from, to
	return f.bars, f.err
}

type fakeSink struct {
	err   error
	runID string
	preds []models.Prediction
}

func (s *fakeSink) StorePredictions(_ context.Context, runID, _ string, preds []models.Prediction) error {
	s.runID = runID
	s.preds = preds
	return s.err
}

type fakePublisher struct {
	err     error
	reports []*models.ForecastReport
}

func (p *fakePublisher) PublishReport(_ context.Context, r *models.ForecastReport) error {
	p.reports = append(p.reports, r)
	return p.err
}

func (p *fakePublisher) Close() error { return nil }

type countingMetrics struct {
	mu      sync.Mutex
	rows    map[string]int
	dropped map[string]int
	errs    map[string]int
	evals   int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{rows: map[string]int{}, dropped: map[string]int{}, errs: map[string]int{}}
}

func (m *countingMetrics) RecordRows(stage string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[stage] += n
}

func (m *countingMetrics) RecordDropped(reason string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropped[reason] += n
}

func (m *countingMetrics) RecordEvaluation(string, float64, *float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evals++
}

func (m *countingMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[kind]++
}

func (m *countingMetrics) RecordLatency(string, float64) {}

func trendBars(n int) []models.Bar {
	bars := make([]models.Bar, n)
	for i := range bars {
		c := 100 + float64(i) + 3*math.Sin(float64(i))
		bars[i] = models.Bar{
			Date:   time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			Open:   c - 0.5*math.Cos(float64(i)),
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1000 + float64(i%7)*50,
		}
	}
	return bars
}

func newUseCase(t *testing.T, src *fakeSource, opts ...ForecastOption) *ForecastUseCase {
	t.Helper()
	engine, err := features.NewEngine(features.DefaultConfig())
	require.NoError(t, err)
	trainer, err := regression.NewTrainer(regression.DefaultTestFraction)
	require.NoError(t, err)
	opts = append([]ForecastOption{
		WithIDGenerator(func() string { return "run-1" }),
		WithClock(func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }),
	}, opts...)
	uc, err := NewForecastUseCase(src, engine, trainer, models.DefaultFeatures(), models.DefaultTarget, opts...)
	require.NoError(t, err)
	return uc
}

func TestRunProducesReport(t *testing.T) {
	bars := trendBars(60)
	// one exact duplicate and one incomplete row
	bars = append(bars, bars[10])
	bars[20].High = math.NaN()

	src := &fakeSource{bars: bars}
	m := newCountingMetrics()
	sink := &fakeSink{}
	pub := &fakePublisher{}
	uc := newUseCase(t, src, WithMetrics(m), WithPredictionSink(sink), WithReportPublisher(pub), WithCorrelation(true))

	from := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	res, err := uc.Run(context.Background(), ForecastParams{Symbol: "GS", From: from})
	require.NoError(t, err)

	assert.Equal(t, from, src.from)
	assert.Equal(t, 1, res.Clean.Duplicates)
	assert.Equal(t, 1, res.Clean.Incomplete)
	assert.Equal(t, 59, res.Clean.Output)

	r := res.Report
	assert.Equal(t, "run-1", r.ID)
	assert.Equal(t, "GS", r.Symbol)
	assert.Equal(t, 61, r.RawRows)
	assert.Equal(t, 59, r.CleanRows)
	assert.Equal(t, r.DatasetRows, r.TrainSize+r.TestSize)
	assert.Len(t, r.Coefficients, 5)
	assert.Len(t, r.Predictions, r.TestSize)
	require.NotNil(t, r.R2)
	assert.Equal(t, r.MSE, res.Evaluation.MSE)

	require.NotNil(t, res.Correlation)
	assert.Len(t, res.Correlation.Columns, 6)
	assert.Empty(t, res.DeliveryErrors)

	assert.Equal(t, "run-1", sink.runID)
	assert.Equal(t, r.Predictions, sink.preds)
	require.Len(t, pub.reports, 1)
	assert.Same(t, r, pub.reports[0])

	assert.Equal(t, 61, m.rows["raw"])
	assert.Equal(t, 59, m.rows["clean"])
	assert.Equal(t, 1, m.dropped["duplicate"])
	assert.Equal(t, 1, m.dropped["incomplete"])
	assert.Equal(t, 59-r.DatasetRows, m.dropped["undefined_feature"])
	assert.Equal(t, 1, m.evals)
}

func TestRunIsIdempotent(t *testing.T) {
	src := &fakeSource{bars: trendBars(40)}
	uc := newUseCase(t, src)

	a, err := uc.Run(context.Background(), ForecastParams{Symbol: "GS"})
	require.NoError(t, err)
	b, err := uc.Run(context.Background(), ForecastParams{Symbol: "GS"})
	require.NoError(t, err)
	assert.Equal(t, a.Report, b.Report)
	assert.Equal(t, a.Evaluation, b.Evaluation)
	assert.Equal(t, 2, src.calls)
}

func TestRunScenario(t *testing.T) {
	bars := make([]models.Bar, len(scenarioCloses))
	for i, c := range scenarioCloses {
		bars[i] = models.Bar{
			Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			Open: c, High: c, Low: c, Close: c, Volume: 1000,
		}
	}
	res, err := newUseCase(t, &fakeSource{bars: bars}).Run(context.Background(), ForecastParams{Symbol: "GS"})
	require.NoError(t, err)

	assert.Equal(t, 5, res.Report.DatasetRows)
	assert.Equal(t, 4, res.Report.TrainSize)
	assert.Equal(t, 1, res.Report.TestSize)
	assert.Nil(t, res.Report.R2)
	assert.NotEmpty(t, res.Report.Warnings)
}

func TestRunInsufficientData(t *testing.T) {
	m := newCountingMetrics()
	uc := newUseCase(t, &fakeSource{bars: trendBars(11)}, WithMetrics(m))

	_, err := uc.Run(context.Background(), ForecastParams{Symbol: "GS"})
	var ide *regression.InsufficientDataError
	require.True(t, errors.As(err, &ide))
	assert.Equal(t, "split", ide.Stage)
	assert.Equal(t, 1, ide.Got)
	assert.Equal(t, 1, m.errs["insufficient_data"])

	_, err = uc.Run(context.Background(), ForecastParams{Symbol: "GS"})
	assert.True(t, errors.As(err, &ide))
}

func TestRunEmptySource(t *testing.T) {
	_, err := newUseCase(t, &fakeSource{}).Run(context.Background(), ForecastParams{Symbol: "GS"})
	var ide *regression.InsufficientDataError
	require.True(t, errors.As(err, &ide))
	assert.Equal(t, 0, ide.Got)
}

func TestRunErrors(t *testing.T) {
	uc := newUseCase(t, &fakeSource{err: errors.New("disk on fire")})

	_, err := uc.Run(context.Background(), ForecastParams{})
	assert.ErrorIs(t, err, ErrSymbolRequired)

	_, err = uc.Run(context.Background(), ForecastParams{Symbol: "GS"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load bars")
	assert.Contains(t, err.Error(), "disk on fire")
}

func TestRunDeliveryFailuresAreSoft(t *testing.T) {
	m := newCountingMetrics()
	sink := &fakeSink{err: errors.New("clickhouse down")}
	pub := &fakePublisher{err: errors.New("kafka down")}
	uc := newUseCase(t, &fakeSource{bars: trendBars(40)}, WithMetrics(m), WithPredictionSink(sink), WithReportPublisher(pub))

	res, err := uc.Run(context.Background(), ForecastParams{Symbol: "GS"})
	require.NoError(t, err)
	require.Len(t, res.DeliveryErrors, 2)
	assert.EqualError(t, res.DeliveryErrors["sink"], "clickhouse down")
	assert.EqualError(t, res.DeliveryErrors["publisher"], "kafka down")
	assert.Equal(t, 1, m.errs["sink"])
	assert.Equal(t, 1, m.errs["publisher"])
	assert.NotNil(t, res.Report)
}

func TestNewForecastUseCaseValidation(t *testing.T) {
	engine, err := features.NewEngine(features.DefaultConfig())
	require.NoError(t, err)
	trainer, err := regression.NewTrainer(0.2)
	require.NoError(t, err)
	src := &fakeSource{}

	_, err = NewForecastUseCase(nil, engine, trainer, models.DefaultFeatures(), models.DefaultTarget)
	assert.Error(t, err)
	_, err = NewForecastUseCase(src, engine, trainer, nil, models.DefaultTarget)
	assert.Error(t, err)
	_, err = NewForecastUseCase(src, engine, trainer, []string{"Open"}, models.DefaultTarget)
	assert.ErrorIs(t, err, models.ErrUnknownColumn)
	_, err = NewForecastUseCase(src, engine, trainer, models.DefaultFeatures(), "Close")
	assert.ErrorIs(t, err, models.ErrUnknownColumn)
}
