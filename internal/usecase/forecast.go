package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"StockCast/internal/domain/models"
	domrepo "StockCast/internal/domain/repository"
	"StockCast/internal/services/features"
	"StockCast/internal/services/regression"
	applogger "StockCast/pkg/logger"
	"StockCast/pkg/metrics"

	"github.com/google/uuid"
)

// ErrSymbolRequired is returned by Run when ForecastParams.Symbol is empty.
var ErrSymbolRequired = errors.New("symbol required")

// ForecastParams selects the bars a run is computed on. Zero bounds are open.
type ForecastParams struct {
	Symbol string
	From   time.Time
	To     time.Time
}

// ForecastResult is everything one run produced.
type ForecastResult struct {
	Report      *models.ForecastReport
	Evaluation  *models.Evaluation
	Correlation *regression.Correlation
	Clean       features.CleanStats
	// DeliveryErrors holds failed optional outputs keyed by "sink"/"publisher".
	DeliveryErrors map[string]error
}

// ForecastUseCase runs load, clean, feature build, train and evaluate.
// Publication to the sink and publisher is best effort.
type ForecastUseCase struct {
	source      domrepo.BarSource
	engine      *features.Engine
	trainer     *regression.Trainer
	features    []string
	target      string
	correlation bool
	sink        domrepo.PredictionSink
	publisher   domrepo.ReportPublisher
	metrics     domrepo.Metrics
	l           *applogger.Logger
	timeout     time.Duration
	newID       func() string
	now         func() time.Time
}

// ForecastOption configures ForecastUseCase.
type ForecastOption func(*ForecastUseCase)

// WithPredictionSink stores held-out predictions after each run.
func WithPredictionSink(s domrepo.PredictionSink) ForecastOption {
	return func(uc *ForecastUseCase) { uc.sink = s }
}

// WithReportPublisher publishes the report after each run.
func WithReportPublisher(p domrepo.ReportPublisher) ForecastOption {
	return func(uc *ForecastUseCase) { uc.publisher = p }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m domrepo.Metrics) ForecastOption {
	return func(uc *ForecastUseCase) {
		if m != nil {
			uc.metrics = m
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *applogger.Logger) ForecastOption {
	return func(uc *ForecastUseCase) {
		if l != nil {
			uc.l = l
		}
	}
}

// WithCorrelation toggles the correlation matrix.
func WithCorrelation(enabled bool) ForecastOption {
	return func(uc *ForecastUseCase) { uc.correlation = enabled }
}

// WithTimeout bounds one run, bar loading and publication included.
func WithTimeout(d time.Duration) ForecastOption {
	return func(uc *ForecastUseCase) { uc.timeout = d }
}

// WithClock overrides the report timestamp source.
func WithClock(now func() time.Time) ForecastOption {
	return func(uc *ForecastUseCase) { uc.now = now }
}

// WithIDGenerator overrides report id generation.
func WithIDGenerator(gen func() string) ForecastOption {
	return func(uc *ForecastUseCase) { uc.newID = gen }
}

// NewForecastUseCase wires a pipeline over source.
func NewForecastUseCase(source domrepo.BarSource, engine *features.Engine, trainer *regression.Trainer,
	featureNames []string, target string, opts ...ForecastOption) (*ForecastUseCase, error) {
	if source == nil || engine == nil || trainer == nil {
		return nil, fmt.Errorf("source, engine and trainer are required")
	}
	if len(featureNames) == 0 {
		return nil, fmt.Errorf("at least one feature is required")
	}
	var zero models.FeatureRow
	for _, name := range append(append([]string(nil), featureNames...), target) {
		if _, err := zero.Value(name); err != nil {
			return nil, err
		}
	}

	uc := &ForecastUseCase{
		source:   source,
		engine:   engine,
		trainer:  trainer,
		features: append([]string(nil), featureNames...),
		target:   target,
		metrics:  metrics.Nop{},
		l:        applogger.Nop(),
		timeout:  time.Minute,
		newID:    func() string { return uuid.NewString() },
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc, nil
}

// Run executes the pipeline once. An *regression.InsufficientDataError from
// any stage is returned wrapped and can be matched with errors.As.
func (uc *ForecastUseCase) Run(ctx context.Context, p ForecastParams) (*ForecastResult, error) {
	if p.Symbol == "" {
		return nil, ErrSymbolRequired
	}
	start := time.Now()
	defer func() { uc.metrics.RecordLatency("forecast", time.Since(start).Seconds()) }()

	if uc.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.timeout)
		defer cancel()
	}
	l := uc.l.With(applogger.String("symbol", p.Symbol))

	loadStart := time.Now()
	bars, err := uc.source.GetBars(ctx, p.Symbol, p.From, p.To)
	uc.metrics.RecordLatency("load", time.Since(loadStart).Seconds())
	if err != nil {
		uc.metrics.RecordError("load")
		return nil, fmt.Errorf("load bars: %w", err)
	}

	clean, stats := features.CleanWithStats(bars)
	uc.metrics.RecordRows("raw", stats.Input)
	uc.metrics.RecordRows("clean", stats.Output)
	uc.metrics.RecordDropped("duplicate", stats.Duplicates)
	uc.metrics.RecordDropped("conflict", stats.Conflicts)
	uc.metrics.RecordDropped("incomplete", stats.Incomplete)

	ds := uc.engine.Build(clean)
	uc.metrics.RecordRows("dataset", len(ds))
	uc.metrics.RecordDropped("undefined_feature", len(clean)-len(ds))
	l.Debug("features built",
		applogger.Int("raw_rows", stats.Input),
		applogger.Int("clean_rows", stats.Output),
		applogger.Int("dataset_rows", len(ds)),
	)

	ev, err := uc.trainer.TrainAndEvaluate(ds, uc.features, uc.target)
	if err != nil {
		var ide *regression.InsufficientDataError
		if errors.As(err, &ide) {
			uc.metrics.RecordError("insufficient_data")
			l.Warn("not enough rows to train",
				applogger.Int("raw_rows", stats.Input),
				applogger.Int("dataset_rows", len(ds)),
				applogger.Error(err),
			)
		} else {
			uc.metrics.RecordError("train")
		}
		return nil, fmt.Errorf("train %s: %w", p.Symbol, err)
	}
	uc.metrics.RecordEvaluation(p.Symbol, ev.MSE, ev.R2)

	res := &ForecastResult{Evaluation: ev, Clean: stats}
	if uc.correlation {
		cols := append(append([]string(nil), uc.features...), uc.target)
		corr, err := regression.CorrelationMatrix(ds, cols)
		if err != nil {
			l.Warn("correlation skipped", applogger.Error(err))
		} else {
			res.Correlation = &corr
		}
	}

	res.Report = uc.buildReport(p.Symbol, stats, len(ds), ev)
	res.DeliveryErrors = uc.deliver(ctx, l, res.Report)

	fields := []applogger.Field{
		applogger.String("report_id", res.Report.ID),
		applogger.Int("train_rows", ev.TrainSize),
		applogger.Int("test_rows", ev.TestSize),
		applogger.Float64("mse", ev.MSE),
		applogger.Duration("duration_ms", time.Since(start)),
	}
	if ev.R2 != nil {
		fields = append(fields, applogger.Float64("r2", *ev.R2))
	}
	l.Info("forecast completed", fields...)
	return res, nil
}

func (uc *ForecastUseCase) buildReport(symbol string, st features.CleanStats, datasetRows int, ev *models.Evaluation) *models.ForecastReport {
	r := &models.ForecastReport{
		ID:           uc.newID(),
		Symbol:       symbol,
		GeneratedAt:  uc.now().UTC(),
		RawRows:      st.Input,
		CleanRows:    st.Output,
		DatasetRows:  datasetRows,
		TrainSize:    ev.TrainSize,
		TestSize:     ev.TestSize,
		MSE:          ev.MSE,
		Intercept:    ev.Model.Intercept(),
		Coefficients: ev.Model.Coefficients(),
		Predictions:  ev.PredictionPairs(),
		Warnings:     append([]string(nil), ev.Warnings...),
	}
	if ev.R2 != nil {
		v := *ev.R2
		r.R2 = &v
	}
	return r
}

// deliver runs the optional outputs concurrently and returns their failures.
func (uc *ForecastUseCase) deliver(ctx context.Context, l *applogger.Logger, r *models.ForecastReport) map[string]error {
	type item struct {
		name string
		err  error
	}
	ch := make(chan item, 2)
	var wg sync.WaitGroup

	if uc.sink != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ch <- item{"sink", uc.sink.StorePredictions(ctx, r.ID, r.Symbol, r.Predictions)}
		}()
	}
	if uc.publisher != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ch <- item{"publisher", uc.publisher.PublishReport(ctx, r)}
		}()
	}
	wg.Wait()
	close(ch)

	var errs map[string]error
	for it := range ch {
		if it.err == nil {
			continue
		}
		if errs == nil {
			errs = make(map[string]error)
		}
		errs[it.name] = it.err
		uc.metrics.RecordError(it.name)
		l.Error("report delivery failed", applogger.String("target", it.name), applogger.Error(it.err))
	}
	return errs
}
