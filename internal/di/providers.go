package di

import (
	"context"
	"fmt"
	"time"

	"StockCast/internal/domain/repository"
	"StockCast/internal/handler/api"
	internalrepo "StockCast/internal/repository"
	"StockCast/internal/service/ratelimit"
	"StockCast/internal/services/features"
	"StockCast/internal/services/regression"
	"StockCast/internal/usecase"
	"StockCast/pkg/cache"
	pkgch "StockCast/pkg/clickhouse"
	"StockCast/pkg/config"
	xhttp "StockCast/pkg/http"
	pkgkafka "StockCast/pkg/kafka"
	applogger "StockCast/pkg/logger"
	"StockCast/pkg/metrics"
	"StockCast/pkg/server"

	"github.com/prometheus/client_golang/prometheus"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideRegistry creates the Prometheus registry for pipeline and HTTP metrics.
func ProvideRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

// ProvideMetrics creates a Prometheus metrics recorder, or a no-op one when disabled.
func ProvideMetrics(cfg *config.Config, reg *prometheus.Registry) repository.Metrics {
	if !cfg.Metrics.Enabled {
		return metrics.Nop{}
	}
	return metrics.New(reg)
}

// ProvideClickHouseClient connects to ClickHouse and ensures the schema.
// It returns a nil client when ClickHouse is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, func(), error) {
	if !cfg.ClickHouse.Enabled {
		return nil, func() {}, nil
	}
	ch := cfg.ClickHouse
	client, err := pkgch.NewClient(
		pkgch.WithEndpoint(ch.Host, ch.Port, ch.Database),
		pkgch.WithCredentials(ch.User, ch.Password),
		pkgch.WithHTTP(ch.UseHTTP),
		pkgch.WithTimeouts(ch.DialTimeout, ch.ReadTimeout, ch.MaxExecutionTime),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	stmts := pkgch.Schema(cfg.ClickHouse.Database, cfg.ClickHouse.BarsTable, cfg.ClickHouse.PredictionsTable)
	if err := client.InitSchema(ctx, stmts); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, func() { _ = client.Close() }, nil
}

// ProvideBarStore creates the ClickHouse bar store; nil without a client.
func ProvideBarStore(ch *pkgch.Client, cfg *config.Config, l *applogger.Logger) *internalrepo.CHBarStore {
	if ch == nil {
		return nil
	}
	store := internalrepo.NewCHBarStore(ch, cfg.ClickHouse.Database, cfg.ClickHouse.BarsTable, cfg.ClickHouse.PredictionsTable)
	store.SetLogger(l)
	return store
}

// ProvideCache creates a Redis cache when enabled, an in-memory one otherwise.
func ProvideCache(cfg *config.Config) (cache.Service, func(), error) {
	if !cfg.Redis.Enabled {
		c := cache.NewMemoryCache()
		return c, func() { _ = c.Close() }, nil
	}
	c, err := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Redis.Host, cfg.Redis.Port),
		cache.WithRedisAuth(cfg.Redis.Password, cfg.Redis.DB),
		cache.WithKeyPrefix(cfg.Redis.Prefix),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("redis cache: %w", err)
	}
	return c, func() { _ = c.Close() }, nil
}

// ProvideBarSource selects the configured bar source and wraps it in the cache
// when a cache TTL is set.
func ProvideBarSource(cfg *config.Config, store *internalrepo.CHBarStore, c cache.Service, l *applogger.Logger) (repository.BarSource, error) {
	var src repository.BarSource
	switch cfg.Source.Type {
	case "clickhouse":
		if store == nil {
			return nil, fmt.Errorf("bar source clickhouse: clickhouse is disabled")
		}
		src = store
	default:
		if cfg.Source.CSVPath == "" {
			return nil, fmt.Errorf("bar source csv: source.csv_path is required")
		}
		src = internalrepo.NewCSVBarSource(cfg.Source.CSVPath, l)
	}
	if cfg.Source.CacheTTL > 0 {
		src = internalrepo.NewCachedBarSource(src, c, cfg.Source.CacheTTL, l)
	}
	return src, nil
}

// ProvidePredictionSink returns the ClickHouse store as sink, or nil.
func ProvidePredictionSink(store *internalrepo.CHBarStore) repository.PredictionSink {
	if store == nil {
		return nil
	}
	return store
}

// ProvideKafkaProducer creates a Kafka producer; nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config, reg *prometheus.Registry) (*pkgkafka.Producer, func(), error) {
	if !cfg.Kafka.Enabled {
		return nil, func() {}, nil
	}
	opts := []pkgkafka.ProducerOption{
		pkgkafka.WithBrokers(cfg.Kafka.Brokers...),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithDelivery(cfg.Kafka.RequiredAcks, cfg.Kafka.Producer.MaxAttempts, cfg.Kafka.Producer.WriteTimeout),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, pkgkafka.WithRegisterer(reg))
	}
	producer, err := pkgkafka.NewProducer(opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, func() { _ = producer.Close() }, nil
}

// ProvideReportPublisher wraps the producer; nil without one.
func ProvideReportPublisher(p *pkgkafka.Producer, cfg *config.Config, l *applogger.Logger) repository.ReportPublisher {
	if p == nil {
		return nil
	}
	return internalrepo.NewKafkaReportPublisher(p, cfg.Kafka.Topic, l)
}

// ProvideEngine creates the feature engine from the pipeline windows.
func ProvideEngine(cfg *config.Config) (*features.Engine, error) {
	return features.NewEngine(features.Config{
		MAShort:          cfg.Pipeline.MAShort,
		MALong:           cfg.Pipeline.MALong,
		VolatilityWindow: cfg.Pipeline.VolatilityWindow,
	})
}

// ProvideTrainer creates the regression trainer.
func ProvideTrainer(cfg *config.Config, l *applogger.Logger) (*regression.Trainer, error) {
	t, err := regression.NewTrainer(cfg.Pipeline.TestFraction)
	if err != nil {
		return nil, err
	}
	t.SetLogger(l)
	return t, nil
}

// ProvideForecastUseCase assembles the forecast pipeline.
func ProvideForecastUseCase(
	cfg *config.Config,
	src repository.BarSource,
	engine *features.Engine,
	trainer *regression.Trainer,
	sink repository.PredictionSink,
	pub repository.ReportPublisher,
	m repository.Metrics,
	l *applogger.Logger,
) (*usecase.ForecastUseCase, error) {
	opts := []usecase.ForecastOption{
		usecase.WithMetrics(m),
		usecase.WithLogger(l),
		usecase.WithCorrelation(cfg.Report.Correlation),
	}
	if sink != nil {
		opts = append(opts, usecase.WithPredictionSink(sink))
	}
	if pub != nil {
		opts = append(opts, usecase.WithReportPublisher(pub))
	}
	return usecase.NewForecastUseCase(src, engine, trainer, cfg.Pipeline.Features, cfg.Pipeline.Target, opts...)
}

// ProvideForecastHandler creates the HTTP handler.
func ProvideForecastHandler(cfg *config.Config, l *applogger.Logger, uc *usecase.ForecastUseCase) *api.ForecastEchoHandler {
	h := api.NewForecastEchoHandler(l, uc)
	h.SetRateLimiter(ratelimit.New(cfg.Server.RateLimit.Capacity, cfg.Server.RateLimit.RefillPerSec))
	return h
}

// ProvideHTTPServer creates the Echo server; metrics are served when enabled.
func ProvideHTTPServer(cfg *config.Config, h *api.ForecastEchoHandler, l *applogger.Logger, reg *prometheus.Registry) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
	}
	if cfg.Metrics.Enabled {
		gatherer := prometheus.Gatherers{reg, prometheus.DefaultGatherer}
		opts = append(opts, xhttp.WithMetrics(cfg.Metrics.Path, reg, gatherer))
	}
	return xhttp.NewServer(h, l, opts...)
}

// ProvideApp creates the application.
func ProvideApp(cfg *config.Config, uc *usecase.ForecastUseCase, srv *xhttp.Server,
	store *internalrepo.CHBarStore, l *applogger.Logger) *server.App {
	return server.New(cfg, uc, srv, store, l)
}
