package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"StockCast/internal/report"
	"StockCast/internal/repository"
	"StockCast/internal/usecase"
	"StockCast/pkg/config"
	xhttp "StockCast/pkg/http"
	applogger "StockCast/pkg/logger"
)

// App encapsulates the application lifecycle for the CLI commands.
type App struct {
	cfg        *config.Config
	forecast   *usecase.ForecastUseCase
	httpServer *xhttp.Server
	store      *repository.CHBarStore
	l          *applogger.Logger
}

// New creates a new App instance with all dependencies. store may be nil
// when ClickHouse is disabled.
func New(
	cfg *config.Config,
	forecast *usecase.ForecastUseCase,
	httpServer *xhttp.Server,
	store *repository.CHBarStore,
	l *applogger.Logger,
) *App {
	return &App{
		cfg:        cfg,
		forecast:   forecast,
		httpServer: httpServer,
		store:      store,
		l:          l,
	}
}

// Logger returns the application logger.
func (a *App) Logger() *applogger.Logger { return a.l }

// RunOnce runs a single forecast, prints the report to out and writes the
// predictions CSV when configured.
func (a *App) RunOnce(ctx context.Context, p usecase.ForecastParams, out io.Writer) error {
	res, err := a.forecast.Run(ctx, p)
	if err != nil {
		return err
	}
	if err := report.WriteText(out, res.Report, res.Correlation); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if path := a.cfg.Report.PredictionsCSV; path != "" {
		if err := report.WritePredictionsFile(path, res.Report.Predictions); err != nil {
			return err
		}
		a.l.Info("predictions written", applogger.String("path", path), applogger.Int("rows", len(res.Report.Predictions)))
	}
	for target, derr := range res.DeliveryErrors {
		a.l.Warn("report not delivered", applogger.String("target", target), applogger.Error(derr))
	}
	return nil
}

// Serve starts the HTTP API and blocks until ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	if err := a.httpServer.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	a.l.Info("shutdown signal received")

	if err := a.httpServer.Stop(context.Background()); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
		return err
	}
	a.l.Info("shutdown complete")
	return nil
}

// Import loads bars from a CSV file into ClickHouse under symbol.
func (a *App) Import(ctx context.Context, path, symbol string) error {
	if a.store == nil {
		return fmt.Errorf("import requires clickhouse.enabled")
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	start := time.Now()
	bars, err := repository.ReadBarsCSV(f)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := a.store.StoreBars(ctx, symbol, bars); err != nil {
		return err
	}
	a.l.Info("bars imported",
		applogger.String("path", path),
		applogger.String("symbol", symbol),
		applogger.Int("rows", len(bars)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return nil
}
