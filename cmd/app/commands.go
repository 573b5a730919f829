package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"StockCast/internal/di"
	"StockCast/internal/usecase"
	"StockCast/pkg/config"
	"StockCast/pkg/server"
	"StockCast/pkg/util"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	csvPath    string
	symbol     string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "stockcast",
		Short:         "Next-day close forecasting from daily OHLCV bars",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "config/config.yaml", "config file path")
	root.PersistentFlags().StringVar(&opts.csvPath, "csv", "", "CSV file with Date,Open,High,Low,Close,Volume (overrides config)")
	root.PersistentFlags().StringVar(&opts.symbol, "symbol", "", "symbol (overrides config)")

	root.AddCommand(newRunCmd(opts), newServeCmd(opts), newImportCmd(opts))
	return root
}

// loadConfig reads config and applies the persistent flag overrides.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	path := o.configPath
	if _, err := os.Stat(path); err != nil && o.csvPath != "" {
		path = ""
	}
	cfg, err := config.LoadWithEnv(path)
	if err != nil {
		return nil, fmt.Errorf("config load failed: %w", err)
	}
	if o.csvPath != "" {
		cfg.Source.Type = "csv"
		cfg.Source.CSVPath = o.csvPath
	}
	if o.symbol != "" {
		cfg.Source.Symbol = o.symbol
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func initApp(cfg *config.Config) (*server.App, func(), error) {
	app, cleanup, err := di.InitializeApp(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("app initialization failed: %w", err)
	}
	return app, cleanup, nil
}

func newRunCmd(opts *rootOptions) *cobra.Command {
	var (
		from, to    string
		predictions string
		correlation bool
		timeout     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline once and print the evaluation report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if predictions != "" {
				cfg.Report.PredictionsCSV = predictions
			}
			if cmd.Flags().Changed("correlation") {
				cfg.Report.Correlation = correlation
			}

			params := usecase.ForecastParams{Symbol: cfg.Source.Symbol}
			if params.From, err = parseFlagTime("from", from); err != nil {
				return err
			}
			if params.To, err = parseFlagTime("to", to); err != nil {
				return err
			}

			app, cleanup, err := initApp(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			ctx, cancelTimeout := context.WithTimeout(ctx, timeout)
			defer cancelTimeout()

			return app.RunOnce(ctx, params, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first date (inclusive)")
	cmd.Flags().StringVar(&to, "to", "", "last date (inclusive)")
	cmd.Flags().StringVar(&predictions, "predictions", "", "write actual vs predicted CSV to this path")
	cmd.Flags().BoolVar(&correlation, "correlation", true, "print the feature correlation matrix")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall run timeout")
	return cmd
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the forecast HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			app, cleanup, err := initApp(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return app.Serve(ctx)
		},
	}
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Import a CSV file of daily bars into ClickHouse",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.csvPath == "" {
				return fmt.Errorf("--csv is required")
			}
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			app, cleanup, err := initApp(cfg)
			if err != nil {
				return err
			}
			defer cleanup()
			return app.Import(cmd.Context(), opts.csvPath, cfg.Source.Symbol)
		},
	}
}

func parseFlagTime(name, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, ok := util.ParseTime(s)
	if !ok {
		return time.Time{}, fmt.Errorf("--%s: invalid date %q", name, s)
	}
	return t, nil
}
