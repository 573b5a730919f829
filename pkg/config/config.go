package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"StockCast/pkg/logger"
)

type Config struct {
	Environment string        `yaml:"environment" default:"development" validate:"required"`
	Log         logger.Config `yaml:"log"`
	Pipeline    Pipeline      `yaml:"pipeline"`
	Source      struct {
		Type     string        `yaml:"type" default:"csv" validate:"oneof=csv clickhouse"`
		CSVPath  string        `yaml:"csv_path"`
		Symbol   string        `yaml:"symbol" default:"GS"`
		CacheTTL time.Duration `yaml:"cache_ttl" default:"10m"`
	} `yaml:"source"`
	Report struct {
		PredictionsCSV string `yaml:"predictions_csv"`
		Correlation    bool   `yaml:"correlation" default:"true"`
	} `yaml:"report"`
	Server struct {
		Port            int           `yaml:"port" default:"8080" validate:"gte=1,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		RateLimit       struct {
			Capacity     int     `yaml:"capacity" default:"20" validate:"gte=0"`
			RefillPerSec float64 `yaml:"refill_per_sec" default:"2" validate:"gte=0"`
		} `yaml:"rate_limit"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host" default:"localhost"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"stockcast"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		BarsTable        string        `yaml:"bars_table" default:"daily_bars"`
		PredictionsTable string        `yaml:"predictions_table" default:"predictions"`
		UseHTTP          bool          `yaml:"use_http"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"30s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"60s"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic" default:"stockcast.forecasts"`
		RequiredAcks int      `yaml:"required_acks" default:"-1"`
		Compression  string   `yaml:"compression" default:"gzip" validate:"oneof=gzip snappy lz4 zstd"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Host     string `yaml:"host" default:"localhost"`
		Port     int    `yaml:"port" default:"6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix" default:"stockcast"`
	} `yaml:"redis"`
}

// Pipeline configures feature windows, the split and the model columns.
type Pipeline struct {
	MAShort          int      `yaml:"ma_short" default:"5" validate:"gte=1"`
	MALong           int      `yaml:"ma_long" default:"10" validate:"gte=1"`
	VolatilityWindow int      `yaml:"volatility_window" default:"5" validate:"gte=2"`
	TestFraction     float64  `yaml:"test_fraction" default:"0.2" validate:"gt=0,lt=1"`
	Features         []string `yaml:"features" default:"[\"Daily_Return\",\"MA_5\",\"MA_10\",\"Volatility_5\",\"Volume_Change\"]" validate:"min=1,dive,oneof=Daily_Return MA_5 MA_10 Volatility_5 Volume_Change"`
	Target           string   `yaml:"target" default:"Target_Close" validate:"eq=Target_Close"`
}

var validate = validator.New()

// Default returns a configuration with every documented default applied.
func Default() *Config {
	var c Config
	if err := defaults.Set(&c); err != nil {
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return &c
}

// Load reads and parses a YAML configuration file. Missing keys take their
// documented defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML bytes, applies defaults and validates.
func Parse(b []byte) (*Config, error) {
	// defaults first so that explicit zero values in the document win
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML (defaults only when path is empty),
// loads a .env file from the working directory if present, and applies
// environment overrides.
func LoadWithEnv(path string) (*Config, error) {
	c := Default()
	if path != "" {
		var err error
		if c, err = Load(path); err != nil {
			return nil, err
		}
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := c.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// ApplyEnv overrides selected fields from environment variables. A value
// that does not parse for its field is an error.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv("STOCKCAST_CSV"); v != "" {
		c.Source.Type = "csv"
		c.Source.CSVPath = v
	}
	if v := getenv("STOCKCAST_SYMBOL"); v != "" {
		c.Source.Symbol = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := getenv("REDIS_HOST"); v != "" {
		c.Redis.Host = v
	}
	if v := getenv("TEST_FRACTION"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("env TEST_FRACTION %q: %w", v, err)
		}
		c.Pipeline.TestFraction = f
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Source.Type == "clickhouse" && !c.ClickHouse.Enabled {
		return fmt.Errorf("source.type clickhouse requires clickhouse.enabled")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	return nil
}
