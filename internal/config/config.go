package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	FeedDemo     = "demo"
	FeedCSV      = "csv"
	FeedPostgres = "postgres"
)

// Config mirrors the flat YAML layout of the simulator's config file. Keys
// that are absent keep their defaults; unknown keys are ignored.
type Config struct {
	Symbol              string  `yaml:"symbol" default:"BTC" validate:"required"`
	InitialCash         float64 `yaml:"initial_cash" default:"1000000" validate:"gt=0"`
	FeeRate             float64 `yaml:"fee_rate" default:"0.0005" validate:"gte=0,lt=1"`
	SlippageRate        float64 `yaml:"slippage_rate" default:"0.0002" validate:"gte=0,lt=1"`
	EffectiveGap        float64 `yaml:"effective_gap" default:"0.01" validate:"gte=0"`
	TrailingPct         float64 `yaml:"trailing_pct" default:"0.01" validate:"gte=0,lt=1"`
	CooldownSec         int     `yaml:"cooldown_sec" default:"300" validate:"gte=0"`
	TradeSizeCash       float64 `yaml:"trade_size_cash" default:"100000" validate:"gt=0"`
	ReportIntervalSec   int     `yaml:"report_interval_sec" default:"3600" validate:"gte=0"`
	StatePath           string  `yaml:"state_path" default:"state.json" validate:"required"`
	TradesLogPath       string  `yaml:"trades_log_path" default:"trades.log" validate:"required"`
	HourlyReportPath    string  `yaml:"hourly_report_path" default:"hourly_report.log" validate:"required"`
	TradesCSVPath       string  `yaml:"trades_csv_path"`
	MetricsPath         string  `yaml:"metrics_path"`
	Progress            bool    `yaml:"progress"`
	DemoPriceStart      float64 `yaml:"demo_price_start" default:"50000" validate:"gt=0"`
	DemoPriceVolatility float64 `yaml:"demo_price_volatility" default:"0.003" validate:"gte=0,lt=1"`
	DemoIntervalSec     int     `yaml:"demo_interval_sec" default:"5" validate:"gt=0"`
	DemoSeed            int64   `yaml:"demo_seed" default:"42"`
	// DemoTicks of zero runs the synthetic feed until interrupted.
	DemoTicks int `yaml:"demo_ticks" default:"720" validate:"gte=0"`

	Log     LogConfig    `yaml:"log"`
	Feed    FeedConfig   `yaml:"feed"`
	Filters FilterConfig `yaml:"filters"`
}

type LogConfig struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" default:"console" validate:"oneof=json console"`
	Output string `yaml:"output" default:"stderr"`
}

type FeedConfig struct {
	Source      string    `yaml:"source" default:"demo" validate:"oneof=demo csv postgres"`
	CSVPath     string    `yaml:"csv_path" validate:"required_if=Source csv"`
	DatabaseURL string    `yaml:"database_url" validate:"required_if=Source postgres"`
	Interval    string    `yaml:"interval" default:"1"`
	Start       time.Time `yaml:"start"`
	End         time.Time `yaml:"end"`
}

type FilterConfig struct {
	// VolatilityWindow of zero disables the volatility gate.
	VolatilityWindow int     `yaml:"volatility_window" validate:"gte=0"`
	VolatilityMax    float64 `yaml:"volatility_max" default:"0.05" validate:"gte=0"`
}

var validate = validator.New()

// Default returns a config with every default applied.
func Default() *Config {
	var c Config
	if err := defaults.Set(&c); err != nil {
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return &c
}

// Load reads a YAML configuration file on top of the defaults. A missing
// file is not an error.
func Load(path string) (*Config, error) {
	c, err := load(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML, then applies a .env file and
// HEARTBEAT_* environment overrides.
func LoadWithEnv(path string) (*Config, error) {
	c, err := load(path)
	if err != nil {
		return nil, err
	}

	// A missing .env file is fine.
	_ = godotenv.Load()

	if v := os.Getenv("HEARTBEAT_SYMBOL"); v != "" {
		c.Symbol = v
	}
	if v := os.Getenv("HEARTBEAT_STATE_PATH"); v != "" {
		c.StatePath = v
	}
	if v := os.Getenv("HEARTBEAT_DATABASE_URL"); v != "" {
		c.Feed.DatabaseURL = v
	}
	if v := os.Getenv("HEARTBEAT_FEED"); v != "" {
		c.Feed.Source = v
	}
	if v := os.Getenv("HEARTBEAT_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("HEARTBEAT_DEMO_TICKS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid HEARTBEAT_DEMO_TICKS: %w", err)
		}
		c.DemoTicks = n
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func load(path string) (*Config, error) {
	c := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return c, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return c, nil
}

// Validate checks field ranges and cross-field rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Feed.Source == FeedPostgres && !c.Feed.End.IsZero() && c.Feed.End.Before(c.Feed.Start) {
		return fmt.Errorf("feed.end %s is before feed.start %s", c.Feed.End, c.Feed.Start)
	}
	return nil
}

func (c *Config) Cooldown() time.Duration {
	return time.Duration(c.CooldownSec) * time.Second
}

func (c *Config) ReportInterval() time.Duration {
	return time.Duration(c.ReportIntervalSec) * time.Second
}

func (c *Config) DemoInterval() time.Duration {
	return time.Duration(c.DemoIntervalSec) * time.Second
}
