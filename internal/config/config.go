package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Configuration errors are fatal: they abort the run before the simulation
// starts. Everything that can go wrong later degrades per ticker/date instead.
var (
	ErrNoTickers       = errors.New("config: ticker list is empty")
	ErrBadDateRange    = errors.New("config: start date is after end date")
	ErrBadCapital      = errors.New("config: initial capital must be positive")
	ErrNoAnalysts      = errors.New("config: no analysts selected")
	ErrUnknownLLMMode  = errors.New("config: llm mode must be \"simulated\" or \"http\"")
	ErrMissingDatabase = errors.New("config: database url is required")
)

const dateLayout = "2006-01-02"

// Config is the top-level run configuration for a backtest.
type Config struct {
	Backtest   BacktestConfig   `yaml:"backtest"`
	Risk       RiskConfig       `yaml:"risk"`
	Commission CommissionConfig `yaml:"commission"`
	LLM        LLMConfig        `yaml:"llm"`
	Database   DatabaseConfig   `yaml:"database"`
	Logging    LoggingConfig    `yaml:"logging"`
	Report     ReportConfig     `yaml:"report"`
}

// BacktestConfig drives the simulation loop itself.
type BacktestConfig struct {
	Tickers        []string `yaml:"tickers"`
	StartDate      string   `yaml:"start_date"` // YYYY-MM-DD
	EndDate        string   `yaml:"end_date"`   // YYYY-MM-DD
	InitialCapital float64  `yaml:"initial_capital"`
	// Analysts selects and orders the strategy set. The order defines
	// tie-break priority during signal aggregation.
	Analysts []string `yaml:"analysts"`
	// AnalystTimeoutSec bounds a single analyst evaluation, in seconds; on
	// expiry the analyst contributes a neutral signal instead of aborting
	// the run.
	AnalystTimeoutSec int `yaml:"analyst_timeout_seconds"`
}

func (b BacktestConfig) AnalystTimeout() time.Duration {
	return time.Duration(b.AnalystTimeoutSec) * time.Second
}

// RiskConfig holds the portfolio-level exposure limits.
type RiskConfig struct {
	// MaxPositionValue caps a single position in account currency. Zero
	// disables the absolute cap.
	MaxPositionValue float64 `yaml:"max_position_value"`
	// MaxPositionPct caps a single position as a fraction of total equity,
	// e.g. 0.20 for 20%.
	MaxPositionPct float64 `yaml:"max_position_pct"`
	// MaxGrossExposurePct caps the sum of absolute position values as a
	// fraction of total equity.
	MaxGrossExposurePct float64 `yaml:"max_gross_exposure_pct"`
	// MaxDailyLossPct is the circuit breaker: when drawdown from peak equity
	// exceeds this fraction, new exposure is rejected outright.
	MaxDailyLossPct float64 `yaml:"max_daily_loss_pct"`
	AllowShort      bool    `yaml:"allow_short"`
}

// CommissionConfig is a flat-plus-proportional fee with optional clamps.
type CommissionConfig struct {
	Flat   float64 `yaml:"flat"`
	Rate   float64 `yaml:"rate"` // fraction of trade value, e.g. 0.0005
	MinFee float64 `yaml:"min_fee"`
	MaxFee float64 `yaml:"max_fee"`
}

// LLMConfig selects the signal generator implementation.
type LLMConfig struct {
	Mode   string `yaml:"mode"` // "simulated" or "http"
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
	Seed   int64  `yaml:"seed"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

type ReportConfig struct {
	RiskFreeRate float64 `yaml:"risk_free_rate"` // annual, e.g. 0.0434
	TradesCSV    string  `yaml:"trades_csv"`     // empty disables the export
}

// Load reads the YAML configuration at path, applies environment overrides and
// validates the result. A .env file next to the process is honoured when
// present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Backtest: BacktestConfig{
			AnalystTimeoutSec: 30,
		},
		Risk: RiskConfig{
			MaxPositionPct:      0.20,
			MaxGrossExposurePct: 1.0,
			MaxDailyLossPct:     0.05,
		},
		LLM: LLMConfig{
			Mode: "simulated",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Report: ReportConfig{
			RiskFreeRate: 0.0434,
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_URL"); v != "" {
		cfg.LLM.URL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks everything that must hold before a simulation may start.
func (c *Config) Validate() error {
	if len(c.Backtest.Tickers) == 0 {
		return ErrNoTickers
	}
	if len(c.Backtest.Analysts) == 0 {
		return ErrNoAnalysts
	}
	if c.Backtest.InitialCapital <= 0 {
		return ErrBadCapital
	}
	start, err := c.StartDate()
	if err != nil {
		return err
	}
	end, err := c.EndDate()
	if err != nil {
		return err
	}
	if start.After(end) {
		return ErrBadDateRange
	}
	switch c.LLM.Mode {
	case "simulated":
	case "http":
		if c.LLM.URL == "" {
			return fmt.Errorf("config: llm mode %q requires a url", c.LLM.Mode)
		}
	default:
		return ErrUnknownLLMMode
	}
	if c.Database.URL == "" {
		return ErrMissingDatabase
	}
	return nil
}

func (c *Config) StartDate() (time.Time, error) {
	return parseDate(c.Backtest.StartDate, "start_date")
}

func (c *Config) EndDate() (time.Time, error) {
	return parseDate(c.Backtest.EndDate, "end_date")
}

func (c *Config) InitialCapital() decimal.Decimal {
	return decimal.NewFromFloat(c.Backtest.InitialCapital)
}

func parseDate(s, field string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("config: invalid %s %q: %w", field, s, err)
	}
	return t.UTC(), nil
}
