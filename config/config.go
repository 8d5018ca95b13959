// Package config holds solver, integration-policy and logging parameters.
//
// Values start from DefaultConfig, are overlaid by an optional YAML file and
// finally by CREDLIB_* environment variables (a .env file is honoured).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	Pricing PricingConfig `yaml:"pricing"`
	Solver  SolverConfig  `yaml:"solver"`
	Log     LogConfig     `yaml:"log"`
}

// PricingConfig mirrors the engine policy knobs.
type PricingConfig struct {
	// Step is the integration grid step as a tenor ("1M", "1W", "0").
	Step                     string  `yaml:"step"`
	DefaultTiming            float64 `yaml:"default_timing"`
	AccrueOnDefault          bool    `yaml:"accrue_on_default"`
	AccruedFractionOnDefault float64 `yaml:"accrued_fraction_on_default"`
	DiscountingAccrued       bool    `yaml:"discounting_accrued"`
	IncludeSettlePayments    bool    `yaml:"include_settle_payments"`
}

// SolverConfig bounds the 1-D root searches behind implied quantities.
type SolverConfig struct {
	Tolerance          float64 `yaml:"tolerance"`
	MaxIter            int     `yaml:"max_iter"`
	MaxBracketAttempts int     `yaml:"max_bracket_attempts"`
}

// LogConfig selects the log level and output format ("json" or "console").
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Pricing: PricingConfig{
			Step:                     "1M",
			DefaultTiming:            0.5,
			AccrueOnDefault:          true,
			AccruedFractionOnDefault: 1,
			DiscountingAccrued:       true,
		},
		Solver: SolverConfig{
			Tolerance:          1e-10,
			MaxIter:            100,
			MaxBracketAttempts: 50,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

var (
	mu  sync.RWMutex
	cfg = DefaultConfig()
)

// SetConfig replaces the active configuration.
func SetConfig(c Config) {
	mu.Lock()
	defer mu.Unlock()
	cfg = c
}

// GetConfig returns the active configuration.
func GetConfig() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

// Load builds a configuration from defaults, the YAML file at path (skipped
// when path is empty) and the environment, then validates it.
func Load(path string) (*Config, error) {
	c := DefaultConfig()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config.Load: %w", err)
		}
		if err := yaml.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("config.Load: parse %s: %w", path, err)
		}
	}

	// A missing .env is not an error.
	_ = godotenv.Load()
	if err := c.applyEnv(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}

// Validate checks value ranges. It does not parse the step tenor.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	var errs []error
	if c.Pricing.Step == "" {
		errs = append(errs, errors.New("pricing.step is required"))
	}
	if c.Pricing.DefaultTiming < 0 || c.Pricing.DefaultTiming > 1 {
		errs = append(errs, fmt.Errorf("pricing.default_timing %v outside [0,1]", c.Pricing.DefaultTiming))
	}
	if c.Pricing.AccruedFractionOnDefault < 0 || c.Pricing.AccruedFractionOnDefault > 1 {
		errs = append(errs, fmt.Errorf("pricing.accrued_fraction_on_default %v outside [0,1]", c.Pricing.AccruedFractionOnDefault))
	}
	if c.Solver.Tolerance <= 0 {
		errs = append(errs, errors.New("solver.tolerance must be positive"))
	}
	if c.Solver.MaxIter <= 0 {
		errs = append(errs, errors.New("solver.max_iter must be positive"))
	}
	if c.Solver.MaxBracketAttempts < 0 {
		errs = append(errs, errors.New("solver.max_bracket_attempts must not be negative"))
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "json", "console", "pretty":
	default:
		errs = append(errs, fmt.Errorf("log.format %q must be json or console", c.Log.Format))
	}
	return errors.Join(errs...)
}

const envPrefix = "CREDLIB_"

func (c *Config) applyEnv() error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(envPrefix + key); ok {
			*dst = v
		}
	}
	float := func(key string, dst *float64) {
		if v, ok := os.LookupEnv(envPrefix + key); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, key, err))
				return
			}
			*dst = f
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := os.LookupEnv(envPrefix + key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, key, err))
				return
			}
			*dst = n
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := os.LookupEnv(envPrefix + key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, key, err))
				return
			}
			*dst = b
		}
	}

	str("STEP", &c.Pricing.Step)
	float("DEFAULT_TIMING", &c.Pricing.DefaultTiming)
	boolean("ACCRUE_ON_DEFAULT", &c.Pricing.AccrueOnDefault)
	float("ACCRUED_FRACTION_ON_DEFAULT", &c.Pricing.AccruedFractionOnDefault)
	boolean("DISCOUNTING_ACCRUED", &c.Pricing.DiscountingAccrued)
	boolean("INCLUDE_SETTLE_PAYMENTS", &c.Pricing.IncludeSettlePayments)
	float("SOLVER_TOLERANCE", &c.Solver.Tolerance)
	integer("SOLVER_MAX_ITER", &c.Solver.MaxIter)
	integer("SOLVER_MAX_BRACKET_ATTEMPTS", &c.Solver.MaxBracketAttempts)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	return errors.Join(errs...)
}
