// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shirou/gopsutil/v3/cpu"
	"gopkg.in/yaml.v3"

	"github.com/Bhoomi3044/optivest/internal/domain"
	"github.com/Bhoomi3044/optivest/internal/modules/evaluation"
	"github.com/Bhoomi3044/optivest/internal/modules/frontier"
	"github.com/Bhoomi3044/optivest/internal/modules/optimization"
	"github.com/Bhoomi3044/optivest/internal/modules/sampling"
	"github.com/Bhoomi3044/optivest/pkg/formulas"
)

// Config holds application configuration
type Config struct {
	TrialCount      int     `yaml:"trial_count"`
	PeriodsPerYear  int     `yaml:"periods_per_year"`
	RiskFreeRate    float64 `yaml:"risk_free_rate"`
	RiskChoice      string  `yaml:"risk_choice"`
	SamplingMethod  string  `yaml:"sampling_method"`
	Workers         int     `yaml:"workers"`
	Seed            *uint64 `yaml:"seed"` // nil = system entropy for uploads, fixed seed for sample data
	FrontierBuckets int     `yaml:"frontier_buckets"`
	LogLevel        string  `yaml:"log_level"`
	Port            int     `yaml:"port"`
	DevMode         bool    `yaml:"dev_mode"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		TrialCount:      frontier.DefaultTrialCount,
		PeriodsPerYear:  formulas.DefaultPeriodsPerYear,
		RiskFreeRate:    0,
		RiskChoice:      domain.Balanced.String(),
		SamplingMethod:  string(sampling.MethodUniform),
		Workers:         defaultWorkers(),
		FrontierBuckets: frontier.DefaultBuckets,
		LogLevel:        "info",
		Port:            8080,
	}
}

// Load builds the configuration. Precedence, lowest first: built-in
// defaults, the YAML file (path, or OPTIVEST_CONFIG when path is empty),
// environment variables (a .env file is loaded if present).
func Load(path string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := Default()

	if path == "" {
		path = getEnv("OPTIVEST_CONFIG", "")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.TrialCount = getEnvAsInt("OPTIVEST_TRIALS", c.TrialCount)
	c.PeriodsPerYear = getEnvAsInt("OPTIVEST_PERIODS_PER_YEAR", c.PeriodsPerYear)
	c.RiskFreeRate = getEnvAsFloat("OPTIVEST_RISK_FREE_RATE", c.RiskFreeRate)
	c.RiskChoice = getEnv("OPTIVEST_RISK_CHOICE", c.RiskChoice)
	c.SamplingMethod = getEnv("OPTIVEST_SAMPLING_METHOD", c.SamplingMethod)
	c.Workers = getEnvAsInt("OPTIVEST_WORKERS", c.Workers)
	c.Seed = getEnvAsUint64Ptr("OPTIVEST_SEED", c.Seed)
	c.FrontierBuckets = getEnvAsInt("OPTIVEST_FRONTIER_BUCKETS", c.FrontierBuckets)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.Port = getEnvAsInt("PORT", c.Port)
	c.DevMode = getEnvAsBool("DEV_MODE", c.DevMode)
}

// Validate rejects values no run could use.
func (c *Config) Validate() error {
	if c.TrialCount < 1 {
		return &domain.ValidationError{Field: "trial_count", Reason: fmt.Sprintf("must be at least 1, got %d", c.TrialCount)}
	}
	if c.PeriodsPerYear < 1 {
		return &domain.ValidationError{Field: "periods_per_year", Reason: fmt.Sprintf("must be at least 1, got %d", c.PeriodsPerYear)}
	}
	if err := evaluation.ValidateRiskFreeRate(c.RiskFreeRate); err != nil {
		return err
	}
	if c.Workers < 1 {
		return &domain.ValidationError{Field: "workers", Reason: fmt.Sprintf("must be at least 1, got %d", c.Workers)}
	}
	if c.FrontierBuckets < 1 {
		return &domain.ValidationError{Field: "frontier_buckets", Reason: fmt.Sprintf("must be at least 1, got %d", c.FrontierBuckets)}
	}
	if c.Port < 1 || c.Port > 65535 {
		return &domain.ValidationError{Field: "port", Reason: fmt.Sprintf("out of range: %d", c.Port)}
	}
	if _, err := domain.ParseRecommendationChoice(c.RiskChoice); err != nil {
		return err
	}
	if _, err := sampling.ParseMethod(c.SamplingMethod); err != nil {
		return err
	}
	return nil
}

// RunOptions converts the configuration into per-run optimization options.
func (c *Config) RunOptions() (optimization.RunOptions, error) {
	choice, err := domain.ParseRecommendationChoice(c.RiskChoice)
	if err != nil {
		return optimization.RunOptions{}, err
	}
	method, err := sampling.ParseMethod(c.SamplingMethod)
	if err != nil {
		return optimization.RunOptions{}, err
	}

	opts := optimization.DefaultRunOptions()
	opts.TrialCount = c.TrialCount
	opts.PeriodsPerYear = c.PeriodsPerYear
	opts.RiskFreeRate = c.RiskFreeRate
	opts.Choice = choice
	opts.Method = method
	opts.Buckets = c.FrontierBuckets
	if c.Seed != nil {
		seed := *c.Seed
		opts.Seed = &seed
	}
	return opts, nil
}

// ServiceConfig returns the parallelism settings for optimization.NewService.
func (c *Config) ServiceConfig() optimization.Config {
	return optimization.Config{Workers: c.Workers}
}

func defaultWorkers() int {
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsUint64Ptr(key string, defaultValue *uint64) *uint64 {
	if value := os.Getenv(key); value != "" {
		if uintVal, err := strconv.ParseUint(value, 10, 64); err == nil {
			return &uintVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
