package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/grcstudio/transport-planner/internal/planner"
)

const (
	defaultPort           = "8080"
	defaultSpacing        = 100.0
	defaultRateLimitRPS   = 25.0
	defaultRateLimitBurst = 50
)

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > YAML config > Environment variables > Defaults
type Config struct {
	Port                 string         `yaml:"port"`
	Limits               planner.Limits `yaml:"-"`
	Spacing              float64        `yaml:"spacing"`
	ShutdownGracePeriod  time.Duration  `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    time.Duration  `yaml:"read_header_timeout"`
	WriteTimeout         time.Duration  `yaml:"write_timeout"`
	IdleTimeout          time.Duration  `yaml:"idle_timeout"`
	EnableRequestLogging bool           `yaml:"enable_request_logging"`
	RateLimitRPS         float64        `yaml:"-"`
	RateLimitBurst       int            `yaml:"-"`
}

// yamlConfig represents the YAML configuration file structure.
type yamlConfig struct {
	Port                 string        `yaml:"port"`
	BedWidth             float64       `yaml:"bed_width"`
	BedWeightLimit       float64       `yaml:"bed_weight_limit"`
	TruckMaxLength       float64       `yaml:"truck_max_length"`
	TruckWeightLimit     float64       `yaml:"truck_weight_limit"`
	Spacing              float64       `yaml:"spacing"`
	ShutdownGracePeriod  string        `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    string        `yaml:"read_header_timeout"`
	WriteTimeout         string        `yaml:"write_timeout"`
	IdleTimeout          string        `yaml:"idle_timeout"`
	EnableRequestLogging bool          `yaml:"enable_request_logging"`
	RateLimit            yamlRateLimit `yaml:"rate_limit"`
}

// yamlRateLimit represents the rate limit section in YAML. Pointers
// distinguish an explicit zero (disable) from an absent key.
type yamlRateLimit struct {
	RPS   *float64 `yaml:"rps"`
	Burst *int     `yaml:"burst"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile       string
	Port             *string
	BedWidth         *float64
	BedWeightLimit   *float64
	TruckMaxLength   *float64
	TruckWeightLimit *float64
	Spacing          *float64
	RateLimitRPS     *float64
	RateLimitBurst   *int
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > YAML config > Environment variables > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	// Load from YAML file if specified
	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		applyYAMLConfig(&cfg, yamlCfg)
	}

	// Apply environment variables (override YAML)
	applyEnvConfig(&cfg)

	// Apply CLI overrides (highest precedence)
	if overrides != nil {
		applyCLIOverrides(&cfg, overrides)
	}

	// Validate final configuration
	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	return Config{
		Port:                 defaultPort,
		Limits:               planner.DefaultLimits(),
		Spacing:              defaultSpacing,
		ShutdownGracePeriod:  10 * time.Second,
		ReadHeaderTimeout:    5 * time.Second,
		WriteTimeout:         15 * time.Second,
		IdleTimeout:          60 * time.Second,
		EnableRequestLogging: true,
		RateLimitRPS:         defaultRateLimitRPS,
		RateLimitBurst:       defaultRateLimitBurst,
	}
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return &yamlCfg, nil
}

// applyYAMLConfig applies YAML configuration to the Config struct.
func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) {
	if yamlCfg.Port != "" {
		cfg.Port = yamlCfg.Port
	}

	if yamlCfg.BedWidth > 0 {
		cfg.Limits.BedWidth = yamlCfg.BedWidth
	}
	if yamlCfg.BedWeightLimit > 0 {
		cfg.Limits.BedWeightLimit = yamlCfg.BedWeightLimit
	}
	if yamlCfg.TruckMaxLength > 0 {
		cfg.Limits.TruckMaxLength = yamlCfg.TruckMaxLength
	}
	if yamlCfg.TruckWeightLimit > 0 {
		cfg.Limits.TruckWeightLimit = yamlCfg.TruckWeightLimit
	}
	if yamlCfg.Spacing > 0 {
		cfg.Spacing = yamlCfg.Spacing
	}

	if yamlCfg.ShutdownGracePeriod != "" {
		if d, err := time.ParseDuration(yamlCfg.ShutdownGracePeriod); err == nil {
			cfg.ShutdownGracePeriod = d
		}
	}

	if yamlCfg.ReadHeaderTimeout != "" {
		if d, err := time.ParseDuration(yamlCfg.ReadHeaderTimeout); err == nil {
			cfg.ReadHeaderTimeout = d
		}
	}

	if yamlCfg.WriteTimeout != "" {
		if d, err := time.ParseDuration(yamlCfg.WriteTimeout); err == nil {
			cfg.WriteTimeout = d
		}
	}

	if yamlCfg.IdleTimeout != "" {
		if d, err := time.ParseDuration(yamlCfg.IdleTimeout); err == nil {
			cfg.IdleTimeout = d
		}
	}

	cfg.EnableRequestLogging = yamlCfg.EnableRequestLogging

	if yamlCfg.RateLimit.RPS != nil && *yamlCfg.RateLimit.RPS >= 0 {
		cfg.RateLimitRPS = *yamlCfg.RateLimit.RPS
	}

	if yamlCfg.RateLimit.Burst != nil && *yamlCfg.RateLimit.Burst >= 0 {
		cfg.RateLimitBurst = *yamlCfg.RateLimit.Burst
	}
}

// applyEnvConfig applies environment variable configuration.
func applyEnvConfig(cfg *Config) {
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		cfg.Port = port
	}

	applyEnvFloat("BED_WIDTH", &cfg.Limits.BedWidth)
	applyEnvFloat("BED_WEIGHT_LIMIT", &cfg.Limits.BedWeightLimit)
	applyEnvFloat("TRUCK_MAX_LENGTH", &cfg.Limits.TruckMaxLength)
	applyEnvFloat("TRUCK_WEIGHT_LIMIT", &cfg.Limits.TruckWeightLimit)
	applyEnvFloat("SPACING", &cfg.Spacing)

	if rps := strings.TrimSpace(os.Getenv("RATE_LIMIT_RPS")); rps != "" {
		if value, err := strconv.ParseFloat(rps, 64); err == nil && value >= 0 {
			cfg.RateLimitRPS = value
		}
	}

	if burst := strings.TrimSpace(os.Getenv("RATE_LIMIT_BURST")); burst != "" {
		if value, err := strconv.Atoi(burst); err == nil && value >= 0 {
			cfg.RateLimitBurst = value
		}
	}
}

// applyEnvFloat parses the named environment variable and stores it in dst
// when it is a positive number.
func applyEnvFloat(name string, dst *float64) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return
	}
	if value, err := strconv.ParseFloat(raw, 64); err == nil && value > 0 {
		*dst = value
	}
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) {
	if overrides.Port != nil && *overrides.Port != "" {
		cfg.Port = *overrides.Port
	}

	applyFlagFloat(overrides.BedWidth, &cfg.Limits.BedWidth)
	applyFlagFloat(overrides.BedWeightLimit, &cfg.Limits.BedWeightLimit)
	applyFlagFloat(overrides.TruckMaxLength, &cfg.Limits.TruckMaxLength)
	applyFlagFloat(overrides.TruckWeightLimit, &cfg.Limits.TruckWeightLimit)
	applyFlagFloat(overrides.Spacing, &cfg.Spacing)

	if overrides.RateLimitRPS != nil && *overrides.RateLimitRPS >= 0 {
		cfg.RateLimitRPS = *overrides.RateLimitRPS
	}

	if overrides.RateLimitBurst != nil && *overrides.RateLimitBurst >= 0 {
		cfg.RateLimitBurst = *overrides.RateLimitBurst
	}
}

func applyFlagFloat(src *float64, dst *float64) {
	if src != nil && *src > 0 {
		*dst = *src
	}
}

// validateConfig validates the final configuration.
func validateConfig(cfg Config) error {
	if cfg.Limits.BedWidth <= 0 || cfg.Limits.BedWeightLimit <= 0 {
		return fmt.Errorf("bed limits must be positive")
	}
	if cfg.Limits.TruckMaxLength <= 0 || cfg.Limits.TruckWeightLimit <= 0 {
		return fmt.Errorf("truck limits must be positive")
	}
	if cfg.Spacing < 0 {
		return fmt.Errorf("spacing must be >= 0")
	}
	if cfg.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be >= 0")
	}
	if cfg.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be >= 0")
	}
	return nil
}
