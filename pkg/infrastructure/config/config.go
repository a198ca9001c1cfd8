// Package config loads jvalloc settings from YAML with environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/vsinha/jvalloc/pkg/application/services/allocation"
	"github.com/vsinha/jvalloc/pkg/domain/services"
	"github.com/vsinha/jvalloc/pkg/infrastructure/repositories/csv"
)

// Config holds all jvalloc configuration.
type Config struct {
	Engine        EngineConfig        `yaml:"engine"`
	Defaults      DefaultsConfig      `yaml:"defaults"`
	Orchestration OrchestrationConfig `yaml:"orchestration"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// EngineConfig configures the allocation engine.
type EngineConfig struct {
	MaxPercentage        string  `yaml:"max_percentage"`
	VolumePlaces         int32   `yaml:"volume_places"`
	PercentagePlaces     int32   `yaml:"percentage_places"`
	VarianceToleranceBBL float64 `yaml:"variance_tolerance_bbl"`
	CappingPolicy        string  `yaml:"capping_policy"`
}

// DefaultsConfig holds values applied to blank input cells.
type DefaultsConfig struct {
	BSWPercent      float64 `yaml:"bsw_percent"`
	TemperatureDegF float64 `yaml:"temperature_degF"`
}

// OrchestrationConfig configures a reconciliation run.
type OrchestrationConfig struct {
	Timeout string `yaml:"timeout"`
}

// NotificationsConfig configures where finished runs are announced.
type NotificationsConfig struct {
	Kafka KafkaConfig `yaml:"kafka"`
}

// KafkaConfig configures the Kafka run publisher.
type KafkaConfig struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			MaxPercentage:        "99.99999",
			VolumePlaces:         services.VolumePlaces,
			PercentagePlaces:     6,
			VarianceToleranceBBL: 1.0,
			CappingPolicy:        allocation.PolicyCapAndNormalize,
		},
		Defaults: DefaultsConfig{
			BSWPercent:      0,
			TemperatureDegF: services.StandardTemperatureDegF,
		},
		Orchestration: OrchestrationConfig{
			Timeout: "30s",
		},
		Notifications: NotificationsConfig{
			Kafka: KafkaConfig{
				Enabled: false,
				Brokers: []string{"localhost:9092"},
				Topic:   "jv-allocations",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if level := os.Getenv("JVALLOC_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if format := os.Getenv("JVALLOC_LOG_FORMAT"); format != "" {
		c.Logging.Format = format
	}
	if brokers := os.Getenv("JVALLOC_KAFKA_BROKERS"); brokers != "" {
		c.Notifications.Kafka.Brokers = splitList(brokers)
		c.Notifications.Kafka.Enabled = true
	}
	if topic := os.Getenv("JVALLOC_KAFKA_TOPIC"); topic != "" {
		c.Notifications.Kafka.Topic = topic
	}
	if policy := os.Getenv("JVALLOC_CAPPING_POLICY"); policy != "" {
		c.Engine.CappingPolicy = policy
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	max, err := decimal.NewFromString(c.Engine.MaxPercentage)
	if err != nil {
		return fmt.Errorf("engine.max_percentage %q: %w", c.Engine.MaxPercentage, err)
	}
	if !max.IsPositive() || max.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("engine.max_percentage must be in (0, 100], got %s", max)
	}
	if c.Engine.VolumePlaces < services.VolumePlaces || c.Engine.VolumePlaces > 6 {
		return fmt.Errorf("engine.volume_places must be between %d and 6, got %d", services.VolumePlaces, c.Engine.VolumePlaces)
	}
	if c.Engine.PercentagePlaces < 0 || c.Engine.PercentagePlaces > 10 {
		return fmt.Errorf("engine.percentage_places must be between 0 and 10, got %d", c.Engine.PercentagePlaces)
	}
	if c.Engine.VarianceToleranceBBL < 0 {
		return fmt.Errorf("engine.variance_tolerance_bbl cannot be negative, got %g", c.Engine.VarianceToleranceBBL)
	}
	if _, err := allocation.PolicyByName(c.Engine.CappingPolicy); err != nil {
		return fmt.Errorf("engine.capping_policy: %w", err)
	}

	if c.Defaults.BSWPercent < 0 || c.Defaults.BSWPercent >= 100 {
		return fmt.Errorf("defaults.bsw_percent must be in [0, 100), got %g", c.Defaults.BSWPercent)
	}
	if c.Defaults.TemperatureDegF < -50 || c.Defaults.TemperatureDegF > 200 {
		return fmt.Errorf("defaults.temperature_degF must be in [-50, 200], got %g", c.Defaults.TemperatureDegF)
	}

	if _, err := c.GetTimeout(); err != nil {
		return err
	}

	if c.Notifications.Kafka.Enabled {
		if len(c.Notifications.Kafka.Brokers) == 0 {
			return fmt.Errorf("notifications.kafka.brokers required when kafka is enabled")
		}
		if c.Notifications.Kafka.Topic == "" {
			return fmt.Errorf("notifications.kafka.topic required when kafka is enabled")
		}
	}

	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}

	return nil
}

// GetTimeout returns the orchestration timeout as a duration.
func (c *Config) GetTimeout() (time.Duration, error) {
	timeout, err := time.ParseDuration(c.Orchestration.Timeout)
	if err != nil {
		return 0, fmt.Errorf("orchestration.timeout %q: %w", c.Orchestration.Timeout, err)
	}
	if timeout <= 0 {
		return 0, fmt.Errorf("orchestration.timeout must be positive, got %s", timeout)
	}
	return timeout, nil
}

// AllocationEngineConfig converts the engine section into engine settings.
func (c *Config) AllocationEngineConfig() (allocation.EngineConfig, error) {
	max, err := decimal.NewFromString(c.Engine.MaxPercentage)
	if err != nil {
		return allocation.EngineConfig{}, fmt.Errorf("engine.max_percentage %q: %w", c.Engine.MaxPercentage, err)
	}
	policy, err := allocation.PolicyByName(c.Engine.CappingPolicy)
	if err != nil {
		return allocation.EngineConfig{}, fmt.Errorf("engine.capping_policy: %w", err)
	}

	return allocation.EngineConfig{
		MaxPercentage:     max,
		VolumePlaces:      c.Engine.VolumePlaces,
		PercentagePlaces:  c.Engine.PercentagePlaces,
		VarianceTolerance: decimal.NewFromFloat(c.Engine.VarianceToleranceBBL),
		Capping:           policy,
	}, nil
}

// InputDefaults converts the defaults section for the CSV loader.
func (c *Config) InputDefaults() csv.InputDefaults {
	return csv.InputDefaults{
		BSWPercent:      c.Defaults.BSWPercent,
		TemperatureDegF: c.Defaults.TemperatureDegF,
	}
}
