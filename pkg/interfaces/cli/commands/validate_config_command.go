package commands

import (
	"fmt"
	"io"

	"github.com/vsinha/jvalloc/pkg/infrastructure/config"
)

// ValidateConfig loads a configuration file, applies environment overrides
// and reports whether the result is usable
func ValidateConfig(path string, out io.Writer) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	fmt.Fprintf(out, "✅ Configuration valid\n")
	fmt.Fprintf(out, "  Capping policy: %s\n", cfg.Engine.CappingPolicy)
	fmt.Fprintf(out, "  Max percentage: %s\n", cfg.Engine.MaxPercentage)
	fmt.Fprintf(out, "  Timeout: %s\n", cfg.Orchestration.Timeout)
	if cfg.Notifications.Kafka.Enabled {
		fmt.Fprintf(out, "  Kafka: %v -> %s\n", cfg.Notifications.Kafka.Brokers, cfg.Notifications.Kafka.Topic)
	}
	return cfg, nil
}
