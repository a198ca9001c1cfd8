package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/jvalloc/pkg/application/services/allocation"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	engineCfg, err := cfg.AllocationEngineConfig()
	require.NoError(t, err)
	assert.Equal(t, "99.99999", engineCfg.MaxPercentage.String())
	assert.Equal(t, allocation.PolicyCapAndNormalize, engineCfg.Capping.Name())
	assert.Equal(t, int32(2), engineCfg.VolumePlaces)

	timeout, err := cfg.GetTimeout()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, timeout)

	defaults := cfg.InputDefaults()
	assert.Equal(t, 60.0, defaults.TemperatureDegF)
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jvalloc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
engine:
  capping_policy: cap_redistribute
orchestration:
  timeout: 5s
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, allocation.PolicyCapAndRedistribute, cfg.Engine.CappingPolicy)
	assert.Equal(t, "5s", cfg.Orchestration.Timeout)
	assert.Equal(t, "99.99999", cfg.Engine.MaxPercentage)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine: [unterminated"), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "jvalloc.yaml")

	cfg := DefaultConfig()
	cfg.Engine.CappingPolicy = allocation.PolicyProportional
	cfg.Notifications.Kafka.Brokers = []string{"k1:9092", "k2:9092"}
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("JVALLOC_LOG_LEVEL", "debug")
	t.Setenv("JVALLOC_LOG_FORMAT", "console")
	t.Setenv("JVALLOC_KAFKA_BROKERS", "broker-a:9092, broker-b:9092,")
	t.Setenv("JVALLOC_KAFKA_TOPIC", "allocations.v2")
	t.Setenv("JVALLOC_CAPPING_POLICY", "proportional")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, []string{"broker-a:9092", "broker-b:9092"}, cfg.Notifications.Kafka.Brokers)
	assert.True(t, cfg.Notifications.Kafka.Enabled)
	assert.Equal(t, "allocations.v2", cfg.Notifications.Kafka.Topic)
	assert.Equal(t, allocation.PolicyProportional, cfg.Engine.CappingPolicy)
	assert.NoError(t, cfg.Validate())
}

func TestValidate_Rejects(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*Config)
		errText string
	}{
		{"bad max percentage", func(c *Config) { c.Engine.MaxPercentage = "lots" }, "engine.max_percentage"},
		{"max above 100", func(c *Config) { c.Engine.MaxPercentage = "100.5" }, "must be in (0, 100]"},
		{"negative places", func(c *Config) { c.Engine.VolumePlaces = -1 }, "engine.volume_places"},
		{"places coarser than net volumes", func(c *Config) { c.Engine.VolumePlaces = 0 }, "engine.volume_places must be between 2 and 6"},
		{"negative tolerance", func(c *Config) { c.Engine.VarianceToleranceBBL = -1 }, "variance_tolerance_bbl"},
		{"unknown policy", func(c *Config) { c.Engine.CappingPolicy = "winner_takes_all" }, "unknown capping policy"},
		{"bsw default of 100", func(c *Config) { c.Defaults.BSWPercent = 100 }, "defaults.bsw_percent"},
		{"temperature default out of range", func(c *Config) { c.Defaults.TemperatureDegF = 300 }, "defaults.temperature_degF"},
		{"bad timeout", func(c *Config) { c.Orchestration.Timeout = "soon" }, "orchestration.timeout"},
		{"zero timeout", func(c *Config) { c.Orchestration.Timeout = "0s" }, "must be positive"},
		{"kafka without topic", func(c *Config) {
			c.Notifications.Kafka.Enabled = true
			c.Notifications.Kafka.Topic = ""
		}, "topic required"},
		{"kafka without brokers", func(c *Config) {
			c.Notifications.Kafka.Enabled = true
			c.Notifications.Kafka.Brokers = nil
		}, "brokers required"},
		{"unknown log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tc.errText)
		})
	}
}
