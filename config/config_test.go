package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/srg/anovamon/monitor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "Anova", cfg.Name)
	assert.Empty(t, cfg.Address)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 30*time.Second, time.Duration(cfg.ConnectTimeout))
	assert.Equal(t, 10*time.Second, time.Duration(cfg.CommandTimeout))
	assert.Equal(t, 30*time.Second, time.Duration(cfg.PollingCycle))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anova.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: Kitchen Anova
address: "01:02:03:04:05:06"
log_level: debug
connect_timeout: 10s
polling_cycle: 1m
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Kitchen Anova", cfg.Name)
	assert.Equal(t, "01:02:03:04:05:06", cfg.Address)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 10*time.Second, time.Duration(cfg.ConnectTimeout))
	assert.Equal(t, time.Minute, time.Duration(cfg.PollingCycle))
	// Not set in the file - default survives
	assert.Equal(t, 10*time.Second, time.Duration(cfg.CommandTimeout))
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed duration", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "anova.yaml")
		require.NoError(t, os.WriteFile(path, []byte("connect_timeout: soon\n"), 0o600))

		_, err := Load(path)
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	cfg := Default()
	assert.Error(t, cfg.Validate(), "address is required")

	cfg.Address = "01:02:03:04:05:06"
	assert.NoError(t, cfg.Validate())

	cfg.LogLevel = "loud"
	assert.Error(t, cfg.Validate())
}

func TestNewLogger(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "debug"

	logger := cfg.NewLogger()
	require.NotNil(t, logger)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	formatter, ok := logger.Formatter.(*logrus.TextFormatter)
	require.True(t, ok)
	assert.True(t, formatter.FullTimestamp)
	assert.Equal(t, time.RFC3339, formatter.TimestampFormat)
}

func TestMonitorOptions(t *testing.T) {
	cfg := Default()
	cfg.ConnectTimeout = Duration(5 * time.Second)

	opts := cfg.MonitorOptions()
	assert.Equal(t, 5*time.Second, opts.ConnectTimeout)
	assert.Equal(t, monitor.DefaultCommandTimeout, opts.CommandTimeout)
	assert.Equal(t, monitor.DefaultPollingCycle, opts.PollingCycle)
}
