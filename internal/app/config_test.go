package app

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(viper.New(), "", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "candleview.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
chart:
  visible_days: 60
  paging:
    page_size: 400
    debounce: 300ms
feed:
  base_price: 250
`), 0o644))
	t.Setenv("CANDLEVIEW_CHART_PAGING_PAGE_SIZE", "800")

	cfg, err := Load(viper.New(), "", file)
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.Chart.VisibleDays)
	assert.Equal(t, 800, cfg.Chart.Paging.PageSize, "environment beats file")
	assert.Equal(t, 300*time.Millisecond, cfg.Chart.Paging.Debounce)
	assert.Equal(t, 250.0, cfg.Feed.BasePrice)
	assert.Equal(t, DefaultConfig().Chart.Axis, cfg.Chart.Axis)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	env := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(env, []byte("CANDLEVIEW_LOG_LEVEL=debug\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("CANDLEVIEW_LOG_LEVEL") })

	cfg, err := Load(viper.New(), env, "")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := Load(viper.New(), "", filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateCollectsEveryError(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Chart.Paging.PageSize = 0
	cfg.Chart.Axis.ZoomInFactor = 1.5
	cfg.Log.Level = "loud"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 3)
	assert.Contains(t, err.Error(), "page_size")

	assert.NoError(t, DefaultConfig().Validate())
}

func TestNewLoggerFallback(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := NewLogger(LogConfig{Level: "warn"}, &buf)
	require.NoError(t, err)
	defer closer.Close()

	logger.Info("hidden")
	logger.WithField("component", "chart").Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "component=chart")
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())
}

func TestNewLoggerFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "candleview.log")
	cfg := DefaultLogConfig()
	cfg.File = file
	cfg.JSON = true

	logger, closer, err := NewLogger(cfg, os.Stderr)
	require.NoError(t, err)
	logger.Info("to file")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"to file"`)
}
