// Package app loads the candleview configuration and sets up logging.
package app

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"github.com/zappabad/candleview/internal/chart"
	"github.com/zappabad/candleview/internal/feed"
	"github.com/zappabad/candleview/internal/interact"
)

// EnvPrefix prefixes every environment variable the config reads, e.g.
// CANDLEVIEW_CHART_PAGING_PAGE_SIZE.
const EnvPrefix = "candleview"

// Config holds configuration for the whole program.
type Config struct {
	// Chart is the configuration for axes, renderer and paging.
	Chart chart.Config `mapstructure:"chart"`
	// Interact is the configuration for mouse gestures.
	Interact interact.Config `mapstructure:"interact"`
	// Feed is the configuration for the synthetic data source.
	Feed feed.Config `mapstructure:"feed"`
	// Log is the configuration for logging.
	Log LogConfig `mapstructure:"log"`
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		Chart:    chart.DefaultConfig(),
		Interact: interact.DefaultConfig(),
		Feed:     feed.DefaultConfig(),
		Log:      DefaultLogConfig(),
	}
}

// setDefaults registers every key so that environment variables are seen
// by Unmarshal.
func setDefaults(v *viper.Viper, c Config) {
	defaults := map[string]any{
		"chart.pan_percentage":  c.Chart.PanPercentage,
		"chart.max_bar_spacing": c.Chart.MaxBarSpacing,
		"chart.max_scale":       c.Chart.MaxScale,
		"chart.visible_days":    c.Chart.VisibleDays,

		"chart.axis.tick_count":       c.Chart.Axis.TickCount,
		"chart.axis.minor_tick_count": c.Chart.Axis.MinorTickCount,
		"chart.axis.max_ticks":        c.Chart.Axis.MaxTicks,
		"chart.axis.zoom_in_factor":   c.Chart.Axis.ZoomInFactor,
		"chart.axis.zoom_out_factor":  c.Chart.Axis.ZoomOutFactor,

		"chart.render.body_width": c.Chart.Render.BodyWidth,
		"chart.render.grid":       c.Chart.Render.Grid,
		"chart.render.labels":     c.Chart.Render.Labels,

		"chart.paging.page_size":       c.Chart.Paging.PageSize,
		"chart.paging.rps":             c.Chart.Paging.RequestsPerSecond,
		"chart.paging.burst":           c.Chart.Paging.Burst,
		"chart.paging.max_retries":     c.Chart.Paging.MaxRetries,
		"chart.paging.initial_backoff": c.Chart.Paging.InitialBackoff,
		"chart.paging.max_backoff":     c.Chart.Paging.MaxBackoff,
		"chart.paging.timeout":         c.Chart.Paging.Timeout,
		"chart.paging.debounce":        c.Chart.Paging.Debounce,

		"interact.zoom_in_factor":  c.Interact.ZoomInFactor,
		"interact.zoom_out_factor": c.Interact.ZoomOutFactor,
		"interact.idle_timeout":    c.Interact.IdleTimeout,
		"interact.vertical":        c.Interact.Vertical,

		"feed.seed":       c.Feed.Seed,
		"feed.base_price": c.Feed.BasePrice,
		"feed.latency":    c.Feed.Latency,

		"log.level":       c.Log.Level,
		"log.file":        c.Log.File,
		"log.max_size":    c.Log.MaxSizeMB,
		"log.max_backups": c.Log.MaxBackups,
		"log.max_age":     c.Log.MaxAgeDays,
		"log.json":        c.Log.JSON,
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
}

// Load reads, in increasing priority: defaults, the .env file at envFile,
// the YAML config file, CANDLEVIEW_* environment variables and any flags
// already bound to v. An empty configFile searches ./candleview.yaml and
// $HOME/.candleview/candleview.yaml and tolerates neither existing.
func Load(v *viper.Viper, envFile, configFile string) (Config, error) {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return Config{}, errors.Wrapf(err, "load %s", envFile)
			}
		}
	}

	cfg := DefaultConfig()
	setDefaults(v, cfg)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Wrapf(err, "read config %s", configFile)
		}
	} else {
		v.SetConfigName("candleview")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.candleview")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, errors.Wrap(err, "read config")
			}
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var err error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			err = multierr.Append(err, errors.Errorf(format, args...))
		}
	}

	ch := c.Chart
	check(ch.PanPercentage > 0 && ch.PanPercentage <= 1, "chart.pan_percentage %v must be in (0, 1]", ch.PanPercentage)
	check(ch.MaxBarSpacing > 0, "chart.max_bar_spacing %v must be positive", ch.MaxBarSpacing)
	check(ch.MaxScale > 0, "chart.max_scale %v must be positive", ch.MaxScale)
	check(ch.VisibleDays > 0, "chart.visible_days %d must be positive", ch.VisibleDays)

	check(ch.Axis.TickCount >= 2, "chart.axis.tick_count %d must be at least 2", ch.Axis.TickCount)
	check(ch.Axis.MinorTickCount >= 1, "chart.axis.minor_tick_count %d must be at least 1", ch.Axis.MinorTickCount)
	check(ch.Axis.ZoomInFactor > 0 && ch.Axis.ZoomInFactor < 1, "chart.axis.zoom_in_factor %v must be in (0, 1)", ch.Axis.ZoomInFactor)
	check(ch.Axis.ZoomOutFactor > 1, "chart.axis.zoom_out_factor %v must be above 1", ch.Axis.ZoomOutFactor)

	check(ch.Render.BodyWidth > 0, "chart.render.body_width %v must be positive", ch.Render.BodyWidth)

	check(ch.Paging.PageSize > 0, "chart.paging.page_size %d must be positive", ch.Paging.PageSize)
	check(ch.Paging.RequestsPerSecond >= 0, "chart.paging.rps %v must not be negative", ch.Paging.RequestsPerSecond)
	check(ch.Paging.Debounce >= 0, "chart.paging.debounce %v must not be negative", ch.Paging.Debounce)

	check(c.Interact.IdleTimeout > 0, "interact.idle_timeout %v must be positive", c.Interact.IdleTimeout)
	check(c.Feed.BasePrice > 0, "feed.base_price %v must be positive", c.Feed.BasePrice)

	if _, lerr := c.Log.ParseLevel(); lerr != nil {
		err = multierr.Append(err, lerr)
	}
	return err
}
