package am

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Default values
const (
	DefaultSelector            = "top-down"
	DefaultDepthWeightScale    = 1000.0
	DefaultDepthWeightExponent = 20.0
	DefaultDebounceMS          = 500
	DefaultMaxRunsPerMinute    = 6
	DefaultTheme               = "everforest"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("label.selector", DefaultSelector)
	v.SetDefault("label.sample_size", 0)
	v.SetDefault("label.seed", 0)
	v.SetDefault("label.depth_weight_scale", DefaultDepthWeightScale)
	v.SetDefault("label.depth_weight_exponent", DefaultDepthWeightExponent)

	v.SetDefault("watch.debounce_ms", DefaultDebounceMS)
	v.SetDefault("watch.max_runs_per_minute", DefaultMaxRunsPerMinute)

	v.SetDefault("log.json", false)
	v.SetDefault("log.theme", DefaultTheme)
}

// BindEnvVars binds settings commonly overridden per shell session
func BindEnvVars(v *viper.Viper) {
	v.BindEnv("label.seed", "TREELABEL_SEED")
	v.BindEnv("log.theme", "TREELABEL_LOG_THEME")
}

// Debounce returns the watch debounce period (default: 500ms)
func (c *Config) Debounce() time.Duration {
	if c.Watch.DebounceMS <= 0 {
		return DefaultDebounceMS * time.Millisecond
	}
	return time.Duration(c.Watch.DebounceMS) * time.Millisecond
}

// GetLogTheme returns the log theme (default: everforest)
func (c *Config) GetLogTheme() string {
	if c.Log.Theme == "" {
		return DefaultTheme
	}
	return c.Log.Theme
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Label: {Selector: %s, SampleSize: %d}, Watch: {DebounceMS: %d}}",
		c.Label.Selector, c.Label.SampleSize, c.Watch.DebounceMS)
}
