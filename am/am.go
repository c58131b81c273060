// Package am loads treelabel's user configuration ("am" settings) from TOML
// files and TREELABEL_* environment variables.
package am

// Config represents the treelabel configuration
type Config struct {
	Label LabelConfig `mapstructure:"label" yaml:"label" toml:"label" json:"label"`
	Watch WatchConfig `mapstructure:"watch" yaml:"watch" toml:"watch" json:"watch"`
	Log   LogConfig   `mapstructure:"log" yaml:"log" toml:"log" json:"log"`
}

// LabelConfig configures each labelling iteration
type LabelConfig struct {
	Selector   string `mapstructure:"selector" yaml:"selector" toml:"selector" json:"selector"`             // top-down, weighted or farthest-leaves
	SampleSize int    `mapstructure:"sample_size" yaml:"sample_size" toml:"sample_size" json:"sample_size"` // 0 = derive from the alphabet and tree
	Seed       uint64 `mapstructure:"seed" yaml:"seed" toml:"seed" json:"seed"`                             // 0 = new seed per iteration

	// Farthest-leaves depth weight: scale / (depth+1)^exponent, 0 = default
	DepthWeightScale    float64 `mapstructure:"depth_weight_scale" yaml:"depth_weight_scale" toml:"depth_weight_scale" json:"depth_weight_scale"`
	DepthWeightExponent float64 `mapstructure:"depth_weight_exponent" yaml:"depth_weight_exponent" toml:"depth_weight_exponent" json:"depth_weight_exponent"`
}

// WatchConfig configures `treelabel watch`
type WatchConfig struct {
	DebounceMS       int `mapstructure:"debounce_ms" yaml:"debounce_ms" toml:"debounce_ms" json:"debounce_ms"`                                 // Quiet period after the last save
	MaxRunsPerMinute int `mapstructure:"max_runs_per_minute" yaml:"max_runs_per_minute" toml:"max_runs_per_minute" json:"max_runs_per_minute"` // 0 = unlimited
}

// LogConfig configures console output
type LogConfig struct {
	JSON  bool   `mapstructure:"json" yaml:"json" toml:"json" json:"json"`
	Theme string `mapstructure:"theme" yaml:"theme" toml:"theme" json:"theme"` // Color theme: everforest, gruvbox
}

// File system constants
const (
	DefaultDirPermissions  = 0755 // Standard directory permissions (rwxr-xr-x)
	DefaultFilePermissions = 0644 // Standard file permissions (rw-r--r--)
)
