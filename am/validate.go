package am

import (
	"slices"

	"github.com/teranos/treelabel/errors"
	"github.com/teranos/treelabel/logger"
)

// Selectors lists the accepted label.selector values.
var Selectors = []string{"top-down", "weighted", "farthest-leaves"}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	// Empty selector means the default
	if c.Label.Selector != "" && !slices.Contains(Selectors, c.Label.Selector) {
		return errors.WithHintf(
			errors.Newf("label.selector %q is unknown", c.Label.Selector),
			"use one of %v", Selectors)
	}

	// Sample size: 0 = derived per iteration, negative = invalid
	if c.Label.SampleSize < 0 {
		return errors.Newf("label.sample_size must be >= 0, got %d", c.Label.SampleSize)
	}

	// Depth weight: 0 = default, negative = invalid
	if c.Label.DepthWeightScale < 0 {
		return errors.Newf("label.depth_weight_scale must be >= 0, got %f", c.Label.DepthWeightScale)
	}
	if c.Label.DepthWeightExponent < 0 {
		return errors.Newf("label.depth_weight_exponent must be >= 0, got %f", c.Label.DepthWeightExponent)
	}

	if c.Watch.DebounceMS < 0 {
		return errors.Newf("watch.debounce_ms must be >= 0, got %d", c.Watch.DebounceMS)
	}
	// Rate limit: 0 = unlimited, negative = invalid
	if c.Watch.MaxRunsPerMinute < 0 {
		return errors.Newf("watch.max_runs_per_minute must be >= 0, got %d", c.Watch.MaxRunsPerMinute)
	}

	if c.Log.Theme != "" && !slices.Contains(logger.Themes(), c.Log.Theme) {
		return errors.WithHintf(
			errors.Newf("log.theme %q is unknown", c.Log.Theme),
			"use one of %v", logger.Themes())
	}
	return nil
}
