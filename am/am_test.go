package am

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME and the working directory at empty temp dirs and
// clears the cached config.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	work := filepath.Join(home, "work")
	require.NoError(t, os.MkdirAll(work, DefaultDirPermissions))
	t.Chdir(work)
	Reset()
	t.Cleanup(Reset)
	return home
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), DefaultDirPermissions))
	require.NoError(t, os.WriteFile(path, []byte(content), DefaultFilePermissions))
}

func TestLoad_Defaults(t *testing.T) {
	// Create isolated viper instance without loading user/system config
	v := viper.New()
	SetDefaults(v)

	cfg, err := LoadWithViper(v)
	if err != nil {
		t.Fatalf("LoadWithViper() failed: %v", err)
	}

	if cfg.Label.Selector != DefaultSelector {
		t.Errorf("expected default selector %q, got %q", DefaultSelector, cfg.Label.Selector)
	}
	if cfg.Label.SampleSize != 0 {
		t.Errorf("expected derived sample size (0), got %d", cfg.Label.SampleSize)
	}
	if cfg.Label.DepthWeightScale != DefaultDepthWeightScale || cfg.Label.DepthWeightExponent != DefaultDepthWeightExponent {
		t.Errorf("unexpected depth weight %v/%v", cfg.Label.DepthWeightScale, cfg.Label.DepthWeightExponent)
	}
	if cfg.Debounce() != 500*time.Millisecond {
		t.Errorf("expected 500ms debounce, got %v", cfg.Debounce())
	}
	if cfg.Watch.MaxRunsPerMinute != DefaultMaxRunsPerMinute {
		t.Errorf("expected %d runs per minute, got %d", DefaultMaxRunsPerMinute, cfg.Watch.MaxRunsPerMinute)
	}
}

func TestValidate_ZeroValues(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"empty config is valid", Config{}, false},
		{"zero sample size is valid (derived)", Config{Label: LabelConfig{SampleSize: 0}}, false},
		{"negative sample size is invalid", Config{Label: LabelConfig{SampleSize: -1}}, true},
		{"known selector", Config{Label: LabelConfig{Selector: "farthest-leaves"}}, false},
		{"unknown selector", Config{Label: LabelConfig{Selector: "random"}}, true},
		{"negative depth weight scale", Config{Label: LabelConfig{DepthWeightScale: -1}}, true},
		{"negative depth weight exponent", Config{Label: LabelConfig{DepthWeightExponent: -2}}, true},
		{"zero rate limit is valid (unlimited)", Config{Watch: WatchConfig{MaxRunsPerMinute: 0}}, false},
		{"negative rate limit is invalid", Config{Watch: WatchConfig{MaxRunsPerMinute: -1}}, true},
		{"negative debounce is invalid", Config{Watch: WatchConfig{DebounceMS: -5}}, true},
		{"known theme", Config{Log: LogConfig{Theme: "gruvbox"}}, false},
		{"unknown theme", Config{Log: LogConfig{Theme: "solarized"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSetDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	tests := []struct {
		key      string
		expected interface{}
	}{
		{"label.selector", "top-down"},
		{"label.sample_size", 0},
		{"watch.debounce_ms", 500},
		{"watch.max_runs_per_minute", 6},
		{"log.theme", "everforest"},
		{"log.json", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got := v.Get(tt.key)
			if got != tt.expected {
				t.Errorf("default %s = %v, want %v", tt.key, got, tt.expected)
			}
		})
	}
}

func TestFindProjectConfig(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("walks up to am.toml", func(t *testing.T) {
		subDir := filepath.Join(tmpDir, "test1", "subdir")
		writeFile(t, filepath.Join(tmpDir, "test1", "am.toml"), "")
		require.NoError(t, os.MkdirAll(subDir, DefaultDirPermissions))
		t.Chdir(subDir)

		result := findProjectConfig()
		if !filepath.IsAbs(result) {
			t.Errorf("expected absolute path, got %q", result)
		}
		if filepath.Base(result) != "am.toml" {
			t.Errorf("expected am.toml, got %s", filepath.Base(result))
		}
	})

	t.Run("ignores other toml files", func(t *testing.T) {
		subDir := filepath.Join(tmpDir, "test2", "subdir")
		writeFile(t, filepath.Join(tmpDir, "test2", "config.toml"), "")
		require.NoError(t, os.MkdirAll(subDir, DefaultDirPermissions))
		t.Chdir(subDir)

		if result := findProjectConfig(); result != "" {
			t.Errorf("expected empty string, got %s", result)
		}
	})
}

func TestLoadTracksSources(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, ".treelabel", "am.toml"), "[label]\nselector = \"weighted\"\nsample_size = 12\n")
	// project file in the working directory's parent wins over the user file
	writeFile(t, filepath.Join(home, "am.toml"), "[label]\nsample_size = 30\n")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "weighted", cfg.Label.Selector)
	assert.Equal(t, 30, cfg.Label.SampleSize)

	assert.Equal(t, SourceUser, ConfigSources["label.selector"].Source)
	assert.Equal(t, SourceProject, ConfigSources["label.sample_size"].Source)
	assert.Equal(t, filepath.Join(home, "am.toml"), ConfigSources["label.sample_size"].Path)

	again, err := Load()
	require.NoError(t, err)
	assert.Same(t, cfg, again, "cached until Reset")
}

func TestEnvironmentWinsOverFiles(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, ".treelabel", "am.toml"), "[label]\nselector = \"weighted\"\n")
	t.Setenv("TREELABEL_LABEL_SELECTOR", "farthest-leaves")
	t.Setenv("TREELABEL_SEED", "42")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "farthest-leaves", cfg.Label.Selector)
	assert.Equal(t, uint64(42), cfg.Label.Seed)
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, ".treelabel", "am.toml"), "[watch]\nmax_runs_per_minute = -1\n")

	_, err := Load()
	assert.ErrorContains(t, err, "max_runs_per_minute")
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "am.toml")
	writeFile(t, path, "[log]\ntheme = \"gruvbox\"\njson = true\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "gruvbox", cfg.GetLogTheme())
	assert.True(t, cfg.Log.JSON)
	assert.Equal(t, DefaultSelector, cfg.Label.Selector)

	_, err = LoadFromFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestGetConfigIntrospection(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, ".treelabel", "am.toml"), "[label]\nselector = \"weighted\"\n")
	t.Setenv("TREELABEL_LOG_THEME", "gruvbox")

	info, err := GetConfigIntrospection()
	require.NoError(t, err)

	byKey := map[string]SettingInfo{}
	for _, s := range info.Settings {
		byKey[s.Key] = s
	}
	assert.Equal(t, SourceUser, byKey["label.selector"].Source)
	assert.Equal(t, "weighted", byKey["label.selector"].Value)
	assert.Equal(t, SourceDefault, byKey["watch.debounce_ms"].Source)
	assert.Equal(t, SourceEnvironment, byKey["log.theme"].Source)
	assert.Equal(t, "TREELABEL_LOG_THEME", byKey["log.theme"].SourcePath)

	for i := 1; i < len(info.Settings); i++ {
		assert.Less(t, info.Settings[i-1].Key, info.Settings[i].Key, "sorted by key")
	}
}
