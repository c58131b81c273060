package am

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/teranos/treelabel/errors"
	"github.com/teranos/treelabel/logger"
)

// createBackup creates rotating backups (.back1, .back2, .back3) before modifying config
func createBackup(configPath string) error {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil // No file to backup
	}

	// .back3 -> delete, .back2 -> .back3, .back1 -> .back2, current -> .back1
	back3 := configPath + ".back3"
	back2 := configPath + ".back2"
	back1 := configPath + ".back1"

	if err := os.Remove(back3); err != nil && !os.IsNotExist(err) {
		// Not fatal for the save
		logger.Warnw("Failed to delete old backup", logger.FieldPath, back3, logger.FieldError, err)
	}

	if _, err := os.Stat(back2); err == nil {
		if err := os.Rename(back2, back3); err != nil {
			return errors.Wrap(err, "failed to rotate .back2 to .back3")
		}
	}
	if _, err := os.Stat(back1); err == nil {
		if err := os.Rename(back1, back2); err != nil {
			return errors.Wrap(err, "failed to rotate .back1 to .back2")
		}
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		return errors.Wrap(err, "failed to read config for backup")
	}
	if err := os.WriteFile(back1, content, DefaultFilePermissions); err != nil {
		return errors.Wrap(err, "failed to create .back1")
	}
	return nil
}

// loadOrInitialize loads a config file as a nested map, or an empty map if
// it doesn't exist
func loadOrInitialize(configPath string) (map[string]interface{}, error) {
	config := make(map[string]interface{})
	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return config, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", configPath)
	}
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", configPath)
	}
	return config, nil
}

// parseValue reads a command-line value as a TOML value, falling back to a
// plain string: "12" is an integer, "true" a bool, "top-down" a string.
func parseValue(raw string) interface{} {
	var doc map[string]interface{}
	if err := toml.Unmarshal([]byte("v = "+raw), &doc); err == nil {
		return doc["v"]
	}
	return raw
}

// Set writes key = value into the user config file, keeping rotating
// backups. The resulting configuration must validate.
func Set(key, value string) (string, error) {
	return SetInFile(UserConfigPath(), key, value)
}

// SetInFile writes key = value into the config file at configPath.
func SetInFile(configPath, key, value string) (string, error) {
	if configPath == "" {
		return "", errors.New("could not determine home directory")
	}

	defaults := viper.New()
	SetDefaults(defaults)
	if !slices.Contains(defaults.AllKeys(), key) {
		return "", errors.WithHintf(
			errors.Newf("unknown setting %q", key),
			"known settings: %s", strings.Join(knownKeys(defaults), ", "))
	}

	config, err := loadOrInitialize(configPath)
	if err != nil {
		return "", err
	}
	setNested(config, strings.Split(key, "."), parseValue(value))

	// Validate before touching the file
	check := viper.New()
	SetDefaults(check)
	if err := check.MergeConfigMap(config); err != nil {
		return "", errors.Wrap(err, "failed to merge config")
	}
	if _, err := LoadWithViper(check); err != nil {
		return "", errors.Wrapf(err, "%s = %s", key, value)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), DefaultDirPermissions); err != nil {
		return "", errors.Wrapf(err, "failed to create %s", filepath.Dir(configPath))
	}
	if err := createBackup(configPath); err != nil {
		return "", errors.Wrap(err, "failed to create backup")
	}
	data, err := toml.Marshal(config)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal config")
	}

	// Mark this as our own write to prevent reload loops
	if w := GetGlobalWatcher(); w != nil {
		w.MarkOwnWrite()
	}
	if err := os.WriteFile(configPath, data, DefaultFilePermissions); err != nil {
		return "", errors.Wrapf(err, "failed to write %s", configPath)
	}
	Reset()
	return configPath, nil
}

func setNested(m map[string]interface{}, path []string, value interface{}) {
	for _, section := range path[:len(path)-1] {
		next, ok := m[section].(map[string]interface{})
		if !ok {
			next = make(map[string]interface{})
			m[section] = next
		}
		m = next
	}
	m[path[len(path)-1]] = value
}

func knownKeys(v *viper.Viper) []string {
	keys := v.AllKeys()
	slices.Sort(keys)
	return keys
}
