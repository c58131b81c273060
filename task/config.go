package task

import (
	"os"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/teranos/treelabel/errors"
	"github.com/teranos/treelabel/tree"
)

// ConfigFile is the name of the task configuration inside a task directory.
const ConfigFile = "config.yaml"

// FormatVersion is written into new task configurations.
const FormatVersion = "1.0.0"

// compatibleFormats are the configuration versions this build can open.
const compatibleFormats = "^1.0"

// Config describes a labelling task.
type Config struct {
	FormatVersion    string    `yaml:"format_version" json:"format_version" validate:"required,semver"`
	Dir              string    `yaml:"dir" json:"dir" validate:"required"`
	TreePath         string    `yaml:"tree_path" json:"tree_path" validate:"required"`
	OriginalTreePath string    `yaml:"original_tree_path" json:"original_tree_path"`
	AllowedLabels    []string  `yaml:"allowed_labels" json:"allowed_labels" validate:"required,min=1,unique,dive,label"`
	StartTime        time.Time `yaml:"start_time" json:"start_time" validate:"required"`
}

var configValidate *validator.Validate

func init() {
	configValidate = validator.New()
	_ = configValidate.RegisterValidation("label", validateLabel)
}

// validateLabel accepts labels that survive a round trip through a sheet.
func validateLabel(fl validator.FieldLevel) bool {
	l := fl.Field().String()
	return l != "" &&
		l == strings.TrimSpace(l) &&
		l != tree.Reject &&
		l != tree.Skip &&
		!strings.Contains(l, tree.Separator)
}

// Validate checks c and that its format version can be read by this build.
func (c *Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return errors.WithHintf(
				errors.Wrapf(errors.ErrMalformedRecord, "task config: %s fails %q", verrs[0].Namespace(), verrs[0].Tag()),
				"labels must be unique, non-empty, without %q and other than %q or %q", tree.Separator, tree.Reject, tree.Skip)
		}
		return errors.Wrap(err, "validate task config")
	}

	v, err := semver.NewVersion(c.FormatVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrMalformedRecord, "task config version %q: %v", c.FormatVersion, err)
	}
	constraint, err := semver.NewConstraint(compatibleFormats)
	if err != nil {
		return errors.Wrap(err, "parse format constraint")
	}
	if !constraint.Check(v) {
		return errors.WithHint(
			errors.Newf("task config version %s is not supported (need %s)", c.FormatVersion, compatibleFormats),
			"create the task again with this version of treelabel")
	}
	return nil
}

func readConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrapf(errors.ErrMalformedRecord, "%s: %v", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return &c, nil
}

func writeConfig(path string, c *Config) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal task config")
	}
	return errors.Wrapf(os.WriteFile(path, data, 0o644), "write %s", path)
}
