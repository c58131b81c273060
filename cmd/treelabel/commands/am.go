package commands

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/treelabel/am"
	"github.com/teranos/treelabel/display"
	"github.com/teranos/treelabel/errors"
)

// AmCmd represents the am (configuration) command
var AmCmd = &cobra.Command{
	Use:   "am",
	Short: "Manage treelabel configuration",
	Long: `am — Manage treelabel configuration ("I am")

Configuration sources (in order of precedence):
1. Command line flags
2. Environment variables (TREELABEL_* prefix)
3. Project config (am.toml, searched up from the working directory)
4. User config (~/.treelabel/am.toml)
5. System config (/etc/treelabel/am.toml)
6. Default values

Examples:
  treelabel am show                    # Show current configuration
  treelabel am show --format yaml      # Show configuration as YAML
  treelabel am get label.selector      # Get specific config value
  treelabel am set label.sample_size 50
  treelabel am validate                # Validate current configuration`,
}

var amShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display the effective treelabel configuration and where each setting comes from",
	RunE:  runAmShow,
}

var amGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific configuration value",
	Long:  "Get a specific configuration value using dot notation (e.g., label.selector, watch.debounce_ms)",
	Args:  cobra.ExactArgs(1),
	RunE:  runAmGet,
}

var amSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value in ~/.treelabel/am.toml",
	Long: `Set a configuration value in the user config file. The previous file is
kept as am.toml.back1 (up to three backups).`,
	Args: cobra.ExactArgs(2),
	RunE: runAmSet,
}

var amValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate current configuration",
	RunE:  runAmValidate,
}

var configFormat string

func init() {
	amShowCmd.Flags().StringVar(&configFormat, "format", "table", "Output format: table, toml, yaml, json")

	AmCmd.AddCommand(amShowCmd)
	AmCmd.AddCommand(amGetCmd)
	AmCmd.AddCommand(amSetCmd)
	AmCmd.AddCommand(amValidateCmd)
}

func runAmShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if display.ShouldOutputJSON(cmd) {
		configFormat = "json"
	}

	switch configFormat {
	case "table", "json":
		intro, err := am.GetConfigIntrospection()
		if err != nil {
			return errors.Wrap(err, "failed to load config")
		}
		if configFormat == "json" {
			return display.OutputJSON(out, intro)
		}
		data := pterm.TableData{{"Setting", "Value", "Source", "From"}}
		for _, s := range intro.Settings {
			data = append(data, []string{s.Key, fmt.Sprintf("%v", s.Value), string(s.Source), s.SourcePath})
		}
		return display.RenderTable(out, data)

	case "yaml", "toml":
		cfg, err := am.Load()
		if err != nil {
			return errors.Wrap(err, "failed to load config")
		}
		var data []byte
		if configFormat == "yaml" {
			data, err = yaml.Marshal(cfg)
		} else {
			data, err = toml.Marshal(cfg)
		}
		if err != nil {
			return errors.Wrapf(err, "failed to marshal config to %s", configFormat)
		}
		fmt.Fprintf(out, "# treelabel configuration\n%s", data)
		return nil

	default:
		return errors.Newf("unsupported format: %s (supported: table, toml, yaml, json)", configFormat)
	}
}

func runAmGet(cmd *cobra.Command, args []string) error {
	key := args[0]
	if !am.GetViper().IsSet(key) {
		return errors.Newf("configuration key %q not found", key)
	}
	fmt.Fprintln(cmd.OutOrStdout(), am.Get(key))
	return nil
}

func runAmSet(cmd *cobra.Command, args []string) error {
	path, err := am.Set(args[0], args[1])
	if err != nil {
		return err
	}
	pterm.Success.Printf("Set %s = %s in %s\n", args[0], args[1], path)
	return nil
}

func runAmValidate(cmd *cobra.Command, args []string) error {
	// Load validates
	if _, err := am.Load(); err != nil {
		return errors.Wrap(err, "configuration validation failed")
	}
	fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration is valid")
	return nil
}
