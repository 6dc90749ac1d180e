package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kamal-hamza/imgpick/pkg/config"
	"github.com/kamal-hamza/imgpick/pkg/ui"
)

var (
	configInit     bool
	configForce    bool
	configShowPath bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or initialize the imgpick configuration",
	Long: `Print the effective configuration (file values with IMGPICK_* environment
overrides applied).

Examples:
  imgpick config
  imgpick config --path
  imgpick config --init`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&configInit, "init", false, "Write a config file with default values")
	configCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing file with --init")
	configCmd.Flags().BoolVar(&configShowPath, "path", false, "Print the config file path")
}

func runConfig(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	path := configPath()

	switch {
	case configShowPath:
		fmt.Fprintln(out, path)
		return nil

	case configInit:
		if _, err := os.Stat(path); err == nil && !configForce {
			return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
		}
		if err := config.DefaultConfig().Save(path); err != nil {
			return err
		}
		fmt.Fprintln(out, ui.FormatSuccess("Wrote default config to "+path))
		return nil
	}

	data, err := yaml.Marshal(appConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	source := path
	if _, err := os.Stat(path); os.IsNotExist(err) {
		source = path + " (not found, using defaults)"
	}
	fmt.Fprintln(out, ui.FormatMuted("# "+source))
	fmt.Fprint(out, string(data))
	return nil
}
