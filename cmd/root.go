package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/imgpick/pkg/appdir"
	"github.com/kamal-hamza/imgpick/pkg/config"
	"github.com/kamal-hamza/imgpick/pkg/logging"
	"github.com/kamal-hamza/imgpick/pkg/ui"
)

var (
	// Global paths and configuration
	appDirs   *appdir.Dirs
	appConfig *config.Config

	closeLog func() error

	// Global flags
	configPathFlag string
	logLevelFlag   string
	verboseFlag    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "imgpick",
	Short: "Rename and export images from a directory",
	Long: ui.StyleTitle.Render("imgpick") + " - interactive image renamer\n\n" +
		"Step through the images of a directory, give each a new name, mark the\n" +
		"ones to keep and copy them to a destination under their new names.\n" +
		"Names stay unique: a clash opens a dialog with a suggested alternative.",
	SilenceUsage:       true,
	PersistentPreRunE:  initializeApp,
	PersistentPostRunE: shutdownApp,
}

// Execute runs the root command with signal handling and styled output
func Execute() error {
	return fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(Version),
		fang.WithNotifySignal(os.Interrupt),
	)
}

func init() {
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(renameCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().StringVar(&configPathFlag, "config", "", "Config file (default $XDG_CONFIG_HOME/imgpick/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&verboseFlag, "verbose", false, "Log to stderr instead of the log file")
}

// initializeApp loads .env, configuration and logging for every command
func initializeApp(cmd *cobra.Command, args []string) error {
	// .env is optional
	_ = godotenv.Load()

	dirs, err := appdir.New()
	if err != nil {
		return fmt.Errorf("failed to resolve app directories: %w", err)
	}
	appDirs = dirs

	path := configPath()
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load config %s: %w", path, err)
	}
	cfg.ApplyEnv()
	if logLevelFlag != "" {
		cfg.LogLevel = logLevelFlag
	}
	appConfig = cfg

	ui.SetTheme(cfg.ColorTheme)

	return setupLogging()
}

// setupLogging sends logs to stderr with --verbose, otherwise to the log
// file so nothing interleaves with prompts, progress or the TUI
func setupLogging() error {
	if verboseFlag {
		level := appConfig.LogLevel
		if logLevelFlag == "" {
			level = "debug"
		}
		logging.Setup(level, os.Stderr)
		return nil
	}

	path := appConfig.LogFile
	if path == "" {
		path = appDirs.LogPath
	}

	_, closer, err := logging.SetupFile(appConfig.LogLevel, path)
	if err != nil {
		// Keep running without a log file
		logging.Setup("error", os.Stderr)
		fmt.Fprintln(os.Stderr, ui.FormatWarning("Logging disabled: "+err.Error()))
		return nil
	}
	closeLog = closer
	return nil
}

func shutdownApp(cmd *cobra.Command, args []string) error {
	if closeLog != nil {
		err := closeLog()
		closeLog = nil
		return err
	}
	return nil
}

// configPath returns the --config value or the default location
func configPath() string {
	if configPathFlag != "" {
		return configPathFlag
	}
	return appDirs.ConfigPath
}

// getContext returns the command context, cancelled on interrupt
func getContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
