package appdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const appName = "imgpick"

// Dirs holds the per-user locations imgpick reads and writes
type Dirs struct {
	ConfigDir  string
	ConfigPath string
	StateDir   string
	LogPath    string
}

// New resolves XDG-compliant paths, falling back to APPDATA on Windows
func New() (*Dirs, error) {
	configDir, err := configRoot()
	if err != nil {
		return nil, fmt.Errorf("failed to determine config directory: %w", err)
	}
	stateDir, err := stateRoot()
	if err != nil {
		return nil, fmt.Errorf("failed to determine state directory: %w", err)
	}

	return &Dirs{
		ConfigDir:  configDir,
		ConfigPath: filepath.Join(configDir, "config.yaml"),
		StateDir:   stateDir,
		LogPath:    filepath.Join(stateDir, appName+".log"),
	}, nil
}

func configRoot() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, appName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", appName), nil
}

func stateRoot() (string, error) {
	if stateHome := os.Getenv("XDG_STATE_HOME"); stateHome != "" {
		return filepath.Join(stateHome, appName), nil
	}
	if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
		return filepath.Join(localAppData, appName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "state", appName), nil
}

// EnsureState creates the state directory so the log file can be opened
func (d *Dirs) EnsureState() error {
	if err := os.MkdirAll(d.StateDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", d.StateDir, err)
	}
	return nil
}
