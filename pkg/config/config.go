package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Scanning
	Extensions  []string `yaml:"extensions"`
	WatchSource bool     `yaml:"watch_source"`

	// Browsing
	HideRenamed bool   `yaml:"hide_renamed"`
	ColorTheme  string `yaml:"color_theme"`

	// Export
	DefaultDestination string `yaml:"default_destination"`
	ConfirmOverwrite   bool   `yaml:"confirm_overwrite"`
	PollIntervalMS     int    `yaml:"poll_interval_ms"`

	// Logging
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
}

// DefaultExtensions are matched case-sensitively against file names
var DefaultExtensions = []string{".jpeg", ".jpg", ".JPG", ".png"}

// DefaultConfig returns a Config struct with default values
func DefaultConfig() *Config {
	return &Config{
		Extensions:         append([]string(nil), DefaultExtensions...),
		WatchSource:        true,
		HideRenamed:        false,
		ColorTheme:         "auto",
		DefaultDestination: "",
		ConfirmOverwrite:   true,
		PollIntervalMS:     100,
		LogLevel:           "info",
		LogFile:            "",
	}
}

// Load reads configuration from the specified file path
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		// Missing file means defaults
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	if len(c.Extensions) == 0 {
		c.Extensions = append([]string(nil), DefaultExtensions...)
	}
	for i, ext := range c.Extensions {
		if ext != "" && !strings.HasPrefix(ext, ".") {
			c.Extensions[i] = "." + ext
		}
	}
	if c.PollIntervalMS <= 0 {
		c.PollIntervalMS = 100
	}
	if !isValidTheme(c.ColorTheme) {
		c.ColorTheme = "auto"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// ApplyEnv overrides values from IMGPICK_* environment variables
func (c *Config) ApplyEnv() {
	if level := os.Getenv("IMGPICK_LOG_LEVEL"); level != "" {
		c.LogLevel = level
	}
	if theme := os.Getenv("IMGPICK_THEME"); isValidTheme(theme) {
		c.ColorTheme = theme
	}
	if dest := os.Getenv("IMGPICK_DEST"); dest != "" {
		c.DefaultDestination = dest
	}
}

// Save persists the current configuration to the specified file path
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// isValidTheme checks if the theme is one lipgloss can apply
func isValidTheme(theme string) bool {
	validThemes := []string{"auto", "dark", "light"}
	for _, valid := range validThemes {
		if theme == valid {
			return true
		}
	}
	return false
}
