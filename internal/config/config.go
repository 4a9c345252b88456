package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config holds all application configuration
type Config struct {
	Theme   ThemeConfig   `toml:"theme"`
	Dialect DialectConfig `toml:"dialect"`
	Display DisplayConfig `toml:"display"`
}

// ThemeConfig defines color schemes
type ThemeConfig struct {
	Name          string       `toml:"name"`
	StatusBar     string       `toml:"status_bar"`
	StatusBarText string       `toml:"status_bar_text"`
	Selection     string       `toml:"selection"`
	SystemLine    string       `toml:"system_line"`
	Statuses      StatusColors `toml:"statuses"`
}

// StatusColors defines colors for each execution status
type StatusColors struct {
	Running string `toml:"running"`
	Pass    string `toml:"pass"`
	Fail    string `toml:"fail"`
}

// DialectConfig defines the configurable line classification patterns.
// The defaults match the conventions of the supported runners; overriding
// them only makes sense for forks of those tools.
type DialectConfig struct {
	SystemPrefixes     []string `toml:"system_prefixes"`
	TerminationMarkers []string `toml:"termination_markers"`
	NoisePattern       string   `toml:"noise_pattern"`
}

// DisplayConfig holds display options
type DisplayConfig struct {
	ShowIDs        bool `toml:"show_ids"`
	FollowInterval int  `toml:"follow_interval_ms"`
	LogPaneHeight  int  `toml:"log_pane_height"`
}

// Default returns a config with sensible defaults
func Default() *Config {
	return &Config{
		Theme: ThemeConfig{
			Name:          "subtle",
			StatusBar:     "236", // Darker gray background
			StatusBarText: "252", // Light gray text
			Selection:     "24",  // Blue background
			SystemLine:    "244", // Medium gray
			Statuses: StatusColors{
				Running: "214", // Orange
				Pass:    "71",  // Green
				Fail:    "167", // Soft red
			},
		},
		Dialect: DialectConfig{
			SystemPrefixes: []string{
				"[System]", "[Error]",
				"Output:", "Log:", "Report:",
				"STDOUT:", "STDERR:",
			},
			TerminationMarkers: []string{"exit code", "stopped by user"},
			NoisePattern:       `^\[\d+/\d+\]\s+`,
		},
		Display: DisplayConfig{
			ShowIDs:        false,
			FollowInterval: 300,
			LogPaneHeight:  10,
		},
	}
}

// Load loads config from file, falling back to defaults
func Load() (*Config, error) {
	cfg := Default()

	configPath := getConfigPath()
	if configPath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save saves config to file
func Save(cfg *Config) error {
	configPath := getConfigPath()
	if configPath == "" {
		return nil
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

// getConfigPath returns the config file path
func getConfigPath() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "runlens", "config.toml")
	}

	// Fall back to ~/.config
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".config", "runlens", "config.toml")
}

// GetConfigPath exports the config path for user reference
func GetConfigPath() string {
	return getConfigPath()
}
