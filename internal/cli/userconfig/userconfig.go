package userconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	configDirName  = "mealhub"
	configFileName = "config.json"
)

// UserConfig is the user's local configuration stored in
// ~/.config/mealhub/config.json. This is the only client-side persisted state
// beyond the keyring token: the theme preference and the location to return
// to after the next successful login.
type UserConfig struct {
	Theme    string `json:"theme,omitempty"`
	ReturnTo string `json:"return_to,omitempty"`
}

// GetConfigPath returns the path to the user config file
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".config", configDirName)
	return filepath.Join(configDir, configFileName), nil
}

// Load reads the user configuration file
func Load() (*UserConfig, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	// If config doesn't exist, return empty config
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return &UserConfig{}, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read user config file: %w", err)
	}

	var cfg UserConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse user config file: %w", err)
	}

	return &cfg, nil
}

// Save writes the user configuration to a file
func Save(cfg *UserConfig) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal user config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write user config file: %w", err)
	}

	return nil
}

// GetTheme returns the persisted theme preference, if any.
func GetTheme() (string, error) {
	cfg, err := Load()
	if err != nil {
		return "", err
	}
	return cfg.Theme, nil
}

// SetTheme persists the theme preference.
func SetTheme(theme string) error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	cfg.Theme = theme
	return Save(cfg)
}

// GetReturnTo returns the stored post-login location, if any.
func GetReturnTo() (string, error) {
	cfg, err := Load()
	if err != nil {
		return "", err
	}
	return cfg.ReturnTo, nil
}

// SetReturnTo stores (or, with an empty value, clears) the post-login
// location.
func SetReturnTo(location string) error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	cfg.ReturnTo = location
	return Save(cfg)
}
