package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
)

const ConfigFileName = "mealhub.json"

// Config represents the CLI configuration file: which MealHub deployment the
// commands talk to.
type Config struct {
	// APIURL is the backend REST API base URL.
	APIURL string `json:"api_url"`
	// IdentityURL is the identity provider base URL.
	IdentityURL string `json:"identity_url"`
	// IdentityAPIKey is the public API key sent with provider calls.
	IdentityAPIKey string `json:"identity_api_key,omitempty"`
}

// DefaultConfig returns a configuration template for `mealhub init`.
func DefaultConfig() *Config {
	return &Config{
		APIURL:      "https://api.mealhub.example.com",
		IdentityURL: "https://identity.mealhub.example.com",
	}
}

// Host returns the API host, used to key the stored refresh token.
func (c *Config) Host() string {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Host == "" {
		return c.APIURL
	}
	return u.Host
}

// Validate checks that the required endpoints are set.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("api_url is empty. Please edit %s", ConfigFileName)
	}
	if c.IdentityURL == "" {
		return fmt.Errorf("identity_url is empty. Please edit %s", ConfigFileName)
	}
	return nil
}

// FindConfigFile searches for mealhub.json in the current directory and its
// parents.
func FindConfigFile() (string, error) {
	currentDir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}

	dir := currentDir
	for {
		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("%s not found in %s or any parent directory", ConfigFileName, currentDir)
}

// Load reads the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// LoadFromCurrentDir finds and loads the configuration file.
func LoadFromCurrentDir() (*Config, error) {
	path, err := FindConfigFile()
	if err != nil {
		return nil, err
	}
	return Load(path)
}

// Save writes the configuration file.
func Save(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
