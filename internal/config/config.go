package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds the environment-driven configuration: credentials and ambient
// settings that do not belong in the per-project mealhub.json (which only
// names the deployment endpoints).
type Config struct {
	// Image hosting
	Uploads UploadsConfig

	// Social sign-in
	Social SocialConfig

	// Logging
	Logging LoggingConfig
}

// UploadsConfig holds image-hosting settings.
type UploadsConfig struct {
	CloudinaryURL string
}

// SocialConfig holds the OAuth client used for social sign-in.
type SocialConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
}

// LoggingConfig holds logging-related configuration.
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "warn"
	}

	logFormat := os.Getenv("LOG_FORMAT")
	if logFormat == "" {
		logFormat = "console"
	}

	return &Config{
		Uploads: UploadsConfig{
			CloudinaryURL: os.Getenv("CLOUDINARY_URL"),
		},
		Social: SocialConfig{
			GoogleClientID:     os.Getenv("MEALHUB_GOOGLE_CLIENT_ID"),
			GoogleClientSecret: os.Getenv("MEALHUB_GOOGLE_CLIENT_SECRET"),
		},
		Logging: LoggingConfig{
			Level:  logLevel,
			Format: logFormat,
		},
	}, nil
}

// RequireSocial returns the social OAuth client settings, failing when they
// are not configured.
func (c *Config) RequireSocial() (SocialConfig, error) {
	if c.Social.GoogleClientID == "" || c.Social.GoogleClientSecret == "" {
		return SocialConfig{}, fmt.Errorf("google sign-in is not configured (set MEALHUB_GOOGLE_CLIENT_ID and MEALHUB_GOOGLE_CLIENT_SECRET)")
	}
	return c.Social, nil
}

// RequireUploads returns the image-hosting settings, failing when they are
// not configured.
func (c *Config) RequireUploads() (UploadsConfig, error) {
	if c.Uploads.CloudinaryURL == "" {
		return UploadsConfig{}, fmt.Errorf("image uploads are not configured (set CLOUDINARY_URL)")
	}
	return c.Uploads, nil
}
