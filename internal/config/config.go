package config

import (
	"fmt"
	"os"
	"strconv"

	"wordmetrics/domain/metrics"
	"wordmetrics/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig
	Transform TransformConfig
	LogLevel  string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port        string
	GinMode     string
	MaxUploadMB int
	PreviewRows int
}

// TransformConfig holds defaults applied to every transform request
type TransformConfig struct {
	Workers          int
	TermsNaming      metrics.TermsNaming
	PercentPrecision int
}

// MaxUploadBytes is the request body limit for uploads.
func (s ServerConfig) MaxUploadBytes() int64 {
	return int64(s.MaxUploadMB) << 20
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:    *loadServerConfig(),
		Transform: *loadTransformConfig(),
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:        getEnvOrDefault("PORT", "8080"),
		GinMode:     getEnvOrDefault("GIN_MODE", "release"),
		MaxUploadMB: getEnvIntOrDefault("MAX_UPLOAD_MB", 50),
		PreviewRows: getEnvIntOrDefault("PREVIEW_ROWS", 100),
	}
}

func loadTransformConfig() *TransformConfig {
	return &TransformConfig{
		Workers:          getEnvIntOrDefault("TRANSFORM_WORKERS", 1),
		TermsNaming:      metrics.TermsNaming(getEnvOrDefault("TERMS_NAMING", string(metrics.NamingStripHasPrefix))),
		PercentPrecision: getEnvIntOrDefault("PERCENT_PRECISION", metrics.DefaultPercentPrecision),
	}
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	if config.Server.MaxUploadMB <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_MB must be positive")
	}
	if config.Server.PreviewRows < 0 {
		return errors.ConfigInvalid("PREVIEW_ROWS must not be negative")
	}
	if config.Transform.Workers < 1 {
		return errors.ConfigInvalid("TRANSFORM_WORKERS must be at least 1")
	}
	naming, err := metrics.ParseTermsNaming(string(config.Transform.TermsNaming))
	if err != nil {
		return errors.ConfigInvalid(err.Error())
	}
	config.Transform.TermsNaming = naming
	if !metrics.ValidPrecision(config.Transform.PercentPrecision) {
		return errors.ConfigInvalid(fmt.Sprintf("PERCENT_PRECISION must be between %d and %d",
			metrics.Unrounded, metrics.MaxPercentPrecision))
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
