package config

import (
	"os"
	"strconv"
	"time"

	"autoclass/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Training TrainingConfig
	Data     DataConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// TrainingConfig holds defaults for model training
type TrainingConfig struct {
	CVFolds   int
	UseSearch bool
}

// DataConfig holds dataset handling settings
type DataConfig struct {
	MaxUploadMB int
	SessionTTL  time.Duration
}

// Load reads configuration from environment variables and validates it.
// Every field has a default; only malformed values fail.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnvOrDefault("PORT", "8080"),
			ReadTimeout:  getEnvDurationOrDefault("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getEnvDurationOrDefault("SERVER_WRITE_TIMEOUT", 10*time.Minute),
		},
		Training: TrainingConfig{
			CVFolds:   getEnvIntOrDefault("TRAIN_CV_FOLDS", 3),
			UseSearch: getEnvBoolOrDefault("TRAIN_USE_SEARCH", false),
		},
		Data: DataConfig{
			MaxUploadMB: getEnvIntOrDefault("MAX_UPLOAD_MB", 100),
			SessionTTL:  getEnvDurationOrDefault("SESSION_TTL", 2*time.Hour),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Training.CVFolds < 2 {
		return errors.InvalidInput("TRAIN_CV_FOLDS must be at least 2")
	}
	if cfg.Data.MaxUploadMB <= 0 {
		return errors.InvalidInput("MAX_UPLOAD_MB must be positive")
	}
	if _, err := strconv.Atoi(cfg.Server.Port); err != nil {
		return errors.InvalidInput("PORT must be numeric")
	}
	return nil
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvIntOrDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBoolOrDefault(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDurationOrDefault(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
