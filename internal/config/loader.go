// Package config provides configuration management for the Footy Forecast application.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load reads and parses the configuration from file and environment variables.
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the configuration (${VAR} syntax)
	expanded := os.ExpandEnv(string(data))

	v := viper.New()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(bytes.NewBuffer([]byte(expanded))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	v.SetEnvPrefix("FOOTY_FORECAST")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for optional
// fields, so the CLI tools run against a minimal or absent config file.
func LoadWithDefaults(configPath string) (*Config, error) {
	v := viper.New()

	if configPath == "" {
		configPath = "config/config.yaml"
	}

	v.SetConfigType("yaml")
	v.SetEnvPrefix("FOOTY_FORECAST")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBuffer([]byte(expanded))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	// If file doesn't exist, continue with defaults and environment variables

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults applies the documented defaults for every tunable the
// prediction core recognizes.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "footy-forecast")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("api_football.base_url", "https://api-football-v1.p.rapidapi.com/v3")
	v.SetDefault("api_football.host", "api-football-v1.p.rapidapi.com")
	v.SetDefault("api_football.timeout_seconds", 30)
	v.SetDefault("api_football.max_retries", 3)
	v.SetDefault("api_football.rate_limit_per_second", 2.0)
	v.SetDefault("api_football.cache_ttl_seconds", 300)

	v.SetDefault("rating.k_factor", 40)
	v.SetDefault("rating.initial_rating", 1500)
	v.SetDefault("rating.lookback_days", 365)

	v.SetDefault("similarity.threshold", 0.15)
	v.SetDefault("similarity.min_bookmakers", 2)
	v.SetDefault("similarity.min_similar_matches", 10)
	v.SetDefault("similarity.confidence_saturation", 50)

	v.SetDefault("predictions.output_dir", "data/predictions")
	v.SetDefault("predictions.historical_file", "data/predictions/historical_predictions.csv")

	v.SetDefault("ingestion.batch_size", 100)
	v.SetDefault("ingestion.schedule.data_sync", "0 6 * * *")
	v.SetDefault("ingestion.schedule.daily_generation", "30 6 * * *")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")
}
