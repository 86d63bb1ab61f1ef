// Package config provides configuration management for the Footy Forecast application.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App         AppConfig               `mapstructure:"app" validate:"required"`
	Database    DatabaseConfig          `mapstructure:"database" validate:"required"`
	APIFootball APIFootballConfig       `mapstructure:"api_football" validate:"required"`
	Leagues     map[string]LeagueConfig `mapstructure:"leagues" validate:"required,min=1,dive"`
	Rating      RatingConfig            `mapstructure:"rating" validate:"required"`
	Similarity  SimilarityConfig        `mapstructure:"similarity" validate:"required"`
	Predictions PredictionsConfig       `mapstructure:"predictions" validate:"required"`
	Ingestion   IngestionConfig         `mapstructure:"ingestion" validate:"required"`
	Metrics     MetricsConfig           `mapstructure:"metrics" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password" validate:"required"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// APIFootballConfig represents the upstream odds/fixtures API configuration
type APIFootballConfig struct {
	BaseURL            string  `mapstructure:"base_url" validate:"required,url"`
	Host               string  `mapstructure:"host" validate:"required"`
	APIKey             string  `mapstructure:"api_key" validate:"required"`
	TimeoutSeconds     int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	MaxRetries         int     `mapstructure:"max_retries" validate:"gte=0"`
	RateLimitPerSecond float64 `mapstructure:"rate_limit_per_second" validate:"required,gt=0"`
	CacheTTLSeconds    int     `mapstructure:"cache_ttl_seconds" validate:"gte=0"`
}

// LeagueConfig describes one supported league
type LeagueConfig struct {
	ID            int     `mapstructure:"id" validate:"required,gt=0"`
	Name          string  `mapstructure:"name" validate:"required"`
	Country       string  `mapstructure:"country" validate:"required"`
	InitialRating float64 `mapstructure:"initial_rating" validate:"omitempty,gt=0"`
}

// RatingConfig represents ELO computation configuration
type RatingConfig struct {
	KFactor       float64 `mapstructure:"k_factor" validate:"required,gt=0"`
	InitialRating float64 `mapstructure:"initial_rating" validate:"required,gt=0"`
	LookbackDays  int     `mapstructure:"lookback_days" validate:"required,gt=0"`
}

// SimilarityConfig represents odds-similarity scorer configuration
type SimilarityConfig struct {
	Threshold            float64 `mapstructure:"threshold" validate:"required,gt=0,lt=1"`
	MinBookmakers        int     `mapstructure:"min_bookmakers" validate:"required,gt=0"`
	MinSimilarMatches    int     `mapstructure:"min_similar_matches" validate:"required,gt=0"`
	ConfidenceSaturation int     `mapstructure:"confidence_saturation" validate:"required,gt=0"`
}

// PredictionsConfig represents report output configuration
type PredictionsConfig struct {
	OutputDir      string `mapstructure:"output_dir" validate:"required"`
	HistoricalFile string `mapstructure:"historical_file" validate:"required"`
}

// IngestionConfig represents data collection configuration
type IngestionConfig struct {
	BatchSize int            `mapstructure:"batch_size" validate:"required,gt=0"`
	Seasons   []int          `mapstructure:"seasons" validate:"required,min=1"`
	Schedule  ScheduleConfig `mapstructure:"schedule" validate:"required"`
}

// ScheduleConfig represents cron expressions for the scheduled jobs
type ScheduleConfig struct {
	DataSync        string `mapstructure:"data_sync" validate:"required"`
	DailyGeneration string `mapstructure:"daily_generation" validate:"required"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// LeagueCodes returns the configured league codes
func (c *Config) LeagueCodes() []string {
	codes := make([]string, 0, len(c.Leagues))
	for code := range c.Leagues {
		codes = append(codes, code)
	}
	return codes
}

// LeagueInitialRatings returns the per-league initial ELO table
func (c *Config) LeagueInitialRatings() map[string]float64 {
	out := make(map[string]float64, len(c.Leagues))
	for code, league := range c.Leagues {
		if league.InitialRating > 0 {
			out[code] = league.InitialRating
		}
	}
	return out
}

// APITimeout returns the upstream API timeout as a duration
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.APIFootball.TimeoutSeconds) * time.Second
}
