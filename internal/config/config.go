package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	WorkoutAPI WorkoutAPIConfig
	Weather    WeatherConfig
	Redis      RedisConfig
	Storage    StorageConfig
	OTEL       OTELConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string
}

// WorkoutAPIConfig holds the workouts backend location
type WorkoutAPIConfig struct {
	BaseURL string
}

// WeatherConfig holds weather provider configuration. An empty APIKey
// degrades weather features to a failure state without blocking workouts.
type WeatherConfig struct {
	BaseURL string
	APIKey  string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
}

// StorageConfig holds durable state storage options
type StorageConfig struct {
	EncryptionKey string
}

// OTELConfig holds OpenTelemetry export configuration
type OTELConfig struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	Environment    string
	Endpoint       string
	InstanceID     string
	Token          string
}

// Load reads configuration from environment variables
// It attempts to load from .env file first, then falls back to system env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		WorkoutAPI: WorkoutAPIConfig{
			BaseURL: getEnv("WORKOUT_API_URL", ""),
		},
		Weather: WeatherConfig{
			BaseURL: getEnv("WEATHER_API_URL", "https://api.weatherapi.com/v1"),
			APIKey:  getEnv("WEATHER_API_KEY", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		Storage: StorageConfig{
			EncryptionKey: getEnv("STORAGE_ENCRYPTION_KEY", ""),
		},
		OTEL: OTELConfig{
			Enabled:        getEnv("OTEL_ENABLED", "false") == "true",
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "workout-companion"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
			Environment:    getEnv("OTEL_ENVIRONMENT", "development"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			InstanceID:     getEnv("OTEL_INSTANCE_ID", ""),
			Token:          getEnv("OTEL_TOKEN", ""),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration is present. The weather
// API key is deliberately not required here.
func (c *Config) Validate() error {
	if c.WorkoutAPI.BaseURL == "" {
		return fmt.Errorf("WORKOUT_API_URL is required")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
