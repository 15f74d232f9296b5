// Package config loads application configuration from the environment into an
// explicit struct handed to client construction at startup.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration.
type Config struct {
	// AWS configuration
	AWSRegion     string
	DynamoDBTable string
	GSI1IndexName string

	// LocalStack development endpoint. When enabled, static credentials are
	// injected so the SDK does not reach for a real credential chain.
	LocalStack         bool
	LocalStackEndpoint string
	LocalAccessKeyID   string
	LocalSecretKey     string

	// Server configuration (read API)
	ServerAddress string
	EnableCORS    bool

	// Migration behavior: abort on the first failed chunk instead of
	// continuing best-effort.
	MigrationFailFast bool

	// Logging
	LogLevel    string
	Environment string
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AWSRegion:     getEnv("AWS_REGION", "ap-southeast-1"),
		DynamoDBTable: getEnv("DB_TABLE_NAME", ""),
		GSI1IndexName: getEnv("GSI1_INDEX_NAME", "gsi1"),

		LocalStack:         getEnvBool("USE_LOCALSTACK", false),
		LocalStackEndpoint: getEnv("LOCALSTACK_ENDPOINT", "http://localhost:4566"),
		LocalAccessKeyID:   getEnv("AWS_ACCESS_KEY_ID", "local"),
		LocalSecretKey:     getEnv("AWS_SECRET_ACCESS_KEY", "local"),

		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		EnableCORS:    getEnvBool("ENABLE_CORS", true),

		MigrationFailFast: getEnvBool("MIGRATION_FAIL_FAST", false),

		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Environment: getEnv("ENVIRONMENT", "development"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load is an alias for LoadConfig.
func Load() (*Config, error) {
	return LoadConfig()
}

// Validate checks if all required configuration is present.
func (c *Config) Validate() error {
	if c.AWSRegion == "" {
		return fmt.Errorf("AWS_REGION is required")
	}
	if c.GSI1IndexName == "" {
		return fmt.Errorf("GSI1_INDEX_NAME is required")
	}
	return nil
}

// IsDevelopment checks if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// getEnv gets an environment variable with a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
