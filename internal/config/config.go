// Package config provides configuration management for the workflow
// execution engine.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	Logging  LoggingConfig
	Engine   EngineConfig
	Provider ProviderConfig
}

// LoggingConfig holds logging-related configuration.
type LoggingConfig struct {
	Level  string
	Format string // "json" or "text"
}

// EngineConfig holds the safety envelope applied to every execution.
type EngineConfig struct {
	MaxExecutionTime  time.Duration
	MaxNodeExecutions int
}

// ProviderConfig holds credentials for the bundled provider adapters.
type ProviderConfig struct {
	OpenAIAPIKey  string
	OpenAIBaseURL string
}

// Load loads the configuration from environment variables, optionally
// reading a ".env" file first.
func Load() (*Config, error) {
	godotenv.Load()

	cfg := &Config{
		Logging: LoggingConfig{
			Level:  getEnv("AGENTENGINE_LOG_LEVEL", "info"),
			Format: getEnv("AGENTENGINE_LOG_FORMAT", "json"),
		},
		Engine: EngineConfig{
			MaxExecutionTime:  getEnvAsDuration("AGENTENGINE_MAX_EXECUTION_TIME", 5*time.Minute),
			MaxNodeExecutions: getEnvAsInt("AGENTENGINE_MAX_NODE_EXECUTIONS", 1000),
		},
		Provider: ProviderConfig{
			OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("invalid log format: %s (must be json or text)", c.Logging.Format)
	}
	if c.Engine.MaxExecutionTime <= 0 {
		return fmt.Errorf("engine max execution time must be positive")
	}
	if c.Engine.MaxNodeExecutions < 1 {
		return fmt.Errorf("engine max node executions must be at least 1")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
