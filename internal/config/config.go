// Package config loads the platform configuration from YAML with
// environment-variable overrides. Configuration is passed into constructors
// explicitly; nothing reads it from package state.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Tokens   TokenConfig    `yaml:"tokens"`
	SES      SESConfig      `yaml:"ses"`
	Bedrock  BedrockConfig  `yaml:"bedrock"`
	Dispatch DispatchConfig `yaml:"dispatch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// BaseURL is the public origin embedded in tracking links. Must match
	// what recipients can actually reach.
	BaseURL string `yaml:"base_url"`
}

// DatabaseConfig holds the Postgres connection settings.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// TokenConfig selects and tunes the token store backend.
type TokenConfig struct {
	// Backend is "memory" (default) or "redis".
	Backend string `yaml:"backend"`
	// RedisURL is required when Backend is "redis",
	// e.g. "redis://localhost:6379/0".
	RedisURL string `yaml:"redis_url"`
	// TTLHours expires Redis-held tokens; zero keeps them forever,
	// matching the in-memory store.
	TTLHours int `yaml:"ttl_hours"`
}

// TTL returns the configured token lifetime.
func (c TokenConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

// SESConfig holds AWS SES delivery credentials. Disabled config falls back
// to the log-only sender.
type SESConfig struct {
	Enabled   bool   `yaml:"enabled"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Region    string `yaml:"region"`
	FromEmail string `yaml:"from_email"`
	FromName  string `yaml:"from_name"`
}

// BedrockConfig holds AWS Bedrock content-generation settings. Disabled
// config falls back to the static generator.
type BedrockConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Region    string `yaml:"region"`
	ModelID   string `yaml:"model_id"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// DispatchConfig bounds the per-recipient collaborator calls.
type DispatchConfig struct {
	GenerateTimeoutSeconds int `yaml:"generate_timeout_seconds"`
	SendTimeoutSeconds     int `yaml:"send_timeout_seconds"`
}

// GenerateTimeout returns the content-generation bound.
func (c DispatchConfig) GenerateTimeout() time.Duration {
	return time.Duration(c.GenerateTimeoutSeconds) * time.Second
}

// SendTimeout returns the delivery bound.
func (c DispatchConfig) SendTimeout() time.Duration {
	return time.Duration(c.SendTimeoutSeconds) * time.Second
}

// Load reads and parses the configuration file and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = fmt.Sprintf("http://%s:%d", cfg.Server.Host, cfg.Server.Port)
	}
	if cfg.Tokens.Backend == "" {
		cfg.Tokens.Backend = "memory"
	}
	if cfg.SES.Region == "" {
		cfg.SES.Region = "us-east-1"
	}
	if cfg.SES.FromEmail == "" {
		cfg.SES.FromEmail = "phishing-simulation@example.com"
	}
	if cfg.SES.FromName == "" {
		cfg.SES.FromName = "IT Support"
	}
	if cfg.Bedrock.Region == "" {
		cfg.Bedrock.Region = "us-east-1"
	}
	if cfg.Dispatch.GenerateTimeoutSeconds == 0 {
		cfg.Dispatch.GenerateTimeoutSeconds = 60
	}
	if cfg.Dispatch.SendTimeoutSeconds == 0 {
		cfg.Dispatch.SendTimeoutSeconds = 30
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// A .env file (if present) is loaded first, so secrets can live in .env
// locally and in real env vars in deployment.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("PORT"); v != "" {
		var port int
		if _, err := fmt.Sscanf(v, "%d", &port); err == nil && port > 0 {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("BASE_URL"); v != "" {
		cfg.Server.BaseURL = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Tokens.RedisURL = v
		cfg.Tokens.Backend = "redis"
	}
	if v := os.Getenv("AWS_SES_ACCESS_KEY"); v != "" {
		cfg.SES.AccessKey = v
	}
	if v := os.Getenv("AWS_SES_SECRET_KEY"); v != "" {
		cfg.SES.SecretKey = v
	}
	if v := os.Getenv("AWS_SES_REGION"); v != "" {
		cfg.SES.Region = v
	}
	if v := os.Getenv("SES_FROM_EMAIL"); v != "" {
		cfg.SES.FromEmail = v
	}
	if v := os.Getenv("BEDROCK_MODEL_ID"); v != "" {
		cfg.Bedrock.ModelID = v
	}
	if v := os.Getenv("BEDROCK_REGION"); v != "" {
		cfg.Bedrock.Region = v
	}
	if v := os.Getenv("BEDROCK_ACCESS_KEY"); v != "" {
		cfg.Bedrock.AccessKey = v
	}
	if v := os.Getenv("BEDROCK_SECRET_KEY"); v != "" {
		cfg.Bedrock.SecretKey = v
	}

	return cfg, nil
}
