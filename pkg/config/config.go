package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Env overrides match the original deployment's secret and parameter names,
// so the same environment drives both.
const (
	envBotToken = "BOT_TOKEN"
	envEndpoint = "ENDPOINT"
	envRegion   = "REGION"
	envBucket   = "BUCKET"
)

const defaultRegion = "asia-southeast1"

// Config is the root runtime configuration. It is read once at cold start
// and never mutated afterwards.
type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	Webhook  WebhookConfig  `json:"webhook"`
	Storage  StorageConfig  `json:"storage"`
	Server   ServerConfig   `json:"server"`
	Logging  LoggingConfig  `json:"logging,omitempty"`
}

// TelegramConfig holds the bot credential.
type TelegramConfig struct {
	Token string `json:"token"`
}

// WebhookConfig holds the public callback URL registered with the platform.
type WebhookConfig struct {
	Endpoint string `json:"endpoint"`
}

// StorageConfig locates the asset bucket.
type StorageConfig struct {
	Bucket string `json:"bucket"`
	Region string `json:"region,omitempty"`
}

// ServerConfig configures HTTP bind settings.
type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// LoggingConfig controls structured log output format and verbosity.
type LoggingConfig struct {
	Format    string `json:"format,omitempty"`
	Level     string `json:"level,omitempty"`
	AddSource bool   `json:"add_source,omitempty"`
}

// LoadConfig resolves config.json, unmarshals it, and applies environment
// overrides. A missing config file is fine: hosted deployments configure
// the bot through the environment alone.
func LoadConfig() (*Config, error) {
	var cfg Config

	configPath, err := findConfigPath()
	if err != nil {
		return nil, err
	}

	if configPath != "" {
		content, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := json.Unmarshal(content, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	return &cfg, nil
}

// applyEnvOverrides injects env-driven settings on top of file config.
func applyEnvOverrides(cfg *Config) {
	if cfg == nil {
		return
	}

	if token := strings.TrimSpace(os.Getenv(envBotToken)); token != "" {
		cfg.Telegram.Token = token
	}

	if endpoint := strings.TrimSpace(os.Getenv(envEndpoint)); endpoint != "" {
		cfg.Webhook.Endpoint = endpoint
	}

	if region := strings.TrimSpace(os.Getenv(envRegion)); region != "" {
		cfg.Storage.Region = region
	}

	if bucket := strings.TrimSpace(os.Getenv(envBucket)); bucket != "" {
		cfg.Storage.Bucket = bucket
	}
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.Storage.Region) == "" {
		cfg.Storage.Region = defaultRegion
	}
}

// findConfigPath resolves the active config file location.
//
// Precedence is HONKBOT_CONFIG first, then cwd-local fallback paths. An
// empty path with a nil error means no file config exists.
func findConfigPath() (string, error) {
	if value := strings.TrimSpace(os.Getenv("HONKBOT_CONFIG")); value != "" {
		if info, err := os.Stat(value); err == nil && !info.IsDir() {
			return value, nil
		}
		return "", fmt.Errorf("HONKBOT_CONFIG does not point to a file: %s", value)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get current working directory: %w", err)
	}

	candidates := []string{
		filepath.Join(cwd, "config.json"),
		filepath.Join(cwd, "config", "config.json"),
	}

	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}

	return "", nil
}
