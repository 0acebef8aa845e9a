// Package config provides client configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds the client configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	API     APIConfig
	Session SessionConfig
	Sync    SyncConfig
	Console ConsoleConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// APIConfig holds backend connection configuration.
type APIConfig struct {
	BaseURL        string        // Backend root, e.g. http://localhost:8080/api
	RequestTimeout time.Duration // Per-request timeout (default: 10s)
	RateLimitRPS   float64       // Outbound requests per second (default: 10)
	RateLimitBurst int           // Outbound burst size (default: 20)
}

// SessionConfig holds client-local session storage configuration.
type SessionConfig struct {
	// Path is the badger directory holding token and user id.
	Path string
}

// SyncConfig holds phase synchronization configuration.
type SyncConfig struct {
	PollInterval   time.Duration // Phase poll interval (default: 1s)
	BreakerTimeout time.Duration // How long the breaker stays open (default: 10s)
}

// ConsoleConfig holds console startup configuration.
type ConsoleConfig struct {
	// GroupID opens a group on startup when set.
	GroupID string
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig(args []string) (*Config, error) {
	fs := flag.NewFlagSet("movienight", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")

	apiURL := fs.String("api-url", "", "Backend base URL")
	requestTimeout := fs.String("request-timeout", "", "Per-request timeout (default: 10s)")
	rateLimitRPS := fs.String("rate-limit-rps", "", "Outbound requests per second (default: 10)")
	rateLimitBurst := fs.String("rate-limit-burst", "", "Outbound burst size (default: 20)")

	sessionPath := fs.String("session-path", "", "Directory for the local session store")

	pollInterval := fs.String("poll-interval", "", "Phase poll interval (default: 1s)")
	breakerTimeout := fs.String("breaker-timeout", "", "Circuit breaker open duration (default: 10s)")

	groupID := fs.String("group", "", "Group to open on startup")

	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		API: APIConfig{
			BaseURL:        strings.TrimRight(getConfigValue(*apiURL, "API_BASE_URL", "http://localhost:8080/api"), "/"),
			RateLimitRPS:   getFloatConfigValue(*rateLimitRPS, "API_RATE_LIMIT_RPS", 10),
			RateLimitBurst: getIntConfigValue(*rateLimitBurst, "API_RATE_LIMIT_BURST", 20),
		},
		Session: SessionConfig{
			Path: getConfigValue(*sessionPath, "SESSION_PATH", ""),
		},
		Console: ConsoleConfig{
			GroupID: getConfigValue(*groupID, "GROUP_ID", ""),
		},
	}

	var err error
	if cfg.API.RequestTimeout, err = getDurationConfigValue(*requestTimeout, "API_REQUEST_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.Sync.PollInterval, err = getDurationConfigValue(*pollInterval, "SYNC_POLL_INTERVAL", "1s"); err != nil {
		return nil, err
	}
	if cfg.Sync.BreakerTimeout, err = getDurationConfigValue(*breakerTimeout, "SYNC_BREAKER_TIMEOUT", "10s"); err != nil {
		return nil, err
	}

	if err := cfg.expandSessionPath(); err != nil {
		return nil, fmt.Errorf("invalid session path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid API base URL: %q (must be an absolute http or https URL)", c.API.BaseURL)
	}

	if c.API.RequestTimeout <= 0 {
		return errors.New("request timeout must be positive")
	}
	if c.API.RateLimitRPS <= 0 || c.API.RateLimitBurst < 1 {
		return errors.New("rate limit rps and burst must be positive")
	}

	if c.Sync.PollInterval < 100*time.Millisecond {
		return fmt.Errorf("poll interval %s is too short (minimum 100ms)", c.Sync.PollInterval)
	}

	if c.Session.Path == "" {
		return errors.New("session path cannot be empty after expansion")
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandSessionPath defaults the session store to ~/.movienight/session.
func (c *Config) expandSessionPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, ".movienight", "session")

	expanded, err := expandPath(c.Session.Path, defaultPath)
	if err != nil {
		return err
	}
	c.Session.Path = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(strValue)
	if err != nil {
		return defaultValue
	}
	return result
}

// getFloatConfigValue returns a float from flag, env var, or default.
func getFloatConfigValue(flagValue, envKey string, defaultValue float64) float64 {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.ParseFloat(strValue, 64)
	if err != nil {
		return defaultValue
	}
	return result
}

// getDurationConfigValue parses a duration from flag, env var, or default.
func getDurationConfigValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	strValue := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(strValue)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", strings.ToLower(envKey), strValue, err)
	}
	return d, nil
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		// Real env vars take precedence over .env file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
