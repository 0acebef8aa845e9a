package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:     AppConfig{Environment: "development"},
		Logger:  LoggerConfig{Level: "info"},
		API:     APIConfig{BaseURL: "http://localhost:8080/api", RequestTimeout: 10 * time.Second, RateLimitRPS: 10, RateLimitBurst: 20},
		Session: SessionConfig{Path: "/tmp/session"},
		Sync:    SyncConfig{PollInterval: time.Second, BreakerTimeout: 10 * time.Second},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_AllLogLevels(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"debug", true},
		{"info", true},
		{"warn", true},
		{"error", true},
		{"DEBUG", true},
		{"trace", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := validConfig()
			cfg.Logger.Level = tt.level

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_BaseURL(t *testing.T) {
	tests := []struct {
		url   string
		valid bool
	}{
		{"http://localhost:8080/api", true},
		{"https://movies.example.com", true},
		{"localhost:8080", false},
		{"ftp://example.com", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			cfg := validConfig()
			cfg.API.BaseURL = tt.url

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_PollIntervalTooShort(t *testing.T) {
	cfg := validConfig()
	cfg.Sync.PollInterval = 10 * time.Millisecond

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "poll interval")
}

func TestValidate_EmptySessionPath(t *testing.T) {
	cfg := validConfig()
	cfg.Session.Path = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session path cannot be empty")
}

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"ENV", "LOG_LEVEL", "API_BASE_URL", "API_REQUEST_TIMEOUT", "SYNC_POLL_INTERVAL", "SESSION_PATH", "GROUP_ID"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig([]string{"-env-file", filepath.Join(t.TempDir(), "missing.env")})
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "http://localhost:8080/api", cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.API.RequestTimeout)
	assert.Equal(t, time.Second, cfg.Sync.PollInterval)
	assert.True(t, filepath.IsAbs(cfg.Session.Path))
	assert.Empty(t, cfg.Console.GroupID)
}

func TestLoadConfig_FlagBeatsEnv(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://env.example.com")
	t.Setenv("SYNC_POLL_INTERVAL", "2s")
	t.Setenv("GROUP_ID", "7")

	cfg, err := LoadConfig([]string{
		"-env-file", filepath.Join(t.TempDir(), "missing.env"),
		"-api-url", "http://flag.example.com/api/",
		"-session-path", t.TempDir(),
	})
	require.NoError(t, err)

	assert.Equal(t, "http://flag.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.Sync.PollInterval)
	assert.Equal(t, "7", cfg.Console.GroupID)
}

func TestLoadConfig_InvalidDuration(t *testing.T) {
	_, err := LoadConfig([]string{
		"-env-file", filepath.Join(t.TempDir(), "missing.env"),
		"-request-timeout", "soon",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_request_timeout")
}

func TestExpandSessionPath_EmptyUsesDefault(t *testing.T) {
	cfg := &Config{}

	require.NoError(t, cfg.expandSessionPath())

	homeDir, _ := os.UserHomeDir() //nolint:errcheck // Test setup
	assert.Equal(t, filepath.Join(homeDir, ".movienight", "session"), cfg.Session.Path)
}

func TestExpandSessionPath_TildeExpansion(t *testing.T) {
	cfg := &Config{Session: SessionConfig{Path: "~/mn"}}

	require.NoError(t, cfg.expandSessionPath())

	homeDir, _ := os.UserHomeDir() //nolint:errcheck // Test setup
	assert.Equal(t, filepath.Join(homeDir, "mn"), cfg.Session.Path)
}

func TestGetConfigValue_Precedence(t *testing.T) {
	assert.Equal(t, "flag-value", getConfigValue("flag-value", "TEST_ENV_KEY", "default-value"))

	t.Setenv("TEST_ENV_KEY", "env-value")
	assert.Equal(t, "env-value", getConfigValue("", "TEST_ENV_KEY", "default-value"))

	assert.Equal(t, "default-value", getConfigValue("", "NONEXISTENT_KEY", "default-value"))
}

func TestGetNumericConfigValues_FallBackOnGarbage(t *testing.T) {
	t.Setenv("TEST_BURST", "many")
	t.Setenv("TEST_RPS", "2.5")

	assert.Equal(t, 20, getIntConfigValue("", "TEST_BURST", 20))
	assert.InDelta(t, 2.5, getFloatConfigValue("", "TEST_RPS", 10), 0.0001)
}

func TestLoadEnvFile_ValidFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")

	content := `# Test env file
ENV=staging
API_BASE_URL=http://backend:9000
# Comment line
QUOTED_VALUE="some value"
SINGLE_QUOTED='another value'
`
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o644))

	// Empty values count as unset, and t.Setenv restores them afterwards.
	for _, key := range []string{"ENV", "API_BASE_URL", "QUOTED_VALUE", "SINGLE_QUOTED"} {
		t.Setenv(key, "")
	}

	require.NoError(t, loadEnvFile(envFile))

	assert.Equal(t, "staging", os.Getenv("ENV"))
	assert.Equal(t, "http://backend:9000", os.Getenv("API_BASE_URL"))
	assert.Equal(t, "some value", os.Getenv("QUOTED_VALUE"))
	assert.Equal(t, "another value", os.Getenv("SINGLE_QUOTED"))
}

func TestLoadEnvFile_InvalidFormat(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")

	content := `VALID_KEY=valid_value
INVALID LINE WITHOUT EQUALS
`
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o644))

	err := loadEnvFile(envFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestLoadEnvFile_ExistingEnvVarsNotOverwritten(t *testing.T) {
	t.Setenv("TEST_VAR", "original-value")

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(`TEST_VAR=new-value`), 0o644))

	require.NoError(t, loadEnvFile(envFile))

	assert.Equal(t, "original-value", os.Getenv("TEST_VAR"))
}
