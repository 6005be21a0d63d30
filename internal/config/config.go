// Package config provides client configuration with support for command-line flags, environment variables, and .env files.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Selection zones for the daily study cache.
const (
	ZoneLocal = "local"
	ZoneUTC   = "utc"
)

// Config holds the client configuration.
type Config struct {
	App        AppConfig
	Logger     LoggerConfig
	Storage    StorageConfig
	Remote     RemoteConfig
	Study      StudyConfig
	Credential CredentialConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
	File  string // Optional rotated log file
}

// StorageConfig holds local cache configuration.
type StorageConfig struct {
	DataPath string // Directory holding the cache database
}

// RemoteConfig holds remote service configuration.
type RemoteConfig struct {
	URL       string
	PerPage   int           // Records requested per page (default: 100)
	Timeout   time.Duration // Per-request transport timeout (default: 30s)
	RateLimit float64       // Requests per second (default: 10)
	Burst     int           // Request burst (default: 5)
}

// StudyConfig holds daily selection configuration.
type StudyConfig struct {
	DailyCap      int    // Records per daily selection (default: 5)
	SelectionZone string // Calendar day used by the daily cache: local or utc
	UserID        string // Owner of newly created records
}

// CredentialConfig holds bearer token lookup configuration.
type CredentialConfig struct {
	KeyringService string
	KeyringAccount string
	// Token overrides the keyring when set (useful for CI and the dev remote).
	Token string
}

// Flags carries command-line values. Empty fields fall through to the
// environment, the .env file, then defaults.
type Flags struct {
	EnvFile       string
	Env           string
	LogLevel      string
	LogFile       string
	DataPath      string
	RemoteURL     string
	PerPage       string
	Timeout       string
	DailyCap      string
	SelectionZone string
	UserID        string
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig(flags Flags) (*Config, error) {
	envFile := flags.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	// A missing .env file is not an error.
	_ = loadEnvFile(envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(flags.Env, "FUSHIGI_ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(flags.LogLevel, "FUSHIGI_LOG_LEVEL", "info"),
			File:  getConfigValue(flags.LogFile, "FUSHIGI_LOG_FILE", ""),
		},
		Storage: StorageConfig{
			DataPath: getConfigValue(flags.DataPath, "FUSHIGI_DATA_PATH", ""),
		},
		Remote: RemoteConfig{
			URL:       getConfigValue(flags.RemoteURL, "FUSHIGI_REMOTE_URL", "http://127.0.0.1:8090"),
			PerPage:   getIntConfigValue(flags.PerPage, "FUSHIGI_PER_PAGE", 100),
			RateLimit: getFloatConfigValue("", "FUSHIGI_RATE_LIMIT", 10),
			Burst:     getIntConfigValue("", "FUSHIGI_RATE_BURST", 5),
		},
		Study: StudyConfig{
			DailyCap:      getIntConfigValue(flags.DailyCap, "FUSHIGI_DAILY_CAP", 5),
			SelectionZone: strings.ToLower(getConfigValue(flags.SelectionZone, "FUSHIGI_SELECTION_ZONE", ZoneLocal)),
			UserID:        getConfigValue(flags.UserID, "FUSHIGI_USER_ID", ""),
		},
		Credential: CredentialConfig{
			KeyringService: getConfigValue("", "FUSHIGI_KEYRING_SERVICE", "fushigi"),
			KeyringAccount: getConfigValue("", "FUSHIGI_KEYRING_ACCOUNT", "default"),
			Token:          getConfigValue("", "FUSHIGI_TOKEN", ""),
		},
	}

	timeoutStr := getConfigValue(flags.Timeout, "FUSHIGI_REQUEST_TIMEOUT", "30s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid request timeout %q: %w", timeoutStr, err)
	}
	cfg.Remote.Timeout = timeout

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %q (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Storage.DataPath == "" {
		return errors.New("data path cannot be empty after expansion")
	}

	u, err := url.Parse(c.Remote.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid remote url: %q", c.Remote.URL)
	}
	if c.Remote.PerPage < 1 || c.Remote.PerPage > 500 {
		return fmt.Errorf("invalid page size: %d (must be 1-500)", c.Remote.PerPage)
	}
	if c.Remote.RateLimit <= 0 || c.Remote.Burst < 1 {
		return errors.New("rate limit and burst must be positive")
	}

	if c.Study.DailyCap < 1 {
		return fmt.Errorf("invalid daily cap: %d", c.Study.DailyCap)
	}
	if c.Study.SelectionZone != ZoneLocal && c.Study.SelectionZone != ZoneUTC {
		return fmt.Errorf("invalid selection zone: %q (must be local or utc)", c.Study.SelectionZone)
	}

	return nil
}

// DatabasePath returns the path of the local cache database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Storage.DataPath, "fushigi.db")
}

// SelectionLocation returns the time zone that defines a calendar day for daily selection.
func (c *Config) SelectionLocation() *time.Location {
	if c.Study.SelectionZone == ZoneUTC {
		return time.UTC
	}
	return time.Local
}

// expandDataPath expands ~, makes the path absolute, and applies the default.
func (c *Config) expandDataPath() error {
	path := c.Storage.DataPath
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return fmt.Errorf("failed to get config directory: %w", err)
		}
		c.Storage.DataPath = filepath.Join(dir, "fushigi")
		return nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}
	c.Storage.DataPath = filepath.Clean(abs)
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

// getFloatConfigValue returns a float64 from flag, env var, or default.
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

		// Real environment variables win over the file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
