// Package config handles client configuration from environment variables.
// These are the static settings; the per-endpoint URL map is fetched at
// runtime from the service (see pkg/configapi).
package config

import (
	"os"
	"strings"
	"time"
)

// Defaults that mirror what the official web player sends.
const (
	DefaultBaseURL      = "https://www.nflgamepass.com"
	DefaultGigyaAuthURL = "https://accounts.eu1.gigya.com/accounts.login"
	DefaultUserAgent    = "Mozilla/5.0 (X11; Linux x86_64; rv:59.0) Gecko/20100101 Firefox/59.0"
)

// Config holds all client configuration.
type Config struct {
	// Service endpoints
	BaseURL      string
	GigyaAuthURL string

	// Identity sent with requests
	UserAgent string

	// Proxy routing (applies to every request)
	ProxyURL string

	// Request timeouts. On a timeout, a request is retried exactly once
	// under RetryTimeout; a second timeout is terminal.
	RequestTimeout time.Duration
	RetryTimeout   time.Duration

	// Host suffixes that require a browser-like TLS fingerprint.
	FingerprintHosts []string

	// Logging
	LogLevel string
	LogJSON  bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		BaseURL:          getEnvString("GAMEPASS_BASE_URL", DefaultBaseURL),
		GigyaAuthURL:     getEnvString("GAMEPASS_GIGYA_AUTH_URL", DefaultGigyaAuthURL),
		UserAgent:        getEnvString("GAMEPASS_USER_AGENT", DefaultUserAgent),
		ProxyURL:         os.Getenv("GAMEPASS_PROXY"),
		RequestTimeout:   getEnvDuration("GAMEPASS_REQUEST_TIMEOUT", 12*time.Second),
		RetryTimeout:     getEnvDuration("GAMEPASS_RETRY_TIMEOUT", 30*time.Second),
		FingerprintHosts: getEnvStringSlice("GAMEPASS_FINGERPRINT_HOSTS", []string{"gigya.com"}),
		LogLevel:         getEnvString("GAMEPASS_LOG_LEVEL", "info"),
		LogJSON:          getEnvBool("GAMEPASS_LOG_JSON", false),
	}
}

func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return strings.ToLower(val) == "true" || val == "1"
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func getEnvStringSlice(key string, defaultVal []string) []string {
	if val := os.Getenv(key); val != "" {
		parts := strings.Split(val, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return defaultVal
}
