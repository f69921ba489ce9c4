package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.GigyaAuthURL != DefaultGigyaAuthURL {
		t.Errorf("GigyaAuthURL = %q", cfg.GigyaAuthURL)
	}
	if cfg.RequestTimeout != 12*time.Second || cfg.RetryTimeout != 30*time.Second {
		t.Errorf("timeouts = %v / %v", cfg.RequestTimeout, cfg.RetryTimeout)
	}
	if len(cfg.FingerprintHosts) != 1 || cfg.FingerprintHosts[0] != "gigya.com" {
		t.Errorf("FingerprintHosts = %v", cfg.FingerprintHosts)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("GAMEPASS_BASE_URL", "https://staging.example.com")
	t.Setenv("GAMEPASS_REQUEST_TIMEOUT", "5s")
	t.Setenv("GAMEPASS_RETRY_TIMEOUT", "not a duration")
	t.Setenv("GAMEPASS_FINGERPRINT_HOSTS", "gigya.com, example.org ,")
	t.Setenv("GAMEPASS_LOG_JSON", "true")

	cfg := Load()

	if cfg.BaseURL != "https://staging.example.com" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.RequestTimeout)
	}
	if cfg.RetryTimeout != 30*time.Second {
		t.Errorf("an unparsable duration should keep the default, got %v", cfg.RetryTimeout)
	}
	if len(cfg.FingerprintHosts) != 2 || cfg.FingerprintHosts[1] != "example.org" {
		t.Errorf("FingerprintHosts = %v", cfg.FingerprintHosts)
	}
	if !cfg.LogJSON {
		t.Error("LogJSON should be true")
	}
}
