package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoadSDKDefaults(t *testing.T) {
	t.Setenv("CLICK_TRACKING_ENDPOINT", "https://collector.example/click")
	cfg := LoadSDK()
	if cfg.ConnectTimeout != 10*time.Second || cfg.ReadTimeout != 10*time.Second {
		t.Fatalf("unexpected default timeouts %v/%v", cfg.ConnectTimeout, cfg.ReadTimeout)
	}
	if cfg.PatternConfigPath != "attack_pattern.json" {
		t.Errorf("PatternConfigPath = %q", cfg.PatternConfigPath)
	}
	if cfg.LoggingEnabled {
		t.Error("logging should default to off")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoadSDKOverrides(t *testing.T) {
	t.Setenv("CLICK_TRACKING_ENDPOINT", "http://localhost:8788/click")
	t.Setenv("CLICK_CONNECT_TIMEOUT", "3")
	t.Setenv("CLICK_READ_TIMEOUT", "250ms")
	t.Setenv("ADSDK_LOGGING_ENABLED", "true")
	t.Setenv("ADSDK_PACKAGE_NAME", "com.example.mail")
	cfg := LoadSDK()
	if cfg.ConnectTimeout != 3*time.Second {
		t.Errorf("ConnectTimeout = %v", cfg.ConnectTimeout)
	}
	if cfg.ReadTimeout != 250*time.Millisecond {
		t.Errorf("ReadTimeout = %v", cfg.ReadTimeout)
	}
	if !cfg.LoggingEnabled || cfg.PackageName != "com.example.mail" {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestSDKConfigValidate(t *testing.T) {
	if err := DefaultSDKConfig(" ").Validate(); !errors.Is(err, ErrMissingEndpoint) {
		t.Errorf("expected ErrMissingEndpoint, got %v", err)
	}
	cfg := DefaultSDKConfig("http://x")
	cfg.ReadTimeout = 0
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidTimeout) {
		t.Errorf("expected ErrInvalidTimeout, got %v", err)
	}
}

func TestLoadCollectorConfig(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("RATE_LIMIT_ENABLED", "nope")
	cfg := Load()
	if cfg.Port != "9999" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if !cfg.RateLimitEnabled {
		t.Error("invalid bool should fall back to default")
	}
	if cfg.ServiceName != "click-collector" {
		t.Errorf("ServiceName = %q", cfg.ServiceName)
	}
}
