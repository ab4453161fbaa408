package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	Reset()
	defer Reset()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("default port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.AI.BaseURL != "https://api.groq.com/openai/v1" {
		t.Errorf("default AI base URL = %q", cfg.AI.BaseURL)
	}
	if cfg.News.MaxItems != 50 {
		t.Errorf("default max items = %d, want 50", cfg.News.MaxItems)
	}
	if cfg.News.CacheTTL != "5m" {
		t.Errorf("default news cache TTL = %q, want 5m", cfg.News.CacheTTL)
	}
}

func TestLoadMissingAPIKeyIsNotAnError(t *testing.T) {
	Reset()
	defer Reset()

	if _, err := Load(""); err != nil {
		t.Fatalf("Load should succeed without an API key: %v", err)
	}
}

func TestValidateConfigRejectsBadDurations(t *testing.T) {
	cfg := &Config{}
	cfg.Server.ReadTimeout = "not-a-duration"
	if err := validateConfig(cfg); err == nil {
		t.Error("expected error for malformed duration")
	}

	cfg = &Config{}
	cfg.Server.ReadTimeout = "15s"
	cfg.Auth.SessionTTL = "168h"
	if err := validateConfig(cfg); err != nil {
		t.Errorf("valid durations rejected: %v", err)
	}
}

func TestDuration(t *testing.T) {
	tests := []struct {
		in   string
		def  time.Duration
		want time.Duration
	}{
		{"5m", time.Second, 5 * time.Minute},
		{"", time.Second, time.Second},
		{"garbage", 2 * time.Second, 2 * time.Second},
	}
	for _, tt := range tests {
		if got := Duration(tt.in, tt.def); got != tt.want {
			t.Errorf("Duration(%q, %v) = %v, want %v", tt.in, tt.def, got, tt.want)
		}
	}
}
