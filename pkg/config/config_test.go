package config

import (
	"os"
	"testing"
	"time"
)

func setMinimalEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvAppEnv, "production")
	t.Setenv(EnvGatewayBaseURL, "http://payments.test/v1")
}

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != "production" {
		t.Fatalf("expected App.Env to be production, got %q", cfg.App.Env)
	}
	if !cfg.App.IsProd() {
		t.Fatalf("expected IsProd to be true")
	}

	if cfg.Gateway.BaseURL != "http://payments.test/v1" {
		t.Fatalf("unexpected gateway base URL: %q", cfg.Gateway.BaseURL)
	}
	if cfg.Gateway.Timeout != 10*time.Second {
		t.Fatalf("expected gateway timeout 10s, got %v", cfg.Gateway.Timeout)
	}

	if cfg.Watch.PollInterval != 5*time.Second {
		t.Fatalf("expected default poll interval 5s, got %v", cfg.Watch.PollInterval)
	}
	if cfg.Watch.CountdownTick != time.Second {
		t.Fatalf("expected default countdown tick 1s, got %v", cfg.Watch.CountdownTick)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv(EnvAppEnv); err != nil {
		t.Fatalf("failed to unset %s: %v", EnvAppEnv, err)
	}

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when %s is missing", EnvAppEnv)
	}
}

func TestLoad_OverriddenCadence(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv("GLOWORA_WATCH_POLL_INTERVAL", "250ms")
	t.Setenv("GLOWORA_WATCH_COUNTDOWN_TICK", "50ms")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.Watch.PollInterval != 250*time.Millisecond {
		t.Fatalf("unexpected poll interval %v", cfg.Watch.PollInterval)
	}
	if cfg.Watch.CountdownTick != 50*time.Millisecond {
		t.Fatalf("unexpected countdown tick %v", cfg.Watch.CountdownTick)
	}
}

func TestLoad_RejectsNonPositiveCadence(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv("GLOWORA_WATCH_POLL_INTERVAL", "0s")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for zero poll interval")
	}
}
