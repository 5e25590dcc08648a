package config

import (
	"testing"
	"time"
)

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("BREWTIFUL_TEST_KEY", "  value  ")
	if got := getEnvOrDefault("BREWTIFUL_TEST_KEY", "fallback"); got != "value" {
		t.Fatalf("expected trimmed value, got %q", got)
	}
	if got := getEnvOrDefault("BREWTIFUL_MISSING_KEY", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
}

func TestGetDurationEnv(t *testing.T) {
	t.Setenv("BREWTIFUL_TTL", "15")
	if got := getDurationEnv("BREWTIFUL_TTL", 10, time.Minute); got != 15*time.Minute {
		t.Fatalf("expected 15m, got %v", got)
	}

	t.Setenv("BREWTIFUL_TTL", "not-a-number")
	if got := getDurationEnv("BREWTIFUL_TTL", 10, time.Minute); got != 10*time.Minute {
		t.Fatalf("expected default 10m on parse failure, got %v", got)
	}

	t.Setenv("BREWTIFUL_TTL", "-2")
	if got := getDurationEnv("BREWTIFUL_TTL", 10, time.Minute); got != 10*time.Minute {
		t.Fatalf("expected default 10m on non-positive value, got %v", got)
	}
}

func TestGetListEnv(t *testing.T) {
	t.Setenv("BREWTIFUL_ORIGINS", "http://a.example, http://b.example ,")
	got := getListEnv("BREWTIFUL_ORIGINS", "http://localhost:3000")
	if len(got) != 2 || got[0] != "http://a.example" || got[1] != "http://b.example" {
		t.Fatalf("unexpected list: %v", got)
	}
}
