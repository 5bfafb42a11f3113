package config

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.RequestsPerMinute != 20 {
		t.Fatalf("default rpm = %d, want 20", cfg.RequestsPerMinute)
	}
	if cfg.AnalysisMode != "topic" {
		t.Fatalf("default mode = %q, want topic", cfg.AnalysisMode)
	}
	if cfg.HasProvider() {
		t.Fatal("default config should have no provider keys")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ZSXQ_GROUP_IDS", "12345, 67890")
	t.Setenv("DEEPSEEK_API_KEY", "sk-test")
	t.Setenv("REQUESTS_PER_MINUTE", "5")
	t.Setenv("MODEL_CALL_DELAY_SECONDS", "1")
	t.Setenv("ANALYSIS_MODE", "security")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(cfg.GroupIDs) != 2 || cfg.GroupIDs[0] != "12345" || cfg.GroupIDs[1] != "67890" {
		t.Fatalf("group ids = %v", cfg.GroupIDs)
	}
	if cfg.RequestsPerMinute != 5 {
		t.Fatalf("rpm = %d, want 5", cfg.RequestsPerMinute)
	}
	if cfg.ModelCallDelay != time.Second {
		t.Fatalf("model delay = %v, want 1s", cfg.ModelCallDelay)
	}
	if cfg.AnalysisMode != "security" {
		t.Fatalf("mode = %q, want security", cfg.AnalysisMode)
	}
	if !cfg.HasProvider() {
		t.Fatal("expected provider key to be detected")
	}
}

func TestLoadIgnoresMalformedInt(t *testing.T) {
	t.Setenv("REQUESTS_PER_MINUTE", "not-a-number")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RequestsPerMinute != 20 {
		t.Fatalf("rpm = %d, want default 20", cfg.RequestsPerMinute)
	}
}
