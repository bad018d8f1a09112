package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
server:
  port: "9090"
  debug: true
quiz:
  duration: 15m
  max_warnings: 5
redis:
  addr: localhost:6379
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || !cfg.Server.Debug {
		t.Fatalf("server section not applied: %+v", cfg.Server)
	}
	if cfg.Quiz.Duration != "15m" || cfg.Quiz.MaxWarnings != 5 {
		t.Fatalf("quiz section not applied: %+v", cfg.Quiz)
	}
	if cfg.Quiz.MinQuestions != 10 || cfg.Leaderboard.Size != 10 || cfg.Quiz.QuestionsPath != "questions.json" || cfg.Quiz.SessionRetention != "30m" {
		t.Fatalf("defaults lost: %+v %+v", cfg.Quiz, cfg.Leaderboard)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("redis addr not applied: %q", cfg.Redis.Addr)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestTTLDuration(t *testing.T) {
	if d := TTLDuration("", time.Minute); d != time.Minute {
		t.Fatalf("expected fallback, got %v", d)
	}
	if d := TTLDuration("bogus", time.Minute); d != time.Minute {
		t.Fatalf("expected fallback on parse error, got %v", d)
	}
	if d := TTLDuration("90s", time.Minute); d != 90*time.Second {
		t.Fatalf("expected 90s, got %v", d)
	}
	if d := TTLDuration("0s", time.Minute); d != 0 {
		t.Fatalf("expected explicit zero, got %v", d)
	}
}
