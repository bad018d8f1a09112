package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"timed-quiz-service/internal/config"
)

func TestQuestionsValidateCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml"), "questions", "validate", "../../questions.json"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.Contains(out.String(), "12 questions ok") {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestQuestionsValidateRejectsSmallBank(t *testing.T) {
	path := filepath.Join(t.TempDir(), "few.json")
	data := `[{"id":"a","question":"?","options":["x","y"],"answerIndex":0}]`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml"), "questions", "validate", path})

	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected validation failure")
	}
}

func TestBuildServiceInMemory(t *testing.T) {
	cfg := config.Defaults()
	cfg.Quiz.QuestionsPath = "../../questions.json"

	service, cleanup, err := buildService(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	defer cleanup()

	ctx := context.Background()
	session, err := service.Start(ctx, "Alice")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if view := session.View(); view.Total != 12 || view.Clock != "10:00" {
		t.Fatalf("unexpected view: %+v", view)
	}
	outcome, err := service.End(ctx, session.ID())
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if len(outcome.Leaderboard) != 1 {
		t.Fatalf("expected memory leaderboard entry, got %+v", outcome.Leaderboard)
	}
}

func TestMigrateRequiresPostgres(t *testing.T) {
	if err := runMigrationsWithConfig(context.Background(), config.Defaults(), zerolog.Nop()); err == nil {
		t.Fatalf("expected error without postgres url")
	}
}
