package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"timed-quiz-service/internal/domain"
)

func TestLoadJSONQuestions(t *testing.T) {
	path := writeFile(t, "questions.json", `[
		{"id": "q1", "question": "2 + 2?", "options": ["3", "4"], "answerIndex": 1},
		{"id": "q2", "question": "Sky colour?", "options": ["Blue", "Green", "Red"], "answerIndex": 0}
	]`)

	qs, err := NewQuestionLoader(path).LoadQuestions(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(qs) != 2 || qs[0].Prompt != "2 + 2?" || qs[0].AnswerIndex != 1 || len(qs[1].Options) != 3 {
		t.Fatalf("unexpected questions: %+v", qs)
	}
}

func TestLoadYAMLQuestions(t *testing.T) {
	path := writeFile(t, "questions.yaml", `
- id: q1
  question: "2 + 2?"
  options: ["3", "4"]
  answerIndex: 1
`)

	qs, err := NewQuestionLoader(path).LoadQuestions(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(qs) != 1 || qs[0].ID != "q1" || qs[0].Options[1] != "4" {
		t.Fatalf("unexpected questions: %+v", qs)
	}
}

func TestLoadFailuresWrapQuestionLoad(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.json")
	if _, err := NewQuestionLoader(missing).LoadQuestions(context.Background()); !errors.Is(err, domain.ErrQuestionLoad) {
		t.Fatalf("expected load error for missing file, got %v", err)
	}

	notArray := writeFile(t, "questions.json", `{"id": "q1"}`)
	if _, err := NewQuestionLoader(notArray).LoadQuestions(context.Background()); !errors.Is(err, domain.ErrQuestionLoad) {
		t.Fatalf("expected load error for non-array, got %v", err)
	}
}

func TestRepositoryBankIsValid(t *testing.T) {
	qs, err := NewQuestionLoader(filepath.Join("..", "..", "..", "questions.json")).LoadQuestions(context.Background())
	if err != nil {
		t.Fatalf("load shipped bank: %v", err)
	}
	if err := domain.ValidateQuestions(qs, domain.MinQuestions); err != nil {
		t.Fatalf("shipped bank invalid: %v", err)
	}
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}
