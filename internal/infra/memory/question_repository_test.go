package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"timed-quiz-service/internal/domain"
)

func TestQuestionRepositoryCaches(t *testing.T) {
	loader := &countingLoader{QuestionLoader: NewStaticQuestionLoader(SampleQuestions())}
	repo := NewQuestionRepository(loader, time.Minute)

	if _, err := repo.GetQuestions(context.Background()); err != nil {
		t.Fatalf("get questions: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	qs, err := repo.GetQuestions(context.Background())
	if err != nil {
		t.Fatalf("get questions 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
	if len(qs) != len(SampleQuestions()) {
		t.Fatalf("expected %d questions, got %d", len(SampleQuestions()), len(qs))
	}
}

func TestQuestionRepositoryExpires(t *testing.T) {
	loader := &countingLoader{QuestionLoader: NewStaticQuestionLoader(SampleQuestions())}
	repo := NewQuestionRepository(loader, time.Minute)
	now := time.Now()
	repo.clock = func() time.Time { return now }

	_, _ = repo.GetQuestions(context.Background())
	now = now.Add(2 * time.Minute)
	_, _ = repo.GetQuestions(context.Background())
	if loader.calls != 2 {
		t.Fatalf("expected reload after expiry, loader calls %d", loader.calls)
	}

	repo.Invalidate()
	_, _ = repo.GetQuestions(context.Background())
	if loader.calls != 3 {
		t.Fatalf("expected reload after invalidate, loader calls %d", loader.calls)
	}
}

func TestQuestionRepositoryZeroTTLAlwaysLoads(t *testing.T) {
	loader := &countingLoader{QuestionLoader: NewStaticQuestionLoader(SampleQuestions())}
	repo := NewQuestionRepository(loader, 0)

	for i := 0; i < 3; i++ {
		if _, err := repo.GetQuestions(context.Background()); err != nil {
			t.Fatalf("get questions: %v", err)
		}
	}
	if loader.calls != 3 {
		t.Fatalf("expected no caching, loader calls %d", loader.calls)
	}
}

func TestQuestionRepositoryDoesNotCacheErrors(t *testing.T) {
	loader := &failingLoader{err: domain.ErrQuestionLoad}
	repo := NewQuestionRepository(loader, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := repo.GetQuestions(context.Background()); !errors.Is(err, domain.ErrQuestionLoad) {
			t.Fatalf("expected load error, got %v", err)
		}
	}
	if loader.calls != 2 {
		t.Fatalf("expected retry after failure, loader calls %d", loader.calls)
	}
}

func TestSampleQuestionsAreValid(t *testing.T) {
	if err := domain.ValidateQuestions(SampleQuestions(), domain.MinQuestions); err != nil {
		t.Fatalf("sample bank invalid: %v", err)
	}
}

type countingLoader struct {
	QuestionLoader
	calls int
}

func (l *countingLoader) LoadQuestions(ctx context.Context) ([]domain.Question, error) {
	l.calls++
	return l.QuestionLoader.LoadQuestions(ctx)
}

type failingLoader struct {
	err   error
	calls int
}

func (l *failingLoader) LoadQuestions(context.Context) ([]domain.Question, error) {
	l.calls++
	return nil, l.err
}
