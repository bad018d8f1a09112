package memory

import (
	"context"

	"timed-quiz-service/internal/domain"
)

// StaticQuestionLoader is a loader backed by an in-memory slice (useful for tests/demos).
type StaticQuestionLoader struct {
	questions []domain.Question
}

func NewStaticQuestionLoader(questions []domain.Question) *StaticQuestionLoader {
	return &StaticQuestionLoader{questions: questions}
}

func (l *StaticQuestionLoader) LoadQuestions(_ context.Context) ([]domain.Question, error) {
	out := make([]domain.Question, len(l.questions))
	copy(out, l.questions)
	return out, nil
}

// SampleQuestions is the built-in bank used when no file or database is configured.
func SampleQuestions() []domain.Question {
	return []domain.Question{
		{ID: "q1", Prompt: "What is the capital of France?", Options: []string{"Berlin", "Paris", "Madrid", "Rome"}, AnswerIndex: 1},
		{ID: "q2", Prompt: "Which planet is known as the Red Planet?", Options: []string{"Earth", "Venus", "Mars", "Jupiter"}, AnswerIndex: 2},
		{ID: "q3", Prompt: "What is 7 x 8?", Options: []string{"54", "56", "64", "48"}, AnswerIndex: 1},
		{ID: "q4", Prompt: "Which gas do plants absorb from the air?", Options: []string{"Oxygen", "Nitrogen", "Carbon dioxide", "Helium"}, AnswerIndex: 2},
		{ID: "q5", Prompt: "What is the largest ocean on Earth?", Options: []string{"Atlantic", "Indian", "Arctic", "Pacific"}, AnswerIndex: 3},
		{ID: "q6", Prompt: "How many continents are there?", Options: []string{"5", "6", "7", "8"}, AnswerIndex: 2},
		{ID: "q7", Prompt: "Which keyword starts a goroutine in Go?", Options: []string{"go", "async", "spawn", "thread"}, AnswerIndex: 0},
		{ID: "q8", Prompt: "What is the boiling point of water at sea level in Celsius?", Options: []string{"90", "100", "110", "120"}, AnswerIndex: 1},
		{ID: "q9", Prompt: "Who wrote 'Romeo and Juliet'?", Options: []string{"Dickens", "Austen", "Shakespeare", "Tolstoy"}, AnswerIndex: 2},
		{ID: "q10", Prompt: "What is the square root of 81?", Options: []string{"7", "8", "9", "10"}, AnswerIndex: 2},
		{ID: "q11", Prompt: "Which HTTP status code means Not Found?", Options: []string{"200", "301", "404", "500"}, AnswerIndex: 2},
		{ID: "q12", Prompt: "What is the chemical symbol for gold?", Options: []string{"Ag", "Au", "Gd", "Go"}, AnswerIndex: 1},
	}
}
