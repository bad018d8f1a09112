package domain

import "fmt"

// MinQuestions is the smallest question bank a session accepts.
const MinQuestions = 10

// ValidateQuestions checks a loaded bank before a session can use it.
func ValidateQuestions(questions []Question, min int) error {
	if min <= 0 {
		min = MinQuestions
	}
	if len(questions) < min {
		return fmt.Errorf("%w: %w: need at least %d, got %d", ErrQuestionLoad, ErrNotEnoughQuestions, min, len(questions))
	}

	seen := make(map[string]struct{}, len(questions))
	for i, q := range questions {
		if err := validateQuestion(q); err != nil {
			return fmt.Errorf("%w: %w: record %d: %s", ErrQuestionLoad, ErrMalformedQuestion, i, err.Error())
		}
		if _, dup := seen[q.ID]; dup {
			return fmt.Errorf("%w: %w: record %d: duplicate id %q", ErrQuestionLoad, ErrMalformedQuestion, i, q.ID)
		}
		seen[q.ID] = struct{}{}
	}
	return nil
}

func validateQuestion(q Question) error {
	switch {
	case q.ID == "":
		return fmt.Errorf("missing id")
	case q.Prompt == "":
		return fmt.Errorf("question %q has no prompt", q.ID)
	case len(q.Options) < 2:
		return fmt.Errorf("question %q needs at least two options", q.ID)
	case !q.ValidOption(q.AnswerIndex):
		return fmt.Errorf("question %q answer index %d out of range", q.ID, q.AnswerIndex)
	}
	return nil
}
