package app

import (
	"fmt"
	"time"

	"timed-quiz-service/internal/domain"
)

const (
	PointsCorrect     = 4
	PointsIncorrect   = -1
	PointsUnattempted = 0

	DefaultDuration    = 10 * time.Minute
	DefaultTick        = time.Second
	DefaultMaxWarnings = 3
	DefaultRetention   = 30 * time.Minute
)

// CalculateResults scores every question in the set against the selections.
func CalculateResults(questions []domain.Question, selected map[string]int) domain.Result {
	var res domain.Result
	for _, q := range questions {
		sel, ok := selected[q.ID]
		if !ok {
			continue
		}
		res.Attempted++
		if sel == q.AnswerIndex {
			res.Correct++
		} else {
			res.Incorrect++
		}
	}
	res.Unattempted = len(questions) - res.Attempted
	res.Score = res.Correct*PointsCorrect + res.Incorrect*PointsIncorrect + res.Unattempted*PointsUnattempted
	return res
}

func warningMessage(remaining int) string {
	return fmt.Sprintf("You left the tab. %d warning(s) left before auto submission.", remaining)
}

func optionAriaLabel(idx int, text string) string {
	return fmt.Sprintf("Option %d: %s", idx+1, text)
}
