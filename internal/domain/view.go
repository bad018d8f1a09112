package domain

import "fmt"

// SessionView is the render model of a session at its current position.
type SessionView struct {
	SessionID        string         `json:"sessionId"`
	UserName         string         `json:"userName"`
	Label            string         `json:"label"`
	Position         int            `json:"position"`
	Total            int            `json:"total"`
	Question         QuestionView   `json:"question"`
	Status           StatusBar      `json:"status"`
	Progress         []ProgressItem `json:"progress"`
	RemainingSeconds int            `json:"remainingSeconds"`
	Clock            string         `json:"clock"`
	Warnings         int            `json:"warnings"`
	Ended            bool           `json:"ended"`
	Reason           EndReason      `json:"reason,omitempty"`
}

// QuestionView is the current question with option decoration and feedback.
type QuestionView struct {
	ID              string       `json:"id"`
	Prompt          string       `json:"prompt"`
	Options         []OptionView `json:"options"`
	MarkedForReview bool         `json:"markedForReview"`
	Feedback        *Feedback    `json:"feedback,omitempty"`
}

// OptionView mirrors one radio option. Correct and Incorrect are only set once answered.
type OptionView struct {
	Index     int    `json:"index"`
	Text      string `json:"text"`
	AriaLabel string `json:"ariaLabel"`
	Selected  bool   `json:"selected"`
	Correct   bool   `json:"correct,omitempty"`
	Incorrect bool   `json:"incorrect,omitempty"`
}

// Feedback is the immediate verdict shown after selecting an option.
type Feedback struct {
	Correct bool   `json:"correct"`
	Message string `json:"message"`
}

// StatusBar holds the live counters.
type StatusBar struct {
	Attempted   int `json:"attempted"`
	Unattempted int `json:"unattempted"`
	Review      int `json:"review"`
}

// ProgressItem is one button of the progress bar, in presentation order.
type ProgressItem struct {
	Position  int  `json:"position"`
	Attempted bool `json:"attempted"`
	Review    bool `json:"review"`
	Current   bool `json:"current"`
}

// QuestionLabel renders "Question i of N" for a 0-based position.
func QuestionLabel(position, total int) string {
	return fmt.Sprintf("Question %d of %d", position+1, total)
}

// FormatClock renders remaining seconds as MM:SS.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// FeedbackFor returns the verdict for a selection.
func FeedbackFor(q Question, selected int) Feedback {
	if selected == q.AnswerIndex {
		return Feedback{Correct: true, Message: "Correct!"}
	}
	return Feedback{Correct: false, Message: "Incorrect"}
}
