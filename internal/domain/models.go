package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Question models an MCQ question with exactly one correct option.
type Question struct {
	ID          string   `json:"id" yaml:"id"`
	Prompt      string   `json:"question" yaml:"question"`
	Options     []string `json:"options" yaml:"options"`
	AnswerIndex int      `json:"answerIndex" yaml:"answerIndex"`
}

// ValidOption reports whether idx addresses one of the question's options.
func (q Question) ValidOption(idx int) bool {
	return idx >= 0 && idx < len(q.Options)
}

// Theme is the persisted UI theme preference.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"

	DefaultTheme = ThemeDark
)

// ParseTheme validates a raw theme value.
func ParseTheme(raw string) (Theme, error) {
	switch Theme(raw) {
	case ThemeDark, ThemeLight:
		return Theme(raw), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidTheme, raw)
}

// Toggle returns the opposite theme; anything unknown is treated as dark.
func (t Theme) Toggle() Theme {
	if t == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}

// EndReason records why a session ended.
type EndReason string

const (
	EndManual    EndReason = "manual"
	EndTimeout   EndReason = "timeout"
	EndViolation EndReason = "violation"
	EndDiscarded EndReason = "discarded"
)

// Result is the scored summary of a session.
type Result struct {
	Correct     int `json:"correct"`
	Incorrect   int `json:"incorrect"`
	Attempted   int `json:"attempted"`
	Unattempted int `json:"unattempted"`
	Score       int `json:"score"`
}

// LeaderboardEntry is one persisted score. Timestamps travel as unix milliseconds.
type LeaderboardEntry struct {
	Name      string
	Score     int
	Timestamp time.Time
}

type leaderboardEntryJSON struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
	TS    int64  `json:"ts"`
}

func (e LeaderboardEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(leaderboardEntryJSON{Name: e.Name, Score: e.Score, TS: e.Timestamp.UnixMilli()})
}

func (e *LeaderboardEntry) UnmarshalJSON(data []byte) error {
	var raw leaderboardEntryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.Name = raw.Name
	e.Score = raw.Score
	e.Timestamp = time.UnixMilli(raw.TS)
	return nil
}

// Display renders the entry as shown on the results screen.
func (e LeaderboardEntry) Display(loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return fmt.Sprintf("%s - %d (%s)", e.Name, e.Score, e.Timestamp.In(loc).Format("2006-01-02 15:04:05"))
}

// Outcome is returned when a session ends. Recorded reports whether the score reached the leaderboard.
type Outcome struct {
	SessionID   string             `json:"sessionId"`
	UserName    string             `json:"userName"`
	Reason      EndReason          `json:"reason"`
	Result      Result             `json:"result"`
	Recorded    bool               `json:"recorded"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}

// VisibilityOutcome reports the effect of a visibility-change event.
type VisibilityOutcome struct {
	Warnings  int      `json:"warnings"`
	Remaining int      `json:"remaining"`
	Message   string   `json:"message,omitempty"`
	Ended     bool     `json:"ended"`
	Outcome   *Outcome `json:"outcome,omitempty"`
}
