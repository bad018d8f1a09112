package app

import (
	"math/rand"
	"sort"
	"sync"
	"time"

	"timed-quiz-service/internal/domain"
)

// SessionConfig controls a single attempt.
type SessionConfig struct {
	Duration    time.Duration
	MaxWarnings int
	Rand        *rand.Rand
	Now         func() time.Time
}

// Session is one quiz attempt from login to results. All state is guarded by mu.
type Session struct {
	id          string
	userName    string
	questions   []domain.Question
	byID        map[string]int
	order       []int
	position    int
	selected    map[string]int
	review      map[string]struct{}
	remaining   int
	warnings    int
	maxWarnings int
	ended       bool
	reason      domain.EndReason
	startedAt   time.Time
	endedAt     time.Time
	now         func() time.Time

	mu          sync.Mutex
	subscribers map[chan domain.SessionView]struct{}
	done        chan struct{}

	// recordMu serialises the leaderboard write; recorded is guarded by it, not mu.
	recordMu sync.Mutex
	recorded bool
}

// NewSession builds a session over an already validated question set.
func NewSession(id, userName string, questions []domain.Question, cfg SessionConfig) *Session {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	maxWarnings := cfg.MaxWarnings
	if maxWarnings <= 0 {
		maxWarnings = DefaultMaxWarnings
	}
	duration := cfg.Duration
	if duration <= 0 {
		duration = DefaultDuration
	}

	byID := make(map[string]int, len(questions))
	for i, q := range questions {
		byID[q.ID] = i
	}

	return &Session{
		id:          id,
		userName:    userName,
		questions:   questions,
		byID:        byID,
		order:       Shuffle(len(questions), cfg.Rand),
		selected:    make(map[string]int),
		review:      make(map[string]struct{}),
		remaining:   int(duration / time.Second),
		maxWarnings: maxWarnings,
		startedAt:   now(),
		now:         now,
		subscribers: make(map[chan domain.SessionView]struct{}),
		done:        make(chan struct{}),
	}
}

func (s *Session) ID() string       { return s.id }
func (s *Session) UserName() string { return s.userName }

// Done is closed once the session ends.
func (s *Session) Done() <-chan struct{} { return s.done }

// Ended reports whether the session has ended and why.
func (s *Session) Ended() (bool, domain.EndReason) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended, s.reason
}

// View renders the current position.
func (s *Session) View() domain.SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// Result scores the session; it is final once the session ended.
func (s *Session) Result() domain.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return CalculateResults(s.questions, s.selected)
}

func (s *Session) selectAnswer(questionID string, option int) (domain.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended {
		return domain.SessionView{}, domain.ErrSessionEnded
	}
	idx, ok := s.byID[questionID]
	if !ok {
		return domain.SessionView{}, domain.ErrQuestionNotFound
	}
	if !s.questions[idx].ValidOption(option) {
		return domain.SessionView{}, domain.ErrOptionOutOfRange
	}
	s.selected[questionID] = option
	return s.broadcastLocked(), nil
}

func (s *Session) toggleReview() (domain.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended {
		return domain.SessionView{}, domain.ErrSessionEnded
	}
	id := s.currentLocked().ID
	if _, marked := s.review[id]; marked {
		delete(s.review, id)
	} else {
		s.review[id] = struct{}{}
	}
	return s.broadcastLocked(), nil
}

// move shifts the position by delta, staying put at either end.
func (s *Session) move(delta int) (domain.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended {
		return domain.SessionView{}, domain.ErrSessionEnded
	}
	next := s.position + delta
	if next >= 0 && next < len(s.order) {
		s.position = next
	}
	return s.broadcastLocked(), nil
}

func (s *Session) goTo(position int) (domain.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended {
		return domain.SessionView{}, domain.ErrSessionEnded
	}
	if position < 0 || position >= len(s.order) {
		return domain.SessionView{}, domain.ErrPositionOutOfRange
	}
	s.position = position
	return s.broadcastLocked(), nil
}

// tick runs once per second. It reports true when time is up; the caller ends the session.
func (s *Session) tick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended {
		return false
	}
	if s.remaining <= 0 {
		return true
	}
	s.remaining--
	s.broadcastLocked()
	return false
}

// hide records a visibility loss. forceEnd is true once warnings exceed the limit.
func (s *Session) hide() (out domain.VisibilityOutcome, forceEnd bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended {
		return domain.VisibilityOutcome{Warnings: s.warnings, Ended: true}, false
	}

	s.warnings++
	out.Warnings = s.warnings
	if s.warnings <= s.maxWarnings {
		out.Remaining = s.maxWarnings - s.warnings + 1
		out.Message = warningMessage(out.Remaining)
		s.broadcastLocked()
		return out, false
	}
	return out, true
}

// end is idempotent; only the first call reports first=true.
func (s *Session) end(reason domain.EndReason) (first bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended {
		return false
	}
	s.ended = true
	s.reason = reason
	s.endedAt = s.now()
	close(s.done)
	s.broadcastLocked()
	return true
}

func (s *Session) subscribe() (<-chan domain.SessionView, func()) {
	ch := make(chan domain.SessionView, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	// the buffer is empty, so this never blocks and no broadcast can overtake it
	ch <- s.viewLocked()
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) broadcastLocked() domain.SessionView {
	view := s.viewLocked()
	for ch := range s.subscribers {
		select {
		case ch <- view:
		default:
			// drop the stale snapshot so a slow reader never blocks the session
			select {
			case <-ch:
			default:
			}
			ch <- view
		}
	}
	return view
}

func (s *Session) currentLocked() domain.Question {
	return s.questions[s.order[s.position]]
}

func (s *Session) viewLocked() domain.SessionView {
	q := s.currentLocked()
	sel, answered := s.selected[q.ID]
	_, marked := s.review[q.ID]

	qv := domain.QuestionView{
		ID:              q.ID,
		Prompt:          q.Prompt,
		Options:         make([]domain.OptionView, len(q.Options)),
		MarkedForReview: marked,
	}
	for i, text := range q.Options {
		opt := domain.OptionView{
			Index:     i,
			Text:      text,
			AriaLabel: optionAriaLabel(i, text),
			Selected:  answered && sel == i,
		}
		if answered {
			opt.Correct = i == q.AnswerIndex
			opt.Incorrect = sel == i && sel != q.AnswerIndex
		}
		qv.Options[i] = opt
	}
	if answered {
		fb := domain.FeedbackFor(q, sel)
		qv.Feedback = &fb
	}

	progress := make([]domain.ProgressItem, len(s.order))
	for pos, qIdx := range s.order {
		id := s.questions[qIdx].ID
		_, attempted := s.selected[id]
		_, review := s.review[id]
		progress[pos] = domain.ProgressItem{
			Position:  pos + 1,
			Attempted: attempted,
			Review:    review,
			Current:   pos == s.position,
		}
	}

	total := len(s.questions)
	return domain.SessionView{
		SessionID: s.id,
		UserName:  s.userName,
		Label:     domain.QuestionLabel(s.position, total),
		Position:  s.position,
		Total:     total,
		Question:  qv,
		Status: domain.StatusBar{
			Attempted:   len(s.selected),
			Unattempted: total - len(s.selected),
			Review:      len(s.review),
		},
		Progress:         progress,
		RemainingSeconds: s.remaining,
		Clock:            domain.FormatClock(s.remaining),
		Warnings:         s.warnings,
		Ended:            s.ended,
		Reason:           s.reason,
	}
}

func (s *Session) endedAtTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.endedAt
}

// State is the raw session state exposed for debugging.
type State struct {
	SessionID        string            `json:"sessionId"`
	UserName         string            `json:"userName"`
	Questions        []domain.Question `json:"questions"`
	Order            []int             `json:"order"`
	Position         int               `json:"position"`
	Selected         map[string]int    `json:"selected"`
	Correctness      map[string]bool   `json:"correctness"`
	Review           []string          `json:"review"`
	RemainingSeconds int               `json:"remainingSeconds"`
	Warnings         int               `json:"warnings"`
	Ended            bool              `json:"ended"`
	Reason           domain.EndReason  `json:"reason,omitempty"`
	StartedAt        time.Time         `json:"startedAt"`
	EndedAt          *time.Time        `json:"endedAt,omitempty"`
}

// State returns a deep copy of the session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		SessionID:        s.id,
		UserName:         s.userName,
		Questions:        s.questions,
		Order:            append([]int(nil), s.order...),
		Position:         s.position,
		Selected:         make(map[string]int, len(s.selected)),
		Correctness:      make(map[string]bool, len(s.selected)),
		Review:           make([]string, 0, len(s.review)),
		RemainingSeconds: s.remaining,
		Warnings:         s.warnings,
		Ended:            s.ended,
		Reason:           s.reason,
		StartedAt:        s.startedAt,
	}
	for id, opt := range s.selected {
		st.Selected[id] = opt
		st.Correctness[id] = opt == s.questions[s.byID[id]].AnswerIndex
	}
	for id := range s.review {
		st.Review = append(st.Review, id)
	}
	sort.Strings(st.Review)
	if s.ended {
		endedAt := s.endedAt
		st.EndedAt = &endedAt
	}
	return st
}
