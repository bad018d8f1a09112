package app

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"timed-quiz-service/internal/domain"
)

// SessionRepository abstracts how live sessions are held (in-memory, Redis-marked, etc).
type SessionRepository interface {
	Put(session *Session)
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// QuestionRepository loads the question bank (from cache/backing store).
type QuestionRepository interface {
	GetQuestions(ctx context.Context) ([]domain.Question, error)
}

// LeaderboardStore persists finished scores, keeps the most recent entries and ranks them on read.
type LeaderboardStore interface {
	Add(ctx context.Context, entry domain.LeaderboardEntry) error
	Top(ctx context.Context, n int) ([]domain.LeaderboardEntry, error)
}

// PreferenceStore persists per-user UI preferences.
type PreferenceStore interface {
	Theme(ctx context.Context, user string) (domain.Theme, bool, error)
	SetTheme(ctx context.Context, user string, theme domain.Theme) error
}

// Options tunes the service; zero values fall back to defaults.
// Retention is how long an ended session stays readable before it is evicted.
type Options struct {
	Duration     time.Duration
	Tick         time.Duration
	MinQuestions int
	MaxWarnings  int
	Display      int
	Retention    time.Duration
	Logger       zerolog.Logger
	Now          func() time.Time
	Rand         *rand.Rand
}

// QuizService contains the quiz use cases.
type QuizService struct {
	sessions    SessionRepository
	questions   QuestionRepository
	leaderboard LeaderboardStore
	prefs       PreferenceStore
	opts        Options
	log         zerolog.Logger

	rndMu sync.Mutex
}

func NewQuizService(sessions SessionRepository, questions QuestionRepository, leaderboard LeaderboardStore, prefs PreferenceStore, opts Options) *QuizService {
	if opts.Duration <= 0 {
		opts.Duration = DefaultDuration
	}
	if opts.Tick <= 0 {
		opts.Tick = DefaultTick
	}
	if opts.MinQuestions <= 0 {
		opts.MinQuestions = domain.MinQuestions
	}
	if opts.MaxWarnings <= 0 {
		opts.MaxWarnings = DefaultMaxWarnings
	}
	if opts.Display <= 0 {
		opts.Display = domain.LeaderboardDisplay
	}
	if opts.Retention <= 0 {
		opts.Retention = DefaultRetention
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &QuizService{
		sessions:    sessions,
		questions:   questions,
		leaderboard: leaderboard,
		prefs:       prefs,
		opts:        opts,
		log:         opts.Logger.With().Str("component", "quiz_service").Logger(),
	}
}

// Start logs a user in and begins a fresh attempt with the countdown running.
func (s *QuizService) Start(ctx context.Context, name string) (*Session, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}

	questions, err := s.questions.GetQuestions(ctx)
	if err != nil {
		s.log.Error().Err(err).Str("user", name).Msg("question load failed")
		return nil, err
	}
	if err := domain.ValidateQuestions(questions, s.opts.MinQuestions); err != nil {
		s.log.Error().Err(err).Str("user", name).Msg("question bank rejected")
		return nil, err
	}

	session := s.newSession(name, questions)
	s.sessions.Put(session)
	go s.runCountdown(session)

	s.log.Info().
		Str("session", session.ID()).
		Str("user", name).
		Int("questions", len(questions)).
		Dur("duration", s.opts.Duration).
		Msg("session started")
	return session, nil
}

// Reattempt discards the old attempt without scoring it and starts a new one for the same user.
func (s *QuizService) Reattempt(ctx context.Context, sessionID string) (*Session, error) {
	old, err := s.get(sessionID)
	if err != nil {
		return nil, err
	}
	s.discard(old)
	return s.Start(ctx, old.UserName())
}

// View renders the session at its current position.
func (s *QuizService) View(_ context.Context, sessionID string) (domain.SessionView, error) {
	session, err := s.get(sessionID)
	if err != nil {
		return domain.SessionView{}, err
	}
	return session.View(), nil
}

// Select records the chosen option for a question, replacing any earlier choice.
func (s *QuizService) Select(_ context.Context, sessionID, questionID string, option int) (domain.SessionView, error) {
	session, err := s.get(sessionID)
	if err != nil {
		return domain.SessionView{}, err
	}
	return session.selectAnswer(questionID, option)
}

// ToggleReview flips the review mark on the current question.
func (s *QuizService) ToggleReview(_ context.Context, sessionID string) (domain.SessionView, error) {
	session, err := s.get(sessionID)
	if err != nil {
		return domain.SessionView{}, err
	}
	return session.toggleReview()
}

func (s *QuizService) Next(_ context.Context, sessionID string) (domain.SessionView, error) {
	session, err := s.get(sessionID)
	if err != nil {
		return domain.SessionView{}, err
	}
	return session.move(1)
}

func (s *QuizService) Prev(_ context.Context, sessionID string) (domain.SessionView, error) {
	session, err := s.get(sessionID)
	if err != nil {
		return domain.SessionView{}, err
	}
	return session.move(-1)
}

// GoTo jumps to a 0-based position in the presentation order.
func (s *QuizService) GoTo(_ context.Context, sessionID string, position int) (domain.SessionView, error) {
	session, err := s.get(sessionID)
	if err != nil {
		return domain.SessionView{}, err
	}
	return session.goTo(position)
}

// ReportVisibility handles a visibility change; only hidden events count.
func (s *QuizService) ReportVisibility(ctx context.Context, sessionID string, hidden bool) (domain.VisibilityOutcome, error) {
	session, err := s.get(sessionID)
	if err != nil {
		return domain.VisibilityOutcome{}, err
	}
	if !hidden {
		view := session.View()
		return domain.VisibilityOutcome{Warnings: view.Warnings, Ended: view.Ended}, nil
	}

	out, forceEnd := session.hide()
	if !forceEnd {
		if out.Message != "" {
			s.log.Warn().Str("session", sessionID).Int("warnings", out.Warnings).Msg("tab left")
		}
		return out, nil
	}

	s.log.Warn().Str("session", sessionID).Int("warnings", out.Warnings).Msg("warning limit exceeded, auto submitting")
	outcome, err := s.finish(ctx, session, domain.EndViolation)
	if err != nil {
		return out, err
	}
	out.Ended = true
	out.Outcome = &outcome
	return out, nil
}

// End submits the session. It is idempotent and a session is scored on the leaderboard at most once.
func (s *QuizService) End(ctx context.Context, sessionID string) (domain.Outcome, error) {
	session, err := s.get(sessionID)
	if err != nil {
		return domain.Outcome{}, err
	}
	return s.finish(ctx, session, domain.EndManual)
}

// Result scores the session without ending it.
func (s *QuizService) Result(_ context.Context, sessionID string) (domain.Result, error) {
	session, err := s.get(sessionID)
	if err != nil {
		return domain.Result{}, err
	}
	return session.Result(), nil
}

// State exposes the raw session for debugging.
func (s *QuizService) State(_ context.Context, sessionID string) (State, error) {
	session, err := s.get(sessionID)
	if err != nil {
		return State{}, err
	}
	return session.State(), nil
}

// Subscribe returns a channel of session snapshots.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(_ context.Context, sessionID string) (<-chan domain.SessionView, func(), error) {
	session, err := s.get(sessionID)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := session.subscribe()
	return ch, cancel, nil
}

// Discard stops the countdown and forgets the session without scoring it.
func (s *QuizService) Discard(_ context.Context, sessionID string) error {
	session, err := s.get(sessionID)
	if err != nil {
		return err
	}
	s.discard(session)
	return nil
}

// Leaderboard returns the ranked top n entries; n <= 0 uses the display default.
func (s *QuizService) Leaderboard(ctx context.Context, n int) ([]domain.LeaderboardEntry, error) {
	if n <= 0 {
		n = s.opts.Display
	}
	return s.leaderboard.Top(ctx, n)
}

// Theme returns the stored theme for a user, dark when unset.
func (s *QuizService) Theme(ctx context.Context, user string) (domain.Theme, error) {
	theme, ok, err := s.prefs.Theme(ctx, user)
	if err != nil {
		return "", err
	}
	if !ok {
		return domain.DefaultTheme, nil
	}
	return theme, nil
}

func (s *QuizService) SetTheme(ctx context.Context, user string, theme domain.Theme) error {
	if _, err := domain.ParseTheme(string(theme)); err != nil {
		return err
	}
	return s.prefs.SetTheme(ctx, user, theme)
}

// ToggleTheme flips and persists the user's theme.
func (s *QuizService) ToggleTheme(ctx context.Context, user string) (domain.Theme, error) {
	current, err := s.Theme(ctx, user)
	if err != nil {
		return "", err
	}
	next := current.Toggle()
	if err := s.prefs.SetTheme(ctx, user, next); err != nil {
		return "", err
	}
	return next, nil
}

func (s *QuizService) get(sessionID string) (*Session, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (s *QuizService) newSession(name string, questions []domain.Question) *Session {
	s.rndMu.Lock()
	defer s.rndMu.Unlock()
	return NewSession(uuid.NewString(), name, questions, SessionConfig{
		Duration:    s.opts.Duration,
		MaxWarnings: s.opts.MaxWarnings,
		Rand:        s.opts.Rand,
		Now:         s.opts.Now,
	})
}

func (s *QuizService) discard(session *Session) {
	session.end(domain.EndDiscarded)
	s.sessions.Delete(session.ID())
	s.log.Info().Str("session", session.ID()).Msg("session discarded")
}

// finish is the single end path for manual, timeout and violation endings.
// Every call tries to record the score until one write succeeds, so a failed
// write on the first end is retried by the next End.
func (s *QuizService) finish(ctx context.Context, session *Session, reason domain.EndReason) (domain.Outcome, error) {
	first := session.end(reason)
	result := session.Result()
	_, endReason := session.Ended()

	if first {
		s.scheduleEviction(session)
		s.log.Info().
			Str("session", session.ID()).
			Str("user", session.UserName()).
			Str("reason", string(reason)).
			Int("score", result.Score).
			Msg("session ended")
	}

	recorded, err := s.record(ctx, session, result)
	if err != nil {
		return domain.Outcome{}, err
	}

	top, err := s.leaderboard.Top(ctx, s.opts.Display)
	if err != nil {
		return domain.Outcome{}, err
	}
	return domain.Outcome{
		SessionID:   session.ID(),
		UserName:    session.UserName(),
		Reason:      endReason,
		Result:      result,
		Recorded:    recorded,
		Leaderboard: top,
	}, nil
}

// record writes the leaderboard entry at most once per session, retrying a failed write once.
// Concurrent callers wait here, so every outcome sees the entry.
func (s *QuizService) record(ctx context.Context, session *Session, result domain.Result) (bool, error) {
	session.recordMu.Lock()
	defer session.recordMu.Unlock()
	if session.recorded {
		return true, nil
	}

	entry := domain.LeaderboardEntry{
		Name:      session.UserName(),
		Score:     result.Score,
		Timestamp: session.endedAtTime(),
	}
	err := s.leaderboard.Add(ctx, entry)
	if err != nil {
		s.log.Warn().Err(err).Str("session", session.ID()).Msg("leaderboard update failed, retrying")
		err = s.leaderboard.Add(ctx, entry)
	}
	if err != nil {
		s.log.Error().Err(err).Str("session", session.ID()).Msg("leaderboard update failed")
		return false, err
	}
	session.recorded = true
	return true, nil
}

// scheduleEviction drops an ended session from the store once the retention window passes.
func (s *QuizService) scheduleEviction(session *Session) {
	time.AfterFunc(s.opts.Retention, func() {
		current, ok := s.sessions.Get(session.ID())
		if !ok || current != session {
			return
		}
		s.sessions.Delete(session.ID())
		s.log.Debug().Str("session", session.ID()).Msg("ended session evicted")
	})
}

// runCountdown ticks the session once per interval until it ends.
func (s *QuizService) runCountdown(session *Session) {
	ticker := time.NewTicker(s.opts.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-session.Done():
			return
		case <-ticker.C:
			if !session.tick() {
				continue
			}
			s.log.Info().Str("session", session.ID()).Msg("time is up, auto submitting")
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if _, err := s.finish(ctx, session, domain.EndTimeout); err != nil {
				s.log.Error().Err(err).Str("session", session.ID()).Msg("auto submit failed")
			}
			cancel()
			return
		}
	}
}
