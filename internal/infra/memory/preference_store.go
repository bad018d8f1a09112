package memory

import (
	"context"
	"sync"

	"timed-quiz-service/internal/domain"
)

// PreferenceStore holds theme preferences per user.
type PreferenceStore struct {
	mu     sync.RWMutex
	themes map[string]domain.Theme
}

func NewPreferenceStore() *PreferenceStore {
	return &PreferenceStore{themes: make(map[string]domain.Theme)}
}

func (s *PreferenceStore) Theme(_ context.Context, user string) (domain.Theme, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	theme, ok := s.themes[user]
	return theme, ok, nil
}

func (s *PreferenceStore) SetTheme(_ context.Context, user string, theme domain.Theme) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.themes[user] = theme
	return nil
}
