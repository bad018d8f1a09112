package memory

import (
	"context"
	"sync"

	"timed-quiz-service/internal/domain"
)

// LeaderboardStore keeps the latest entries in process memory and ranks them on read.
type LeaderboardStore struct {
	size int

	mu      sync.Mutex
	entries []domain.LeaderboardEntry
}

func NewLeaderboardStore(size int) *LeaderboardStore {
	if size <= 0 {
		size = domain.LeaderboardSize
	}
	return &LeaderboardStore{size: size}
}

func (s *LeaderboardStore) Add(_ context.Context, entry domain.LeaderboardEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = domain.RetainRecent(append(s.entries, entry), s.size)
	return nil
}

func (s *LeaderboardStore) Top(_ context.Context, n int) ([]domain.LeaderboardEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.TopN(s.entries, n), nil
}
