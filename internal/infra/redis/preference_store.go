package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"timed-quiz-service/internal/domain"
)

// PreferenceStore keeps one theme per user under theme:<user>.
type PreferenceStore struct {
	client *redis.Client
}

func NewPreferenceStore(client *redis.Client) *PreferenceStore {
	return &PreferenceStore{client: client}
}

func (s *PreferenceStore) Theme(ctx context.Context, user string) (domain.Theme, bool, error) {
	raw, err := s.client.Get(ctx, themeKey(user)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get theme: %w", err)
	}
	theme, err := domain.ParseTheme(raw)
	if err != nil {
		return "", false, nil
	}
	return theme, true, nil
}

func (s *PreferenceStore) SetTheme(ctx context.Context, user string, theme domain.Theme) error {
	if err := s.client.Set(ctx, themeKey(user), string(theme), 0).Err(); err != nil {
		return fmt.Errorf("set theme: %w", err)
	}
	return nil
}
