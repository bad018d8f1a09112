package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"timed-quiz-service/internal/domain"
)

const maxTxRetries = 5

// LeaderboardStore keeps the latest attempts, newest first, as one JSON array under the "leaderboard" key.
// Writers use WATCH/MULTI so concurrent session ends never lose an entry.
type LeaderboardStore struct {
	client *redis.Client
	size   int
}

func NewLeaderboardStore(client *redis.Client, size int) *LeaderboardStore {
	if size <= 0 {
		size = domain.LeaderboardSize
	}
	return &LeaderboardStore{client: client, size: size}
}

func (s *LeaderboardStore) Add(ctx context.Context, entry domain.LeaderboardEntry) error {
	txf := func(tx *redis.Tx) error {
		entries, err := readEntries(ctx, tx)
		if err != nil {
			return err
		}
		data, err := json.Marshal(domain.RetainRecent(append(entries, entry), s.size))
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, leaderboardKey, data, 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, txf, leaderboardKey)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return fmt.Errorf("add leaderboard entry: %w", err)
	}
	return fmt.Errorf("add leaderboard entry: %w", redis.TxFailedErr)
}

func (s *LeaderboardStore) Top(ctx context.Context, n int) ([]domain.LeaderboardEntry, error) {
	entries, err := readEntries(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("read leaderboard: %w", err)
	}
	return domain.TopN(entries, n), nil
}

func readEntries(ctx context.Context, c redis.Cmdable) ([]domain.LeaderboardEntry, error) {
	data, err := c.Get(ctx, leaderboardKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var entries []domain.LeaderboardEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode leaderboard: %w", err)
	}
	return entries, nil
}
