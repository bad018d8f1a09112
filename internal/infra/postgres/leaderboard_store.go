package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"timed-quiz-service/internal/domain"
)

type leaderboardRow struct {
	bun.BaseModel `bun:"table:leaderboard_entries,alias:e"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Name      string    `bun:"name,notnull"`
	Score     int       `bun:"score,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

// LeaderboardStore persists ranked scores in leaderboard_entries.
type LeaderboardStore struct {
	db   *bun.DB
	size int
}

func NewLeaderboardStore(db *bun.DB, size int) *LeaderboardStore {
	if size <= 0 {
		size = domain.LeaderboardSize
	}
	return &LeaderboardStore{db: db, size: size}
}

// Add inserts the entry and keeps only the latest size attempts, in one transaction.
func (s *LeaderboardStore) Add(ctx context.Context, entry domain.LeaderboardEntry) error {
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO leaderboard_entries (name, score, created_at) VALUES (?, ?, ?)`,
			entry.Name, entry.Score, entry.Timestamp.UTC()); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`DELETE FROM leaderboard_entries WHERE id NOT IN (SELECT id FROM leaderboard_entries ORDER BY created_at DESC, id DESC LIMIT ?)`,
			s.size)
		return err
	})
	if err != nil {
		return fmt.Errorf("add leaderboard entry: %w", err)
	}
	return nil
}

// Top returns the ranked top n entries; n <= 0 returns every retained entry.
func (s *LeaderboardStore) Top(ctx context.Context, n int) ([]domain.LeaderboardEntry, error) {
	if n <= 0 || n > s.size {
		n = s.size
	}
	var rows []leaderboardRow
	err := s.db.NewSelect().
		Model(&rows).
		Column("name", "score", "created_at").
		OrderExpr("score DESC, created_at ASC").
		Limit(n).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("read leaderboard: %w", err)
	}

	entries := make([]domain.LeaderboardEntry, len(rows))
	for i, row := range rows {
		entries[i] = domain.LeaderboardEntry{Name: row.Name, Score: row.Score, Timestamp: row.CreatedAt}
	}
	return entries, nil
}
