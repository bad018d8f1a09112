package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"timed-quiz-service/internal/domain"
)

// QuestionLoader loads the question bank from Postgres; options are stored as JSONB.
type QuestionLoader struct {
	pool *pgxpool.Pool
}

func NewQuestionLoader(pool *pgxpool.Pool) *QuestionLoader {
	return &QuestionLoader{pool: pool}
}

func (l *QuestionLoader) LoadQuestions(ctx context.Context) ([]domain.Question, error) {
	rows, err := l.pool.Query(ctx, `SELECT id, prompt, options, answer_index FROM questions ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("%w: query questions: %w", domain.ErrQuestionLoad, err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var (
			q   domain.Question
			raw []byte
		)
		if err := rows.Scan(&q.ID, &q.Prompt, &raw, &q.AnswerIndex); err != nil {
			return nil, fmt.Errorf("%w: scan question: %w", domain.ErrQuestionLoad, err)
		}
		if err := json.Unmarshal(raw, &q.Options); err != nil {
			return nil, fmt.Errorf("%w: unmarshal options for %s: %w", domain.ErrQuestionLoad, q.ID, err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read questions: %w", domain.ErrQuestionLoad, err)
	}
	return questions, nil
}

// QuestionSeeder replaces the stored bank with a validated question set.
type QuestionSeeder struct {
	pool *pgxpool.Pool
}

func NewQuestionSeeder(pool *pgxpool.Pool) *QuestionSeeder {
	return &QuestionSeeder{pool: pool}
}

// Seed upserts every question keyed by id, keeping file order in position,
// and removes rows whose id is no longer present.
func (s *QuestionSeeder) Seed(ctx context.Context, questions []domain.Question) error {
	return s.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		ids := make([]string, 0, len(questions))
		for pos, q := range questions {
			options, err := json.Marshal(q.Options)
			if err != nil {
				return fmt.Errorf("marshal options for %s: %w", q.ID, err)
			}
			_, err = tx.Exec(ctx, `
INSERT INTO questions (id, position, prompt, options, answer_index)
VALUES ($1, $2, $3, $4::jsonb, $5)
ON CONFLICT (id) DO UPDATE
SET position = EXCLUDED.position,
    prompt = EXCLUDED.prompt,
    options = EXCLUDED.options,
    answer_index = EXCLUDED.answer_index`,
				q.ID, pos, q.Prompt, string(options), q.AnswerIndex)
			if err != nil {
				return fmt.Errorf("upsert question %s: %w", q.ID, err)
			}
			ids = append(ids, q.ID)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM questions WHERE NOT (id = ANY($1))`, ids); err != nil {
			return fmt.Errorf("prune questions: %w", err)
		}
		return nil
	})
}
