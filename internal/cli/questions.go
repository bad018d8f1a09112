package cli

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"

	"timed-quiz-service/internal/config"
	"timed-quiz-service/internal/domain"
	"timed-quiz-service/internal/infra/file"
	"timed-quiz-service/internal/infra/postgres"
	"timed-quiz-service/internal/logger"
)

// NewQuestionsCmd groups question bank maintenance commands.
func NewQuestionsCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "questions",
		Short: "Inspect and seed the question bank",
	}
	cmd.AddCommand(newValidateQuestionsCmd(configPath))
	cmd.AddCommand(newSeedQuestionsCmd(configPath))
	return cmd
}

func newValidateQuestionsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [path]",
		Short: "Load and validate a question file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfigOrDefaults(*configPath)
			path := questionsPath(cfg, args)
			questions, err := loadValidated(cmd.Context(), path, cfg.Quiz.MinQuestions)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d questions ok\n", path, len(questions))
			return nil
		},
	}
}

func newSeedQuestionsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed [path]",
		Short: "Validate a question file and upsert it into Postgres",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return fmt.Errorf("postgres url not configured")
			}
			log := logger.Setup(cfg.Log.Level, cfg.Log.Format)
			ctx := cmd.Context()
			path := questionsPath(cfg, args)

			questions, err := loadValidated(ctx, path, cfg.Quiz.MinQuestions)
			if err != nil {
				return err
			}
			if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
				return err
			}

			pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := postgres.NewQuestionSeeder(pool).Seed(ctx, questions); err != nil {
				return err
			}
			log.Info().Str("path", path).Int("questions", len(questions)).Msg("questions seeded")
			return nil
		},
	}
}

// loadConfigOrDefaults lets validate run without a config file.
func loadConfigOrDefaults(path string) config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Defaults()
	}
	return cfg
}

func questionsPath(cfg config.Config, args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	return cfg.Quiz.QuestionsPath
}

func loadValidated(ctx context.Context, path string, min int) ([]domain.Question, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	questions, err := file.NewQuestionLoader(path).LoadQuestions(ctx)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateQuestions(questions, min); err != nil {
		return nil, err
	}
	return questions, nil
}
