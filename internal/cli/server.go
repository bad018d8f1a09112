package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"timed-quiz-service/internal/app"
	"timed-quiz-service/internal/config"
	"timed-quiz-service/internal/infra/file"
	"timed-quiz-service/internal/infra/memory"
	"timed-quiz-service/internal/infra/postgres"
	redisstore "timed-quiz-service/internal/infra/redis"
	"timed-quiz-service/internal/logger"
	transport "timed-quiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.Setup(cfg.Log.Level, cfg.Log.Format)

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	service, cleanup, err := buildService(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	router := transport.NewRouter(service, transport.RouterOptions{
		Debug:          cfg.Server.Debug,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         log,
	})

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// no WriteTimeout: it would cut long-lived websocket streams
	}

	go func() {
		log.Info().Str("addr", server.Addr).Bool("debug", cfg.Server.Debug).Msg("starting quiz service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info().Msg("shutting down server")
	case <-ctx.Done():
		log.Info().Msg("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// buildService picks the stores from config:
//   - questions: Postgres when postgres.url is set, else quiz.questions_path, else the built-in sample
//   - cache: Redis when redis.addr is set, else in memory
//   - leaderboard: Postgres, then Redis, then memory
//   - sessions and preferences: Redis when configured, else memory
func buildService(ctx context.Context, cfg config.Config, log zerolog.Logger) (*app.QuizService, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		closers = append(closers, func() { _ = redisClient.Close() })
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 30*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		var err error
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, pool.Close)
	}

	var loader memory.QuestionLoader
	switch {
	case pool != nil:
		loader = postgres.NewQuestionLoader(pool)
	case cfg.Quiz.QuestionsPath != "":
		loader = file.NewQuestionLoader(cfg.Quiz.QuestionsPath)
	default:
		loader = memory.NewStaticQuestionLoader(memory.SampleQuestions())
	}

	cacheTTL := config.TTLDuration(cfg.Quiz.CacheTTL, 0)
	var questions app.QuestionRepository
	var sessions app.SessionRepository
	var prefs app.PreferenceStore
	if redisClient != nil {
		questions = redisstore.NewQuestionRepository(redisClient, loader, cacheTTL)
		sessions = redisstore.NewSessionStore(redisClient, redisTTL)
		prefs = redisstore.NewPreferenceStore(redisClient)
	} else {
		questions = memory.NewQuestionRepository(loader, cacheTTL)
		sessions = memory.NewSessionStore()
		prefs = memory.NewPreferenceStore()
	}

	var board app.LeaderboardStore
	switch {
	case cfg.Postgres.URL != "":
		db := openBunDB(cfg.Postgres.URL)
		closers = append(closers, func() { _ = db.Close() })
		board = postgres.NewLeaderboardStore(db, cfg.Leaderboard.Size)
	case redisClient != nil:
		board = redisstore.NewLeaderboardStore(redisClient, cfg.Leaderboard.Size)
	default:
		board = memory.NewLeaderboardStore(cfg.Leaderboard.Size)
	}

	service := app.NewQuizService(sessions, questions, board, prefs, app.Options{
		Duration:     config.TTLDuration(cfg.Quiz.Duration, app.DefaultDuration),
		Tick:         config.TTLDuration(cfg.Quiz.Tick, app.DefaultTick),
		MinQuestions: cfg.Quiz.MinQuestions,
		MaxWarnings:  cfg.Quiz.MaxWarnings,
		Display:      cfg.Leaderboard.Display,
		Retention:    config.TTLDuration(cfg.Quiz.SessionRetention, app.DefaultRetention),
		Logger:       log,
	})

	log.Info().
		Bool("redis", redisClient != nil).
		Bool("postgres", pool != nil).
		Str("questions_path", cfg.Quiz.QuestionsPath).
		Msg("stores configured")
	return service, cleanup, nil
}
