package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"timed-quiz-service/internal/app"
	"timed-quiz-service/internal/domain"
	"timed-quiz-service/internal/infra/memory"
	"timed-quiz-service/internal/infra/postgres"
	pgmigrations "timed-quiz-service/internal/infra/postgres/migrations"
	infraredis "timed-quiz-service/internal/infra/redis"
)

func TestQuizEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	db := openDB(pgURL)
	defer db.Close()
	migrateDB(t, ctx, db)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	bank := memory.SampleQuestions()
	if err := postgres.NewQuestionSeeder(pool).Seed(ctx, bank); err != nil {
		t.Fatalf("seed: %v", err)
	}
	// seeding twice must upsert rather than duplicate
	if err := postgres.NewQuestionSeeder(pool).Seed(ctx, bank); err != nil {
		t.Fatalf("reseed: %v", err)
	}

	loaded, err := postgres.NewQuestionLoader(pool).LoadQuestions(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != len(bank) || loaded[0].ID != bank[0].ID || loaded[0].Options[1] != bank[0].Options[1] {
		t.Fatalf("loaded bank does not match seed: %+v", loaded[0])
	}

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	service := app.NewQuizService(
		infraredis.NewSessionStore(redisClient, 5*time.Minute),
		infraredis.NewQuestionRepository(redisClient, postgres.NewQuestionLoader(pool), 5*time.Minute),
		postgres.NewLeaderboardStore(db, domain.LeaderboardSize),
		infraredis.NewPreferenceStore(redisClient),
		app.Options{Logger: zerolog.Nop()},
	)

	key := make(map[string]int, len(bank))
	for _, q := range bank {
		key[q.ID] = q.AnswerIndex
	}

	alice, err := service.Start(ctx, "Alice")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	for i := 0; i < 2; i++ {
		view := alice.View()
		if _, err := service.Select(ctx, alice.ID(), view.Question.ID, key[view.Question.ID]); err != nil {
			t.Fatalf("select: %v", err)
		}
		if _, err := service.Next(ctx, alice.ID()); err != nil {
			t.Fatalf("next: %v", err)
		}
	}
	outcome, err := service.End(ctx, alice.ID())
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if outcome.Result.Score != 8 {
		t.Fatalf("expected score 8, got %+v", outcome.Result)
	}

	bob, err := service.Start(ctx, "Bob")
	if err != nil {
		t.Fatalf("start bob: %v", err)
	}
	outcome, err = service.End(ctx, bob.ID())
	if err != nil {
		t.Fatalf("end bob: %v", err)
	}
	if len(outcome.Leaderboard) != 2 || outcome.Leaderboard[0].Name != "Alice" {
		t.Fatalf("expected Alice leading, got %+v", outcome.Leaderboard)
	}

	exists, err := redisClient.Exists(ctx, "quiz:questions").Result()
	if err != nil || exists != 1 {
		t.Fatalf("expected cached question bank, exists=%d err=%v", exists, err)
	}

	if _, err := service.ToggleTheme(ctx, "Alice"); err != nil {
		t.Fatalf("toggle theme: %v", err)
	}
	if theme, _ := service.Theme(ctx, "Alice"); theme != domain.ThemeLight {
		t.Fatalf("expected persisted light theme, got %q", theme)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func openDB(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

func migrateDB(t *testing.T, ctx context.Context, db *bun.DB) {
	t.Helper()
	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
