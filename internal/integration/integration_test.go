package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"ai-quiz-service/internal/domain"
	pgstore "ai-quiz-service/internal/infra/postgres"
	pgmigrations "ai-quiz-service/internal/infra/postgres/migrations"
	infraredis "ai-quiz-service/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

func TestResultLifecycleEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	applyMigrations(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	store := infraredis.NewLeaderboardCache(redisClient, pgstore.NewResultStore(pool), 5*time.Minute)

	alice := domain.Identity{UserID: 1, Name: "Alice"}
	bob := domain.Identity{UserID: 2, Name: "Bob"}

	first, err := store.CreateResult(ctx, alice, quizResult(3))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.ID == 0 || first.CreatedAt.IsZero() {
		t.Fatalf("expected generated id and timestamp, got %+v", first)
	}
	if _, err := store.CreateResult(ctx, alice, quizResult(5)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.CreateResult(ctx, bob, quizResult(4)); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := store.CreateResult(ctx, alice, domain.QuizResult{FamiliarityLevel: 9}); err == nil {
		t.Fatalf("expected validation failure for malformed result")
	}

	results, err := store.ListResultsByUser(ctx, alice.UserID, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(results) != 2 || results[0].Percentage != 100 {
		t.Fatalf("expected Alice's two results most recent first, got %+v", results)
	}
	if results[0].Answers["5"] != "data" {
		t.Fatalf("expected string-keyed answers round-tripped, got %+v", results[0].Answers)
	}

	stats, err := store.GetUserStats(ctx, alice.UserID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalAttempts != 2 || stats.BestScore != 100 || stats.AverageScore != 80 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	stats, err = store.GetUserStats(ctx, 999)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalAttempts != 0 || len(stats.RecentResults) != 0 {
		t.Fatalf("expected zeroed stats for unknown user, got %+v", stats)
	}

	entries, err := store.GetLeaderboard(ctx, 10)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(entries) != 2 || entries[0].UserName != "Alice" || entries[0].BestScore != 100 {
		t.Fatalf("expected Alice leading, got %+v", entries)
	}
	if entries[1].UserName != "Bob" || entries[1].BestScore != 80 {
		t.Fatalf("expected Bob second, got %+v", entries)
	}

	// Cached read from redis.
	if _, err := store.GetLeaderboard(ctx, 10); err != nil {
		t.Fatalf("cached leaderboard: %v", err)
	}
	if n, err := redisClient.Exists(ctx, "quiz:leaderboard:10").Result(); err != nil || n != 1 {
		t.Fatalf("expected leaderboard key in redis, n=%d err=%v", n, err)
	}
}

func quizResult(score int) domain.QuizResult {
	return domain.QuizResult{
		FamiliarityLevel: 3,
		Score:            score,
		TotalQuestions:   5,
		Percentage:       domain.Percent(score, 5),
		Answers:          map[string]any{"1": false, "5": "data"},
	}
}

func applyMigrations(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
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

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
