package app_test

import (
	"context"
	"errors"
	"testing"

	"ai-quiz-service/internal/app"
	"ai-quiz-service/internal/domain"
)

type limitCapturingStore struct {
	fakeStore
	lastLimit int
}

func (s *limitCapturingStore) ListResultsByUser(_ context.Context, _ int64, limit int) ([]domain.StoredResult, error) {
	s.lastLimit = limit
	return nil, nil
}

func (s *limitCapturingStore) GetLeaderboard(_ context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	s.lastLimit = limit
	return nil, nil
}

func TestReadsRequireAuthentication(t *testing.T) {
	service := app.NewResultService(&fakeStore{})

	if _, err := service.GetResults(context.Background(), domain.Identity{}, 10); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated error, got %v", err)
	}
	if _, err := service.GetStats(context.Background(), domain.Identity{}); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated error, got %v", err)
	}
	if _, err := service.GetLeaderboard(context.Background(), 10); err != nil {
		t.Fatalf("leaderboard is public, got %v", err)
	}
}

func TestLimitClamping(t *testing.T) {
	store := &limitCapturingStore{}
	service := app.NewResultService(store)
	user := domain.Identity{UserID: 1}

	cases := []struct{ in, want int }{
		{0, 10},  // default
		{-3, 10}, // default
		{5, 5},
		{100, 100},
		{250, 100}, // cap
	}
	for _, c := range cases {
		if _, err := service.GetResults(context.Background(), user, c.in); err != nil {
			t.Fatalf("get results: %v", err)
		}
		if store.lastLimit != c.want {
			t.Fatalf("limit %d clamped to %d, want %d", c.in, store.lastLimit, c.want)
		}
		if _, err := service.GetLeaderboard(context.Background(), c.in); err != nil {
			t.Fatalf("get leaderboard: %v", err)
		}
		if store.lastLimit != c.want {
			t.Fatalf("leaderboard limit %d clamped to %d, want %d", c.in, store.lastLimit, c.want)
		}
	}
}
