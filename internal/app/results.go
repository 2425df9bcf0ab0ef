package app

import (
	"context"
	"fmt"

	"ai-quiz-service/internal/domain"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

// ResultService exposes the read side of the result store with the RPC
// contract's auth gating and limit clamping.
type ResultService struct {
	store ResultStore
}

func NewResultService(store ResultStore) *ResultService {
	return &ResultService{store: store}
}

// GetResults lists the caller's own results, most recent first.
func (s *ResultService) GetResults(ctx context.Context, identity domain.Identity, limit int) ([]domain.StoredResult, error) {
	if !identity.Authenticated() {
		return nil, fmt.Errorf("%w: get results", domain.ErrUnauthenticated)
	}
	return s.store.ListResultsByUser(ctx, identity.UserID, clampLimit(limit))
}

// GetStats aggregates the caller's attempt history. A user without results
// gets zeroed stats, not an error.
func (s *ResultService) GetStats(ctx context.Context, identity domain.Identity) (domain.UserStats, error) {
	if !identity.Authenticated() {
		return domain.UserStats{}, fmt.Errorf("%w: get stats", domain.ErrUnauthenticated)
	}
	return s.store.GetUserStats(ctx, identity.UserID)
}

// GetLeaderboard returns the public best-score ranking.
func (s *ResultService) GetLeaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	return s.store.GetLeaderboard(ctx, clampLimit(limit))
}

func clampLimit(limit int) int {
	if limit < 1 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}
