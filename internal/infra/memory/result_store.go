package memory

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"ai-quiz-service/internal/domain"
)

// ResultStore is an in-memory implementation of app.ResultStore, used when
// no Postgres is configured and throughout unit tests.
type ResultStore struct {
	mu      sync.RWMutex
	nextID  int64
	results []domain.StoredResult
	users   map[int64]string
	clock   func() time.Time
}

func NewResultStore() *ResultStore {
	return &ResultStore{
		nextID: 1,
		users:  make(map[int64]string),
		clock:  time.Now,
	}
}

// NewResultStoreWithClock is test-only for deterministic timestamps.
func NewResultStoreWithClock(now func() time.Time) *ResultStore {
	store := NewResultStore()
	store.clock = now
	return store
}

func (s *ResultStore) CreateResult(_ context.Context, identity domain.Identity, result domain.QuizResult) (domain.StoredResult, error) {
	if err := result.Validate(); err != nil {
		return domain.StoredResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if identity.Authenticated() {
		s.users[identity.UserID] = identity.Name
	}

	now := s.clock()
	stored := domain.StoredResult{
		ID:               s.nextID,
		UserID:           identity.UserID,
		FamiliarityLevel: result.FamiliarityLevel,
		Score:            result.Score,
		TotalQuestions:   result.TotalQuestions,
		Percentage:       result.Percentage,
		Answers:          result.Answers,
		CompletedAt:      now,
		CreatedAt:        now,
	}
	s.nextID++
	s.results = append(s.results, stored)
	return stored, nil
}

func (s *ResultStore) ListResultsByUser(_ context.Context, userID int64, limit int) ([]domain.StoredResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.StoredResult, 0, limit)
	// Results are appended in creation order; walk backwards for most recent first.
	for i := len(s.results) - 1; i >= 0 && len(out) < limit; i-- {
		if s.results[i].UserID == userID {
			out = append(out, s.results[i])
		}
	}
	return out, nil
}

func (s *ResultStore) GetUserStats(ctx context.Context, userID int64) (domain.UserStats, error) {
	s.mu.RLock()
	total, sum, best := 0, 0, 0
	for _, r := range s.results {
		if r.UserID != userID {
			continue
		}
		total++
		sum += r.Percentage
		if r.Percentage > best {
			best = r.Percentage
		}
	}
	s.mu.RUnlock()

	if total == 0 {
		return domain.UserStats{RecentResults: []domain.StoredResult{}}, nil
	}

	recent, err := s.ListResultsByUser(ctx, userID, 5)
	if err != nil {
		return domain.UserStats{}, err
	}
	return domain.UserStats{
		TotalAttempts: total,
		AverageScore:  int(math.Round(float64(sum) / float64(total))),
		BestScore:     best,
		RecentResults: recent,
	}, nil
}

func (s *ResultStore) GetLeaderboard(_ context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	s.mu.RLock()
	best := make(map[int64]int)
	for _, r := range s.results {
		if r.UserID == 0 {
			continue // anonymous results never rank
		}
		if r.Percentage > best[r.UserID] || bestAbsent(best, r.UserID) {
			best[r.UserID] = r.Percentage
		}
	}
	entries := make([]domain.LeaderboardEntry, 0, len(best))
	for userID, score := range best {
		entries = append(entries, domain.LeaderboardEntry{
			UserID:    userID,
			UserName:  s.users[userID],
			BestScore: score,
		})
	}
	s.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].BestScore != entries[j].BestScore {
			return entries[i].BestScore > entries[j].BestScore
		}
		return entries[i].UserName < entries[j].UserName
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func bestAbsent(best map[int64]int, userID int64) bool {
	_, ok := best[userID]
	return !ok
}
