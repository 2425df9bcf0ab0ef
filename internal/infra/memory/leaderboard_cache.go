package memory

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"ai-quiz-service/internal/app"
	"ai-quiz-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// LeaderboardCache decorates a result store with a TTL cache over the
// leaderboard query, which is the only read every visitor can trigger.
type LeaderboardCache struct {
	app.ResultStore
	ttl   time.Duration
	clock func() time.Time
	sf    singleflight.Group
	rnd   *rand.Rand

	mu    sync.RWMutex
	cache map[int]cachedLeaderboard
}

type cachedLeaderboard struct {
	entries   []domain.LeaderboardEntry
	expiresAt time.Time
}

func NewLeaderboardCache(store app.ResultStore, ttl time.Duration) *LeaderboardCache {
	return &LeaderboardCache{
		ResultStore: store,
		ttl:         ttl,
		clock:       time.Now,
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:       make(map[int]cachedLeaderboard),
	}
}

func (c *LeaderboardCache) GetLeaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[limit]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.entries, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(strconv.Itoa(limit), func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.cache[limit]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.entries, nil
		}
		c.mu.RUnlock()

		entries, err := c.ResultStore.GetLeaderboard(ctx, limit)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.cache[limit] = cachedLeaderboard{
			entries:   entries,
			expiresAt: now.Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.LeaderboardEntry), nil
}

// CreateResult writes through and drops cached rankings so a fresh best
// score shows up on the next read.
func (c *LeaderboardCache) CreateResult(ctx context.Context, identity domain.Identity, result domain.QuizResult) (domain.StoredResult, error) {
	stored, err := c.ResultStore.CreateResult(ctx, identity, result)
	if err != nil {
		return stored, err
	}
	c.mu.Lock()
	c.cache = make(map[int]cachedLeaderboard)
	c.mu.Unlock()
	return stored, nil
}

func (c *LeaderboardCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
