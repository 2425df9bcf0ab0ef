package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"strconv"
	"time"

	"ai-quiz-service/internal/app"
	"ai-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const leaderboardKeyPrefix = "quiz:leaderboard:"

// LeaderboardCache decorates a result store with a Redis cache over the
// leaderboard query, one key per limit:
//
//	SET quiz:leaderboard:{limit} <json entries> EX ttl
//
// Writes drop the cached keys so a new best score surfaces on the next read.
type LeaderboardCache struct {
	app.ResultStore
	client *redis.Client
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewLeaderboardCache(client *redis.Client, store app.ResultStore, ttl time.Duration) *LeaderboardCache {
	return &LeaderboardCache{
		ResultStore: store,
		client:      client,
		ttl:         ttl,
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *LeaderboardCache) GetLeaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	key := leaderboardKeyPrefix + strconv.Itoa(limit)

	if entries, ok := c.readCached(ctx, key); ok {
		return entries, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if entries, ok := c.readCached(ctx, key); ok {
			return entries, nil
		}

		entries, err := c.ResultStore.GetLeaderboard(ctx, limit)
		if err != nil {
			return nil, err
		}

		if data, err := json.Marshal(entries); err == nil {
			// best-effort: a failed cache write only costs the next read a store hit
			_ = c.client.Set(ctx, key, data, c.ttlWithJitter()).Err()
		}
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.LeaderboardEntry), nil
}

// CreateResult writes through and invalidates cached rankings.
func (c *LeaderboardCache) CreateResult(ctx context.Context, identity domain.Identity, result domain.QuizResult) (domain.StoredResult, error) {
	stored, err := c.ResultStore.CreateResult(ctx, identity, result)
	if err != nil {
		return stored, err
	}
	if keys, err := c.client.Keys(ctx, leaderboardKeyPrefix+"*").Result(); err == nil && len(keys) > 0 {
		_ = c.client.Del(ctx, keys...).Err()
	}
	return stored, nil
}

func (c *LeaderboardCache) readCached(ctx context.Context, key string) ([]domain.LeaderboardEntry, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var entries []domain.LeaderboardEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, false
	}
	return entries, true
}

func (c *LeaderboardCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
