package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"ai-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ResultStore persists quiz results in Postgres. Answers are stored as a
// string-keyed JSONB map. Schema lives in the bun migrations package.
type ResultStore struct {
	pool *pgxpool.Pool
}

func NewResultStore(pool *pgxpool.Pool) *ResultStore {
	return &ResultStore{pool: pool}
}

// CreateResult validates and inserts the result in one transaction: the
// user row is upserted so the leaderboard join has a name, and a completed
// attempt row is recorded for analytics.
func (s *ResultStore) CreateResult(ctx context.Context, identity domain.Identity, result domain.QuizResult) (domain.StoredResult, error) {
	if err := result.Validate(); err != nil {
		return domain.StoredResult{}, err
	}

	answers, err := json.Marshal(result.Answers)
	if err != nil {
		return domain.StoredResult{}, fmt.Errorf("marshal answers: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.StoredResult{}, unavailable("begin", err)
	}
	defer tx.Rollback(ctx)

	if identity.Authenticated() {
		_, err = tx.Exec(ctx, `
			INSERT INTO users (id, name) VALUES ($1, $2)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, updated_at = now()`,
			identity.UserID, identity.Name)
		if err != nil {
			return domain.StoredResult{}, unavailable("upsert user", err)
		}
	}

	stored := domain.StoredResult{
		UserID:           identity.UserID,
		FamiliarityLevel: result.FamiliarityLevel,
		Score:            result.Score,
		TotalQuestions:   result.TotalQuestions,
		Percentage:       result.Percentage,
		Answers:          result.Answers,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO quiz_results (user_id, familiarity_level, score, total_questions, percentage, answers)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, completed_at, created_at`,
		identity.UserID, result.FamiliarityLevel, result.Score, result.TotalQuestions, result.Percentage, answers,
	).Scan(&stored.ID, &stored.CompletedAt, &stored.CreatedAt)
	if err != nil {
		return domain.StoredResult{}, unavailable("insert result", err)
	}

	// Analytics only; the core contract does not depend on quiz_attempts.
	_, err = tx.Exec(ctx, `
		INSERT INTO quiz_attempts (user_id, result_id, status, completed_at)
		VALUES ($1, $2, 'completed', now())`,
		identity.UserID, stored.ID)
	if err != nil {
		return domain.StoredResult{}, unavailable("insert attempt", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.StoredResult{}, unavailable("commit", err)
	}
	return stored, nil
}

func (s *ResultStore) ListResultsByUser(ctx context.Context, userID int64, limit int) ([]domain.StoredResult, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, familiarity_level, score, total_questions, percentage, answers, completed_at, created_at
		FROM quiz_results
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, unavailable("list results", err)
	}
	defer rows.Close()
	return scanResults(rows)
}

func (s *ResultStore) GetUserStats(ctx context.Context, userID int64) (domain.UserStats, error) {
	var stats domain.UserStats
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*)::int,
		       COALESCE(ROUND(AVG(percentage)), 0)::int,
		       COALESCE(MAX(percentage), 0)
		FROM quiz_results
		WHERE user_id = $1`,
		userID,
	).Scan(&stats.TotalAttempts, &stats.AverageScore, &stats.BestScore)
	if err != nil {
		return domain.UserStats{}, unavailable("user stats", err)
	}

	stats.RecentResults = []domain.StoredResult{}
	if stats.TotalAttempts > 0 {
		recent, err := s.ListResultsByUser(ctx, userID, 5)
		if err != nil {
			return domain.UserStats{}, err
		}
		stats.RecentResults = recent
	}
	return stats, nil
}

func (s *ResultStore) GetLeaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT r.user_id, COALESCE(u.name, ''), MAX(r.percentage) AS best_score
		FROM quiz_results r
		JOIN users u ON u.id = r.user_id
		GROUP BY r.user_id, u.name
		ORDER BY best_score DESC, u.name ASC
		LIMIT $1`,
		limit)
	if err != nil {
		return nil, unavailable("leaderboard", err)
	}
	defer rows.Close()

	entries := make([]domain.LeaderboardEntry, 0, limit)
	for rows.Next() {
		var entry domain.LeaderboardEntry
		if err := rows.Scan(&entry.UserID, &entry.UserName, &entry.BestScore); err != nil {
			return nil, unavailable("scan leaderboard", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("leaderboard rows", err)
	}
	return entries, nil
}

func scanResults(rows pgx.Rows) ([]domain.StoredResult, error) {
	results := make([]domain.StoredResult, 0, 8)
	for rows.Next() {
		var stored domain.StoredResult
		var answers []byte
		err := rows.Scan(
			&stored.ID, &stored.UserID, &stored.FamiliarityLevel, &stored.Score,
			&stored.TotalQuestions, &stored.Percentage, &answers,
			&stored.CompletedAt, &stored.CreatedAt,
		)
		if err != nil {
			return nil, unavailable("scan result", err)
		}
		if err := json.Unmarshal(answers, &stored.Answers); err != nil {
			return nil, fmt.Errorf("unmarshal answers: %w", err)
		}
		results = append(results, stored)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("result rows", err)
	}
	return results, nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrStoreUnavailable, op, err)
}
