package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// QuestionType discriminates how an answer is captured and compared.
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple-choice"
	QuestionTrueFalse      QuestionType = "true-false"
	QuestionText           QuestionType = "text"
)

// Question is one item of the fixed quiz bank. Exactly one of the
// correct-answer fields is meaningful, selected by Type.
type Question struct {
	ID          int          `json:"id"`
	Type        QuestionType `json:"type"`
	Prompt      string       `json:"prompt"`
	Options     []string     `json:"options,omitempty"` // multiple-choice only
	CorrectText string       `json:"-"`                 // multiple-choice and text
	CorrectBool bool         `json:"-"`                 // true-false
	Explanation string       `json:"explanation"`
}

// Matches applies the per-variant correctness rule to a raw submitted answer.
// Text answers compare case-insensitively after trimming whitespace; the
// other variants require exact typed equality.
func (q Question) Matches(answer any) bool {
	switch q.Type {
	case QuestionTrueFalse:
		b, ok := answer.(bool)
		return ok && b == q.CorrectBool
	case QuestionMultipleChoice:
		s, ok := answer.(string)
		return ok && s == q.CorrectText
	case QuestionText:
		s, ok := answer.(string)
		return ok && strings.EqualFold(strings.TrimSpace(s), strings.TrimSpace(q.CorrectText))
	}
	return false
}

// CorrectAnswer returns the canonical answer for display after reveal.
func (q Question) CorrectAnswer() any {
	if q.Type == QuestionTrueFalse {
		return q.CorrectBool
	}
	return q.CorrectText
}

// FamiliarityLevel is one entry of the 1-5 pre-quiz self-assessment scale.
type FamiliarityLevel struct {
	Value       int    `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// Identity is the caller identity supplied by the auth collaborator.
// A zero UserID means anonymous.
type Identity struct {
	UserID int64  `json:"userId"`
	Name   string `json:"name"`
}

// Authenticated reports whether the identity refers to a signed-in user.
func (i Identity) Authenticated() bool {
	return i.UserID != 0
}

// QuizResult is the frozen snapshot of a completed session. Answers are
// keyed by stringified question id, matching the persisted shape.
type QuizResult struct {
	FamiliarityLevel int            `json:"familiarityLevel"`
	Score            int            `json:"score"`
	TotalQuestions   int            `json:"totalQuestions"`
	Percentage       int            `json:"percentage"`
	Answers          map[string]any `json:"answers"`
}

// Validate checks the Quiz Result invariants before the store is reached.
func (r QuizResult) Validate() error {
	if r.FamiliarityLevel < 1 || r.FamiliarityLevel > 5 {
		return fmt.Errorf("%w: familiarity level %d out of [1,5]", ErrValidation, r.FamiliarityLevel)
	}
	if r.TotalQuestions < 1 {
		return fmt.Errorf("%w: total questions %d below 1", ErrValidation, r.TotalQuestions)
	}
	if r.Score < 0 || r.Score > r.TotalQuestions {
		return fmt.Errorf("%w: score %d out of [0,%d]", ErrValidation, r.Score, r.TotalQuestions)
	}
	if r.Percentage != Percent(r.Score, r.TotalQuestions) {
		return fmt.Errorf("%w: percentage %d does not match score %d/%d", ErrValidation, r.Percentage, r.Score, r.TotalQuestions)
	}
	return nil
}

// Percent computes round(100*score/total). An empty bank yields 0 rather
// than a division by zero.
func Percent(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(total) * 100))
}

// StoredResult is a persisted quiz result as returned by the store.
type StoredResult struct {
	ID               int64          `json:"id"`
	UserID           int64          `json:"userId"`
	FamiliarityLevel int            `json:"familiarityLevel"`
	Score            int            `json:"score"`
	TotalQuestions   int            `json:"totalQuestions"`
	Percentage       int            `json:"percentage"`
	Answers          map[string]any `json:"answers"`
	CompletedAt      time.Time      `json:"completedAt"`
	CreatedAt        time.Time      `json:"createdAt"`
}

// UserStats aggregates one user's attempt history.
type UserStats struct {
	TotalAttempts int            `json:"totalAttempts"`
	AverageScore  int            `json:"averageScore"`
	BestScore     int            `json:"bestScore"`
	RecentResults []StoredResult `json:"recentResults"`
}

// LeaderboardEntry is one row of the public leaderboard, best percentage
// per user, descending.
type LeaderboardEntry struct {
	UserID    int64  `json:"userId"`
	UserName  string `json:"userName"`
	BestScore int    `json:"bestScore"`
}

// NoticeKind classifies submission outcome notifications.
type NoticeKind string

const (
	NoticeSaved      NoticeKind = "saved"
	NoticeSignIn     NoticeKind = "signIn"
	NoticeSaveFailed NoticeKind = "saveFailed"
)

// Notice is a user-facing submission outcome.
type Notice struct {
	Kind     NoticeKind `json:"kind"`
	Message  string     `json:"message"`
	ResultID int64      `json:"resultId,omitempty"`
}
