package app

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"ai-quiz-service/internal/domain"
)

// ResultStore is the persistence boundary for completed quiz results.
type ResultStore interface {
	CreateResult(ctx context.Context, identity domain.Identity, result domain.QuizResult) (domain.StoredResult, error)
	ListResultsByUser(ctx context.Context, userID int64, limit int) ([]domain.StoredResult, error)
	GetUserStats(ctx context.Context, userID int64) (domain.UserStats, error)
	GetLeaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
}

// Notifier receives submission outcome notices for the UI layer.
type Notifier interface {
	Notify(notice domain.Notice)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(notice domain.Notice)

func (f NotifierFunc) Notify(notice domain.Notice) {
	f(notice)
}

// Submitter saves a completed session's result at most once. The latch is
// session-scoped: repeated completion triggers are dropped, and only a
// session restart arms it again.
type Submitter struct {
	store   ResultStore
	timeout time.Duration

	mu        sync.Mutex
	attempted bool
}

// NewSubmitter builds a submitter bound to one session's lifetime.
func NewSubmitter(store ResultStore, timeout time.Duration) *Submitter {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Submitter{store: store, timeout: timeout}
}

// Submit performs the single save attempt for a completed session. Sessions
// with no recorded answers are skipped entirely. Unauthenticated sessions
// never reach the store; they get a sign-in notice instead. Store errors
// become a failure notice; the in-memory result is never lost and there is
// no automatic retry.
func (s *Submitter) Submit(ctx context.Context, identity domain.Identity, result domain.QuizResult, notifier Notifier) {
	if len(result.Answers) == 0 {
		return
	}

	s.mu.Lock()
	if s.attempted {
		s.mu.Unlock()
		return
	}
	s.attempted = true
	s.mu.Unlock()

	if !identity.Authenticated() {
		notifier.Notify(domain.Notice{
			Kind:    domain.NoticeSignIn,
			Message: "Sign in to save your quiz result.",
		})
		return
	}

	if err := result.Validate(); err != nil {
		log.Printf("quiz result rejected before save: %v", err)
		notifier.Notify(domain.Notice{
			Kind:    domain.NoticeSaveFailed,
			Message: "Failed to save your result. Please try again.",
		})
		return
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	stored, err := s.store.CreateResult(ctx, identity, result)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) {
			notifier.Notify(domain.Notice{
				Kind:    domain.NoticeSignIn,
				Message: "Sign in to save your quiz result.",
			})
			return
		}
		log.Printf("save quiz result: %v", err)
		notifier.Notify(domain.Notice{
			Kind:    domain.NoticeSaveFailed,
			Message: "Failed to save your result. Please try again.",
		})
		return
	}

	notifier.Notify(domain.Notice{
		Kind:     domain.NoticeSaved,
		Message:  "Your quiz result has been saved!",
		ResultID: stored.ID,
	})
}

// Reset re-arms the latch after a session restart.
func (s *Submitter) Reset() {
	s.mu.Lock()
	s.attempted = false
	s.mu.Unlock()
}
