package app

import (
	"fmt"
	"strconv"
	"sync"

	"ai-quiz-service/internal/domain"
)

// Stage names the position of a session in its linear flow.
type Stage string

const (
	StageIntro       Stage = "intro"
	StageFamiliarity Stage = "familiarity"
	StageActive      Stage = "active"
	StageComplete    Stage = "complete"
)

// Feedback is the post-answer reveal for the current question.
type Feedback struct {
	QuestionID    int    `json:"questionId"`
	Correct       bool   `json:"correct"`
	CorrectAnswer any    `json:"correctAnswer"`
	Explanation   string `json:"explanation"`
	Score         int    `json:"score"`
}

// Progress reports the outcome of an advance.
type Progress struct {
	Completed bool
	NextIndex int
	Result    domain.QuizResult
}

// Session walks one user through the question bank: intro, familiarity,
// active, complete. Transitions are strictly forward except Restart.
type Session struct {
	id   string
	bank []domain.Question

	mu          sync.Mutex
	stage       Stage
	familiarity int
	current     int
	answers     map[int]any
	score       int
	revealed    bool
	result      domain.QuizResult
}

// NewSession creates a session at the intro stage over the given bank.
func NewSession(id string, bank []domain.Question) *Session {
	s := &Session{id: id, bank: bank}
	s.resetLocked()
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Stage returns the current stage.
func (s *Session) Stage() Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

// Total returns the size of the question bank.
func (s *Session) Total() int {
	return len(s.bank)
}

// Score returns the running count of correct answers.
func (s *Session) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score
}

// Start moves intro to familiarity.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage != StageIntro {
		return fmt.Errorf("%w: start in %s", domain.ErrInvalidStage, s.stage)
	}
	s.stage = StageFamiliarity
	return nil
}

// ConfirmFamiliarity records the self-assessment and begins the quiz.
// With an empty bank the session completes immediately; its frozen result
// reports zero questions and a zero percentage.
func (s *Session) ConfirmFamiliarity(level int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage != StageFamiliarity {
		return fmt.Errorf("%w: familiarity in %s", domain.ErrInvalidStage, s.stage)
	}
	if level < 1 || level > 5 {
		return fmt.Errorf("%w: %d", domain.ErrInvalidFamiliarity, level)
	}
	s.familiarity = level
	if len(s.bank) == 0 {
		s.completeLocked()
		return nil
	}
	s.stage = StageActive
	return nil
}

// CurrentQuestion returns the question awaiting an answer.
func (s *Session) CurrentQuestion() (domain.Question, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage != StageActive {
		return domain.Question{}, 0, fmt.Errorf("%w: question in %s", domain.ErrInvalidStage, s.stage)
	}
	return s.bank[s.current], s.current, nil
}

// SubmitAnswer scores the raw answer for the current question, records it,
// and reveals the explanation. The index does not move until Advance.
func (s *Session) SubmitAnswer(raw any) (Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage != StageActive {
		return Feedback{}, fmt.Errorf("%w: answer in %s", domain.ErrInvalidStage, s.stage)
	}
	if s.revealed {
		return Feedback{}, domain.ErrAlreadyRevealed
	}

	question := s.bank[s.current]
	correct := question.Matches(raw)
	s.answers[question.ID] = raw
	if correct {
		s.score++
	}
	s.revealed = true

	return Feedback{
		QuestionID:    question.ID,
		Correct:       correct,
		CorrectAnswer: question.CorrectAnswer(),
		Explanation:   question.Explanation,
		Score:         s.score,
	}, nil
}

// Advance moves to the next question, or completes the session and freezes
// the result snapshot when the last question has been revealed.
func (s *Session) Advance() (Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage != StageActive {
		return Progress{}, fmt.Errorf("%w: advance in %s", domain.ErrInvalidStage, s.stage)
	}
	if !s.revealed {
		return Progress{}, domain.ErrNotRevealed
	}

	if s.current == len(s.bank)-1 {
		s.completeLocked()
		return Progress{Completed: true, Result: s.result}, nil
	}
	s.current++
	s.revealed = false
	return Progress{NextIndex: s.current}, nil
}

// Restart resets the session to intro from any stage.
func (s *Session) Restart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

// Result returns the frozen snapshot once the session is complete.
func (s *Session) Result() (domain.QuizResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage != StageComplete {
		return domain.QuizResult{}, false
	}
	return s.result, true
}

func (s *Session) completeLocked() {
	answers := make(map[string]any, len(s.answers))
	for id, raw := range s.answers {
		answers[strconv.Itoa(id)] = raw
	}
	s.result = domain.QuizResult{
		FamiliarityLevel: s.familiarity,
		Score:            s.score,
		TotalQuestions:   len(s.bank),
		Percentage:       domain.Percent(s.score, len(s.bank)),
		Answers:          answers,
	}
	s.stage = StageComplete
}

func (s *Session) resetLocked() {
	s.stage = StageIntro
	s.familiarity = domain.DefaultFamiliarity
	s.current = 0
	s.answers = make(map[int]any)
	s.score = 0
	s.revealed = false
	s.result = domain.QuizResult{}
}
