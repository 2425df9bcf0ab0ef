package domain

import "errors"

var (
	// ErrInvalidStage is returned when an operation is invoked outside its stage.
	ErrInvalidStage = errors.New("operation not valid in current stage")
	// ErrAlreadyRevealed is returned when answering a question a second time.
	ErrAlreadyRevealed = errors.New("current question already answered")
	// ErrNotRevealed is returned when advancing before the answer was revealed.
	ErrNotRevealed = errors.New("current question not answered yet")
	// ErrInvalidFamiliarity indicates a familiarity level outside [1,5].
	ErrInvalidFamiliarity = errors.New("familiarity level out of range")
	// ErrEmptyAnswer indicates a blank text answer; callers reject it before scoring.
	ErrEmptyAnswer = errors.New("empty answer")
	// ErrValidation indicates a quiz result violating its invariants.
	ErrValidation = errors.New("quiz result failed validation")
	// ErrUnauthenticated indicates a caller without a valid identity.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrStoreUnavailable indicates the persistence backend could not be reached.
	ErrStoreUnavailable = errors.New("result store unavailable")
)
