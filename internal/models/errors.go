package models

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across layers. Callers branch with errors.Is; the
// idempotency short-circuits (AlreadyAwarded, AlreadyCompleted) are expected
// outcomes, not failures.
var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidState      = errors.New("invalid state for operation")
	ErrAlreadyAwarded    = errors.New("already awarded")
	ErrAlreadyCompleted  = errors.New("measurement already completed")
	ErrPortfolioNotFound = errors.New("portfolio snapshot not found")
)

// ValidationError reports malformed input. No state changes on validation
// failure.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}
