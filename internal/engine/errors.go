package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyHistory is returned by UndoLastBall when the current innings
	// has no recorded deliveries.
	ErrEmptyHistory = errors.New("no balls to undo")

	// ErrMatchNotFound is returned by collaborators that cannot resolve a
	// match identifier.
	ErrMatchNotFound = errors.New("match not found")
)

// InvalidTransitionError rejects an operation that is not legal in the
// current match or innings status.
type InvalidTransitionError struct {
	Op     string
	Reason string
}

func (e InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func invalidTransition(op, reason string) error {
	return InvalidTransitionError{Op: op, Reason: reason}
}

// RuleViolationError rejects a structurally valid operation that breaks a
// scoring rule.
type RuleViolationError struct {
	Reason string
}

func (e RuleViolationError) Error() string {
	return e.Reason
}

func ruleViolation(format string, args ...any) error {
	return RuleViolationError{Reason: fmt.Sprintf(format, args...)}
}
