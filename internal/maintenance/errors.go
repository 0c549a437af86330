package maintenance

import (
	"errors"
	"fmt"

	"teamhub/internal/models"
)

// Proposal lifecycle errors.
var (
	ErrProposalNotFound = errors.New("proposal not found")
	ErrProposalResolved = errors.New("proposal has already been reviewed")
)

// ErrorKind classifies why an applier refused a change.
type ErrorKind string

const (
	KindNotFound ErrorKind = "not_found"
	KindConflict ErrorKind = "conflict"
	// KindStale means the target changed after the proposal was submitted.
	KindStale   ErrorKind = "stale"
	KindInvalid ErrorKind = "invalid"
)

// ApplierError is returned when a change cannot be applied to its target.
type ApplierError struct {
	Kind       ErrorKind
	ChangeType models.ChangeType
	Message    string
	Err        error
}

func (e *ApplierError) Error() string {
	return fmt.Sprintf("%s: %s", e.ChangeType, e.Message)
}

func (e *ApplierError) Unwrap() error {
	return e.Err
}

func applierErr(kind ErrorKind, t models.ChangeType, err error, format string, args ...any) *ApplierError {
	return &ApplierError{Kind: kind, ChangeType: t, Message: fmt.Sprintf(format, args...), Err: err}
}
