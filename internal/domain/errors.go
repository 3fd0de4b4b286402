package domain

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration         = errors.New("invalid rule catalog configuration")
	ErrParse                 = errors.New("malformed trigger expression")
	ErrTypeConversion        = errors.New("operand is not numeric")
	ErrInvalidTransition     = errors.New("invalid lifecycle transition")
	ErrConflict              = errors.New("document status changed concurrently")
	ErrUnknownState          = errors.New("unknown lifecycle state")
	ErrCategoryNotFound      = errors.New("document category not found")
	ErrDocumentNotFound      = errors.New("document not found")
	ErrDocumentAlreadyExists = errors.New("document already exists")
	ErrInvalidDocument       = errors.New("document record is incomplete")
)

// TransitionError reports a target state that is not reachable from the source state.
type TransitionError struct {
	From LifecycleState
	To   LifecycleState
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot transition from %s to %s", e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// ConflictError reports a lost optimistic-concurrency race. Callers retry with a fresh read.
type ConflictError struct {
	DocumentID string
	Expected   LifecycleState
	Actual     LifecycleState
}

func (e *ConflictError) Error() string {
	if e.Actual == "" {
		return fmt.Sprintf("document %s is no longer in status %s", e.DocumentID, e.Expected)
	}
	return fmt.Sprintf("document %s expected status %s but found %s", e.DocumentID, e.Expected, e.Actual)
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}
