// Package lifecycle implements the document state machine: a closed transition
// table, check-gated transitions committed with optimistic concurrency, and a
// checklist view derived from check history.
package lifecycle

import (
	"slices"

	"taxdocs/internal/domain"
)

// transitions is the complete transition table. States missing from it have
// no outgoing transitions.
var transitions = map[domain.LifecycleState][]domain.LifecycleState{
	domain.StateUploaded:   {domain.StateProcessing, domain.StateFailed},
	domain.StateProcessing: {domain.StateValidated, domain.StateFailed},
	domain.StateValidated:  {domain.StateVerified, domain.StateRejected},
	domain.StateVerified:   {domain.StateArchived},
	domain.StateRejected:   {domain.StateUploaded},
	domain.StateFailed:     {domain.StateUploaded},
	domain.StateArchived:   {},
}

// entryChecks lists the checks that must pass before a document may enter a state.
var entryChecks = map[domain.LifecycleState][]string{
	domain.StateProcessing: {domain.CheckVirusScan, domain.CheckFormat},
	domain.StateValidated:  {domain.CheckCompleteness, domain.CheckCompliance},
	domain.StateVerified:   {domain.CheckFinalReview},
}

// CanTransition reports whether to is an allowed next state of from.
func CanTransition(from, to domain.LifecycleState) bool {
	return slices.Contains(transitions[from], to)
}

// AllowedNext returns the allowed next states of from in table order.
func AllowedNext(from domain.LifecycleState) []domain.LifecycleState {
	return slices.Clone(transitions[from])
}

// RequiredChecks returns the checks gating entry into state, in table order.
func RequiredChecks(state domain.LifecycleState) []string {
	return slices.Clone(entryChecks[state])
}

// IsTerminal reports whether s has no outgoing transitions.
func IsTerminal(s domain.LifecycleState) bool {
	return len(transitions[s]) == 0
}
