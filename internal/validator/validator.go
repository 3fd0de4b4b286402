package validator

import (
	"context"

	"taxdocs/internal/domain"
)

// Rule is the interface for one validation rule type (pattern, numeric_range, ...).
// A single Rule evaluates every descriptor of its type.
type Rule interface {
	RuleType() string
	Evaluate(ctx context.Context, desc domain.RuleDescriptor, fields map[string]any) RuleResult
}

// RuleResult is the outcome of evaluating one rule descriptor.
type RuleResult struct {
	Passed        bool
	FieldPath     string
	ExpectedValue string
	ActualValue   string
	Message       string
}
