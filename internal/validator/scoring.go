package validator

import (
	"context"
	"fmt"
	"math"

	"taxdocs/internal/domain"
)

// Quality score weights.
const (
	WeightCompleteness = 0.4
	WeightClarity      = 0.3
	WeightCompliance   = 0.3
)

// Completeness is the share of required fields present in fields. Repeated
// names count once per occurrence. No required fields means 1.0.
func Completeness(required []string, fields map[string]any) float64 {
	if len(required) == 0 {
		return 1.0
	}
	present := 0
	for _, f := range required {
		if hasField(fields, f) {
			present++
		}
	}
	return clamp(float64(present) / float64(len(required)))
}

// Compliance evaluates every rule through the registry and returns the share
// satisfied plus one warning per unsatisfied rule. No rules means 1.0.
// Rule types missing from the registry count as unsatisfied.
func (v *DocumentValidator) Compliance(ctx context.Context, rules []domain.RuleDescriptor, fields map[string]any) (float64, []string) {
	if len(rules) == 0 {
		return 1.0, nil
	}
	var warnings []string
	satisfied := 0
	for _, desc := range rules {
		rule := v.rules.Get(desc.Type)
		if rule == nil {
			warnings = append(warnings, fmt.Sprintf("unknown validation rule type %q for field %s", desc.Type, desc.Field))
			continue
		}
		res := rule.Evaluate(ctx, desc, fields)
		if res.Passed {
			satisfied++
			continue
		}
		warnings = append(warnings, res.Message)
	}
	return clamp(float64(satisfied) / float64(len(rules))), warnings
}

// FormatAccepted reports whether any of the format checks accepts mimeType.
// No format checks accepts everything.
func FormatAccepted(checks []domain.FormatTag, mimeType string) bool {
	if len(checks) == 0 {
		return true
	}
	for _, f := range checks {
		if f.Accepts(mimeType) {
			return true
		}
	}
	return false
}

// QualityScore combines the sub-scores and rounds to two decimals.
func QualityScore(completeness, clarity, compliance float64) float64 {
	score := WeightCompleteness*clamp(completeness) + WeightClarity*clamp(clarity) + WeightCompliance*clamp(compliance)
	return round2(clamp(score))
}

// Clarity returns the record's external clarity signal, 1.0 when absent.
func Clarity(rec *domain.DocumentRecord) float64 {
	if rec.ClarityScore == nil || math.IsNaN(*rec.ClarityScore) {
		return 1.0
	}
	return clamp(*rec.ClarityScore)
}

func hasField(fields map[string]any, name string) bool {
	_, ok := fields[name]
	return ok
}

func clamp(f float64) float64 {
	switch {
	case math.IsNaN(f), f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
