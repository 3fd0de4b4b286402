package checks

import (
	"context"
	"fmt"
	"strings"

	"taxdocs/internal/domain"
	"taxdocs/internal/validator"
)

// NewFormatCheck verifies the document's MIME type and size against its category.
func NewFormatCheck(v *validator.DocumentValidator) Check {
	return CheckFunc(func(_ context.Context, rec *domain.DocumentRecord) (domain.CheckOutcome, error) {
		rules, err := v.EffectiveRules(rec.Category)
		if err != nil {
			return domain.CheckOutcome{}, err
		}
		var problems []string
		if msg := validator.FormatError(rules, rec); msg != "" {
			problems = append(problems, msg)
		}
		if msg := validator.SizeError(rules, rec); msg != "" {
			problems = append(problems, msg)
		}
		return domain.CheckOutcome{Passed: len(problems) == 0, Detail: strings.Join(problems, "; ")}, nil
	})
}

// NewCompletenessCheck passes when every required field of the category is present.
func NewCompletenessCheck(v *validator.DocumentValidator) Check {
	return CheckFunc(func(_ context.Context, rec *domain.DocumentRecord) (domain.CheckOutcome, error) {
		rules, err := v.EffectiveRules(rec.Category)
		if err != nil {
			return domain.CheckOutcome{}, err
		}
		var missing []string
		for _, f := range rules.RequiredFields {
			if _, ok := rec.Fields[f]; !ok {
				missing = append(missing, f)
			}
		}
		if len(missing) > 0 {
			return domain.CheckOutcome{Detail: "missing required fields: " + strings.Join(missing, ", ")}, nil
		}
		return domain.CheckOutcome{Passed: true}, nil
	})
}

// NewComplianceCheck passes when every validation rule of the category is satisfied.
func NewComplianceCheck(v *validator.DocumentValidator) Check {
	return CheckFunc(func(ctx context.Context, rec *domain.DocumentRecord) (domain.CheckOutcome, error) {
		rules, err := v.EffectiveRules(rec.Category)
		if err != nil {
			return domain.CheckOutcome{}, err
		}
		score, warnings := v.Compliance(ctx, rules.ValidationRules, rec.Fields)
		if score < 1 {
			detail := fmt.Sprintf("compliance score %.2f", score)
			if len(warnings) > 0 {
				detail += ": " + strings.Join(warnings, "; ")
			}
			return domain.CheckOutcome{Detail: detail}, nil
		}
		return domain.CheckOutcome{Passed: true}, nil
	})
}
