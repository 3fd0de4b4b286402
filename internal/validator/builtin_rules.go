package validator

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"taxdocs/internal/condition"
	"taxdocs/internal/domain"
)

// Built-in rule types.
const (
	RuleRequired     = "required"
	RulePattern      = "pattern"
	RuleNumericRange = "numeric_range"
	RuleOneOf        = "one_of"
	RuleDate         = "date"
	RuleMinLength    = "min_length"
)

const defaultDateLayout = "2006-01-02"

// patterns caches compiled pattern rules by source text.
var patterns sync.Map

func compilePattern(pattern string) (*regexp.Regexp, error) {
	if re, ok := patterns.Load(pattern); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	actual, _ := patterns.LoadOrStore(pattern, re)
	return actual.(*regexp.Regexp), nil
}

// builtinRule wraps a rule function and its type for the registry.
type builtinRule struct {
	ruleType string
	fn       func(domain.RuleDescriptor, map[string]any) RuleResult
}

func (b *builtinRule) RuleType() string { return b.ruleType }

func (b *builtinRule) Evaluate(_ context.Context, desc domain.RuleDescriptor, fields map[string]any) RuleResult {
	return b.fn(desc, fields)
}

// BuiltinRules returns all built-in rule types.
func BuiltinRules() []Rule {
	return []Rule{
		&builtinRule{ruleType: RuleRequired, fn: checkRequired},
		&builtinRule{ruleType: RulePattern, fn: checkPattern},
		&builtinRule{ruleType: RuleNumericRange, fn: checkNumericRange},
		&builtinRule{ruleType: RuleOneOf, fn: checkOneOf},
		&builtinRule{ruleType: RuleDate, fn: checkDate},
		&builtinRule{ruleType: RuleMinLength, fn: checkMinLength},
	}
}

// lookup returns the submitted value as a trimmed string and whether it is non-empty.
func lookup(fields map[string]any, field string) (any, string, bool) {
	v, ok := fields[field]
	if !ok || v == nil {
		return nil, "", false
	}
	s := strings.TrimSpace(condition.StringForm(v))
	return v, s, s != ""
}

func skipped(desc domain.RuleDescriptor, expected string) RuleResult {
	return RuleResult{
		Passed: true, FieldPath: desc.Field, ExpectedValue: expected,
		Message: fmt.Sprintf("%s: %s is empty, skipping check", desc.Type, desc.Field),
	}
}

func result(desc domain.RuleDescriptor, passed bool, expected, actual, failure string) RuleResult {
	msg := fmt.Sprintf("%s: %s is valid", desc.Type, desc.Field)
	if !passed {
		msg = fmt.Sprintf("%s: %s %s", desc.Type, desc.Field, failure)
	}
	return RuleResult{Passed: passed, FieldPath: desc.Field, ExpectedValue: expected, ActualValue: actual, Message: msg}
}

func checkRequired(desc domain.RuleDescriptor, fields map[string]any) RuleResult {
	_, s, ok := lookup(fields, desc.Field)
	return result(desc, ok, "non-empty value", s, "is missing or empty")
}

func checkPattern(desc domain.RuleDescriptor, fields map[string]any) RuleResult {
	pattern, _ := desc.Params["pattern"].(string)
	if pattern == "" {
		return result(desc, false, "", "", "rule has no pattern")
	}
	_, s, ok := lookup(fields, desc.Field)
	if !ok {
		return skipped(desc, pattern)
	}
	re, err := compilePattern(pattern)
	if err != nil {
		return result(desc, false, pattern, s, fmt.Sprintf("rule pattern is invalid: %v", err))
	}
	return result(desc, re.MatchString(s), pattern, s, "does not match expected format")
}

func checkNumericRange(desc domain.RuleDescriptor, fields map[string]any) RuleResult {
	minV, hasMin, err := floatParam(desc.Params, "min")
	if err != nil {
		return result(desc, false, "", "", err.Error())
	}
	maxV, hasMax, err := floatParam(desc.Params, "max")
	if err != nil {
		return result(desc, false, "", "", err.Error())
	}
	expected := rangeString(minV, hasMin, maxV, hasMax)

	raw, s, ok := lookup(fields, desc.Field)
	if !ok {
		return skipped(desc, expected)
	}
	n, err := condition.ToFloat(raw)
	if err != nil {
		return result(desc, false, expected, s, "is not a number")
	}
	if hasMin && n < minV {
		return result(desc, false, expected, s, fmt.Sprintf("is below minimum %g", minV))
	}
	if hasMax && n > maxV {
		return result(desc, false, expected, s, fmt.Sprintf("is above maximum %g", maxV))
	}
	return result(desc, true, expected, s, "")
}

func checkOneOf(desc domain.RuleDescriptor, fields map[string]any) RuleResult {
	values, _ := desc.Params["values"].([]any)
	allowed := make([]string, 0, len(values))
	for _, v := range values {
		allowed = append(allowed, condition.StringForm(v))
	}
	expected := strings.Join(allowed, "|")

	_, s, ok := lookup(fields, desc.Field)
	if !ok {
		return skipped(desc, expected)
	}
	for _, a := range allowed {
		if strings.EqualFold(a, s) {
			return result(desc, true, expected, s, "")
		}
	}
	return result(desc, false, expected, s, fmt.Sprintf("must be one of %s", expected))
}

func checkDate(desc domain.RuleDescriptor, fields map[string]any) RuleResult {
	layout, _ := desc.Params["layout"].(string)
	if layout == "" {
		layout = defaultDateLayout
	}
	raw, s, ok := lookup(fields, desc.Field)
	if !ok {
		return skipped(desc, layout)
	}
	if _, isTime := raw.(time.Time); isTime {
		return result(desc, true, layout, s, "")
	}
	_, err := time.Parse(layout, s)
	return result(desc, err == nil, layout, s, fmt.Sprintf("is not a date in layout %s", layout))
}

func checkMinLength(desc domain.RuleDescriptor, fields map[string]any) RuleResult {
	n, has, err := floatParam(desc.Params, "length")
	if err != nil || !has {
		return result(desc, false, "", "", "rule has no numeric length")
	}
	expected := fmt.Sprintf(">= %d characters", int(n))
	_, s, ok := lookup(fields, desc.Field)
	if !ok {
		return skipped(desc, expected)
	}
	return result(desc, utf8.RuneCountInString(s) >= int(n), expected, s, fmt.Sprintf("is shorter than %d characters", int(n)))
}

func floatParam(params map[string]any, key string) (float64, bool, error) {
	v, ok := params[key]
	if !ok || v == nil {
		return 0, false, nil
	}
	f, err := condition.ToFloat(v)
	if err != nil {
		return 0, false, fmt.Errorf("rule parameter %s: %v", key, err)
	}
	return f, true, nil
}

func rangeString(minV float64, hasMin bool, maxV float64, hasMax bool) string {
	switch {
	case hasMin && hasMax:
		return fmt.Sprintf("[%g, %g]", minV, maxV)
	case hasMin:
		return fmt.Sprintf(">= %g", minV)
	case hasMax:
		return fmt.Sprintf("<= %g", maxV)
	default:
		return "any number"
	}
}
