// Package condition parses and evaluates single-comparison trigger expressions
// such as `has_investments == true` or `income > 1500` against taxpayer answers.
package condition

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"taxdocs/internal/domain"
)

// Operator is one of the four supported comparison operators.
type Operator string

const (
	OpEqual       Operator = "=="
	OpNotEqual    Operator = "!="
	OpGreaterThan Operator = ">"
	OpLessThan    Operator = "<"
)

// operators are scanned in this order; the first one present in the trigger wins.
var operators = []Operator{OpEqual, OpNotEqual, OpGreaterThan, OpLessThan}

// Expression is a parsed `field OP value` trigger. It is immutable once parsed.
type Expression struct {
	Field    string
	Operator Operator
	Value    string
}

func (e Expression) String() string {
	return fmt.Sprintf("%s %s %s", e.Field, e.Operator, e.Value)
}

// Parse splits a trigger into field, operator and value.
func Parse(trigger string) (Expression, error) {
	expr := strings.TrimSpace(trigger)
	for _, op := range operators {
		idx := strings.Index(expr, string(op))
		if idx < 0 {
			continue
		}
		field := strings.TrimSpace(expr[:idx])
		if field == "" {
			return Expression{}, fmt.Errorf("%w: %q has no field", domain.ErrParse, trigger)
		}
		raw := strings.TrimSpace(expr[idx+len(op):])
		return Expression{
			Field:    field,
			Operator: op,
			Value:    strings.Trim(raw, `"'`),
		}, nil
	}
	return Expression{}, fmt.Errorf("%w: %q has no comparison operator", domain.ErrParse, trigger)
}

// Evaluate parses trigger and evaluates it against answers.
func Evaluate(trigger string, answers map[string]any) (bool, error) {
	expr, err := Parse(trigger)
	if err != nil {
		return false, err
	}
	return expr.Evaluate(answers)
}

// Evaluate compares the answer for e.Field with e.Value.
func (e Expression) Evaluate(answers map[string]any) (bool, error) {
	actual, present := answers[e.Field]
	if actual == nil {
		present = false
	}

	switch e.Operator {
	case OpEqual:
		return present && strings.EqualFold(StringForm(actual), e.Value), nil
	case OpNotEqual:
		return !present || !strings.EqualFold(StringForm(actual), e.Value), nil
	case OpGreaterThan, OpLessThan:
		if !present {
			return false, fmt.Errorf("%w: %s has no answer to compare with %s", domain.ErrTypeConversion, e.Field, e.Value)
		}
		lhs, err := ToFloat(actual)
		if err != nil {
			return false, fmt.Errorf("%w: answer for %s: %v", domain.ErrTypeConversion, e.Field, err)
		}
		rhs, err := ToFloat(e.Value)
		if err != nil {
			return false, fmt.Errorf("%w: literal in %q: %v", domain.ErrTypeConversion, e.String(), err)
		}
		if e.Operator == OpGreaterThan {
			return lhs > rhs, nil
		}
		return lhs < rhs, nil
	default:
		return false, fmt.Errorf("%w: unsupported operator %q", domain.ErrParse, e.Operator)
	}
}

// StringForm renders an answer or field value as text. Floats use plain
// decimal notation, so JSON numbers keep their digits.
func StringForm(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	default:
		return fmt.Sprint(v)
	}
}

// ToFloat converts a numeric answer (number or numeric string) to float64.
func ToFloat(v any) (float64, error) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		f = float64(t)
	case uint:
		f = float64(t)
	case uint64:
		f = float64(t)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a number", t)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("%v (%T) is not a number", v, v)
	}
	if math.IsNaN(f) {
		return 0, fmt.Errorf("NaN is not comparable")
	}
	return f, nil
}

// Truthy reports whether an answer-map flag is set. Booleans are taken as-is;
// strings "true"/"yes"/"1" count as set.
func Truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "1":
			return true
		}
	}
	return false
}
