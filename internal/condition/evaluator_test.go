package condition_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxdocs/internal/condition"
	"taxdocs/internal/domain"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		trigger string
		want    condition.Expression
	}{
		{"equal", "has_investments == true", condition.Expression{Field: "has_investments", Operator: condition.OpEqual, Value: "true"}},
		{"not_equal", "filing_status != 'single'", condition.Expression{Field: "filing_status", Operator: condition.OpNotEqual, Value: "single"}},
		{"greater", "  income>1500 ", condition.Expression{Field: "income", Operator: condition.OpGreaterThan, Value: "1500"}},
		{"less", `dependents < "3"`, condition.Expression{Field: "dependents", Operator: condition.OpLessThan, Value: "3"}},
		{"equal_wins_over_greater", "a > b == c", condition.Expression{Field: "a > b", Operator: condition.OpEqual, Value: "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := condition.Parse(tt.trigger)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	for _, trigger := range []string{"", "has_investments", "== true", "   > 5"} {
		_, err := condition.Parse(trigger)
		assert.ErrorIs(t, err, domain.ErrParse, "trigger %q", trigger)
	}
}

func TestParse_GreaterOrEqualIsNotExtended(t *testing.T) {
	expr, err := condition.Parse("income >= 10")
	require.NoError(t, err)
	assert.Equal(t, condition.OpGreaterThan, expr.Operator)
	assert.Equal(t, "= 10", expr.Value)

	_, err = expr.Evaluate(map[string]any{"income": 20})
	assert.ErrorIs(t, err, domain.ErrTypeConversion)
}

func TestEvaluate_Numeric(t *testing.T) {
	ok, err := condition.Evaluate("income > 1500", map[string]any{"income": 2000})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = condition.Evaluate("income > 1500", map[string]any{"income": "1000.50"})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = condition.Evaluate("income < 1500", map[string]any{"income": 1000.5})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEvaluate_NumericConversionErrors(t *testing.T) {
	_, err := condition.Evaluate("income > 1500", map[string]any{"income": "not-a-number"})
	assert.ErrorIs(t, err, domain.ErrTypeConversion)

	_, err = condition.Evaluate("income > 1500", map[string]any{})
	assert.ErrorIs(t, err, domain.ErrTypeConversion)

	_, err = condition.Evaluate("income > lots", map[string]any{"income": 10})
	assert.ErrorIs(t, err, domain.ErrTypeConversion)

	_, err = condition.Evaluate("has_w2 > 0", map[string]any{"has_w2": true})
	assert.ErrorIs(t, err, domain.ErrTypeConversion)
}

func TestEvaluate_Equality(t *testing.T) {
	answers := map[string]any{
		"has_investments": true,
		"filing_status":   "Married_Joint",
		"dependents":      2,
	}

	cases := map[string]bool{
		"has_investments == true":          true,
		"has_investments == TRUE":          true,
		"has_investments != true":          false,
		"filing_status == 'married_joint'": true,
		"filing_status != single":          true,
		"dependents == 2":                  true,
		"missing_flag == None":             false,
		"missing_flag == ''":               false,
		"missing_flag != true":             true,
	}
	for trigger, want := range cases {
		got, err := condition.Evaluate(trigger, answers)
		require.NoError(t, err, trigger)
		assert.Equal(t, want, got, trigger)
	}
}

func TestEvaluate_DoesNotMutateAnswers(t *testing.T) {
	answers := map[string]any{"income": 2000}
	_, err := condition.Evaluate("income > 1", answers)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"income": 2000}, answers)
}

func TestTruthy(t *testing.T) {
	assert.True(t, condition.Truthy(true))
	assert.True(t, condition.Truthy("Yes"))
	assert.True(t, condition.Truthy("true"))
	assert.False(t, condition.Truthy(false))
	assert.False(t, condition.Truthy(nil))
	assert.False(t, condition.Truthy(1))
	assert.False(t, condition.Truthy("no"))
}
