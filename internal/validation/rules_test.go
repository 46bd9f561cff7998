package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bordereaux/internal/canonical"
	"github.com/mrlokans/bordereaux/internal/entities"
)

func mustDate(t *testing.T, s string) canonical.Value {
	t.Helper()
	d, err := canonical.ParseDate(s)
	require.NoError(t, err)
	return canonical.DateValue(d)
}

func mustDecimal(t *testing.T, s string) canonical.Value {
	t.Helper()
	d, err := canonical.ParseDecimal(s)
	require.NoError(t, err)
	return canonical.DecimalValue(d)
}

func fullRow(t *testing.T) *canonical.Row {
	t.Helper()
	row := canonical.NewRow(1, 0)
	row.Set(canonical.FieldPolicyNumber, canonical.StringValue("POL-001"))
	row.Set(canonical.FieldInceptionDate, mustDate(t, "2024-01-01"))
	row.Set(canonical.FieldExpiryDate, mustDate(t, "2024-12-31"))
	row.Set(canonical.FieldPremiumAmount, mustDecimal(t, "1000"))
	return row
}

func TestValidateRow_ValidRowHasNoErrors(t *testing.T) {
	verdict := DefaultRuleSet().ValidateRow(fullRow(t))
	assert.True(t, verdict.Valid)
	assert.Empty(t, verdict.Violations)
}

func TestValidateRow_MissingPolicyNumber(t *testing.T) {
	missing := canonical.NewRow(1, 0)
	missing.Set(canonical.FieldInceptionDate, mustDate(t, "2024-01-01"))
	missing.Set(canonical.FieldExpiryDate, mustDate(t, "2024-12-31"))
	missing.Set(canonical.FieldPremiumAmount, mustDecimal(t, "55.20"))

	verdict := DefaultRuleSet().ValidateRow(missing)
	assert.False(t, verdict.Valid)
	require.Len(t, verdict.Violations, 1)

	v := verdict.Violations[0]
	assert.Equal(t, "required_policy_number", v.RuleName)
	assert.Equal(t, canonical.FieldPolicyNumber, v.FieldName)
	assert.Equal(t, entities.SeverityError, v.Severity)
}

func TestValidateRow_DateOrderViolation(t *testing.T) {
	row := fullRow(t)
	row.Set(canonical.FieldInceptionDate, mustDate(t, "2024-06-01"))
	row.Set(canonical.FieldExpiryDate, mustDate(t, "2024-01-01"))

	verdict := DefaultRuleSet().ValidateRow(row)
	assert.False(t, verdict.Valid)
	require.Len(t, verdict.Violations, 1)
	assert.Equal(t, "inception_before_expiry", verdict.Violations[0].RuleName)
}

func TestValidateRow_DateOrderEqualDatesPass(t *testing.T) {
	row := fullRow(t)
	row.Set(canonical.FieldInceptionDate, mustDate(t, "2024-06-01"))
	row.Set(canonical.FieldExpiryDate, mustDate(t, "2024-06-01"))

	verdict := DefaultRuleSet().ValidateRow(row)
	assert.True(t, verdict.Valid)
}

func TestValidateRow_DateOrderFiresOnMissingOperand(t *testing.T) {
	row := canonical.NewRow(1, 0)
	row.Set(canonical.FieldPolicyNumber, canonical.StringValue("POL-001"))
	row.Set(canonical.FieldInceptionDate, mustDate(t, "2024-01-01"))
	row.Set(canonical.FieldPremiumAmount, mustDecimal(t, "10"))

	verdict := DefaultRuleSet().ValidateRow(row)
	assert.False(t, verdict.Valid)
	require.Len(t, verdict.Violations, 1)
	assert.Equal(t, "inception_before_expiry", verdict.Violations[0].RuleName)
	assert.Equal(t, canonical.FieldExpiryDate, verdict.Violations[0].FieldName)
}

func TestValidateRow_NumericRange(t *testing.T) {
	t.Run("negative premium fires min rule once", func(t *testing.T) {
		row := fullRow(t)
		row.Set(canonical.FieldPremiumAmount, mustDecimal(t, "-5"))

		verdict := DefaultRuleSet().ValidateRow(row)
		assert.False(t, verdict.Valid)
		require.Len(t, verdict.Violations, 1)
		assert.Equal(t, "premium_non_negative", verdict.Violations[0].RuleName)
	})

	t.Run("max bound", func(t *testing.T) {
		max := 100.0
		rs := &RuleSet{Rules: []Rule{{
			Kind:  KindNumericRange,
			Name:  "premium_cap",
			Field: canonical.FieldPremiumAmount,
			Max:   &max,
		}}}
		row := fullRow(t)
		verdict := rs.ValidateRow(row) // premium 1000 > 100
		assert.False(t, verdict.Valid)
		require.Len(t, verdict.Violations, 1)
		assert.Equal(t, "premium_cap", verdict.Violations[0].RuleName)
	})

	t.Run("boundary value passes", func(t *testing.T) {
		row := fullRow(t)
		row.Set(canonical.FieldPremiumAmount, mustDecimal(t, "0"))
		verdict := DefaultRuleSet().ValidateRow(row)
		assert.True(t, verdict.Valid)
	})
}

func TestValidateRow_WarningDoesNotBlockValidity(t *testing.T) {
	zero := 0.0
	rs := &RuleSet{Rules: []Rule{{
		Kind:     KindNumericRange,
		Name:     "claim_non_negative",
		Severity: entities.SeverityWarning,
		Field:    canonical.FieldClaimAmount,
		Min:      &zero,
	}}}

	row := canonical.NewRow(1, 0) // claim_amount absent: rule fires as warning
	verdict := rs.ValidateRow(row)
	assert.True(t, verdict.Valid)
	require.Len(t, verdict.Violations, 1)
	assert.Equal(t, entities.SeverityWarning, verdict.Violations[0].Severity)
}

func TestValidateRow_NoShortCircuitAndDeterministicOrder(t *testing.T) {
	// Row violating all three default rules at once.
	row := canonical.NewRow(3, 5)
	row.Set(canonical.FieldInceptionDate, mustDate(t, "2024-06-01"))
	row.Set(canonical.FieldExpiryDate, mustDate(t, "2024-01-01"))
	row.Set(canonical.FieldPremiumAmount, mustDecimal(t, "-1"))

	rs := DefaultRuleSet()
	first := rs.ValidateRow(row)
	second := rs.ValidateRow(row)

	require.Len(t, first.Violations, 3)
	assert.Equal(t, "required_policy_number", first.Violations[0].RuleName)
	assert.Equal(t, "inception_before_expiry", first.Violations[1].RuleName)
	assert.Equal(t, "premium_non_negative", first.Violations[2].RuleName)
	assert.Equal(t, first.Violations, second.Violations)

	// Violations carry the row coordinates.
	assert.Equal(t, uint(3), first.Violations[0].FileID)
	assert.Equal(t, 5, first.Violations[0].RowIndex)
}

func TestValidateRows_AggregatesInRowOrder(t *testing.T) {
	good := fullRow(t)
	bad := canonical.NewRow(1, 1)
	bad.Set(canonical.FieldInceptionDate, mustDate(t, "2024-01-01"))
	bad.Set(canonical.FieldExpiryDate, mustDate(t, "2024-12-31"))
	bad.Set(canonical.FieldPremiumAmount, mustDecimal(t, "1"))

	verdicts, all := DefaultRuleSet().ValidateRows([]*canonical.Row{good, bad})
	require.Len(t, verdicts, 2)
	assert.True(t, verdicts[0].Valid)
	assert.False(t, verdicts[1].Valid)
	require.Len(t, all, 1)
	assert.Equal(t, 1, all[0].RowIndex)
}

func TestParseRuleSet(t *testing.T) {
	doc := []byte(`{
		"required_fields": ["policy_number", "insured_name"],
		"date_rules": [
			{"name": "inception_before_expiry", "inception_field": "inception_date", "expiry_field": "expiry_date", "message": "bad period"}
		],
		"numeric_rules": [
			{"name": "premium_non_negative", "field": "premium_amount", "min_value": 0, "message": "negative premium"},
			{"name": "claim_cap", "field": "claim_amount", "max_value": 1000000, "severity": "warning", "message": "unusually large claim"}
		]
	}`)

	rs, err := ParseRuleSet(doc)
	require.NoError(t, err)
	require.Len(t, rs.Rules, 5)

	assert.Equal(t, KindRequired, rs.Rules[0].Kind)
	assert.Equal(t, "required_policy_number", rs.Rules[0].Name)
	assert.Equal(t, "required_insured_name", rs.Rules[1].Name)
	assert.Equal(t, KindDateOrder, rs.Rules[2].Kind)
	assert.Equal(t, KindNumericRange, rs.Rules[3].Kind)
	assert.Equal(t, entities.SeverityWarning, rs.Rules[4].Severity)
	require.NotNil(t, rs.Rules[4].Max)
	assert.Equal(t, 1000000.0, *rs.Rules[4].Max)
}

func TestParseRuleSet_Rejections(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown required field", `{"required_fields": ["nope"]}`},
		{"date rule unknown field", `{"date_rules": [{"name": "x", "inception_field": "nope", "expiry_field": "expiry_date"}]}`},
		{"date rule missing name", `{"date_rules": [{"inception_field": "inception_date", "expiry_field": "expiry_date"}]}`},
		{"numeric rule without bounds", `{"numeric_rules": [{"name": "x", "field": "premium_amount"}]}`},
		{"invalid json", `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRuleSet([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}
