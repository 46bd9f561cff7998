package canonical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple", "Policy Number", "policy_number"},
		{"already normalized", "policy_number", "policy_number"},
		{"punctuation", "Policy No.", "policy_no"},
		{"surrounding whitespace", "  Premium Amount  ", "premium_amount"},
		{"collapses separators", "Net -- Premium", "net_premium"},
		{"mixed case", "InceptionDate", "inceptiondate"},
		{"empty", "", ""},
		{"only punctuation", "##", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeHeader(tt.input))
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"iso 8601", "2024-01-15", "2024-01-15"},
		{"dd/mm/yyyy", "15/01/2024", "2024-01-15"},
		{"mm-dd-yyyy", "01-15-2024", "2024-01-15"},
		{"yyyy/mm/dd", "2024/01/15", "2024-01-15"},
		{"dd.mm.yyyy", "15.01.2024", "2024-01-15"},
		{"compact", "20240115", "2024-01-15"},
		{"month name", "15 January 2024", "2024-01-15"},
		{"us month name", "Jan 15, 2024", "2024-01-15"},
		{"padded", "  2024-06-01 ", "2024-06-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Format("2006-01-02"))
		})
	}

	t.Run("unparsable", func(t *testing.T) {
		_, err := ParseDate("not a date")
		assert.Error(t, err)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := ParseDate("   ")
		assert.Error(t, err)
	})
}

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "1234.56", "1234.56"},
		{"us thousands", "1,234.56", "1234.56"},
		{"european", "1.234,56", "1234.56"},
		{"dollar symbol", "$1,234.56", "1234.56"},
		{"euro symbol", "€ 999,99", "999.99"},
		{"currency code", "USD 5000", "5000"},
		{"negative", "-5", "-5"},
		{"integer", "42", "42"},
		{"thousands only", "1,234,567", "1234567"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDecimal(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}

	t.Run("unparsable", func(t *testing.T) {
		_, err := ParseDecimal("abc")
		assert.Error(t, err)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := ParseDecimal("")
		assert.Error(t, err)
	})
}

func TestNormalizeCurrency(t *testing.T) {
	assert.Equal(t, "USD", NormalizeCurrency("usd"))
	assert.Equal(t, "USD", NormalizeCurrency("US Dollar"))
	assert.Equal(t, "EUR", NormalizeCurrency("€"))
	assert.Equal(t, "GBP", NormalizeCurrency(" pounds "))
	assert.Equal(t, "XYZ", NormalizeCurrency("xyz")) // unknown codes pass through
	assert.Equal(t, "", NormalizeCurrency("  "))
}

func TestSchema(t *testing.T) {
	names := FieldNames()
	assert.Len(t, names, 13)
	assert.Equal(t, FieldPolicyNumber, names[0])

	kind, ok := KindOf(FieldInceptionDate)
	require.True(t, ok)
	assert.Equal(t, KindDate, kind)

	kind, ok = KindOf(FieldPremiumAmount)
	require.True(t, ok)
	assert.Equal(t, KindDecimal, kind)

	_, ok = KindOf("not_a_field")
	assert.False(t, ok)
}

func TestRowAccessors(t *testing.T) {
	row := NewRow(7, 3)

	date, err := ParseDate("2024-01-15")
	require.NoError(t, err)
	amount, err := ParseDecimal("100.50")
	require.NoError(t, err)

	row.Set(FieldPolicyNumber, StringValue("POL-001"))
	row.Set(FieldInceptionDate, DateValue(date))
	row.Set(FieldPremiumAmount, DecimalValue(amount))
	row.Set("bogus_field", StringValue("dropped")) // unknown fields ignored

	assert.Equal(t, 3, row.FieldCount())

	s, ok := row.String(FieldPolicyNumber)
	require.True(t, ok)
	assert.Equal(t, "POL-001", s)

	d, ok := row.Date(FieldInceptionDate)
	require.True(t, ok)
	assert.Equal(t, "2024-01-15", d.Format("2006-01-02"))

	dec, ok := row.Decimal(FieldPremiumAmount)
	require.True(t, ok)
	assert.Equal(t, "100.5", dec.String())

	_, ok = row.Date(FieldPolicyNumber) // kind mismatch
	assert.False(t, ok)
	assert.False(t, row.Has(FieldExpiryDate))

	row.AddNote(FieldExpiryDate, "garbage", "unrecognized date format")
	require.Len(t, row.Notes, 1)
	assert.Equal(t, FieldExpiryDate, row.Notes[0].Field)
}
