package canonical

import (
	"time"

	"github.com/shopspring/decimal"
)

// Value is a typed canonical field value. Exactly one of the typed members
// is meaningful, selected by Kind.
type Value struct {
	Kind FieldKind
	Str  string
	Date time.Time
	Dec  decimal.Decimal
}

// StringValue wraps a normalized string.
func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }

// DateValue wraps a parsed date.
func DateValue(t time.Time) Value { return Value{Kind: KindDate, Date: t} }

// DecimalValue wraps an exact decimal.
func DecimalValue(d decimal.Decimal) Value { return Value{Kind: KindDecimal, Dec: d} }

// ConversionNote records a field whose raw value could not be normalized.
// Notes never fail a row by themselves; the validation engine decides
// whether the resulting absence is acceptable.
type ConversionNote struct {
	Field    string `json:"field"`
	RawValue string `json:"raw_value"`
	Reason   string `json:"reason"`
}

// Row is one mapped, normalized source row. Fields absent from the map were
// either unmapped by the template or failed conversion (see Notes).
type Row struct {
	FileID  uint
	Index   int // 0-based, matches source row order
	fields  map[string]Value
	Notes   []ConversionNote
	RawData string // original row as JSON
}

// NewRow creates an empty canonical row for a file position.
func NewRow(fileID uint, index int) *Row {
	return &Row{FileID: fileID, Index: index, fields: make(map[string]Value)}
}

// Set stores a field value. Unknown field names are ignored so callers can
// feed untrusted mappings through without pre-filtering.
func (r *Row) Set(field string, v Value) {
	if !IsField(field) {
		return
	}
	r.fields[field] = v
}

// Get returns the value of a field and whether it is present.
func (r *Row) Get(field string) (Value, bool) {
	v, ok := r.fields[field]
	return v, ok
}

// Has reports whether a field is present (mapped and successfully converted).
func (r *Row) Has(field string) bool {
	_, ok := r.fields[field]
	return ok
}

// Date returns a field's date value; ok is false when absent or not a date.
func (r *Row) Date(field string) (time.Time, bool) {
	v, ok := r.fields[field]
	if !ok || v.Kind != KindDate {
		return time.Time{}, false
	}
	return v.Date, true
}

// Decimal returns a field's decimal value; ok is false when absent or not a decimal.
func (r *Row) Decimal(field string) (decimal.Decimal, bool) {
	v, ok := r.fields[field]
	if !ok || v.Kind != KindDecimal {
		return decimal.Decimal{}, false
	}
	return v.Dec, true
}

// String returns a field's string value; ok is false when absent or not a string.
func (r *Row) String(field string) (string, bool) {
	v, ok := r.fields[field]
	if !ok || v.Kind != KindString {
		return "", false
	}
	return v.Str, true
}

// AddNote attaches a conversion note for a field.
func (r *Row) AddNote(field, raw, reason string) {
	r.Notes = append(r.Notes, ConversionNote{Field: field, RawValue: raw, Reason: reason})
}

// FieldCount returns the number of present fields.
func (r *Row) FieldCount() int {
	return len(r.fields)
}
