// Package canonical defines the fixed schema all bordereaux data is mapped
// into, plus the value and header normalizers shared by the pipeline stages.
package canonical

// FieldKind is the normalized type of a canonical field value.
type FieldKind string

const (
	KindString  FieldKind = "string"
	KindDate    FieldKind = "date"
	KindDecimal FieldKind = "decimal"
)

// Field names of the canonical schema.
const (
	FieldPolicyNumber     = "policy_number"
	FieldInsuredName      = "insured_name"
	FieldInceptionDate    = "inception_date"
	FieldExpiryDate       = "expiry_date"
	FieldPremiumAmount    = "premium_amount"
	FieldCurrency         = "currency"
	FieldClaimAmount      = "claim_amount"
	FieldCommissionAmount = "commission_amount"
	FieldNetPremium       = "net_premium"
	FieldBrokerName       = "broker_name"
	FieldProductType      = "product_type"
	FieldCoverageType     = "coverage_type"
	FieldRiskLocation     = "risk_location"
)

// Field describes one canonical field.
type Field struct {
	Name        string
	Kind        FieldKind
	Description string // used when prompting the AI collaborator
}

// schema is the ordered canonical field set. Order is load-bearing:
// suggestion output and row serialization follow it.
var schema = []Field{
	{FieldPolicyNumber, KindString, "Policy number or reference identifier"},
	{FieldInsuredName, KindString, "Name of the insured party or client"},
	{FieldInceptionDate, KindDate, "Policy start date or inception date"},
	{FieldExpiryDate, KindDate, "Policy end date or expiry date"},
	{FieldPremiumAmount, KindDecimal, "Premium amount or total premium"},
	{FieldCurrency, KindString, "Currency code (e.g. USD, EUR, GBP)"},
	{FieldClaimAmount, KindDecimal, "Claim amount or loss amount"},
	{FieldCommissionAmount, KindDecimal, "Commission or brokerage amount"},
	{FieldNetPremium, KindDecimal, "Net premium after deductions"},
	{FieldBrokerName, KindString, "Broker or intermediary name"},
	{FieldProductType, KindString, "Insurance product type or line of business"},
	{FieldCoverageType, KindString, "Type of coverage or class"},
	{FieldRiskLocation, KindString, "Risk location or property address"},
}

var kindByName = func() map[string]FieldKind {
	m := make(map[string]FieldKind, len(schema))
	for _, f := range schema {
		m[f.Name] = f.Kind
	}
	return m
}()

// Fields returns the ordered canonical schema.
func Fields() []Field {
	out := make([]Field, len(schema))
	copy(out, schema)
	return out
}

// FieldNames returns the canonical field names in schema order.
func FieldNames() []string {
	names := make([]string, len(schema))
	for i, f := range schema {
		names[i] = f.Name
	}
	return names
}

// KindOf returns the kind of a canonical field and whether the field exists.
func KindOf(name string) (FieldKind, bool) {
	k, ok := kindByName[name]
	return k, ok
}

// IsField reports whether name is part of the canonical schema.
func IsField(name string) bool {
	_, ok := kindByName[name]
	return ok
}
