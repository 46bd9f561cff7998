package validation

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mrlokans/bordereaux/internal/canonical"
	"github.com/mrlokans/bordereaux/internal/entities"
)

// rulesDocument is the on-disk shape of a rule-set configuration file.
type rulesDocument struct {
	RequiredFields []string          `json:"required_fields"`
	DateRules      []dateRuleSpec    `json:"date_rules"`
	NumericRules   []numericRuleSpec `json:"numeric_rules"`
}

type dateRuleSpec struct {
	Name           string `json:"name"`
	InceptionField string `json:"inception_field"`
	ExpiryField    string `json:"expiry_field"`
	Severity       string `json:"severity,omitempty"`
	Message        string `json:"message"`
}

type numericRuleSpec struct {
	Name     string   `json:"name"`
	Field    string   `json:"field"`
	Min      *float64 `json:"min_value,omitempty"`
	Max      *float64 `json:"max_value,omitempty"`
	Severity string   `json:"severity,omitempty"`
	Message  string   `json:"message"`
}

// LoadRuleSet reads a rule-set document from disk. Rule order in the
// resulting set follows the document: required fields first, then date
// rules, then numeric rules, each in listed order.
func LoadRuleSet(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file %s: %w", path, err)
	}
	return ParseRuleSet(data)
}

// ParseRuleSet builds a RuleSet from a JSON rule-set document.
func ParseRuleSet(data []byte) (*RuleSet, error) {
	var doc rulesDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse rules document: %w", err)
	}

	rs := &RuleSet{}

	for _, field := range doc.RequiredFields {
		if !canonical.IsField(field) {
			return nil, fmt.Errorf("required-field rule targets unknown field %q", field)
		}
		rs.Rules = append(rs.Rules, Rule{
			Kind:     KindRequired,
			Name:     "required_" + field,
			Severity: entities.SeverityError,
			Field:    field,
		})
	}

	for _, spec := range doc.DateRules {
		if spec.Name == "" {
			return nil, fmt.Errorf("date rule missing name")
		}
		if !canonical.IsField(spec.InceptionField) || !canonical.IsField(spec.ExpiryField) {
			return nil, fmt.Errorf("date rule %q targets unknown field", spec.Name)
		}
		rs.Rules = append(rs.Rules, Rule{
			Kind:           KindDateOrder,
			Name:           spec.Name,
			Severity:       parseSeverity(spec.Severity),
			Message:        spec.Message,
			InceptionField: spec.InceptionField,
			ExpiryField:    spec.ExpiryField,
		})
	}

	for _, spec := range doc.NumericRules {
		if spec.Name == "" {
			return nil, fmt.Errorf("numeric rule missing name")
		}
		if !canonical.IsField(spec.Field) {
			return nil, fmt.Errorf("numeric rule %q targets unknown field %q", spec.Name, spec.Field)
		}
		if spec.Min == nil && spec.Max == nil {
			return nil, fmt.Errorf("numeric rule %q needs min_value and/or max_value", spec.Name)
		}
		rs.Rules = append(rs.Rules, Rule{
			Kind:     KindNumericRange,
			Name:     spec.Name,
			Severity: parseSeverity(spec.Severity),
			Message:  spec.Message,
			Field:    spec.Field,
			Min:      spec.Min,
			Max:      spec.Max,
		})
	}

	return rs, nil
}

func parseSeverity(s string) entities.Severity {
	if s == string(entities.SeverityWarning) {
		return entities.SeverityWarning
	}
	return entities.SeverityError
}

// DefaultRuleSet is used when no rules file is configured: policy number is
// mandatory, policy periods must be ordered, and monetary amounts on the
// premium side must be non-negative.
func DefaultRuleSet() *RuleSet {
	zero := 0.0
	return &RuleSet{Rules: []Rule{
		{
			Kind:     KindRequired,
			Name:     "required_policy_number",
			Severity: entities.SeverityError,
			Field:    canonical.FieldPolicyNumber,
		},
		{
			Kind:           KindDateOrder,
			Name:           "inception_before_expiry",
			Severity:       entities.SeverityError,
			Message:        "inception date must be before or equal to expiry date",
			InceptionField: canonical.FieldInceptionDate,
			ExpiryField:    canonical.FieldExpiryDate,
		},
		{
			Kind:     KindNumericRange,
			Name:     "premium_non_negative",
			Severity: entities.SeverityError,
			Message:  "premium amount must be greater than or equal to 0",
			Field:    canonical.FieldPremiumAmount,
			Min:      &zero,
		},
	}}
}
