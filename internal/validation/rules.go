// Package validation evaluates a configured rule set against canonical
// rows. Rules are a closed set of kinds evaluated by an exhaustive
// dispatcher; every rule runs on every row and violations are collected in
// rule-definition order so error reports are reproducible.
package validation

import (
	"fmt"

	"github.com/mrlokans/bordereaux/internal/canonical"
	"github.com/mrlokans/bordereaux/internal/entities"
)

// RuleKind is the closed set of supported rule kinds.
type RuleKind string

const (
	KindRequired     RuleKind = "required"
	KindDateOrder    RuleKind = "date_order"
	KindNumericRange RuleKind = "numeric_range"
)

// Rule is one configured check. Which members are meaningful depends on Kind:
// required uses Field; date_order uses InceptionField/ExpiryField;
// numeric_range uses Field plus Min and/or Max.
type Rule struct {
	Kind     RuleKind
	Name     string
	Severity entities.Severity
	Message  string

	Field          string
	InceptionField string
	ExpiryField    string
	Min            *float64
	Max            *float64
}

// RuleSet is the ordered collection of rules applied to every row.
type RuleSet struct {
	Rules []Rule
}

// Verdict is the outcome of validating one row.
type Verdict struct {
	RowIndex   int
	Valid      bool // zero error-severity violations
	Violations []entities.ValidationError
}

// ValidateRow evaluates every rule against the row, independently and
// without short-circuiting, returning violations in rule-definition order.
func (rs *RuleSet) ValidateRow(row *canonical.Row) Verdict {
	verdict := Verdict{RowIndex: row.Index, Valid: true}

	for _, rule := range rs.Rules {
		var violation *entities.ValidationError
		switch rule.Kind {
		case KindRequired:
			violation = evalRequired(rule, row)
		case KindDateOrder:
			violation = evalDateOrder(rule, row)
		case KindNumericRange:
			violation = evalNumericRange(rule, row)
		default:
			// Unknown kinds are rejected at load time; reaching here is a bug.
			panic(fmt.Sprintf("validation: unhandled rule kind %q", rule.Kind))
		}
		if violation == nil {
			continue
		}
		violation.FileID = row.FileID
		violation.RowIndex = row.Index
		verdict.Violations = append(verdict.Violations, *violation)
		if violation.Severity == entities.SeverityError {
			verdict.Valid = false
		}
	}

	return verdict
}

// ValidateRows evaluates all rows, preserving row order. The returned error
// list is the concatenation of per-row violations.
func (rs *RuleSet) ValidateRows(rows []*canonical.Row) ([]Verdict, []entities.ValidationError) {
	verdicts := make([]Verdict, 0, len(rows))
	var all []entities.ValidationError
	for _, row := range rows {
		v := rs.ValidateRow(row)
		verdicts = append(verdicts, v)
		all = append(all, v.Violations...)
	}
	return verdicts, all
}

func evalRequired(rule Rule, row *canonical.Row) *entities.ValidationError {
	if row.Has(rule.Field) {
		return nil
	}
	return violationFor(rule, rule.Field, fmt.Sprintf("required field %q is missing or empty", rule.Field))
}

func evalDateOrder(rule Rule, row *canonical.Row) *entities.ValidationError {
	inception, okA := row.Date(rule.InceptionField)
	expiry, okB := row.Date(rule.ExpiryField)
	if !okA || !okB {
		// A date-order rule needs both operands; an absent or unparsable
		// date is itself a violation of the rule.
		field := rule.InceptionField
		if okA {
			field = rule.ExpiryField
		}
		return violationFor(rule, field, fmt.Sprintf("date-order rule %q requires valid %s and %s", rule.Name, rule.InceptionField, rule.ExpiryField))
	}
	if inception.After(expiry) {
		return violationFor(rule, rule.InceptionField, fmt.Sprintf("%s must not be after %s", rule.InceptionField, rule.ExpiryField))
	}
	return nil
}

func evalNumericRange(rule Rule, row *canonical.Row) *entities.ValidationError {
	value, ok := row.Decimal(rule.Field)
	if !ok {
		return violationFor(rule, rule.Field, fmt.Sprintf("numeric rule %q requires a valid %s", rule.Name, rule.Field))
	}
	f, _ := value.Float64()
	if rule.Min != nil && f < *rule.Min {
		return violationFor(rule, rule.Field, fmt.Sprintf("%s is below the configured minimum", rule.Field))
	}
	if rule.Max != nil && f > *rule.Max {
		return violationFor(rule, rule.Field, fmt.Sprintf("%s is above the configured maximum", rule.Field))
	}
	return nil
}

func violationFor(rule Rule, field, fallbackMessage string) *entities.ValidationError {
	message := rule.Message
	if message == "" {
		message = fallbackMessage
	}
	severity := rule.Severity
	if severity == "" {
		severity = entities.SeverityError
	}
	return &entities.ValidationError{
		FieldName: field,
		RuleName:  rule.Name,
		Severity:  severity,
		Message:   message,
	}
}
