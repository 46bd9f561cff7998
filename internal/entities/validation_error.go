package entities

import "time"

// Severity classifies a validation violation. Only error-severity
// violations block persistence of a row.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ValidationError records a single rule violation for a row in a file.
// Rows are append-only; errors are superseded wholesale on reprocess.
type ValidationError struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	FileID   uint `gorm:"index;not null" json:"file_id"`
	RowIndex int  `gorm:"index" json:"row_index"`

	FieldName string   `gorm:"size:100" json:"field_name,omitempty"` // empty for row-wide rules
	RuleName  string   `gorm:"size:100;index" json:"rule_name"`
	Severity  Severity `gorm:"size:10;index" json:"severity"`
	Message   string   `gorm:"size:500" json:"message"`

	CreatedAt time.Time `json:"created_at"`
}

func (ValidationError) TableName() string {
	return "bordereaux_validation_errors"
}
