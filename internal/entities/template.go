package entities

import (
	"encoding/json"
	"fmt"
	"time"
)

// Template maps one known file layout's column headers onto canonical fields.
// Once a template has been matched against a file it is treated as immutable;
// layout changes are captured as a new template.
type Template struct {
	ID         uint     `gorm:"primaryKey" json:"id"`
	TemplateID string   `gorm:"size:100;uniqueIndex;not null" json:"template_id"`
	Name       string   `gorm:"size:255" json:"name"`
	FileType   FileType `gorm:"size:20;index" json:"file_type"`

	// JSON object: normalized source header -> canonical field name.
	ColumnMappings string `gorm:"type:text;not null" json:"-"`

	Active    bool      `gorm:"index;default:true" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Template) TableName() string {
	return "templates"
}

// Mappings decodes the stored column mappings.
func (t *Template) Mappings() (map[string]string, error) {
	m := make(map[string]string)
	if t.ColumnMappings == "" {
		return m, nil
	}
	if err := json.Unmarshal([]byte(t.ColumnMappings), &m); err != nil {
		return nil, fmt.Errorf("decode column mappings for template %s: %w", t.TemplateID, err)
	}
	return m, nil
}

// SetMappings encodes and stores the column mappings.
func (t *Template) SetMappings(m map[string]string) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode column mappings: %w", err)
	}
	t.ColumnMappings = string(data)
	return nil
}
