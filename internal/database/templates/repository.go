// Package templates persists the template catalog used by the matcher.
package templates

import (
	"errors"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"github.com/mrlokans/bordereaux/internal/canonical"
	"github.com/mrlokans/bordereaux/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create validates a template's mappings against the canonical schema and
// stores it. Mapping keys must stay unique after header normalization and
// each canonical field may be targeted by at most one column, so a single
// file header can never satisfy two template keys.
func (r *Repository) Create(template *entities.Template) error {
	mappings, err := template.Mappings()
	if err != nil {
		return err
	}
	if len(mappings) == 0 {
		return fmt.Errorf("template %s has no column mappings", template.TemplateID)
	}

	headers := make([]string, 0, len(mappings))
	for header := range mappings {
		headers = append(headers, header)
	}
	sort.Strings(headers)

	sourceByNorm := make(map[string]string, len(mappings))
	sourceByField := make(map[string]string, len(mappings))
	for _, header := range headers {
		field := mappings[header]
		if !canonical.IsField(field) {
			return fmt.Errorf("template %s maps %q to unknown field %q", template.TemplateID, header, field)
		}
		norm := canonical.NormalizeHeader(header)
		if other, ok := sourceByNorm[norm]; ok {
			return fmt.Errorf("template %s columns %q and %q collide after normalization", template.TemplateID, other, header)
		}
		sourceByNorm[norm] = header
		if other, ok := sourceByField[field]; ok {
			return fmt.Errorf("template %s maps both %q and %q to %q", template.TemplateID, other, header, field)
		}
		sourceByField[field] = header
	}

	return r.db.Create(template).Error
}

func (r *Repository) GetByTemplateID(templateID string) (*entities.Template, error) {
	var template entities.Template
	if err := r.db.Where("template_id = ?", templateID).First(&template).Error; err != nil {
		return nil, err
	}
	return &template, nil
}

// ListActive returns active templates, optionally narrowed to a file type.
// Files of unknown type match against the whole catalog.
func (r *Repository) ListActive(fileType entities.FileType) ([]entities.Template, error) {
	query := r.db.Where("active = ?", true)
	if fileType != "" && fileType != entities.FileTypeUnknown {
		query = query.Where("file_type = ?", fileType)
	}
	var result []entities.Template
	err := query.Order("template_id ASC").Find(&result).Error
	return result, err
}

// List returns the full catalog including inactive templates.
func (r *Repository) List() ([]entities.Template, error) {
	var result []entities.Template
	err := r.db.Order("template_id ASC").Find(&result).Error
	return result, err
}

// Deactivate retires a template from matching without deleting it.
func (r *Repository) Deactivate(templateID string) error {
	result := r.db.Model(&entities.Template{}).
		Where("template_id = ?", templateID).
		Update("active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CreateFromProposal turns an approved proposal's candidates into a new
// active template.
func (r *Repository) CreateFromProposal(proposal *entities.MappingProposal, templateID, name string, fileType entities.FileType) (*entities.Template, error) {
	candidates, err := proposal.Candidates()
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, errors.New("proposal has no field candidates")
	}

	mappings := make(map[string]string, len(candidates))
	for field, candidate := range candidates {
		mappings[candidate.SourceHeader] = field
	}

	template := &entities.Template{
		TemplateID: templateID,
		Name:       name,
		FileType:   fileType,
		Active:     true,
	}
	if err := template.SetMappings(mappings); err != nil {
		return nil, err
	}
	if err := r.Create(template); err != nil {
		return nil, err
	}
	return template, nil
}
