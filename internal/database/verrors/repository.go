// Package verrors persists validation errors recorded while processing a file.
package verrors

import (
	"gorm.io/gorm"

	"github.com/mrlokans/bordereaux/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// SaveErrors persists the full ordered error list of a processing run.
func (r *Repository) SaveErrors(errs []entities.ValidationError) error {
	if len(errs) == 0 {
		return nil
	}
	return r.db.Create(&errs).Error
}

// ListByFile retrieves paginated validation errors for a file, in the order
// they were recorded.
func (r *Repository) ListByFile(fileID uint, limit, offset int) ([]entities.ValidationError, int64, error) {
	var errs []entities.ValidationError
	var total int64

	query := r.db.Model(&entities.ValidationError{}).Where("file_id = ?", fileID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	err := query.Order("row_index ASC, id ASC").Limit(limit).Offset(offset).Find(&errs).Error
	return errs, total, err
}

// DeleteByFile removes all recorded errors of a file, used on reprocess.
func (r *Repository) DeleteByFile(fileID uint) error {
	return r.db.Where("file_id = ?", fileID).Delete(&entities.ValidationError{}).Error
}
