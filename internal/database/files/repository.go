// Package files persists bordereaux file records and owns the status state
// machine at the storage layer: every status change goes through UpdateStatus
// or Claim, so invalid transitions cannot be written.
package files

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/bordereaux/internal/entities"
)

// ErrAlreadyClaimed is returned when a file is not in the received state at
// claim time, typically because a concurrent worker got there first.
var ErrAlreadyClaimed = errors.New("file is not available for claiming")

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

// Create registers a newly received file.
func (r *Repository) Create(file *entities.BordereauxFile) error {
	if file.Status == "" {
		file.Status = entities.StatusReceived
	}
	if file.ReceivedAt == nil {
		now := time.Now()
		file.ReceivedAt = &now
	}
	return r.db.Create(file).Error
}

func (r *Repository) GetByID(id uint) (*entities.BordereauxFile, error) {
	var file entities.BordereauxFile
	if err := r.db.First(&file, id).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

// FindByContentHash returns the most recent file with the given content
// hash, or nil when none exists.
func (r *Repository) FindByContentHash(hash string) (*entities.BordereauxFile, error) {
	var file entities.BordereauxFile
	err := r.db.Where("content_hash = ?", hash).Order("id DESC").First(&file).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *Repository) ListByStatus(status entities.FileStatus) ([]entities.BordereauxFile, error) {
	var files []entities.BordereauxFile
	err := r.db.Where("status = ?", status).Order("id ASC").Find(&files).Error
	return files, err
}

// Filter narrows List results. Zero values mean "no constraint".
type Filter struct {
	Status   entities.FileStatus
	Sender   string
	FileType entities.FileType
	Limit    int
	Offset   int
}

// List retrieves paginated files ordered by most recent first.
func (r *Repository) List(filter Filter) ([]entities.BordereauxFile, int64, error) {
	var files []entities.BordereauxFile
	var total int64

	query := r.db.Model(&entities.BordereauxFile{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Sender != "" {
		query = query.Where("sender = ?", filter.Sender)
	}
	if filter.FileType != "" {
		query = query.Where("file_type = ?", filter.FileType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	err := query.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&files).Error
	return files, total, err
}

// Claim atomically moves a file from received to matching. The conditional
// update guarantees that of N concurrent workers exactly one succeeds; the
// rest get ErrAlreadyClaimed.
func (r *Repository) Claim(id uint) error {
	result := r.db.Model(&entities.BordereauxFile{}).
		Where("id = ? AND status = ?", id, entities.StatusReceived).
		Update("status", entities.StatusMatching)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAlreadyClaimed
	}
	return nil
}

// UpdateStatus moves a file to the given status, enforcing the state
// machine against the currently stored status.
func (r *Repository) UpdateStatus(id uint, to entities.FileStatus) error {
	file, err := r.GetByID(id)
	if err != nil {
		return err
	}
	if !entities.CanTransition(file.Status, to) {
		return &entities.ErrInvalidTransition{From: file.Status, To: to}
	}
	return r.db.Model(file).Update("status", to).Error
}

// MarkFailed moves a file to the failed state and records the reason.
func (r *Repository) MarkFailed(id uint, reason string) error {
	file, err := r.GetByID(id)
	if err != nil {
		return err
	}
	if !entities.CanTransition(file.Status, entities.StatusFailed) {
		return &entities.ErrInvalidTransition{From: file.Status, To: entities.StatusFailed}
	}
	now := time.Now()
	return r.db.Model(file).Updates(map[string]any{
		"status":        entities.StatusFailed,
		"error_message": reason,
		"processed_at":  &now,
	}).Error
}

// SetMatch records the matched template on a file.
func (r *Repository) SetMatch(id uint, templateID string, score float64) error {
	return r.db.Model(&entities.BordereauxFile{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"matched_template_id": templateID,
			"match_score":         score,
		}).Error
}

// Finalize writes the row counters and the terminal status atomically.
func (r *Repository) Finalize(id uint, status entities.FileStatus, total, valid, errorRows int) error {
	file, err := r.GetByID(id)
	if err != nil {
		return err
	}
	if !entities.CanTransition(file.Status, status) {
		return &entities.ErrInvalidTransition{From: file.Status, To: status}
	}
	now := time.Now()
	return r.db.Model(file).Updates(map[string]any{
		"status":       status,
		"total_rows":   total,
		"valid_rows":   valid,
		"error_rows":   errorRows,
		"processed_at": &now,
	}).Error
}

// ResetForReprocess returns a terminal file to the received state and
// clears the artifacts of the previous run.
func (r *Repository) ResetForReprocess(id uint) error {
	file, err := r.GetByID(id)
	if err != nil {
		return err
	}
	if !file.Status.IsTerminal() {
		return fmt.Errorf("file %d is %s; only finished files can be reprocessed", id, file.Status)
	}
	return r.db.Model(file).Updates(map[string]any{
		"status":              entities.StatusReceived,
		"matched_template_id": "",
		"match_score":         0,
		"total_rows":          0,
		"valid_rows":          0,
		"error_rows":          0,
		"error_message":       "",
		"processed_at":        nil,
	}).Error
}
