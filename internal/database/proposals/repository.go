// Package proposals persists mapping proposals awaiting human review.
package proposals

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/bordereaux/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(proposal *entities.MappingProposal) error {
	if proposal.Status == "" {
		proposal.Status = entities.ProposalPending
	}
	return r.db.Create(proposal).Error
}

func (r *Repository) GetByProposalID(proposalID string) (*entities.MappingProposal, error) {
	var proposal entities.MappingProposal
	if err := r.db.Where("proposal_id = ?", proposalID).First(&proposal).Error; err != nil {
		return nil, err
	}
	return &proposal, nil
}

// List retrieves paginated proposals, optionally filtered by review status,
// most recent first.
func (r *Repository) List(status entities.ProposalStatus, limit, offset int) ([]entities.MappingProposal, int64, error) {
	var result []entities.MappingProposal
	var total int64

	query := r.db.Model(&entities.MappingProposal{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	err := query.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&result).Error
	return result, total, err
}

// ListByFile returns all proposals generated for a file, most recent first.
func (r *Repository) ListByFile(fileID uint) ([]entities.MappingProposal, error) {
	var result []entities.MappingProposal
	err := r.db.Where("file_id = ?", fileID).Order("id DESC").Find(&result).Error
	return result, err
}

// Approve marks a pending proposal approved. Only pending proposals can be
// reviewed.
func (r *Repository) Approve(proposalID string) (*entities.MappingProposal, error) {
	return r.review(proposalID, entities.ProposalApproved)
}

// Reject marks a pending proposal rejected.
func (r *Repository) Reject(proposalID string) (*entities.MappingProposal, error) {
	return r.review(proposalID, entities.ProposalRejected)
}

func (r *Repository) review(proposalID string, status entities.ProposalStatus) (*entities.MappingProposal, error) {
	proposal, err := r.GetByProposalID(proposalID)
	if err != nil {
		return nil, err
	}
	if proposal.Status != entities.ProposalPending {
		return nil, fmt.Errorf("proposal %s is already %s", proposalID, proposal.Status)
	}
	now := time.Now()
	err = r.db.Model(proposal).Updates(map[string]any{
		"status":      status,
		"reviewed_at": &now,
	}).Error
	if err != nil {
		return nil, err
	}
	return proposal, nil
}
