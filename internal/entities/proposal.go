package entities

import (
	"encoding/json"
	"fmt"
	"time"
)

// ProposalSource tags which strategy produced a mapping proposal.
type ProposalSource string

const (
	ProposalSourceAI        ProposalSource = "ai"
	ProposalSourceHeuristic ProposalSource = "heuristic"
)

// ProposalStatus is the human review state of a proposal.
type ProposalStatus string

const (
	ProposalPending  ProposalStatus = "pending"
	ProposalApproved ProposalStatus = "approved"
	ProposalRejected ProposalStatus = "rejected"
)

// FieldCandidate is one suggested source header for a canonical field.
type FieldCandidate struct {
	SourceHeader string  `json:"source_header"`
	Confidence   float64 `json:"confidence"`
}

// MappingProposal is a candidate column mapping generated for a file that
// matched no template. It only becomes a Template through human approval.
type MappingProposal struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	ProposalID string         `gorm:"size:36;uniqueIndex" json:"proposal_id"`
	FileID     uint           `gorm:"index;not null" json:"file_id"`
	Source     ProposalSource `gorm:"size:20" json:"source"`
	Status     ProposalStatus `gorm:"size:20;index" json:"status"`

	OverallConfidence float64 `json:"overall_confidence"`

	// JSON object: canonical field -> FieldCandidate. Unmapped fields absent.
	FieldMappings string `gorm:"type:text" json:"-"`
	// JSON array of the file's raw headers, kept for the review UI.
	Headers string `gorm:"type:text" json:"-"`

	CreatedAt  time.Time  `json:"created_at"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
}

func (MappingProposal) TableName() string {
	return "mapping_proposals"
}

// Candidates decodes the stored per-field candidates.
func (p *MappingProposal) Candidates() (map[string]FieldCandidate, error) {
	m := make(map[string]FieldCandidate)
	if p.FieldMappings == "" {
		return m, nil
	}
	if err := json.Unmarshal([]byte(p.FieldMappings), &m); err != nil {
		return nil, fmt.Errorf("decode proposal %s field mappings: %w", p.ProposalID, err)
	}
	return m, nil
}

// SetCandidates encodes and stores the per-field candidates.
func (p *MappingProposal) SetCandidates(m map[string]FieldCandidate) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode proposal field mappings: %w", err)
	}
	p.FieldMappings = string(data)
	return nil
}

// HeaderList decodes the stored raw header list.
func (p *MappingProposal) HeaderList() ([]string, error) {
	var headers []string
	if p.Headers == "" {
		return headers, nil
	}
	if err := json.Unmarshal([]byte(p.Headers), &headers); err != nil {
		return nil, fmt.Errorf("decode proposal %s headers: %w", p.ProposalID, err)
	}
	return headers, nil
}

// SetHeaderList encodes and stores the raw header list.
func (p *MappingProposal) SetHeaderList(headers []string) error {
	data, err := json.Marshal(headers)
	if err != nil {
		return fmt.Errorf("encode proposal headers: %w", err)
	}
	p.Headers = string(data)
	return nil
}
