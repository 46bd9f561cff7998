package entities

import (
	"fmt"
	"time"
)

// FileStatus is the processing state of a bordereaux file. Transitions
// are only allowed through CanTransition; anything else fails closed.
type FileStatus string

const (
	StatusReceived           FileStatus = "received"
	StatusMatching           FileStatus = "matching"
	StatusMapping            FileStatus = "mapping"
	StatusValidating         FileStatus = "validating"
	StatusPersisting         FileStatus = "persisting"
	StatusSuggesting         FileStatus = "suggesting"
	StatusProcessed          FileStatus = "processed"
	StatusPartiallyProcessed FileStatus = "partially_processed"
	StatusNeedsTemplate      FileStatus = "needs_template"
	StatusFailed             FileStatus = "failed"
)

// FileType hints which template catalog subset applies to a file.
type FileType string

const (
	FileTypeClaims   FileType = "claims"
	FileTypePremium  FileType = "premium"
	FileTypeExposure FileType = "exposure"
	FileTypeUnknown  FileType = "unknown"
)

// validTransitions is the single source of truth for the status state machine.
// Terminal states may only move back to "received" via an explicit reprocess.
var validTransitions = map[FileStatus][]FileStatus{
	StatusReceived:           {StatusMatching, StatusFailed},
	StatusMatching:           {StatusMapping, StatusSuggesting, StatusFailed},
	StatusMapping:            {StatusValidating, StatusFailed},
	StatusValidating:         {StatusPersisting, StatusFailed},
	StatusPersisting:         {StatusProcessed, StatusPartiallyProcessed, StatusFailed},
	StatusSuggesting:         {StatusNeedsTemplate, StatusFailed},
	StatusProcessed:          {StatusReceived},
	StatusPartiallyProcessed: {StatusReceived},
	StatusNeedsTemplate:      {StatusReceived},
	StatusFailed:             {StatusReceived},
}

// CanTransition reports whether moving from one status to another is allowed.
func CanTransition(from, to FileStatus) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a status is an end state of a pipeline run.
func (s FileStatus) IsTerminal() bool {
	switch s {
	case StatusProcessed, StatusPartiallyProcessed, StatusNeedsTemplate, StatusFailed:
		return true
	}
	return false
}

// ErrInvalidTransition is returned when a status change violates the state machine.
type ErrInvalidTransition struct {
	From FileStatus
	To   FileStatus
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("invalid file status transition: %s -> %s", e.From, e.To)
}

// BordereauxFile tracks a received bordereaux file through the pipeline.
// Status is the single source of truth for pipeline progress.
type BordereauxFile struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Filename    string     `gorm:"size:255;index" json:"filename"`
	ContentHash string     `gorm:"size:64;index" json:"content_hash"`
	FileType    FileType   `gorm:"size:20;index" json:"file_type"`
	Sender      string     `gorm:"size:255;index" json:"sender,omitempty"`
	Subject     string     `gorm:"size:500" json:"subject,omitempty"`
	Status      FileStatus `gorm:"size:30;index" json:"status"`

	// Populated when a template matched.
	MatchedTemplateID string  `gorm:"size:100" json:"matched_template_id,omitempty"`
	MatchScore        float64 `json:"match_score,omitempty"`

	// Counters are written atomically with the terminal status.
	TotalRows int `json:"total_rows"`
	ValidRows int `json:"valid_rows"`
	ErrorRows int `json:"error_rows"`

	ErrorMessage string `gorm:"size:1000" json:"error_message,omitempty"`

	ReceivedAt  *time.Time `json:"received_at,omitempty"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (BordereauxFile) TableName() string {
	return "bordereaux_files"
}
