// Package services holds the business logic that sits between the HTTP/CLI
// surfaces and the repositories.
package services

import (
	"fmt"
	"log"
	"strings"

	"github.com/mrlokans/bordereaux/internal/database"
	"github.com/mrlokans/bordereaux/internal/database/files"
	"github.com/mrlokans/bordereaux/internal/entities"
	"github.com/mrlokans/bordereaux/internal/storage"
)

// IntakeService registers incoming bordereaux files: the raw bytes go to the
// content-addressed store, the metadata becomes a received file record.
type IntakeService struct {
	store     *storage.Store
	filesRepo *files.Repository
}

func NewIntakeService(db *database.Database, store *storage.Store) *IntakeService {
	return &IntakeService{
		store:     store,
		filesRepo: files.NewRepository(db.DB),
	}
}

// Receive stores the file content and creates a received record for the
// pipeline. duplicate reports that identical bytes were already ingested;
// the file is registered again regardless, since the same layout may arrive
// legitimately more than once (e.g. corrected resends are byte-different,
// while true duplicates are worth surfacing to the caller).
func (s *IntakeService) Receive(filename, sender, subject string, data []byte) (*entities.BordereauxFile, bool, error) {
	if len(data) == 0 {
		return nil, false, fmt.Errorf("file %q is empty", filename)
	}

	hash, duplicate, err := s.store.Save(data)
	if err != nil {
		return nil, false, fmt.Errorf("store content of %q: %w", filename, err)
	}

	file := &entities.BordereauxFile{
		Filename:    filename,
		ContentHash: hash,
		FileType:    DetectFileType(filename, subject),
		Sender:      sender,
		Subject:     subject,
	}
	if err := s.filesRepo.Create(file); err != nil {
		return nil, false, fmt.Errorf("register file %q: %w", filename, err)
	}

	log.Printf("[INTAKE] received %q from %s (file %d, type %s, duplicate=%t)",
		filename, sender, file.ID, file.FileType, duplicate)

	return file, duplicate, nil
}

// DetectFileType guesses the bordereaux kind from the filename and subject.
// Unknown is a valid answer: such files match against the whole catalog.
func DetectFileType(filename, subject string) entities.FileType {
	haystack := strings.ToLower(filename + " " + subject)
	switch {
	case strings.Contains(haystack, "claim") || strings.Contains(haystack, "loss"):
		return entities.FileTypeClaims
	case strings.Contains(haystack, "premium") || strings.Contains(haystack, "prem"):
		return entities.FileTypePremium
	case strings.Contains(haystack, "exposure") || strings.Contains(haystack, "risk"):
		return entities.FileTypeExposure
	default:
		return entities.FileTypeUnknown
	}
}
