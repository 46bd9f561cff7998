// Package pipeline drives a bordereaux file through matching, mapping,
// validation and persistence. Progress is tracked solely through the file's
// status; a failure in one file never affects any other file.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/mrlokans/bordereaux/internal/canonical"
	"github.com/mrlokans/bordereaux/internal/database"
	"github.com/mrlokans/bordereaux/internal/database/files"
	"github.com/mrlokans/bordereaux/internal/database/proposals"
	"github.com/mrlokans/bordereaux/internal/database/rows"
	"github.com/mrlokans/bordereaux/internal/database/templates"
	"github.com/mrlokans/bordereaux/internal/database/verrors"
	"github.com/mrlokans/bordereaux/internal/entities"
	"github.com/mrlokans/bordereaux/internal/mapper"
	"github.com/mrlokans/bordereaux/internal/matcher"
	"github.com/mrlokans/bordereaux/internal/parsers"
	"github.com/mrlokans/bordereaux/internal/storage"
	"github.com/mrlokans/bordereaux/internal/suggestion"
	"github.com/mrlokans/bordereaux/internal/validation"
)

// ErrSkipped is returned by ProcessFile when another worker already claimed
// the file. It is an expected outcome, not a failure.
var ErrSkipped = errors.New("file already claimed by another worker")

type Orchestrator struct {
	db    *database.Database
	store *storage.Store

	filesRepo     *files.Repository
	rowsRepo      *rows.Repository
	verrorsRepo   *verrors.Repository
	templatesRepo *templates.Repository
	proposalsRepo *proposals.Repository

	generator *suggestion.Generator
	rules     *validation.RuleSet

	matchThreshold float64
	sampleRows     int
}

type Options struct {
	MatchThreshold float64
	SampleRows     int
}

func NewOrchestrator(db *database.Database, store *storage.Store, generator *suggestion.Generator, rules *validation.RuleSet, opts Options) *Orchestrator {
	if opts.MatchThreshold <= 0 {
		opts.MatchThreshold = matcher.DefaultThreshold
	}
	if opts.SampleRows <= 0 {
		opts.SampleRows = 3
	}
	if rules == nil {
		rules = validation.DefaultRuleSet()
	}
	return &Orchestrator{
		db:             db,
		store:          store,
		filesRepo:      files.NewRepository(db.DB),
		rowsRepo:       rows.NewRepository(db.DB),
		verrorsRepo:    verrors.NewRepository(db.DB),
		templatesRepo:  templates.NewRepository(db.DB),
		proposalsRepo:  proposals.NewRepository(db.DB),
		generator:      generator,
		rules:          rules,
		matchThreshold: opts.MatchThreshold,
		sampleRows:     opts.SampleRows,
	}
}

// ProcessFile runs one file through the full pipeline. Exactly one of N
// concurrent calls for the same file proceeds; the rest return ErrSkipped.
// A processing failure moves the file to failed and is returned for logging.
func (o *Orchestrator) ProcessFile(ctx context.Context, fileID uint) error {
	if err := o.filesRepo.Claim(fileID); err != nil {
		if errors.Is(err, files.ErrAlreadyClaimed) {
			return ErrSkipped
		}
		return fmt.Errorf("claim file %d: %w", fileID, err)
	}

	if err := o.run(ctx, fileID); err != nil {
		log.Printf("[PIPELINE] file %d failed: %v", fileID, err)
		if markErr := o.filesRepo.MarkFailed(fileID, err.Error()); markErr != nil {
			log.Printf("[PIPELINE] could not mark file %d failed: %v", fileID, markErr)
		}
		return fmt.Errorf("process file %d: %w", fileID, err)
	}
	return nil
}

func (o *Orchestrator) run(ctx context.Context, fileID uint) error {
	file, err := o.filesRepo.GetByID(fileID)
	if err != nil {
		return fmt.Errorf("load file: %w", err)
	}

	data, err := o.store.Fetch(file.ContentHash)
	if err != nil {
		return fmt.Errorf("fetch content: %w", err)
	}

	decoded, err := parsers.DecodeCSV(data)
	if err != nil {
		return err
	}

	catalog, err := o.templatesRepo.ListActive(file.FileType)
	if err != nil {
		return fmt.Errorf("load template catalog: %w", err)
	}

	result, err := matcher.Match(decoded.Headers, file.FileType, catalog, o.matchThreshold)
	if err != nil {
		return fmt.Errorf("match templates: %w", err)
	}
	if !result.Matched() {
		return o.suggest(ctx, file, decoded)
	}

	if err := o.filesRepo.SetMatch(file.ID, result.Template.TemplateID, result.Score); err != nil {
		return fmt.Errorf("record match: %w", err)
	}
	if err := o.filesRepo.UpdateStatus(file.ID, entities.StatusMapping); err != nil {
		return err
	}

	mapped, err := mapper.MapRows(file.ID, result.Template, decoded.Headers, decoded.Rows)
	if err != nil {
		return fmt.Errorf("map rows: %w", err)
	}

	if err := o.filesRepo.UpdateStatus(file.ID, entities.StatusValidating); err != nil {
		return err
	}

	verdicts, violations := o.rules.ValidateRows(mapped)
	violations = append(violations, conversionWarnings(mapped)...)

	if err := o.filesRepo.UpdateStatus(file.ID, entities.StatusPersisting); err != nil {
		return err
	}

	return o.persist(file.ID, mapped, verdicts, violations)
}

// suggest handles the no-match branch: generate a mapping proposal and park
// the file until a human approves a template.
func (o *Orchestrator) suggest(ctx context.Context, file *entities.BordereauxFile, decoded *parsers.Decoded) error {
	if err := o.filesRepo.UpdateStatus(file.ID, entities.StatusSuggesting); err != nil {
		return err
	}

	sample := decoded.Rows
	if len(sample) > o.sampleRows {
		sample = sample[:o.sampleRows]
	}

	proposal, err := o.generator.Generate(ctx, file.ID, decoded.Headers, sample)
	if err != nil {
		return fmt.Errorf("generate proposal: %w", err)
	}
	if err := o.proposalsRepo.Create(proposal); err != nil {
		return fmt.Errorf("save proposal: %w", err)
	}

	log.Printf("[PIPELINE] file %d matched no template; proposal %s created (%s, confidence %.2f)",
		file.ID, proposal.ProposalID, proposal.Source, proposal.OverallConfidence)

	return o.filesRepo.UpdateStatus(file.ID, entities.StatusNeedsTemplate)
}

// persist writes valid rows, all recorded violations, the counters and the
// terminal status in one transaction, so observers never see a half-written
// outcome.
func (o *Orchestrator) persist(fileID uint, mapped []*canonical.Row, verdicts []validation.Verdict, violations []entities.ValidationError) error {
	validRows := make([]*canonical.Row, 0, len(mapped))
	errorRows := 0
	for i, verdict := range verdicts {
		if verdict.Valid {
			validRows = append(validRows, mapped[i])
		} else {
			errorRows++
		}
	}

	status := entities.StatusProcessed
	if errorRows > 0 {
		status = entities.StatusPartiallyProcessed
	}

	return o.db.DB.Transaction(func(tx *gorm.DB) error {
		if err := o.rowsRepo.WithTx(tx).SaveRows(validRows); err != nil {
			return fmt.Errorf("save rows: %w", err)
		}
		if err := o.verrorsRepo.WithTx(tx).SaveErrors(violations); err != nil {
			return fmt.Errorf("save validation errors: %w", err)
		}
		if err := o.filesRepo.WithTx(tx).Finalize(fileID, status, len(mapped), len(validRows), errorRows); err != nil {
			return fmt.Errorf("finalize file: %w", err)
		}
		return nil
	})
}

// conversionWarnings records mapper conversion notes as warning-severity
// errors so reviewers can see why a field is absent from a persisted row.
func conversionWarnings(mapped []*canonical.Row) []entities.ValidationError {
	var warnings []entities.ValidationError
	for _, row := range mapped {
		for _, note := range row.Notes {
			warnings = append(warnings, entities.ValidationError{
				FileID:    row.FileID,
				RowIndex:  row.Index,
				FieldName: note.Field,
				RuleName:  "conversion",
				Severity:  entities.SeverityWarning,
				Message:   fmt.Sprintf("could not convert %q: %s", note.RawValue, note.Reason),
			})
		}
	}
	return warnings
}

// ProcessBatch processes every file currently in the received state. Failed
// and already-claimed files are logged and skipped; the batch never aborts.
func (o *Orchestrator) ProcessBatch(ctx context.Context) (processed, failed int, err error) {
	pending, err := o.filesRepo.ListByStatus(entities.StatusReceived)
	if err != nil {
		return 0, 0, fmt.Errorf("list received files: %w", err)
	}

	for _, file := range pending {
		if ctx.Err() != nil {
			return processed, failed, ctx.Err()
		}
		switch err := o.ProcessFile(ctx, file.ID); {
		case err == nil:
			processed++
		case errors.Is(err, ErrSkipped):
			// Claimed elsewhere; nothing to do.
		default:
			failed++
		}
	}
	return processed, failed, nil
}

// Reprocess clears a finished file's previous results and returns it to the
// received state so the next sweep picks it up again.
func (o *Orchestrator) Reprocess(fileID uint) error {
	return o.db.DB.Transaction(func(tx *gorm.DB) error {
		if err := o.rowsRepo.WithTx(tx).DeleteByFile(fileID); err != nil {
			return fmt.Errorf("clear rows: %w", err)
		}
		if err := o.verrorsRepo.WithTx(tx).DeleteByFile(fileID); err != nil {
			return fmt.Errorf("clear validation errors: %w", err)
		}
		return o.filesRepo.WithTx(tx).ResetForReprocess(fileID)
	})
}
