package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/bordereaux/internal/config"
	"github.com/mrlokans/bordereaux/internal/database"
	"github.com/mrlokans/bordereaux/internal/entrypoint"
	"github.com/mrlokans/bordereaux/internal/pipeline"
)

// ReprocessCommand resets a finished file and runs it through the pipeline
// again synchronously.
type ReprocessCommand struct {
	FileID       uint
	DatabasePath string
	StorageDir   string
	RulesPath    string
}

func NewReprocessCommand() *ReprocessCommand {
	return &ReprocessCommand{}
}

func (cmd *ReprocessCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("reprocess", flag.ExitOnError)

	var fileID uint64
	fs.Uint64Var(&fileID, "id", 0, "ID of the file to reprocess (required)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.StringVar(&cmd.StorageDir, "storage", config.DefaultStorageDir, "Directory holding received file blobs")
	fs.StringVar(&cmd.RulesPath, "rules", "", "Validation rules document (defaults to built-in rules)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s reprocess -id <file-id> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Reset a processed, partially processed or failed file and run it again.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fileID == 0 {
		return fmt.Errorf("required flag -id not provided")
	}
	cmd.FileID = uint(fileID)

	return nil
}

func (cmd *ReprocessCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	cfg := config.NewConfig()
	cfg.Database.Path = cmd.DatabasePath
	cfg.Storage.Dir = cmd.StorageDir
	cfg.Rules.Path = cmd.RulesPath

	orchestrator, _, err := entrypoint.BuildOrchestrator(cfg, db)
	if err != nil {
		return err
	}

	if err := orchestrator.Reprocess(cmd.FileID); err != nil {
		return fmt.Errorf("cannot reprocess file %d: %w", cmd.FileID, err)
	}

	if err := orchestrator.ProcessFile(context.Background(), cmd.FileID); err != nil {
		if errors.Is(err, pipeline.ErrSkipped) {
			fmt.Printf("File %d was picked up by another worker\n", cmd.FileID)
			return nil
		}
		return err
	}

	fmt.Printf("File %d reprocessed\n", cmd.FileID)
	return nil
}
