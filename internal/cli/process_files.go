package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/bordereaux/internal/config"
	"github.com/mrlokans/bordereaux/internal/database"
	"github.com/mrlokans/bordereaux/internal/entrypoint"
)

// ProcessFilesCommand runs the pipeline synchronously over every file that
// is waiting in received status. Useful for one-shot runs and cron jobs when
// the HTTP server is not deployed.
type ProcessFilesCommand struct {
	DatabasePath string
	StorageDir   string
	RulesPath    string
}

func NewProcessFilesCommand() *ProcessFilesCommand {
	return &ProcessFilesCommand{}
}

func (cmd *ProcessFilesCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("process-files", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.StringVar(&cmd.StorageDir, "storage", config.DefaultStorageDir, "Directory holding received file blobs")
	fs.StringVar(&cmd.RulesPath, "rules", "", "Validation rules document (defaults to built-in rules)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s process-files [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Run the processing pipeline over all files waiting in 'received' status.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *ProcessFilesCommand) Run() error {
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

	processed, failed, err := orchestrator.ProcessBatch(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("Processed: %d, failed: %d\n", processed, failed)
	return nil
}
