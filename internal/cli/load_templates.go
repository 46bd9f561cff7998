package cli

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mrlokans/bordereaux/internal/config"
	"github.com/mrlokans/bordereaux/internal/database"
	"github.com/mrlokans/bordereaux/internal/database/templates"
	"github.com/mrlokans/bordereaux/internal/entities"
)

// LoadTemplatesCommand bulk-loads template definitions from a directory of
// JSON documents into the catalog.
type LoadTemplatesCommand struct {
	Dir          string
	DatabasePath string
	DryRun       bool
}

// templateDocument is the on-disk shape of one template definition.
type templateDocument struct {
	TemplateID     string            `json:"template_id"`
	Name           string            `json:"name"`
	FileType       string            `json:"file_type"`
	ColumnMappings map[string]string `json:"column_mappings"`
}

func NewLoadTemplatesCommand() *LoadTemplatesCommand {
	return &LoadTemplatesCommand{}
}

func (cmd *LoadTemplatesCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("load-templates", flag.ExitOnError)

	fs.StringVar(&cmd.Dir, "dir", "", "Directory containing template JSON documents (required)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Validate the documents without writing to the catalog")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s load-templates -dir <path> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Load template definitions from a directory of JSON documents.\n\n")
		fmt.Fprintf(os.Stderr, "Each document looks like:\n")
		fmt.Fprintf(os.Stderr, "  {\n")
		fmt.Fprintf(os.Stderr, "    \"template_id\": \"acme_claims_v1\",\n")
		fmt.Fprintf(os.Stderr, "    \"name\": \"ACME claims bordereaux\",\n")
		fmt.Fprintf(os.Stderr, "    \"file_type\": \"claims\",\n")
		fmt.Fprintf(os.Stderr, "    \"column_mappings\": {\"Policy No\": \"policy_number\"}\n")
		fmt.Fprintf(os.Stderr, "  }\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Dir == "" {
		return fmt.Errorf("required flag -dir not provided")
	}

	return nil
}

func (cmd *LoadTemplatesCommand) Run() error {
	entries, err := os.ReadDir(cmd.Dir)
	if err != nil {
		return fmt.Errorf("failed to read template directory: %w", err)
	}

	var docs []templateDocument
	var parseErrors []string

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		path := filepath.Join(cmd.Dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			parseErrors = append(parseErrors, fmt.Sprintf("%s: %v", entry.Name(), err))
			continue
		}

		var doc templateDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			parseErrors = append(parseErrors, fmt.Sprintf("%s: %v", entry.Name(), err))
			continue
		}
		if doc.TemplateID == "" {
			parseErrors = append(parseErrors, fmt.Sprintf("%s: missing template_id", entry.Name()))
			continue
		}

		docs = append(docs, doc)
	}

	fmt.Printf("Found %d template documents\n", len(docs))

	if cmd.DryRun {
		for _, doc := range docs {
			fmt.Printf("  %s (%d column mappings)\n", doc.TemplateID, len(doc.ColumnMappings))
		}
		if len(parseErrors) > 0 {
			fmt.Printf("\n%d documents could not be parsed:\n", len(parseErrors))
			for _, msg := range parseErrors {
				fmt.Printf("  [ERROR] %s\n", msg)
			}
		}
		fmt.Println("\nDry run complete. Use without -dry-run to load.")
		return nil
	}

	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	repo := templates.NewRepository(db.DB)

	var loaded int
	for _, doc := range docs {
		name := doc.Name
		if name == "" {
			name = doc.TemplateID
		}
		fileType := entities.FileType(doc.FileType)
		if fileType == "" {
			fileType = entities.FileTypeUnknown
		}

		template := &entities.Template{
			TemplateID: doc.TemplateID,
			Name:       name,
			FileType:   fileType,
			Active:     true,
		}
		if err := template.SetMappings(doc.ColumnMappings); err != nil {
			parseErrors = append(parseErrors, fmt.Sprintf("%s: %v", doc.TemplateID, err))
			continue
		}
		if err := repo.Create(template); err != nil {
			parseErrors = append(parseErrors, fmt.Sprintf("%s: %v", doc.TemplateID, err))
			continue
		}
		loaded++
	}

	fmt.Printf("Loaded %d/%d templates\n", loaded, len(docs))

	if len(parseErrors) > 0 {
		fmt.Printf("\n%d errors occurred:\n", len(parseErrors))
		for _, msg := range parseErrors {
			fmt.Printf("  [ERROR] %s\n", msg)
		}
	}

	return nil
}
