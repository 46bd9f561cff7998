// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup and migrations
//	├── files/           # Bordereaux file lifecycle and status transitions
//	├── rows/            # Normalized row persistence
//	├── verrors/         # Validation errors recorded per row
//	├── templates/       # Template catalog for column mapping
//	└── proposals/       # Mapping proposals awaiting review
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	// Initialize database connection
//	db, err := database.NewDatabase("./bordereaux.db")
//
//	// Create domain-specific repositories
//	filesRepo := files.NewRepository(db.DB)
//	templatesRepo := templates.NewRepository(db.DB)
//
//	// Use repositories
//	file, err := filesRepo.GetByID(123)
//	catalog, err := templatesRepo.ListActive(entities.FileTypeClaims)
//
// # Adding a New Domain
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Register its entities in database.go AutoMigrate
package database
