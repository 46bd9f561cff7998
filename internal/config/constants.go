package config

// Default filesystem locations
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./bordereaux.db"

	// DefaultStorageDir is where uploaded file blobs are stored by content hash
	DefaultStorageDir = "./storage"
)
