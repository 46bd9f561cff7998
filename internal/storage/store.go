// Package storage keeps raw uploaded file bytes on disk, addressed by
// content hash. The database only records the hash; the pipeline fetches
// the bytes back when a file is (re)processed.
package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotFound is returned when no blob exists for a hash.
var ErrNotFound = errors.New("blob not found")

type Store struct {
	dir string
}

// NewStore creates the storage directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Save writes the blob and returns its hash. duplicate is true when the
// same content was already stored; the write is skipped in that case.
func (s *Store) Save(data []byte) (hash string, duplicate bool, err error) {
	sum := sha256.Sum256(data)
	hash = hex.EncodeToString(sum[:])

	path := s.path(hash)
	if _, err := os.Stat(path); err == nil {
		return hash, true, nil
	}

	// Write-then-rename so a crashed write never leaves a truncated blob
	// under its final name.
	tmp, err := os.CreateTemp(s.dir, "blob-*")
	if err != nil {
		return "", false, fmt.Errorf("stage blob: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", false, fmt.Errorf("write blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", false, fmt.Errorf("close blob: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", false, fmt.Errorf("store blob: %w", err)
	}

	return hash, false, nil
}

// Fetch reads a blob back by its content hash.
func (s *Store) Fetch(hash string) ([]byte, error) {
	data, err := os.ReadFile(s.path(hash))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, hash)
	}
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", hash, err)
	}
	return data, nil
}

// Exists reports whether a blob is stored for the hash.
func (s *Store) Exists(hash string) bool {
	_, err := os.Stat(s.path(hash))
	return err == nil
}

func (s *Store) path(hash string) string {
	return filepath.Join(s.dir, hash)
}
