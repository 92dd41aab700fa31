package record

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore keeps the record in a local file.
type FileStore struct {
	path string
}

// NewFileStore creates a store writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the file location.
func (s *FileStore) Path() string { return s.path }

// Save writes the record through a temp file and rename so a crash never
// leaves a half-written record.
func (s *FileStore) Save(_ context.Context, rec Record) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".ociclaim-record-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(rec.Format()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to write record to %s: %w", s.path, err)
	}
	return nil
}

// Load reads the record, or returns nil if the file does not exist.
func (s *FileStore) Load(_ context.Context) (*Record, error) {
	// #nosec G304
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read record %s: %w", s.path, err)
	}
	rec, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	return &rec, nil
}
