package filestore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrKeyExists is returned when a key is written twice. Raw uploads are
	// immutable once retained.
	ErrKeyExists = errors.New("file already exists for key")

	// ErrKeyNotFound is returned when no file is retained under a key.
	ErrKeyNotFound = errors.New("no file for key")
)

// Store retains raw uploaded files on local disk, one file per key.
type Store struct {
	dir string
}

// New creates the backing directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save writes data under key exactly once.
func (s *Store) Save(key string, data []byte) error {
	f, err := os.OpenFile(s.path(key), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return ErrKeyExists
		}
		return fmt.Errorf("failed to create upload file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to write upload file: %w", err)
	}
	return nil
}

// Load returns the retained bytes for key.
func (s *Store) Load(key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to read upload file: %w", err)
	}
	return data, nil
}

// Delete removes the retained file for key. A missing file is not an error.
func (s *Store) Delete(key string) error {
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete upload file: %w", err)
	}
	return nil
}

func (s *Store) path(key string) string {
	// Keys embed user supplied file names, keep them inside the directory.
	key = strings.ReplaceAll(key, string(os.PathSeparator), "_")
	return filepath.Join(s.dir, filepath.Base(key))
}
