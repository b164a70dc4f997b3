// Package store archives written chart files, locally or in Cloud Storage.
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"songrank/internal/model"
)

// Store is a write-only archive for output files.
// Keys may contain "/" to group objects.
type Store interface {
	Set(ctx context.Context, key, ext string, value []byte) error
	Close() error
}

// ArchiveKey is the key a chart file for d is archived under.
func ArchiveKey(d model.TargetDate) string {
	return "newrelease/" + d.String()
}

// ArchiveFile copies the file at path into s under ArchiveKey(d) with
// extension ext. The local file name plays no part in the key.
func ArchiveFile(ctx context.Context, s Store, d model.TargetDate, path, ext string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s for archive: %w", path, err)
	}
	if err := s.Set(ctx, ArchiveKey(d), ext, data); err != nil {
		return fmt.Errorf("archiving %s: %w", path, err)
	}
	return nil
}

// contentType maps a file extension to the MIME type stored with it.
func contentType(ext string) string {
	switch ext {
	case ".csv":
		return "text/csv; charset=utf-8"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

// LocalStore is a file-based implementation of Store.
type LocalStore struct {
	dir string
	mu  sync.Mutex
}

// NewLocal creates a new LocalStore with the specified directory.
func NewLocal(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &LocalStore{dir: dir}, nil
}

// Set stores a value with the given key.
func (s *LocalStore) Set(ctx context.Context, key, ext string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.keyPath(key, ext)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, value, 0644)
}

// Close is a no-op for LocalStore.
func (s *LocalStore) Close() error {
	return nil
}

func (s *LocalStore) keyPath(key, ext string) string {
	return filepath.Join(s.dir, filepath.FromSlash(key)+ext)
}
