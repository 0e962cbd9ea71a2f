// Package artifact stores rendered badge artifacts.
package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Store abstracts blob storage for rendered badges.
type Store interface {
	PutBadge(ctx context.Context, login, name string, data []byte) error
	GetBadge(ctx context.Context, login, name string) ([]byte, error)
}

// LocalStore implements Store using the local filesystem.
// Useful for development and testing.
type LocalStore struct {
	BaseDir string
}

// NewLocalStore creates a LocalStore rooted at the given directory.
func NewLocalStore(baseDir string) *LocalStore {
	return &LocalStore{BaseDir: baseDir}
}

func (s *LocalStore) path(login, name string) string {
	return filepath.Join(s.BaseDir, login, "badges", name+".svg")
}

// PutBadge stores a rendered badge.
func (s *LocalStore) PutBadge(ctx context.Context, login, name string, data []byte) error {
	path := s.path(login, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// GetBadge retrieves a stored badge.
func (s *LocalStore) GetBadge(ctx context.Context, login, name string) ([]byte, error) {
	return os.ReadFile(s.path(login, name))
}
