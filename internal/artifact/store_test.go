package artifact

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalStorePutGetBadge(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStore(dir)
	ctx := context.Background()

	data := []byte(`<svg xmlns="http://www.w3.org/2000/svg"/>`)
	if err := s.PutBadge(ctx, "octocat", "streak", data); err != nil {
		t.Fatalf("PutBadge: %v", err)
	}

	got, err := s.GetBadge(ctx, "octocat", "streak")
	if err != nil {
		t.Fatalf("GetBadge: %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("GetBadge = %q, want %q", got, data)
	}

	// Verify file path layout
	expectedPath := filepath.Join(dir, "octocat", "badges", "streak.svg")
	if _, err := os.Stat(expectedPath); err != nil {
		t.Errorf("expected file at %s: %v", expectedPath, err)
	}
}

func TestLocalStoreOverwrite(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStore(dir)
	ctx := context.Background()

	if err := s.PutBadge(ctx, "octocat", "streak", []byte("old")); err != nil {
		t.Fatalf("PutBadge: %v", err)
	}
	if err := s.PutBadge(ctx, "octocat", "streak", []byte("new")); err != nil {
		t.Fatalf("PutBadge overwrite: %v", err)
	}

	got, err := s.GetBadge(ctx, "octocat", "streak")
	if err != nil {
		t.Fatalf("GetBadge: %v", err)
	}
	if string(got) != "new" {
		t.Errorf("GetBadge = %q, want new", got)
	}
}

func TestLocalStoreGetNotFound(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStore(dir)
	ctx := context.Background()

	_, err := s.GetBadge(ctx, "octocat", "nonexistent")
	if err == nil {
		t.Error("expected error for nonexistent badge")
	}
}
