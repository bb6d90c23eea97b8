// Package storage implements the local-filesystem gateway for uploaded
// documents. Paths exposed to callers are web-style relative paths rooted at
// /uploads so rows stay portable across hosts.
package storage

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Categories partition the upload root by document purpose.
const (
	CategoryCV            = "cv"
	CategoryPresentations = "presentations"
	CategoryPosters       = "posters"
)

// FileStore writes and removes uploaded files under a configurable root
// directory.
type FileStore struct {
	root string
	now  func() time.Time
}

// NewFileStore creates the store and its category directories.
func NewFileStore(root string) (*FileStore, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("storage: upload root is required")
	}
	for _, category := range []string{CategoryCV, CategoryPresentations, CategoryPosters} {
		if err := os.MkdirAll(filepath.Join(root, category), 0o755); err != nil {
			return nil, fmt.Errorf("storage: create %s directory: %w", category, err)
		}
	}
	return &FileStore{root: root, now: time.Now}, nil
}

// Save writes data under the category directory and returns the relative
// path recorded in the database, e.g. /uploads/cv/<name>.
func (s *FileStore) Save(category, filename string, data []byte) (string, error) {
	if s == nil {
		return "", fmt.Errorf("storage: file store is nil")
	}
	full := filepath.Join(s.root, category, filename)
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("storage: write %s: %w", filename, err)
	}
	return path.Join("/uploads", category, filename), nil
}

// Remove deletes the file recorded at the given relative path. Missing files
// are reported so callers can decide to log-and-continue; removal is always
// best-effort at the call sites.
func (s *FileStore) Remove(relPath string) error {
	if s == nil {
		return fmt.Errorf("storage: file store is nil")
	}
	if !strings.HasPrefix(relPath, "/uploads/") {
		return fmt.Errorf("storage: unexpected path %q", relPath)
	}
	trimmed := strings.TrimPrefix(relPath, "/uploads/")
	full := filepath.Join(s.root, filepath.FromSlash(trimmed))
	if err := os.Remove(full); err != nil {
		return fmt.Errorf("storage: remove %s: %w", relPath, err)
	}
	return nil
}

// UniqueName builds a collision-resistant filename embedding the owner,
// purpose tag, timestamp and a random suffix, keeping the original extension.
func (s *FileStore) UniqueName(ownerID, purpose, originalName string) string {
	ext := strings.TrimPrefix(path.Ext(originalName), ".")
	suffix := strings.Split(uuid.NewString(), "-")[0]
	stamp := s.now().UnixMilli()
	if ext == "" {
		return fmt.Sprintf("%s_%s_%d_%s", ownerID, purpose, stamp, suffix)
	}
	return fmt.Sprintf("%s_%s_%d_%s.%s", ownerID, purpose, stamp, suffix, ext)
}
