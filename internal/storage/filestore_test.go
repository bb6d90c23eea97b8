package storage

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	return store
}

func TestSaveAndRemove(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	rel, err := store.Save(CategoryCV, "faculty-1_CV_1_abc.pdf", []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !strings.HasPrefix(rel, "/uploads/cv/") {
		t.Fatalf("expected web-relative path, got %q", rel)
	}

	full := filepath.Join(store.root, "cv", "faculty-1_CV_1_abc.pdf")
	if _, err := os.Stat(full); err != nil {
		t.Fatalf("expected file on disk: %v", err)
	}

	if err := store.Remove(rel); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := os.Stat(full); !os.IsNotExist(err) {
		t.Fatalf("expected file removed, stat err: %v", err)
	}
}

func TestRemove_MissingFileReportsError(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	if err := store.Remove("/uploads/cv/never-written.pdf"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestRemove_RejectsForeignPaths(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	if err := store.Remove("/etc/passwd"); err == nil {
		t.Fatal("expected error for path outside the upload root")
	}
}

func TestUniqueName_EmbedsOwnerPurposeAndExtension(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	name := store.UniqueName("faculty-evt_1", "CV", "resume.final.pdf")

	pattern := regexp.MustCompile(`^faculty-evt_1_CV_\d+_[0-9a-f]+\.pdf$`)
	if !pattern.MatchString(name) {
		t.Fatalf("unexpected generated name %q", name)
	}

	other := store.UniqueName("faculty-evt_1", "CV", "resume.final.pdf")
	if name == other {
		t.Fatalf("expected distinct names, got %q twice", name)
	}
}
