package staging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewRunPathsUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		paths := NewRunPaths("/tmp/work", ".mp3")
		if _, dup := seen[paths.Upload]; dup {
			t.Fatalf("duplicate upload path: %s", paths.Upload)
		}
		seen[paths.Upload] = struct{}{}
	}
}

func TestNewRunPathsExtensionHandling(t *testing.T) {
	paths := NewRunPaths("/work", "mp3")
	if !strings.HasSuffix(paths.Upload, ".mp3") {
		t.Fatalf("extension not normalized: %s", paths.Upload)
	}
	if !strings.HasSuffix(paths.Normalized, ".wav") {
		t.Fatalf("normalized output must be wav: %s", paths.Normalized)
	}
	if filepath.Dir(paths.Upload) != "/work" {
		t.Fatalf("upload outside temp dir: %s", paths.Upload)
	}

	bare := NewRunPaths("/work", "")
	if strings.Contains(filepath.Base(bare.Upload), "..") {
		t.Fatalf("unexpected name: %s", bare.Upload)
	}
}

func TestCleanStaleRemovesOldRunFiles(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, "upload-dead-1.mp3")
	fresh := filepath.Join(dir, "normalized-live-2.wav")
	unrelated := filepath.Join(dir, "keep.txt")
	for _, path := range []string{stale, fresh, unrelated} {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	old := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	if err := os.Chtimes(unrelated, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	result := CleanStale(dir, 24*time.Hour, nil)
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Removed) != 1 || result.Removed[0] != stale {
		t.Fatalf("unexpected removals: %v", result.Removed)
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Fatal("fresh run file removed")
	}
	if _, err := os.Stat(unrelated); err != nil {
		t.Fatal("unrelated file removed")
	}
}

func TestCleanStaleMissingDir(t *testing.T) {
	result := CleanStale(filepath.Join(t.TempDir(), "absent"), time.Hour, nil)
	if len(result.Errors) != 0 || len(result.Removed) != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "tmp")
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir: %v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("dir not created: %v", err)
	}
	if err := EnsureDir(" "); err == nil {
		t.Fatal("expected error for empty dir")
	}
}
