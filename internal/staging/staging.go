// Package staging names and houses the short-lived files one pipeline run
// writes under the temp directory, and sweeps leftovers from crashed runs.
//
// Each run writes uniquely-named files (random UUID plus timestamp) so
// concurrent requests never collide; no run reads or writes another run's
// files.
package staging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RunPaths locates the files one pipeline run stages under the temp dir.
type RunPaths struct {
	RunID      string
	Upload     string
	Normalized string
}

// NewRunPaths allocates collision-resistant paths for one run. ext is the
// original upload's extension (with leading dot) and is preserved on the
// staged copy so probing sees the declared container.
func NewRunPaths(tempDir, ext string) RunPaths {
	runID := fmt.Sprintf("%s-%d", uuid.NewString(), time.Now().UnixNano())
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return RunPaths{
		RunID:      runID,
		Upload:     filepath.Join(tempDir, "upload-"+runID+ext),
		Normalized: filepath.Join(tempDir, "normalized-"+runID+".wav"),
	}
}

// EnsureDir creates the temp directory if absent.
func EnsureDir(tempDir string) error {
	if strings.TrimSpace(tempDir) == "" {
		return fmt.Errorf("temp directory not configured")
	}
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return fmt.Errorf("create temp directory %q: %w", tempDir, err)
	}
	return nil
}
