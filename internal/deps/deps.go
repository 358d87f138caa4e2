package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"murmur/internal/config"
)

// Requirement defines an external dependency murmur relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements returns the binaries the transcription pipeline shells out to.
func Requirements(cfg *config.Config) []Requirement {
	if cfg == nil {
		defaults := config.Default()
		cfg = &defaults
	}
	return []Requirement{
		{Name: "FFprobe", Command: cfg.FFprobeBinary(), Description: "Audio inspection"},
		{Name: "FFmpeg", Command: cfg.FFmpegBinary(), Description: "Audio normalization"},
		{Name: "Whisper", Command: cfg.WhisperBinary(), Description: "Speech recognition"},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// CheckTempDir reports whether the configured temp directory is writable.
// The probe file is removed before returning.
func CheckTempDir(dir string) Status {
	status := Status{
		Name:        "Temp directory",
		Command:     dir,
		Description: "Short-lived upload and normalization files",
	}
	dir = strings.TrimSpace(dir)
	if dir == "" {
		status.Detail = "temp directory not configured"
		return status
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		status.Detail = fmt.Sprintf("create temp directory: %v", err)
		return status
	}
	probe := filepath.Join(dir, ".murmur-writecheck")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		status.Detail = fmt.Sprintf("temp directory not writable: %v", err)
		return status
	}
	_ = os.Remove(probe)
	status.Available = true
	return status
}
