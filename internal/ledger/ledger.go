// Package ledger tracks the temp files created during one pipeline run and
// guarantees their removal on every exit path.
//
// Every file written by upload staging or normalization is registered
// immediately after creation, before any subsequent fallible step. ReleaseAll
// runs once per run, deferred at pipeline entry so it executes on success,
// early failure, and panic alike. Deletion failures are collected and logged
// but never change the run's primary outcome.
package ledger

import (
	"errors"
	"log/slog"
	"os"
	"sync"

	"murmur/internal/logging"
)

// CleanupFailure pairs a registered path with its deletion error.
type CleanupFailure struct {
	Path  string
	Error error
}

// Ledger owns the set of temp file paths created during one pipeline run.
// Paths registered here belong exclusively to this run; no other component
// may delete a file it did not itself create and register.
type Ledger struct {
	mu       sync.Mutex
	paths    []string
	released bool
	logger   *slog.Logger
}

// New constructs an empty Ledger. A nil logger silences cleanup logging.
func New(logger *slog.Logger) *Ledger {
	return &Ledger{logger: logging.NewComponentLogger(logger, "ledger")}
}

// Register records a path for removal at run exit. Call it immediately after
// creating the file, before any operation that can fail.
func (l *Ledger) Register(path string) {
	if path == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.paths = append(l.paths, path)
}

// Registered returns a snapshot of the currently registered paths.
func (l *Ledger) Registered() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.paths...)
}

// ReleaseAll removes every registered path, attempting each even when earlier
// deletions fail. Missing files are not failures; the staging step may have
// never produced them. Safe to call once per run; later calls are no-ops.
func (l *Ledger) ReleaseAll() []CleanupFailure {
	l.mu.Lock()
	if l.released {
		l.mu.Unlock()
		return nil
	}
	l.released = true
	paths := l.paths
	l.paths = nil
	l.mu.Unlock()

	var failures []CleanupFailure
	for _, path := range paths {
		err := os.Remove(path)
		if err == nil || errors.Is(err, os.ErrNotExist) {
			continue
		}
		failures = append(failures, CleanupFailure{Path: path, Error: err})
		l.logger.Warn("failed to remove temp file",
			logging.String("path", path),
			logging.Error(err),
			logging.String(logging.FieldEventType, "cleanup_failed"),
			logging.String(logging.FieldErrorHint, "check temp_dir permissions"),
			logging.String(logging.FieldImpact, "disk space not reclaimed"),
		)
	}
	return failures
}
