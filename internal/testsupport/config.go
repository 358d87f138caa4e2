// Package testsupport provides helpers shared by package tests: unique
// per-test configurations and stub executables standing in for the
// external tools the pipeline shells out to.
package testsupport

import (
	"path/filepath"
	"testing"

	"murmur/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.TempDir = filepath.Join(base, "tmp")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.DBPath = filepath.Join(base, "tenants.db")
	cfg.Paths.LockFile = filepath.Join(base, "murmurd.lock")
	cfg.Paths.APIBind = "127.0.0.1:0"

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithTools points the config at stub binaries.
func WithTools(ffprobe, ffmpeg, whisper string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Tools.FFprobe = ffprobe
		cfg.Tools.FFmpeg = ffmpeg
		cfg.Tools.Whisper = whisper
	}
}
