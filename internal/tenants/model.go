package tenants

import (
	"fmt"
	"sort"

	"murmur/internal/config"
)

// Bounds for per-tenant settings. The upload ceiling in the validator is
// fixed; these only bound what a tenant may configure for the processed
// file checks.
const (
	MinFileSizeMB      = 1
	MaxFileSizeMB      = 100
	MinDurationSeconds = 1
	MaxDurationSeconds = 600
)

var allowedModelSizes = map[string]bool{
	"tiny":  true,
	"small": true,
}

var allowedLanguages = map[string]bool{
	"zh":   true,
	"en":   true,
	"auto": true,
}

// ModelSizes returns the model identifiers tenants may select, sorted.
func ModelSizes() []string {
	out := make([]string, 0, len(allowedModelSizes))
	for size := range allowedModelSizes {
		out = append(out, size)
	}
	sort.Strings(out)
	return out
}

// TranscriptionConfig is a tenant's transcription policy. The pipeline
// treats it as read-only input and rejects it before doing any work if a
// field is out of range.
type TranscriptionConfig struct {
	ModelSize          string  `json:"modelSize"`
	Language           string  `json:"language"`
	Temperature        float64 `json:"temperature"`
	MaxFileSizeMB      int     `json:"maxFileSizeMB"`
	MaxDurationSeconds int     `json:"maxDurationSeconds"`
	Enabled            bool    `json:"enabled"`
}

// Validate checks every field and returns one message per violation, so
// callers can report all problems in a single response.
func (c TranscriptionConfig) Validate() []string {
	var issues []string
	if !allowedModelSizes[c.ModelSize] {
		issues = append(issues, fmt.Sprintf("modelSize must be one of tiny, small (got %q)", c.ModelSize))
	}
	if !allowedLanguages[c.Language] {
		issues = append(issues, fmt.Sprintf("language must be one of zh, en, auto (got %q)", c.Language))
	}
	if c.Temperature < 0 || c.Temperature > 1 {
		issues = append(issues, fmt.Sprintf("temperature must be between 0 and 1 (got %g)", c.Temperature))
	}
	if c.MaxFileSizeMB < MinFileSizeMB || c.MaxFileSizeMB > MaxFileSizeMB {
		issues = append(issues, fmt.Sprintf("maxFileSizeMB must be between %d and %d (got %d)", MinFileSizeMB, MaxFileSizeMB, c.MaxFileSizeMB))
	}
	if c.MaxDurationSeconds < MinDurationSeconds || c.MaxDurationSeconds > MaxDurationSeconds {
		issues = append(issues, fmt.Sprintf("maxDurationSeconds must be between %d and %d (got %d)", MinDurationSeconds, MaxDurationSeconds, c.MaxDurationSeconds))
	}
	return issues
}

// DefaultsFromConfig builds the fallback tenant policy from the daemon
// configuration's transcription section.
func DefaultsFromConfig(cfg *config.Config) TranscriptionConfig {
	return TranscriptionConfig{
		ModelSize:          cfg.Transcription.ModelSize,
		Language:           cfg.Transcription.Language,
		Temperature:        cfg.Transcription.Temperature,
		MaxFileSizeMB:      cfg.Transcription.MaxFileSizeMB,
		MaxDurationSeconds: cfg.Transcription.MaxDurationSeconds,
		Enabled:            cfg.Transcription.Enabled,
	}
}
