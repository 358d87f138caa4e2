package audio

import (
	"fmt"
	"path/filepath"
	"strings"
)

// MaxUploadBytes is the hard ceiling on raw upload size, independent of the
// per-tenant limit (which is re-checked against the processed file).
const MaxUploadBytes = 50 << 20

// allowedExtensions is the fixed allow-list of audio container extensions.
var allowedExtensions = map[string]struct{}{
	".mp3":  {},
	".wav":  {},
	".ogg":  {},
	".flac": {},
	".m4a":  {},
	".aac":  {},
	".wma":  {},
	".webm": {},
}

// Upload describes an uploaded file before any content inspection happens:
// the declared MIME type, the original filename, and the size in bytes.
type Upload struct {
	Filename  string
	MIMEType  string
	SizeBytes int64
}

// ValidateUpload enforces the static acceptance rules, in order, stopping at
// the first failure: extension allow-list, declared MIME type, size bounds.
// It is deterministic and has no side effects.
func ValidateUpload(upload Upload) ValidationOutcome {
	ext := strings.ToLower(filepath.Ext(upload.Filename))
	if _, ok := allowedExtensions[ext]; !ok {
		return invalid(
			fmt.Sprintf("unsupported file extension %q", ext),
			"use one of: "+strings.Join(sortedExtensions(), ", "),
		)
	}

	mime := strings.ToLower(strings.TrimSpace(upload.MIMEType))
	// Browser recorders commonly tag audio-only webm as video/webm.
	if !strings.HasPrefix(mime, "audio/") && mime != "video/webm" {
		return invalid(
			fmt.Sprintf("declared content type %q is not audio", upload.MIMEType),
			"upload a file with an audio/* content type",
		)
	}

	if upload.SizeBytes <= 0 {
		return invalid("file is empty", "upload a non-empty audio recording")
	}
	if upload.SizeBytes > MaxUploadBytes {
		return invalid(
			fmt.Sprintf("file is %d bytes, above the %d MB limit", upload.SizeBytes, MaxUploadBytes>>20),
			"compress the recording or split it into shorter files",
		)
	}

	return ValidationOutcome{IsValid: true}
}

func invalid(issue, recommendation string) ValidationOutcome {
	return ValidationOutcome{
		IsValid:         false,
		Issues:          []string{issue},
		Recommendations: []string{recommendation},
	}
}

func sortedExtensions() []string {
	// Stable ordering for user-facing messages.
	return []string{".aac", ".flac", ".m4a", ".mp3", ".ogg", ".wav", ".webm", ".wma"}
}
