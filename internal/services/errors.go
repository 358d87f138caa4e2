package services

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel markers classifying pipeline failures. Wrap tags errors with one of
// these so transport layers can map them to HTTP statuses and callers can
// decide whether a retry makes sense.
var (
	ErrValidation           = errors.New("validation error")
	ErrConfiguration        = errors.New("configuration error")
	ErrNotFound             = errors.New("not found")
	ErrProbe                = errors.New("probe error")
	ErrDurationExceeded     = errors.New("duration exceeded")
	ErrProcessingTimeout    = errors.New("processing timeout")
	ErrTranscriptionTimeout = errors.New("transcription timeout")
	ErrModelUnavailable     = errors.New("model unavailable")
	ErrResultParse          = errors.New("result parse error")
	ErrExternalTool         = errors.New("external tool error")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later status classification. The marker should
// be one of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// HTTPStatus maps a classified error to the HTTP-equivalent status the API
// layer should report. Unclassified errors map to 500.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation), errors.Is(err, ErrDurationExceeded):
		return http.StatusBadRequest
	case errors.Is(err, ErrConfiguration):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrProbe):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrProcessingTimeout), errors.Is(err, ErrTranscriptionTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, ErrModelUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrResultParse), errors.Is(err, ErrExternalTool):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Kind returns the machine-readable name for a classified error, used in API
// error payloads and logs.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrProbe):
		return "probe"
	case errors.Is(err, ErrDurationExceeded):
		return "duration_exceeded"
	case errors.Is(err, ErrProcessingTimeout):
		return "processing_timeout"
	case errors.Is(err, ErrTranscriptionTimeout):
		return "transcription_timeout"
	case errors.Is(err, ErrModelUnavailable):
		return "model_unavailable"
	case errors.Is(err, ErrResultParse):
		return "result_parse"
	case errors.Is(err, ErrExternalTool):
		return "external_tool"
	default:
		return "internal"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
