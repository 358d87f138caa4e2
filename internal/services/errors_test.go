package services_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"murmur/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	err := services.Wrap(services.ErrValidation, "validate", "extension", "unsupported .txt", nil)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation marker, got %v", err)
	}
	want := "validation error: validate: extension: unsupported .txt"
	if err.Error() != want {
		t.Fatalf("unexpected message: got %q want %q", err.Error(), want)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("exit status 1")
	err := services.Wrap(services.ErrExternalTool, "normalize", "ffmpeg", "", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		marker error
		want   int
	}{
		{services.ErrValidation, http.StatusBadRequest},
		{services.ErrDurationExceeded, http.StatusBadRequest},
		{services.ErrConfiguration, http.StatusForbidden},
		{services.ErrNotFound, http.StatusNotFound},
		{services.ErrProbe, http.StatusUnprocessableEntity},
		{services.ErrProcessingTimeout, http.StatusGatewayTimeout},
		{services.ErrTranscriptionTimeout, http.StatusGatewayTimeout},
		{services.ErrModelUnavailable, http.StatusServiceUnavailable},
		{services.ErrResultParse, http.StatusBadGateway},
		{errors.New("unclassified"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		wrapped := fmt.Errorf("outer: %w", tc.marker)
		if got := services.HTTPStatus(wrapped); got != tc.want {
			t.Fatalf("HTTPStatus(%v) = %d, want %d", tc.marker, got, tc.want)
		}
	}
}

func TestKindNames(t *testing.T) {
	if got := services.Kind(services.Wrap(services.ErrTranscriptionTimeout, "transcribe", "", "", nil)); got != "transcription_timeout" {
		t.Fatalf("unexpected kind: %q", got)
	}
	if got := services.Kind(errors.New("boom")); got != "internal" {
		t.Fatalf("unexpected kind for unclassified: %q", got)
	}
	if got := services.Kind(nil); got != "" {
		t.Fatalf("unexpected kind for nil: %q", got)
	}
}
