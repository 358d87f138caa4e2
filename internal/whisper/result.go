package whisper

import (
	"encoding/json"
	"fmt"
	"strings"
)

// EstimatedConfidence is reported for every successful transcription.
// The bridge does not expose per-token probabilities, so callers get a
// fixed estimate rather than a derived score.
const EstimatedConfidence = 0.95

// Segment is a timed slice of the transcript.
type Segment struct {
	StartSeconds float64 `json:"startSeconds"`
	EndSeconds   float64 `json:"endSeconds"`
	Text         string  `json:"text"`
}

// Result is the outcome of a completed transcription run.
type Result struct {
	Text                      string    `json:"text"`
	DetectedLanguage          string    `json:"detectedLanguage"`
	ConfidenceEstimate        float64   `json:"confidenceEstimate"`
	ProcessingDurationSeconds float64   `json:"processingDurationSeconds"`
	Segments                  []Segment `json:"segments,omitempty"`
}

type resultPayload struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

type errorPayload struct {
	Error struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"error"`
}

// parseResult decodes the bridge's success payload. The text field may
// legitimately be empty (silent audio), but the payload itself must be
// valid JSON carrying a language.
func parseResult(stdout []byte) (Result, error) {
	var payload resultPayload
	if err := json.Unmarshal(stdout, &payload); err != nil {
		return Result{}, fmt.Errorf("decode transcription payload: %w", err)
	}
	if payload.Language == "" {
		return Result{}, fmt.Errorf("transcription payload missing language")
	}
	result := Result{
		Text:               strings.TrimSpace(payload.Text),
		DetectedLanguage:   payload.Language,
		ConfidenceEstimate: EstimatedConfidence,
	}
	for _, seg := range payload.Segments {
		result.Segments = append(result.Segments, Segment{
			StartSeconds: seg.Start,
			EndSeconds:   seg.End,
			Text:         strings.TrimSpace(seg.Text),
		})
	}
	return result, nil
}

// parseErrorPayload extracts a structured error from the bridge's
// failure output. Returns ok=false when the output is not the expected
// error shape, in which case callers fall back to stderr.
func parseErrorPayload(stdout []byte) (kind, message string, ok bool) {
	var payload errorPayload
	if err := json.Unmarshal(stdout, &payload); err != nil {
		return "", "", false
	}
	if payload.Error.Kind == "" && payload.Error.Message == "" {
		return "", "", false
	}
	return payload.Error.Kind, payload.Error.Message, true
}
