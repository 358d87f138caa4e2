package audio

import (
	"murmur/internal/media/ffprobe"
)

// Metadata is an immutable technical snapshot of an audio file, produced by
// probing and never persisted beyond one request.
type Metadata struct {
	DurationSeconds float64 `json:"duration_seconds"`
	ContainerFormat string  `json:"container_format"`
	SampleRateHz    int     `json:"sample_rate_hz"`
	ChannelCount    int     `json:"channel_count"`
	BitRateBps      int64   `json:"bit_rate_bps"`
	SizeBytes       int64   `json:"size_bytes"`
	Codec           string  `json:"codec"`
}

// MetadataFromProbe converts a raw ffprobe result into a Metadata snapshot.
func MetadataFromProbe(result ffprobe.Result) Metadata {
	meta := Metadata{
		DurationSeconds: result.DurationSeconds(),
		ContainerFormat: result.Format.FormatName,
		SampleRateHz:    result.SampleRateHz(),
		ChannelCount:    result.ChannelCount(),
		BitRateBps:      result.BitRate(),
		SizeBytes:       result.SizeBytes(),
	}
	if stream, ok := result.FirstAudioStream(); ok {
		meta.Codec = stream.CodecName
	}
	return meta
}

// ValidationOutcome reports the result of a validity or quality check together
// with human-readable issues and remediation hints.
type ValidationOutcome struct {
	IsValid         bool     `json:"is_valid"`
	Issues          []string `json:"issues,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
}
