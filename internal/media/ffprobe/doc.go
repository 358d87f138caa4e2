// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// This package has no murmur-specific dependencies and could be extracted
// as a standalone library.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual stream properties
//   - Format: container-level metadata (duration, size, bitrate)
//
// Primary entry point:
//   - Inspect: executes ffprobe and returns parsed Result
//
// Helper methods on Result provide convenient access to audio stream counts,
// duration parsing, sample rate, channel count, and bitrate extraction, with
// stream-level fallbacks when container-level fields are absent.
package ffprobe
