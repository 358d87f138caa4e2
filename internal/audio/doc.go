// Package audio implements the validation, probing, quality gating, and
// normalization stages of the transcription pipeline.
//
// ValidateUpload enforces static acceptance rules before any expensive work.
// Prober wraps ffprobe inspection behind a short internal timeout.
// AssessQuality runs advisory heuristics over probed metadata. Normalizer
// converts accepted input into the canonical mono 16 kHz WAV the recognition
// subprocess expects, under a hard processing timeout.
package audio
