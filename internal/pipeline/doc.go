// Package pipeline drives a single upload through validation, probing,
// quality gating, normalization, and transcription. Every intermediate
// file is registered with a ledger and removed before a run returns,
// whatever the outcome.
package pipeline
