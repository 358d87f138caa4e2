// Package config loads, normalizes, and validates murmur configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment overrides such as
// MURMUR_FFMPEG. The Config type centralizes every knob the daemon and CLI
// need: temp/log directories, external tool binaries, transcription defaults,
// and the timeout bounds applied to each external invocation.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
