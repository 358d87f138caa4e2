// Package daemon runs the murmur background service: single-instance
// locking, the HTTP API, periodic staging cleanup, and orderly shutdown
// of in-flight transcription processes.
package daemon
