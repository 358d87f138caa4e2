// Package main hosts the murmur CLI entrypoint and command graph.
//
// The Cobra-based command tree covers configuration scaffolding, local
// probing and one-shot transcription, and tenant management against a
// running murmurd over its HTTP API. Heavy lifting lives in the internal
// packages; commands stay declarative.
package main
