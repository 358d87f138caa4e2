// Package logging builds the slog loggers used across murmur.
//
// It provides console and JSON handlers, typed attribute helpers, stable
// field-name constants, and no-op loggers for tests. Console output detects
// terminals via go-isatty and only emits ANSI color codes when attached to
// one.
package logging
