// Package whisper invokes the whisper bridge binary to transcribe
// normalized audio. It owns the per-run timeout and signal escalation,
// model availability caching, and parsing of the bridge's JSON output.
package whisper
