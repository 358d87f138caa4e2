// Package tenants persists per-tenant transcription settings in SQLite.
// Tenants without a stored row fall back to the daemon-wide defaults
// from the configuration file.
package tenants
