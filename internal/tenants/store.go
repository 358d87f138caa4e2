package tenants

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"murmur/internal/config"
	"murmur/internal/services"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; existing databases with another version are rejected.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was created by an incompatible
// murmur version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// StoredConfig pairs a tenant's policy with its persistence metadata.
type StoredConfig struct {
	TenantID  string              `json:"tenantId"`
	Config    TranscriptionConfig `json:"config"`
	CreatedAt time.Time           `json:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

// Store manages tenant configuration persistence backed by SQLite.
type Store struct {
	db       *sql.DB
	path     string
	defaults TranscriptionConfig
}

// Open initializes or connects to the tenant database at the configured
// path and verifies its schema version.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.Paths.DBPath, DefaultsFromConfig(cfg))
}

// OpenPath opens the database at an explicit path with the provided
// fallback policy for tenants without a stored row.
func OpenPath(dbPath string, defaults TranscriptionConfig) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, defaults: defaults}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Defaults returns the fallback policy used for unknown tenants.
func (s *Store) Defaults() TranscriptionConfig { return s.defaults }

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		return nil
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to recreate)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

// Resolve returns the tenant's stored policy, or the daemon defaults when
// the tenant has no row. The boolean reports whether a stored row exists.
func (s *Store) Resolve(ctx context.Context, tenantID string) (TranscriptionConfig, bool, error) {
	stored, err := s.Get(ctx, tenantID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return s.defaults, false, nil
		}
		return TranscriptionConfig{}, false, err
	}
	return stored.Config, true, nil
}

// Get returns the stored configuration for a tenant, or an ErrNotFound
// classified error when none exists.
func (s *Store) Get(ctx context.Context, tenantID string) (*StoredConfig, error) {
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return nil, services.Wrap(services.ErrValidation, "tenants", "get", "tenant id is required", nil)
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT tenant_id, model_size, language, temperature,
		        max_file_size_mb, max_duration_seconds, enabled,
		        created_at, updated_at
		   FROM tenant_configs WHERE tenant_id = ?`, tenantID)

	var (
		stored    StoredConfig
		enabled   int
		createdAt string
		updatedAt string
	)
	err := row.Scan(
		&stored.TenantID,
		&stored.Config.ModelSize,
		&stored.Config.Language,
		&stored.Config.Temperature,
		&stored.Config.MaxFileSizeMB,
		&stored.Config.MaxDurationSeconds,
		&enabled,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "tenants", "get",
			fmt.Sprintf("no configuration stored for tenant %q", tenantID), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("query tenant config: %w", err)
	}
	stored.Config.Enabled = enabled != 0
	stored.CreatedAt = parseTimestamp(createdAt)
	stored.UpdatedAt = parseTimestamp(updatedAt)
	return &stored, nil
}

// Put validates and upserts a tenant's configuration. Validation failures
// carry one message per violated field.
func (s *Store) Put(ctx context.Context, tenantID string, cfg TranscriptionConfig) (*StoredConfig, error) {
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return nil, services.Wrap(services.ErrValidation, "tenants", "put", "tenant id is required", nil)
	}
	if issues := cfg.Validate(); len(issues) > 0 {
		return nil, services.Wrap(services.ErrValidation, "tenants", "put", strings.Join(issues, "; "), nil)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tenant_configs (
		    tenant_id, model_size, language, temperature,
		    max_file_size_mb, max_duration_seconds, enabled,
		    created_at, updated_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(tenant_id) DO UPDATE SET
		    model_size = excluded.model_size,
		    language = excluded.language,
		    temperature = excluded.temperature,
		    max_file_size_mb = excluded.max_file_size_mb,
		    max_duration_seconds = excluded.max_duration_seconds,
		    enabled = excluded.enabled,
		    updated_at = excluded.updated_at`,
		tenantID,
		cfg.ModelSize,
		cfg.Language,
		cfg.Temperature,
		cfg.MaxFileSizeMB,
		cfg.MaxDurationSeconds,
		boolToInt(cfg.Enabled),
		now,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert tenant config: %w", err)
	}
	return s.Get(ctx, tenantID)
}

// Delete removes a tenant's stored configuration, reverting the tenant to
// daemon defaults. Deleting an absent tenant is not an error.
func (s *Store) Delete(ctx context.Context, tenantID string) error {
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return services.Wrap(services.ErrValidation, "tenants", "delete", "tenant id is required", nil)
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM tenant_configs WHERE tenant_id = ?", tenantID); err != nil {
		return fmt.Errorf("delete tenant config: %w", err)
	}
	return nil
}

// List returns every stored tenant configuration sorted by tenant id.
func (s *Store) List(ctx context.Context) ([]StoredConfig, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT tenant_id, model_size, language, temperature,
		        max_file_size_mb, max_duration_seconds, enabled,
		        created_at, updated_at
		   FROM tenant_configs`)
	if err != nil {
		return nil, fmt.Errorf("list tenant configs: %w", err)
	}
	defer rows.Close()

	var out []StoredConfig
	for rows.Next() {
		var (
			stored    StoredConfig
			enabled   int
			createdAt string
			updatedAt string
		)
		if err := rows.Scan(
			&stored.TenantID,
			&stored.Config.ModelSize,
			&stored.Config.Language,
			&stored.Config.Temperature,
			&stored.Config.MaxFileSizeMB,
			&stored.Config.MaxDurationSeconds,
			&enabled,
			&createdAt,
			&updatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan tenant config: %w", err)
		}
		stored.Config.Enabled = enabled != 0
		stored.CreatedAt = parseTimestamp(createdAt)
		stored.UpdatedAt = parseTimestamp(updatedAt)
		out = append(out, stored)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tenant configs: %w", err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TenantID < out[j].TenantID })
	return out, nil
}

func parseTimestamp(value string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return ts
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
