package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"log/slog"

	"github.com/gofrs/flock"

	"murmur/internal/config"
	"murmur/internal/deps"
	"murmur/internal/logging"
	"murmur/internal/pipeline"
	"murmur/internal/staging"
	"murmur/internal/tenants"
	"murmur/internal/whisper"
)

// staleSweepInterval bounds how long an orphaned staging file can
// outlive its retention window.
const staleSweepInterval = time.Hour

// Daemon coordinates the API server, periodic staging cleanup, and
// single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *tenants.Store
	pipeline *pipeline.Pipeline
	runner   *whisper.Runner

	lockPath string
	lock     *flock.Flock

	api       *apiServer
	startedAt time.Time
	running   atomic.Bool
	ctx       context.Context
	cancel    context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool            `json:"running"`
	PID          int             `json:"pid"`
	StartedAt    time.Time       `json:"startedAt"`
	APIBind      string          `json:"apiBind"`
	DBPath       string          `json:"dbPath"`
	LockFilePath string          `json:"lockFilePath"`
	Dependencies []deps.Status   `json:"dependencies"`
	TempDir      deps.Status     `json:"tempDir"`
	Models       map[string]bool `json:"models"`
	LiveRuns     int             `json:"liveRuns"`
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *tenants.Store, runner *whisper.Runner, pipe *pipeline.Pipeline, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || runner == nil || pipe == nil {
		return nil, errors.New("daemon requires config, store, runner, and pipeline")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		pipeline: pipe,
		runner:   runner,
		lockPath: cfg.Paths.LockFile,
		lock:     flock.New(cfg.Paths.LockFile),
	}, nil
}

// Start acquires the daemon lock, binds the API listener, and launches
// the staging sweeper. It returns once the daemon is serving.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another murmurd instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	api, err := newAPIServer(d.cfg, d, d.logger)
	if err != nil {
		d.releaseLock()
		return err
	}
	d.api = api
	if err := d.api.start(d.ctx); err != nil {
		d.releaseLock()
		return err
	}

	go d.sweepStaging(d.ctx)

	d.startedAt = time.Now()
	d.running.Store(true)
	d.logger.Info("murmurd started",
		logging.String("lock", d.lockPath),
		logging.String("bind", d.cfg.Paths.APIBind))
	return nil
}

// Stop shuts the API down, kills any transcription processes still
// running, and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	d.running.Store(false)
	if d.cancel != nil {
		d.cancel()
	}
	if d.api != nil {
		d.api.stop()
	}
	d.runner.Reaper().KillAll()
	d.releaseLock()
	d.logger.Info("murmurd stopped")
}

// Addr reports the bound API address, useful when the configured bind
// uses an ephemeral port.
func (d *Daemon) Addr() string {
	if d.api == nil {
		return ""
	}
	return d.api.addr()
}

// Status gathers runtime and environment information. Model entries come
// from the availability cache only; ProbeModels forces uncached probes.
func (d *Daemon) Status() Status {
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		StartedAt:    d.startedAt,
		APIBind:      d.Addr(),
		DBPath:       d.store.Path(),
		LockFilePath: d.lockPath,
		Dependencies: deps.CheckBinaries(deps.Requirements(d.cfg)),
		TempDir:      deps.CheckTempDir(d.cfg.Paths.TempDir),
		Models:       d.runner.Cache().Snapshot(),
		LiveRuns:     d.runner.Reaper().Live(),
	}
}

// ProbeModels ensures every configured model size has a cache entry,
// probing the ones that were never checked.
func (d *Daemon) ProbeModels(ctx context.Context) map[string]bool {
	for _, model := range tenants.ModelSizes() {
		if _, known := d.runner.Cache().Lookup(model); !known {
			_ = d.runner.ProbeModel(ctx, model)
		}
	}
	return d.runner.Cache().Snapshot()
}

func (d *Daemon) sweepStaging(ctx context.Context) {
	maxAge := time.Duration(d.cfg.Staging.StaleAfterHours) * time.Hour
	if maxAge <= 0 {
		return
	}
	ticker := time.NewTicker(staleSweepInterval)
	defer ticker.Stop()

	staging.CleanStale(d.cfg.Paths.TempDir, maxAge, d.logger)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			staging.CleanStale(d.cfg.Paths.TempDir, maxAge, d.logger)
		}
	}
}

func (d *Daemon) releaseLock() {
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
}
