package whisper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"murmur/internal/logging"
	"murmur/internal/services"
)

// Default run bounds. The transcription timer is independent of the
// normalization timeout upstream in the pipeline.
const (
	DefaultTimeout   = 60 * time.Second
	DefaultKillGrace = 5 * time.Second
)

// runState tracks where a transcription run is in its lifecycle, for
// logging and failure attribution.
type runState string

const (
	stateIdle       runState = "idle"
	stateModelCheck runState = "model_check"
	stateRunning    runState = "running"
	stateCompleted  runState = "completed"
	stateFailed     runState = "failed"
	stateTimedOut   runState = "timed_out"
)

// Config holds the runner's binary path and timing bounds.
type Config struct {
	Binary    string
	Timeout   time.Duration
	KillGrace time.Duration
}

// Request describes a single transcription invocation.
type Request struct {
	AudioPath   string
	ModelSize   string
	Language    string
	Temperature float64
}

// Runner spawns the whisper bridge for one audio file at a time. Each
// run checks model availability, executes the bridge under a hard
// timeout, and escalates SIGTERM to SIGKILL when the process does not
// exit within the grace window.
type Runner struct {
	cfg    Config
	cache  *AvailabilityCache
	reaper *Reaper
	logger *slog.Logger
}

// NewRunner constructs a Runner. Zero timing fields fall back to the
// package defaults; cache and reaper may be shared across runners.
func NewRunner(cfg Config, cache *AvailabilityCache, reaper *Reaper, logger *slog.Logger) *Runner {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.KillGrace <= 0 {
		cfg.KillGrace = DefaultKillGrace
	}
	if cache == nil {
		cache = NewAvailabilityCache()
	}
	if reaper == nil {
		reaper = NewReaper()
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{cfg: cfg, cache: cache, reaper: reaper, logger: logger}
}

// Cache exposes the availability cache for status reporting.
func (r *Runner) Cache() *AvailabilityCache { return r.cache }

// Reaper exposes the process registry for daemon shutdown.
func (r *Runner) Reaper() *Reaper { return r.reaper }

// EnsureModel verifies that the requested model can be loaded. A cached
// positive result returns immediately; a cached negative result fails
// without spawning a process. Unknown models are probed on demand.
func (r *Runner) EnsureModel(ctx context.Context, model string) error {
	if available, known := r.cache.Lookup(model); known {
		if available {
			return nil
		}
		return services.Wrap(services.ErrModelUnavailable, "transcription", "model check",
			fmt.Sprintf("model %q is not available on this host", model), nil)
	}
	return r.ProbeModel(ctx, model)
}

// ProbeModel runs the bridge's model check and records the outcome.
func (r *Runner) ProbeModel(ctx context.Context, model string) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.cfg.Binary, "check-model", "--model", model) //nolint:gosec
	err := cmd.Run()
	available := err == nil
	r.cache.Record(model, available)
	if available {
		return nil
	}
	return services.Wrap(services.ErrModelUnavailable, "transcription", "model check",
		fmt.Sprintf("model %q failed its load check", model), err)
}

// Transcribe runs the bridge against a normalized audio file and parses
// its JSON output. The returned result includes wall-clock processing
// time measured around the subprocess.
func (r *Runner) Transcribe(ctx context.Context, req Request) (Result, error) {
	state := stateModelCheck
	log := r.logger.With(
		logging.String(logging.FieldComponent, "whisper"),
		logging.String("model", req.ModelSize),
	)

	if err := r.EnsureModel(ctx, req.ModelSize); err != nil {
		log.Warn("model unavailable", logging.String(logging.FieldStage, string(state)))
		return Result{}, err
	}

	state = stateRunning
	runCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	args := buildTranscribeArgs(req)
	cmd := exec.CommandContext(runCtx, r.cfg.Binary, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Cancel = func() error {
		return cmd.Process.Signal(unix.SIGTERM)
	}
	cmd.WaitDelay = r.cfg.KillGrace

	started := time.Now()
	if err := cmd.Start(); err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, "transcription", "start",
			"failed to launch whisper bridge", err)
	}
	r.reaper.Track(cmd.Process)
	pid := cmd.Process.Pid
	log.Debug("whisper started",
		logging.String(logging.FieldStage, string(state)),
		logging.Int("pid", pid))
	runErr := cmd.Wait()
	r.reaper.Untrack(pid)
	elapsed := time.Since(started)

	if runCtx.Err() == context.DeadlineExceeded {
		state = stateTimedOut
		log.Warn("transcription timed out",
			logging.String(logging.FieldStage, string(state)),
			logging.Duration("elapsed", elapsed))
		return Result{}, services.Wrap(services.ErrTranscriptionTimeout, "transcription", "run",
			fmt.Sprintf("whisper exceeded the %s limit", r.cfg.Timeout), nil)
	}

	if runErr != nil {
		return Result{}, r.classifyFailure(log, stdout.Bytes(), stderr.Bytes(), runErr)
	}

	result, err := parseResult(stdout.Bytes())
	if err != nil {
		log.Error("unparseable transcription output",
			logging.String(logging.FieldStage, string(stateFailed)),
			logging.String("raw_output", truncateForLog(stdout.String())))
		return Result{}, services.Wrap(services.ErrResultParse, "transcription", "parse result",
			"whisper exited successfully but its output could not be decoded", err)
	}

	state = stateCompleted
	result.ProcessingDurationSeconds = elapsed.Seconds()
	log.Info("transcription completed",
		logging.String(logging.FieldStage, string(state)),
		logging.String("language", result.DetectedLanguage),
		logging.Duration("elapsed", elapsed))
	return result, nil
}

// classifyFailure maps a non-zero bridge exit to a service error,
// preferring the bridge's structured error payload over raw stderr.
func (r *Runner) classifyFailure(log *slog.Logger, stdout, stderr []byte, runErr error) error {
	if kind, message, ok := parseErrorPayload(stdout); ok {
		log.Error("whisper reported failure",
			logging.String(logging.FieldStage, string(stateFailed)),
			logging.String("bridge_error", kind))
		marker := services.ErrExternalTool
		if kind == "model_unavailable" || kind == "model_load_failed" {
			marker = services.ErrModelUnavailable
		}
		return services.Wrap(marker, "transcription", "run", message, runErr)
	}

	detail := strings.TrimSpace(string(stderr))
	if detail == "" {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			detail = fmt.Sprintf("whisper exited with status %d", exitErr.ExitCode())
		} else {
			detail = "whisper failed without diagnostic output"
		}
	}
	log.Error("whisper process failed",
		logging.String(logging.FieldStage, string(stateFailed)),
		logging.String(logging.FieldErrorHint, truncateForLog(detail)))
	return services.Wrap(services.ErrExternalTool, "transcription", "run", detail, runErr)
}

func buildTranscribeArgs(req Request) []string {
	args := []string{
		"transcribe",
		"--model", req.ModelSize,
		"--output-format", "json",
		"--temperature", strconv.FormatFloat(req.Temperature, 'f', 2, 64),
	}
	if req.Language != "" && req.Language != "auto" {
		args = append(args, "--language", req.Language)
	}
	args = append(args, req.AudioPath)
	return args
}

func truncateForLog(s string) string {
	const limit = 512
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
