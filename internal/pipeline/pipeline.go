package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"murmur/internal/audio"
	"murmur/internal/config"
	"murmur/internal/fileutil"
	"murmur/internal/language"
	"murmur/internal/ledger"
	"murmur/internal/logging"
	"murmur/internal/services"
	"murmur/internal/staging"
	"murmur/internal/tenants"
	"murmur/internal/whisper"
)

// Request carries one upload and the tenant policy resolved for it.
type Request struct {
	TenantID  string
	Filename  string
	MIMEType  string
	SizeBytes int64
	Body      io.Reader
	Config    tenants.TranscriptionConfig
}

// Outcome is a successful run: the transcript plus the metadata of the
// normalized file that was actually transcribed.
type Outcome struct {
	Result   whisper.Result `json:"result"`
	Metadata audio.Metadata `json:"metadata"`
}

// CheckReport is the probe-and-gate-only diagnostic result.
type CheckReport struct {
	Metadata audio.Metadata          `json:"metadata"`
	Quality  audio.ValidationOutcome `json:"quality"`
}

// Pipeline wires the stages together around a shared configuration and
// transcription runner. It is safe for concurrent use; each run stages
// its files under collision-resistant names and cleans up after itself.
type Pipeline struct {
	cfg        *config.Config
	prober     *audio.Prober
	normalizer *audio.Normalizer
	runner     *whisper.Runner
	logger     *slog.Logger
}

// New constructs a Pipeline from the daemon configuration.
func New(cfg *config.Config, runner *whisper.Runner, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	prober := audio.NewProber(cfg.FFprobeBinary(), time.Duration(cfg.Timeouts.ProbeSeconds)*time.Second)
	return &Pipeline{
		cfg:        cfg,
		prober:     prober,
		normalizer: audio.NewNormalizer(cfg.FFmpegBinary(), prober),
		runner:     runner,
		logger:     logging.NewComponentLogger(logger, "pipeline"),
	}
}

// Normalizer exposes the normalizer for tests that stub its command runner.
func (p *Pipeline) Normalizer() *audio.Normalizer { return p.normalizer }

// Transcribe runs the full pipeline for one upload. Validation-class
// failures are reported before any file is staged; once staging begins,
// cleanup runs unconditionally before the call returns.
func (p *Pipeline) Transcribe(ctx context.Context, req Request) (*Outcome, error) {
	log := p.logger.With(logging.String(logging.FieldTenant, req.TenantID))
	if id, ok := services.RequestIDFromContext(ctx); ok {
		log = log.With(logging.String(logging.FieldRequestID, id))
	}

	if err := checkPolicy(req.Config); err != nil {
		return nil, err
	}
	if outcome := audio.ValidateUpload(audio.Upload{
		Filename:  req.Filename,
		MIMEType:  req.MIMEType,
		SizeBytes: req.SizeBytes,
	}); !outcome.IsValid {
		return nil, validationError("upload validation", outcome)
	}
	lang, err := language.Normalize(req.Config.Language)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "pipeline", "language", err.Error(), nil)
	}

	paths, led, err := p.stage(req, log)
	if err != nil {
		return nil, err
	}
	defer p.release(led, log)

	meta, err := p.prober.Probe(ctx, paths.Upload)
	if err != nil {
		return nil, err
	}
	if quality := audio.AssessQuality(meta); !quality.IsValid {
		return nil, validationError("quality gate", quality)
	}

	led.Register(paths.Normalized)
	normalized, err := p.normalizer.Normalize(ctx, paths.Upload, paths.Normalized, audio.NormalizeOptions{
		Loudnorm:           p.cfg.Transcription.Loudnorm,
		MaxDurationSeconds: req.Config.MaxDurationSeconds,
		Timeout:            time.Duration(p.cfg.Timeouts.NormalizeSeconds) * time.Second,
	})
	if err != nil {
		return nil, err
	}
	if err := checkProcessedSize(paths.Normalized, req.Config.MaxFileSizeMB); err != nil {
		return nil, err
	}

	result, err := p.runner.Transcribe(ctx, whisper.Request{
		AudioPath:   paths.Normalized,
		ModelSize:   req.Config.ModelSize,
		Language:    lang,
		Temperature: req.Config.Temperature,
	})
	if err != nil {
		return nil, err
	}

	log.Info("run completed",
		logging.String(logging.FieldEventType, "transcription_completed"),
		logging.Float64("audio_seconds", normalized.DurationSeconds),
		logging.Float64("processing_seconds", result.ProcessingDurationSeconds))
	return &Outcome{Result: result, Metadata: normalized}, nil
}

// Check stages the upload, probes it, and assesses quality without
// transcribing. Used by the diagnostics endpoint.
func (p *Pipeline) Check(ctx context.Context, req Request) (*CheckReport, error) {
	if outcome := audio.ValidateUpload(audio.Upload{
		Filename:  req.Filename,
		MIMEType:  req.MIMEType,
		SizeBytes: req.SizeBytes,
	}); !outcome.IsValid {
		return nil, validationError("upload validation", outcome)
	}

	log := p.logger.With(logging.String(logging.FieldTenant, req.TenantID))
	paths, led, err := p.stage(req, log)
	if err != nil {
		return nil, err
	}
	defer p.release(led, log)

	meta, err := p.prober.Probe(ctx, paths.Upload)
	if err != nil {
		return nil, err
	}
	return &CheckReport{Metadata: meta, Quality: audio.AssessQuality(meta)}, nil
}

// stage copies the upload body into the temp directory under a
// collision-resistant name, registering the path before the file exists.
func (p *Pipeline) stage(req Request, log *slog.Logger) (staging.RunPaths, *ledger.Ledger, error) {
	if err := staging.EnsureDir(p.cfg.Paths.TempDir); err != nil {
		return staging.RunPaths{}, nil, services.Wrap(services.ErrConfiguration, "pipeline", "stage",
			"temp directory is not usable", err)
	}

	paths := staging.NewRunPaths(p.cfg.Paths.TempDir, strings.ToLower(filepath.Ext(req.Filename)))
	led := ledger.New(log)
	led.Register(paths.Upload)
	if _, err := fileutil.WriteFileFrom(req.Body, paths.Upload); err != nil {
		p.release(led, log)
		return staging.RunPaths{}, nil, services.Wrap(services.ErrExternalTool, "pipeline", "stage",
			"failed to stage upload", err)
	}
	log.Debug("upload staged",
		logging.String("run_id", paths.RunID),
		logging.Int64("bytes", req.SizeBytes))
	return paths, led, nil
}

func (p *Pipeline) release(led *ledger.Ledger, log *slog.Logger) {
	for _, failure := range led.ReleaseAll() {
		log.Warn("temp file left behind",
			logging.String(logging.FieldEventType, "cleanup_failed"),
			logging.String("path", failure.Path),
			logging.Error(failure.Error))
	}
}

func checkPolicy(cfg tenants.TranscriptionConfig) error {
	if issues := cfg.Validate(); len(issues) > 0 {
		return services.Wrap(services.ErrValidation, "pipeline", "config",
			strings.Join(issues, "; "), nil)
	}
	if !cfg.Enabled {
		return services.Wrap(services.ErrConfiguration, "pipeline", "config",
			"transcription is disabled for this tenant", nil)
	}
	return nil
}

func checkProcessedSize(path string, maxFileSizeMB int) error {
	info, err := os.Stat(path)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "pipeline", "size check",
			"normalized file missing after transcode", err)
	}
	limit := int64(maxFileSizeMB) << 20
	if info.Size() > limit {
		return services.Wrap(services.ErrValidation, "pipeline", "size check",
			fmt.Sprintf("processed file is %d bytes, tenant limit is %d MB", info.Size(), maxFileSizeMB), nil)
	}
	return nil
}

func validationError(operation string, outcome audio.ValidationOutcome) error {
	detail := strings.Join(outcome.Issues, "; ")
	if len(outcome.Recommendations) > 0 {
		detail += " (" + strings.Join(outcome.Recommendations, "; ") + ")"
	}
	return services.Wrap(services.ErrValidation, "pipeline", operation, detail, nil)
}
