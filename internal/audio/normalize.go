package audio

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"murmur/internal/services"
)

// Normalization targets the recognition subprocess expects. The band-pass
// bounds suppress sub-audible rumble and ultrasonic noise.
const (
	DefaultTargetSampleRateHz = 16000
	DefaultTargetChannels     = 1
	DefaultNormalizeTimeout   = 5 * time.Minute
	highpassHz                = 80
	lowpassHz                 = 8000

	// transcodeKillGrace bounds how long a cancelled ffmpeg may hold its
	// output pipes open before it is killed and Wait returns.
	transcodeKillGrace = 2 * time.Second
)

// NormalizeOptions configures one normalization run.
type NormalizeOptions struct {
	SampleRateHz       int
	Channels           int
	Loudnorm           bool
	MaxDurationSeconds int
	Timeout            time.Duration
}

func (o NormalizeOptions) withDefaults() NormalizeOptions {
	if o.SampleRateHz <= 0 {
		o.SampleRateHz = DefaultTargetSampleRateHz
	}
	if o.Channels <= 0 {
		o.Channels = DefaultTargetChannels
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultNormalizeTimeout
	}
	return o
}

// MetadataProber abstracts probing for the normalizer (and tests).
type MetadataProber interface {
	Probe(ctx context.Context, path string) (Metadata, error)
}

// Normalizer converts arbitrary input audio into the canonical format
// expected downstream: mono, fixed sample rate, band-limited, optionally
// loudness-normalized, in a lossless WAV container.
type Normalizer struct {
	ffmpegBinary  string
	prober        MetadataProber
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewNormalizer constructs a Normalizer that probes through the given prober
// and transcodes with the given ffmpeg binary.
func NewNormalizer(ffmpegBinary string, prober MetadataProber) *Normalizer {
	return &Normalizer{ffmpegBinary: ffmpegBinary, prober: prober}
}

// WithCommandRunner sets a custom command runner (for testing).
func (n *Normalizer) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	n.commandRunner = runner
}

// Normalize probes inputPath, rejects input longer than the configured
// maximum before any transcoding starts, then writes the normalized audio to
// outputPath and returns the output file's metadata. The transcode runs under
// a hard wall-clock timeout; on expiry the child is terminated and the call
// fails with a processing-timeout error. Partial output is the caller's to
// remove via the run ledger.
func (n *Normalizer) Normalize(ctx context.Context, inputPath, outputPath string, opts NormalizeOptions) (Metadata, error) {
	opts = opts.withDefaults()

	input, err := n.prober.Probe(ctx, inputPath)
	if err != nil {
		return Metadata{}, err
	}
	if opts.MaxDurationSeconds > 0 && input.DurationSeconds > float64(opts.MaxDurationSeconds) {
		return Metadata{}, services.Wrap(services.ErrDurationExceeded, "normalize", "precheck",
			fmt.Sprintf("audio is %.1f seconds, limit is %d seconds", input.DurationSeconds, opts.MaxDurationSeconds), nil)
	}

	runCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	args := buildNormalizeArgs(inputPath, outputPath, opts)
	if err := n.run(runCtx, n.ffmpegBinary, args...); err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return Metadata{}, services.Wrap(services.ErrProcessingTimeout, "normalize", "transcode",
				fmt.Sprintf("processing exceeded %s and the transcoder was terminated", opts.Timeout), err)
		}
		return Metadata{}, services.Wrap(services.ErrExternalTool, "normalize", "transcode", "ffmpeg failed", err)
	}

	output, err := n.prober.Probe(ctx, outputPath)
	if err != nil {
		return Metadata{}, services.Wrap(services.ErrExternalTool, "normalize", "verify",
			"transcoder reported success but the output is not probeable", err)
	}
	return output, nil
}

func (n *Normalizer) run(ctx context.Context, name string, args ...string) error {
	if n.commandRunner != nil {
		return n.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	cmd.Cancel = func() error {
		return cmd.Process.Signal(unix.SIGTERM)
	}
	cmd.WaitDelay = transcodeKillGrace
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// buildNormalizeArgs constructs the ffmpeg invocation: resample, downmix,
// band-pass, then optional loudness normalization, encoded as lossless PCM.
func buildNormalizeArgs(inputPath, outputPath string, opts NormalizeOptions) []string {
	filters := []string{
		fmt.Sprintf("highpass=f=%d", highpassHz),
		fmt.Sprintf("lowpass=f=%d", lowpassHz),
	}
	if opts.Loudnorm {
		filters = append(filters, "loudnorm=I=-16:TP=-1.5:LRA=11")
	}

	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", inputPath,
		"-vn",
		"-sn",
		"-dn",
		"-ar", fmt.Sprintf("%d", opts.SampleRateHz),
		"-ac", fmt.Sprintf("%d", opts.Channels),
		"-af", strings.Join(filters, ","),
		"-c:a", "pcm_s16le",
		outputPath,
	}
}
