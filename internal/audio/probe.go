package audio

import (
	"context"
	"time"

	"murmur/internal/media/ffprobe"
	"murmur/internal/services"
)

// DefaultProbeTimeout bounds one ffprobe inspection. Probing is expected to be
// near-instant; a prober that stalls indicates a corrupt file and should fail
// fast rather than hold up the pipeline.
const DefaultProbeTimeout = 10 * time.Second

// Prober inspects audio files and reports technical metadata. It never
// mutates the file it probes.
type Prober struct {
	binary  string
	timeout time.Duration
}

// NewProber constructs a Prober around the given ffprobe binary. A
// non-positive timeout falls back to DefaultProbeTimeout.
func NewProber(binary string, timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &Prober{binary: binary, timeout: timeout}
}

// Probe inspects the file at path and returns its audio metadata. Files the
// prober cannot parse, and files without an audio stream, fail with a probe
// error.
func (p *Prober) Probe(ctx context.Context, path string) (Metadata, error) {
	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	result, err := ffprobe.Inspect(probeCtx, p.binary, path)
	if err != nil {
		if probeCtx.Err() != nil {
			return Metadata{}, services.Wrap(services.ErrProbe, "probe", "inspect",
				"inspection exceeded its time bound; file is likely corrupt", err)
		}
		return Metadata{}, services.Wrap(services.ErrProbe, "probe", "inspect", "file is not parseable media", err)
	}
	if result.AudioStreamCount() == 0 {
		return Metadata{}, services.Wrap(services.ErrProbe, "probe", "inspect", "file contains no audio stream", nil)
	}
	return MetadataFromProbe(result), nil
}
