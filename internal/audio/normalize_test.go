package audio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"murmur/internal/services"
)

type stubProber struct {
	byPath map[string]Metadata
	err    error
	calls  []string
}

func (s *stubProber) Probe(_ context.Context, path string) (Metadata, error) {
	s.calls = append(s.calls, path)
	if s.err != nil {
		return Metadata{}, s.err
	}
	return s.byPath[path], nil
}

func TestNormalizeDurationShortCircuit(t *testing.T) {
	prober := &stubProber{byPath: map[string]Metadata{
		"in.wav": {DurationSeconds: 15, SampleRateHz: 44100, ChannelCount: 2},
	}}
	normalizer := NewNormalizer("ffmpeg", prober)
	transcoded := false
	normalizer.WithCommandRunner(func(context.Context, string, ...string) error {
		transcoded = true
		return nil
	})

	_, err := normalizer.Normalize(context.Background(), "in.wav", "out.wav", NormalizeOptions{MaxDurationSeconds: 10})
	if !errors.Is(err, services.ErrDurationExceeded) {
		t.Fatalf("expected duration exceeded, got %v", err)
	}
	if transcoded {
		t.Fatal("transcoder must not run for over-length input")
	}
}

func TestNormalizeSuccessReturnsOutputMetadata(t *testing.T) {
	prober := &stubProber{byPath: map[string]Metadata{
		"in.ogg":  {DurationSeconds: 20, SampleRateHz: 48000, ChannelCount: 2},
		"out.wav": {DurationSeconds: 20, SampleRateHz: 16000, ChannelCount: 1, ContainerFormat: "wav"},
	}}
	normalizer := NewNormalizer("ffmpeg", prober)
	var gotArgs []string
	normalizer.WithCommandRunner(func(_ context.Context, _ string, args ...string) error {
		gotArgs = args
		return nil
	})

	meta, err := normalizer.Normalize(context.Background(), "in.ogg", "out.wav", NormalizeOptions{
		MaxDurationSeconds: 300,
		Loudnorm:           true,
	})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if meta.SampleRateHz != 16000 || meta.ChannelCount != 1 {
		t.Fatalf("expected output metadata, got %+v", meta)
	}

	joined := strings.Join(gotArgs, " ")
	for _, want := range []string{"-ar 16000", "-ac 1", "highpass=f=80", "lowpass=f=8000", "loudnorm", "pcm_s16le", "out.wav"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("args %q missing %q", joined, want)
		}
	}
}

func TestNormalizeOmitsLoudnormWhenDisabled(t *testing.T) {
	args := buildNormalizeArgs("a.wav", "b.wav", NormalizeOptions{}.withDefaults())
	if strings.Contains(strings.Join(args, " "), "loudnorm") {
		t.Fatalf("loudnorm present in %v", args)
	}
}

func TestNormalizeTimeout(t *testing.T) {
	prober := &stubProber{byPath: map[string]Metadata{
		"in.wav": {DurationSeconds: 5},
	}}
	normalizer := NewNormalizer("ffmpeg", prober)
	normalizer.WithCommandRunner(func(ctx context.Context, _ string, _ ...string) error {
		<-ctx.Done()
		return ctx.Err()
	})

	start := time.Now()
	_, err := normalizer.Normalize(context.Background(), "in.wav", "out.wav", NormalizeOptions{
		MaxDurationSeconds: 300,
		Timeout:            50 * time.Millisecond,
	})
	if !errors.Is(err, services.ErrProcessingTimeout) {
		t.Fatalf("expected processing timeout, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("timeout took too long: %v", elapsed)
	}
}

func TestNormalizeFailsFastWhenTranscoderHangs(t *testing.T) {
	stub := filepath.Join(t.TempDir(), "ffmpeg")
	script := "#!/bin/sh\ntrap '' TERM\nsleep 30 &\nwait\n"
	if err := os.WriteFile(stub, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	prober := &stubProber{byPath: map[string]Metadata{
		"in.wav": {DurationSeconds: 5},
	}}
	normalizer := NewNormalizer(stub, prober)

	start := time.Now()
	_, err := normalizer.Normalize(context.Background(), "in.wav", "out.wav", NormalizeOptions{
		MaxDurationSeconds: 300,
		Timeout:            100 * time.Millisecond,
	})
	if !errors.Is(err, services.ErrProcessingTimeout) {
		t.Fatalf("expected processing timeout, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("transcode did not fail fast: %v", elapsed)
	}
}

func TestNormalizePropagatesProbeError(t *testing.T) {
	prober := &stubProber{err: services.Wrap(services.ErrProbe, "probe", "inspect", "bad file", nil)}
	normalizer := NewNormalizer("ffmpeg", prober)
	_, err := normalizer.Normalize(context.Background(), "in.wav", "out.wav", NormalizeOptions{})
	if !errors.Is(err, services.ErrProbe) {
		t.Fatalf("expected probe error, got %v", err)
	}
}
