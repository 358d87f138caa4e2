package pipeline

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"murmur/internal/config"
	"murmur/internal/ledger"
	"murmur/internal/services"
	"murmur/internal/tenants"
	"murmur/internal/testsupport"
	"murmur/internal/whisper"
)

const goodProbeJSON = `cat <<'EOF'
{"streams":[{"index":0,"codec_name":"pcm_s16le","codec_type":"audio","sample_rate":"16000","channels":1}],
 "format":{"format_name":"wav","duration":"20.00","size":"640044","bit_rate":"256017"}}
EOF`

const lowQualityProbeJSON = `cat <<'EOF'
{"streams":[{"index":0,"codec_name":"pcm_s16le","codec_type":"audio","sample_rate":"4000","channels":1}],
 "format":{"format_name":"wav","duration":"20.00","size":"640044","bit_rate":"256017"}}
EOF`

const goodWhisperScript = `
if [ "$1" = "check-model" ]; then exit 0; fi
echo '{"text":"hello","language":"en","segments":[{"start":0,"end":1,"text":"hello"}]}'
`

// ffmpegStub creates its final argument as a small file, mimicking a
// successful transcode.
const ffmpegStub = `for arg; do last=$arg; done
head -c 4096 /dev/zero > "$last"`

type testEnv struct {
	cfg      *config.Config
	pipeline *Pipeline
	tempDir  string
}

func newTestEnv(t *testing.T, probeScript, ffmpegScript, whisperScript string) *testEnv {
	t.Helper()
	binDir := t.TempDir()

	cfg := testsupport.NewConfig(t, testsupport.WithTools(
		testsupport.StubBinary(t, binDir, "ffprobe", probeScript),
		testsupport.StubBinary(t, binDir, "ffmpeg", ffmpegScript),
		testsupport.StubBinary(t, binDir, "whisper-bridge", whisperScript),
	))

	runner := whisper.NewRunner(whisper.Config{Binary: cfg.Tools.Whisper}, nil, nil, nil)
	return &testEnv{
		cfg:      cfg,
		pipeline: New(cfg, runner, nil),
		tempDir:  cfg.Paths.TempDir,
	}
}

func (e *testEnv) request() Request {
	body := strings.NewReader("fake audio bytes")
	return Request{
		TenantID:  "acme",
		Filename:  "meeting.wav",
		MIMEType:  "audio/wav",
		SizeBytes: int64(body.Len()),
		Body:      body,
		Config: tenants.TranscriptionConfig{
			ModelSize:          "tiny",
			Language:           "auto",
			Temperature:        0,
			MaxFileSizeMB:      50,
			MaxDurationSeconds: 300,
			Enabled:            true,
		},
	}
}

func assertTempDirEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return
	}
	if err != nil {
		t.Fatalf("read temp dir: %v", err)
	}
	for _, entry := range entries {
		t.Errorf("temp file left behind: %s", entry.Name())
	}
}

func TestTranscribeEndToEnd(t *testing.T) {
	env := newTestEnv(t, goodProbeJSON, ffmpegStub, goodWhisperScript)

	outcome, err := env.pipeline.Transcribe(context.Background(), env.request())
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if outcome.Result.Text != "hello" {
		t.Fatalf("unexpected text %q", outcome.Result.Text)
	}
	if outcome.Result.DetectedLanguage != "en" {
		t.Fatalf("unexpected language %q", outcome.Result.DetectedLanguage)
	}
	if outcome.Metadata.SampleRateHz != 16000 {
		t.Fatalf("expected post-normalization metadata, got %+v", outcome.Metadata)
	}
	assertTempDirEmpty(t, env.tempDir)
}

func TestTranscribeRejectsDisabledTenant(t *testing.T) {
	env := newTestEnv(t, goodProbeJSON, ffmpegStub, goodWhisperScript)

	req := env.request()
	req.Config.Enabled = false
	_, err := env.pipeline.Transcribe(context.Background(), req)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	assertTempDirEmpty(t, env.tempDir)
}

func TestTranscribeRejectsOutOfRangeConfig(t *testing.T) {
	env := newTestEnv(t, goodProbeJSON, ffmpegStub, goodWhisperScript)

	req := env.request()
	req.Config.Temperature = 3
	req.Config.ModelSize = "huge"
	_, err := env.pipeline.Transcribe(context.Background(), req)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "temperature") || !strings.Contains(err.Error(), "modelSize") {
		t.Fatalf("expected one message per violated field, got %v", err)
	}
	assertTempDirEmpty(t, env.tempDir)
}

func TestTranscribeZeroByteUploadCreatesNoFiles(t *testing.T) {
	env := newTestEnv(t, goodProbeJSON, ffmpegStub, goodWhisperScript)

	req := env.request()
	req.SizeBytes = 0
	req.Body = strings.NewReader("")
	_, err := env.pipeline.Transcribe(context.Background(), req)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	assertTempDirEmpty(t, env.tempDir)
}

func TestTranscribeCleansUpOnQualityFailure(t *testing.T) {
	env := newTestEnv(t, lowQualityProbeJSON, ffmpegStub, goodWhisperScript)

	_, err := env.pipeline.Transcribe(context.Background(), env.request())
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "sample rate") {
		t.Fatalf("expected sample rate issue, got %v", err)
	}
	assertTempDirEmpty(t, env.tempDir)
}

func TestTranscribeCleansUpOnProbeFailure(t *testing.T) {
	env := newTestEnv(t, `echo "unreadable" >&2; exit 1`, ffmpegStub, goodWhisperScript)

	_, err := env.pipeline.Transcribe(context.Background(), env.request())
	if !errors.Is(err, services.ErrProbe) {
		t.Fatalf("expected probe error, got %v", err)
	}
	assertTempDirEmpty(t, env.tempDir)
}

func TestTranscribeCleansUpOnTranscriptionFailure(t *testing.T) {
	whisperScript := `
if [ "$1" = "check-model" ]; then exit 0; fi
echo "boom" >&2
exit 1
`
	env := newTestEnv(t, goodProbeJSON, ffmpegStub, whisperScript)

	_, err := env.pipeline.Transcribe(context.Background(), env.request())
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	assertTempDirEmpty(t, env.tempDir)
}

func TestTranscribeEnforcesProcessedSizeLimit(t *testing.T) {
	bigOutput := `for arg; do last=$arg; done
head -c 2097153 /dev/zero > "$last"`
	env := newTestEnv(t, goodProbeJSON, bigOutput, goodWhisperScript)

	req := env.request()
	req.Config.MaxFileSizeMB = 1
	_, err := env.pipeline.Transcribe(context.Background(), req)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "tenant limit") {
		t.Fatalf("expected processed-size detail, got %v", err)
	}
	assertTempDirEmpty(t, env.tempDir)
}

func TestTranscribeRejectsOverlongAudio(t *testing.T) {
	env := newTestEnv(t, goodProbeJSON, ffmpegStub, goodWhisperScript)

	req := env.request()
	req.Config.MaxDurationSeconds = 10
	_, err := env.pipeline.Transcribe(context.Background(), req)
	if !errors.Is(err, services.ErrDurationExceeded) {
		t.Fatalf("expected duration exceeded, got %v", err)
	}
	assertTempDirEmpty(t, env.tempDir)
}

func TestCheckReportsMetadataAndQuality(t *testing.T) {
	env := newTestEnv(t, lowQualityProbeJSON, ffmpegStub, goodWhisperScript)

	report, err := env.pipeline.Check(context.Background(), env.request())
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if report.Metadata.SampleRateHz != 4000 {
		t.Fatalf("unexpected metadata: %+v", report.Metadata)
	}
	if report.Quality.IsValid || len(report.Quality.Issues) == 0 {
		t.Fatalf("expected quality issues, got %+v", report.Quality)
	}
	assertTempDirEmpty(t, env.tempDir)
}

func TestReleaseLogsCleanupFailures(t *testing.T) {
	stuck := filepath.Join(t.TempDir(), "run")
	if err := os.MkdirAll(filepath.Join(stuck, "inner"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	led := ledger.New(nil)
	led.Register(stuck)

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	(&Pipeline{}).release(led, log)

	logged := buf.String()
	if !strings.Contains(logged, "cleanup_failed") {
		t.Fatalf("expected cleanup failure log, got %q", logged)
	}
	if !strings.Contains(logged, stuck) {
		t.Fatalf("expected offending path in log, got %q", logged)
	}
}
