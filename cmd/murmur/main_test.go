package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"murmur/internal/testsupport"
)

const probeStubJSON = `cat <<'EOF'
{"streams":[{"index":0,"codec_name":"pcm_s16le","codec_type":"audio","sample_rate":"16000","channels":1}],
 "format":{"format_name":"wav","duration":"20.00","size":"640044","bit_rate":"256017"}}
EOF`

const ffmpegStubScript = `for arg; do last=$arg; done
head -c 4096 /dev/zero > "$last"`

const whisperStubScript = `
if [ "$1" = "check-model" ]; then exit 0; fi
echo '{"text":"cli transcript","language":"en","segments":[{"start":0,"end":2,"text":"cli transcript"}]}'
`

func writeCLIConfig(t *testing.T) string {
	t.Helper()
	binDir := t.TempDir()

	cfg := testsupport.NewConfig(t, testsupport.WithTools(
		testsupport.StubBinary(t, binDir, "ffprobe", probeStubJSON),
		testsupport.StubBinary(t, binDir, "ffmpeg", ffmpegStubScript),
		testsupport.StubBinary(t, binDir, "whisper-bridge", whisperStubScript),
	))

	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	output, err := runCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(output, target) {
		t.Fatalf("expected target path in output, got %q", output)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample config missing: %v", err)
	}

	if _, err := runCommand(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error when config already exists")
	}
	if _, err := runCommand(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
}

func TestConfigShowPrintsResolvedConfig(t *testing.T) {
	configPath := writeCLIConfig(t)

	output, err := runCommand(t, "--config", configPath, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(output, "[transcription]") {
		t.Fatalf("expected toml sections in output, got %q", output)
	}
}

func TestProbeCommandRendersMetadata(t *testing.T) {
	configPath := writeCLIConfig(t)
	audioPath := filepath.Join(t.TempDir(), "meeting.wav")
	testsupport.WriteFile(t, audioPath, 1024)

	output, err := runCommand(t, "--config", configPath, "probe", audioPath)
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if !strings.Contains(output, "16000 Hz") {
		t.Fatalf("expected sample rate in output, got %q", output)
	}
	if !strings.Contains(output, "Quality: ok") {
		t.Fatalf("expected clean quality verdict, got %q", output)
	}
}

func TestTranscribeCommandOneShot(t *testing.T) {
	configPath := writeCLIConfig(t)
	audioPath := filepath.Join(t.TempDir(), "meeting.wav")
	testsupport.WriteFile(t, audioPath, 1024)

	output, err := runCommand(t, "--config", configPath, "transcribe", audioPath, "--segments")
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if !strings.Contains(output, "cli transcript") {
		t.Fatalf("expected transcript in output, got %q", output)
	}
	if !strings.Contains(output, "Language: en") {
		t.Fatalf("expected language line, got %q", output)
	}
}

func TestTranscribeCommandRejectsBadExtension(t *testing.T) {
	configPath := writeCLIConfig(t)
	notesPath := filepath.Join(t.TempDir(), "notes.txt")
	testsupport.WriteFile(t, notesPath, 64)

	if _, err := runCommand(t, "--config", configPath, "transcribe", notesPath); err == nil {
		t.Fatal("expected validation error for unsupported extension")
	}
}
