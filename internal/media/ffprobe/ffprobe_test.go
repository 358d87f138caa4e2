package ffprobe

import (
	"testing"
)

func TestResultHelpers(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "video"},
			{CodecType: "audio", SampleRate: "44100", Channels: 2, BitRate: "128000"},
			{CodecType: "audio", SampleRate: "8000", Channels: 1},
		},
		Format: Format{
			Duration: "123.45",
			Size:     "1000",
			BitRate:  "32000",
		},
	}
	if result.AudioStreamCount() != 2 {
		t.Fatalf("expected 2 audio streams, got %d", result.AudioStreamCount())
	}
	if result.DurationSeconds() != 123.45 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 1000 {
		t.Fatalf("unexpected size: %d", result.SizeBytes())
	}
	if result.BitRate() != 32000 {
		t.Fatalf("unexpected bitrate: %d", result.BitRate())
	}
	if result.SampleRateHz() != 44100 {
		t.Fatalf("unexpected sample rate: %d", result.SampleRateHz())
	}
	if result.ChannelCount() != 2 {
		t.Fatalf("unexpected channel count: %d", result.ChannelCount())
	}
}

func TestResultStreamFallbacks(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "audio", Duration: "10.5", BitRate: "64000"},
		},
		Format: Format{},
	}
	if result.DurationSeconds() != 10.5 {
		t.Fatalf("expected stream duration fallback, got %v", result.DurationSeconds())
	}
	if result.BitRate() != 64000 {
		t.Fatalf("expected stream bitrate fallback, got %d", result.BitRate())
	}
}

func TestResultHelpersHandleInvalidNumbers(t *testing.T) {
	result := Result{
		Format: Format{
			Duration: "bad",
			Size:     "-1",
			BitRate:  "nope",
		},
	}
	if result.DurationSeconds() != 0 {
		t.Fatalf("expected duration 0, got %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 0 {
		t.Fatalf("expected size 0, got %d", result.SizeBytes())
	}
	if result.BitRate() != 0 {
		t.Fatalf("expected bitrate 0, got %d", result.BitRate())
	}
}

func TestNoAudioStream(t *testing.T) {
	result := Result{Streams: []Stream{{CodecType: "video"}}}
	if _, ok := result.FirstAudioStream(); ok {
		t.Fatal("expected no audio stream")
	}
	if result.SampleRateHz() != 0 || result.ChannelCount() != 0 {
		t.Fatal("expected zero audio properties")
	}
}
