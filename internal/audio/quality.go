package audio

import "fmt"

// Quality heuristic thresholds. These gate content that would transcribe
// poorly, distinct from the hard validity rules in ValidateUpload.
const (
	minSampleRateHz    = 8000
	maxChannels        = 2
	minDurationSeconds = 1.0
	maxDurationSeconds = 300.0
	minBitRateBps      = 32000
)

// AssessQuality runs advisory heuristics over probed metadata. Every rule is
// evaluated; the outcome reports all violations at once so callers can surface
// every problem in a single response. Pure function of its input.
func AssessQuality(meta Metadata) ValidationOutcome {
	outcome := ValidationOutcome{IsValid: true}

	if meta.SampleRateHz < minSampleRateHz {
		outcome.append(
			fmt.Sprintf("sample rate %d Hz is too low for reliable recognition", meta.SampleRateHz),
			"record at 16 kHz or higher",
		)
	}
	if meta.ChannelCount > maxChannels {
		outcome.append(
			fmt.Sprintf("%d audio channels present", meta.ChannelCount),
			"downmix to mono or stereo before uploading",
		)
	}
	if meta.DurationSeconds < minDurationSeconds {
		outcome.append(
			fmt.Sprintf("recording is %.2f seconds, too short to transcribe", meta.DurationSeconds),
			"upload a recording longer than one second",
		)
	}
	if meta.DurationSeconds > maxDurationSeconds {
		outcome.append(
			fmt.Sprintf("recording is %.0f seconds, above the %d second advisory limit", meta.DurationSeconds, int(maxDurationSeconds)),
			"split the recording into shorter chunks",
		)
	}
	if meta.BitRateBps < minBitRateBps {
		outcome.append(
			fmt.Sprintf("bit rate %d bps is below the %d bps quality floor", meta.BitRateBps, minBitRateBps),
			"use a higher-quality source encoding",
		)
	}

	return outcome
}

func (o *ValidationOutcome) append(issue, recommendation string) {
	o.IsValid = false
	o.Issues = append(o.Issues, issue)
	o.Recommendations = append(o.Recommendations, recommendation)
}
