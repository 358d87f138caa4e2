package config

const (
	defaultTempDir           = "~/.local/share/murmur/tmp"
	defaultLogDir            = "~/.local/share/murmur/logs"
	defaultDBPath            = "~/.local/share/murmur/tenants.db"
	defaultLockFile          = "~/.local/share/murmur/murmurd.lock"
	defaultAPIBind           = "127.0.0.1:7319"
	defaultFFmpegBinary      = "ffmpeg"
	defaultFFprobeBinary     = "ffprobe"
	defaultWhisperBinary     = "whisper-bridge"
	defaultModelSize         = "tiny"
	defaultLanguage          = "auto"
	defaultMaxFileSizeMB     = 50
	defaultMaxDuration       = 300
	defaultProbeSeconds      = 10
	defaultNormalizeSeconds  = 300
	defaultTranscribeSeconds = 60
	defaultKillGraceSeconds  = 5
	defaultLogLevel          = "info"
	defaultLogFormat         = "console"
	defaultStaleAfterHours   = 24
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			TempDir:  defaultTempDir,
			LogDir:   defaultLogDir,
			DBPath:   defaultDBPath,
			LockFile: defaultLockFile,
			APIBind:  defaultAPIBind,
		},
		Tools: Tools{
			FFmpeg:  defaultFFmpegBinary,
			FFprobe: defaultFFprobeBinary,
			Whisper: defaultWhisperBinary,
		},
		Transcription: Transcription{
			ModelSize:          defaultModelSize,
			Language:           defaultLanguage,
			Temperature:        0,
			MaxFileSizeMB:      defaultMaxFileSizeMB,
			MaxDurationSeconds: defaultMaxDuration,
			Enabled:            true,
			Loudnorm:           true,
		},
		Timeouts: Timeouts{
			ProbeSeconds:      defaultProbeSeconds,
			NormalizeSeconds:  defaultNormalizeSeconds,
			TranscribeSeconds: defaultTranscribeSeconds,
			KillGraceSeconds:  defaultKillGraceSeconds,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		Staging: Staging{
			StaleAfterHours: defaultStaleAfterHours,
		},
	}
}
