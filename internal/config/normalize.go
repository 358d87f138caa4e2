package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTools()
	c.normalizeTranscription()
	c.normalizeTimeouts()
	c.normalizeLogging()
	if c.Staging.StaleAfterHours <= 0 {
		c.Staging.StaleAfterHours = defaultStaleAfterHours
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.TempDir) == "" {
		c.Paths.TempDir = defaultTempDir
	}
	if c.Paths.TempDir, err = expandPath(c.Paths.TempDir); err != nil {
		return fmt.Errorf("paths.temp_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DBPath) == "" {
		c.Paths.DBPath = defaultDBPath
	}
	if c.Paths.DBPath, err = expandPath(c.Paths.DBPath); err != nil {
		return fmt.Errorf("paths.db_path: %w", err)
	}
	if strings.TrimSpace(c.Paths.LockFile) == "" {
		c.Paths.LockFile = defaultLockFile
	}
	if c.Paths.LockFile, err = expandPath(c.Paths.LockFile); err != nil {
		return fmt.Errorf("paths.lock_file: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeTools() {
	if value, ok := os.LookupEnv("MURMUR_FFMPEG"); ok && strings.TrimSpace(value) != "" {
		c.Tools.FFmpeg = strings.TrimSpace(value)
	}
	if value, ok := os.LookupEnv("MURMUR_FFPROBE"); ok && strings.TrimSpace(value) != "" {
		c.Tools.FFprobe = strings.TrimSpace(value)
	}
	if value, ok := os.LookupEnv("MURMUR_WHISPER"); ok && strings.TrimSpace(value) != "" {
		c.Tools.Whisper = strings.TrimSpace(value)
	}
}

func (c *Config) normalizeTranscription() {
	c.Transcription.ModelSize = strings.ToLower(strings.TrimSpace(c.Transcription.ModelSize))
	if c.Transcription.ModelSize == "" {
		c.Transcription.ModelSize = defaultModelSize
	}
	c.Transcription.Language = strings.ToLower(strings.TrimSpace(c.Transcription.Language))
	if c.Transcription.Language == "" {
		c.Transcription.Language = defaultLanguage
	}
	if c.Transcription.MaxFileSizeMB == 0 {
		c.Transcription.MaxFileSizeMB = defaultMaxFileSizeMB
	}
	if c.Transcription.MaxDurationSeconds == 0 {
		c.Transcription.MaxDurationSeconds = defaultMaxDuration
	}
}

func (c *Config) normalizeTimeouts() {
	if c.Timeouts.ProbeSeconds <= 0 {
		c.Timeouts.ProbeSeconds = defaultProbeSeconds
	}
	if c.Timeouts.NormalizeSeconds <= 0 {
		c.Timeouts.NormalizeSeconds = defaultNormalizeSeconds
	}
	if c.Timeouts.TranscribeSeconds <= 0 {
		c.Timeouts.TranscribeSeconds = defaultTranscribeSeconds
	}
	if c.Timeouts.KillGraceSeconds <= 0 {
		c.Timeouts.KillGraceSeconds = defaultKillGraceSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
}
