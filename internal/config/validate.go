package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateTimeouts(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.TempDir == "" {
		return errors.New("paths.temp_dir must be set")
	}
	if c.Paths.DBPath == "" {
		return errors.New("paths.db_path must be set")
	}
	return nil
}

func (c *Config) validateTranscription() error {
	switch c.Transcription.ModelSize {
	case "tiny", "small":
	default:
		return fmt.Errorf("transcription.model_size must be \"tiny\" or \"small\", got %q", c.Transcription.ModelSize)
	}
	switch c.Transcription.Language {
	case "zh", "en", "auto":
	default:
		return fmt.Errorf("transcription.language must be \"zh\", \"en\", or \"auto\", got %q", c.Transcription.Language)
	}
	if c.Transcription.Temperature < 0 || c.Transcription.Temperature > 1 {
		return errors.New("transcription.temperature must be between 0 and 1")
	}
	if c.Transcription.MaxFileSizeMB < 1 || c.Transcription.MaxFileSizeMB > 100 {
		return errors.New("transcription.max_file_size_mb must be between 1 and 100")
	}
	if c.Transcription.MaxDurationSeconds < 1 || c.Transcription.MaxDurationSeconds > 600 {
		return errors.New("transcription.max_duration_seconds must be between 1 and 600")
	}
	return nil
}

func (c *Config) validateTimeouts() error {
	if c.Timeouts.TranscribeSeconds < c.Timeouts.KillGraceSeconds {
		return errors.New("timeouts.transcribe_seconds must not be smaller than timeouts.kill_grace_seconds")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
		return nil
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}
}
