package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"murmur/internal/config"
	"murmur/internal/daemon"
	"murmur/internal/deps"
	"murmur/internal/logging"
	"murmur/internal/pipeline"
	"murmur/internal/tenants"
	"murmur/internal/whisper"
)

func main() {
	configPath := flag.String("config", "", "configuration file path")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, resolvedPath, exists, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	if exists {
		logger.Info("configuration loaded", logging.String("path", resolvedPath))
	} else {
		logger.Info("no configuration file found, using defaults", logging.String("path", resolvedPath))
	}

	for _, status := range deps.CheckBinaries(deps.Requirements(cfg)) {
		if !status.Available {
			logger.Warn("dependency missing",
				logging.String("name", status.Name),
				logging.String(logging.FieldErrorHint, status.Detail),
				logging.String(logging.FieldImpact, status.Description))
		}
	}

	store, err := tenants.Open(cfg)
	if err != nil {
		logger.Error("open tenant store", logging.Error(err))
		return
	}
	defer store.Close()

	runner := whisper.NewRunner(whisper.Config{
		Binary:    cfg.WhisperBinary(),
		Timeout:   time.Duration(cfg.Timeouts.TranscribeSeconds) * time.Second,
		KillGrace: time.Duration(cfg.Timeouts.KillGraceSeconds) * time.Second,
	}, whisper.NewAvailabilityCache(), whisper.NewReaper(), logger)

	pipe := pipeline.New(cfg, runner, logger)
	d, err := daemon.New(cfg, store, runner, pipe, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		return
	}
	if err := d.Start(ctx); err != nil {
		logger.Error("start daemon", logging.Error(err))
		return
	}
	defer d.Stop()

	<-ctx.Done()
	logger.Info("murmurd shutting down")
}
