package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"murmur/internal/pipeline"
	"murmur/internal/tenants"
	"murmur/internal/whisper"
)

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	var modelSize string
	var lang string
	var temperature float64
	var showSegments bool

	cmd := &cobra.Command{
		Use:   "transcribe <audio-file>",
		Short: "Transcribe a local audio file without a running daemon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			tenantCfg := tenants.DefaultsFromConfig(cfg)
			tenantCfg.Enabled = true
			if modelSize != "" {
				tenantCfg.ModelSize = modelSize
			}
			if lang != "" {
				tenantCfg.Language = lang
			}
			if cmd.Flags().Changed("temperature") {
				tenantCfg.Temperature = temperature
			}

			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open audio file: %w", err)
			}
			defer file.Close()
			info, err := file.Stat()
			if err != nil {
				return fmt.Errorf("stat audio file: %w", err)
			}

			runner := whisper.NewRunner(whisper.Config{
				Binary:    cfg.WhisperBinary(),
				Timeout:   time.Duration(cfg.Timeouts.TranscribeSeconds) * time.Second,
				KillGrace: time.Duration(cfg.Timeouts.KillGraceSeconds) * time.Second,
			}, nil, nil, nil)

			outcome, err := pipeline.New(cfg, runner, nil).Transcribe(cmd.Context(), pipeline.Request{
				TenantID:  "local",
				Filename:  filepath.Base(args[0]),
				MIMEType:  "audio/" + trimDot(filepath.Ext(args[0])),
				SizeBytes: info.Size(),
				Body:      file,
				Config:    tenantCfg,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, outcome.Result.Text)
			fmt.Fprintf(out, "\nLanguage: %s  Confidence: %.2f  Processed in %.1fs\n",
				outcome.Result.DetectedLanguage,
				outcome.Result.ConfidenceEstimate,
				outcome.Result.ProcessingDurationSeconds)

			if showSegments {
				rows := make([][]string, 0, len(outcome.Result.Segments))
				for _, seg := range outcome.Result.Segments {
					rows = append(rows, []string{
						fmt.Sprintf("%.2f", seg.StartSeconds),
						fmt.Sprintf("%.2f", seg.EndSeconds),
						seg.Text,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Start", "End", "Text"},
					rows,
					1, 2,
				))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&modelSize, "model", "", "Model size (tiny, small)")
	cmd.Flags().StringVar(&lang, "language", "", "Language (zh, en, auto)")
	cmd.Flags().Float64Var(&temperature, "temperature", 0, "Sampling temperature")
	cmd.Flags().BoolVar(&showSegments, "segments", false, "Print timed segments")
	return cmd
}

func trimDot(ext string) string {
	if len(ext) > 0 && ext[0] == '.' {
		return ext[1:]
	}
	return ext
}
