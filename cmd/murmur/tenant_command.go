package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"murmur/internal/tenants"
)

type tenantConfigPayload struct {
	TenantID string                      `json:"tenantId"`
	Stored   bool                        `json:"stored"`
	Config   tenants.TranscriptionConfig `json:"config"`
}

func newTenantCommand(ctx *commandContext) *cobra.Command {
	tenantCmd := &cobra.Command{
		Use:   "tenant",
		Short: "Manage per-tenant transcription settings on a running daemon",
	}
	tenantCmd.AddCommand(newTenantShowCommand(ctx))
	tenantCmd.AddCommand(newTenantSetCommand(ctx))
	return tenantCmd
}

func newTenantShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <tenant-id>",
		Short: "Print a tenant's effective configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := ctx.serverURL()
			if err != nil {
				return err
			}

			var payload tenantConfigPayload
			if err := newAPIClient(base).getJSON(cmd.Context(), "/config/"+args[0], &payload); err != nil {
				return err
			}

			source := "daemon defaults"
			if payload.Stored {
				source = "stored"
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Setting", "Value"},
				[][]string{
					{"Source", source},
					{"Model size", payload.Config.ModelSize},
					{"Language", payload.Config.Language},
					{"Temperature", strconv.FormatFloat(payload.Config.Temperature, 'f', 2, 64)},
					{"Max file size", fmt.Sprintf("%d MB", payload.Config.MaxFileSizeMB)},
					{"Max duration", fmt.Sprintf("%d s", payload.Config.MaxDurationSeconds)},
					{"Enabled", strconv.FormatBool(payload.Config.Enabled)},
				},
				2,
			))
			return nil
		},
	}
}

func newTenantSetCommand(ctx *commandContext) *cobra.Command {
	var modelSize string
	var lang string
	var temperature float64
	var maxFileSizeMB int
	var maxDurationSeconds int
	var enabled bool

	cmd := &cobra.Command{
		Use:   "set <tenant-id>",
		Short: "Update a tenant's configuration (unset flags keep current values)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := ctx.serverURL()
			if err != nil {
				return err
			}
			client := newAPIClient(base)

			var current tenantConfigPayload
			if err := client.getJSON(cmd.Context(), "/config/"+args[0], &current); err != nil {
				return err
			}

			next := current.Config
			if cmd.Flags().Changed("model") {
				next.ModelSize = modelSize
			}
			if cmd.Flags().Changed("language") {
				next.Language = lang
			}
			if cmd.Flags().Changed("temperature") {
				next.Temperature = temperature
			}
			if cmd.Flags().Changed("max-file-size") {
				next.MaxFileSizeMB = maxFileSizeMB
			}
			if cmd.Flags().Changed("max-duration") {
				next.MaxDurationSeconds = maxDurationSeconds
			}
			if cmd.Flags().Changed("enabled") {
				next.Enabled = enabled
			}

			var updated tenantConfigPayload
			if err := client.putJSON(cmd.Context(), "/config/"+args[0], next, &updated); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated configuration for tenant %s\n", updated.TenantID)
			return nil
		},
	}

	cmd.Flags().StringVar(&modelSize, "model", "", "Model size (tiny, small)")
	cmd.Flags().StringVar(&lang, "language", "", "Language (zh, en, auto)")
	cmd.Flags().Float64Var(&temperature, "temperature", 0, "Sampling temperature")
	cmd.Flags().IntVar(&maxFileSizeMB, "max-file-size", 0, "Processed file size limit in MB")
	cmd.Flags().IntVar(&maxDurationSeconds, "max-duration", 0, "Audio duration limit in seconds")
	cmd.Flags().BoolVar(&enabled, "enabled", true, "Whether transcription is enabled")
	return cmd
}
