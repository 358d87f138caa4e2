package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"murmur/internal/audio"
)

func newProbeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "probe <audio-file>",
		Short: "Inspect a local audio file and run the quality heuristics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			prober := audio.NewProber(cfg.FFprobeBinary(), time.Duration(cfg.Timeouts.ProbeSeconds)*time.Second)
			meta, err := prober.Probe(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Property", "Value"},
				[][]string{
					{"Container", meta.ContainerFormat},
					{"Codec", meta.Codec},
					{"Duration", fmt.Sprintf("%.2f s", meta.DurationSeconds)},
					{"Sample rate", fmt.Sprintf("%d Hz", meta.SampleRateHz)},
					{"Channels", strconv.Itoa(meta.ChannelCount)},
					{"Bit rate", fmt.Sprintf("%d bps", meta.BitRateBps)},
					{"Size", fmt.Sprintf("%d bytes", meta.SizeBytes)},
				},
				2,
			))

			quality := audio.AssessQuality(meta)
			if quality.IsValid {
				fmt.Fprintln(out, "Quality: ok")
				return nil
			}
			rows := make([][]string, 0, len(quality.Issues))
			for i, issue := range quality.Issues {
				recommendation := ""
				if i < len(quality.Recommendations) {
					recommendation = quality.Recommendations[i]
				}
				rows = append(rows, []string{issue, recommendation})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Issue", "Recommendation"},
				rows,
			))
			return nil
		},
	}
}
