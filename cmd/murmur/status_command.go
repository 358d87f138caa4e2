package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"murmur/internal/deps"
)

type systemInfo struct {
	Dependencies []deps.Status   `json:"dependencies"`
	TempDir      deps.Status     `json:"tempDir"`
	Models       map[string]bool `json:"models"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon health, tool availability, and model availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := ctx.serverURL()
			if err != nil {
				return err
			}
			client := newAPIClient(base)

			var info systemInfo
			if err := client.getJSON(cmd.Context(), "/system-info", &info); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			rows := make([][]string, 0, len(info.Dependencies)+1)
			for _, dep := range info.Dependencies {
				rows = append(rows, []string{dep.Name, dep.Command, availability(dep.Available, dep.Detail)})
			}
			rows = append(rows, []string{info.TempDir.Name, info.TempDir.Command, availability(info.TempDir.Available, info.TempDir.Detail)})
			fmt.Fprintln(out, renderTable(
				[]string{"Dependency", "Command", "Status"},
				rows,
			))

			models := make([]string, 0, len(info.Models))
			for model := range info.Models {
				models = append(models, model)
			}
			sort.Strings(models)
			modelRows := make([][]string, 0, len(models))
			for _, model := range models {
				modelRows = append(modelRows, []string{model, availability(info.Models[model], "failed load check")})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Model", "Status"},
				modelRows,
			))
			return nil
		},
	}
}

func availability(ok bool, detail string) string {
	if ok {
		return "available"
	}
	if detail != "" {
		return "unavailable (" + detail + ")"
	}
	return "unavailable"
}
