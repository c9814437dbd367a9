package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/codescout-mcp/codescout/internal/output"
)

func newStatusCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show index health and corpus size",
		Long: `Display the state of the semantic index: persistence backend, driver
capability, file and chunk counts, and the last update time.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd.Context(), cmd, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runStatus(ctx context.Context, cmd *cobra.Command, jsonOutput bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	app, err := buildApp(cfg, slog.Default())
	if err != nil {
		return err
	}
	defer app.Close()

	status, err := app.sem.Status(ctx)
	if err != nil {
		return err
	}

	if jsonOutput {
		return encodeJSON(cmd, status)
	}

	out := output.New(cmd.OutOrStdout())
	out.Heading("Index")
	out.Field("Backend", status.Backend)
	out.Field("Native driver", fmt.Sprintf("%t", status.NativeDriver))
	out.Field("Data dir", cfg.Index.DataDir)
	out.Field("Files", fmt.Sprintf("%d", status.TotalFiles))
	out.Field("Chunks", fmt.Sprintf("%d", status.TotalChunks))
	if status.UpdatedAt.IsZero() {
		out.Field("Updated", "never (run 'codescout index')")
	} else {
		out.Field("Updated", status.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}
