package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/codescout-mcp/codescout/internal/output"
	"github.com/codescout-mcp/codescout/internal/semantic"
)

// indexOptions holds CLI flags for index.
type indexOptions struct {
	force      bool
	maxFiles   int
	jsonOutput bool
}

func newIndexCmd() *cobra.Command {
	var opts indexOptions

	cmd := &cobra.Command{
		Use:   "index [path]",
		Short: "Build or refresh the semantic index",
		Long: `Scan a directory tree, chunk its text files, and persist the TF-IDF
index. Unchanged files are skipped unless --force is given. With no
path argument the first configured root is indexed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope := ""
			if len(args) > 0 {
				var err error
				scope, err = filepath.Abs(args[0])
				if err != nil {
					return fmt.Errorf("invalid path %q: %w", args[0], err)
				}
			}
			return runIndex(cmd.Context(), cmd, scope, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "Reindex files even if unchanged")
	cmd.Flags().IntVar(&opts.maxFiles, "max-files", 0, "Cap the number of files for this pass (0 = configured default)")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output the summary as JSON")

	return cmd
}

func runIndex(ctx context.Context, cmd *cobra.Command, scope string, opts indexOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	app, err := buildApp(cfg, slog.Default())
	if err != nil {
		return err
	}
	defer app.Close()

	if scope == "" {
		scope = app.ws.Roots()[0].Path
	}

	summary, err := app.sem.IndexProject(ctx, semantic.IndexRequest{
		Scope:    scope,
		Force:    opts.force,
		MaxFiles: opts.maxFiles,
	})
	if err != nil {
		return err
	}

	if opts.jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	out := output.New(cmd.OutOrStdout())
	out.Successf("indexed %s", scope)
	out.Field("Scanned", fmt.Sprintf("%d files", summary.ScannedFiles))
	out.Field("Indexed", fmt.Sprintf("%d files", summary.IndexedFiles))
	out.Field("Skipped", fmt.Sprintf("%d unchanged", summary.SkippedFiles))
	if summary.RemovedFiles > 0 {
		out.Field("Removed", fmt.Sprintf("%d files", summary.RemovedFiles))
	}
	out.Field("Corpus", fmt.Sprintf("%d files, %d chunks", summary.TotalFiles, summary.TotalChunks))
	for _, f := range summary.Failures {
		out.Warning(fmt.Sprintf("%s: %s", f.File, f.Reason))
	}
	return nil
}
