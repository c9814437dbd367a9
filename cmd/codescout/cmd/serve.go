package cmd

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/codescout-mcp/codescout/internal/logging"
	mcpserver "github.com/codescout-mcp/codescout/internal/mcp"
	"github.com/codescout-mcp/codescout/internal/semantic"
	"github.com/codescout-mcp/codescout/internal/watcher"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdio",
		Long: `Start the MCP server, exposing the search and indexing tools over
stdio JSON-RPC. Stdout carries the protocol stream exclusively; all
logging goes to ~/.codescout/logs/.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Stdout belongs to JSON-RPC from here on. Logs go only to file.
	cleanup, err := logging.SetupServeMode(cfg.Server.LogLevel)
	if err != nil {
		return err
	}
	defer cleanup()
	log := slog.Default()

	app, err := buildApp(cfg, log)
	if err != nil {
		log.Error("startup failed", slog.String("error", err.Error()))
		return err
	}
	defer app.Close()

	if cfg.Watch.Enabled {
		w := watcher.New(app.ws, func(ctx context.Context, root string) {
			_, err := app.sem.IndexProject(ctx, semantic.IndexRequest{Scope: root})
			if err != nil {
				log.Warn("watch reindex failed",
					slog.String("root", root),
					slog.String("error", err.Error()))
			}
		}, watcher.Options{Debounce: cfg.Watch.Debounce}, log)
		if err := w.Start(ctx); err != nil {
			log.Warn("watcher unavailable", slog.String("error", err.Error()))
		} else {
			defer func() { _ = w.Stop() }()
		}
	}

	srv := mcpserver.NewServer(app.ws, app.lex, app.sem, app.retriever, log)
	return srv.Serve(ctx)
}
