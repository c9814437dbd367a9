// Package cmd provides the CLI commands for codescout.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/codescout-mcp/codescout/internal/config"
	"github.com/codescout-mcp/codescout/internal/logging"
	"github.com/codescout-mcp/codescout/pkg/version"
)

// Debug logging flag, shared by all commands.
var (
	debugMode      bool
	loggingCleanup func()
)

// NewRootCmd creates the root command for the codescout CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "codescout",
		Short: "Hybrid code retrieval MCP server",
		Long: `codescout indexes workspaces with a TF-IDF chunk index and serves
hybrid search (literal grep + semantic similarity, fused with
Reciprocal Rank Fusion) to AI coding assistants over MCP.

Running 'codescout' with no arguments starts the stdio MCP server.`,
		Version: version.Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return cmd.Help()
			}
			// Default action is the stdio server, same as 'codescout serve'.
			return runServe(cmd.Context())
		},
	}

	cmd.SetVersionTemplate("codescout version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.codescout/logs/")

	cmd.PersistentPreRunE = startDebugLogging
	cmd.PersistentPostRunE = stopDebugLogging

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newProjectsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// startDebugLogging installs a debug-level file logger when --debug is set.
func startDebugLogging(_ *cobra.Command, _ []string) error {
	if !debugMode {
		return nil
	}
	cfg := logging.DefaultConfig()
	cfg.Level = "debug"
	cfg.WriteToStderr = false
	logger, cleanup, err := logging.Setup(cfg)
	if err != nil {
		return fmt.Errorf("failed to setup debug logging: %w", err)
	}
	loggingCleanup = cleanup
	slog.SetDefault(logger)
	slog.Info("debug logging enabled", slog.String("log_file", logging.DefaultLogPath()))
	return nil
}

func stopDebugLogging(_ *cobra.Command, _ []string) error {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}

// loadConfig loads configuration from the current directory.
func loadConfig() (*config.Config, error) {
	return config.Load(".")
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
