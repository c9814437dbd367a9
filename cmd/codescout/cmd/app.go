package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/codescout-mcp/codescout/internal/config"
	"github.com/codescout-mcp/codescout/internal/hybrid"
	"github.com/codescout-mcp/codescout/internal/lexical"
	"github.com/codescout-mcp/codescout/internal/semantic"
	"github.com/codescout-mcp/codescout/internal/workspace"
)

// app bundles the wired retrieval engines for one CLI invocation.
type app struct {
	cfg       *config.Config
	ws        *workspace.Accessor
	sem       semantic.Index
	lex       *lexical.Engine
	retriever *hybrid.Retriever
	log       *slog.Logger
}

// buildApp wires workspace, semantic index, lexical engine, and hybrid
// retriever from the loaded configuration. When no roots are configured
// the current directory becomes the single root.
func buildApp(cfg *config.Config, log *slog.Logger) (*app, error) {
	roots := cfg.Roots
	if len(roots) == 0 {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to determine working directory: %w", err)
		}
		roots = []config.Root{{Label: filepath.Base(cwd), Path: cwd}}
	}

	ws, err := workspace.New(roots, workspace.Options{
		MaxFileBytes:  cfg.Index.MaxFileBytes,
		SplitProjects: cfg.Search.SplitProjects,
		ForceSplit:    cfg.Search.ForceSplit,
	})
	if err != nil {
		return nil, err
	}

	sem, err := semantic.Open(cfg.Index.DataDir, cfg.Index.Backend, ws, semantic.Params{
		ChunkLines:       cfg.Index.ChunkLines,
		ChunkOverlap:     cfg.Index.ChunkOverlap,
		MaxTermsPerChunk: cfg.Index.MaxTermsPerChunk,
		MaxIndexedFiles:  cfg.Index.MaxIndexedFiles,
		PreviewLength:    cfg.Index.PreviewLength,
	}, log)
	if err != nil {
		return nil, err
	}

	lex := lexical.New(ws, lexical.Options{
		Timeout:       cfg.Search.Timeout,
		Concurrency:   cfg.Search.Concurrency,
		CacheTTL:      cfg.Search.CacheTTL,
		CacheCapacity: cfg.Search.CacheCapacity,
	}, log)

	retriever := hybrid.New(lex, sem, ws, hybrid.Options{
		MinSemanticScore: cfg.Search.MinSemanticScore,
		AutoIndex:        cfg.Search.AutoIndex,
	}, log)

	return &app{
		cfg:       cfg,
		ws:        ws,
		sem:       sem,
		lex:       lex,
		retriever: retriever,
		log:       log,
	}, nil
}

// Close releases the semantic index and its lock.
func (a *app) Close() {
	if err := a.sem.Close(); err != nil {
		a.log.Warn("index close failed", slog.String("error", err.Error()))
	}
}
