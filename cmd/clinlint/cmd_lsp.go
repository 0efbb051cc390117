package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"clinlint/internal/logging"
	"clinlint/internal/lspserver"
	"clinlint/internal/store"
)

var lspWorkspace string

var lspCmd = &cobra.Command{
	Use:   "lsp",
	Short: "Run the language server over stdio",
	Long: `Starts the clinlint language server, communicating via JSON-RPC over
stdin/stdout per the Language Server Protocol base transport.

Editor configuration example:

  {
    "command": "clinlint",
    "args": ["lsp"],
    "filetypes": ["clingo", "asp"]
  }
`,
	RunE: runLSP,
}

func init() {
	lspCmd.Flags().StringVarP(&lspWorkspace, "workspace", "w", ".", "Workspace root directory to index on startup")
}

func runLSP(cmd *cobra.Command, args []string) error {
	log := logging.Get(logging.CategoryLSP)

	workspace, err := absPath(lspWorkspace)
	if err != nil {
		return fmt.Errorf("resolving workspace: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("received shutdown signal")
		cancel()
	}()

	docs := store.New()
	if err := docs.IndexAll(ctx, workspace, cfg.MaximumNumberOfProblems); err != nil {
		log.Warn("initial workspace index failed", zap.String("workspace", workspace), zap.Error(err))
	}

	watcher, err := store.NewWatcher(workspace, docs, cfg.MaximumNumberOfProblems)
	if err != nil {
		log.Warn("failed to create workspace watcher", zap.Error(err))
	} else if err := watcher.Start(ctx); err != nil {
		log.Warn("failed to start workspace watcher", zap.Error(err))
	} else {
		defer watcher.Stop()
	}

	log.Info("language server ready, listening on stdio", zap.String("workspace", workspace))
	srv := lspserver.New(os.Stdin, os.Stdout, cfg, docs)
	if err := srv.ServeStdio(ctx); err != nil {
		if err == context.Canceled {
			log.Info("language server stopped gracefully")
			return nil
		}
		return fmt.Errorf("language server error: %w", err)
	}
	return nil
}

func absPath(p string) (string, error) {
	if p == "." || p == "" {
		return os.Getwd()
	}
	return p, nil
}
