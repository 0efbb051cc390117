// Package main is the clinlint CLI entrypoint.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"clinlint/internal/config"
	"clinlint/internal/logging"
)

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "clinlint",
	Short: "Incremental safety-checking language server for ASP/Clingo sources",
	Long: `clinlint maintains a live semantic model of a Clingo/ASP program and
reports variable-safety and syntax diagnostics, completions, and
go-to-definition/find-references over it.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
		return logging.Init(cfg.Logging.Level, verbose || cfg.Logging.Verbose)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug-level logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "clinlint.yaml", "Path to clinlint.yaml")

	rootCmd.AddCommand(lspCmd, checkCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
