package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"clinlint/internal/diagnostics"
	"clinlint/internal/document"
)

var checkJSON bool

var checkCmd = &cobra.Command{
	Use:   "check <file>...",
	Short: "Run one-shot analysis over files and print diagnostics",
	Long: `Analyzes each given ASP source file and prints its diagnostics to
stdout. Exits with status 1 if any Error-severity diagnostic was emitted,
for use in CI pipelines (teacher pattern: check-mangle).`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Print diagnostics as JSON instead of text")
}

type fileReport struct {
	Path        string                   `json:"path"`
	Diagnostics []diagnostics.Diagnostic `json:"diagnostics"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	var matched []string
	for _, pattern := range args {
		globbed, err := filepath.Glob(pattern)
		if err != nil {
			return fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		if len(globbed) == 0 {
			matched = append(matched, pattern)
			continue
		}
		matched = append(matched, globbed...)
	}

	ctx := context.Background()
	hasError := false
	var reports []fileReport

	for _, path := range matched {
		content, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			hasError = true
			continue
		}

		d := document.Open("file://"+path, 1, string(content))
		diags, err := d.Analyze(ctx, cfg.MaximumNumberOfProblems)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			hasError = true
			continue
		}

		for _, diag := range diags {
			if diag.Severity == diagnostics.SeverityError {
				hasError = true
			}
		}
		reports = append(reports, fileReport{Path: path, Diagnostics: diags})
	}

	if checkJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			return err
		}
	} else {
		for _, r := range reports {
			if len(r.Diagnostics) == 0 {
				fmt.Printf("OK: %s\n", r.Path)
				continue
			}
			for _, diag := range r.Diagnostics {
				fmt.Printf("%s:%d:%d: %s [%d] (%s) %s\n",
					r.Path, diag.StartLine+1, diag.StartCol+1,
					severityLabel(diag.Severity), diag.Code, diag.Source, diag.Message)
			}
		}
	}

	if hasError {
		os.Exit(1)
	}
	return nil
}

func severityLabel(s diagnostics.Severity) string {
	if s == diagnostics.SeverityError {
		return "error"
	}
	return "warning"
}
