// Package logging provides categorized structured logging for clinlint.
//
// The server talks LSP over stdout; every log line goes to stderr so it
// never corrupts the protocol stream.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category scopes a logger to one pipeline stage, mirroring the stage
// breakdown in the system overview.
type Category string

const (
	CategoryBuffer     Category = "buffer"
	CategorySyntax     Category = "syntax"
	CategorySemantic   Category = "semantic"
	CategoryPredicate  Category = "predicate"
	CategorySafety     Category = "safety"
	CategoryDiagnostic Category = "diagnostic"
	CategoryLSP        Category = "lsp"
	CategoryStore      Category = "store"
)

var base *zap.Logger

// Init installs the process-wide base logger. level is one of
// "debug", "info", "warn", "error"; verbose forces debug regardless of level.
func Init(level string, verbose bool) error {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	lvl := zapcore.InfoLevel
	if err := lvl.UnmarshalText([]byte(level)); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	built, err := cfg.Build()
	if err != nil {
		return err
	}
	base = built
	return nil
}

// Get returns a category-scoped logger. Safe to call before Init — falls
// back to a no-op logger so library code never needs a nil check.
func Get(cat Category) *zap.Logger {
	if base == nil {
		return zap.NewNop()
	}
	return base.Named(string(cat))
}

// Sync flushes any buffered log entries. Call on shutdown.
func Sync() {
	if base != nil {
		_ = base.Sync()
	}
}

// Discard is used by tests that want real logger plumbing without stderr noise.
func Discard() *zap.Logger {
	return zap.New(zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(discardWriter{}),
		zapcore.ErrorLevel+1,
	))
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
