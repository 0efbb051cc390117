// Package document ties the buffer, parse driver, attribute engine,
// predicate index, and safety checker into the single owned unit an LSP
// text document maps onto (spec §3 "Document").
package document

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"clinlint/internal/buffer"
	"clinlint/internal/diagnostics"
	"clinlint/internal/logging"
	"clinlint/internal/predicate"
	"clinlint/internal/safety"
	"clinlint/internal/semantic"
	"clinlint/internal/syntax"
)

// Document owns one open file's full analysis state. Every mutation goes
// through mu, which also enforces the monotone-version publish rule: the
// lock's acquisition order is the request order (spec §5).
type Document struct {
	mu sync.Mutex

	URI     string
	Version int

	buf    *buffer.Buffer
	tree   *syntax.Tree
	engine *semantic.Engine
	index  *predicate.Index

	pending    []buffer.Edit
	generation atomic.Uint64

	log *zap.Logger
}

// Open creates a Document over initial content. The caller must run
// Analyze once before Index/Tree return anything meaningful.
func Open(uri string, version int, content string) *Document {
	return &Document{
		URI:     uri,
		Version: version,
		buf:     buffer.New(content),
		engine:  semantic.NewEngine(),
		log:     logging.Get(logging.CategoryStore).With(zap.String("uri", uri)),
	}
}

// ApplyChange records one incremental text-document/didChange edit against
// the buffer. The edit is not parsed until Analyze runs.
func (d *Document) ApplyChange(startLine, startCol, endLine, endCol int, newText string) error {
	d.generation.Add(1) // before locking, so an in-flight Analyze sees it
	d.mu.Lock()
	defer d.mu.Unlock()
	e, err := d.buf.ApplyRangeEdit(startLine, startCol, endLine, endCol, newText)
	if err != nil {
		return err
	}
	d.pending = append(d.pending, e)
	return nil
}

// Generation returns the document's current edit generation, the coarse
// cancellation granularity spec §5 allows ("between statements").
func (d *Document) Generation() uint64 { return d.generation.Load() }

// Analyze reparses accumulated edits, reruns the attribute engine and
// safety checker, and returns the capped, sorted diagnostic list for the
// document's current version. It returns (nil, nil) without completing if
// a newer edit supersedes the in-flight generation mid-pass (spec §5
// "Cancellation": abandon at the next statement boundary).
func (d *Document) Analyze(ctx context.Context, maxProblems int) ([]diagnostics.Diagnostic, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	passID := uuid.New().String()
	gen := d.generation.Add(1)
	log := d.log.With(zap.String("pass", passID), zap.Uint64("generation", gen))

	edits := d.pending
	d.pending = nil

	var dirty *syntax.DirtySet
	var tree *syntax.Tree
	if edits == nil && d.tree != nil {
		tree = d.tree
		dirty = syntax.NewDirtySet(nil)
	} else {
		tree, dirty = syntax.Reparse(d.buf.Bytes(), edits)
	}
	d.tree = tree
	d.index = predicate.Build(tree)
	d.engine.Run(tree, dirty)

	errs, missing := syntax.Collect(tree)

	var unsafe []diagnostics.UnsafeOccurrence
	for _, stmt := range tree.Root().Children() {
		if d.generation.Load() != gen {
			log.Debug("analysis superseded, abandoning at statement boundary")
			return nil, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		bundle, ok := d.engine.Store().Get(stmt.ID())
		if !ok {
			log.Error("no attribute bundle for statement, skipping",
				zap.Uint64("node", uint64(stmt.ID())),
				zap.Int("start", stmt.StartByte()), zap.Int("end", stmt.EndByte()))
			continue
		}
		result := safety.CheckStatement(bundle.Dependencies, bundle.GlobalVars, bundle.SpecialLiterals)
		locs := semantic.VarLocationsIn(stmt)
		unsafe = append(unsafe, diagnostics.OccurrencesFor(result, locs)...)
	}

	out := diagnostics.Format(d.buf, errs, missing, unsafe, maxProblems)
	if out == nil {
		out = []diagnostics.Diagnostic{} // nil is reserved for a superseded pass
	}
	log.Debug("analysis complete", zap.Int("diagnostics", len(out)))
	return out, nil
}

// Index returns the predicate index built during the most recent pass.
func (d *Document) Index() *predicate.Index {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.index
}

// Tree returns the CST built during the most recent pass.
func (d *Document) Tree() *syntax.Tree {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tree
}

// Buffer returns the document's source buffer.
func (d *Document) Buffer() *buffer.Buffer {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buf
}

// Store returns the semantic store built up across analysis passes.
func (d *Document) Store() *semantic.Store {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.engine.Store()
}
