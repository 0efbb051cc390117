// Package lspserver implements the JSON-RPC-over-stdio transport and
// request dispatch for clinlint (spec §6, SPEC_FULL.md §2/§6).
package lspserver

import (
	"context"
	"encoding/json"
	"io"

	"go.uber.org/zap"

	"clinlint/internal/completion"
	"clinlint/internal/config"
	"clinlint/internal/diagnostics"
	"clinlint/internal/logging"
	"clinlint/internal/navigation"
	"clinlint/internal/predicate"
	"clinlint/internal/store"
)

// Server dispatches LSP requests against a document store.
type Server struct {
	docs *store.Store
	cfg  *config.Config
	conn *conn
	log  *zap.Logger
}

// New creates a Server over docs, reading requests from r and writing
// responses to w. Passing in the store lets a caller pre-populate it via
// Store.IndexAll/Watcher before the interactive loop starts.
func New(r io.Reader, w io.Writer, cfg *config.Config, docs *store.Store) *Server {
	return &Server{
		docs: docs,
		cfg:  cfg,
		conn: newConn(r, w),
		log:  logging.Get(logging.CategoryLSP),
	}
}

// ServeStdio runs the read-dispatch loop until the peer closes the stream,
// ctx is cancelled, or an `exit` notification is received (teacher
// pattern: mangle's ServeStdio/handleRequest loop).
func (s *Server) ServeStdio(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		req, err := s.conn.readMessage()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		exit, resp := s.handle(ctx, req)
		if resp != nil {
			if err := s.conn.writeMessage(resp); err != nil {
				return err
			}
		}
		if exit {
			return nil
		}
	}
}

func (s *Server) handle(ctx context.Context, req *request) (exit bool, resp *response) {
	switch req.Method {
	case "initialize":
		return false, &response{JSONRPC: "2.0", ID: req.ID, Result: initializeResult(s.cfg)}

	case "shutdown":
		return false, &response{JSONRPC: "2.0", ID: req.ID, Result: nil}

	case "exit":
		return true, nil

	case "textDocument/didOpen":
		s.onDidOpen(ctx, req.Params)
		return false, nil

	case "textDocument/didChange":
		s.onDidChange(ctx, req.Params)
		return false, nil

	case "textDocument/didClose":
		s.onDidClose(req.Params)
		return false, nil

	case "textDocument/completion":
		return false, s.onCompletion(req)

	case "textDocument/definition":
		return false, s.onDefinition(req)

	case "textDocument/references":
		return false, s.onReferences(req)

	default:
		if req.ID == nil {
			return false, nil // unhandled notification: ignore
		}
		return false, &response{JSONRPC: "2.0", ID: req.ID, Error: &rpcError{Code: -32601, Message: "method not found: " + req.Method}}
	}
}

func initializeResult(cfg *config.Config) map[string]interface{} {
	return map[string]interface{}{
		"capabilities": map[string]interface{}{
			"textDocumentSync": 2, // Incremental
			"completionProvider": map[string]interface{}{
				"triggerCharacters": cfg.Completion.TriggerCharacters,
			},
			"definitionProvider": true,
			"referencesProvider": true,
		},
	}
}

type textDocumentItem struct {
	URI     string `json:"uri"`
	Version int    `json:"version"`
	Text    string `json:"text"`
}

func (s *Server) onDidOpen(ctx context.Context, raw json.RawMessage) {
	var params struct {
		TextDocument textDocumentItem `json:"textDocument"`
	}
	if err := json.Unmarshal(raw, &params); err != nil {
		s.log.Warn("malformed didOpen params", zap.Error(err))
		return
	}
	d := s.docs.Open(params.TextDocument.URI, params.TextDocument.Version, params.TextDocument.Text)
	s.analyzeAndPublish(ctx, params.TextDocument.URI, d.Version)
}

type contentChange struct {
	Range *struct {
		Start struct{ Line, Character int } `json:"start"`
		End   struct{ Line, Character int } `json:"end"`
	} `json:"range"`
	Text string `json:"text"`
}

func (s *Server) onDidChange(ctx context.Context, raw json.RawMessage) {
	var params struct {
		TextDocument struct {
			URI     string `json:"uri"`
			Version int    `json:"version"`
		} `json:"textDocument"`
		ContentChanges []contentChange `json:"contentChanges"`
	}
	if err := json.Unmarshal(raw, &params); err != nil {
		s.log.Warn("malformed didChange params", zap.Error(err))
		return
	}

	d, ok := s.docs.Get(params.TextDocument.URI)
	if !ok {
		return
	}
	for _, c := range params.ContentChanges {
		if c.Range == nil {
			continue // full-document sync change: not used (server advertises Incremental)
		}
		if err := d.ApplyChange(c.Range.Start.Line, c.Range.Start.Character, c.Range.End.Line, c.Range.End.Character, c.Text); err != nil {
			s.log.Warn("invalid edit range", zap.Error(err))
			return
		}
	}
	d.Version = params.TextDocument.Version
	s.analyzeAndPublish(ctx, params.TextDocument.URI, d.Version)
}

func (s *Server) onDidClose(raw json.RawMessage) {
	var params struct {
		TextDocument struct {
			URI string `json:"uri"`
		} `json:"textDocument"`
	}
	if err := json.Unmarshal(raw, &params); err != nil {
		return
	}
	s.docs.Close(params.TextDocument.URI)
}

// analyzeAndPublish runs analysis under the document's own lock (via
// Analyze) and publishes diagnostics for the version captured at call
// time, honoring the monotone-version publish rule (spec §5).
func (s *Server) analyzeAndPublish(ctx context.Context, uri string, version int) {
	d, ok := s.docs.Get(uri)
	if !ok {
		return
	}
	diags, err := d.Analyze(ctx, s.cfg.MaximumNumberOfProblems)
	if err != nil {
		s.log.Warn("analysis error", zap.String("uri", uri), zap.Error(err))
		return
	}
	if diags == nil {
		return // superseded by a newer edit; nothing to publish
	}
	_ = s.conn.writeMessage(&notification{
		JSONRPC: "2.0",
		Method:  "textDocument/publishDiagnostics",
		Params:  publishDiagnosticsParams(uri, version, diags),
	})
}

func publishDiagnosticsParams(uri string, version int, diags []diagnostics.Diagnostic) map[string]interface{} {
	items := make([]map[string]interface{}, 0, len(diags))
	for _, d := range diags {
		items = append(items, map[string]interface{}{
			"range": map[string]interface{}{
				"start": map[string]int{"line": d.StartLine, "character": d.StartCol},
				"end":   map[string]int{"line": d.EndLine, "character": d.EndCol},
			},
			"severity": int(d.Severity),
			"code":     int(d.Code),
			"source":   d.Source,
			"message":  d.Message,
		})
	}
	return map[string]interface{}{
		"uri":         uri,
		"version":     version,
		"diagnostics": items,
	}
}

type positionParams struct {
	TextDocument struct {
		URI string `json:"uri"`
	} `json:"textDocument"`
	Position struct {
		Line      int `json:"line"`
		Character int `json:"character"`
	} `json:"position"`
}

func (s *Server) onCompletion(req *request) *response {
	var params struct {
		positionParams
		Context struct {
			TriggerCharacter string `json:"triggerCharacter"`
		} `json:"context"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return &response{JSONRPC: "2.0", ID: req.ID, Error: &rpcError{Code: -32602, Message: "invalid params"}}
	}

	d, ok := s.docs.Get(params.TextDocument.URI)
	if !ok {
		return &response{JSONRPC: "2.0", ID: req.ID, Result: []interface{}{}}
	}

	var items []completion.Item
	if params.Context.TriggerCharacter == "#" {
		items = completion.Keywords()
	} else {
		tree, idx := d.Tree(), d.Index()
		if tree != nil && idx != nil {
			offset := d.Buffer().PositionToByte(params.Position.Line, params.Position.Character)
			items = completion.InContext(tree, d.Store(), idx, offset)
		}
	}
	return &response{JSONRPC: "2.0", ID: req.ID, Result: toCompletionList(items)}
}

func toCompletionList(items []completion.Item) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(items))
	for _, it := range items {
		out = append(out, map[string]interface{}{
			"label":      it.Label,
			"kind":       int(it.Kind),
			"detail":     it.Detail,
			"insertText": it.InsertText,
		})
	}
	return out
}

func (s *Server) onDefinition(req *request) *response {
	return s.locationQuery(req, func(idx *predicate.Index, name string, arity int) []predicate.Occurrence {
		return navigation.Definitions(idx, name, arity)
	})
}

func (s *Server) onReferences(req *request) *response {
	return s.locationQuery(req, func(idx *predicate.Index, name string, arity int) []predicate.Occurrence {
		return navigation.References(idx, name, arity)
	})
}

func (s *Server) locationQuery(req *request, project func(*predicate.Index, string, int) []predicate.Occurrence) *response {
	var params positionParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return &response{JSONRPC: "2.0", ID: req.ID, Error: &rpcError{Code: -32602, Message: "invalid params"}}
	}

	d, ok := s.docs.Get(params.TextDocument.URI)
	if !ok {
		return &response{JSONRPC: "2.0", ID: req.ID, Result: []interface{}{}}
	}
	tree, idx := d.Tree(), d.Index()
	if tree == nil || idx == nil {
		return &response{JSONRPC: "2.0", ID: req.ID, Result: []interface{}{}}
	}

	offset := d.Buffer().PositionToByte(params.Position.Line, params.Position.Character)
	name, arity, ok := navigation.PredicateUnderCursor(tree, offset)
	if !ok {
		return &response{JSONRPC: "2.0", ID: req.ID, Result: []interface{}{}}
	}

	occs := project(idx, name, arity)
	locs := make([]map[string]interface{}, 0, len(occs))
	for _, occ := range occs {
		sl, sc := d.Buffer().ByteToPosition(occ.StartByte)
		el, ec := d.Buffer().ByteToPosition(occ.EndByte)
		locs = append(locs, map[string]interface{}{
			"uri": params.TextDocument.URI,
			"range": map[string]interface{}{
				"start": map[string]int{"line": sl, "character": sc},
				"end":   map[string]int{"line": el, "character": ec},
			},
		})
	}
	return &response{JSONRPC: "2.0", ID: req.ID, Result: locs}
}
