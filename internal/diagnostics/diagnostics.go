// Package diagnostics maps syntax-collector and safety-checker output into
// the stable diagnostic taxonomy a client receives (spec §6).
package diagnostics

import (
	"fmt"

	"clinlint/internal/buffer"
	"clinlint/internal/safety"
	"clinlint/internal/semantic"
	"clinlint/internal/syntax"
)

// Severity mirrors the LSP DiagnosticSeverity scale (1 = Error).
type Severity int

const (
	SeverityError   Severity = 1
	SeverityWarning Severity = 2
)

// Code is one of the taxonomy's stable numeric identifiers.
type Code int

const (
	CodeUnknownParseState   Code = 1000
	CodeExpectedDot         Code = 1001
	CodeExpectedMissingTok  Code = 1101
	CodeUnsafeVariable      Code = 2000
	CodeUndefinedOperation  Code = 2001 // reserved, never emitted
)

// Diagnostic is one reportable problem, already in line/column form.
type Diagnostic struct {
	StartLine int      `json:"startLine"`
	StartCol  int      `json:"startCol"`
	EndLine   int      `json:"endLine"`
	EndCol    int      `json:"endCol"`
	Severity  Severity `json:"severity"`
	Code      Code     `json:"code"`
	Source    string   `json:"source"`
	Message   string   `json:"message"`
}

const (
	sourceParser = "tree-sitter"
	sourceLinter = "clinlint"
)

// Format builds the final, capped, position-sorted diagnostic list for one
// analysis pass (spec §4.6/§6 "Problem cap").
func Format(buf *buffer.Buffer, errs []syntax.ErrorRecord, missing []syntax.MissingRecord, unsafe []UnsafeOccurrence, maxProblems int) []Diagnostic {
	var out []Diagnostic

	for _, e := range errs {
		code := CodeUnknownParseState
		if e.HasPrevSibling {
			code = CodeExpectedDot
		}
		out = append(out, buildRange(buf, e.StartByte, e.EndByte, SeverityError, code, sourceParser, messageFor(code)))
	}
	for _, m := range missing {
		msg := fmt.Sprintf("expected %s", m.Expected.String())
		out = append(out, buildRange(buf, m.StartByte, m.EndByte, SeverityError, CodeExpectedMissingTok, sourceParser, msg))
	}
	for _, u := range unsafe {
		msg := fmt.Sprintf("'%s' is unsafe", u.Name)
		out = append(out, buildRange(buf, u.StartByte, u.EndByte, SeverityError, CodeUnsafeVariable, sourceLinter, msg))
	}

	if maxProblems > 0 && len(out) > maxProblems {
		out = out[:maxProblems]
	}
	sortByPosition(out)
	return out
}

// UnsafeOccurrence pairs an unsafe variable's name with one source range it
// occurs at (spec §4.3 "emit one UnsafeVariable diagnostic" per occurrence).
type UnsafeOccurrence struct {
	Name      string
	StartByte int
	EndByte   int
}

// OccurrencesFor expands a safety.Result plus a name->ranges side table
// into one UnsafeOccurrence per recorded occurrence of each unsafe name.
func OccurrencesFor(result safety.Result, locations map[string][]semantic.Range) []UnsafeOccurrence {
	var out []UnsafeOccurrence
	for name := range result.Unsafe {
		for _, r := range locations[name] {
			out = append(out, UnsafeOccurrence{Name: name, StartByte: r.StartByte, EndByte: r.EndByte})
		}
	}
	return out
}

func messageFor(code Code) string {
	switch code {
	case CodeUnknownParseState:
		return "unexpected token"
	case CodeExpectedDot:
		return "expected '.'"
	default:
		return ""
	}
}

func buildRange(buf *buffer.Buffer, startByte, endByte int, sev Severity, code Code, source, msg string) Diagnostic {
	sl, sc := buf.ByteToPosition(startByte)
	el, ec := buf.ByteToPosition(endByte)
	return Diagnostic{
		StartLine: sl, StartCol: sc,
		EndLine: el, EndCol: ec,
		Severity: sev, Code: code, Source: source, Message: msg,
	}
}

func sortByPosition(ds []Diagnostic) {
	for i := 1; i < len(ds); i++ {
		for j := i; j > 0 && less(ds[j], ds[j-1]); j-- {
			ds[j-1], ds[j] = ds[j], ds[j-1]
		}
	}
}

func less(a, b Diagnostic) bool {
	if a.StartLine != b.StartLine {
		return a.StartLine < b.StartLine
	}
	return a.StartCol < b.StartCol
}
