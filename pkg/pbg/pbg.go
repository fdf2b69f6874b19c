// Package pbg is the public API of the Prefix Boolean Grammar engine: parse
// a textual expression, resolve its keys against a dictionary callback,
// evaluate it to a boolean, and render it back to text or JSON.
package pbg

import (
	"bytes"
	"io"

	"github.com/google/uuid"

	"nickandperla.net/pbg/internal/eval"
	"nickandperla.net/pbg/internal/parser"
	"nickandperla.net/pbg/internal/pnode"
	"nickandperla.net/pbg/internal/render"
	"nickandperla.net/pbg/internal/token"
)

// Dictionary resolves a key's raw name bytes to a literal value during
// Evaluate. Return UnknownValue() to signal that the key is absent.
type Dictionary = eval.Dict

// Node is the literal value a Dictionary callback returns. Construct one
// with BoolValue, NumberValue, StringValue, DateValue, or UnknownValue —
// never by hand, since the zero value is not UNKNOWN.
type Node = pnode.Node

// Error is the typed error every Parse/Evaluate/Render call returns on
// failure. Pos is a byte offset into src for syntax errors, -1 otherwise;
// callers that want to point at the offending byte (cmd/pbg's caret
// diagnostics) should errors.As into *Error and check Pos >= 0.
type Error = pnode.Error

// BoolValue builds the TRUE or FALSE literal for v.
func BoolValue(v bool) Node {
	if v {
		return Node{Kind: token.TRUE}
	}
	return Node{Kind: token.FALSE}
}

// NumberValue builds a NUMBER literal.
func NumberValue(v float64) Node {
	return Node{Kind: token.NUMBER, Num: v}
}

// StringValue builds a STRING literal from s's bytes.
func StringValue(s string) Node {
	return Node{Kind: token.STRING, Str: []byte(s)}
}

// DateValue builds a DATE literal. year/month/day are not range-checked;
// Parse's date-range validation does not apply to dictionary-resolved
// values.
func DateValue(year, month, day int) Node {
	return Node{Kind: token.DATE, DateVal: pnode.Date{Year: year, Month: month, Day: day}}
}

// UnknownValue is the literal a Dictionary should return for a key that is
// not present.
func UnknownValue() Node {
	return Node{Kind: token.UNKNOWN}
}

// Expression is a parsed PBG tree together with the trace ID minted for it
// at Parse time. TraceID is not included in error messages; a caller can use
// it to correlate a parsed expression across independently logged
// operations, since the engine itself performs no logging.
type Expression struct {
	tree    *pnode.Expression
	evalCfg eval.Options
	TraceID uuid.UUID
}

// Parse parses src into an Expression according to opts.
func Parse(src []byte, opts ...Option) (*Expression, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	tree, err := parser.Parse(src, cfg.parseOpts)
	if err != nil {
		return nil, err
	}

	return &Expression{tree: tree, evalCfg: cfg.evalOpts, TraceID: tree.TraceID}, nil
}

// Evaluate resolves every key in e against dict and walks the tree to a
// boolean result.
func (e *Expression) Evaluate(dict Dictionary) (bool, error) {
	return eval.Evaluate(e.tree, dict, e.evalCfg)
}

// Render produces e's canonical textual form: re-parsing it yields a tree
// isomorphic to e.
func (e *Expression) Render() ([]byte, error) {
	return render.Canonical(e.tree), nil
}

// Keys returns the raw name bytes of every KEY literal in e, in arena
// order, letting a caller discover which dictionary entries an expression
// needs before calling Evaluate.
func (e *Expression) Keys() [][]byte {
	return e.tree.Keys()
}

// DumpText writes an indented, human-readable tree dump of e to w.
func (e *Expression) DumpText(w io.Writer) error {
	return render.DumpText(w, e.tree)
}

// DumpJSON encodes e's tree as JSON.
func (e *Expression) DumpJSON() ([]byte, error) {
	return render.DumpJSON(e.tree), nil
}

// Close releases e's arenas. Expression holds nothing beyond GC-managed Go
// memory, so there is nothing to return to an allocator; Close instead nils
// out the arenas so a use-after-close (Evaluate, Render, DumpText, ...)
// panics on its next arena access instead of silently reading stale data.
func (e *Expression) Close() error {
	e.tree.Static = nil
	e.tree.Dynamic = nil
	return nil
}

// String renders e to its canonical form, ignoring a render error (which
// can only happen if a future Render implementation adds a fallible
// writer; today it never fails).
func (e *Expression) String() string {
	var buf bytes.Buffer
	out, _ := e.Render()
	buf.Write(out)
	return buf.String()
}
