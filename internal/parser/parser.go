// Package parser implements the two-phase Prefix Boolean Grammar parser:
// a single left-to-right field scan ("Phase 1") followed by a
// recursive-descent tree build over the resulting field/closing index
// arrays ("Phase 2"). Translated from malloc/realloc arrays to Go slices
// and from a hand-rolled int2arg/int2ret cursor pair to a cursor struct
// passed by value.
package parser

import (
	"github.com/google/uuid"

	"nickandperla.net/pbg/internal/lexer"
	"nickandperla.net/pbg/internal/pnode"
	"nickandperla.net/pbg/internal/token"
)

// DefaultMaxDepth bounds recursion so a pathological input produces a
// KindSyntax error instead of exhausting the goroutine stack, without
// changing accepted-language semantics for any expression under the limit.
const DefaultMaxDepth = 10000

// Options configures a Parse call. In the zero value MaxDepth falls back to
// DefaultMaxDepth and date-range validation is off; DefaultOptions returns
// the recommended set.
type Options struct {
	// MaxDepth bounds operator nesting depth. 0 means DefaultMaxDepth.
	MaxDepth int
	// ValidateDateRange rejects DATE literals with an out-of-range month
	// or day.
	ValidateDateRange bool
}

// DefaultOptions returns the recommended option set.
func DefaultOptions() Options {
	return Options{MaxDepth: DefaultMaxDepth, ValidateDateRange: true}
}

// Parse parses a complete PBG expression from src.
func Parse(src []byte, opts Options) (*pnode.Expression, error) {
	if opts.MaxDepth == 0 {
		opts.MaxDepth = DefaultMaxDepth
	}

	fields, lengths, closings, numKeys, err := scanFields(src)
	if err != nil {
		return nil, err
	}
	numFields := len(fields) - 1 // fields carries a trailing -1 sentinel
	numStatic := numFields - numKeys

	p := &parseState{
		src:      src,
		fields:   fields,
		lengths:  lengths,
		closings: closings,
		opts:     opts,
	}
	p.expr = &pnode.Expression{
		Static:  make([]pnode.Node, 0, numStatic),
		Dynamic: make([]pnode.Node, 0, numKeys),
		TraceID: uuid.New(),
	}

	cur := cursor{field: 0, closing: 0}
	ret, err := p.build(cur, 0)
	if err != nil {
		return nil, err
	}
	if ret.ref.IsDynamic() {
		return nil, pnode.NewSyntaxError(0, "a bare key cannot be the root of an expression: root must be static")
	}
	if ret.ref.Index() != 0 {
		return nil, pnode.NewSyntaxError(0, "root node must be static index 0")
	}
	if ret.cur.field != numFields {
		return nil, pnode.NewSyntaxError(fields[ret.cur.field], "unexpected trailing input")
	}

	p.expr.Root = pnode.StaticRef(0)
	return p.expr, nil
}

// cursor tracks the two positions pbg_parse_r threads through recursive
// calls: the next field to consume, and the next closing paren a parent
// scope's children loop will read up to.
type cursor struct {
	field   int
	closing int
}

type buildResult struct {
	cur cursor
	ref pnode.Ref
}

type parseState struct {
	src      []byte
	fields   []int
	lengths  []int
	closings []int
	opts     Options
	expr     *pnode.Expression
}

// build consumes exactly one field (and, if it is an operator, everything
// up to its matching closing paren) starting at cur, returning the
// reference to the node it created and the cursor positioned just past
// what it consumed.
func (p *parseState) build(cur cursor, depth int) (buildResult, error) {
	if depth > p.opts.MaxDepth {
		return buildResult{}, pnode.NewSyntaxError(p.fields[cur.field], "expression nesting exceeds max depth %d", p.opts.MaxDepth)
	}

	start := p.fields[cur.field]
	n := p.lengths[cur.field]
	if n == 0 {
		return buildResult{}, pnode.NewSyntaxError(start, "empty field")
	}
	field := p.src[start : start+n]

	if kind, ok := token.Operator(field); ok {
		return p.buildOperator(cur, depth, kind, start)
	}
	return p.buildLiteral(cur, field, start, n)
}

func (p *parseState) buildOperator(cur cursor, depth int, kind token.Kind, start int) (buildResult, error) {
	// The node's slot is reserved before its children are built, exactly as
	// pbg_parse_r does, so that the first operator encountered (the root)
	// always lands at static index 0 regardless of how deep its children's
	// own literal/operator nodes push the arena afterward.
	idx := len(p.expr.Static)
	p.expr.Static = append(p.expr.Static, pnode.Node{Kind: kind})
	cur.field++

	var children []pnode.Ref
	for cur.field < len(p.fields) && p.fields[cur.field] != -1 && p.fields[cur.field] < p.closings[cur.closing] {
		childRes, err := p.build(cur, depth+1)
		if err != nil {
			return buildResult{}, err
		}
		children = append(children, childRes.ref)
		cur = childRes.cur
	}
	cur.closing++

	arity := token.ArityOf(kind)
	if !arity.Accepts(len(children)) {
		return buildResult{}, pnode.NewSyntaxError(start, "operator %s accepts between %d and %d children, got %d", kind, arity.Min, arity.Max, len(children))
	}

	p.expr.Static[idx].Children = children
	return buildResult{cur: cur, ref: pnode.StaticRef(idx)}, nil
}

func (p *parseState) buildLiteral(cur cursor, field []byte, start, n int) (buildResult, error) {
	kind, ok := lexer.Classify(field)
	if !ok {
		return buildResult{}, pnode.NewSyntaxError(start, "unrecognized literal %q", field)
	}

	var ref pnode.Ref
	switch kind {
	case token.KEY:
		idx := len(p.expr.Dynamic)
		payload := append([]byte(nil), field[1:n-1]...)
		p.expr.Dynamic = append(p.expr.Dynamic, pnode.Node{Kind: token.KEY, Str: payload})
		ref = pnode.DynamicRef(idx)

	case token.DATE:
		d := lexer.ParseDate(field)
		if p.opts.ValidateDateRange {
			if err := validateDate(d, start); err != nil {
				return buildResult{}, err
			}
		}
		ref = p.appendStatic(pnode.Node{Kind: token.DATE, DateVal: pnode.Date(d)})

	case token.NUMBER:
		v, err := lexer.ParseNumber(field)
		if err != nil {
			return buildResult{}, pnode.NewSyntaxError(start, "invalid number %q: %v", field, err)
		}
		// Str retains the raw source digits alongside the parsed Num so
		// payload-based NUMBER equality (eval.NumberEqualityByPayload) can
		// compare byte-for-byte instead of by parsed value.
		raw := append([]byte(nil), field...)
		ref = p.appendStatic(pnode.Node{Kind: token.NUMBER, Num: v, Str: raw})

	case token.STRING:
		// Payload is the raw bytes between the delimiters, unmodified:
		// 'it\'s' keeps a payload of exactly `it\'s`, backslash included.
		// \' only affects Phase 1's field-boundary scan (scan.go's
		// stringTracker); it is not unescaped here, so rendering a parsed
		// STRING reproduces the original source bytes exactly.
		payload := append([]byte(nil), field[1:n-1]...)
		ref = p.appendStatic(pnode.Node{Kind: token.STRING, Str: payload})

	case token.TRUE:
		ref = p.appendStatic(pnode.Node{Kind: token.TRUE})

	case token.FALSE:
		ref = p.appendStatic(pnode.Node{Kind: token.FALSE})

	default:
		return buildResult{}, pnode.NewSyntaxError(start, "unexpected kind %s in literal position", kind)
	}

	cur.field++
	return buildResult{cur: cur, ref: ref}, nil
}

func (p *parseState) appendStatic(n pnode.Node) pnode.Ref {
	idx := len(p.expr.Static)
	p.expr.Static = append(p.expr.Static, n)
	return pnode.StaticRef(idx)
}

func validateDate(d lexer.Date, pos int) error {
	if d.Month < 1 || d.Month > 12 {
		return pnode.NewSyntaxError(pos, "date month %d out of range", d.Month)
	}
	maxDay := daysInMonth(d.Year, d.Month)
	if d.Day < 1 || d.Day > maxDay {
		return pnode.NewSyntaxError(pos, "date day %d out of range for %04d-%02d", d.Day, d.Year, d.Month)
	}
	return nil
}

func daysInMonth(year, month int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	case 2:
		if isLeapYear(year) {
			return 29
		}
		return 28
	}
	return 0
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
