// Package render turns a parsed Prefix Boolean Grammar tree back into
// text, in three forms: the canonical single-line form that re-parses to
// an isomorphic tree, an indented multi-line debug dump, and a JSON
// encoding.
package render

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/samber/lo"

	"nickandperla.net/pbg/internal/pnode"
	"nickandperla.net/pbg/internal/token"
)

// Canonical renders expr to its canonical byte form. NUMBER literals use
// the shortest decimal representation that parses back to the same
// float64, so precision survives a render/re-parse round trip.
func Canonical(expr *pnode.Expression) []byte {
	var buf bytes.Buffer
	writeNode(&buf, expr, expr.RootNode())
	return buf.Bytes()
}

func writeNode(buf *bytes.Buffer, expr *pnode.Expression, n *pnode.Node) {
	if n.Kind.IsLiteral() {
		writeLiteral(buf, n)
		return
	}

	sym, _ := n.Kind.Symbol()
	buf.WriteByte('(')
	buf.WriteString(sym)
	buf.WriteByte(',')
	// lo.Map preserves child order; rendering does not short-circuit, so
	// there is no correctness reason to walk children by hand here.
	parts := lo.Map(n.Children, func(ref pnode.Ref, _ int) []byte {
		var b bytes.Buffer
		writeNode(&b, expr, expr.Node(ref))
		return b.Bytes()
	})
	for i, p := range parts {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(p)
	}
	buf.WriteByte(')')
}

func writeLiteral(buf *bytes.Buffer, n *pnode.Node) {
	switch n.Kind {
	case token.TRUE:
		buf.WriteString("TRUE")
	case token.FALSE:
		buf.WriteString("FALSE")
	case token.NUMBER:
		buf.WriteString(strconv.FormatFloat(n.Num, 'g', -1, 64))
	case token.STRING:
		buf.WriteByte('\'')
		buf.Write(n.Str)
		buf.WriteByte('\'')
	case token.KEY:
		buf.WriteByte('[')
		buf.Write(n.Str)
		buf.WriteByte(']')
	case token.DATE:
		fmt.Fprintf(buf, "%04d-%02d-%02d", n.DateVal.Year, n.DateVal.Month, n.DateVal.Day)
	case token.UNKNOWN:
		buf.WriteString("UNKNOWN")
	}
}
