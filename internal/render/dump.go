package render

import (
	"fmt"
	"io"
	"strings"

	"nickandperla.net/pbg/internal/pnode"
	"nickandperla.net/pbg/internal/token"
)

// DumpText writes an indented, human-readable tree dump to w, one line per
// node, two-space indent per depth level, depth tracked as an argument
// instead of recursion-local state.
func DumpText(w io.Writer, expr *pnode.Expression) error {
	return dumpNode(w, expr, expr.RootNode(), 0)
}

func dumpNode(w io.Writer, expr *pnode.Expression, n *pnode.Node, depth int) error {
	indent := strings.Repeat("  ", depth)

	if n.Kind.IsLiteral() {
		var line string
		switch n.Kind {
		case token.TRUE, token.FALSE:
			line = n.Kind.String()
		case token.NUMBER:
			line = fmt.Sprintf("NUMBER : %v", n.Num)
		case token.STRING:
			line = fmt.Sprintf("STRING : '%s'", n.Str)
		case token.DATE:
			line = fmt.Sprintf("DATE : %04d-%02d-%02d", n.DateVal.Year, n.DateVal.Month, n.DateVal.Day)
		case token.KEY:
			line = fmt.Sprintf("KEY : [%s]", n.Str)
		default:
			line = "UNKNOWN"
		}
		if _, err := fmt.Fprintf(w, "%s%s\n", indent, line); err != nil {
			return pnode.NewRenderError("writing literal line: %v", err)
		}
		return nil
	}

	sym, _ := n.Kind.Symbol()
	if _, err := fmt.Fprintf(w, "%s%s %s\n", indent, n.Kind, sym); err != nil {
		return pnode.NewRenderError("writing operator line: %v", err)
	}
	for _, ref := range n.Children {
		if err := dumpNode(w, expr, expr.Node(ref), depth+1); err != nil {
			return err
		}
	}
	return nil
}
