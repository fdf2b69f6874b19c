package render

import (
	"github.com/valyala/fastjson"

	"nickandperla.net/pbg/internal/pnode"
	"nickandperla.net/pbg/internal/token"
)

// DumpJSON encodes expr as a JSON value: every node becomes an object with
// a "kind" field and a kind-specific payload field ("value", "children",
// and so on). Built with a fastjson.Arena rather than encoding/json so
// that byte-slice payloads (STRING, KEY) are written without the base64
// detour json.Marshal would otherwise apply to a []byte field.
func DumpJSON(expr *pnode.Expression) []byte {
	var arena fastjson.Arena
	v := jsonNode(&arena, expr, expr.RootNode())
	return v.MarshalTo(nil)
}

func jsonNode(arena *fastjson.Arena, expr *pnode.Expression, n *pnode.Node) *fastjson.Value {
	obj := arena.NewObject()
	obj.Set("kind", arena.NewString(n.Kind.String()))

	switch {
	case n.Kind == token.NUMBER:
		obj.Set("value", arena.NewNumberFloat64(n.Num))
	case n.Kind == token.STRING || n.Kind == token.KEY:
		obj.Set("value", arena.NewString(string(n.Str)))
	case n.Kind == token.DATE:
		date := arena.NewObject()
		date.Set("year", arena.NewNumberInt(n.DateVal.Year))
		date.Set("month", arena.NewNumberInt(n.DateVal.Month))
		date.Set("day", arena.NewNumberInt(n.DateVal.Day))
		obj.Set("value", date)
	case n.Kind.IsOperator():
		children := arena.NewArray()
		for i, ref := range n.Children {
			children.SetArrayItem(i, jsonNode(arena, expr, expr.Node(ref)))
		}
		obj.Set("children", children)
	}

	return obj
}
