// Package pnode implements the arena-backed expression tree of the Prefix
// Boolean Grammar: the static/dynamic node split and the signed child
// reference encoding that lets a resolved dictionary lookup be hot-swapped
// into the tree without rewriting any child list.
package pnode

import (
	"github.com/google/uuid"

	"nickandperla.net/pbg/internal/token"
)

// Ref is a signed child reference. Non-negative values index Expression's
// Static arena; negative values index Dynamic at -(ref)-1. This split is
// what lets Evaluate swap the whole Dynamic arena for a resolved one
// without rewriting a single child list.
type Ref int32

// StaticRef and DynamicRef build a Ref from a plain arena index.
func StaticRef(i int) Ref  { return Ref(i) }
func DynamicRef(i int) Ref { return Ref(-(i + 1)) }

// IsDynamic reports whether r points into the dynamic arena.
func (r Ref) IsDynamic() bool { return r < 0 }

// Index returns the plain arena index r refers to, in whichever arena
// IsDynamic says it belongs to.
func (r Ref) Index() int {
	if r < 0 {
		return int(-r) - 1
	}
	return int(r)
}

// Date is a parsed DATE literal's year/month/day triple.
type Date struct {
	Year, Month, Day int
}

// Node is a tagged variant: Kind selects which of the remaining fields is
// meaningful. Operator nodes use Children; NUMBER uses Num (a parsed
// NUMBER also keeps its source text in Str); STRING and KEY use Str
// (payload bytes only, delimiters already stripped); DATE uses DateVal.
// TRUE and FALSE carry no payload; an UNKNOWN produced by key resolution
// carries the key name in Str for error messages.
type Node struct {
	Kind     token.Kind
	Num      float64
	Str      []byte
	DateVal  Date
	Children []Ref
}

// Expression is a parsed PBG tree: two parallel arenas plus the root
// reference, which is always Static[0].
type Expression struct {
	Static  []Node
	Dynamic []Node
	Root    Ref
	TraceID uuid.UUID
}

// Node dereferences r against e's current arenas.
func (e *Expression) Node(r Ref) *Node {
	if r.IsDynamic() {
		return &e.Dynamic[r.Index()]
	}
	return &e.Static[r.Index()]
}

// RootNode returns the node at e.Root, i.e. e.Static[0].
func (e *Expression) RootNode() *Node {
	return e.Node(e.Root)
}

// Keys returns the payload bytes of every KEY node in the dynamic arena, in
// arena order. Evaluate uses this order when invoking the dictionary
// callback and swapping in resolved values.
func (e *Expression) Keys() [][]byte {
	keys := make([][]byte, len(e.Dynamic))
	for i := range e.Dynamic {
		keys[i] = e.Dynamic[i].Str
	}
	return keys
}
