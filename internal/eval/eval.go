// Package eval implements the Prefix Boolean Grammar evaluator: dictionary
// key resolution followed by a recursive, short-circuiting tree walk.
package eval

import (
	"bytes"

	"nickandperla.net/pbg/internal/pnode"
	"nickandperla.net/pbg/internal/token"
)

// Dict resolves a key's raw name bytes to a literal node. It must return a
// node whose Kind is one of TRUE, FALSE, NUMBER, STRING, DATE, or UNKNOWN;
// UNKNOWN means "key not present". Dict is called once per distinct KEY
// reference in the tree (duplicate key text is not deduplicated), in
// arena order, before the walk begins.
type Dict func(key []byte) pnode.Node

// Options configures an Evaluate call.
type Options struct {
	// NumberEquality selects how EQ/NEQ treat two NUMBER operands: by
	// parsed value (recommended), or by raw payload bytes, where NUMBER
	// "1" and "1.0" compare unequal.
	NumberEquality NumberEqualityMode
	// WalkCounter, if non-nil, is incremented once per node visited during
	// the evaluation walk. It exists so short-circuit behavior can be
	// verified independently of how many times Dict was invoked.
	WalkCounter *int
	// StrictBooleans, when true (the default), makes a non-boolean literal
	// reached in boolean position (e.g. a resolved KEY that is a NUMBER, or
	// a bare NUMBER under NOT/AND/OR) a KindType error. When false, it is
	// instead treated as false.
	StrictBooleans bool
}

// NumberEqualityMode selects EQ/NEQ's treatment of NUMBER operands.
type NumberEqualityMode uint8

const (
	// NumberEqualityByValue compares parsed float64 values (default).
	NumberEqualityByValue NumberEqualityMode = iota
	// NumberEqualityByPayload compares raw source bytes: NUMBER "1" and
	// "1.0" compare unequal even though they parse to the same value.
	NumberEqualityByPayload
)

// DefaultOptions returns the recommended option set: value-based NUMBER
// equality, no walk counter.
func DefaultOptions() Options {
	return Options{NumberEquality: NumberEqualityByValue, StrictBooleans: true}
}

// Evaluate resolves every KEY in expr via dict, swaps the resolved nodes
// into a fresh dynamic arena (leaving expr.Dynamic itself untouched, since
// Go slices are not mutated in place by this swap), and walks the tree
// starting at expr.Root.
func Evaluate(expr *pnode.Expression, dict Dict, opts Options) (bool, error) {
	resolved := make([]pnode.Node, len(expr.Dynamic))
	for i, keyNode := range expr.Dynamic {
		r := dict(keyNode.Str)
		if r.Kind == token.UNKNOWN {
			r.Str = keyNode.Str
		}
		resolved[i] = r
	}

	working := &pnode.Expression{
		Static:  expr.Static,
		Dynamic: resolved,
		Root:    expr.Root,
		TraceID: expr.TraceID,
	}

	w := &walker{expr: working, opts: opts}
	return w.eval(working.RootNode())
}

type walker struct {
	expr *pnode.Expression
	opts Options
}

func (w *walker) eval(n *pnode.Node) (bool, error) {
	if w.opts.WalkCounter != nil {
		*w.opts.WalkCounter++
	}

	if n.Kind.IsLiteral() {
		switch n.Kind {
		case token.TRUE:
			return true, nil
		case token.FALSE:
			return false, nil
		case token.UNKNOWN:
			return false, pnode.NewUnknownKeyError(n.Str)
		default:
			if !w.opts.StrictBooleans {
				return false, nil
			}
			return false, pnode.NewTypeError("non-boolean literal %s reached in boolean position", n.Kind)
		}
	}

	child := func(i int) *pnode.Node { return w.expr.Node(n.Children[i]) }

	switch n.Kind {
	case token.NOT:
		v, err := w.eval(child(0))
		if err != nil {
			return false, err
		}
		return !v, nil

	case token.AND:
		for i := range n.Children {
			v, err := w.eval(child(i))
			if err != nil {
				return false, err
			}
			if !v {
				return false, nil
			}
		}
		return true, nil

	case token.OR:
		for i := range n.Children {
			v, err := w.eval(child(i))
			if err != nil {
				return false, err
			}
			if v {
				return true, nil
			}
		}
		return false, nil

	case token.EQ:
		c0 := child(0)
		for i := 1; i < len(n.Children); i++ {
			eq, err := w.literalsEqual(c0, child(i))
			if err != nil {
				return false, err
			}
			if !eq {
				return false, nil
			}
		}
		return true, nil

	case token.NEQ:
		eq, err := w.literalsEqual(child(0), child(1))
		if err != nil {
			return false, err
		}
		return !eq, nil

	case token.LT, token.LTE, token.GT, token.GTE:
		a, err := w.numericOperand(child(0))
		if err != nil {
			return false, err
		}
		b, err := w.numericOperand(child(1))
		if err != nil {
			return false, err
		}
		switch n.Kind {
		case token.LT:
			return a < b, nil
		case token.LTE:
			return a <= b, nil
		case token.GT:
			return a > b, nil
		default:
			return a >= b, nil
		}

	case token.EXST:
		return child(0).Kind != token.UNKNOWN, nil
	}

	return false, pnode.NewTypeError("unhandled operator %s", n.Kind)
}

// numericOperand requires n to be a resolved NUMBER literal. UNKNOWN (a
// failed key lookup) is a KindUnknownKey error; any other kind is a type
// error per the rule that comparison operands must be numeric.
func (w *walker) numericOperand(n *pnode.Node) (float64, error) {
	if n.Kind == token.UNKNOWN {
		return 0, pnode.NewUnknownKeyError(n.Str)
	}
	if n.Kind != token.NUMBER {
		return 0, pnode.NewTypeError("comparison requires a NUMBER operand, got %s", n.Kind)
	}
	return n.Num, nil
}

// literalsEqual implements EQ/NEQ's structural, typed equality: kind must
// match, and the payload comparison depends on kind (NUMBER consults
// opts.NumberEquality; STRING, KEY and DATE always compare their raw
// payload byte-for-byte, since value-level collapse is only ambiguous for
// NUMBER).
func (w *walker) literalsEqual(a, b *pnode.Node) (bool, error) {
	// An unresolved key is never equal to anything, including another
	// unresolved key: EQ over it is false and NEQ is true, without error.
	if a.Kind == token.UNKNOWN || b.Kind == token.UNKNOWN {
		return false, nil
	}

	if a.Kind != b.Kind {
		return false, nil
	}
	switch a.Kind {
	case token.TRUE, token.FALSE:
		return true, nil
	case token.NUMBER:
		if w.opts.NumberEquality == NumberEqualityByPayload {
			return bytes.Equal(a.Str, b.Str), nil
		}
		return a.Num == b.Num, nil
	case token.STRING, token.KEY:
		return bytes.Equal(a.Str, b.Str), nil
	case token.DATE:
		return a.DateVal == b.DateVal, nil
	}
	return false, pnode.NewTypeError("cannot compare operator node %s for equality", a.Kind)
}
