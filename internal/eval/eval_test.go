package eval

import (
	"testing"

	"nickandperla.net/pbg/internal/parser"
	"nickandperla.net/pbg/internal/pnode"
	"nickandperla.net/pbg/internal/token"
)

func parseOrFail(t *testing.T, src string) *pnode.Expression {
	t.Helper()
	expr, err := parser.Parse([]byte(src), parser.DefaultOptions())
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return expr
}

func noKeysDict(key []byte) pnode.Node {
	return pnode.Node{Kind: token.UNKNOWN}
}

func TestEvaluateNotInvolution(t *testing.T) {
	expr := parseOrFail(t, "(!,(!,TRUE))")
	v, err := Evaluate(expr, noKeysDict, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v {
		t.Fatal("expected true")
	}
}

func TestEvaluateAndShortCircuits(t *testing.T) {
	expr := parseOrFail(t, "(&,FALSE,(?,[x]))")
	var walkCount int
	opts := DefaultOptions()
	opts.WalkCounter = &walkCount
	dictCalls := 0
	dict := func(key []byte) pnode.Node {
		dictCalls++
		return pnode.Node{Kind: token.UNKNOWN}
	}
	v, err := Evaluate(expr, dict, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v {
		t.Fatal("expected false")
	}
	// Dict is still called once per key reference up front, but the walk
	// must stop after the first FALSE child without visiting the EXST node.
	if dictCalls != 1 {
		t.Fatalf("expected 1 dict call, got %d", dictCalls)
	}
	if walkCount != 2 {
		t.Fatalf("expected 2 walked nodes (AND, FALSE), got %d", walkCount)
	}
}

func TestEvaluateOrShortCircuits(t *testing.T) {
	expr := parseOrFail(t, "(|,(=,[a],1),(=,[b],9))")
	dict := func(key []byte) pnode.Node {
		switch string(key) {
		case "a":
			return pnode.Node{Kind: token.NUMBER, Num: 1}
		case "b":
			return pnode.Node{Kind: token.NUMBER, Num: 9}
		}
		return pnode.Node{Kind: token.UNKNOWN}
	}
	var walkCount int
	opts := DefaultOptions()
	opts.WalkCounter = &walkCount
	v, err := Evaluate(expr, dict, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v {
		t.Fatal("expected true")
	}
	// OR and its first EQ child are visited; the second disjunct's EQ node
	// must never be walked.
	if walkCount != 2 {
		t.Fatalf("expected 2 walked nodes, got %d", walkCount)
	}
}

func TestEvaluateEQReflexivity(t *testing.T) {
	for _, src := range []string{"(=,1,1)", "(=,'a','a')", "(=,TRUE,TRUE)", "(=,2024-01-01,2024-01-01)"} {
		expr := parseOrFail(t, src)
		v, err := Evaluate(expr, noKeysDict, DefaultOptions())
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", src, err)
		}
		if !v {
			t.Fatalf("%s: expected true", src)
		}
	}
}

func TestEvaluateEQTypedMismatch(t *testing.T) {
	expr := parseOrFail(t, "(=,1,'1')")
	v, err := Evaluate(expr, noKeysDict, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v {
		t.Fatal("expected false: NUMBER 1 and STRING '1' are never equal")
	}
}

func TestEvaluateNumberEqualityByValue(t *testing.T) {
	expr := parseOrFail(t, "(=,1,1.0)")
	opts := DefaultOptions()
	opts.NumberEquality = NumberEqualityByValue
	v, err := Evaluate(expr, noKeysDict, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v {
		t.Fatal("expected true under by-value NUMBER equality")
	}
}

func TestEvaluateNumberEqualityByPayload(t *testing.T) {
	expr := parseOrFail(t, "(=,1,1.0)")
	opts := DefaultOptions()
	opts.NumberEquality = NumberEqualityByPayload
	v, err := Evaluate(expr, noKeysDict, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v {
		t.Fatal("expected false under by-payload NUMBER equality: \"1\" != \"1.0\"")
	}
}

func TestEvaluateComparisons(t *testing.T) {
	cases := map[string]bool{
		"(<,1,2)":  true,
		"(<,2,1)":  false,
		"(<=,1,1)": true,
		"(>,2,1)":  true,
		"(>=,1,1)": true,
		"(!=,1,2)": true,
		"(!=,1,1)": false,
	}
	for src, want := range cases {
		expr := parseOrFail(t, src)
		v, err := Evaluate(expr, noKeysDict, DefaultOptions())
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", src, err)
		}
		if v != want {
			t.Fatalf("%s: expected %v, got %v", src, want, v)
		}
	}
}

func TestEvaluateComparisonRequiresNumericOperand(t *testing.T) {
	expr := parseOrFail(t, "(<,'a','b')")
	_, err := Evaluate(expr, noKeysDict, DefaultOptions())
	if err == nil {
		t.Fatal("expected type error for non-numeric comparison operand")
	}
	perr, ok := err.(*pnode.Error)
	if !ok || perr.Kind != pnode.KindType {
		t.Fatalf("expected KindType error, got %v", err)
	}
}

func TestEvaluateExistence(t *testing.T) {
	dict := func(key []byte) pnode.Node {
		if string(key) == "present" {
			return pnode.Node{Kind: token.NUMBER, Num: 1}
		}
		return pnode.Node{Kind: token.UNKNOWN}
	}
	present := parseOrFail(t, "(?,[present])")
	v, err := Evaluate(present, dict, DefaultOptions())
	if err != nil || !v {
		t.Fatalf("expected true, got %v err=%v", v, err)
	}
	absent := parseOrFail(t, "(?,[missing])")
	v, err = Evaluate(absent, dict, DefaultOptions())
	if err != nil || v {
		t.Fatalf("expected false, got %v err=%v", v, err)
	}
}

func TestEvaluateUnknownKeyErrorOutsideExst(t *testing.T) {
	expr := parseOrFail(t, "(<,[missing],1)")
	_, err := Evaluate(expr, noKeysDict, DefaultOptions())
	if err == nil {
		t.Fatal("expected unknown-key error")
	}
	perr, ok := err.(*pnode.Error)
	if !ok || perr.Kind != pnode.KindUnknownKey {
		t.Fatalf("expected KindUnknownKey, got %v", err)
	}
}

func TestEvaluateStrictBooleansRejectsNonBooleanLiteral(t *testing.T) {
	expr := parseOrFail(t, "(!,1)")
	opts := DefaultOptions()
	_, err := Evaluate(expr, noKeysDict, opts)
	if err == nil {
		t.Fatal("expected type error under strict booleans")
	}
}

func TestEvaluateLenientBooleansTreatsNonBooleanAsFalse(t *testing.T) {
	expr := parseOrFail(t, "(!,1)")
	opts := DefaultOptions()
	opts.StrictBooleans = false
	v, err := Evaluate(expr, noKeysDict, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v {
		t.Fatal("expected NOT of a treated-as-false literal to be true")
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	expr := parseOrFail(t, "(&,(|,TRUE,FALSE),(!,FALSE))")
	for i := 0; i < 5; i++ {
		v, err := Evaluate(expr, noKeysDict, DefaultOptions())
		if err != nil || !v {
			t.Fatalf("iteration %d: expected true, got %v err=%v", i, v, err)
		}
	}
}
