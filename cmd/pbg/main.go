// Command pbg parses, evaluates, and renders Prefix Boolean Grammar
// expressions from the command line.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"nickandperla.net/pbg/internal/lexer"
	"nickandperla.net/pbg/internal/token"
	"nickandperla.net/pbg/pkg/pbg"
)

// dictFlag accumulates repeated -d key=value flags into a simple string
// dictionary. Each value is classified through internal/lexer exactly as
// the parser would classify a literal field, so -d age=42 resolves to
// NUMBER and -d name=\'alice\' resolves to STRING.
type dictFlag map[string]string

func (d dictFlag) String() string { return "" }

func (d dictFlag) Set(s string) error {
	key, value, ok := strings.Cut(s, "=")
	if !ok {
		return fmt.Errorf("expected key=value, got %q", s)
	}
	d[key] = value
	return nil
}

func (d dictFlag) lookup(key []byte) pbg.Node {
	value, ok := d[string(key)]
	if !ok {
		return pbg.UnknownValue()
	}
	return classifyLiteral(value)
}

func classifyLiteral(field string) pbg.Node {
	b := []byte(field)
	kind, ok := lexer.Classify(b)
	if !ok {
		return pbg.StringValue(field)
	}
	switch kind {
	case token.TRUE:
		return pbg.BoolValue(true)
	case token.FALSE:
		return pbg.BoolValue(false)
	case token.NUMBER:
		v, err := lexer.ParseNumber(b)
		if err != nil {
			return pbg.StringValue(field)
		}
		return pbg.NumberValue(v)
	case token.DATE:
		d := lexer.ParseDate(b)
		return pbg.DateValue(d.Year, d.Month, d.Day)
	case token.STRING:
		return pbg.StringValue(string(b[1 : len(b)-1]))
	default:
		return pbg.StringValue(field)
	}
}

func main() {
	var (
		evalStr  = flag.String("e", "", "evaluate a single PBG expression")
		file     = flag.String("f", "", "evaluate a PBG expression from a file")
		dump     = flag.Bool("dump", false, "print an indented tree dump instead of evaluating")
		dumpJSON = flag.Bool("json", false, "print the expression as JSON instead of evaluating")
		trace    = flag.Bool("trace", false, "print the expression's trace ID alongside its result")
		stats    = flag.Bool("stats", false, "print arena size statistics instead of evaluating")
		keys     = flag.Bool("keys", false, "print the expression's KEY names instead of evaluating, one per line")
		strict   = flag.Bool("strict-booleans", true, "error on a non-boolean literal reached in boolean position")
	)
	dict := make(dictFlag)
	flag.Var(dict, "d", "dictionary entry as key=value, repeatable")
	flag.Parse()

	var src []byte
	switch {
	case *evalStr != "":
		src = []byte(*evalStr)
	case *file != "":
		b, err := os.ReadFile(*file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "pbg: %v\n", err)
			os.Exit(1)
		}
		src = b
	case !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()):
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "pbg: reading stdin: %v\n", err)
			os.Exit(1)
		}
		src = b
	default:
		runREPL(dict)
		return
	}

	trimmed := strings.TrimSpace(string(src))
	if err := run(trimmed, dict, *dump, *dumpJSON, *trace, *stats, *keys, *strict); err != nil {
		printError(trimmed, err)
		os.Exit(1)
	}
}

// printError reports err to stderr. A syntax error carries a byte offset
// into src, so it gets a source line plus a caret pointing at the
// offending byte instead of the plain "pbg: ..." one-liner; the caret is
// colorized only when stderr is a terminal.
func printError(src string, err error) {
	var perr *pbg.Error
	if !errors.As(err, &perr) || perr.Pos < 0 || perr.Pos > len(src) {
		fmt.Fprintf(os.Stderr, "pbg: %v\n", err)
		return
	}

	fmt.Fprintf(os.Stderr, "pbg: %v\n", perr)
	fmt.Fprintln(os.Stderr, src)
	caret := strings.Repeat(" ", perr.Pos) + "^"
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		fmt.Fprintf(os.Stderr, "\x1b[31m%s\x1b[0m\n", caret)
	} else {
		fmt.Fprintln(os.Stderr, caret)
	}
}

func run(src string, dict dictFlag, dump, dumpJSON, trace, stats, keys, strict bool) error {
	expr, err := pbg.Parse([]byte(src), pbg.WithStrictBooleans(strict))
	if err != nil {
		return err
	}
	defer expr.Close()

	if trace {
		fmt.Fprintf(os.Stderr, "trace: %s\n", expr.TraceID)
	}

	switch {
	case dump:
		return expr.DumpText(os.Stdout)
	case dumpJSON:
		out, err := expr.DumpJSON()
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	case stats:
		fmt.Println(expr.Stats())
		return nil
	case keys:
		for _, k := range expr.Keys() {
			fmt.Println(string(k))
		}
		return nil
	}

	result, err := expr.Evaluate(dict.lookup)
	if err != nil {
		return err
	}
	fmt.Println(result)
	return nil
}
