package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	shellwords "github.com/kballard/go-shellquote"
	"golang.org/x/term"

	"nickandperla.net/pbg/pkg/pbg"
)

func printBanner() {
	fmt.Println("pbg REPL (Ctrl+D to exit)")
	fmt.Println("  <expression>        evaluate against the current dictionary")
	fmt.Println("  :set key value      add or replace a dictionary entry")
	fmt.Println("  :unset key          remove a dictionary entry")
	fmt.Println("  :dict               list the current dictionary entries")
	fmt.Println("  :dump <expression>  print an indented tree dump")
	fmt.Println()
}

// runREPL drives an interactive session. dict is shared with the -d flags
// supplied at startup; :set/:unset mutate it in place.
func runREPL(dict dictFlag) {
	printBanner()

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	reader := bufio.NewReader(os.Stdin)

	for {
		if interactive {
			fmt.Print(">>> ")
		}
		line, err := reader.ReadString('\n')
		if line == "" && err != nil {
			fmt.Println()
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			if err != nil {
				return
			}
			continue
		}

		if strings.HasPrefix(line, ":") {
			handleCommand(line, dict)
		} else {
			evalAndPrint(line, dict)
		}

		if err != nil {
			return
		}
	}
}

func handleCommand(line string, dict dictFlag) {
	fields, err := shellwords.Split(line[1:])
	if err != nil || len(fields) == 0 {
		fmt.Fprintf(os.Stderr, "pbg: cannot parse command %q: %v\n", line, err)
		return
	}

	switch fields[0] {
	case "set":
		if len(fields) != 3 {
			fmt.Fprintln(os.Stderr, "pbg: usage: :set key value")
			return
		}
		dict[fields[1]] = fields[2]

	case "unset":
		if len(fields) != 2 {
			fmt.Fprintln(os.Stderr, "pbg: usage: :unset key")
			return
		}
		delete(dict, fields[1])

	case "dict":
		for k, v := range dict {
			fmt.Printf("%s = %s\n", k, v)
		}

	case "dump":
		src := strings.Join(fields[1:], " ")
		expr, err := pbg.Parse([]byte(src))
		if err != nil {
			printError(src, err)
			return
		}
		defer expr.Close()
		expr.DumpText(os.Stdout)

	default:
		fmt.Fprintf(os.Stderr, "pbg: unknown command %q\n", fields[0])
	}
}

func evalAndPrint(line string, dict dictFlag) {
	expr, err := pbg.Parse([]byte(line))
	if err != nil {
		printError(line, err)
		return
	}
	defer expr.Close()

	result, err := expr.Evaluate(dict.lookup)
	if err != nil {
		printError(line, err)
		return
	}
	fmt.Println(result)
}
