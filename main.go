// lolcode evaluates LOLCODE source with a tree-walking interpreter.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/dr8co/lolcode/binding"
	"github.com/dr8co/lolcode/eval"
	"github.com/dr8co/lolcode/lexer"
	"github.com/dr8co/lolcode/parser"
	"github.com/dr8co/lolcode/repl"
	"github.com/dr8co/lolcode/value"
)

const version = "0.1.0"

// printUsage displays custom usage information
func printUsage() {
	_, _ = fmt.Fprintf(os.Stderr, `LOLCODE Interpreter v%s

USAGE:
    %s [OPTIONS]

DESCRIPTION:
    Evaluates LOLCODE source with a tree-walking interpreter.
    Without any flags, it starts an interactive REPL (Read-Eval-Print-Loop).

OPTIONS:
    -f, --file <path>       Execute a LOLCODE script file
    -e, --eval <code>       Evaluate a LOLCODE snippet and print the result
    -d, --debug             Print the final implicit variable (IT) after a file run
    -v, --version           Show version information
    -h, --help              Show this help message

EXAMPLES:
    # Start interactive REPL
    %s

    # Execute a script file
    %s -f script.lol
    %s --file script.lol

    # Evaluate a snippet
    %s -e "VISIBLE SUM OF 2 AN 3"

    # Execute with debug mode
    %s -f script.lol -d

`, version, os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0])
}

func main() {
	flag.Usage = printUsage

	fileFlag := flag.String("file", "", "Execute a LOLCODE script file")
	evalFlag := flag.String("eval", "", "Evaluate a LOLCODE snippet and print the result")
	debugFlag := flag.Bool("debug", false, "Print the final implicit variable (IT) after a file run")
	versionFlag := flag.Bool("version", false, "Show version information")

	flag.StringVar(fileFlag, "f", "", "Execute a LOLCODE script file")
	flag.StringVar(evalFlag, "e", "", "Evaluate a LOLCODE snippet and print the result")
	flag.BoolVar(debugFlag, "d", false, "Print the final implicit variable (IT) after a file run")
	flag.BoolVar(versionFlag, "v", false, "Show version information")

	flag.Parse()

	if *versionFlag {
		fmt.Printf("LOLCODE Interpreter v%s\n", version)
		return
	}

	if *fileFlag != "" {
		executeFile(*fileFlag, *debugFlag)
		return
	}

	if *evalFlag != "" {
		evaluateExpression(*evalFlag)
		return
	}

	username := "unknown"
	if usr, err := user.Current(); err == nil {
		username = usr.Username
	}

	fmt.Println("Hello", username+",", "welcome to the LOLCODE interpreter!")
	fmt.Println("Feel free to type in LOLCODE. (Ctrl+D or Ctrl+C to exit)")

	repl.Start(os.Stdin, os.Stdout)
}

// executeFile reads, parses, and evaluates a LOLCODE script file.
func executeFile(filename string, debug bool) {
	cleaned := filepath.Clean(filename)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		fmt.Printf("Error getting absolute path: %s\n", err)
		os.Exit(1)
	}

	//nolint:gosec // We're not reading user input here
	content, err := os.ReadFile(absolute)
	if err != nil {
		fmt.Printf("Error reading file: %s\n", err)
		os.Exit(1)
	}

	root := run(filename, string(content))
	if debug {
		impVar := root.ImpVar()
		fmt.Println(impVar.Inspect())
		value.Drop(impVar)
	}
}

// evaluateExpression parses and evaluates a single LOLCODE snippet, then
// prints its final implicit variable.
func evaluateExpression(src string) {
	root := run("<eval>", src)
	impVar := root.ImpVar()
	fmt.Println(impVar.Inspect())
	value.Drop(impVar)
}

// run parses and evaluates src against a fresh root scope, wired with the
// Binding Bridge's library loader, exiting the process on any error.
func run(file, src string) *value.Scope {
	l := lexer.New(src)
	p := parser.New(l)
	program := p.ParseProgram()

	if len(p.Errors()) != 0 {
		printParserErrors(p.Errors())
		os.Exit(1)
	}

	root := value.New(nil)
	e := eval.New(os.Stdout, os.Stdin)
	e.Importer = binding.Load

	if _, err := e.RunProgram(root, program); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%s: %s\n", file, err)
		os.Exit(1)
	}
	return root
}

// printParserErrors prints parser errors to stderr
func printParserErrors(errors []string) {
	_, _ = fmt.Fprintln(os.Stderr, "Parser errors:")
	for _, msg := range errors {
		_, _ = fmt.Fprintln(os.Stderr, "\t"+strings.TrimSpace(msg))
	}
}
