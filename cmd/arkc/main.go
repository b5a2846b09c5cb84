package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"arkc/pkg/compiler"
	"arkc/pkg/macro"
	"arkc/pkg/optimizer"
	"arkc/pkg/parser"
	"arkc/pkg/utils"
)

func main() {
	inPath := flag.String("in", "", "input source file path")
	outPath := flag.String("out", "", "output bytecode file path (default: input with .arkb extension)")
	debugLevel := flag.Int("debug", 0, "macro/compiler debug trace level")
	optionsFlag := flag.Uint("options", 0, "macro processor diagnostics bit-field")
	flag.Parse()

	if *inPath == "" {
		fmt.Fprintln(os.Stderr, "nothing to do: provide -in to compile a source file")
		flag.Usage()
		os.Exit(2)
	}

	fullPath, err := utils.GetPathInfo(*inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve input path %q: %v\n", *inPath, err)
		os.Exit(1)
	}

	source, err := os.ReadFile(fullPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read input file %q: %v\n", fullPath, err)
		os.Exit(1)
	}

	bc, warnings, err := run(string(source), fullPath, *debugLevel, macro.Options(*optionsFlag))
	if err != nil {
		fmt.Fprintf(os.Stderr, "compilation failed: %v\n", err)
		os.Exit(1)
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: unresolved symbol %s (plugin import in effect)\n", w)
	}

	output := *outPath
	if output == "" {
		output = defaultOutputPath(fullPath)
	}
	if err := os.WriteFile(output, bc, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write bytecode file %q: %v\n", output, err)
		os.Exit(1)
	}

	fmt.Printf("compiled %d bytes -> %s\n", len(bc), output)
}

// run chains the four pipeline stages: parse, optimize, expand macros,
// compile to bytecode. Plugin imports are named by the grammar but never
// resolved to files; compiler.Compile only tracks that an import occurred,
// to downgrade undefined-symbol errors to warnings.
func run(source, filename string, debugLevel int, options macro.Options) ([]byte, []string, error) {
	tree, err := parser.Parse(source, filename)
	if err != nil {
		return nil, nil, err
	}

	optimized, err := optimizer.Optimize(tree)
	if err != nil {
		return nil, nil, err
	}

	mp := macro.New(debugLevel, options)
	if err := mp.Feed(optimized); err != nil {
		return nil, nil, err
	}
	expanded := mp.AST()

	return compiler.Compile(expanded, debugLevel)
}

func defaultOutputPath(inPath string) string {
	ext := filepath.Ext(inPath)
	if ext == "" {
		return inPath + ".arkb"
	}
	return strings.TrimSuffix(inPath, ext) + ".arkb"
}
