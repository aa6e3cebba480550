// Command pathql evaluates a single query against a JSON document read
// from stdin or a file, per SPEC_FULL.md §12. It is a thin driver over
// package pathql; all engine logic lives there so it stays testable
// without a subprocess.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/go-pathql/pathql"
	"github.com/go-pathql/pathql/value"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("pathql", flag.ContinueOnError)
	file := fs.String("f", "", "path to a JSON document (default: stdin)")
	schemaMode := fs.Bool("schema", false, "infer and print a schema instead of evaluating a query")
	samples := fs.Int("samples", 50, "max samples for -schema")
	verbose := fs.Bool("v", false, "log debug detail to stderr")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	var in *os.File
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			logger.Error("open input", "file", *file, "err", err)
			return 1
		}
		defer f.Close()
		in = f
	} else {
		in = os.Stdin
	}

	root, err := value.DecodeJSON(in)
	if err != nil {
		logger.Error("decode JSON", "err", err)
		return 1
	}

	if *schemaMode {
		return runSchema(logger, root, *samples)
	}

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: pathql [-f file] [-v] <query>")
		return 2
	}
	return runQuery(logger, root, fs.Arg(0))
}

func runQuery(logger *slog.Logger, root *value.Value, query string) int {
	result, err := pathql.Run(query, root)
	if err != nil {
		logger.Error("evaluate query", "query", query, "err", err)
		return 1
	}
	if err := value.EncodeJSON(os.Stdout, result); err != nil {
		logger.Error("encode result", "err", err)
		return 1
	}
	fmt.Println()
	return 0
}

func runSchema(logger *slog.Logger, root *value.Value, samples int) int {
	s, err := pathql.InferSchema(context.Background(), root, samples)
	if err != nil {
		logger.Error("infer schema", "err", err)
		return 1
	}
	fmt.Println(pathql.RenderSchema(s))
	return 0
}
