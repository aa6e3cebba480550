// Package pathql is the public facade over the query engine described in
// spec.md: parse, evaluate, infer a schema, and complete a partially
// typed query against an in-memory document. It wires the independent
// parser/eval/transform/schema/complete packages together the way the
// teacher's top-level protocompile.go wires its own lexer/parser/linker
// pipeline behind a small set of entry points.
package pathql

import (
	"context"

	"github.com/go-pathql/pathql/ast"
	"github.com/go-pathql/pathql/complete"
	"github.com/go-pathql/pathql/eval"
	"github.com/go-pathql/pathql/parser"
	"github.com/go-pathql/pathql/reporter"
	"github.com/go-pathql/pathql/schema"
	"github.com/go-pathql/pathql/transform"
	"github.com/go-pathql/pathql/value"
)

// Value is re-exported so callers need only import this package for the
// common path.
type Value = value.Value

// ParseQuery parses a query string per spec.md §3-4.B. Parsing is total:
// the returned AST always holds the longest valid prefix, and err is
// non-nil when a hard syntax error follows that prefix, carrying its byte
// offset (spec.md §7).
func ParseQuery(query string) (*ast.Query, *reporter.ParseError) {
	return parser.Parse(query)
}

// Evaluate runs q's path and transform chain against root, spec.md §4.C
// and §4.D.
func Evaluate(q *ast.Query, root *value.Value) (*value.Value, *reporter.EvalError) {
	return eval.Evaluate(q, root, transform.Apply)
}

// Run parses and evaluates query against root in one call, the common
// case for a host embedding the engine without needing the AST.
func Run(query string, root *value.Value) (*value.Value, error) {
	q, perr := ParseQuery(query)
	if perr != nil {
		return nil, perr
	}
	v, eerr := Evaluate(q, root)
	if eerr != nil {
		return nil, eerr
	}
	return v, nil
}

// InferSchema samples up to maxSamples elements of root and infers a
// structural Schema, spec.md §4.E.
func InferSchema(ctx context.Context, root *value.Value, maxSamples int) (*schema.Schema, error) {
	return schema.Infer(ctx, root, maxSamples)
}

// RenderSchema formats s per spec.md §6.
func RenderSchema(s *schema.Schema) string {
	return schema.Render(s)
}

// Complete returns ranked completions for query at cursor against root,
// spec.md §4.F.
func Complete(query string, cursor int, root *value.Value) ([]complete.Candidate, string) {
	return complete.Complete(query, cursor, root)
}
