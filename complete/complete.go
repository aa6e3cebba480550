// Package complete implements interactive completion, spec.md §4.F: given
// a partially-typed query and a cursor position, return ranked candidate
// completions plus a ghost-text suffix. It is the one component with no
// direct teacher analog — the teacher never completes a user-typed
// string — so the cursor-context resolution is grounded in the parser's
// own TrailingIncomplete/Context/Fragment contract (spec.md §9), while
// the per-level candidate index reuses the teacher's art.New() radix-tree
// pattern from linker.go, redirected from symbol-table lookup to
// prefix-bounded key lookup.
package complete

import (
	"sort"
	"strings"

	art "github.com/kralicky/go-adaptive-radix-tree"

	"github.com/go-pathql/pathql/ast"
	"github.com/go-pathql/pathql/eval"
	"github.com/go-pathql/pathql/parser"
	"github.com/go-pathql/pathql/value"
)

// Kind classifies what a Candidate completes, so a host UI can render an
// icon/hint alongside it.
type Kind int8

const (
	KindField Kind = iota
	KindTransform
	KindLiteral
)

// Candidate is one suggested completion, spec.md §4.F.
type Candidate struct {
	Text  string
	Kind  Kind
	Score int
}

// MaxCandidates bounds the result list by default, spec.md §4.F.
const MaxCandidates = 20

var transformNames = []string{
	"keys", "values", "count", "flatten", "pick", "omit",
	"sort", "uniq", "group_by", "filter", "sum", "avg", "min", "max",
}

// Complete implements spec.md §4.F's complete(query, cursor, root_value)
// -> (candidates, ghost_suffix). query is truncated to cursor before
// parsing, since completion only ever reasons about what's already typed
// up to the caret.
func Complete(query string, cursor int, root *value.Value) ([]Candidate, string) {
	if cursor < 0 || cursor > len(query) {
		cursor = len(query)
	}
	prefix := query[:cursor]
	q, _ := parser.Parse(prefix)

	switch {
	case q.TrailingIncomplete && q.Context == ast.CtxTransform:
		cands := rank(transformNames, q.Fragment, KindTransform)
		return cands, ghostSuffix(cands, q.Fragment)

	case q.TrailingIncomplete && q.Context == ast.CtxKey:
		base := evalPathPrefix(q, root)
		fields := fieldCandidates(base)
		cands := rank(fields, q.Fragment, KindField)
		return cands, ghostSuffix(cands, q.Fragment)

	case q.TrailingIncomplete && q.Context == ast.CtxPredicateField:
		base := evalPathPrefix(q, root)
		fields := fieldCandidates(elementFields(base))
		cands := rank(fields, q.Fragment, KindField)
		return cands, ghostSuffix(cands, q.Fragment)

	case q.TrailingIncomplete && q.Context == ast.CtxPredicateLiteral:
		// Unlike CtxPredicateField, this looks at every element (not just
		// the first) so all distinct observed values of the field surface.
		base := evalPathPrefix(q, root)
		lits := literalCandidates(base, q.PredicateFieldSoFar)
		cands := rank(lits, q.Fragment, KindLiteral)
		return cands, ghostSuffix(cands, q.Fragment)

	default:
		// CtxPredicateOp and CtxNone offer no lexical candidates — the
		// operator set is fixed and small enough a host renders it
		// statically rather than through fuzzy ranking.
		return nil, ""
	}
}

// evalPathPrefix evaluates the path segments already parsed (ignoring any
// transforms, which can't apply mid-path completion) against root,
// leaving out the trailing field segment that holds a CtxKey fragment
// still being typed, and returning Null if evaluation fails rather than
// propagating an error — completion degrades to "no candidates" instead
// of erroring out.
func evalPathPrefix(q *ast.Query, root *value.Value) *value.Value {
	path := q.Path
	if n := len(path); q.Context == ast.CtxKey && q.Fragment != "" && n > 0 &&
		path[n-1].Kind == ast.SegField && path[n-1].Field == q.Fragment {
		path = path[:n-1]
	}
	cur := root
	for _, seg := range path {
		next, err := eval.EvalSegment(seg, cur)
		if err != nil {
			return value.NewNull()
		}
		cur = next
	}
	return cur
}

// elementFields resolves v to "the object shape its elements have," so a
// predicate inside `[` can complete field names whether v is itself an
// object or (more commonly) an array being filtered.
func elementFields(v *value.Value) *value.Value {
	if v.Kind() == value.Array && v.Len() > 0 {
		return v.Index(0)
	}
	return v
}

// fieldCandidates returns an object's keys, or for an array the union of
// its object elements' keys in first-seen order.
func fieldCandidates(v *value.Value) []string {
	switch v.Kind() {
	case value.Object:
		return v.Keys()
	case value.Array:
		seen := map[string]bool{}
		var out []string
		for _, e := range v.Elements() {
			for _, k := range e.Keys() {
				if !seen[k] {
					seen[k] = true
					out = append(out, k)
				}
			}
		}
		return out
	default:
		return nil
	}
}

// literalCandidates suggests the distinct observed values of field across
// an array's elements (or the scalar value itself), rendered the way a
// query literal would be written.
func literalCandidates(v *value.Value, field string) []string {
	var elems []*value.Value
	if v.Kind() == value.Array {
		elems = v.Elements()
	} else {
		elems = []*value.Value{v}
	}
	seen := map[string]bool{}
	var out []string
	for _, e := range elems {
		fv, ok := e.Field(field)
		if !ok {
			continue
		}
		text := renderLiteral(fv)
		if text != "" && !seen[text] {
			seen[text] = true
			out = append(out, text)
		}
	}
	return out
}

func renderLiteral(v *value.Value) string {
	switch v.Kind() {
	case value.String:
		return `"` + strings.ReplaceAll(v.Str(), `"`, `\"`) + `"`
	case value.Number:
		return value.CanonicalKey(v)
	case value.Bool:
		return value.CanonicalKey(v)
	case value.Null:
		return "null"
	default:
		return ""
	}
}

// rank scores every name in names against fragment via subsequence fuzzy
// matching, per spec.md §4.F's subsequence-match contract — a candidate
// like "group_by" must still surface for a fragment like "p" even though
// it shares no byte prefix with it. A per-call radix-tree index of names
// (mirroring the teacher's art.New() pattern in linker.go, there keyed by
// fully qualified symbol name, here by candidate text) is still built to
// find exact byte-prefix hits; those get a ranking bonus on top of their
// fuzzy score, so a user typing a clean prefix still sees it win ties over
// a looser subsequence match, without the prefix set ever narrowing which
// names get scored at all.
func rank(names []string, fragment string, kind Kind) []Candidate {
	if len(names) == 0 {
		return nil
	}

	prefixHit := map[string]bool{}
	if fragment != "" {
		tree := art.New()
		for _, n := range names {
			tree.Insert(art.Key(n), n)
		}
		tree.ForEachPrefix(art.Key(fragment), func(node art.Node) bool {
			prefixHit[node.Value().(string)] = true
			return true
		})
	}

	out := make([]Candidate, 0, len(names))
	for _, n := range names {
		score, ok := fuzzyScore(n, fragment)
		if !ok {
			continue
		}
		if prefixHit[n] {
			score += 100
		}
		out = append(out, Candidate{Text: n, Kind: kind, Score: score})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Text < out[j].Text
	})
	if len(out) > MaxCandidates {
		out = out[:MaxCandidates]
	}
	return out
}

func ghostSuffix(cands []Candidate, fragment string) string {
	if len(cands) == 0 {
		return ""
	}
	top := cands[0].Text
	if !strings.HasPrefix(top, fragment) {
		return ""
	}
	return top[len(fragment):]
}
