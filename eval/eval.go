// Package eval walks a parsed ast.Query against a value.Value and produces
// a result value.Value, per spec.md §4.C. Evaluation is a pure left fold:
// each path Segment transforms the current value, then the result feeds
// into transform.Apply for the transform chain (package transform). The
// evaluator never mutates its input: field, index and array-wildcard
// segments return a subtree of their input (the wildcard returns the
// array itself), while slice, predicate and object-wildcard segments
// build a new array whose elements are shared with the input.
package eval

import (
	"github.com/go-pathql/pathql/ast"
	"github.com/go-pathql/pathql/reporter"
	"github.com/go-pathql/pathql/value"
)

// Evaluate folds q.Path over root, then applies q's transforms to the
// result via apply. apply is injected rather than imported directly so
// this package does not need to depend on the transform registry — the
// transform package depends on eval (for predicate evaluation), so eval
// importing transform back would cycle. The facade (package pathql) wires
// transform.Apply in.
type TransformApplier func(v *value.Value, steps []ast.TransformStep) (*value.Value, *reporter.EvalError)

// Evaluate implements spec.md §4.C's evaluate(ast, root_value) contract.
// If apply is nil, the transform chain (if any) is skipped — useful for
// callers that only want path evaluation, such as the completion
// component resolving "the path up to the incomplete segment."
func Evaluate(q *ast.Query, root *value.Value, apply TransformApplier) (*value.Value, *reporter.EvalError) {
	cur := root
	for _, seg := range q.Path {
		next, err := EvalSegment(seg, cur)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	if apply != nil && len(q.Transforms) > 0 {
		return apply(cur, q.Transforms)
	}
	return cur, nil
}

// EvalSegment applies one PathSegment to cur, per the table in spec.md
// §4.C.
func EvalSegment(seg ast.Segment, cur *value.Value) (*value.Value, *reporter.EvalError) {
	switch seg.Kind {
	case ast.SegField:
		return evalField(seg, cur)
	case ast.SegIndex:
		return evalIndex(seg, cur)
	case ast.SegSlice:
		return evalSlice(seg, cur)
	case ast.SegWildcard:
		return evalWildcard(seg, cur)
	case ast.SegPredicate:
		return evalPredicate(seg, cur)
	case ast.SegRecurse:
		// Never constructed by the parser (SPEC_FULL.md §13); defined so
		// this switch stays exhaustive if that changes.
		return cur, nil
	default:
		return nil, reporter.NewEvalError(seg.Span().Start, reporter.TypeMismatch, "", "unknown segment kind")
	}
}

func evalField(seg ast.Segment, cur *value.Value) (*value.Value, *reporter.EvalError) {
	switch cur.Kind() {
	case value.Object:
		return cur.FieldOrNull(seg.Field), nil
	case value.Array:
		return nil, reporter.NewEvalError(seg.Span().Start, reporter.TypeMismatch, seg.Field, "cannot index array by field")
	default:
		return nil, reporter.NewEvalError(seg.Span().Start, reporter.TypeMismatch, seg.Field, "cannot access field %q of %s", seg.Field, cur.Kind())
	}
}

func evalIndex(seg ast.Segment, cur *value.Value) (*value.Value, *reporter.EvalError) {
	switch cur.Kind() {
	case value.Array:
		// Out-of-range yields Null, not an error — spec.md §9 open
		// question, resolved in SPEC_FULL.md §13.
		return cur.Index(seg.Index), nil
	default:
		return nil, reporter.NewEvalError(seg.Span().Start, reporter.TypeMismatch, "", "cannot index %s by position", cur.Kind())
	}
}

func evalSlice(seg ast.Segment, cur *value.Value) (*value.Value, *reporter.EvalError) {
	if cur.Kind() != value.Array {
		return nil, reporter.NewEvalError(seg.Span().Start, reporter.TypeMismatch, "", "cannot slice %s", cur.Kind())
	}
	lo, hi := seg.Lo, seg.Hi
	if !seg.HasLo {
		lo = 0
	}
	if !seg.HasHi {
		hi = cur.Len()
	}
	return cur.Slice(lo, hi), nil
}

func evalWildcard(seg ast.Segment, cur *value.Value) (*value.Value, *reporter.EvalError) {
	switch cur.Kind() {
	case value.Object:
		vals := make([]*value.Value, 0, cur.Len())
		for _, m := range cur.Members() {
			vals = append(vals, m.Val)
		}
		return value.NewArray(vals), nil
	case value.Array:
		return cur, nil
	default:
		return nil, reporter.NewEvalError(seg.Span().Start, reporter.TypeMismatch, "", "cannot apply wildcard to %s", cur.Kind())
	}
}

func evalPredicate(seg ast.Segment, cur *value.Value) (*value.Value, *reporter.EvalError) {
	if cur.Kind() != value.Array {
		return nil, reporter.NewEvalError(seg.Span().Start, reporter.TypeMismatch, seg.Pred.Field, "cannot filter non-array")
	}
	var out []*value.Value
	for _, elem := range cur.Elements() {
		ok, err := MatchPredicate(seg.Pred, elem)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, elem)
		}
	}
	return value.NewArray(out), nil
}

// MatchPredicate implements spec.md §4.C's predicate semantics, shared by
// bracket predicates, :filter, and the `pred` used to verify the
// predicate/filter equivalence testable property (spec.md §8).
func MatchPredicate(pred ast.Predicate, elem *value.Value) (bool, *reporter.EvalError) {
	var field *value.Value
	var present bool
	switch elem.Kind() {
	case value.Object:
		field, present = elem.Field(pred.Field)
		if !present {
			field = value.NewNull()
		}
	default:
		// "on scalars, element itself vs lit" — spec.md §4.C.
		field = elem
		present = true
	}

	lit := literalToValue(pred.Lit)

	// Null-comparison law, spec.md §9: `[f == null]` matches absent or
	// explicit Null identically.
	if pred.Lit.Kind == ast.LitNull {
		isNull := field.Kind() == value.Null
		switch pred.Op {
		case ast.OpEq:
			return isNull, nil
		case ast.OpNe:
			return !isNull, nil
		default:
			// Ordered comparison against null is not an error (keeps
			// predicates total, spec.md §4.C) but never holds.
			return false, nil
		}
	}

	switch pred.Op {
	case ast.OpEq:
		return value.Equal(field, lit), nil
	case ast.OpNe:
		return !value.Equal(field, lit), nil
	default:
		cmp, ok := value.Compare(field, lit)
		if !ok {
			// "missing field -> comparison is false" and "cross-type
			// ordered comparison is false (not an error)" — spec.md §4.C.
			return false, nil
		}
		switch pred.Op {
		case ast.OpLt:
			return cmp < 0, nil
		case ast.OpGt:
			return cmp > 0, nil
		case ast.OpLe:
			return cmp <= 0, nil
		case ast.OpGe:
			return cmp >= 0, nil
		}
		return false, nil
	}
}

func literalToValue(l ast.Literal) *value.Value {
	switch l.Kind {
	case ast.LitNumber:
		return value.NewNumber(l.Number)
	case ast.LitString:
		return value.NewString(l.Str)
	case ast.LitBool:
		return value.NewBool(l.Bool)
	default:
		return value.NewNull()
	}
}
