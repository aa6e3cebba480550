// Package transform implements the colon-command pipeline of spec.md
// §4.D: a registry of named handlers, each taking the current Value plus
// its raw argument tokens and producing the next Value in the chain.
// Transforms fold left to right, mirroring the path segment fold in
// package eval — the same "small total function per step" shape the
// teacher applies to its own AST visitor passes.
package transform

import (
	"sort"

	"github.com/go-pathql/pathql/ast"
	"github.com/go-pathql/pathql/eval"
	"github.com/go-pathql/pathql/reporter"
	"github.com/go-pathql/pathql/value"
)

// Handler implements one transform. step.Args are the step's raw argument
// tokens (identifiers/numbers as written in the query); step.Pred is
// populated only when the step carries a predicate (:filter).
type Handler func(v *value.Value, step ast.TransformStep) (*value.Value, *reporter.EvalError)

var registry = map[string]Handler{
	"keys":     keysHandler,
	"values":   valuesHandler,
	"count":    countHandler,
	"flatten":  flattenHandler,
	"pick":     pickHandler,
	"omit":     omitHandler,
	"sort":     sortHandler,
	"uniq":     uniqHandler,
	"group_by": groupByHandler,
	"filter":   filterHandler,
	"sum":      sumHandler,
	"avg":      avgHandler,
	"min":      minHandler,
	"max":      maxHandler,
}

// Apply folds steps over v left to right, matching eval.TransformApplier
// so the facade can wire it directly into eval.Evaluate.
func Apply(v *value.Value, steps []ast.TransformStep) (*value.Value, *reporter.EvalError) {
	cur := v
	for _, step := range steps {
		h, ok := registry[step.Name]
		if !ok {
			return nil, reporter.NewEvalError(step.Span().Start, reporter.UnknownTransform, step.Name, "unknown transform %q", step.Name)
		}
		next, err := h(cur, step)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

func argErr(step ast.TransformStep, format string, args ...interface{}) *reporter.EvalError {
	return reporter.NewEvalError(step.Span().Start, reporter.BadTransformArgs, step.Name, format, args...)
}

func typeErr(step ast.TransformStep, k value.Kind) *reporter.EvalError {
	return reporter.NewEvalError(step.Span().Start, reporter.TypeMismatch, step.Name, "cannot apply :%s to %s", step.Name, k)
}

func keysHandler(v *value.Value, step ast.TransformStep) (*value.Value, *reporter.EvalError) {
	if v.Kind() != value.Object {
		return nil, typeErr(step, v.Kind())
	}
	out := make([]*value.Value, 0, v.Len())
	for _, k := range v.Keys() {
		out = append(out, value.NewString(k))
	}
	return value.NewArray(out), nil
}

func valuesHandler(v *value.Value, step ast.TransformStep) (*value.Value, *reporter.EvalError) {
	if v.Kind() != value.Object {
		return nil, typeErr(step, v.Kind())
	}
	out := make([]*value.Value, 0, v.Len())
	for _, m := range v.Members() {
		out = append(out, m.Val)
	}
	return value.NewArray(out), nil
}

func countHandler(v *value.Value, step ast.TransformStep) (*value.Value, *reporter.EvalError) {
	switch v.Kind() {
	case value.Array, value.Object:
		return value.NewNumber(float64(v.Len())), nil
	default:
		return nil, typeErr(step, v.Kind())
	}
}

// flattenHandler flattens exactly one level of array nesting, per
// SPEC_FULL.md §13's resolution of spec.md's open question: non-array
// elements pass through unchanged, matching jq's flatten(1) behavior.
func flattenHandler(v *value.Value, step ast.TransformStep) (*value.Value, *reporter.EvalError) {
	if v.Kind() != value.Array {
		return nil, typeErr(step, v.Kind())
	}
	out := make([]*value.Value, 0, v.Len())
	for _, elem := range v.Elements() {
		if elem.Kind() == value.Array {
			out = append(out, elem.Elements()...)
		} else {
			out = append(out, elem)
		}
	}
	return value.NewArray(out), nil
}

func pickHandler(v *value.Value, step ast.TransformStep) (*value.Value, *reporter.EvalError) {
	if len(step.Args) == 0 {
		return nil, argErr(step, ":pick requires at least one field name")
	}
	project := func(obj *value.Value) *value.Value {
		b := value.NewObject()
		for _, f := range step.Args {
			if val, ok := obj.Field(f); ok {
				b.Set(f, val)
			}
		}
		return b.Build()
	}
	return mapObjectOrArray(v, step, project)
}

func omitHandler(v *value.Value, step ast.TransformStep) (*value.Value, *reporter.EvalError) {
	if len(step.Args) == 0 {
		return nil, argErr(step, ":omit requires at least one field name")
	}
	omit := make(map[string]bool, len(step.Args))
	for _, f := range step.Args {
		omit[f] = true
	}
	project := func(obj *value.Value) *value.Value {
		b := value.NewObject()
		for _, m := range obj.Members() {
			if !omit[m.Key] {
				b.Set(m.Key, m.Val)
			}
		}
		return b.Build()
	}
	return mapObjectOrArray(v, step, project)
}

// mapObjectOrArray applies project to v if it's an Object, or to every
// Object element of v if it's an Array of objects — :pick/:omit both
// work either shape, per spec.md §4.D.
func mapObjectOrArray(v *value.Value, step ast.TransformStep, project func(*value.Value) *value.Value) (*value.Value, *reporter.EvalError) {
	switch v.Kind() {
	case value.Object:
		return project(v), nil
	case value.Array:
		out := make([]*value.Value, v.Len())
		for i, elem := range v.Elements() {
			if elem.Kind() != value.Object {
				return nil, typeErr(step, elem.Kind())
			}
			out[i] = project(elem)
		}
		return value.NewArray(out), nil
	default:
		return nil, typeErr(step, v.Kind())
	}
}

// sortHandler implements spec.md §4.D's :sort: bare ":sort" sorts scalar
// arrays by value; ":sort field" sorts an array of objects by a field.
// Sorting is stable; elements missing the sort field sort to the end, in
// original relative order. Elements whose keys are present but
// cross-type (e.g. a string next to a number) never swap against each
// other, so they also keep their original relative order.
func sortHandler(v *value.Value, step ast.TransformStep) (*value.Value, *reporter.EvalError) {
	if v.Kind() != value.Array {
		return nil, typeErr(step, v.Kind())
	}
	key := func(e *value.Value) *value.Value {
		if len(step.Args) == 0 {
			return e
		}
		return e.FieldOrNull(step.Args[0])
	}
	hasKey := func(e *value.Value) bool {
		if len(step.Args) == 0 {
			return true
		}
		_, present := e.Field(step.Args[0])
		return present
	}

	// Partition into sortable/unsortable up front so the comparator never
	// has to fake an ordering for a pair it can't actually compare; a
	// single stable sort on the sortable half then preserves original
	// relative order both among unsortable elements and as a tiebreak.
	var sortable, unsortable []*value.Value
	for _, e := range v.Elements() {
		if hasKey(e) {
			sortable = append(sortable, e)
		} else {
			unsortable = append(unsortable, e)
		}
	}
	sort.SliceStable(sortable, func(i, j int) bool {
		c, ok := value.Compare(key(sortable[i]), key(sortable[j]))
		return ok && c < 0
	})
	return value.NewArray(append(sortable, unsortable...)), nil
}

// uniqHandler dedups by structural equality (value.Equal), preserving
// first occurrence, per spec.md §4.D.
func uniqHandler(v *value.Value, step ast.TransformStep) (*value.Value, *reporter.EvalError) {
	if v.Kind() != value.Array {
		return nil, typeErr(step, v.Kind())
	}
	var out []*value.Value
	for _, e := range v.Elements() {
		dup := false
		for _, seen := range out {
			if value.Equal(e, seen) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, e)
		}
	}
	return value.NewArray(out), nil
}

// groupByHandler buckets array elements by a field's canonical string
// key (value.CanonicalKey so non-string keys group deterministically),
// producing an Object of field-value -> array-of-elements, in first-seen
// key order, per spec.md §4.D and §9.
func groupByHandler(v *value.Value, step ast.TransformStep) (*value.Value, *reporter.EvalError) {
	if v.Kind() != value.Array {
		return nil, typeErr(step, v.Kind())
	}
	if len(step.Args) != 1 {
		return nil, argErr(step, ":group_by requires exactly one field name")
	}
	field := step.Args[0]

	order := make([]string, 0)
	buckets := make(map[string][]*value.Value)
	for _, e := range v.Elements() {
		k := value.CanonicalKey(e.FieldOrNull(field))
		if _, ok := buckets[k]; !ok {
			order = append(order, k)
		}
		buckets[k] = append(buckets[k], e)
	}
	b := value.NewObject()
	for _, k := range order {
		b.Set(k, value.NewArray(buckets[k]))
	}
	return b.Build(), nil
}

// filterHandler reuses ast.Predicate/eval.MatchPredicate — the same
// grammar and semantics as a bracket predicate — per spec.md §9
// "Predicate parser reuse" and the predicate/filter equivalence testable
// property (spec.md §8).
func filterHandler(v *value.Value, step ast.TransformStep) (*value.Value, *reporter.EvalError) {
	if v.Kind() != value.Array {
		return nil, typeErr(step, v.Kind())
	}
	if !step.HasPred {
		return nil, argErr(step, ":filter requires a predicate argument")
	}
	var out []*value.Value
	for _, e := range v.Elements() {
		ok, err := eval.MatchPredicate(step.Pred, e)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, e)
		}
	}
	return value.NewArray(out), nil
}

func numericField(step ast.TransformStep, e *value.Value) (float64, bool) {
	var v *value.Value
	if len(step.Args) == 0 {
		v = e
	} else {
		fv, ok := e.Field(step.Args[0])
		if !ok {
			return 0, false
		}
		v = fv
	}
	if v.Kind() != value.Number {
		return 0, false
	}
	return v.Number(), true
}

// sumHandler sums the numeric elements (or field values) of v, per spec.md
// §4.D: non-numeric entries are skipped, not an error. An array with no
// numeric entries at all sums to 0.
func sumHandler(v *value.Value, step ast.TransformStep) (*value.Value, *reporter.EvalError) {
	if v.Kind() != value.Array {
		return nil, typeErr(step, v.Kind())
	}
	var total float64
	for _, e := range v.Elements() {
		if n, ok := numericField(step, e); ok {
			total += n
		}
	}
	return value.NewNumber(total), nil
}

// avgHandler averages the numeric elements (or field values) of v, per
// spec.md §4.D: non-numeric entries are skipped and don't count toward the
// divisor. Null when there are no numeric entries to average, consistent
// with the empty-input rule.
func avgHandler(v *value.Value, step ast.TransformStep) (*value.Value, *reporter.EvalError) {
	if v.Kind() != value.Array {
		return nil, typeErr(step, v.Kind())
	}
	var total float64
	var count int
	for _, e := range v.Elements() {
		if n, ok := numericField(step, e); ok {
			total += n
			count++
		}
	}
	if count == 0 {
		return value.NewNull(), nil
	}
	return value.NewNumber(total / float64(count)), nil
}

func minHandler(v *value.Value, step ast.TransformStep) (*value.Value, *reporter.EvalError) {
	return extremum(v, step, true)
}

func maxHandler(v *value.Value, step ast.TransformStep) (*value.Value, *reporter.EvalError) {
	return extremum(v, step, false)
}

// extremum scans the numeric elements (or field values) of v for the
// min/max, per spec.md §4.D: non-numeric entries are skipped. Null when
// there are no numeric entries at all.
func extremum(v *value.Value, step ast.TransformStep, wantMin bool) (*value.Value, *reporter.EvalError) {
	if v.Kind() != value.Array {
		return nil, typeErr(step, v.Kind())
	}
	var best *value.Value
	var bestN float64
	for _, e := range v.Elements() {
		n, ok := numericField(step, e)
		if !ok {
			continue
		}
		if best == nil || (wantMin && n < bestN) || (!wantMin && n > bestN) {
			best, bestN = e, n
		}
	}
	if best == nil {
		return value.NewNull(), nil
	}
	return value.NewNumber(bestN), nil
}
