// Package ast defines the Query abstract syntax tree produced by the
// parser: an ordered list of path Segments followed by an ordered list of
// transform Steps, per spec.md §3-4.B. Every node carries its byte-offset
// span in the source query string so that parse errors and completion
// context can point back at exact source positions, the same discipline
// the teacher lineage applies to its own Node.Start()/End() contract.
package ast

// Pos is a byte offset into the original query string.
type Pos int

// Span is a half-open [Start, End) byte range in the source query string.
type Span struct {
	Start Pos
	End   Pos
}

// Node is implemented by every AST element that can be located in source.
type Node interface {
	Span() Span
}

// Op is a predicate comparison operator, spec.md §3.
type Op int8

const (
	OpEq Op = iota
	OpNe
	OpLt
	OpGt
	OpLe
	OpGe
)

func (o Op) String() string {
	switch o {
	case OpEq:
		return "=="
	case OpNe:
		return "!="
	case OpLt:
		return "<"
	case OpGt:
		return ">"
	case OpLe:
		return "<="
	case OpGe:
		return ">="
	default:
		return "<bad-op>"
	}
}

// LitKind discriminates the payload of a Literal.
type LitKind int8

const (
	LitNumber LitKind = iota
	LitString
	LitBool
	LitNull
)

// Literal is a predicate right-hand-side value: Number | String | Bool |
// Null, spec.md §3.
type Literal struct {
	span    Span
	Kind    LitKind
	Number  float64
	Str     string
	Bool    bool
}

func (l Literal) Span() Span { return l.span }

// Predicate is the shared `field op literal` grammar used both inside
// bracket predicates and as the argument to :filter — spec.md §9
// "Predicate parser reuse."
type Predicate struct {
	span  Span
	Field string
	Op    Op
	Lit   Literal
}

func (p Predicate) Span() Span { return p.span }

// SetSpan is used by the parser to backfill a Predicate's span once its
// final token (the literal) has been consumed.
func (p *Predicate) SetSpan(span Span) { p.span = span }

// SegKind discriminates the variant of a path Segment.
type SegKind int8

const (
	SegField SegKind = iota
	SegIndex
	SegSlice
	SegWildcard
	SegPredicate
	SegRecurse
)

// Segment is one step of a path, spec.md §3. Only the fields relevant to
// Kind are populated.
type Segment struct {
	span Span
	Kind SegKind

	// SegField
	Field string

	// SegIndex
	Index int

	// SegSlice; HasLo/HasHi distinguish an explicit 0/len from an omitted
	// bound, since spec.md defines the missing bound as "0 / length" at
	// evaluation time, not at parse time (the array isn't known yet).
	Lo, Hi       int
	HasLo, HasHi bool

	// SegPredicate
	Pred Predicate
}

func (s Segment) Span() Span { return s.span }

// SetEnd is used by the parser to backfill a bracketed segment's end
// offset once its closing ']' has been consumed.
func (s *Segment) SetEnd(end Pos) { s.span.End = end }

// NewFieldSegment, et al. construct Segments with their span; kept as
// plain constructors (rather than a fluent builder) because the parser
// assembles every field of a Segment at one call site.
func NewFieldSegment(span Span, field string) Segment {
	return Segment{span: span, Kind: SegField, Field: field}
}

func NewIndexSegment(span Span, index int) Segment {
	return Segment{span: span, Kind: SegIndex, Index: index}
}

func NewSliceSegment(span Span, lo int, hasLo bool, hi int, hasHi bool) Segment {
	return Segment{span: span, Kind: SegSlice, Lo: lo, HasLo: hasLo, Hi: hi, HasHi: hasHi}
}

func NewWildcardSegment(span Span) Segment {
	return Segment{span: span, Kind: SegWildcard}
}

func NewPredicateSegment(span Span, pred Predicate) Segment {
	return Segment{span: span, Kind: SegPredicate, Pred: pred}
}

// NewRecurseSegment exists for forward compatibility with spec.md §3's
// reserved-but-optional Recurse segment. The parser never constructs one
// (see SPEC_FULL.md §13); it is defined here so ast.Walk and any future
// evaluator case have a target type without another breaking change.
func NewRecurseSegment(span Span) Segment {
	return Segment{span: span, Kind: SegRecurse}
}

// TransformStep is one colon-command: a name plus zero or more argument
// tokens, spec.md §3.
type TransformStep struct {
	span Span
	Name string
	// Args are bare identifier/number tokens for :pick, :omit,
	// :sort, :group_by, :sum, :avg, :min, :max. Empty for :keys, :values,
	// :count, :flatten, :uniq with no field, and for :filter (which uses
	// Pred instead).
	Args []string
	// Pred is populated only for :filter.
	Pred    Predicate
	HasPred bool
}

func (t TransformStep) Span() Span { return t.span }

// SetSpan is used by the parser to backfill a TransformStep's span once
// its last argument token has been consumed.
func (t *TransformStep) SetSpan(span Span) { t.span = span }

// CursorContext names what kind of token the cursor sits in, for
// completion — spec.md §9 "Completion context inference from a partial
// parse." The parser fills this in on the query whenever
// TrailingIncomplete is true.
type CursorContext int8

const (
	CtxNone CursorContext = iota
	// CtxKey: cursor is positioned to complete an object/array-of-object
	// field name, either right after '.' or mid-identifier.
	CtxKey
	// CtxTransform: cursor is positioned to complete a transform name,
	// right after ':' or mid-identifier.
	CtxTransform
	// CtxPredicateField: cursor is inside `[` awaiting/typing a field
	// name for a predicate.
	CtxPredicateField
	// CtxPredicateOp: cursor is positioned right after a predicate field,
	// awaiting an operator.
	CtxPredicateOp
	// CtxPredicateLiteral: cursor is positioned awaiting/typing a
	// predicate's literal operand.
	CtxPredicateLiteral
)

// Query is the full AST: an ordered path plus an ordered transform chain,
// spec.md §3. Either list may be empty (identity query).
type Query struct {
	Path       []Segment
	Transforms []TransformStep

	// TrailingIncomplete is true when the parsed prefix ends mid-segment
	// or mid-transform rather than at a clean boundary — spec.md §4.B.
	// The AST still reflects the longest valid prefix.
	TrailingIncomplete bool

	// Fragment is the partial token the cursor sits inside when
	// TrailingIncomplete is true (e.g. "us" in ".us"). Empty otherwise.
	Fragment string

	// Context names what the Fragment is completing, for the Completion
	// component, spec.md §4.F step 2 / §9.
	Context CursorContext

	// PredicateFieldSoFar holds the field name already parsed when
	// Context is CtxPredicateOp or CtxPredicateLiteral, so completion can
	// resolve which field's values to suggest.
	PredicateFieldSoFar string
}
