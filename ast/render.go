package ast

import (
	"strconv"
	"strings"
)

// Render reproduces a query string from an AST such that
// Parse(Render(Parse(q))) == Parse(q) for every well-formed q — the
// parser round-trip property of spec.md §8. Render never reproduces
// TrailingIncomplete state; it renders only the well-formed prefix.
//
// Render drives itself through Walk/Visitor rather than hand-rolled
// recursion.
func Render(q *Query) string {
	var b strings.Builder
	Walk(renderVisitor{b: &b}, q)
	return b.String()
}

// renderVisitor writes each node's source text on Visit, and closes the
// bracket a predicate segment opened once its children are done.
type renderVisitor struct {
	BaseVisitor
	b *strings.Builder
}

func (r renderVisitor) Visit(n Node) Visitor {
	switch x := n.(type) {
	case *Segment:
		return r.visitSegment(x)
	case *TransformStep:
		return r.visitTransform(x)
	case *Predicate:
		r.b.WriteString(x.Field)
		r.b.WriteByte(' ')
		r.b.WriteString(x.Op.String())
		r.b.WriteByte(' ')
		return r
	case *Literal:
		r.writeLiteral(*x)
		return nil
	default:
		return nil
	}
}

func (r renderVisitor) visitSegment(s *Segment) Visitor {
	switch s.Kind {
	case SegField:
		r.b.WriteByte('.')
		r.b.WriteString(s.Field)
	case SegIndex:
		r.b.WriteByte('[')
		r.b.WriteString(strconv.Itoa(s.Index))
		r.b.WriteByte(']')
	case SegSlice:
		r.b.WriteByte('[')
		if s.HasLo {
			r.b.WriteString(strconv.Itoa(s.Lo))
		}
		r.b.WriteByte(':')
		if s.HasHi {
			r.b.WriteString(strconv.Itoa(s.Hi))
		}
		r.b.WriteByte(']')
	case SegWildcard:
		r.b.WriteString("[*]")
	case SegPredicate:
		r.b.WriteByte('[')
		return r
	case SegRecurse:
		r.b.WriteString("..")
	}
	return nil
}

func (r renderVisitor) visitTransform(t *TransformStep) Visitor {
	r.b.WriteByte(':')
	r.b.WriteString(t.Name)
	if t.HasPred {
		r.b.WriteByte(' ')
		return r
	}
	for i, a := range t.Args {
		if i == 0 {
			r.b.WriteByte(' ')
		} else {
			r.b.WriteByte(',')
		}
		r.b.WriteString(a)
	}
	return nil
}

func (r renderVisitor) writeLiteral(l Literal) {
	switch l.Kind {
	case LitNumber:
		r.b.WriteString(strconv.FormatFloat(l.Number, 'g', -1, 64))
	case LitString:
		r.b.WriteString(strconv.Quote(l.Str))
	case LitBool:
		if l.Bool {
			r.b.WriteString("true")
		} else {
			r.b.WriteString("false")
		}
	case LitNull:
		r.b.WriteString("null")
	}
}

// After closes the bracket a predicate segment opened in Visit, once the
// predicate (and its literal) have been fully walked.
func (r renderVisitor) After(n Node) {
	if s, ok := n.(*Segment); ok && s.Kind == SegPredicate {
		r.b.WriteByte(']')
	}
}
