package ast

// Visitor is the teacher lineage's Before/Visit/After walk contract,
// adapted from a protobuf-declaration tree to a two-list Query tree: a
// Visitor can inspect a node, decide whether to descend into it (a nil
// return from Visit halts descent below that node), and run cleanup logic
// once its children are done.
type Visitor interface {
	// Before runs before Visit; returning false skips the node and its
	// children entirely.
	Before(n Node) bool
	// Visit runs for every node not skipped by Before. Returning nil
	// stops descent below n; otherwise the returned Visitor walks n's
	// children (a predicate Segment or a :filter TransformStep descends
	// into its Predicate, and a Predicate into its Literal).
	Visit(n Node) Visitor
	// After runs once a node (and anything it contains) has been fully
	// visited.
	After(n Node)
}

// Walk visits every Segment, then every TransformStep, of q in source
// order. Predicate segments additionally walk their embedded Predicate and
// Literal.
func Walk(v Visitor, q *Query) {
	for i := range q.Path {
		walkSegment(v, &q.Path[i])
	}
	for i := range q.Transforms {
		walkTransform(v, &q.Transforms[i])
	}
}

func walkSegment(v Visitor, s *Segment) {
	if !v.Before(s) {
		return
	}
	defer v.After(s)
	child := v.Visit(s)
	if child == nil {
		return
	}
	if s.Kind == SegPredicate {
		walkPredicate(child, &s.Pred)
	}
}

func walkTransform(v Visitor, t *TransformStep) {
	if !v.Before(t) {
		return
	}
	defer v.After(t)
	child := v.Visit(t)
	if child == nil {
		return
	}
	if t.HasPred {
		walkPredicate(child, &t.Pred)
	}
}

func walkPredicate(v Visitor, p *Predicate) {
	if !v.Before(p) {
		return
	}
	defer v.After(p)
	child := v.Visit(p)
	if child == nil {
		return
	}
	walkLiteral(child, &p.Lit)
}

func walkLiteral(v Visitor, l *Literal) {
	if !v.Before(l) {
		return
	}
	v.Visit(l)
	v.After(l)
}

// BaseVisitor is an embeddable no-op Visitor; callers override only the
// methods they need, the same convenience pattern as the teacher's own
// walk helpers for ast.Visitor implementations that only care about one
// node kind.
type BaseVisitor struct{}

func (b BaseVisitor) Before(Node) bool     { return true }
func (b BaseVisitor) Visit(Node) Visitor   { return b }
func (b BaseVisitor) After(Node)           {}
