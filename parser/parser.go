// Package parser builds an ast.Query from a query string per the grammar
// in spec.md §4.B, using the lexer package for tokenization. It is a
// hand-written recursive-descent parser — the teacher's own grammar uses a
// generated goyacc parser, but this grammar is small and single-pass
// enough that a generated parser would add machinery without paying for
// itself; the teacher's *discipline* around error reporting (position-
// carrying errors, best-effort partial ASTs on failure) is what carries
// over, via the reporter package.
//
// Parsing is total (spec.md §3): Parse never fails outright. It either
// returns a complete AST, or the longest valid prefix plus a ParseError,
// or — when the input ends mid-token in a way a user could still be
// typing — the longest valid prefix annotated with TrailingIncomplete,
// Fragment, and Context so the completion component (package complete)
// can pick up exactly where parsing stopped, per spec.md §9 "Completion
// context inference from a partial parse."
package parser

import (
	"github.com/go-pathql/pathql/ast"
	"github.com/go-pathql/pathql/lexer"
	"github.com/go-pathql/pathql/reporter"
)

type parser struct {
	lex *lexer.Lexer
	tok lexer.Token
	err *reporter.ParseError
	// prev is the end offset of the token consumed before tok.
	prev ast.Pos
}

// Parse tokenizes and parses src into a Query AST. See the package doc for
// the total-parsing contract.
func Parse(src string) (*ast.Query, *reporter.ParseError) {
	p := &parser{lex: lexer.New(src)}
	p.advance()

	q := &ast.Query{}
	p.parsePath(q)
	if p.err == nil && !q.TrailingIncomplete {
		p.parseTransforms(q)
	}
	if p.err == nil && !q.TrailingIncomplete && p.tok.Kind != lexer.EOF {
		p.err = reporter.NewParseError(p.tok.Span.Start, reporter.UnexpectedChar, "unexpected %s, expected end of query", p.tok.Kind)
	}
	return q, p.err
}

func (p *parser) advance() {
	p.prev = p.tok.Span.End
	tok, err := p.lex.Next()
	if err != nil {
		p.err = err
		p.tok = lexer.Token{Kind: lexer.EOF}
		return
	}
	p.tok = tok
}

// parsePath consumes ('.' segment)* | ident-without-leading-dot-at-root,
// chaining any number of trailing '[' groups onto each field.
func (p *parser) parsePath(q *ast.Query) {
	for p.err == nil && !q.TrailingIncomplete {
		switch p.tok.Kind {
		case lexer.Dot:
			p.parseDotField(q)
		case lexer.LBracket:
			p.parseBracketGroup(q)
		case lexer.Ident:
			if len(q.Path) != 0 {
				// An identifier with no leading '.' and no bracket can
				// only start a path at the root; elsewhere it's not part
				// of this grammar (the transform chain starts with ':').
				return
			}
			p.parseBareRootField(q)
		default:
			return
		}
	}
}

func (p *parser) parseDotField(q *ast.Query) {
	dotStart := p.tok.Span.Start
	p.advance()
	if p.err != nil {
		return
	}
	if p.tok.Kind == lexer.EOF {
		q.TrailingIncomplete = true
		q.Fragment = ""
		q.Context = ast.CtxKey
		return
	}
	if p.tok.Kind != lexer.Ident {
		p.err = reporter.NewParseError(p.tok.Span.Start, reporter.UnexpectedChar, "expected field name after '.'")
		return
	}
	fieldTok := p.tok
	p.advance()
	q.Path = append(q.Path, ast.NewFieldSegment(ast.Span{Start: dotStart, End: fieldTok.Span.End}, fieldTok.Text))
	if p.tok.Kind == lexer.EOF {
		q.TrailingIncomplete = true
		q.Fragment = fieldTok.Text
		q.Context = ast.CtxKey
		return
	}
}

func (p *parser) parseBareRootField(q *ast.Query) {
	fieldTok := p.tok
	p.advance()
	q.Path = append(q.Path, ast.NewFieldSegment(fieldTok.Span, fieldTok.Text))
	if p.tok.Kind == lexer.EOF {
		q.TrailingIncomplete = true
		q.Fragment = fieldTok.Text
		q.Context = ast.CtxKey
	}
}

// parseBracketGroup consumes one '[' ... ']' group: an index, a slice, a
// wildcard, or a predicate, per spec.md §4.B's index_or_pred production.
func (p *parser) parseBracketGroup(q *ast.Query) {
	lstart := p.tok.Span.Start
	p.advance() // consume '['
	if p.err != nil {
		return
	}
	if p.tok.Kind == lexer.EOF {
		// "[" with nothing typed yet: the most useful guess is that the
		// user is about to name a predicate field, spec.md §9's `.a[`
		// example.
		q.TrailingIncomplete = true
		q.Fragment = ""
		q.Context = ast.CtxPredicateField
		return
	}

	switch p.tok.Kind {
	case lexer.Star:
		p.advance()
		seg := ast.NewWildcardSegment(ast.Span{Start: lstart})
		if p.finishBracket(q, &seg) {
			q.Path = append(q.Path, seg)
		}
	case lexer.Number:
		p.parseIndexOrSlice(q, lstart)
	case lexer.Colon:
		p.parseSliceMissingLo(q, lstart)
	case lexer.Ident:
		p.parsePredicate(q, lstart)
	default:
		p.err = reporter.NewParseError(p.tok.Span.Start, reporter.UnexpectedChar, "unexpected token inside '['")
	}
}

// finishBracket consumes the closing ']'. It sets seg's end span on
// success and returns true; on EOF it marks TrailingIncomplete (without an
// error — the bracket's content was well-formed, the user just hasn't
// closed it yet) and returns false; on any other token it's a hard parse
// error (spec.md §4.B's "expected `]` at 12" example).
func (p *parser) finishBracket(q *ast.Query, seg *ast.Segment) bool {
	switch p.tok.Kind {
	case lexer.RBracket:
		end := p.tok.Span.End
		p.advance()
		seg.SetEnd(end)
		return true
	case lexer.EOF:
		q.TrailingIncomplete = true
		q.Context = ast.CtxNone
		return false
	default:
		p.err = reporter.NewParseError(p.tok.Span.Start, reporter.UnterminatedBracket, "expected ']' at %d", p.tok.Span.Start)
		return false
	}
}

func (p *parser) parseIndexOrSlice(q *ast.Query, lstart ast.Pos) {
	numTok := p.tok
	p.advance()
	if p.tok.Kind == lexer.Colon {
		p.advance()
		hasHi := false
		hi := 0
		if p.tok.Kind == lexer.Number {
			hi = int(p.tok.NumVal)
			hasHi = true
			p.advance()
		} else if p.tok.Kind == lexer.EOF {
			q.TrailingIncomplete = true
			q.Context = ast.CtxNone
			return
		}
		seg := ast.NewSliceSegment(ast.Span{Start: lstart}, int(numTok.NumVal), true, hi, hasHi)
		if p.finishBracket(q, &seg) {
			q.Path = append(q.Path, seg)
		}
		return
	}
	seg := ast.NewIndexSegment(ast.Span{Start: lstart}, int(numTok.NumVal))
	if p.finishBracket(q, &seg) {
		q.Path = append(q.Path, seg)
	}
}

func (p *parser) parseSliceMissingLo(q *ast.Query, lstart ast.Pos) {
	p.advance() // consume ':'
	if p.tok.Kind == lexer.EOF {
		q.TrailingIncomplete = true
		q.Context = ast.CtxNone
		return
	}
	if p.tok.Kind != lexer.Number {
		p.err = reporter.NewParseError(p.tok.Span.Start, reporter.UnexpectedChar, "expected number after ':'")
		return
	}
	hi := int(p.tok.NumVal)
	p.advance()
	seg := ast.NewSliceSegment(ast.Span{Start: lstart}, 0, false, hi, true)
	if p.finishBracket(q, &seg) {
		q.Path = append(q.Path, seg)
	}
}

func (p *parser) parsePredicate(q *ast.Query, lstart ast.Pos) {
	pred, ok, incomplete := p.parsePredicateBody(q)
	if incomplete || !ok {
		return
	}
	seg := ast.NewPredicateSegment(ast.Span{Start: lstart}, pred)
	if p.finishBracket(q, &seg) {
		q.Path = append(q.Path, seg)
	}
}

// parsePredicateBody parses the shared `field op literal` grammar used by
// both bracket predicates and the :filter transform argument, per spec.md
// §9 "Predicate parser reuse." incomplete is true (and q is annotated) if
// EOF is reached mid-predicate; ok is false on a hard parse error.
func (p *parser) parsePredicateBody(q *ast.Query) (pred ast.Predicate, ok bool, incomplete bool) {
	fieldTok := p.tok
	fieldStart := fieldTok.Span.Start
	p.advance()
	if p.tok.Kind == lexer.EOF {
		q.TrailingIncomplete = true
		q.Fragment = fieldTok.Text
		q.Context = ast.CtxPredicateField
		return pred, false, true
	}
	if p.tok.Kind != lexer.Op {
		p.err = reporter.NewParseError(p.tok.Span.Start, reporter.UnexpectedChar, "expected comparison operator")
		return pred, false, false
	}
	opTok := p.tok
	p.advance()
	if p.tok.Kind == lexer.EOF {
		q.TrailingIncomplete = true
		q.Fragment = ""
		q.Context = ast.CtxPredicateLiteral
		q.PredicateFieldSoFar = fieldTok.Text
		return pred, false, true
	}
	lit, litOK := p.parseLiteral()
	if !litOK {
		if p.err == nil {
			p.err = reporter.NewParseError(p.tok.Span.Start, reporter.UnexpectedChar, "expected a literal (number, string, true, false, or null)")
		}
		return pred, false, false
	}
	pred = ast.Predicate{
		Field: fieldTok.Text,
		Op:    opTok.OpVal,
		Lit:   lit,
	}
	pred.SetSpan(ast.Span{Start: fieldStart, End: p.prevEnd()})
	return pred, true, false
}

// parseLiteral parses Number | "string" | true | false | null. On EOF it
// reports the enclosing predicate as trailing_incomplete via the caller
// (parseLiteral itself has no Query to annotate, so callers check for EOF
// before calling it).
func (p *parser) parseLiteral() (ast.Literal, bool) {
	tok := p.tok
	switch tok.Kind {
	case lexer.Number:
		p.advance()
		return ast.Literal{Kind: ast.LitNumber, Number: tok.NumVal}, true
	case lexer.String:
		p.advance()
		return ast.Literal{Kind: ast.LitString, Str: tok.StrVal}, true
	case lexer.Ident:
		switch tok.Text {
		case "true":
			p.advance()
			return ast.Literal{Kind: ast.LitBool, Bool: true}, true
		case "false":
			p.advance()
			return ast.Literal{Kind: ast.LitBool, Bool: false}, true
		case "null":
			p.advance()
			return ast.Literal{Kind: ast.LitNull}, true
		}
	}
	return ast.Literal{}, false
}

// prevEnd returns the end offset of the last consumed token (the one
// before the lookahead token p.tok), used to size the just-parsed node's
// span without threading an extra return value through every call site.
func (p *parser) prevEnd() ast.Pos { return p.prev }

// parseTransforms consumes (':' ident arg_list?)*.
func (p *parser) parseTransforms(q *ast.Query) {
	for p.err == nil && !q.TrailingIncomplete {
		if p.tok.Kind != lexer.Colon {
			return
		}
		p.parseOneTransform(q)
	}
}

func (p *parser) parseOneTransform(q *ast.Query) {
	colonStart := p.tok.Span.Start
	p.advance()
	if p.tok.Kind == lexer.EOF {
		q.TrailingIncomplete = true
		q.Fragment = ""
		q.Context = ast.CtxTransform
		return
	}
	if p.tok.Kind != lexer.Ident {
		p.err = reporter.NewParseError(p.tok.Span.Start, reporter.UnexpectedChar, "expected transform name after ':'")
		return
	}
	nameTok := p.tok
	p.advance()
	if p.tok.Kind == lexer.EOF {
		q.TrailingIncomplete = true
		q.Fragment = nameTok.Text
		q.Context = ast.CtxTransform
		// Still record the step: it's a legitimate, if short, transform
		// name that may already match a known transform exactly (e.g.
		// ":keys" with the cursor right after "s").
		q.Transforms = append(q.Transforms, ast.TransformStep{Name: nameTok.Text})
		return
	}

	step := ast.TransformStep{Name: nameTok.Text}
	step.SetSpan(ast.Span{Start: colonStart, End: nameTok.Span.End})

	if nameTok.Text == "filter" && p.tok.Kind == lexer.Ident {
		pred, ok, incomplete := p.parsePredicateBody(q)
		if incomplete {
			return
		}
		if !ok {
			return
		}
		step.Pred = pred
		step.HasPred = true
		step.SetSpan(ast.Span{Start: colonStart, End: p.prevEnd()})
		q.Transforms = append(q.Transforms, step)
		return
	}

	// Bare identifier/number argument list, comma-separated.
	for isArgStart(p.tok.Kind) {
		step.Args = append(step.Args, p.tok.Text)
		p.advance()
		if p.tok.Kind == lexer.EOF {
			q.TrailingIncomplete = true
			q.Fragment = ""
			q.Context = ast.CtxNone
			step.SetSpan(ast.Span{Start: colonStart, End: p.prevEnd()})
			q.Transforms = append(q.Transforms, step)
			return
		}
		if p.tok.Kind != lexer.Comma {
			break
		}
		p.advance()
		if p.tok.Kind == lexer.EOF {
			// Trailing comma with nothing after it yet: still typing the
			// next argument.
			q.TrailingIncomplete = true
			q.Fragment = ""
			q.Context = ast.CtxNone
			step.SetSpan(ast.Span{Start: colonStart, End: p.prevEnd()})
			q.Transforms = append(q.Transforms, step)
			return
		}
	}
	step.SetSpan(ast.Span{Start: colonStart, End: p.prevEnd()})
	q.Transforms = append(q.Transforms, step)
}

func isArgStart(k lexer.Kind) bool {
	return k == lexer.Ident || k == lexer.Number
}
