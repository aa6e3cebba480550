// Package lexer tokenizes a pathql query string per the grammar in
// spec.md §4.B. It is a small hand-written scanner rather than a
// table-driven state machine, because the query grammar has far fewer
// lexical states than the teacher's protobuf lexer (no comments, no
// compound identifiers, no UTF-8 BOM handling) — but it keeps the
// teacher's runeReader discipline: an explicit byte-offset cursor that
// supports mark/restore so the parser can report exact error positions
// and implement lookahead without re-scanning from the start.
package lexer

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-pathql/pathql/ast"
	"github.com/go-pathql/pathql/reporter"
)

// Kind discriminates a Token.
type Kind int8

const (
	EOF Kind = iota
	Dot
	LBracket
	RBracket
	Colon
	Comma
	Star
	Ident
	Number
	String
	Op
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case Dot:
		return "'.'"
	case LBracket:
		return "'['"
	case RBracket:
		return "']'"
	case Colon:
		return "':'"
	case Comma:
		return "','"
	case Star:
		return "'*'"
	case Ident:
		return "identifier"
	case Number:
		return "number"
	case String:
		return "string"
	case Op:
		return "operator"
	default:
		return "<unknown>"
	}
}

// Token is one lexical item plus its source span and decoded payload.
type Token struct {
	Kind Kind
	Text string // raw source text (quoted form for strings)
	Span ast.Span

	NumVal float64 // valid when Kind == Number
	StrVal string  // decoded value, valid when Kind == String
	OpVal  ast.Op  // valid when Kind == Op
}

// reader is a byte-offset cursor over a query string. Its position can be
// saved and restored through Lexer.Pos/Seek, which makes lookahead cheap
// for callers that need it.
type reader struct {
	src []byte
	pos int
}

func (r *reader) eof() bool { return r.pos >= len(r.src) }

func (r *reader) peekRune() (rune, int) {
	if r.eof() {
		return 0, 0
	}
	return utf8.DecodeRune(r.src[r.pos:])
}

func (r *reader) advance() (rune, int) {
	rn, sz := r.peekRune()
	r.pos += sz
	return rn, sz
}

// Lexer produces Tokens on demand. It is stateless beyond its cursor
// position, which is exactly what lets the parser save/restore it for
// backtracking.
type Lexer struct {
	r *reader
}

func New(src string) *Lexer {
	return &Lexer{r: &reader{src: []byte(src)}}
}

// Pos returns the current byte offset, usable as a save point together
// with Seek.
func (l *Lexer) Pos() ast.Pos { return ast.Pos(l.r.pos) }

// Seek restores the cursor to a previously observed Pos.
func (l *Lexer) Seek(p ast.Pos) { l.r.pos = int(p) }

func (l *Lexer) skipSpace() {
	for {
		rn, sz := l.r.peekRune()
		if sz == 0 || !isSpace(rn) {
			return
		}
		l.r.pos += sz
	}
}

func isSpace(r rune) bool { return r == ' ' || r == '\t' || r == '\n' || r == '\r' }

// Next returns the next token. At end of input it returns a Token with
// Kind == EOF repeatedly; it never returns io.EOF as an error, since
// spec.md §3 requires parsing to be total.
func (l *Lexer) Next() (Token, *reporter.ParseError) {
	l.skipSpace()
	start := ast.Pos(l.r.pos)

	if l.r.eof() {
		return Token{Kind: EOF, Span: ast.Span{Start: start, End: start}}, nil
	}

	rn, sz := l.r.peekRune()

	switch {
	case rn == '.':
		l.r.pos += sz
		return l.finish(Token{Kind: Dot, Text: "."}, start), nil
	case rn == '[':
		l.r.pos += sz
		return l.finish(Token{Kind: LBracket, Text: "["}, start), nil
	case rn == ']':
		l.r.pos += sz
		return l.finish(Token{Kind: RBracket, Text: "]"}, start), nil
	case rn == ':':
		l.r.pos += sz
		return l.finish(Token{Kind: Colon, Text: ":"}, start), nil
	case rn == ',':
		l.r.pos += sz
		return l.finish(Token{Kind: Comma, Text: ","}, start), nil
	case rn == '*':
		l.r.pos += sz
		return l.finish(Token{Kind: Star, Text: "*"}, start), nil
	case rn == '"':
		return l.lexString(start)
	case rn == '=' || rn == '!' || rn == '<' || rn == '>':
		return l.lexOp(start)
	case rn == '-' || rn == '+' || isDigit(rn):
		return l.lexNumber(start)
	case ast.IsIdentStart(rn):
		return l.lexIdent(start)
	default:
		l.r.pos += sz
		return Token{}, reporter.NewParseError(start, reporter.UnexpectedChar, "unexpected character %q", rn)
	}
}

func (l *Lexer) finish(t Token, start ast.Pos) Token {
	t.Span = ast.Span{Start: start, End: ast.Pos(l.r.pos)}
	return t
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func (l *Lexer) lexIdent(start ast.Pos) (Token, *reporter.ParseError) {
	var b strings.Builder
	for {
		rn, sz := l.r.peekRune()
		if sz == 0 || !ast.IsIdentCont(rn) {
			break
		}
		b.WriteRune(rn)
		l.r.pos += sz
	}
	return l.finish(Token{Kind: Ident, Text: b.String()}, start), nil
}

// lexNumber scans JSON number syntax by advancing the cursor and, at the
// end, slicing the consumed source bytes rather than rebuilding the text
// rune-by-rune — that keeps backing out of a tentative '.' or 'e'/exponent
// (when not followed by a digit) a matter of resetting l.r.pos, with no
// builder-truncation bookkeeping.
func (l *Lexer) lexNumber(start ast.Pos) (Token, *reporter.ParseError) {
	if rn, sz := l.r.peekRune(); rn == '-' || rn == '+' {
		l.r.pos += sz
	}
	digits := 0
	for {
		rn, sz := l.r.peekRune()
		if sz == 0 || !isDigit(rn) {
			break
		}
		l.r.pos += sz
		digits++
	}
	if digits == 0 {
		l.r.pos = int(start)
		return Token{}, reporter.NewParseError(start, reporter.BadNumber, "expected digits in number literal")
	}
	if rn, _ := l.r.peekRune(); rn == '.' {
		// Only consume the dot as a decimal point if followed by a digit;
		// otherwise it belongs to the next path segment's leading dot.
		save := l.r.pos
		_, sz := l.r.advance()
		if rn2, _ := l.r.peekRune(); isDigit(rn2) {
			for {
				rn3, sz3 := l.r.peekRune()
				if sz3 == 0 || !isDigit(rn3) {
					break
				}
				l.r.pos += sz3
			}
		} else {
			l.r.pos = save
		}
		_ = sz
	}
	if rn, _ := l.r.peekRune(); rn == 'e' || rn == 'E' {
		save := l.r.pos
		l.r.advance()
		if rn2, sz2 := l.r.peekRune(); rn2 == '+' || rn2 == '-' {
			l.r.pos += sz2
		}
		expDigits := 0
		for {
			rn3, sz3 := l.r.peekRune()
			if sz3 == 0 || !isDigit(rn3) {
				break
			}
			l.r.pos += sz3
			expDigits++
		}
		if expDigits == 0 {
			l.r.pos = save
		}
	}
	text := string(l.r.src[int(start):l.r.pos])
	n, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Token{}, reporter.NewParseError(start, reporter.BadNumber, "invalid number literal %q", text)
	}
	return l.finish(Token{Kind: Number, Text: text, NumVal: n}, start), nil
}

func (l *Lexer) lexString(start ast.Pos) (Token, *reporter.ParseError) {
	l.r.pos++ // opening quote
	var raw strings.Builder
	var val strings.Builder
	raw.WriteByte('"')
	for {
		if l.r.eof() {
			return Token{}, reporter.NewParseError(start, reporter.UnterminatedString, "unterminated string literal")
		}
		rn, sz := l.r.advance()
		if rn == '"' {
			raw.WriteByte('"')
			return l.finish(Token{Kind: String, Text: raw.String(), StrVal: val.String()}, start), nil
		}
		if rn == '\\' {
			raw.WriteByte('\\')
			if l.r.eof() {
				return Token{}, reporter.NewParseError(start, reporter.UnterminatedString, "unterminated escape sequence")
			}
			esc, esz := l.r.advance()
			raw.WriteRune(esc)
			switch esc {
			case '"':
				val.WriteByte('"')
			case '\\':
				val.WriteByte('\\')
			default:
				return Token{}, reporter.NewParseError(ast.Pos(l.r.pos-esz), reporter.BadEscape, "unsupported escape sequence \\%c", esc)
			}
			continue
		}
		raw.WriteRune(rn)
		val.WriteRune(rn)
		_ = sz
	}
}

func (l *Lexer) lexOp(start ast.Pos) (Token, *reporter.ParseError) {
	rn, sz := l.r.advance()
	next, nsz := l.r.peekRune()
	switch rn {
	case '=':
		if next == '=' {
			l.r.pos += nsz
			return l.finish(Token{Kind: Op, Text: "==", OpVal: ast.OpEq}, start), nil
		}
		return Token{}, reporter.NewParseError(start, reporter.UnexpectedChar, "expected '==', got '='")
	case '!':
		if next == '=' {
			l.r.pos += nsz
			return l.finish(Token{Kind: Op, Text: "!=", OpVal: ast.OpNe}, start), nil
		}
		return Token{}, reporter.NewParseError(start, reporter.UnexpectedChar, "expected '!=', got '!'")
	case '<':
		if next == '=' {
			l.r.pos += nsz
			return l.finish(Token{Kind: Op, Text: "<=", OpVal: ast.OpLe}, start), nil
		}
		return l.finish(Token{Kind: Op, Text: "<", OpVal: ast.OpLt}, start), nil
	case '>':
		if next == '=' {
			l.r.pos += nsz
			return l.finish(Token{Kind: Op, Text: ">=", OpVal: ast.OpGe}, start), nil
		}
		return l.finish(Token{Kind: Op, Text: ">", OpVal: ast.OpGt}, start), nil
	}
	_ = sz
	return Token{}, reporter.NewParseError(start, reporter.UnexpectedChar, "unexpected operator character")
}
