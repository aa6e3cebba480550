package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-pathql/pathql/ast"
)

func tokenKinds(t *testing.T, src string) []Kind {
	t.Helper()
	l := New(src)
	var kinds []Kind
	for {
		tok, err := l.Next()
		require.Nil(t, err)
		kinds = append(kinds, tok.Kind)
		if tok.Kind == EOF {
			return kinds
		}
	}
}

func TestBasicPunctuation(t *testing.T) {
	kinds := tokenKinds(t, ".a[0]:keys")
	assert.Equal(t, []Kind{Dot, Ident, LBracket, Number, RBracket, Colon, Ident, EOF}, kinds)
}

func TestNumberLiterals(t *testing.T) {
	cases := map[string]float64{
		"0":       0,
		"-1":      -1,
		"3.5":     3.5,
		"1e3":     1000,
		"-2.5e-1": -0.25,
	}
	for src, want := range cases {
		l := New(src)
		tok, err := l.Next()
		require.Nil(t, err, src)
		require.Equal(t, Number, tok.Kind, src)
		assert.Equal(t, want, tok.NumVal, src)
	}
}

func TestNumberDotDoesNotConsumeFollowingFieldDot(t *testing.T) {
	// "1.a" is not a valid number continuation; the '.' belongs to a
	// would-be next segment, not a decimal point.
	l := New("1.a")
	tok, err := l.Next()
	require.Nil(t, err)
	require.Equal(t, Number, tok.Kind)
	assert.Equal(t, float64(1), tok.NumVal)

	tok, err = l.Next()
	require.Nil(t, err)
	assert.Equal(t, Dot, tok.Kind)
}

func TestStringEscapes(t *testing.T) {
	l := New(`"a\"b\\c"`)
	tok, err := l.Next()
	require.Nil(t, err)
	require.Equal(t, String, tok.Kind)
	assert.Equal(t, `a"b\c`, tok.StrVal)
}

func TestUnterminatedStringIsParseError(t *testing.T) {
	l := New(`"abc`)
	_, err := l.Next()
	require.NotNil(t, err)
}

func TestOperators(t *testing.T) {
	cases := map[string]ast.Op{
		"==": ast.OpEq,
		"!=": ast.OpNe,
		"<":  ast.OpLt,
		">":  ast.OpGt,
		"<=": ast.OpLe,
		">=": ast.OpGe,
	}
	for src, want := range cases {
		l := New(src)
		tok, err := l.Next()
		require.Nil(t, err, src)
		require.Equal(t, Op, tok.Kind, src)
		assert.Equal(t, want, tok.OpVal, src)
	}
}

func TestSeekRestoresPosition(t *testing.T) {
	l := New(".users[0]")
	mark := l.Pos()
	first, _ := l.Next()
	require.Equal(t, Dot, first.Kind)

	l.Seek(mark)
	again, _ := l.Next()
	assert.Equal(t, Dot, again.Kind)
}

func TestEOFRepeatsEOFKind(t *testing.T) {
	l := New("")
	tok1, _ := l.Next()
	tok2, _ := l.Next()
	assert.Equal(t, EOF, tok1.Kind)
	assert.Equal(t, EOF, tok2.Kind)
}
