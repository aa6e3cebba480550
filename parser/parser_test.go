package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-pathql/pathql/ast"
)

func TestParseSimplePath(t *testing.T) {
	q, err := Parse(".users[0].name")
	require.Nil(t, err)
	// A query ending in a field name may still be mid-identifier (like
	// ".us"), so it is flagged TrailingIncomplete.
	require.True(t, q.TrailingIncomplete)
	require.Len(t, q.Path, 3)
	assert.Equal(t, ast.SegField, q.Path[0].Kind)
	assert.Equal(t, "users", q.Path[0].Field)
	assert.Equal(t, ast.SegIndex, q.Path[1].Kind)
	assert.Equal(t, 0, q.Path[1].Index)
	assert.Equal(t, ast.SegField, q.Path[2].Kind)
	assert.Equal(t, "name", q.Path[2].Field)
}

func TestParsePredicateAndTransform(t *testing.T) {
	q, err := Parse(`.users[role == "admin"] :pick name`)
	require.Nil(t, err)
	// A transform argument followed by end of input may still be typed
	// further, so it is flagged TrailingIncomplete.
	require.True(t, q.TrailingIncomplete)
	require.Len(t, q.Path, 2)
	pred := q.Path[1].Pred
	assert.Equal(t, "role", pred.Field)
	assert.Equal(t, ast.OpEq, pred.Op)
	assert.Equal(t, ast.LitString, pred.Lit.Kind)
	assert.Equal(t, "admin", pred.Lit.Str)

	require.Len(t, q.Transforms, 1)
	assert.Equal(t, "pick", q.Transforms[0].Name)
	assert.Equal(t, []string{"name"}, q.Transforms[0].Args)
}

func TestParseSliceVariants(t *testing.T) {
	for _, tc := range []struct {
		src          string
		lo, hi       int
		hasLo, hasHi bool
	}{
		{".a[0:2]", 0, 2, true, true},
		{".a[:5]", 0, 5, false, true},
		{".a[2:]", 2, 0, true, false},
	} {
		q, err := Parse(tc.src)
		require.Nil(t, err, tc.src)
		require.Len(t, q.Path, 2, tc.src)
		seg := q.Path[1]
		require.Equal(t, ast.SegSlice, seg.Kind, tc.src)
		assert.Equal(t, tc.hasLo, seg.HasLo, tc.src)
		assert.Equal(t, tc.hasHi, seg.HasHi, tc.src)
		if tc.hasLo {
			assert.Equal(t, tc.lo, seg.Lo, tc.src)
		}
		if tc.hasHi {
			assert.Equal(t, tc.hi, seg.Hi, tc.src)
		}
	}
}

func TestParseWildcard(t *testing.T) {
	q, err := Parse(".users[*].name")
	require.Nil(t, err)
	require.Len(t, q.Path, 3)
	assert.Equal(t, ast.SegWildcard, q.Path[1].Kind)
}

func TestParseFilterTransformWithPredicate(t *testing.T) {
	q, err := Parse(`.users :filter age >= 18`)
	require.Nil(t, err)
	require.Len(t, q.Transforms, 1)
	step := q.Transforms[0]
	require.True(t, step.HasPred)
	assert.Equal(t, "age", step.Pred.Field)
	assert.Equal(t, ast.OpGe, step.Pred.Op)
	assert.Equal(t, float64(18), step.Pred.Lit.Number)
}

func TestTrailingIncompleteDotOnly(t *testing.T) {
	q, err := Parse(".users.")
	require.Nil(t, err)
	require.True(t, q.TrailingIncomplete)
	assert.Equal(t, ast.CtxKey, q.Context)
	assert.Equal(t, "", q.Fragment)
	// the already-complete "users" segment is still committed.
	require.Len(t, q.Path, 1)
	assert.Equal(t, "users", q.Path[0].Field)
}

func TestTrailingIncompleteMidIdent(t *testing.T) {
	q, err := Parse(".us")
	require.Nil(t, err)
	require.True(t, q.TrailingIncomplete)
	assert.Equal(t, ast.CtxKey, q.Context)
	assert.Equal(t, "us", q.Fragment)
}

func TestTrailingIncompleteOpenBracket(t *testing.T) {
	q, err := Parse(".a[")
	require.Nil(t, err)
	require.True(t, q.TrailingIncomplete)
	assert.Equal(t, ast.CtxPredicateField, q.Context)
}

func TestTrailingIncompleteTransformName(t *testing.T) {
	q, err := Parse(".a :pi")
	require.Nil(t, err)
	require.True(t, q.TrailingIncomplete)
	assert.Equal(t, ast.CtxTransform, q.Context)
	assert.Equal(t, "pi", q.Fragment)
	// partial transform name is still recorded as a step.
	require.Len(t, q.Transforms, 1)
	assert.Equal(t, "pi", q.Transforms[0].Name)
}

func TestTrailingIncompleteBareColon(t *testing.T) {
	q, err := Parse(".a :")
	require.Nil(t, err)
	require.True(t, q.TrailingIncomplete)
	assert.Equal(t, ast.CtxTransform, q.Context)
	assert.Equal(t, "", q.Fragment)
}

func TestHardErrorOnDanglingGarbage(t *testing.T) {
	_, err := Parse("users name")
	require.NotNil(t, err)
}

func TestHardErrorMissingFieldAfterDot(t *testing.T) {
	_, err := Parse(".[0]")
	require.NotNil(t, err)
}

func TestUnclosedBracketAtEOFIsNotAnError(t *testing.T) {
	_, err := Parse(".a[0")
	// "[0" with EOF right after the number is ambiguous with "still typing
	// the closing bracket," so it's TrailingIncomplete, not an error.
	require.Nil(t, err)
}

func TestRoundTripProperty(t *testing.T) {
	queries := []string{
		".users[0].name",
		`.users[role == "admin"] :pick name`,
		".items[0:2]",
		".items[*]",
		".a :filter age >= 18",
		".a :sort name",
	}
	for _, src := range queries {
		q1, err := Parse(src)
		require.Nil(t, err, src)
		rendered := ast.Render(q1)
		q2, err := Parse(rendered)
		require.Nil(t, err, rendered)
		assert.Equal(t, ast.Render(q2), rendered, src)
	}
}
