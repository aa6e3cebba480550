package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-pathql/pathql/parser"
	"github.com/go-pathql/pathql/value"
)

func evalQuery(t *testing.T, src string, root *value.Value) *value.Value {
	t.Helper()
	q, perr := parser.Parse(src)
	require.Nil(t, perr, src)
	v, eerr := Evaluate(q, root, nil)
	require.Nil(t, eerr, src)
	return v
}

func usersDoc() *value.Value {
	mkUser := func(name string, age float64, role string) *value.Value {
		return value.NewObject().
			Set("name", value.NewString(name)).
			Set("age", value.NewNumber(age)).
			Set("role", value.NewString(role)).
			Build()
	}
	users := value.NewArray([]*value.Value{
		mkUser("Ada", 30, "admin"),
		mkUser("Bob", 25, "user"),
		mkUser("Cid", 40, "admin"),
	})
	return value.NewObject().Set("users", users).Build()
}

func TestEvalFieldAndIndex(t *testing.T) {
	root := usersDoc()
	v := evalQuery(t, ".users[0].name", root)
	assert.Equal(t, "Ada", v.Str())
}

func TestEvalOutOfRangeIndexIsNull(t *testing.T) {
	root := usersDoc()
	v := evalQuery(t, ".users[99]", root)
	assert.Equal(t, value.Null, v.Kind())
}

func TestEvalSlice(t *testing.T) {
	root := usersDoc()
	v := evalQuery(t, ".users[0:2]", root)
	assert.Equal(t, 2, v.Len())
}

func TestEvalWildcardOverObjectYieldsValuesOnly(t *testing.T) {
	obj := value.NewObject().Set("a", value.NewNumber(1)).Set("b", value.NewNumber(2)).Build()
	root := value.NewObject().Set("o", obj).Build()
	v := evalQuery(t, ".o[*]", root)
	require.Equal(t, value.Array, v.Kind())
	require.Equal(t, 2, v.Len())
	assert.Equal(t, float64(1), v.Index(0).Number())
}

func TestEvalPredicateFiltersArray(t *testing.T) {
	root := usersDoc()
	v := evalQuery(t, `.users[role == "admin"]`, root)
	require.Equal(t, 2, v.Len())
	for _, e := range v.Elements() {
		role, _ := e.Field("role")
		assert.Equal(t, "admin", role.Str())
	}
}

func TestPredicateNullComparisonLaw(t *testing.T) {
	root := value.NewArray([]*value.Value{
		value.NewObject().Set("x", value.NewNull()).Build(),
		value.NewObject().Build(),
		value.NewObject().Set("x", value.NewNumber(1)).Build(),
	})
	wrapped := value.NewObject().Set("items", root).Build()
	v := evalQuery(t, `.items[x == null]`, wrapped)
	assert.Equal(t, 2, v.Len())
}

func TestPredicateMissingFieldOrderedComparisonIsFalse(t *testing.T) {
	root := value.NewArray([]*value.Value{value.NewObject().Build()})
	wrapped := value.NewObject().Set("items", root).Build()
	v := evalQuery(t, `.items[x < 5]`, wrapped)
	assert.Equal(t, 0, v.Len())
}

func TestEvalTypeMismatchProducesPositionedError(t *testing.T) {
	root := value.NewObject().Set("x", value.NewNumber(1)).Build()
	q, perr := parser.Parse(".x.y")
	require.Nil(t, perr)
	_, eerr := Evaluate(q, root, nil)
	require.NotNil(t, eerr)
}
