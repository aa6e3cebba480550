package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-pathql/pathql/eval"
	"github.com/go-pathql/pathql/parser"
	"github.com/go-pathql/pathql/value"
)

func run(t *testing.T, src string, root *value.Value) *value.Value {
	t.Helper()
	q, perr := parser.Parse(src)
	require.Nil(t, perr, src)
	v, eerr := eval.Evaluate(q, root, Apply)
	require.Nil(t, eerr, src)
	return v
}

func runErr(t *testing.T, src string, root *value.Value) error {
	t.Helper()
	q, perr := parser.Parse(src)
	require.Nil(t, perr, src)
	_, eerr := eval.Evaluate(q, root, Apply)
	return eerr
}

func ages() *value.Value {
	mk := func(name string, age float64) *value.Value {
		return value.NewObject().Set("name", value.NewString(name)).Set("age", value.NewNumber(age)).Build()
	}
	return value.NewObject().Set("people", value.NewArray([]*value.Value{
		mk("Ada", 30), mk("Bob", 25), mk("Cid", 40),
	})).Build()
}

func TestKeysAndValues(t *testing.T) {
	root := value.NewObject().Set("a", value.NewNumber(1)).Set("b", value.NewNumber(2)).Build()
	ks := run(t, ":keys", root)
	require.Equal(t, 2, ks.Len())
	assert.Equal(t, "a", ks.Index(0).Str())

	vs := run(t, ":values", root)
	assert.Equal(t, float64(1), vs.Index(0).Number())
}

func TestCount(t *testing.T) {
	root := ages()
	v := run(t, ".people:count", root)
	assert.Equal(t, float64(3), v.Number())
}

func TestFlattenOneLevel(t *testing.T) {
	root := value.NewObject().Set("nested", value.NewArray([]*value.Value{
		value.NewArray([]*value.Value{value.NewNumber(1), value.NewNumber(2)}),
		value.NewNumber(3),
		value.NewArray([]*value.Value{value.NewNumber(4)}),
	})).Build()
	v := run(t, ".nested:flatten", root)
	require.Equal(t, 4, v.Len())
	assert.Equal(t, float64(1), v.Index(0).Number())
	assert.Equal(t, float64(3), v.Index(2).Number())
}

func TestPickAndOmit(t *testing.T) {
	root := ages()
	picked := run(t, ".people:pick name", root)
	first := picked.Index(0)
	_, hasAge := first.Field("age")
	assert.False(t, hasAge)
	name, ok := first.Field("name")
	require.True(t, ok)
	assert.Equal(t, "Ada", name.Str())

	omitted := run(t, ".people:omit age", root)
	_, hasAge2 := omitted.Index(0).Field("age")
	assert.False(t, hasAge2)
}

func TestSortByField(t *testing.T) {
	root := ages()
	v := run(t, ".people:sort age", root)
	prev := -1.0
	for _, e := range v.Elements() {
		age, _ := e.Field("age")
		assert.GreaterOrEqual(t, age.Number(), prev)
		prev = age.Number()
	}
}

func TestSortMissingFieldTrailsStably(t *testing.T) {
	root := value.NewArray([]*value.Value{
		value.NewObject().Set("k", value.NewNumber(2)).Build(),
		value.NewObject().Build(),
		value.NewObject().Set("k", value.NewNumber(1)).Build(),
	})
	wrapped := value.NewObject().Set("xs", root).Build()
	v := run(t, ".xs:sort k", wrapped)
	require.Equal(t, 3, v.Len())
	k0, _ := v.Index(0).Field("k")
	assert.Equal(t, float64(1), k0.Number())
	_, hasK := v.Index(2).Field("k")
	assert.False(t, hasK)
}

func TestUniqDedupsStructurally(t *testing.T) {
	root := value.NewObject().Set("xs", value.NewArray([]*value.Value{
		value.NewNumber(1), value.NewNumber(1), value.NewNumber(2),
	})).Build()
	v := run(t, ".xs:uniq", root)
	assert.Equal(t, 2, v.Len())
}

func TestGroupByCanonicalKey(t *testing.T) {
	root := ages()
	v := run(t, ".people:group_by age", root)
	require.Equal(t, value.Object, v.Kind())
	bucket, ok := v.Field("30")
	require.True(t, ok)
	require.Equal(t, 1, bucket.Len())
}

func TestFilterMatchesBracketPredicateSemantics(t *testing.T) {
	root := ages()
	viaBracket := run(t, `.people[age >= 30]`, root)
	viaFilter := run(t, `.people:filter age >= 30`, root)
	require.Equal(t, viaBracket.Len(), viaFilter.Len())
	for i := range viaBracket.Elements() {
		assert.True(t, value.Equal(viaBracket.Index(i), viaFilter.Index(i)))
	}
}

func TestSumAvgMinMax(t *testing.T) {
	root := ages()
	assert.Equal(t, float64(95), run(t, ".people:sum age", root).Number())
	assert.InDelta(t, 31.666, run(t, ".people:avg age", root).Number(), 0.01)
	assert.Equal(t, float64(25), run(t, ".people:min age", root).Number())
	assert.Equal(t, float64(40), run(t, ".people:max age", root).Number())
}

func TestAvgOfEmptyIsNull(t *testing.T) {
	root := value.NewObject().Set("xs", value.NewArray(nil)).Build()
	v := run(t, ".xs:avg", root)
	assert.Equal(t, value.Null, v.Kind())
}

func TestSumOfEmptyIsZero(t *testing.T) {
	root := value.NewObject().Set("xs", value.NewArray(nil)).Build()
	v := run(t, ".xs:sum", root)
	assert.Equal(t, float64(0), v.Number())
}

func TestUnknownTransformIsError(t *testing.T) {
	root := ages()
	err := runErr(t, ".people:bogus", root)
	require.NotNil(t, err)
}

func TestSumAvgMinMaxSkipNonNumericEntries(t *testing.T) {
	root := value.NewObject().Set("xs", value.NewArray([]*value.Value{
		value.NewNumber(1), value.NewString("x"), value.NewNumber(2), value.NewNull(),
	})).Build()
	assert.Equal(t, float64(3), run(t, ".xs:sum", root).Number())
	assert.Equal(t, float64(1.5), run(t, ".xs:avg", root).Number())
	assert.Equal(t, float64(1), run(t, ".xs:min", root).Number())
	assert.Equal(t, float64(2), run(t, ".xs:max", root).Number())
}

func TestSumAvgMinMaxAllNonNumericYieldsEmptyBehavior(t *testing.T) {
	root := value.NewObject().Set("xs", value.NewArray([]*value.Value{
		value.NewString("a"), value.NewString("b"),
	})).Build()
	assert.Equal(t, float64(0), run(t, ".xs:sum", root).Number())
	assert.Equal(t, value.Null, run(t, ".xs:avg", root).Kind())
	assert.Equal(t, value.Null, run(t, ".xs:min", root).Kind())
	assert.Equal(t, value.Null, run(t, ".xs:max", root).Kind())
}
