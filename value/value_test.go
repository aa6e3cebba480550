package value

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectInsertionOrderAndLastWins(t *testing.T) {
	b := NewObject()
	b.Set("a", NewNumber(1))
	b.Set("b", NewNumber(2))
	b.Set("a", NewNumber(3)) // overwrite, position preserved

	obj := b.Build()
	require.Equal(t, []string{"a", "b"}, obj.Keys())

	v, ok := obj.Field("a")
	require.True(t, ok)
	assert.Equal(t, float64(3), v.Number())
}

func TestFieldOrNullOnMissingKey(t *testing.T) {
	obj := NewObject().Set("x", NewBool(true)).Build()
	assert.Equal(t, Null, obj.FieldOrNull("missing").Kind())
	assert.True(t, obj.FieldOrNull("x").Bool())
}

func TestIndexNegativeAndOutOfRange(t *testing.T) {
	arr := NewArray([]*Value{NewNumber(10), NewNumber(20), NewNumber(30)})
	assert.Equal(t, float64(30), arr.Index(-1).Number())
	assert.Equal(t, Null, arr.Index(5).Kind())
	assert.Equal(t, Null, arr.Index(-10).Kind())
}

func TestSliceClamping(t *testing.T) {
	arr := NewArray([]*Value{NewNumber(1), NewNumber(2), NewNumber(3)})
	s := arr.Slice(-5, 100)
	require.Equal(t, 3, s.Len())

	empty := arr.Slice(2, 1)
	assert.Equal(t, 0, empty.Len())
}

func TestEqualStructural(t *testing.T) {
	a := NewObject().Set("k", NewNumber(1)).Build()
	b := NewObject().Set("k", NewNumber(1)).Build()
	assert.True(t, Equal(a, b))

	c := NewObject().Set("k", NewNumber(2)).Build()
	assert.False(t, Equal(a, c))

	assert.True(t, Equal(NewNull(), NewNull()))
	assert.False(t, Equal(NewNull(), NewBool(false)))
}

func TestCompareCrossTypeIsIncomparable(t *testing.T) {
	_, ok := Compare(NewNumber(1), NewString("1"))
	assert.False(t, ok)

	c, ok := Compare(NewNumber(1), NewNumber(2))
	require.True(t, ok)
	assert.Equal(t, -1, c)

	c, ok = Compare(NewBool(false), NewBool(true))
	require.True(t, ok)
	assert.Equal(t, -1, c)
}

func TestCanonicalKeyFormatsIntegersWithoutDecimal(t *testing.T) {
	assert.Equal(t, "3", CanonicalKey(NewNumber(3)))
	assert.Equal(t, "3.5", CanonicalKey(NewNumber(3.5)))
	assert.Equal(t, "true", CanonicalKey(NewBool(true)))
	assert.Equal(t, "null", CanonicalKey(NewNull()))
}

func TestDecodeJSONPreservesKeyOrderAndLastWins(t *testing.T) {
	v, err := DecodeJSON(strings.NewReader(`{"z": 1, "a": 2, "z": 3}`))
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"z", "a"}, v.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}
	zv, _ := v.Field("z")
	assert.Equal(t, float64(3), zv.Number())
}

func TestEncodeJSONRoundTrip(t *testing.T) {
	src := `{"name":"Ada","tags":["x","y"],"active":true,"score":null}`
	v, err := DecodeJSON(strings.NewReader(src))
	require.NoError(t, err)

	var buf strings.Builder
	require.NoError(t, EncodeJSON(&buf, v))

	v2, err := DecodeJSON(strings.NewReader(buf.String()))
	require.NoError(t, err)
	assert.True(t, Equal(v, v2))
}
