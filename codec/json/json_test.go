package json

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhukovaskychina/tidb-codec-core/codec/evalctx"
)

func decodeOwned(t *testing.T, j Json) Ref {
	t.Helper()
	r, err := Decode(Encode(j))
	require.NoError(t, err)
	return r
}

func TestScalarRoundTrip(t *testing.T) {
	cases := []Json{
		FromNull(),
		FromBool(true),
		FromBool(false),
		FromI64(-12345),
		FromU64(98765),
		FromF64(3.5),
		FromString("hello"),
		FromString(""),
	}
	for _, j := range cases {
		r := decodeOwned(t, j)
		assert.Equal(t, j.TypeCode, r.TypeCode)
	}
}

func TestArrayRoundTrip(t *testing.T) {
	arr := FromArray([]Json{FromI64(1), FromString("two"), FromBool(true), FromNull()})
	r := decodeOwned(t, arr)
	count, err := r.GetElemCount()
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	e0, err := r.ArrayElem(0)
	require.NoError(t, err)
	v0, err := e0.GetI64()
	require.NoError(t, err)
	assert.Equal(t, int64(1), v0)

	e1, err := r.ArrayElem(1)
	require.NoError(t, err)
	s1, err := e1.GetStringBytes()
	require.NoError(t, err)
	assert.Equal(t, "two", string(s1))

	e3, err := r.ArrayElem(3)
	require.NoError(t, err)
	assert.True(t, e3.IsNull())
}

func TestEmptyArrayAndObject(t *testing.T) {
	arr := decodeOwned(t, FromArray(nil))
	count, err := arr.GetElemCount()
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	obj, err := FromObject(nil)
	require.NoError(t, err)
	or := decodeOwned(t, obj)
	count, err = or.GetElemCount()
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestObjectSortedKeysAndLookup(t *testing.T) {
	obj, err := FromObject([]KV{
		{Key: "zz", Value: FromI64(1)},
		{Key: "a", Value: FromI64(2)},
		{Key: "bb", Value: FromI64(3)},
	})
	require.NoError(t, err)
	r := decodeOwned(t, obj)

	keys, err := Keys(r)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "bb", "zz"}, keys)

	v, ok, err := r.ObjectLookup("bb")
	require.NoError(t, err)
	require.True(t, ok)
	got, err := v.GetI64()
	require.NoError(t, err)
	assert.Equal(t, int64(3), got)

	_, ok, err = r.ObjectLookup("missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestObjectDuplicateKeyRejected(t *testing.T) {
	_, err := FromObject([]KV{
		{Key: "a", Value: FromI64(1)},
		{Key: "a", Value: FromI64(2)},
	})
	assert.Error(t, err)
}

func TestDepth(t *testing.T) {
	scalar := decodeOwned(t, FromI64(1))
	d, err := Depth(scalar)
	require.NoError(t, err)
	assert.Equal(t, 1, d)

	empty := decodeOwned(t, FromArray(nil))
	d, err = Depth(empty)
	require.NoError(t, err)
	assert.Equal(t, 1, d)

	nested := decodeOwned(t, FromArray([]Json{FromArray([]Json{FromI64(1)})}))
	d, err = Depth(nested)
	require.NoError(t, err)
	assert.Equal(t, 3, d)
}

func TestDepthDeeplyNested(t *testing.T) {
	const levels = 100
	j := FromI64(1)
	for i := 0; i < levels-1; i++ {
		j = FromArray([]Json{j})
	}
	deep := decodeOwned(t, j)
	d, err := Depth(deep)
	require.NoError(t, err)
	assert.Equal(t, levels, d)
}

func TestPathExtract(t *testing.T) {
	inner, err := FromObject([]KV{{Key: "b", Value: FromI64(42)}})
	require.NoError(t, err)
	obj, err := FromObject([]KV{
		{Key: "a", Value: inner},
		{Key: "arr", Value: FromArray([]Json{FromI64(1), FromI64(2), FromI64(3)})},
	})
	require.NoError(t, err)
	r := decodeOwned(t, obj)

	p, err := ParsePath("$.a.b")
	require.NoError(t, err)
	matches, err := Extract(r, p)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	v, err := matches[0].GetI64()
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)

	p2, err := ParsePath("$.arr[1]")
	require.NoError(t, err)
	matches, err = Extract(r, p2)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	v, err = matches[0].GetI64()
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	p3, err := ParsePath("$.arr[*]")
	require.NoError(t, err)
	matches, err = Extract(r, p3)
	require.NoError(t, err)
	assert.Len(t, matches, 3)

	p4, err := ParsePath("$**.b")
	require.NoError(t, err)
	matches, err = Extract(r, p4)
	require.NoError(t, err)
	require.Len(t, matches, 1)
}

func TestMergePreserveObjects(t *testing.T) {
	a, err := FromObject([]KV{{Key: "x", Value: FromI64(1)}})
	require.NoError(t, err)
	b, err := FromObject([]KV{{Key: "x", Value: FromI64(2)}, {Key: "y", Value: FromI64(3)}})
	require.NoError(t, err)

	merged, err := Merge([]Json{a, b})
	require.NoError(t, err)
	r := decodeOwned(t, merged)
	assert.Equal(t, TypeObject, r.TypeCode)

	xv, ok, err := r.ObjectLookup("x")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, TypeArray, xv.TypeCode) // conflicting scalar keys merge into an array

	_, ok, err = r.ObjectLookup("y")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMergeSelfCollectsCollidingValues(t *testing.T) {
	a, err := FromObject([]KV{{Key: "x", Value: FromI64(1)}})
	require.NoError(t, err)
	merged, err := Merge([]Json{a, a})
	require.NoError(t, err)
	r1 := decodeOwned(t, merged)
	want, err := FromObject([]KV{{Key: "x", Value: FromArray([]Json{FromI64(1), FromI64(1)})}})
	require.NoError(t, err)
	r0 := decodeOwned(t, want)
	c, err := Compare(r0, r1)
	require.NoError(t, err)
	assert.Equal(t, 0, c, "merging an object with itself collects each colliding value into an array")
}

func TestMergeArraysConcatenate(t *testing.T) {
	a := FromArray([]Json{FromI64(1)})
	b := FromArray([]Json{FromI64(2)})
	merged, err := Merge([]Json{a, b})
	require.NoError(t, err)
	r := decodeOwned(t, merged)
	count, err := r.GetElemCount()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestJSONObjectBuilderScenario(t *testing.T) {
	nested, err := JSONObject("3", int64(4))
	require.NoError(t, err)
	obj, err := JSONObject(
		"1", "sdf",
		"asd", "qwe",
		"2", nested,
	)
	require.NoError(t, err)
	r := decodeOwned(t, obj)
	keys, err := Keys(r)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"1", "asd", "2"}, keys)
}

func TestJSONObjectOddArityRejected(t *testing.T) {
	_, err := JSONObject("1", "sdf", "asd")
	assert.Error(t, err)
}

func TestJSONArrayBuilder(t *testing.T) {
	arr, err := JSONArray(int64(1), "two", true, nil)
	require.NoError(t, err)
	r := decodeOwned(t, arr)
	count, err := r.GetElemCount()
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestConvertToF64TruncationIgnored(t *testing.T) {
	ctx := evalctx.New()
	ctx.Flags |= evalctx.FlagIgnoreTruncate
	obj, err := FromObject(nil)
	require.NoError(t, err)
	r := decodeOwned(t, obj)
	f, err := ConvertToF64(ctx, r)
	require.NoError(t, err)
	assert.Equal(t, float64(0), f)
	assert.Equal(t, 1, ctx.Warnings.WarningCount())
}

func TestConvertToF64TruncationStrict(t *testing.T) {
	ctx := evalctx.New()
	ctx.SQLMode |= evalctx.ModeStrictAllTables
	obj, err := FromObject(nil)
	require.NoError(t, err)
	r := decodeOwned(t, obj)
	_, err = ConvertToF64(ctx, r)
	assert.Error(t, err)
}

func TestAsMySQLBoolAlwaysFalse(t *testing.T) {
	r := decodeOwned(t, FromBool(true))
	assert.False(t, r.AsMySQLBool())
}

func TestContainsAndMemberOf(t *testing.T) {
	haystack, err := FromObject([]KV{{Key: "a", Value: FromI64(1)}, {Key: "b", Value: FromI64(2)}})
	require.NoError(t, err)
	target, err := FromObject([]KV{{Key: "a", Value: FromI64(1)}})
	require.NoError(t, err)
	ok, err := Contains(decodeOwned(t, haystack), decodeOwned(t, target))
	require.NoError(t, err)
	assert.True(t, ok)

	arr := decodeOwned(t, FromArray([]Json{FromI64(1), FromI64(2), FromI64(3)}))
	member, err := MemberOf(decodeOwned(t, FromI64(2)), arr)
	require.NoError(t, err)
	assert.True(t, member)
}

func TestCompareTypeOrdering(t *testing.T) {
	null := decodeOwned(t, FromNull())
	num := decodeOwned(t, FromI64(1))
	str := decodeOwned(t, FromString("a"))
	c, err := Compare(null, num)
	require.NoError(t, err)
	assert.Equal(t, -1, c)

	c, err = Compare(num, str)
	require.NoError(t, err)
	assert.Equal(t, -1, c)
}

func TestRemoveKey(t *testing.T) {
	obj, err := FromObject([]KV{{Key: "a", Value: FromI64(1)}, {Key: "b", Value: FromI64(2)}})
	require.NoError(t, err)
	p, err := ParsePath("$.a")
	require.NoError(t, err)
	out, err := Remove(obj, p)
	require.NoError(t, err)
	r := decodeOwned(t, out)
	_, ok, err := r.ObjectLookup("a")
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = r.ObjectLookup("b")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestModifySetInsertReplace(t *testing.T) {
	obj, err := FromObject([]KV{{Key: "a", Value: FromI64(1)}})
	require.NoError(t, err)
	pa, err := ParsePath("$.a")
	require.NoError(t, err)
	pb, err := ParsePath("$.b")
	require.NoError(t, err)

	out, err := Modify(obj, []PathExpression{pa}, []Json{FromI64(99)}, []ModifyKind{ModifyInsert})
	require.NoError(t, err)
	r := decodeOwned(t, out)
	v, ok, err := r.ObjectLookup("a")
	require.NoError(t, err)
	require.True(t, ok)
	got, err := v.GetI64()
	require.NoError(t, err)
	assert.Equal(t, int64(1), got, "insert must not overwrite an existing key")

	out, err = Modify(obj, []PathExpression{pb}, []Json{FromI64(7)}, []ModifyKind{ModifyInsert})
	require.NoError(t, err)
	r = decodeOwned(t, out)
	v, ok, err = r.ObjectLookup("b")
	require.NoError(t, err)
	require.True(t, ok)
	got, err = v.GetI64()
	require.NoError(t, err)
	assert.Equal(t, int64(7), got)

	out, err = Modify(obj, []PathExpression{pb}, []Json{FromI64(7)}, []ModifyKind{ModifyReplace})
	require.NoError(t, err)
	r = decodeOwned(t, out)
	_, ok, err = r.ObjectLookup("b")
	require.NoError(t, err)
	assert.False(t, ok, "replace on a missing key must be a no-op")
}

func TestUnquote(t *testing.T) {
	s, err := Unquote(decodeOwned(t, FromString(`hello\nworld`)))
	require.NoError(t, err)
	assert.Equal(t, "hello\nworld", s)
}
