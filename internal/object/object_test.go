package object

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestTrustMark_RoundTrip(t *testing.T) {
	t.Parallel()

	v := cty.StringVal("payload")
	require.False(t, IsUntrusted(v))

	marked := MarkUntrusted(v)
	assert.True(t, IsUntrusted(marked))
	assert.False(t, IsUntrusted(Unwrap(marked)), "Unwrap must strip the mark")
	require.True(t, v.RawEquals(Unwrap(marked)))
}

func TestPropagateTrust(t *testing.T) {
	t.Parallel()

	src := MarkUntrusted(cty.StringVal("in"))
	dst := cty.StringVal("out")
	assert.True(t, IsUntrusted(PropagateTrust(src, dst)))

	// Identity when the source is trusted.
	clean := PropagateTrust(cty.StringVal("in"), dst)
	assert.False(t, IsUntrusted(clean))
}

func TestReferenceCell_GetSet(t *testing.T) {
	t.Parallel()

	cell := NewReferenceCell(cty.NumberIntVal(1))
	val := ReferenceVal(cell)

	got, ok := AsReference(val)
	require.True(t, ok)
	assert.Same(t, cell, got)

	got.Set(cty.NumberIntVal(2))
	deref, ok := Dereference(val)
	require.True(t, ok)
	require.True(t, cty.NumberIntVal(2).RawEquals(deref), "mutation must be visible through the original value")
}

func TestDereference_PropagatesTrust(t *testing.T) {
	t.Parallel()

	cell := NewReferenceCell(cty.StringVal("inner"))
	marked := MarkUntrusted(ReferenceVal(cell))

	deref, ok := Dereference(marked)
	require.True(t, ok)
	assert.True(t, IsUntrusted(deref))
}

func TestAsReference_NonReference(t *testing.T) {
	t.Parallel()

	_, ok := AsReference(cty.StringVal("nope"))
	assert.False(t, ok)
	_, ok = Dereference(cty.NullVal(RefType))
	assert.False(t, ok)
}

func TestFlag_RoundTrip(t *testing.T) {
	t.Parallel()

	set, ok := FlagIsSet(FlagVal(true))
	require.True(t, ok)
	assert.True(t, set)

	set, ok = FlagIsSet(FlagVal(false))
	require.True(t, ok)
	assert.False(t, set)

	_, ok = FlagIsSet(cty.True)
	assert.False(t, ok, "a plain bool is not a flag value")
}

func TestIsBooleanLike(t *testing.T) {
	t.Parallel()

	assert.True(t, IsBooleanLike(cty.Bool))
	assert.True(t, IsBooleanLike(FlagType))
	assert.False(t, IsBooleanLike(cty.Number))
	assert.False(t, IsBooleanLike(cty.String))
}

func TestAccessorFor_Object(t *testing.T) {
	t.Parallel()

	record := cty.ObjectVal(map[string]cty.Value{
		"name": cty.StringVal("alpha"),
		"size": cty.NumberIntVal(3),
	})
	accessor, ok := AccessorFor(record)
	require.True(t, ok)

	if diff := cmp.Diff([]string{"name", "size"}, accessor.PropertyNames()); diff != "" {
		t.Fatalf("property names mismatch (-want +got):\n%s", diff)
	}

	val, found := accessor.Property("name")
	require.True(t, found)
	require.True(t, cty.StringVal("alpha").RawEquals(val))

	_, found = accessor.Property("missing")
	assert.False(t, found)
}

func TestAccessorFor_PropertiesInheritRecordTrust(t *testing.T) {
	t.Parallel()

	record := MarkUntrusted(cty.ObjectVal(map[string]cty.Value{
		"name": cty.StringVal("alpha"),
	}))
	accessor, ok := AccessorFor(record)
	require.True(t, ok)

	val, found := accessor.Property("name")
	require.True(t, found)
	assert.True(t, IsUntrusted(val))
}

func TestAccessorFor_NonEnumerable(t *testing.T) {
	t.Parallel()

	for _, v := range []cty.Value{
		cty.StringVal("scalar"),
		cty.NumberIntVal(1),
		cty.NullVal(cty.EmptyObject),
		cty.ListVal([]cty.Value{cty.StringVal("a")}),
	} {
		_, ok := AccessorFor(v)
		assert.False(t, ok, "value %#v must not enumerate properties", v)
	}
}
