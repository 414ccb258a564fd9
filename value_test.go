package rayforce

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueScalars(t *testing.T) {
	v := NewInt(42)
	assert.Equal(t, KindInt, v.Kind())
	n, err := v.AsInt()
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)

	f := NewFloat(3.5)
	x, err := f.AsFloat()
	require.NoError(t, err)
	assert.Equal(t, 3.5, x)

	s := NewString("hello")
	str, err := s.AsString()
	require.NoError(t, err)
	assert.Equal(t, "hello", str)

	assert.True(t, NewNull().IsNull())
	assert.False(t, v.IsNull())
}

func TestValueKindMismatch(t *testing.T) {
	_, err := NewInt(1).AsString()
	require.Error(t, err)
	assert.True(t, IsInvalidArgument(err))

	_, err = NewString("x").AsFloat()
	assert.True(t, IsInvalidArgument(err))
}

func TestBytesCopied(t *testing.T) {
	src := []byte{1, 2, 3}
	v := NewBytes(src)
	src[0] = 99

	got, err := v.AsBytes()
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got)

	// Mutating the returned slice must not affect the value either.
	got[1] = 99
	again, err := v.AsBytes()
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, again)
}

func TestAsInt32Overflow(t *testing.T) {
	n, err := NewInt(1 << 20).AsInt32()
	require.NoError(t, err)
	assert.Equal(t, int32(1<<20), n)

	_, err = NewInt(math.MaxInt32 + 1).AsInt32()
	require.Error(t, err)
	assert.True(t, IsInvalidArgument(err))

	_, err = NewInt(math.MinInt32 - 1).AsInt32()
	require.Error(t, err)
	assert.True(t, IsInvalidArgument(err))
}

func TestNewArrayEnforcesElementKind(t *testing.T) {
	arr, err := NewArray(KindInt, NewInt(1), NewInt(2))
	require.NoError(t, err)
	a, err := arr.AsArray()
	require.NoError(t, err)
	assert.Equal(t, 2, a.Len())
	assert.Equal(t, KindInt, a.ElemKind())

	_, err = NewArray(KindInt, NewInt(1), NewString("nope"))
	require.Error(t, err)
	assert.True(t, IsInvalidArgument(err))
}

func TestEmptyArrayKeepsElemKind(t *testing.T) {
	arr, err := NewArray(KindFloat)
	require.NoError(t, err)
	a, err := arr.AsArray()
	require.NoError(t, err)
	assert.Equal(t, 0, a.Len())
	assert.Equal(t, KindFloat, a.ElemKind())
}

func TestNewTableInvariants(t *testing.T) {
	_, err := NewTable([]Column{
		{Name: "a", Kind: KindInt, Values: []Value{NewInt(1)}},
		{Name: "b", Kind: KindInt, Values: []Value{NewInt(1), NewInt(2)}},
	})
	require.Error(t, err)
	assert.True(t, IsInvalidArgument(err))

	_, err = NewTable([]Column{{Name: "", Kind: KindInt}})
	require.Error(t, err)
	assert.True(t, IsInvalidArgument(err))

	_, err = NewTable([]Column{
		{Name: "a", Kind: KindInt, Values: []Value{NewString("x")}},
	})
	require.Error(t, err)
	assert.True(t, IsInvalidArgument(err))
}

func TestEmptyTableKeepsColumns(t *testing.T) {
	v, err := NewTable([]Column{
		{Name: "sym", Kind: KindString},
		{Name: "px", Kind: KindFloat},
	})
	require.NoError(t, err)
	tbl, err := v.AsTable()
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Rows())
	assert.Equal(t, []string{"sym", "px"}, tbl.ColumnNames())
	assert.Equal(t, KindFloat, tbl.Column("px").Kind)
	assert.Nil(t, tbl.Column("missing"))
}

func TestValueEqual(t *testing.T) {
	assert.True(t, NewInt(7).Equal(NewInt(7)))
	assert.False(t, NewInt(7).Equal(NewInt(8)))
	assert.False(t, NewInt(7).Equal(NewFloat(7)))
	assert.True(t, NewNull().Equal(NewNull()))
	assert.True(t, NewBytes([]byte{1, 2}).Equal(NewBytes([]byte{1, 2})))

	a1, err := NewArray(KindInt, NewInt(1))
	require.NoError(t, err)
	a2, err := NewArray(KindInt, NewInt(1))
	require.NoError(t, err)
	assert.True(t, a1.Equal(a2))

	// Zero-length arrays with different declared element kinds differ.
	e1, err := NewArray(KindInt)
	require.NoError(t, err)
	e2, err := NewArray(KindString)
	require.NoError(t, err)
	assert.False(t, e1.Equal(e2))
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "null", NewNull().String())
	assert.Equal(t, "42", NewInt(42).String())
	assert.Equal(t, "1.5", NewFloat(1.5).String())
	assert.Equal(t, `"hi"`, NewString("hi").String())
	assert.Equal(t, "0x0102", NewBytes([]byte{1, 2}).String())

	arr, err := NewArray(KindInt, NewInt(1), NewInt(2))
	require.NoError(t, err)
	assert.Equal(t, "[1 2]", arr.String())
}
