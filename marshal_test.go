package rayforce

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rayforce-db/rayforce-go/pkg/enginecore"
)

func roundTrip(t *testing.T, v Value) Value {
	t.Helper()
	rv, err := toNative(v)
	require.NoError(t, err)
	back, err := fromNative(rv)
	require.NoError(t, err)
	return back
}

func TestMarshalRoundTrip(t *testing.T) {
	arr, err := NewArray(KindInt, NewInt(1), NewInt(2), NewInt(3))
	require.NoError(t, err)
	empty, err := NewArray(KindString)
	require.NoError(t, err)
	tbl, err := NewTable([]Column{
		{Name: "sym", Kind: KindString, Values: []Value{NewString("AAPL"), NewString("MSFT")}},
		{Name: "px", Kind: KindFloat, Values: []Value{NewFloat(189.5), NewFloat(402.75)}},
	})
	require.NoError(t, err)
	emptyTbl, err := NewTable([]Column{
		{Name: "a", Kind: KindInt},
		{Name: "b", Kind: KindBytes},
	})
	require.NoError(t, err)

	for _, v := range []Value{
		NewNull(),
		NewInt(-7),
		NewFloat(2.25),
		NewString(""),
		NewString("hello"),
		NewBytes(nil),
		NewBytes([]byte{0, 1, 2}),
		arr,
		empty,
		tbl,
		emptyTbl,
	} {
		assert.True(t, v.Equal(roundTrip(t, v)), "round trip changed %s", v)
	}
}

func TestMarshalCopiesBuffers(t *testing.T) {
	v := NewString("abc")
	rv, err := toNative(v)
	require.NoError(t, err)
	rv.Bytes[0] = 'X'

	s, err := v.AsString()
	require.NoError(t, err)
	assert.Equal(t, "abc", s)
}

func TestDecodeStringEncodings(t *testing.T) {
	s, err := decodeString(enginecore.RawValue{
		Tag:   enginecore.TagStr,
		Bytes: []byte("plain"),
		Enc:   enginecore.EncLenPrefixed,
	})
	require.NoError(t, err)
	assert.Equal(t, "plain", s)

	s, err = decodeString(enginecore.RawValue{
		Tag:   enginecore.TagStr,
		Bytes: []byte("cstr\x00"),
		Enc:   enginecore.EncNulTerminated,
	})
	require.NoError(t, err)
	assert.Equal(t, "cstr", s)
}

func TestFromNativeBytesEncodings(t *testing.T) {
	// A NUL-terminated bytes buffer loses its delimiter on the way in; the
	// caller never sees a trailing zero byte.
	v, err := fromNative(enginecore.RawValue{
		Tag:   enginecore.TagBytes,
		Bytes: []byte{1, 2, 0},
		Enc:   enginecore.EncNulTerminated,
	})
	require.NoError(t, err)
	b, err := v.AsBytes()
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, b)

	v, err = fromNative(enginecore.RawValue{
		Tag:   enginecore.TagBytes,
		Bytes: []byte{1, 2, 0},
		Enc:   enginecore.EncLenPrefixed,
	})
	require.NoError(t, err)
	b, err = v.AsBytes()
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 0}, b)

	_, err = fromNative(enginecore.RawValue{
		Tag:   enginecore.TagBytes,
		Bytes: []byte{1, 2},
		Enc:   enginecore.EncNulTerminated,
	})
	require.Error(t, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, ErrBindingInternal, e.Kind)
}

func TestDecodeStringMissingNul(t *testing.T) {
	_, err := decodeString(enginecore.RawValue{
		Tag:   enginecore.TagStr,
		Bytes: []byte("no delimiter"),
		Enc:   enginecore.EncNulTerminated,
	})
	require.Error(t, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, ErrBindingInternal, e.Kind)
}

func TestDecodeStringUnknownEncoding(t *testing.T) {
	_, err := decodeString(enginecore.RawValue{
		Tag:   enginecore.TagStr,
		Bytes: []byte("x"),
		Enc:   enginecore.StrEncoding(99),
	})
	require.Error(t, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, ErrBindingInternal, e.Kind)
}

func TestFromNativeRejectsMismatchedTags(t *testing.T) {
	// Vector whose element disagrees with the declared element tag.
	_, err := fromNative(enginecore.RawValue{
		Tag:     enginecore.TagVector,
		ElemTag: enginecore.TagI64,
		Elems:   []enginecore.RawValue{{Tag: enginecore.TagF64, F64: 1}},
	})
	require.Error(t, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, ErrBindingInternal, e.Kind)

	_, err = fromNative(enginecore.RawValue{Tag: enginecore.TypeTag(42)})
	require.ErrorAs(t, err, &e)
	assert.Equal(t, ErrBindingInternal, e.Kind)
}

func TestTableFromNativeRaggedTable(t *testing.T) {
	_, err := tableFromNative(&enginecore.RawTable{Cols: []enginecore.RawColumn{
		{Name: "a", Tag: enginecore.TagI64, Vals: []enginecore.RawValue{{Tag: enginecore.TagI64, I64: 1}}},
		{Name: "b", Tag: enginecore.TagI64},
	}})
	require.Error(t, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, ErrBindingInternal, e.Kind)
}

func TestTableFromNativeUnnamedColumn(t *testing.T) {
	_, err := tableFromNative(&enginecore.RawTable{Cols: []enginecore.RawColumn{
		{Name: "", Tag: enginecore.TagI64},
	}})
	require.Error(t, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, ErrBindingInternal, e.Kind)
}

func TestTableFromNativeEmptyTable(t *testing.T) {
	v, err := tableFromNative(&enginecore.RawTable{Cols: []enginecore.RawColumn{
		{Name: "sym", Tag: enginecore.TagStr},
		{Name: "qty", Tag: enginecore.TagI64},
	}})
	require.NoError(t, err)
	tbl, err := v.AsTable()
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Rows())
	assert.Equal(t, []string{"sym", "qty"}, tbl.ColumnNames())
	assert.Equal(t, KindInt, tbl.Column("qty").Kind)
}

func TestTranslateStatusMapping(t *testing.T) {
	cases := map[enginecore.Status]ErrorKind{
		enginecore.StatusType:   ErrInvalidArgument,
		enginecore.StatusArity:  ErrInvalidArgument,
		enginecore.StatusLength: ErrInvalidArgument,
		enginecore.StatusDomain: ErrInvalidArgument,
		enginecore.StatusIndex:  ErrInvalidArgument,
		enginecore.StatusParse:  ErrInvalidArgument,
		enginecore.StatusValue:  ErrNotFound,
		enginecore.StatusLimit:  ErrResourceExhausted,
		enginecore.StatusNYI:    ErrUnsupported,
		enginecore.StatusOS:     ErrEngineInternal,
		enginecore.StatusUser:   ErrEngineInternal,
	}
	for st, kind := range cases {
		assert.Equal(t, kind, translate(st), "status %s", st)
	}
	assert.True(t, enginecore.StatusLimit.Fatal())
	assert.True(t, enginecore.StatusOS.Fatal())
	assert.False(t, enginecore.StatusParse.Fatal())
}
