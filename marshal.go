package rayforce

import (
	"bytes"
	"fmt"

	"github.com/rayforce-db/rayforce-go/pkg/enginecore"
)

// The marshaller converts between host Values and the raw descriptors of the
// engine ABI. Conversions are strict in both directions: an unexpected tag,
// encoding or shape is surfaced as ErrBindingInternal, never coerced, so a
// binding/engine version mismatch is visible instead of producing corrupted
// data. Buffers are copied at the boundary in both directions; the engine
// owns everything it returned until the matching free entry point runs.

func kindToTag(k Kind) (enginecore.TypeTag, bool) {
	switch k {
	case KindNull:
		return enginecore.TagNull, true
	case KindInt:
		return enginecore.TagI64, true
	case KindFloat:
		return enginecore.TagF64, true
	case KindString:
		return enginecore.TagStr, true
	case KindBytes:
		return enginecore.TagBytes, true
	case KindArray:
		return enginecore.TagVector, true
	case KindTable:
		return enginecore.TagTable, true
	}
	return enginecore.TagNull, false
}

func tagToKind(t enginecore.TypeTag) (Kind, bool) {
	switch t {
	case enginecore.TagNull:
		return KindNull, true
	case enginecore.TagI64:
		return KindInt, true
	case enginecore.TagF64:
		return KindFloat, true
	case enginecore.TagStr:
		return KindString, true
	case enginecore.TagBytes:
		return KindBytes, true
	case enginecore.TagVector:
		return KindArray, true
	case enginecore.TagTable:
		return KindTable, true
	}
	return KindNull, false
}

func bindingErr(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrBindingInternal, Message: fmt.Sprintf(format, args...)}
}

// toNative serializes a host value into a freshly allocated descriptor.
// Descriptors are never cached or reused across calls.
func toNative(v Value) (enginecore.RawValue, error) {
	switch v.kind {
	case KindNull:
		return enginecore.RawValue{Tag: enginecore.TagNull}, nil
	case KindInt:
		return enginecore.RawValue{Tag: enginecore.TagI64, I64: v.i}, nil
	case KindFloat:
		return enginecore.RawValue{Tag: enginecore.TagF64, F64: v.f}, nil
	case KindString:
		b := make([]byte, len(v.s))
		copy(b, v.s)
		return enginecore.RawValue{Tag: enginecore.TagStr, Bytes: b, Enc: enginecore.EncLenPrefixed}, nil
	case KindBytes:
		b := make([]byte, len(v.b))
		copy(b, v.b)
		return enginecore.RawValue{Tag: enginecore.TagBytes, Bytes: b}, nil
	case KindArray:
		elemTag, ok := kindToTag(v.arr.elemKind)
		if !ok {
			return enginecore.RawValue{}, bindingErr("array element kind %s has no native tag", v.arr.elemKind)
		}
		elems := make([]enginecore.RawValue, len(v.arr.elems))
		for i, e := range v.arr.elems {
			rv, err := toNative(e)
			if err != nil {
				return enginecore.RawValue{}, err
			}
			elems[i] = rv
		}
		return enginecore.RawValue{Tag: enginecore.TagVector, ElemTag: elemTag, Elems: elems}, nil
	case KindTable:
		rt, err := tableToNative(v.tab)
		if err != nil {
			return enginecore.RawValue{}, err
		}
		return enginecore.RawValue{Tag: enginecore.TagTable, Table: rt}, nil
	}
	return enginecore.RawValue{}, bindingErr("value kind %d has no native representation", v.kind)
}

func tableToNative(t *Table) (*enginecore.RawTable, error) {
	rt := &enginecore.RawTable{Cols: make([]enginecore.RawColumn, len(t.cols))}
	for i, col := range t.cols {
		tag, ok := kindToTag(col.Kind)
		if !ok {
			return nil, bindingErr("column %q kind %s has no native tag", col.Name, col.Kind)
		}
		vals := make([]enginecore.RawValue, len(col.Values))
		for r, cv := range col.Values {
			rv, err := toNative(cv)
			if err != nil {
				return nil, err
			}
			vals[r] = rv
		}
		rt.Cols[i] = enginecore.RawColumn{Name: col.Name, Tag: tag, Vals: vals}
	}
	return rt, nil
}

// decodeBuffer extracts the payload from a string or bytes descriptor,
// honoring the declared buffer encoding. The NUL delimiter never reaches the
// caller; unrecognized encodings fail fast.
func decodeBuffer(rv enginecore.RawValue) ([]byte, error) {
	switch rv.Enc {
	case enginecore.EncLenPrefixed:
		return rv.Bytes, nil
	case enginecore.EncNulTerminated:
		n := bytes.IndexByte(rv.Bytes, 0)
		if n < 0 {
			return nil, bindingErr("NUL-terminated buffer has no NUL delimiter")
		}
		return rv.Bytes[:n], nil
	}
	return nil, bindingErr("unrecognized buffer encoding %d", rv.Enc)
}

func decodeString(rv enginecore.RawValue) (string, error) {
	b, err := decodeBuffer(rv)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// fromNative converts an engine descriptor into a host value, copying every
// buffer out of engine-owned memory.
func fromNative(rv enginecore.RawValue) (Value, error) {
	switch rv.Tag {
	case enginecore.TagNull:
		return NewNull(), nil
	case enginecore.TagI64:
		return NewInt(rv.I64), nil
	case enginecore.TagF64:
		return NewFloat(rv.F64), nil
	case enginecore.TagStr:
		s, err := decodeString(rv)
		if err != nil {
			return Value{}, err
		}
		return NewString(s), nil
	case enginecore.TagBytes:
		b, err := decodeBuffer(rv)
		if err != nil {
			return Value{}, err
		}
		return NewBytes(b), nil
	case enginecore.TagVector:
		elemKind, ok := tagToKind(rv.ElemTag)
		if !ok {
			return Value{}, bindingErr("unrecognized vector element tag %d", rv.ElemTag)
		}
		elems := make([]Value, len(rv.Elems))
		for i, e := range rv.Elems {
			if e.Tag != rv.ElemTag {
				return Value{}, bindingErr("vector element %d has tag %s, vector declares %s", i, e.Tag, rv.ElemTag)
			}
			v, err := fromNative(e)
			if err != nil {
				return Value{}, err
			}
			elems[i] = v
		}
		arr, err := NewArray(elemKind, elems...)
		if err != nil {
			return Value{}, bindingErr("engine vector violates element kind: %v", err)
		}
		return arr, nil
	case enginecore.TagTable:
		if rv.Table == nil {
			return Value{}, bindingErr("table descriptor has no table payload")
		}
		return tableFromNative(rv.Table)
	}
	return Value{}, bindingErr("unrecognized native tag %d", rv.Tag)
}

// tableFromNative converts an engine result table, enforcing the equal
// column length invariant. Empty tables round-trip with their column names
// and declared kinds intact.
func tableFromNative(rt *enginecore.RawTable) (Value, error) {
	cols := make([]Column, len(rt.Cols))
	rows := -1
	for i, rc := range rt.Cols {
		if rc.Name == "" {
			return Value{}, bindingErr("engine returned column %d with no name", i)
		}
		kind, ok := tagToKind(rc.Tag)
		if !ok {
			return Value{}, bindingErr("column %q has unrecognized tag %d", rc.Name, rc.Tag)
		}
		if rows < 0 {
			rows = len(rc.Vals)
		} else if len(rc.Vals) != rows {
			return Value{}, bindingErr("engine returned ragged table: column %q has %d rows, expected %d", rc.Name, len(rc.Vals), rows)
		}
		vals := make([]Value, len(rc.Vals))
		for r, rv := range rc.Vals {
			if rv.Tag != rc.Tag {
				return Value{}, bindingErr("column %q row %d has tag %s, column declares %s", rc.Name, r, rv.Tag, rc.Tag)
			}
			v, err := fromNative(rv)
			if err != nil {
				return Value{}, err
			}
			vals[r] = v
		}
		cols[i] = Column{Name: rc.Name, Kind: kind, Values: vals}
	}
	v, err := NewTable(cols)
	if err != nil {
		return Value{}, bindingErr("engine table violates shape invariant: %v", err)
	}
	return v, nil
}
