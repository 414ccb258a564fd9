package rayforce

import (
	"bytes"
	"fmt"
	"math"
	"strings"
)

// Kind identifies the type of a Value crossing the engine boundary.
type Kind int

const (
	KindNull Kind = iota
	KindInt       // 64-bit signed integer
	KindFloat     // 64-bit float
	KindString    // UTF-8 text
	KindBytes     // raw byte buffer
	KindArray     // homogeneous array with a declared element kind
	KindTable     // named columns of equal length
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindArray:
		return "array"
	case KindTable:
		return "table"
	default:
		return "unknown"
	}
}

// Value is the tagged union for data crossing the boundary in either
// direction: null, integer, float, string, bytes, array-of-Value, or table.
// A Value is immutable once constructed; the zero Value is null.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
	b    []byte
	arr  *Array
	tab  *Table
}

// Array is a homogeneous sequence of values sharing a declared element kind.
// Zero-length arrays keep their element kind.
type Array struct {
	elemKind Kind
	elems    []Value
}

// Column is one named, typed column of a Table.
type Column struct {
	Name   string
	Kind   Kind
	Values []Value
}

// Table is a column-oriented collection of named columns. All columns have
// equal length; a table with named columns and zero rows is a valid state.
type Table struct {
	cols []Column
}

// NewNull returns the null value.
func NewNull() Value { return Value{} }

// NewInt returns an integer value.
func NewInt(v int64) Value { return Value{kind: KindInt, i: v} }

// NewFloat returns a float value.
func NewFloat(v float64) Value { return Value{kind: KindFloat, f: v} }

// NewString returns a string value.
func NewString(v string) Value { return Value{kind: KindString, s: v} }

// NewBytes returns a bytes value. The buffer is copied.
func NewBytes(v []byte) Value {
	b := make([]byte, len(v))
	copy(b, v)
	return Value{kind: KindBytes, b: b}
}

// NewArray returns an array value with the declared element kind. Every
// element must match the declared kind; nulls are not implicitly allowed.
func NewArray(elemKind Kind, elems ...Value) (Value, error) {
	for i, e := range elems {
		if e.kind != elemKind {
			return Value{}, &Error{
				Kind:    ErrInvalidArgument,
				Message: fmt.Sprintf("array element %d is %s, declared %s", i, e.kind, elemKind),
			}
		}
	}
	vals := make([]Value, len(elems))
	copy(vals, elems)
	return Value{kind: KindArray, arr: &Array{elemKind: elemKind, elems: vals}}, nil
}

// NewTable returns a table value. All columns must have equal length and
// every cell must match its column's declared kind.
func NewTable(cols []Column) (Value, error) {
	var rows int
	for i, col := range cols {
		if col.Name == "" {
			return Value{}, &Error{Kind: ErrInvalidArgument, Message: fmt.Sprintf("column %d has no name", i)}
		}
		if i == 0 {
			rows = len(col.Values)
		} else if len(col.Values) != rows {
			return Value{}, &Error{
				Kind:    ErrInvalidArgument,
				Message: fmt.Sprintf("column %q has %d rows, column %q has %d", col.Name, len(col.Values), cols[0].Name, rows),
			}
		}
		for r, v := range col.Values {
			if v.kind != col.Kind {
				return Value{}, &Error{
					Kind:    ErrInvalidArgument,
					Message: fmt.Sprintf("column %q row %d is %s, declared %s", col.Name, r, v.kind, col.Kind),
				}
			}
		}
	}
	copied := make([]Column, len(cols))
	for i, col := range cols {
		vals := make([]Value, len(col.Values))
		copy(vals, col.Values)
		copied[i] = Column{Name: col.Name, Kind: col.Kind, Values: vals}
	}
	return Value{kind: KindTable, tab: &Table{cols: copied}}, nil
}

// Kind returns the value's kind.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsInt returns the value as an integer.
func (v Value) AsInt() (int64, error) {
	if v.kind != KindInt {
		return 0, kindError(KindInt, v.kind)
	}
	return v.i, nil
}

// AsInt32 returns the value as a 32-bit integer. Narrowing that would
// overflow is a reported error, never silent wraparound.
func (v Value) AsInt32() (int32, error) {
	n, err := v.AsInt()
	if err != nil {
		return 0, err
	}
	if n > math.MaxInt32 || n < math.MinInt32 {
		return 0, &Error{Kind: ErrInvalidArgument, Message: fmt.Sprintf("value %d overflows int32", n)}
	}
	return int32(n), nil
}

// AsFloat returns the value as a float.
func (v Value) AsFloat() (float64, error) {
	if v.kind != KindFloat {
		return 0, kindError(KindFloat, v.kind)
	}
	return v.f, nil
}

// AsString returns the value as a string.
func (v Value) AsString() (string, error) {
	if v.kind != KindString {
		return "", kindError(KindString, v.kind)
	}
	return v.s, nil
}

// AsBytes returns the value's byte buffer. The returned slice is a copy.
func (v Value) AsBytes() ([]byte, error) {
	if v.kind != KindBytes {
		return nil, kindError(KindBytes, v.kind)
	}
	b := make([]byte, len(v.b))
	copy(b, v.b)
	return b, nil
}

// AsArray returns the value as an array.
func (v Value) AsArray() (*Array, error) {
	if v.kind != KindArray {
		return nil, kindError(KindArray, v.kind)
	}
	return v.arr, nil
}

// AsTable returns the value as a table.
func (v Value) AsTable() (*Table, error) {
	if v.kind != KindTable {
		return nil, kindError(KindTable, v.kind)
	}
	return v.tab, nil
}

func kindError(want, got Kind) error {
	return &Error{Kind: ErrInvalidArgument, Message: fmt.Sprintf("value is %s, not %s", got, want)}
}

// ElemKind returns the declared element kind of the array.
func (a *Array) ElemKind() Kind { return a.elemKind }

// Len returns the number of elements.
func (a *Array) Len() int { return len(a.elems) }

// At returns the element at index i.
func (a *Array) At(i int) Value { return a.elems[i] }

// Columns returns the table's column metadata and values.
func (t *Table) Columns() []Column { return t.cols }

// ColumnNames returns the column names in declaration order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// Rows returns the number of rows.
func (t *Table) Rows() int {
	if len(t.cols) == 0 {
		return 0
	}
	return len(t.cols[0].Values)
}

// Column returns the named column, or nil if absent.
func (t *Table) Column(name string) *Column {
	for i := range t.cols {
		if t.cols[i].Name == name {
			return &t.cols[i]
		}
	}
	return nil
}

// Equal reports deep equality of two values, including kind tags and, for
// arrays and tables, declared element kinds and column metadata.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindString:
		return v.s == o.s
	case KindBytes:
		return bytes.Equal(v.b, o.b)
	case KindArray:
		if v.arr.elemKind != o.arr.elemKind || len(v.arr.elems) != len(o.arr.elems) {
			return false
		}
		for i := range v.arr.elems {
			if !v.arr.elems[i].Equal(o.arr.elems[i]) {
				return false
			}
		}
		return true
	case KindTable:
		if len(v.tab.cols) != len(o.tab.cols) {
			return false
		}
		for i := range v.tab.cols {
			a, b := v.tab.cols[i], o.tab.cols[i]
			if a.Name != b.Name || a.Kind != b.Kind || len(a.Values) != len(b.Values) {
				return false
			}
			for r := range a.Values {
				if !a.Values[r].Equal(b.Values[r]) {
					return false
				}
			}
		}
		return true
	}
	return false
}

// String renders the value for diagnostics. Tables render as an aligned
// name:kind header plus one line per row.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindFloat:
		return fmt.Sprintf("%g", v.f)
	case KindString:
		return fmt.Sprintf("%q", v.s)
	case KindBytes:
		return fmt.Sprintf("0x%x", v.b)
	case KindArray:
		parts := make([]string, v.arr.Len())
		for i := range v.arr.elems {
			parts[i] = v.arr.elems[i].String()
		}
		return fmt.Sprintf("[%s]", strings.Join(parts, " "))
	case KindTable:
		return v.tab.String()
	}
	return "unknown"
}

// String renders the table header and rows.
func (t *Table) String() string {
	var sb strings.Builder
	header := make([]string, len(t.cols))
	for i, c := range t.cols {
		header[i] = fmt.Sprintf("%s:%s", c.Name, c.Kind)
	}
	sb.WriteString(strings.Join(header, " | "))
	for r := 0; r < t.Rows(); r++ {
		sb.WriteByte('\n')
		cells := make([]string, len(t.cols))
		for i := range t.cols {
			cells[i] = t.cols[i].Values[r].String()
		}
		sb.WriteString(strings.Join(cells, " | "))
	}
	return sb.String()
}
