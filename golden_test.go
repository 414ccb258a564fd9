package rayforce

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
)

func TestTableStringGolden(t *testing.T) {
	v, err := NewTable([]Column{
		{Name: "sym", Kind: KindString, Values: []Value{NewString("AAPL"), NewString("MSFT")}},
		{Name: "px", Kind: KindFloat, Values: []Value{NewFloat(189.5), NewFloat(402.75)}},
		{Name: "qty", Kind: KindInt, Values: []Value{NewInt(100), NewInt(25)}},
	})
	require.NoError(t, err)
	tbl, err := v.AsTable()
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "table_string", []byte(tbl.String()))
}

func TestEmptyTableStringGolden(t *testing.T) {
	v, err := NewTable([]Column{
		{Name: "a", Kind: KindInt},
		{Name: "b", Kind: KindBytes},
	})
	require.NoError(t, err)
	tbl, err := v.AsTable()
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "table_string_empty", []byte(tbl.String()))
}
