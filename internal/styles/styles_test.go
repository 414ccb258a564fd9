package styles

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRowCount(t *testing.T) {
	assert.Contains(t, RowCount(0), "(0 rows)")
	assert.Contains(t, RowCount(1), "(1 row)")
	assert.Contains(t, RowCount(2), "(2 rows)")
}

func TestSession(t *testing.T) {
	assert.Contains(t, Session("abc-123"), "[abc-123]")
}

func TestRenderTableAlignsColumns(t *testing.T) {
	out := RenderTable(
		[]string{"sym:string", "n:int"},
		[][]string{
			{`"AAPL"`, "100"},
			{`"B"`, "5"},
		},
	)
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[0], "sym:string")
	assert.Contains(t, lines[1], `"AAPL"`)
	assert.Contains(t, lines[2], `"B"`)
}

func TestRenderTableEmptyRows(t *testing.T) {
	out := RenderTable([]string{"a:int"}, nil)
	assert.Contains(t, out, "a:int")
	assert.NotContains(t, out, "\n")
}
