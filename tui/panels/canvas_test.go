package panels

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zappabad/candleview/internal/render"
)

func newTestCanvas() *CellCanvas {
	c := NewCellCanvas(8, render.Gray)
	c.Resize(10, 5)
	return c
}

func TestCellCanvasResize(t *testing.T) {
	c := newTestCanvas()
	assert.Len(t, c.cells, 6, "plot rows plus the date row")
	assert.Len(t, c.cells[0], 18, "plot columns plus the gutter")

	c.Resize(-3, 2)
	assert.Len(t, c.cells, 3)
	assert.Len(t, c.cells[0], 8)
}

func TestCellCanvasBodiesAndWicks(t *testing.T) {
	c := newTestCanvas()
	c.FillRect(2, 1, 1, 2, render.Green)
	c.Line(5, 0, 5, 4, render.Red)

	assert.Equal(t, glyphBody, c.Rune(2, 1))
	assert.Equal(t, glyphBody, c.Rune(2, 2))
	assert.Equal(t, glyphEmpty, c.Rune(2, 3))
	for row := 0; row <= 4; row++ {
		assert.Equal(t, glyphWick, c.Rune(5, row))
	}

	// a zero-height body still takes a cell
	c.FillRect(8, 3, 1, 0, render.Red)
	assert.Equal(t, glyphBody, c.Rune(8, 3))

	c.ClearRect(0, 0, 10, 5)
	assert.Equal(t, glyphEmpty, c.Rune(2, 1))
}

func TestCellCanvasGrid(t *testing.T) {
	c := newTestCanvas()
	c.Line(0, 2, 9, 2, render.Gray)
	c.Line(7, 0, 7, 4, render.Gray)

	assert.Equal(t, glyphGridH, c.Rune(3, 2))
	assert.Equal(t, glyphGridV, c.Rune(7, 0))
	assert.Equal(t, glyphGridCross, c.Rune(7, 2))

	// candles drawn later cover the grid
	c.Line(3, 0, 3, 4, render.Green)
	assert.Equal(t, glyphWick, c.Rune(3, 2))
}

func TestCellCanvasLabels(t *testing.T) {
	c := newTestCanvas()

	c.Text(11, 2, "$1.00", render.White)
	assert.Equal(t, '$', c.Rune(11, 2))
	assert.Equal(t, '0', c.Rune(15, 2))

	c.Text(5, 6, "ab", render.White)
	assert.Equal(t, 'a', c.Rune(4, 5))
	assert.Equal(t, 'b', c.Rune(5, 5))

	// overlapping date labels are dropped
	c.Text(6, 6, "cd", render.White)
	assert.Equal(t, 'b', c.Rune(5, 5))
	assert.Equal(t, glyphEmpty, c.Rune(6, 5))
}

func TestCellCanvasString(t *testing.T) {
	c := newTestCanvas()
	c.FillRect(0, 0, 1, 1, render.Green)

	out := c.String()
	assert.Len(t, strings.Split(out, "\n"), 6)
	assert.Contains(t, out, string(glyphBody))
}
