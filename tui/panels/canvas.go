package panels

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zappabad/candleview/internal/render"
)

// Glyphs used by the cell canvas.
const (
	glyphBody      = '┃'
	glyphWick      = '│'
	glyphGridV     = '┊'
	glyphGridH     = '┈'
	glyphGridCross = '┼'
	glyphEmpty     = ' '
)

type cell struct {
	r     rune
	color render.Color
	set   bool
}

// CellCanvas is a render.TextSurface backed by terminal cells: one cell per
// pixel. Tick labels go in a gutter right of the plot and a row below it.
type CellCanvas struct {
	plotW, plotH int
	gutter       int
	grid         render.Color
	cells        [][]cell
}

// NewCellCanvas creates a canvas whose value-label gutter is gutter cells
// wide. Lines drawn in the grid colour use dotted glyphs.
func NewCellCanvas(gutter int, grid render.Color) *CellCanvas {
	return &CellCanvas{gutter: gutter, grid: grid}
}

// Resize reallocates the cell grid for a plot of width x height cells.
func (c *CellCanvas) Resize(width, height float64) {
	w, h := max(0, int(width)), max(0, int(height))
	if w == c.plotW && h == c.plotH && c.cells != nil {
		return
	}
	c.plotW, c.plotH = w, h
	c.cells = make([][]cell, h+1)
	for i := range c.cells {
		c.cells[i] = make([]cell, w+c.gutter)
	}
}

func (c *CellCanvas) put(col, row int, r rune, color render.Color) {
	if row < 0 || row >= len(c.cells) || col < 0 || col >= len(c.cells[row]) {
		return
	}
	c.cells[row][col] = cell{r: r, color: color, set: true}
}

func (c *CellCanvas) at(col, row int) cell {
	if row < 0 || row >= len(c.cells) || col < 0 || col >= len(c.cells[row]) {
		return cell{}
	}
	return c.cells[row][col]
}

// span converts a pixel interval to an inclusive cell interval inside the plot.
func span(from, to float64, limit int) (int, int) {
	a := int(math.Round(from))
	b := int(math.Round(to)) - 1
	if b < a {
		b = a
	}
	return max(0, min(a, limit-1)), max(0, min(b, limit-1))
}

// ClearRect blanks every cell in the rectangle, labels included.
func (c *CellCanvas) ClearRect(x, y, w, h float64) {
	for row := range c.cells {
		for col := range c.cells[row] {
			c.cells[row][col] = cell{}
		}
	}
}

// FillRect paints a candle body.
func (c *CellCanvas) FillRect(x, y, w, h float64, color render.Color) {
	if c.plotW == 0 || c.plotH == 0 {
		return
	}
	c0, c1 := span(x, x+w, c.plotW)
	r0, r1 := span(y, y+h, c.plotH)
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			c.put(col, row, glyphBody, color)
		}
	}
}

// Line draws a horizontal or vertical segment. The renderer draws nothing
// else.
func (c *CellCanvas) Line(x1, y1, x2, y2 float64, color render.Color) {
	if c.plotW == 0 || c.plotH == 0 {
		return
	}
	isGrid := color == c.grid
	col := func(x float64) int { return max(0, min(int(math.Round(x)), c.plotW-1)) }
	row := func(y float64) int { return max(0, min(int(math.Round(y)), c.plotH-1)) }

	switch {
	case x1 == x2:
		cc := col(x1)
		a, b := row(math.Min(y1, y2)), row(math.Max(y1, y2))
		for r := a; r <= b; r++ {
			if isGrid {
				c.gridCell(cc, r, glyphGridV, color)
			} else {
				c.put(cc, r, glyphWick, color)
			}
		}
	case y1 == y2:
		rr := row(y1)
		a, b := col(math.Min(x1, x2)), col(math.Max(x1, x2))
		for x := a; x <= b; x++ {
			if isGrid {
				c.gridCell(x, rr, glyphGridH, color)
			} else {
				c.put(x, rr, '─', color)
			}
		}
	}
}

func (c *CellCanvas) gridCell(col, row int, r rune, color render.Color) {
	switch existing := c.at(col, row); {
	case !existing.set:
		c.put(col, row, r, color)
	case existing.color == c.grid && existing.r != r:
		c.put(col, row, glyphGridCross, color)
	}
}

// Text writes a tick label. Labels right of the plot go in the gutter;
// labels below it go in the date row, centred on x and dropped when they
// would touch an earlier one.
func (c *CellCanvas) Text(x, y float64, s string, color render.Color) {
	runes := []rune(s)
	switch {
	case x > float64(c.plotW):
		row := max(0, min(int(math.Round(y)), c.plotH-1))
		for i, r := range runes {
			if i+1 >= c.gutter {
				break
			}
			c.put(c.plotW+1+i, row, r, color)
		}
	case y > float64(c.plotH):
		start := int(math.Round(x)) - len(runes)/2
		start = max(0, min(start, c.plotW+c.gutter-len(runes)))
		for i := -1; i <= len(runes); i++ {
			if c.at(start+i, c.plotH).set {
				return
			}
		}
		for i, r := range runes {
			c.put(start+i, c.plotH, r, color)
		}
	}
}

// Rune returns the glyph at a cell, for tests and hit checks.
func (c *CellCanvas) Rune(col, row int) rune {
	if cl := c.at(col, row); cl.set {
		return cl.r
	}
	return glyphEmpty
}

// String renders the grid with runs of equal colour styled by lipgloss.
func (c *CellCanvas) String() string {
	var b strings.Builder
	for i, row := range c.cells {
		if i > 0 {
			b.WriteByte('\n')
		}
		var run strings.Builder
		var runColor render.Color
		runSet := false
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if runSet {
				b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(runColor.Hex())).Render(run.String()))
			} else {
				b.WriteString(run.String())
			}
			run.Reset()
		}
		for _, cl := range row {
			if cl.set != runSet || cl.color != runColor {
				flush()
				runSet, runColor = cl.set, cl.color
			}
			if cl.set {
				run.WriteRune(cl.r)
			} else {
				run.WriteRune(glyphEmpty)
			}
		}
		flush()
	}
	return b.String()
}

var _ render.TextSurface = (*CellCanvas)(nil)
