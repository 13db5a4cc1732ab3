package render

import "fmt"

// Color is an opaque RGB colour.
type Color struct {
	R, G, B uint8
}

// Hex returns the colour as #rrggbb.
func (c Color) Hex() string { return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B) }

// Named colours used by the default palette.
var (
	Green    = Color{R: 0x10, G: 0xB9, B: 0x81}
	Red      = Color{R: 0xEF, G: 0x44, B: 0x44}
	Gray     = Color{R: 0x37, G: 0x41, B: 0x51}
	Muted    = Color{R: 0x6B, G: 0x72, B: 0x80}
	Black    = Color{R: 0x11, G: 0x18, B: 0x27}
	White    = Color{R: 0xF9, G: 0xFA, B: 0xFB}
	Charcoal = Color{R: 0x1F, G: 0x29, B: 0x37}
)

// Palette holds the colours the renderer draws with.
type Palette struct {
	Background Color
	Bullish    Color
	Bearish    Color
	Grid       Color
	Label      Color
}

// DefaultPalette returns the dark theme used by the terminal UI.
func DefaultPalette() Palette {
	return Palette{
		Background: Black,
		Bullish:    Green,
		Bearish:    Red,
		Grid:       Gray,
		Label:      Muted,
	}
}

// Surface is an immediate-mode 2D drawing target.
type Surface interface {
	// Resize makes the drawable area match the plot area.
	Resize(width, height float64)
	ClearRect(x, y, w, h float64)
	FillRect(x, y, w, h float64, c Color)
	Line(x1, y1, x2, y2 float64, c Color)
}

// TextSurface is a Surface that can also print tick labels.
type TextSurface interface {
	Surface
	Text(x, y float64, s string, c Color)
}
