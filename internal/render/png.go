package render

import (
	"io"
	"math"

	"github.com/pkg/errors"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// PNGSurface paints onto a go-chart raster renderer. The image is larger
// than the plot area by Margin pixels on the right and bottom so that tick
// labels have room.
type PNGSurface struct {
	r       chart.Renderer
	width   int
	height  int
	margin  int
	bg      Color
	plotW   float64
	plotH   float64
	hasFont bool
}

// NewPNGSurface allocates an image of width x height pixels. margin pixels
// on the right and bottom edges are reserved for labels.
func NewPNGSurface(width, height, margin int, bg Color) (*PNGSurface, error) {
	if width <= margin || height <= margin {
		return nil, errors.Errorf("png surface %dx%d too small for margin %d", width, height, margin)
	}
	r, err := chart.PNG(width, height)
	if err != nil {
		return nil, errors.Wrap(err, "create png renderer")
	}
	s := &PNGSurface{
		r:      r,
		width:  width,
		height: height,
		margin: margin,
		bg:     bg,
		plotW:  float64(width - margin),
		plotH:  float64(height - margin),
	}
	if font, err := chart.GetDefaultFont(); err == nil {
		r.SetFont(font)
		r.SetFontSize(8)
		s.hasFont = true
	}
	s.rect(0, 0, float64(width), float64(height), bg)
	return s, nil
}

// PlotSize returns the plot area available to the renderer.
func (s *PNGSurface) PlotSize() (width, height float64) { return s.plotW, s.plotH }

func toDrawing(c Color) drawing.Color { return drawing.Color{R: c.R, G: c.G, B: c.B, A: 255} }

func px(v float64) int { return int(math.Round(v)) }

func (s *PNGSurface) rect(x, y, w, h float64, c Color) {
	if w <= 0 || h <= 0 {
		return
	}
	col := toDrawing(c)
	s.r.SetFillColor(col)
	s.r.SetStrokeColor(col)
	s.r.SetStrokeWidth(0)
	s.r.MoveTo(px(x), px(y))
	s.r.LineTo(px(x+w), px(y))
	s.r.LineTo(px(x+w), px(y+h))
	s.r.LineTo(px(x), px(y+h))
	s.r.Close()
	s.r.Fill()
}

// Resize clamps the plot area to the image. The underlying raster cannot grow.
func (s *PNGSurface) Resize(width, height float64) {
	s.plotW = math.Min(width, float64(s.width))
	s.plotH = math.Min(height, float64(s.height))
}

// ClearRect paints the rectangle with the background colour.
func (s *PNGSurface) ClearRect(x, y, w, h float64) { s.rect(x, y, w, h, s.bg) }

// FillRect paints a solid rectangle.
func (s *PNGSurface) FillRect(x, y, w, h float64, c Color) { s.rect(x, y, w, h, c) }

// Line strokes a one pixel line.
func (s *PNGSurface) Line(x1, y1, x2, y2 float64, c Color) {
	s.r.SetStrokeColor(toDrawing(c))
	s.r.SetStrokeWidth(1)
	s.r.MoveTo(px(x1), px(y1))
	s.r.LineTo(px(x2), px(y2))
	s.r.Stroke()
}

// Text prints a label with its top-left corner at (x, y).
func (s *PNGSurface) Text(x, y float64, text string, c Color) {
	if !s.hasFont {
		return
	}
	s.r.SetFontColor(toDrawing(c))
	box := s.r.MeasureText(text)
	tx, ty := px(x)+2, px(y)+box.Height()/2
	if y > s.plotH {
		// date labels are centred under their tick
		tx, ty = px(x)-box.Width()/2, px(y)+box.Height()+2
	}
	s.r.Text(text, tx, ty)
}

// Save encodes the image as PNG.
func (s *PNGSurface) Save(w io.Writer) error {
	return errors.Wrap(s.r.Save(w), "encode png")
}

var _ TextSurface = (*PNGSurface)(nil)
