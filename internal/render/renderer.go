package render

import (
	"fmt"
	"math"
	"sort"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/zappabad/candleview/internal/axis"
	"github.com/zappabad/candleview/internal/ohlc"
	"github.com/zappabad/candleview/internal/series"
)

// ErrNoSurface is returned by Draw when there is nothing to draw onto.
var ErrNoSurface = errors.New("render: no surface")

// Config holds renderer settings.
type Config struct {
	// BodyWidth is the fixed candle body width in pixels.
	BodyWidth float64 `mapstructure:"body_width"`
	// Grid draws a line for every major tick.
	Grid bool `mapstructure:"grid"`
	// Labels prints tick labels when the surface supports text.
	Labels bool `mapstructure:"labels"`
}

// DefaultConfig returns the default renderer settings.
func DefaultConfig() Config {
	return Config{
		BodyWidth: DefaultBodyWidth,
		Grid:      true,
		Labels:    true,
	}
}

// Renderer lays out the visible bars of a store against a pair of axes and
// paints them. It keeps the candle geometry of the last layout pass so that
// single-bar changes can be applied without recomputing everything.
type Renderer struct {
	dates  *axis.DateAxis
	values *axis.CurrencyAxis
	store  *series.Store

	cfg     Config
	palette Palette
	spacing float64

	width, height float64
	candles       []Candle // ordered by date
	passes        int
	// axis revisions the candles were laid out against
	revs [2]uint64

	log logrus.FieldLogger
}

// NewRenderer creates a new Renderer.
func NewRenderer(dates *axis.DateAxis, values *axis.CurrencyAxis, store *series.Store, cfg Config) *Renderer {
	if cfg.BodyWidth <= 0 {
		cfg.BodyWidth = DefaultBodyWidth
	}
	return &Renderer{
		dates:   dates,
		values:  values,
		store:   store,
		cfg:     cfg,
		palette: DefaultPalette(),
		log:     logrus.WithField("component", "renderer"),
	}
}

// SetLogger replaces the renderer's logger.
func (r *Renderer) SetLogger(l logrus.FieldLogger) { r.log = l }

// SetPalette replaces the colours used for subsequent layouts.
func (r *Renderer) SetPalette(p Palette) { r.palette = p }

// Palette returns the current colours.
func (r *Renderer) Palette() Palette { return r.palette }

// SetBarSpacing sets the minimum gap between neighbouring bodies. Zero keeps
// the fixed body width.
func (r *Renderer) SetBarSpacing(px float64) { r.spacing = math.Max(0, px) }

// BarSpacing returns the minimum gap between neighbouring bodies.
func (r *Renderer) BarSpacing() float64 { return r.spacing }

// Size returns the plot area of the last layout pass.
func (r *Renderer) Size() (width, height float64) { return r.width, r.height }

// Candles returns a copy of the current render buffer.
func (r *Renderer) Candles() []Candle {
	out := make([]Candle, len(r.candles))
	copy(out, r.candles)
	return out
}

// Passes returns the number of full layout passes performed.
func (r *Renderer) Passes() int { return r.passes }

// BodyWidth returns the body width after bar spacing is applied.
func (r *Renderer) BodyWidth() float64 {
	w := r.cfg.BodyWidth
	if r.spacing <= 0 {
		return w
	}
	days := float64(r.dates.Bounds().Span())
	if days < 1 {
		return w
	}
	slot := r.dates.Length() / days
	return math.Max(1, math.Min(w, slot-r.spacing))
}

// Layout sizes the axes to the plot area and rebuilds the geometry of every
// bar inside the visible date range.
func (r *Renderer) Layout(width, height float64) {
	r.width, r.height = math.Max(0, width), math.Max(0, height)
	r.dates.SetLength(r.width)
	r.values.SetLength(r.height)

	visible := r.store.Between(r.dates.Bounds())
	bw := r.BodyWidth()

	r.candles = r.candles[:0]
	for _, b := range visible {
		r.candles = append(r.candles, candleFor(b, r.dates, r.values, bw, r.palette))
	}
	r.passes++
	r.revs = r.revisions()
	r.log.Debugf("layout %gx%g: %d candles", r.width, r.height, len(r.candles))
}

func (r *Renderer) revisions() [2]uint64 {
	return [2]uint64{r.dates.Revision(), r.values.Revision()}
}

// Stale reports whether either axis changed since the last layout pass.
func (r *Renderer) Stale() bool { return r.revs != r.revisions() }

func (r *Renderer) find(d ohlc.Date) (int, bool) {
	i := sort.Search(len(r.candles), func(i int) bool { return r.candles[i].Date >= d })
	return i, i < len(r.candles) && r.candles[i].Date == d
}

// ItemAdded lays out a single new bar. Bars outside the visible range are
// ignored.
func (r *Renderer) ItemAdded(b ohlc.Bar) {
	if !r.dates.Contains(b.Date) {
		r.ItemRemoved(b.Date)
		return
	}
	c := candleFor(b, r.dates, r.values, r.BodyWidth(), r.palette)
	i, found := r.find(b.Date)
	if found {
		r.candles[i] = c
		return
	}
	r.candles = append(r.candles, Candle{})
	copy(r.candles[i+1:], r.candles[i:])
	r.candles[i] = c
}

// ItemChanged recomputes the geometry of a bar whose values were replaced.
func (r *Renderer) ItemChanged(b ohlc.Bar) { r.ItemAdded(b) }

// ItemRemoved drops the geometry of the bar at d.
func (r *Renderer) ItemRemoved(d ohlc.Date) {
	if i, found := r.find(d); found {
		r.candles = append(r.candles[:i], r.candles[i+1:]...)
	}
}

// Draw repaints the whole plot area onto s, laying the bars out again first
// when an axis changed behind the renderer's back. A missing surface or a
// panic raised by it skips the frame; the error is logged and returned.
func (r *Renderer) Draw(s Surface) error {
	if err := r.draw(s); err != nil {
		r.log.WithError(err).Warn("frame skipped")
		return err
	}
	return nil
}

func (r *Renderer) draw(s Surface) (err error) {
	if s == nil {
		return ErrNoSurface
	}
	if r.Stale() {
		r.log.Debug("axes moved since layout")
		r.Layout(r.width, r.height)
	}
	defer func() {
		if p := recover(); p != nil {
			err = errors.Errorf("render: surface panic: %v", p)
		}
	}()

	s.Resize(r.width, r.height)
	s.ClearRect(0, 0, r.width, r.height)

	if r.cfg.Grid {
		r.drawGrid(s)
	}
	if ts, ok := s.(TextSurface); ok && r.cfg.Labels {
		r.drawLabels(ts)
	}
	for _, c := range r.candles {
		x, y1, y2 := c.UpperWick()
		s.Line(x, y1, x, y2, c.Color)
		x, y1, y2 = c.LowerWick()
		s.Line(x, y1, x, y2, c.Color)
		// a doji still gets a visible body
		s.FillRect(c.BodyX, c.BodyTop, c.Width, math.Max(1, c.Height), c.Color)
	}
	return nil
}

func (r *Renderer) drawGrid(s Surface) {
	for _, d := range r.dates.TickValues() {
		x := r.dates.DisplayPosition(d)
		s.Line(x, 0, x, r.height, r.palette.Grid)
	}
	for _, v := range r.values.TickValues() {
		y := r.values.DisplayPosition(v)
		s.Line(0, y, r.width, y, r.palette.Grid)
	}
}

// drawLabels prints value labels right of the plot and date labels below it.
func (r *Renderer) drawLabels(s TextSurface) {
	for _, v := range r.values.TickValues() {
		s.Text(r.width+1, r.values.DisplayPosition(v), r.values.TickLabel(v), r.palette.Label)
	}
	for _, d := range r.dates.TickValues() {
		s.Text(r.dates.DisplayPosition(d), r.height+1, r.dates.TickLabel(d), r.palette.Label)
	}
}

func (r *Renderer) String() string {
	return fmt.Sprintf("Renderer{%gx%g candles=%d}", r.width, r.height, len(r.candles))
}
