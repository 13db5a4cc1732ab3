// Package chart ties the axes, the series store, the renderer and the pager
// into one candlestick chart. A Chart is owned by a single goroutine; page
// loads run elsewhere and come back through ApplyPage.
package chart

import (
	"math"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/zappabad/candleview/internal/axis"
	"github.com/zappabad/candleview/internal/interact"
	"github.com/zappabad/candleview/internal/ohlc"
	"github.com/zappabad/candleview/internal/paging"
	"github.com/zappabad/candleview/internal/render"
	"github.com/zappabad/candleview/internal/series"
)

// ErrInvalidControl is returned when a display control is set out of range.
var ErrInvalidControl = errors.New("chart: invalid control value")

// Config holds chart settings.
type Config struct {
	Axis   axis.Config   `mapstructure:"axis"`
	Render render.Config `mapstructure:"render"`
	Paging paging.Config `mapstructure:"paging"`

	// PanPercentage is the share of the visible span a keyboard pan moves.
	PanPercentage float64 `mapstructure:"pan_percentage"`
	// MaxBarSpacing and MaxScale bound the two display controls.
	MaxBarSpacing float64 `mapstructure:"max_bar_spacing"`
	MaxScale      float64 `mapstructure:"max_scale"`
	// VisibleDays is the width of the initial date viewport.
	VisibleDays int `mapstructure:"visible_days"`
}

// DefaultConfig returns the default chart settings.
func DefaultConfig() Config {
	return Config{
		Axis:          axis.DefaultConfig(),
		Render:        render.DefaultConfig(),
		Paging:        paging.DefaultConfig(),
		PanPercentage: 0.1,
		MaxBarSpacing: 20,
		MaxScale:      1000,
		VisibleDays:   24,
	}
}

// Chart is an interactive OHLC candlestick chart.
type Chart struct {
	cfg Config

	dates    *axis.DateAxis
	values   *axis.CurrencyAxis
	store    *series.Store
	renderer *render.Renderer
	pager    *paging.Pager

	barSpacing float64
	scale      float64
	pending    bool

	log logrus.FieldLogger
}

var _ interact.Target = (*Chart)(nil)

// New creates a new Chart. loader may be nil, in which case navigation never
// requests pages.
func New(cfg Config, loader paging.Loader) *Chart {
	def := DefaultConfig()
	if cfg.PanPercentage <= 0 || cfg.PanPercentage > 1 {
		cfg.PanPercentage = def.PanPercentage
	}
	if cfg.MaxBarSpacing <= 0 {
		cfg.MaxBarSpacing = def.MaxBarSpacing
	}
	if cfg.MaxScale <= 0 {
		cfg.MaxScale = def.MaxScale
	}
	if cfg.VisibleDays <= 0 {
		cfg.VisibleDays = def.VisibleDays
	}
	c := &Chart{
		cfg:    cfg,
		dates:  axis.NewDateAxis(cfg.Axis),
		values: axis.NewCurrencyAxis(cfg.Axis),
		store:  series.NewStore(),
		log:    logrus.WithField("component", "chart"),
	}
	c.renderer = render.NewRenderer(c.dates, c.values, c.store, cfg.Render)
	if loader != nil {
		c.pager = paging.NewPager(loader, cfg.Paging)
	}
	return c
}

// SetLogger replaces the logger of the chart and its parts.
func (c *Chart) SetLogger(l logrus.FieldLogger) {
	c.log = l.WithField("component", "chart")
	c.renderer.SetLogger(l.WithField("component", "renderer"))
	if c.pager != nil {
		c.pager.SetLogger(l.WithField("component", "pager"))
	}
}

func (c *Chart) Config() Config                { return c.cfg }
func (c *Chart) DateAxis() *axis.DateAxis      { return c.dates }
func (c *Chart) ValueAxis() *axis.CurrencyAxis { return c.values }
func (c *Chart) Store() *series.Store          { return c.store }
func (c *Chart) Renderer() *render.Renderer    { return c.renderer }
func (c *Chart) Pager() *paging.Pager          { return c.pager }
func (c *Chart) DateBounds() ohlc.DateRange    { return c.dates.Bounds() }
func (c *Chart) ValueBounds() ohlc.ValueRange  { return c.values.Bounds() }
func (c *Chart) BarSpacing() float64           { return c.barSpacing }
func (c *Chart) Scale() float64                { return c.scale }
func (c *Chart) Visible() []ohlc.Bar           { return c.store.Between(c.dates.Bounds()) }

// SetSeries replaces the dataset and fits both axes to it. An empty series
// clears the chart and leaves the axes where they are.
func (c *Chart) SetSeries(bars []ohlc.Bar) error {
	if err := c.store.SetSeries(bars); err != nil {
		return err
	}
	c.autoRange()
	c.relayout()
	return nil
}

// autoRange fits the date axis exactly and the value axis with padding.
// It never requests a page.
func (c *Chart) autoRange() bool {
	dr, ok := c.store.DateBounds()
	if !ok {
		return false
	}
	vr, _ := c.store.ValueBounds()
	dr = c.dates.AutoRange(dr.Lower, dr.Upper)
	vr = c.values.AutoRange(vr.Lower, vr.Upper)
	if err := c.dates.SetBounds(dr.Lower, dr.Upper); err != nil {
		c.log.WithError(err).Warn("auto range dates")
	}
	if err := c.values.SetBounds(vr.Lower, vr.Upper); err != nil {
		c.log.WithError(err).Warn("auto range values")
	}
	return true
}

// ResetView fits both axes to the loaded data.
func (c *Chart) ResetView() {
	if c.autoRange() {
		c.relayout()
	}
}

// AddBar inserts or replaces one bar. The axes grow to include it but never
// shrink; when neither moves only that bar is laid out again.
func (c *Chart) AddBar(b ohlc.Bar) error {
	wasEmpty := c.store.Len() == 0
	replaced, err := c.store.Add(b)
	if err != nil {
		return err
	}
	if wasEmpty {
		c.autoRange()
		c.relayout()
		return nil
	}

	dr := c.dates.Bounds().Extend(b.Date)
	vr := c.values.Bounds().Extend(b.Low).Extend(b.High)
	if dr.Equal(c.dates.Bounds()) && vr.Equal(c.values.Bounds()) {
		if replaced {
			c.renderer.ItemChanged(b)
		} else {
			c.renderer.ItemAdded(b)
		}
		return nil
	}
	if err := c.dates.SetBounds(dr.Lower, dr.Upper); err != nil {
		return err
	}
	if err := c.values.SetBounds(vr.Lower, vr.Upper); err != nil {
		return err
	}
	c.relayout()
	return nil
}

// RemoveBar deletes the bar at d. The axes are left alone.
func (c *Chart) RemoveBar(d ohlc.Date) bool {
	if _, ok := c.store.Remove(d); !ok {
		return false
	}
	c.renderer.ItemRemoved(d)
	return true
}

// BarAt returns the bar under a horizontal pixel offset, if any.
func (c *Chart) BarAt(pixel float64) (ohlc.Bar, bool) {
	return c.store.Get(c.dates.ValueForDisplay(pixel))
}

func (c *Chart) centre() ohlc.Date {
	r := c.dates.Bounds()
	return r.Lower + r.Span()/2
}

// navigated records a user-driven change of the date range.
func (c *Chart) navigated(changed bool) {
	if !changed {
		return
	}
	if c.pager != nil {
		c.pending = true
	}
	c.relayout()
}

// Zoom scales the date range about its centre.
func (c *Chart) Zoom(factor float64) error {
	changed, err := c.dates.Zoom(factor, c.centre())
	if err != nil {
		return err
	}
	c.navigated(changed)
	return nil
}

// ZoomIn applies the configured zoom-in step about the centre.
func (c *Chart) ZoomIn() {
	c.navigated(c.dates.ZoomIn(c.centre()))
}

// ZoomOut applies the configured zoom-out step about the centre.
func (c *Chart) ZoomOut() {
	c.navigated(c.dates.ZoomOut(c.centre()))
}

// ZoomAt scales the date range about the date under pixel.
func (c *Chart) ZoomAt(factor, pixel float64) error {
	changed, err := c.dates.Zoom(factor, c.dates.ValueForDisplay(pixel))
	if err != nil {
		return err
	}
	c.navigated(changed)
	return nil
}

// Pan shifts the date range by percentage of its span.
func (c *Chart) Pan(percentage float64, dir axis.Direction) error {
	changed, err := c.dates.Pan(percentage, dir)
	if err != nil {
		return err
	}
	c.navigated(changed)
	return nil
}

// PanLeft and PanRight move by the configured keyboard step.
func (c *Chart) PanLeft() error  { return c.Pan(c.cfg.PanPercentage, axis.Backward) }
func (c *Chart) PanRight() error { return c.Pan(c.cfg.PanPercentage, axis.Forward) }

// PanPixels converts a horizontal drag into a pan. Dragging right reveals
// earlier dates.
func (c *Chart) PanPixels(dx float64) error {
	length := c.dates.Length()
	if dx == 0 || length <= 0 {
		return nil
	}
	dir := axis.Forward
	if dx > 0 {
		dir = axis.Backward
	}
	return c.Pan(math.Abs(dx)/length, dir)
}

// PanValues shifts the value axis by the keyboard step. It never pages.
func (c *Chart) PanValues(dir axis.Direction) {
	if changed, _ := c.values.Pan(c.cfg.PanPercentage, dir); changed {
		c.relayout()
	}
}

// ZoomValues scales the value axis about its centre. It never pages.
func (c *Chart) ZoomValues(factor float64) error {
	changed, err := c.values.Zoom(factor)
	if err != nil {
		return err
	}
	if changed {
		c.relayout()
	}
	return nil
}

// SetValueRange sets the visible price range. It never pages.
func (c *Chart) SetValueRange(lower, upper float64) error {
	before := c.values.Bounds()
	if err := c.values.SetBounds(lower, upper); err != nil {
		return err
	}
	if !before.Equal(c.values.Bounds()) {
		c.relayout()
	}
	return nil
}

// SetDateRange moves the date viewport.
func (c *Chart) SetDateRange(lower, upper ohlc.Date) error {
	before := c.dates.Bounds()
	if err := c.dates.SetBounds(lower, upper); err != nil {
		return err
	}
	c.navigated(!before.Equal(c.dates.Bounds()))
	return nil
}

// SetBarSpacing sets the minimum pixel gap between candle bodies.
func (c *Chart) SetBarSpacing(px float64) error {
	if math.IsNaN(px) || px < 0 || px > c.cfg.MaxBarSpacing {
		return errors.Wrapf(ErrInvalidControl, "bar spacing %v outside [0, %v]", px, c.cfg.MaxBarSpacing)
	}
	c.barSpacing = px
	c.renderer.SetBarSpacing(px)
	c.relayout()
	return nil
}

// SetScale sets the spacing between value ticks. Zero restores automatic
// ticks.
func (c *Chart) SetScale(unit float64) error {
	if math.IsNaN(unit) || unit < 0 || unit > c.cfg.MaxScale {
		return errors.Wrapf(ErrInvalidControl, "scale %v outside [0, %v]", unit, c.cfg.MaxScale)
	}
	if err := c.values.SetTickUnit(unit); err != nil {
		return errors.Wrap(ErrInvalidControl, err.Error())
	}
	c.scale = unit
	c.relayout()
	return nil
}

// Layout sizes the plot area and recomputes all candle geometry.
func (c *Chart) Layout(width, height float64) { c.renderer.Layout(width, height) }

func (c *Chart) relayout() {
	w, h := c.renderer.Size()
	c.renderer.Layout(w, h)
}

// Draw paints the chart onto s. A failed frame is logged by the renderer
// and reported as false.
func (c *Chart) Draw(s render.Surface) bool {
	return c.renderer.Draw(s) == nil
}
