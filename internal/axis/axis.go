// Package axis maps chart domain values (calendar dates, prices) to pixel
// positions and back, and computes the tick marks drawn along each axis.
package axis

import (
	"math"
	"slices"

	"github.com/zappabad/candleview/internal/ohlc"
)

// Orientation is the screen direction an axis runs in.
type Orientation uint8

const (
	Horizontal Orientation = iota
	Vertical
)

func (o Orientation) String() string {
	switch o {
	case Horizontal:
		return "HORIZONTAL"
	case Vertical:
		return "VERTICAL"
	default:
		return "UNKNOWN"
	}
}

// Direction selects which way a pan moves the visible range.
// Backward moves toward smaller domain values (earlier dates, lower prices).
type Direction int8

const (
	Backward Direction = -1
	Forward  Direction = 1
)

func (d Direction) String() string {
	if d == Backward {
		return "BACKWARD"
	}
	return "FORWARD"
}

// Axis is the capability set shared by the date and currency axes.
type Axis[T ohlc.Bound] interface {
	Bounds() ohlc.Range[T]
	SetBounds(lower, upper T) error
	Length() float64
	SetLength(length float64)
	Orientation() Orientation
	Revision() uint64

	DisplayPosition(v T) float64
	ValueForDisplay(pixel float64) T

	TickValues() []T
	MinorTickValues() []T
	TickLabel(v T) string
	AutoRange(min, max T) ohlc.Range[T]
}

var (
	_ Axis[ohlc.Date] = (*DateAxis)(nil)
	_ Axis[float64]   = (*CurrencyAxis)(nil)
)

// Config holds tick and zoom settings shared by both axes.
type Config struct {
	// TickCount is the number of major ticks spread across the range.
	TickCount int `mapstructure:"tick_count"`
	// MinorTickCount is the number of parts each major interval is split into
	// on the currency axis.
	MinorTickCount int `mapstructure:"minor_tick_count"`
	// MaxTicks bounds the number of major ticks a manual tick unit may produce.
	MaxTicks int `mapstructure:"max_ticks"`
	// ZoomInFactor and ZoomOutFactor are the default zoom steps.
	ZoomInFactor  float64 `mapstructure:"zoom_in_factor"`
	ZoomOutFactor float64 `mapstructure:"zoom_out_factor"`
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		TickCount:      10,
		MinorTickCount: 10,
		MaxTicks:       200,
		ZoomInFactor:   0.9,
		ZoomOutFactor:  1.1,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.TickCount < 2 {
		c.TickCount = def.TickCount
	}
	if c.MinorTickCount < 1 {
		c.MinorTickCount = def.MinorTickCount
	}
	if c.MaxTicks < c.TickCount {
		c.MaxTicks = def.MaxTicks
	}
	if c.ZoomInFactor <= 0 || c.ZoomInFactor >= 1 {
		c.ZoomInFactor = def.ZoomInFactor
	}
	if c.ZoomOutFactor <= 1 {
		c.ZoomOutFactor = def.ZoomOutFactor
	}
	return c
}

// geometry holds the pixel extent shared by both axis kinds.
type geometry struct {
	length      float64
	orientation Orientation
	revision    uint64
}

func (g *geometry) Length() float64          { return g.length }
func (g *geometry) Orientation() Orientation { return g.orientation }

// Revision increases every time the axis range or length changes.
func (g *geometry) Revision() uint64 { return g.revision }

func (g *geometry) SetLength(length float64) {
	if length < 0 || math.IsNaN(length) {
		length = 0
	}
	if length == g.length {
		return
	}
	g.length = length
	g.revision++
}

// position converts a fraction of the range into a clamped pixel offset.
func (g *geometry) position(rel float64) float64 {
	p := rel * g.length
	if p < 0 {
		p = 0
	} else if p > g.length {
		p = g.length
	}
	if g.orientation == Vertical {
		return g.length - p
	}
	return p
}

// fraction is the inverse of position, clamped to [0, 1].
func (g *geometry) fraction(pixel float64) float64 {
	if g.length <= 0 {
		return 0
	}
	if g.orientation == Vertical {
		pixel = g.length - pixel
	}
	rel := pixel / g.length
	if rel < 0 {
		return 0
	}
	if rel > 1 {
		return 1
	}
	return rel
}

type tickKey[T ohlc.Bound] struct {
	bounds ohlc.Range[T]
	length float64
	unit   float64
}

// tickCache keeps the last computed tick set with the key it was computed for.
type tickCache[T ohlc.Bound] struct {
	key          tickKey[T]
	ok           bool
	major, minor []T
	computed     int
}

func (c *tickCache[T]) get(key tickKey[T], compute func() (major, minor []T)) ([]T, []T) {
	if !c.ok || c.key != key {
		c.major, c.minor = compute()
		c.key = key
		c.ok = true
		c.computed++
	}
	return slices.Clone(c.major), slices.Clone(c.minor)
}

func (c *tickCache[T]) invalidate() { c.ok = false }
