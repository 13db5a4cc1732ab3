package axis

import (
	"math"

	"github.com/pkg/errors"
	"github.com/zappabad/candleview/internal/ohlc"
)

// tickEpsilon absorbs floating point drift when stepping across a range.
const tickEpsilon = 1e-9

// CurrencyAxis maps prices onto a pixel span. It is vertical by default, so
// higher prices sit closer to the top of the plot.
type CurrencyAxis struct {
	geometry

	bounds   ohlc.ValueRange
	cfg      Config
	tickUnit float64
	ticks    tickCache[float64]
}

// NewCurrencyAxis creates a vertical CurrencyAxis over [0, 100].
func NewCurrencyAxis(cfg Config) *CurrencyAxis {
	return &CurrencyAxis{
		geometry: geometry{length: 100, orientation: Vertical},
		bounds:   ohlc.NewRange(0.0, 100.0),
		cfg:      cfg.withDefaults(),
	}
}

// SetOrientation switches the axis between horizontal and vertical layout.
func (a *CurrencyAxis) SetOrientation(o Orientation) {
	if a.orientation != o {
		a.orientation = o
		a.revision++
	}
}

func (a *CurrencyAxis) Bounds() ohlc.ValueRange { return a.bounds }
func (a *CurrencyAxis) Lower() float64          { return a.bounds.Lower }
func (a *CurrencyAxis) Upper() float64          { return a.bounds.Upper }

// SetBounds replaces the visible price range.
func (a *CurrencyAxis) SetBounds(lower, upper float64) error {
	r, err := ohlc.CheckedRange(lower, upper)
	if err != nil {
		return err
	}
	a.setRange(r)
	return nil
}

func (a *CurrencyAxis) setRange(r ohlc.ValueRange) bool {
	if r.Equal(a.bounds) {
		return false
	}
	a.bounds = r
	a.ticks.invalidate()
	a.revision++
	return true
}

// TickUnit returns the manual tick spacing, or 0 when ticks are automatic.
func (a *CurrencyAxis) TickUnit() float64 { return a.tickUnit }

// SetTickUnit sets a manual spacing between major ticks. Zero restores the
// automatic spacing.
func (a *CurrencyAxis) SetTickUnit(unit float64) error {
	if unit < 0 || math.IsNaN(unit) || math.IsInf(unit, 0) {
		return errors.Errorf("invalid tick unit %v", unit)
	}
	if unit != a.tickUnit {
		a.tickUnit = unit
		a.ticks.invalidate()
		a.revision++
	}
	return nil
}

// DisplayPosition returns the pixel offset of v, clamped to [0, length].
func (a *CurrencyAxis) DisplayPosition(v float64) float64 {
	span := a.bounds.Span()
	if span == 0 {
		return a.position(0)
	}
	return a.position((v - a.bounds.Lower) / span)
}

// ValueForDisplay returns the price at the pixel offset.
func (a *CurrencyAxis) ValueForDisplay(pixel float64) float64 {
	span := a.bounds.Span()
	if span == 0 || a.length <= 0 {
		return a.bounds.Lower
	}
	return a.bounds.Lower + a.fraction(pixel)*span
}

// Zoom scales the visible price span about its centre.
func (a *CurrencyAxis) Zoom(factor float64) (bool, error) {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return false, errors.Errorf("invalid zoom factor %v", factor)
	}
	mid := a.bounds.Lower + a.bounds.Span()/2
	half := a.bounds.Span() * factor / 2
	return a.setRange(ohlc.NewRange(mid-half, mid+half)), nil
}

// Pan shifts the price range by percentage of its span.
func (a *CurrencyAxis) Pan(percentage float64, dir Direction) (bool, error) {
	if percentage < 0 || math.IsNaN(percentage) || math.IsInf(percentage, 0) {
		return false, errors.Errorf("invalid pan percentage %v", percentage)
	}
	shift := a.bounds.Span() * percentage
	if dir == Backward {
		shift = -shift
	}
	return a.setRange(a.bounds.Shift(shift)), nil
}

// TickValues returns the major ticks from lower to upper, inclusive.
func (a *CurrencyAxis) TickValues() []float64 {
	major, _ := a.ticks.get(a.tickKey(), a.computeTicks)
	return major
}

// MinorTickValues returns the subdivisions between major ticks.
func (a *CurrencyAxis) MinorTickValues() []float64 {
	_, minor := a.ticks.get(a.tickKey(), a.computeTicks)
	return minor
}

func (a *CurrencyAxis) tickKey() tickKey[float64] {
	return tickKey[float64]{bounds: a.bounds, length: a.length, unit: a.tickUnit}
}

func (a *CurrencyAxis) computeTicks() (major, minor []float64) {
	lower, upper := a.bounds.Lower, a.bounds.Upper
	span := upper - lower
	if span <= tickEpsilon {
		return []float64{lower}, nil
	}

	interval := math.Max(tickEpsilon, span/float64(a.cfg.TickCount-1))
	if a.tickUnit > 0 && span/a.tickUnit <= float64(a.cfg.MaxTicks) {
		interval = a.tickUnit
	}

	for i := 0; ; i++ {
		v := lower + float64(i)*interval
		if v > upper+tickEpsilon {
			break
		}
		major = append(major, clampTick(roundTick(v), lower, upper))
	}

	parts := a.cfg.MinorTickCount
	for i := 0; i+1 < len(major); i++ {
		step := (major[i+1] - major[i]) / float64(parts)
		for k := 1; k < parts; k++ {
			minor = append(minor, clampTick(roundTick(major[i]+float64(k)*step), lower, upper))
		}
	}
	return major, minor
}

func roundTick(v float64) float64 { return math.Round(v*1e9) / 1e9 }

func clampTick(v, lower, upper float64) float64 { return math.Max(lower, math.Min(upper, v)) }

// TickLabel formats v as currency scaled to the magnitude of the visible range.
func (a *CurrencyAxis) TickLabel(v float64) string { return FormatCurrency(v, a.bounds.Span()) }

// AutoRange pads the extent by 10% on each side.
func (a *CurrencyAxis) AutoRange(min, max float64) ohlc.ValueRange {
	r := ohlc.NewRange(min, max)
	padding := r.Span() * 0.1
	if padding == 0 {
		padding = 1
	}
	return ohlc.NewRange(r.Lower-padding, r.Upper+padding)
}
