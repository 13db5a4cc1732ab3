package axis

import (
	"math"

	"github.com/pkg/errors"
	"github.com/zappabad/candleview/internal/ohlc"
)

// DateAxis maps epoch-days onto a pixel span. It is horizontal by default.
type DateAxis struct {
	geometry

	bounds ohlc.DateRange
	cfg    Config
	ticks  tickCache[ohlc.Date]
}

// NewDateAxis creates a horizontal DateAxis showing today and tomorrow.
func NewDateAxis(cfg Config) *DateAxis {
	today := ohlc.Today()
	return &DateAxis{
		geometry: geometry{length: 100, orientation: Horizontal},
		bounds:   ohlc.NewRange(today, today.AddDays(1)),
		cfg:      cfg.withDefaults(),
	}
}

// SetOrientation switches the axis between horizontal and vertical layout.
func (a *DateAxis) SetOrientation(o Orientation) {
	if a.orientation != o {
		a.orientation = o
		a.revision++
	}
}

func (a *DateAxis) Bounds() ohlc.DateRange { return a.bounds }
func (a *DateAxis) Lower() ohlc.Date       { return a.bounds.Lower }
func (a *DateAxis) Upper() ohlc.Date       { return a.bounds.Upper }

// Contains reports whether the date is inside the visible range.
func (a *DateAxis) Contains(d ohlc.Date) bool { return a.bounds.Contains(d) }

// SetBounds replaces the visible range. Unchanged bounds are a no-op.
func (a *DateAxis) SetBounds(lower, upper ohlc.Date) error {
	r, err := ohlc.CheckedRange(lower, upper)
	if err != nil {
		return err
	}
	if !lower.InDomain() || !upper.InDomain() {
		return errors.Wrapf(ohlc.ErrInvalidRange, "dates [%d, %d] outside the calendar domain", int64(lower), int64(upper))
	}
	a.setRange(r)
	return nil
}

// setRange stores an already validated range and reports whether it changed.
func (a *DateAxis) setRange(r ohlc.DateRange) bool {
	if r.Equal(a.bounds) {
		return false
	}
	a.bounds = r
	a.ticks.invalidate()
	a.revision++
	return true
}

// DisplayPosition returns the pixel offset of d, clamped to [0, length].
// A zero-width range places every date at the lower bound.
func (a *DateAxis) DisplayPosition(d ohlc.Date) float64 {
	span := a.bounds.Span()
	if span == 0 {
		return a.position(0)
	}
	return a.position(float64(d-a.bounds.Lower) / float64(span))
}

// ValueForDisplay returns the date nearest to the pixel offset.
func (a *DateAxis) ValueForDisplay(pixel float64) ohlc.Date {
	span := a.bounds.Span()
	if span == 0 || a.length <= 0 {
		return a.bounds.Lower
	}
	return a.bounds.Lower + ohlc.Date(math.Round(a.fraction(pixel)*float64(span)))
}

// Zoom scales the visible span by factor, keeping pivot at the same relative
// position. factor < 1 zooms in, factor > 1 zooms out. The span never drops
// below one day, a single-day range cannot be zoomed into, and both bounds
// stay inside the calendar domain.
func (a *DateAxis) Zoom(factor float64, pivot ohlc.Date) (bool, error) {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return false, errors.Errorf("invalid zoom factor %v", factor)
	}
	span := int64(a.bounds.Span())
	if span == 0 && factor < 1 {
		return false, nil
	}
	maxSpan := int64(ohlc.MaxDate - ohlc.MinDate)
	newSpan := int64(math.Round(math.Min(float64(span)*factor, float64(maxSpan))))
	switch {
	case factor < 1 && newSpan >= span:
		newSpan = span - 1
	case factor > 1 && newSpan <= span:
		newSpan = span + 1
	}
	if newSpan < 1 {
		newSpan = 1
	}
	if newSpan > maxSpan {
		newSpan = maxSpan
	}

	rel := 0.5
	if span > 0 {
		rel = float64(pivot-a.bounds.Lower) / float64(span)
		rel = math.Max(0, math.Min(1, rel))
	}
	lower := pivot - ohlc.Date(math.Round(rel*float64(newSpan)))
	return a.setRange(clampSpan(lower, ohlc.Date(newSpan))), nil
}

// ZoomIn zooms toward pivot by the configured zoom-in step.
func (a *DateAxis) ZoomIn(pivot ohlc.Date) bool {
	changed, _ := a.Zoom(a.cfg.ZoomInFactor, pivot)
	return changed
}

// ZoomOut zooms away from pivot by the configured zoom-out step.
func (a *DateAxis) ZoomOut(pivot ohlc.Date) bool {
	changed, _ := a.Zoom(a.cfg.ZoomOutFactor, pivot)
	return changed
}

// Pan shifts both bounds by percentage of the current span. The width is kept
// when the shift runs into the edge of the calendar domain.
func (a *DateAxis) Pan(percentage float64, dir Direction) (bool, error) {
	if percentage < 0 || math.IsNaN(percentage) || math.IsInf(percentage, 0) {
		return false, errors.Errorf("invalid pan percentage %v", percentage)
	}
	span := a.bounds.Span()
	// a shift wider than the domain lands on its edge either way
	shift := ohlc.Date(math.Round(math.Min(float64(span)*percentage, float64(ohlc.MaxDate-ohlc.MinDate))))
	if shift == 0 && percentage > 0 {
		shift = 1
	}
	if dir == Backward {
		shift = -shift
	}
	return a.setRange(clampSpan(a.bounds.Lower+shift, span)), nil
}

// clampSpan builds [lower, lower+span] moved back inside the calendar domain.
func clampSpan(lower, span ohlc.Date) ohlc.DateRange {
	if lower < ohlc.MinDate {
		lower = ohlc.MinDate
	}
	upper := lower + span
	if upper > ohlc.MaxDate {
		upper = ohlc.MaxDate
		lower = upper - span
	}
	return ohlc.NewRange(lower, upper)
}

// TickUnit returns the spacing between major ticks in days.
func (a *DateAxis) TickUnit() int64 {
	unit := int64(a.bounds.Span()) / int64(a.cfg.TickCount-1)
	if unit < 1 {
		unit = 1
	}
	return unit
}

// TickValues returns the major ticks. When the span is not a multiple of the
// tick count the last tick stops short of the upper bound.
func (a *DateAxis) TickValues() []ohlc.Date {
	major, _ := a.ticks.get(a.tickKey(), a.computeTicks)
	return major
}

// MinorTickValues returns the midpoints between consecutive major ticks.
func (a *DateAxis) MinorTickValues() []ohlc.Date {
	_, minor := a.ticks.get(a.tickKey(), a.computeTicks)
	return minor
}

func (a *DateAxis) tickKey() tickKey[ohlc.Date] {
	return tickKey[ohlc.Date]{bounds: a.bounds, length: a.length}
}

func (a *DateAxis) computeTicks() (major, minor []ohlc.Date) {
	unit := ohlc.Date(a.TickUnit())
	major = make([]ohlc.Date, 0, a.cfg.TickCount)
	for i := 0; i < a.cfg.TickCount; i++ {
		v := a.bounds.Lower + ohlc.Date(i)*unit
		if v > a.bounds.Upper {
			break
		}
		major = append(major, v)
	}
	if len(major) > 1 {
		minor = make([]ohlc.Date, 0, len(major)-1)
		for i := 0; i+1 < len(major); i++ {
			minor = append(minor, major[i]+(major[i+1]-major[i])/2)
		}
	}
	return major, minor
}

// TickLabel formats a tick as yyyy-mm-dd.
func (a *DateAxis) TickLabel(d ohlc.Date) string { return d.String() }

// AutoRange returns the exact data extent; dates are never padded.
func (a *DateAxis) AutoRange(min, max ohlc.Date) ohlc.DateRange {
	return ohlc.NewRange(min.ClampDomain(), max.ClampDomain())
}
