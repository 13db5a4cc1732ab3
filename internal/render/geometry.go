// Package render turns the visible part of a series into candle geometry
// and paints it onto a Surface.
package render

import (
	"math"

	"github.com/zappabad/candleview/internal/axis"
	"github.com/zappabad/candleview/internal/ohlc"
)

// DefaultBodyWidth is the width of a candle body in pixels.
const DefaultBodyWidth = 5.0

// Candle is the laid-out shape of one bar. Y grows downward.
type Candle struct {
	Date    ohlc.Date
	X       float64 // centre of the candle
	BodyX   float64 // left edge of the body
	BodyTop float64
	Width   float64
	Height  float64
	HighY   float64
	LowY    float64
	Bullish bool
	Color   Color
}

// BodyBottom returns the lower edge of the body.
func (c Candle) BodyBottom() float64 { return c.BodyTop + c.Height }

// UpperWick returns the wick segment from the high down to the body.
func (c Candle) UpperWick() (x, y1, y2 float64) { return c.X, c.HighY, c.BodyTop }

// LowerWick returns the wick segment from the body down to the low.
func (c Candle) LowerWick() (x, y1, y2 float64) { return c.X, c.BodyBottom(), c.LowY }

// candleFor computes the geometry of b against the current axis transforms.
func candleFor(b ohlc.Bar, x *axis.DateAxis, y *axis.CurrencyAxis, width float64, p Palette) Candle {
	cx := x.DisplayPosition(b.Date)
	yOpen := y.DisplayPosition(b.Open)
	yClose := y.DisplayPosition(b.Close)

	c := Candle{
		Date:    b.Date,
		X:       cx,
		BodyX:   cx - width/2,
		BodyTop: y.DisplayPosition(math.Max(b.Open, b.Close)),
		Width:   width,
		Height:  math.Abs(yOpen - yClose),
		HighY:   y.DisplayPosition(b.High),
		LowY:    y.DisplayPosition(b.Low),
		Bullish: b.IsBullish(),
		Color:   p.Bearish,
	}
	if c.Bullish {
		c.Color = p.Bullish
	}
	return c
}
