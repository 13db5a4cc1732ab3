package ohlc

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// Bar is one day's open/high/low/close/volume summary.
// Two bars with the same Date are the same entity.
type Bar struct {
	Date   Date
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// NewBar builds a bar and validates it.
func NewBar(date Date, open, high, low, close, volume float64) (Bar, error) {
	b := Bar{Date: date, Open: open, High: high, Low: low, Close: close, Volume: volume}
	if err := b.Validate(); err != nil {
		return Bar{}, err
	}
	return b, nil
}

// Validate checks that the prices are finite and consistent.
func (b Bar) Validate() error {
	if !b.Date.InDomain() {
		return errors.Wrapf(ErrInvalidBar, "date %d out of range", int64(b.Date))
	}
	for _, v := range []float64{b.Open, b.High, b.Low, b.Close, b.Volume} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Wrapf(ErrInvalidBar, "%s: non-finite value", b.Date)
		}
	}
	if b.High < b.Low {
		return errors.Wrapf(ErrInvalidBar, "%s: high %v below low %v", b.Date, b.High, b.Low)
	}
	if b.Open < b.Low || b.Open > b.High {
		return errors.Wrapf(ErrInvalidBar, "%s: open %v outside [%v, %v]", b.Date, b.Open, b.Low, b.High)
	}
	if b.Close < b.Low || b.Close > b.High {
		return errors.Wrapf(ErrInvalidBar, "%s: close %v outside [%v, %v]", b.Date, b.Close, b.Low, b.High)
	}
	if b.Volume < 0 {
		return errors.Wrapf(ErrInvalidBar, "%s: negative volume %v", b.Date, b.Volume)
	}
	return nil
}

// Mid returns the midpoint between open and close.
func (b Bar) Mid() float64 { return (b.Open + b.Close) / 2 }

// Delta returns close minus open.
func (b Bar) Delta() float64 { return b.Close - b.Open }

// Range returns high minus low.
func (b Bar) Range() float64 { return b.High - b.Low }

// DeltaPercent returns the delta relative to the open price, in percent.
func (b Bar) DeltaPercent() float64 {
	if b.Open == 0 {
		return 0
	}
	return b.Delta() / b.Open * 100
}

func (b Bar) IsBullish() bool { return b.Close > b.Open }
func (b Bar) IsBearish() bool { return b.Close < b.Open }

// Movement names the direction of the bar.
func (b Bar) Movement() string {
	switch {
	case b.IsBullish():
		return "Bullish"
	case b.IsBearish():
		return "Bearish"
	default:
		return "Neutral"
	}
}

func (b Bar) String() string {
	return fmt.Sprintf("%s O:%g H:%g L:%g C:%g V:%g", b.Date, b.Open, b.High, b.Low, b.Close, b.Volume)
}
