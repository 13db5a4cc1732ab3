package axis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zappabad/candleview/internal/ohlc"
)

func newTestCurrencyAxis(t *testing.T, lower, upper, length float64) *CurrencyAxis {
	t.Helper()
	a := NewCurrencyAxis(DefaultConfig())
	require.NoError(t, a.SetBounds(lower, upper))
	a.SetLength(length)
	return a
}

func TestCurrencyAxisVerticalInversion(t *testing.T) {
	a := newTestCurrencyAxis(t, 0, 100, 200)

	assert.Equal(t, Vertical, a.Orientation())
	assert.Equal(t, 0.0, a.DisplayPosition(100))
	assert.Equal(t, 200.0, a.DisplayPosition(0))
	assert.Equal(t, 150.0, a.DisplayPosition(25))
	assert.Less(t, a.DisplayPosition(80), a.DisplayPosition(20), "higher prices render toward the top")

	a.SetOrientation(Horizontal)
	assert.Equal(t, 50.0, a.DisplayPosition(25))
}

func TestCurrencyAxisRoundTrip(t *testing.T) {
	a := newTestCurrencyAxis(t, 99.1, 109.9, 377)
	for p := 0.0; p <= a.Length(); p += 3.7 {
		assert.InDelta(t, p, a.DisplayPosition(a.ValueForDisplay(p)), 1e-9)
	}
}

func TestCurrencyAxisZeroWidthRange(t *testing.T) {
	a := newTestCurrencyAxis(t, 42, 42, 200)
	assert.Equal(t, 200.0, a.DisplayPosition(50))
	assert.Equal(t, 42.0, a.ValueForDisplay(10))
	assert.Equal(t, []float64{42}, a.TickValues())
}

func TestCurrencyAxisAutoRange(t *testing.T) {
	a := NewCurrencyAxis(DefaultConfig())

	r := a.AutoRange(100, 109)
	assert.InDelta(t, 99.1, r.Lower, 1e-9)
	assert.InDelta(t, 109.9, r.Upper, 1e-9)

	flat := a.AutoRange(50, 50)
	assert.True(t, flat.Valid())
	assert.Less(t, flat.Lower, flat.Upper)
}

func TestCurrencyAxisTickValues(t *testing.T) {
	a := newTestCurrencyAxis(t, 0, 90, 200)
	ticks := a.TickValues()
	require.Len(t, ticks, 10)
	for i, v := range ticks {
		assert.InDelta(t, float64(i*10), v, 1e-9)
	}
	assert.Len(t, a.MinorTickValues(), 9*9)

	require.NoError(t, a.SetBounds(0.1, 0.7))
	ticks = a.TickValues()
	require.NotEmpty(t, ticks)
	assert.Equal(t, 0.1, ticks[0])
	for i, v := range ticks {
		assert.GreaterOrEqual(t, v, 0.1)
		assert.LessOrEqual(t, v, 0.7+tickEpsilon)
		if i > 0 {
			assert.GreaterOrEqual(t, v, ticks[i-1])
		}
	}
	for _, v := range a.MinorTickValues() {
		assert.True(t, a.Bounds().Contains(v))
	}
}

func TestCurrencyAxisTickUnit(t *testing.T) {
	a := newTestCurrencyAxis(t, 0, 90, 200)

	require.NoError(t, a.SetTickUnit(25))
	assert.Equal(t, []float64{0, 25, 50, 75}, a.TickValues())

	// A unit that would flood the axis falls back to automatic spacing.
	require.NoError(t, a.SetTickUnit(0.001))
	assert.Len(t, a.TickValues(), 10)

	assert.Error(t, a.SetTickUnit(-1))
	require.NoError(t, a.SetTickUnit(0))
	assert.Len(t, a.TickValues(), 10)
}

func TestCurrencyAxisZoomAndPan(t *testing.T) {
	a := newTestCurrencyAxis(t, 100, 200, 200)

	_, err := a.Zoom(0.5)
	require.NoError(t, err)
	assert.Equal(t, ohlc.NewRange(125.0, 175.0), a.Bounds())

	_, err = a.Pan(0.1, Forward)
	require.NoError(t, err)
	assert.InDelta(t, 130, a.Lower(), 1e-9)
	assert.InDelta(t, 180, a.Upper(), 1e-9)

	_, err = a.Zoom(0)
	assert.Error(t, err)
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "$1.25M", FormatCurrency(1_250_000, 2_500_000))
	assert.Equal(t, "$123.46", FormatCurrency(123.456, 500))
	assert.Equal(t, "$12.50K", FormatCurrency(12_500, 5_000))
	assert.Equal(t, "$999.50", FormatCurrency(999.5, 1_000))

	a := newTestCurrencyAxis(t, 0, 2_500_000, 200)
	assert.Equal(t, "$1.25M", a.TickLabel(1_250_000))
}
