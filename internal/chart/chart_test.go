package chart

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zappabad/candleview/internal/axis"
	"github.com/zappabad/candleview/internal/ohlc"
	"github.com/zappabad/candleview/internal/paging"
	"github.com/zappabad/candleview/internal/render"
)

var jan1 = ohlc.NewDate(2024, time.January, 1)

// rising returns n daily bars from jan1 closing at 100, 101, ...
func rising(n int) []ohlc.Bar {
	out := make([]ohlc.Bar, n)
	for i := range out {
		c := 100 + float64(i)
		out[i] = ohlc.Bar{Date: jan1.AddDays(i), Open: c, High: c, Low: c, Close: c}
	}
	return out
}

func newChart(t *testing.T, loader paging.Loader) *Chart {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Paging.PageSize = 10
	cfg.Paging.RequestsPerSecond = 0
	cfg.Paging.InitialBackoff = time.Millisecond
	c := New(cfg, loader)
	c.Layout(100, 100)
	return c
}

func TestSetSeriesAutoRanges(t *testing.T) {
	c := newChart(t, nil)
	require.NoError(t, c.SetSeries(rising(10)))

	assert.Equal(t, ohlc.NewRange(jan1, jan1.AddDays(9)), c.DateBounds())
	vr := c.ValueBounds()
	assert.InDelta(t, 99.1, vr.Lower, 1e-9)
	assert.InDelta(t, 109.9, vr.Upper, 1e-9)
	assert.Len(t, c.Renderer().Candles(), 10)
}

func TestSetSeriesEmptyKeepsAxesValid(t *testing.T) {
	c := newChart(t, nil)
	require.NoError(t, c.SetSeries(rising(3)))
	before := c.DateBounds()

	require.NoError(t, c.SetSeries(nil))
	require.NoError(t, c.SetSeries([]ohlc.Bar{}))
	assert.Equal(t, before, c.DateBounds())
	assert.True(t, c.ValueBounds().Valid())
	assert.Empty(t, c.Renderer().Candles())
}

func TestSetSeriesRejectsBadBar(t *testing.T) {
	c := newChart(t, nil)
	require.NoError(t, c.SetSeries(rising(3)))

	bad := rising(4)
	bad[2].High = bad[2].Low - 1
	err := c.SetSeries(bad)
	assert.ErrorIs(t, err, ohlc.ErrInvalidBar)
	assert.Equal(t, 3, c.Store().Len())
}

func TestAddBarExtendsBounds(t *testing.T) {
	c := newChart(t, nil)
	require.NoError(t, c.SetSeries(rising(10)))
	passes := c.Renderer().Passes()

	inside := ohlc.Bar{Date: jan1.AddDays(4), Open: 104, High: 105, Low: 103, Close: 104.5}
	require.NoError(t, c.AddBar(inside))
	assert.Equal(t, ohlc.NewRange(jan1, jan1.AddDays(9)), c.DateBounds())
	assert.Equal(t, passes, c.Renderer().Passes(), "inside bar is laid out incrementally")

	before := ohlc.Bar{Date: jan1.AddDays(-3), Open: 99, High: 100, Low: 98, Close: 99.5}
	require.NoError(t, c.AddBar(before))
	assert.Equal(t, jan1.AddDays(-3), c.DateBounds().Lower)
	assert.Equal(t, jan1.AddDays(9), c.DateBounds().Upper)
	assert.Equal(t, 98.0, c.ValueBounds().Lower)
	assert.InDelta(t, 109.9, c.ValueBounds().Upper, 1e-9)
}

func TestAddBarOnEmptyChartFits(t *testing.T) {
	c := newChart(t, nil)
	b := ohlc.Bar{Date: jan1, Open: 10, High: 12, Low: 8, Close: 11}
	require.NoError(t, c.AddBar(b))
	assert.Equal(t, ohlc.NewRange(jan1, jan1), c.DateBounds())
	assert.InDelta(t, 7.6, c.ValueBounds().Lower, 1e-9)
	assert.InDelta(t, 12.4, c.ValueBounds().Upper, 1e-9)
}

func TestRemoveBarKeepsBounds(t *testing.T) {
	c := newChart(t, nil)
	require.NoError(t, c.SetSeries(rising(10)))
	before := c.DateBounds()

	assert.True(t, c.RemoveBar(jan1))
	assert.False(t, c.RemoveBar(jan1))
	assert.Equal(t, before, c.DateBounds())
	assert.Len(t, c.Renderer().Candles(), 9)
}

func TestZoomAboutCentre(t *testing.T) {
	c := newChart(t, nil)
	require.NoError(t, c.SetDateRange(jan1, jan1.AddDays(10)))

	require.NoError(t, c.Zoom(0.9))
	r := c.DateBounds()
	assert.Equal(t, int64(9), int64(r.Span()))
	mid := float64(r.Lower) + float64(r.Span())/2
	assert.InDelta(t, float64(jan1.AddDays(5)), mid, 0.5)
}

func TestPanPixels(t *testing.T) {
	c := newChart(t, nil)
	require.NoError(t, c.SetDateRange(jan1, jan1.AddDays(100)))

	// dragging right by a fifth of the plot reveals earlier dates
	require.NoError(t, c.PanPixels(20))
	assert.Equal(t, ohlc.NewRange(jan1.AddDays(-20), jan1.AddDays(80)), c.DateBounds())

	require.NoError(t, c.PanPixels(-10))
	assert.Equal(t, ohlc.NewRange(jan1.AddDays(-10), jan1.AddDays(90)), c.DateBounds())
}

type blankSurface struct{}

func (blankSurface) Resize(float64, float64)                                   {}
func (blankSurface) ClearRect(float64, float64, float64, float64)              {}
func (blankSurface) FillRect(float64, float64, float64, float64, render.Color) {}
func (blankSurface) Line(float64, float64, float64, float64, render.Color)     {}

func TestSetValueRangeRelaysOut(t *testing.T) {
	c := newChart(t, nil)
	require.NoError(t, c.SetSeries(rising(10)))

	require.NoError(t, c.SetValueRange(0, 1000))
	assert.Equal(t, 90.0, c.Renderer().Candles()[0].BodyTop)
	assert.False(t, c.HasPendingPage())
	assert.ErrorIs(t, c.SetValueRange(math.NaN(), 1), ohlc.ErrInvalidRange)
}

func TestDrawPicksUpDirectAxisChanges(t *testing.T) {
	c := newChart(t, nil)
	require.NoError(t, c.SetSeries(rising(10)))

	require.NoError(t, c.ValueAxis().SetBounds(0, 1000))
	require.True(t, c.Draw(blankSurface{}))
	assert.Equal(t, 90.0, c.Renderer().Candles()[0].BodyTop)
}

func TestBarAt(t *testing.T) {
	c := newChart(t, nil)
	require.NoError(t, c.SetSeries(rising(11)))

	b, ok := c.BarAt(50)
	require.True(t, ok)
	assert.Equal(t, jan1.AddDays(5), b.Date)
}

func TestControlsValidate(t *testing.T) {
	c := newChart(t, nil)
	require.NoError(t, c.SetSeries(rising(10)))

	assert.ErrorIs(t, c.SetBarSpacing(-1), ErrInvalidControl)
	assert.ErrorIs(t, c.SetBarSpacing(c.Config().MaxBarSpacing+1), ErrInvalidControl)
	assert.ErrorIs(t, c.SetScale(-0.5), ErrInvalidControl)
	assert.ErrorIs(t, c.SetScale(c.Config().MaxScale+1), ErrInvalidControl)

	passes := c.Renderer().Passes()
	require.NoError(t, c.SetBarSpacing(8))
	assert.Equal(t, 8.0, c.BarSpacing())
	require.NoError(t, c.SetScale(2))
	assert.Equal(t, 2.0, c.ValueAxis().TickUnit())
	assert.Equal(t, passes+2, c.Renderer().Passes(), "each control relayouts")
}

func TestNavigationWithoutLoaderNeverPages(t *testing.T) {
	c := newChart(t, nil)
	require.NoError(t, c.SetDateRange(jan1, jan1.AddDays(10)))
	assert.False(t, c.HasPendingPage())
	_, ok := c.PendingPage()
	assert.False(t, ok)
	_, err := c.StartPaging(jan1)
	assert.ErrorIs(t, err, ErrNoPager)
}

func pageLoader(calls *int) paging.Loader {
	return paging.LoaderFunc(func(_ context.Context, lower ohlc.Date, pageSize int) ([]ohlc.Bar, error) {
		*calls++
		w := paging.Window(lower, pageSize)
		var out []ohlc.Bar
		for d := w.Lower; d <= w.Upper; d++ {
			v := 100 + float64(d-w.Lower)
			out = append(out, ohlc.Bar{Date: d, Open: v, High: v + 1, Low: v - 1, Close: v})
		}
		return out, nil
	})
}

func TestInitialPageFitsBothAxes(t *testing.T) {
	calls := 0
	c := newChart(t, pageLoader(&calls))

	req, err := c.StartPaging(jan1)
	require.NoError(t, err)
	assert.True(t, req.Initial)
	assert.Equal(t, jan1.AddDays(-c.Config().VisibleDays), req.Lower)

	applied, err := c.ApplyPage(c.Pager().Fetch(context.Background(), req))
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, req.Window(), c.DateBounds())
	assert.False(t, c.HasPendingPage(), "auto-ranging does not page")
}

func TestNavigationPagesAndKeepsViewport(t *testing.T) {
	calls := 0
	c := newChart(t, pageLoader(&calls))
	require.NoError(t, c.SetSeries(rising(10)))
	assert.False(t, c.HasPendingPage(), "set series does not page")

	require.NoError(t, c.PanLeft())
	require.True(t, c.HasPendingPage())
	req, ok := c.PendingPage()
	require.True(t, ok)
	assert.False(t, c.HasPendingPage())

	view := c.DateBounds()
	applied, err := c.ApplyPage(c.Pager().Fetch(context.Background(), req))
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, view, c.DateBounds())
	assert.Equal(t, 11, c.Store().Len())
	assert.Equal(t, 1, calls)
}

func TestStalePageIsDropped(t *testing.T) {
	calls := 0
	c := newChart(t, pageLoader(&calls))
	require.NoError(t, c.SetSeries(rising(10)))

	require.NoError(t, c.PanLeft())
	first, _ := c.PendingPage()
	res := c.Pager().Fetch(context.Background(), first)

	// the user keeps moving before the page arrives
	require.NoError(t, c.PanLeft())
	applied, err := c.ApplyPage(res)
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, 10, c.Store().Len())

	// the viewport moved but no newer request was issued yet
	c.pending = false
	c.Pager().Next(first.Target, false)
	applied, err = c.ApplyPage(res)
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestFailedPageReportsError(t *testing.T) {
	loader := paging.LoaderFunc(func(context.Context, ohlc.Date, int) ([]ohlc.Bar, error) {
		return nil, errors.New("feed down")
	})
	c := newChart(t, loader)
	require.NoError(t, c.SetSeries(rising(10)))
	require.NoError(t, c.Pan(0.5, axis.Forward))
	req, _ := c.PendingPage()

	applied, err := c.ApplyPage(c.Pager().Fetch(context.Background(), req))
	assert.Error(t, err)
	assert.False(t, applied)
	assert.Equal(t, 10, c.Store().Len())
}
