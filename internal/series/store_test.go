package series

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zappabad/candleview/internal/ohlc"
)

func day(d int) ohlc.Date { return ohlc.NewDate(2024, time.January, d) }

func bar(d int, low, high float64) ohlc.Bar {
	mid := (low + high) / 2
	return ohlc.Bar{Date: day(d), Open: mid, High: high, Low: low, Close: mid, Volume: 1000}
}

func TestStoreSetSeries(t *testing.T) {
	s := NewStore()
	err := s.SetSeries([]ohlc.Bar{bar(3, 95, 110), bar(1, 90, 100), bar(2, 99, 120)})
	require.NoError(t, err)

	assert.Equal(t, 3, s.Len())
	bars := s.Bars()
	assert.Equal(t, []ohlc.Date{day(1), day(2), day(3)}, []ohlc.Date{bars[0].Date, bars[1].Date, bars[2].Date})

	dates, ok := s.DateBounds()
	require.True(t, ok)
	assert.Equal(t, ohlc.NewRange(day(1), day(3)), dates)

	values, ok := s.ValueBounds()
	require.True(t, ok)
	assert.Equal(t, ohlc.NewRange(90.0, 120.0), values)
}

func TestStoreSetSeriesRejectsBadBarWithoutMutation(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.SetSeries([]ohlc.Bar{bar(1, 90, 100)}))

	bad := ohlc.Bar{Date: day(2), Open: 1, High: 0, Low: 2, Close: 1}
	err := s.SetSeries([]ohlc.Bar{bar(5, 1, 2), bad})
	assert.ErrorIs(t, err, ohlc.ErrInvalidBar)
	assert.Equal(t, 1, s.Len())
	_, ok := s.Get(day(1))
	assert.True(t, ok)
}

func TestStoreSetSeriesEmpty(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.SetSeries([]ohlc.Bar{bar(1, 90, 100)}))
	require.NoError(t, s.SetSeries(nil))

	assert.Equal(t, 0, s.Len())
	_, ok := s.DateBounds()
	assert.False(t, ok)
	_, ok = s.ValueBounds()
	assert.False(t, ok)
}

func TestStoreDuplicateDatesOverwrite(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.SetSeries([]ohlc.Bar{bar(1, 90, 100), bar(1, 80, 85)}))
	assert.Equal(t, 1, s.Len())
	got, _ := s.Get(day(1))
	assert.Equal(t, 80.0, got.Low)

	replaced, err := s.Add(bar(1, 91, 92))
	require.NoError(t, err)
	assert.True(t, replaced)
	assert.Equal(t, 1, s.Len())

	values, _ := s.ValueBounds()
	assert.Equal(t, ohlc.NewRange(91.0, 92.0), values)
}

func TestStoreAddIsIncremental(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.SetSeries([]ohlc.Bar{bar(2, 90, 100), bar(4, 95, 105)}))

	replaced, err := s.Add(bar(3, 80, 120))
	require.NoError(t, err)
	assert.False(t, replaced)
	_, err = s.Add(bar(1, 85, 99))
	require.NoError(t, err)
	assert.Zero(t, s.rescans)

	values, _ := s.ValueBounds()
	assert.Equal(t, ohlc.NewRange(80.0, 120.0), values)
	dates, _ := s.DateBounds()
	assert.Equal(t, ohlc.NewRange(day(1), day(4)), dates)

	_, err = s.Add(ohlc.Bar{Date: day(9), Open: 5, High: 4, Low: 3, Close: 4})
	assert.ErrorIs(t, err, ohlc.ErrInvalidBar)
	assert.Equal(t, 4, s.Len())
}

func TestStoreRemoveRepairsAggregatesLazily(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.SetSeries([]ohlc.Bar{bar(1, 90, 100), bar(2, 80, 120), bar(3, 95, 105)}))

	_, ok := s.Remove(day(3))
	require.True(t, ok)
	assert.Zero(t, s.rescans, "removing a bar that holds no extreme must not rescan")

	_, ok = s.Remove(day(2))
	require.True(t, ok)
	assert.Equal(t, 1, s.rescans)
	values, _ := s.ValueBounds()
	assert.Equal(t, ohlc.NewRange(90.0, 100.0), values)

	_, ok = s.Remove(day(7))
	assert.False(t, ok)
}

func TestStoreBetween(t *testing.T) {
	s := NewStore()
	var bars []ohlc.Bar
	for d := 1; d <= 10; d++ {
		bars = append(bars, bar(d, 90, 100))
	}
	require.NoError(t, s.SetSeries(bars))

	got := s.Between(ohlc.NewRange(day(3), day(5)))
	require.Len(t, got, 3)
	assert.Equal(t, day(3), got[0].Date)
	assert.Equal(t, day(5), got[2].Date)

	assert.Len(t, s.Between(ohlc.NewRange(day(1).AddDays(-10), day(1))), 1)
	assert.Empty(t, s.Between(ohlc.NewRange(day(20), day(30))))
}
