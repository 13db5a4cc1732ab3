// Package series keeps the bars of a single OHLC series ordered by date.
package series

import (
	"slices"

	"github.com/pkg/errors"
	"github.com/zappabad/candleview/internal/ohlc"
)

// extent tracks which bars hold the lowest low and the highest high.
type extent struct {
	ok      bool
	minLow  float64
	lowAt   ohlc.Date
	maxHigh float64
	highAt  ohlc.Date
}

func (e *extent) include(b ohlc.Bar) {
	if !e.ok {
		*e = extent{ok: true, minLow: b.Low, lowAt: b.Date, maxHigh: b.High, highAt: b.Date}
		return
	}
	if b.Low < e.minLow {
		e.minLow, e.lowAt = b.Low, b.Date
	}
	if b.High > e.maxHigh {
		e.maxHigh, e.highAt = b.High, b.Date
	}
}

// holds reports whether the bar on d currently defines either extreme.
func (e *extent) holds(d ohlc.Date) bool {
	return e.ok && (e.lowAt == d || e.highAt == d)
}

// Store is an ordered date → bar mapping with running aggregates.
// It is not safe for concurrent use; the chart owns it on one goroutine.
type Store struct {
	bars  map[ohlc.Date]ohlc.Bar
	dates []ohlc.Date // sorted ascending
	ext   extent

	rescans int
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{bars: make(map[ohlc.Date]ohlc.Bar)}
}

// SetSeries replaces the whole dataset. Every bar is validated before
// anything is replaced; a later bar overwrites an earlier one with the same
// date. A nil or empty slice clears the store.
func (s *Store) SetSeries(bars []ohlc.Bar) error {
	for i, b := range bars {
		if err := b.Validate(); err != nil {
			return errors.Wrapf(err, "bar %d", i)
		}
	}

	s.bars = make(map[ohlc.Date]ohlc.Bar, len(bars))
	for _, b := range bars {
		s.bars[b.Date] = b
	}
	s.dates = make([]ohlc.Date, 0, len(s.bars))
	s.ext = extent{}
	for d, b := range s.bars {
		s.dates = append(s.dates, d)
		s.ext.include(b)
	}
	slices.Sort(s.dates)
	return nil
}

// Add inserts a bar, overwriting any bar on the same date. It reports
// whether an existing bar was replaced.
func (s *Store) Add(b ohlc.Bar) (replaced bool, err error) {
	if err := b.Validate(); err != nil {
		return false, err
	}

	old, replaced := s.bars[b.Date]
	s.bars[b.Date] = b
	if !replaced {
		i, _ := slices.BinarySearch(s.dates, b.Date)
		s.dates = slices.Insert(s.dates, i, b.Date)
	}

	// An overwritten extreme may have moved inward; only then is a scan needed.
	if replaced && s.ext.holds(old.Date) &&
		((s.ext.lowAt == old.Date && b.Low > old.Low) || (s.ext.highAt == old.Date && b.High < old.High)) {
		s.rescan()
		return replaced, nil
	}
	s.ext.include(b)
	return replaced, nil
}

// Remove deletes the bar on date d and returns it.
func (s *Store) Remove(d ohlc.Date) (ohlc.Bar, bool) {
	b, ok := s.bars[d]
	if !ok {
		return ohlc.Bar{}, false
	}
	delete(s.bars, d)
	if i, found := slices.BinarySearch(s.dates, d); found {
		s.dates = slices.Delete(s.dates, i, i+1)
	}
	if s.ext.holds(d) {
		s.rescan()
	}
	return b, true
}

func (s *Store) rescan() {
	s.rescans++
	s.ext = extent{}
	for _, d := range s.dates {
		s.ext.include(s.bars[d])
	}
}

// Get returns the bar on date d.
func (s *Store) Get(d ohlc.Date) (ohlc.Bar, bool) {
	b, ok := s.bars[d]
	return b, ok
}

// Len returns the number of bars.
func (s *Store) Len() int { return len(s.dates) }

// Bars returns every bar in date order.
func (s *Store) Bars() []ohlc.Bar {
	out := make([]ohlc.Bar, len(s.dates))
	for i, d := range s.dates {
		out[i] = s.bars[d]
	}
	return out
}

// Between returns the bars whose dates fall inside r, in date order.
func (s *Store) Between(r ohlc.DateRange) []ohlc.Bar {
	lo, _ := slices.BinarySearch(s.dates, r.Lower)
	hi, found := slices.BinarySearch(s.dates, r.Upper)
	if found {
		hi++
	}
	if lo >= hi {
		return nil
	}
	out := make([]ohlc.Bar, 0, hi-lo)
	for _, d := range s.dates[lo:hi] {
		out = append(out, s.bars[d])
	}
	return out
}

// DateBounds returns the first and last dates held.
func (s *Store) DateBounds() (ohlc.DateRange, bool) {
	if len(s.dates) == 0 {
		return ohlc.DateRange{}, false
	}
	return ohlc.NewRange(s.dates[0], s.dates[len(s.dates)-1]), true
}

// ValueBounds returns the lowest low and highest high held.
func (s *Store) ValueBounds() (ohlc.ValueRange, bool) {
	if !s.ext.ok {
		return ohlc.ValueRange{}, false
	}
	return ohlc.NewRange(s.ext.minLow, s.ext.maxHigh), true
}
